/*
 cache.go

 GNU GENERAL PUBLIC LICENSE
 Version 3, 29 June 2007
 Copyright (C) 2024 Jack Ng <jack.ng.ca@gmail.com>

 This program is free software: you can redistribute it and/or modify
 it under the terms of the GNU General Public License as published by
 the Free Software Foundation, either version 3 of the License, or
 (at your option) any later version.

 This program is distributed in the hope that it will be useful,
 but WITHOUT ANY WARRANTY; without even the implied warranty of
 MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 GNU General Public License for more details.

 You should have received a copy of the GNU General Public License
 along with this program.  If not, see <https://www.gnu.org/licenses/> */

package nandsim

import lru "github.com/hashicorp/golang-lru/v2"

// MetaCacheSize is the default capacity of a MetaCache, matching the
// teacher's own default block-cache sizing.
const MetaCacheSize = 128

// MetaCache memoizes the raw bytes of whole metadata pages by physical page
// number, so repeated ReadMeta calls against the same checkpoint group (GC
// scanning, recovery enumeration) don't keep re-reading it from the chip.
// Entries must be invalidated by the caller whenever the underlying page is
// reprogrammed or the block is erased.
type MetaCache struct {
	lru *lru.Cache[int, []byte]
}

// NewMetaCache builds a MetaCache with the given capacity, or MetaCacheSize
// if capacity is non-positive.
func NewMetaCache(capacity int) *MetaCache {
	if capacity <= 0 {
		capacity = MetaCacheSize
	}
	c, _ := lru.New[int, []byte](capacity)
	return &MetaCache{lru: c}
}

// Get returns the cached metadata for page, if present.
func (c *MetaCache) Get(page int) ([]byte, bool) {
	return c.lru.Get(page)
}

// Put stores meta for page, evicting the least recently used entry if the
// cache is full.
func (c *MetaCache) Put(page int, meta []byte) {
	c.lru.Add(page, meta)
}

// Invalidate drops page's cached entry, if any. Call this after any Prog,
// Copy or Erase that touches page or its containing block.
func (c *MetaCache) Invalidate(page int) {
	c.lru.Remove(page)
}

// InvalidateBlock drops every cached page belonging to block.
func (c *MetaCache) InvalidateBlock(block int, pagesPerBlock int) {
	base := block * pagesPerBlock
	for p := base; p < base+pagesPerBlock; p++ {
		c.lru.Remove(p)
	}
}

// Len returns the number of entries currently cached.
func (c *MetaCache) Len() int { return c.lru.Len() }
