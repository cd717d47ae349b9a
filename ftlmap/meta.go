/*
 meta.go

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

// Package ftlmap implements a radix-trie sector index persisted entirely
// inside the metadata of an underlying journal.Journal: every written page
// carries the full lookup path for its sector, so the trie needs no
// separate on-disk structure and no allocator to walk.
package ftlmap

import "github.com/jaco00/dharafs/nand"

const (
	pageNone   = nand.PageNone
	sectorNone = nand.SectorNone

	// radixDepth is the bit width of a sector id: one trie level per bit,
	// most-significant first.
	radixDepth = 32
)

// dBit returns the bit mask for trie depth d, most-significant-bit first.
func dBit(depth int) uint32 { return uint32(1) << (radixDepth - depth - 1) }

func ckSetCount(cookie []byte, count int) { nand.W32(cookie, uint32(count)) }
func ckGetCount(cookie []byte) int        { return int(nand.R32(cookie)) }

func metaClear(meta []byte) {
	for i := range meta {
		meta[i] = 0xff
	}
}

func metaGetID(meta []byte) uint32 { return nand.R32(meta[0:4]) }
func metaSetID(meta []byte, id uint32) { nand.W32(meta[0:4], id) }

func metaGetAlt(meta []byte, level int) uint32 {
	return nand.R32(meta[4+level*4 : 8+level*4])
}

func metaSetAlt(meta []byte, level int, alt uint32) {
	nand.W32(meta[4+level*4:8+level*4], alt)
}
