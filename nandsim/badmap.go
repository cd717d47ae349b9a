/*
 badmap.go

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

import "math/bits"

// badBitmap is a packed one-bit-per-block bad-block marker, a far smaller
// footprint than a []bool once NumBlocks gets into the tens of thousands.
// There is no grouping or bulk-run allocation here: a block is either
// marked bad or it isn't, and blocks are marked one at a time.
type badBitmap struct {
	words []uint64
}

func newBadBitmap(numBlocks int) badBitmap {
	return badBitmap{words: make([]uint64, (numBlocks+63)/64)}
}

func (b badBitmap) Get(block int) bool {
	return b.words[block/64]&(1<<(uint(block)%64)) != 0
}

func (b badBitmap) Set(block int) {
	b.words[block/64] |= 1 << (uint(block) % 64)
}

// Count returns the number of blocks currently marked bad.
func (b badBitmap) Count() int {
	n := 0
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return n
}
