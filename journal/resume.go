/*
 resume.go

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

package journal

import (
	"github.com/jaco00/dharafs/nand"
	"github.com/sirupsen/logrus"
)

func hdrHasMagic(buf []byte) bool {
	return buf[0] == 'D' && buf[1] == 'h' && buf[2] == 'a'
}

func hdrPutMagic(buf []byte) {
	buf[0], buf[1], buf[2] = 'D', 'h', 'a'
}

func hdrGetEpoch(buf []byte) uint8    { return buf[3] }
func hdrSetEpoch(buf []byte, e uint8) { buf[3] = e }

func hdrGetTail(buf []byte) int        { return int(nand.R32(buf[4:8])) }
func hdrSetTail(buf []byte, v int)     { nand.W32(buf[4:8], uint32(v)) }
func hdrGetBBCurrent(buf []byte) int   { return int(nand.R32(buf[8:12])) }
func hdrSetBBCurrent(buf []byte, v int) { nand.W32(buf[8:12], uint32(v)) }
func hdrGetBBLast(buf []byte) int      { return int(nand.R32(buf[12:16])) }
func hdrSetBBLast(buf []byte, v int)   { nand.W32(buf[12:16], uint32(v)) }

func (j *Journal) hdrUserOffset(which int) int {
	return headerSize + j.cfg.CookieSize + which*j.cfg.MetaSize
}

func (j *Journal) hdrClearUser() {
	for i := headerSize + j.cfg.CookieSize; i < len(j.scratch); i++ {
		j.scratch[i] = 0xff
	}
}

// findCheckblock scans forward from blk, up to MaxRetries blocks, for the
// first non-bad block whose first checkpoint group carries valid magic.
// Leaves the checkpoint page's header loaded into the scratch buffer on
// success.
func (j *Journal) findCheckblock(blk int) (int, error) {
	for i := 0; blk < j.geom.NumBlocks && i < j.cfg.MaxRetries; i++ {
		p := (blk << j.geom.Log2PPB) | ((1 << j.log2ppc) - 1)

		if !j.nand.IsBad(blk) {
			if err := j.nand.Read(p, 0, j.scratch[:headerSize]); err == nil && hdrHasMagic(j.scratch) {
				return blk, nil
			}
		}
		blk++
	}
	return 0, nand.Wrap(nand.KindTooBad, "find_checkblock", blk, nil)
}

// findLastCheckblock binary-searches for the highest-numbered block still
// carrying a checkpoint in the current epoch.
func (j *Journal) findLastCheckblock(first int) int {
	low, high := first, j.geom.NumBlocks-1

	for low <= high {
		mid := (low + high) >> 1
		found, err := j.findCheckblock(mid)

		if err != nil || hdrGetEpoch(j.scratch) != j.epoch {
			if mid == 0 {
				return first
			}
			high = mid - 1
			continue
		}

		if found+1 >= j.geom.NumBlocks {
			return found
		}
		found2, err2 := j.findCheckblock(found + 1)
		if err2 != nil || hdrGetEpoch(j.scratch) != j.epoch {
			return found
		}
		low = found2
	}

	return first
}

// cpFree reports whether an entire checkpoint group starting at firstUser
// is unprogrammed (or, conservatively, indistinguishable from unprogrammed).
func (j *Journal) cpFree(firstUser int) bool {
	count := 1 << j.log2ppc
	for i := 0; i < count; i++ {
		if !j.nand.IsFree(firstUser + i) {
			return false
		}
	}
	return true
}

// findLastGroup binary-searches checkpoint groups within blk for the last
// programmed one.
func (j *Journal) findLastGroup(blk int) int {
	numGroups := 1 << (j.geom.Log2PPB - j.log2ppc)
	low, high := 0, numGroups-1

	for low <= high {
		mid := (low + high) >> 1
		p := (mid << j.log2ppc) | (blk << j.geom.Log2PPB)

		switch {
		case j.cpFree(p):
			high = mid - 1
		case mid+1 >= numGroups || j.cpFree(p+(1<<j.log2ppc)):
			return p
		default:
			low = mid + 1
		}
	}

	return blk << j.geom.Log2PPB
}

// findRoot linearly scans backward over groups in the block containing
// start for the last one with valid magic and matching epoch.
func (j *Journal) findRoot(start int) error {
	blk := start >> j.geom.Log2PPB
	i := (start & ((1 << j.geom.Log2PPB) - 1)) >> j.log2ppc

	for i >= 0 {
		p := (blk << j.geom.Log2PPB) + ((i + 1) << j.log2ppc) - 1

		if err := j.nand.Read(p, 0, j.scratch); err == nil &&
			hdrHasMagic(j.scratch) && hdrGetEpoch(j.scratch) == j.epoch {
			j.root = p - 1
			return nil
		}
		i--
	}

	return nand.Wrap(nand.KindTooBad, "find_root", start, nil)
}

// findHead advances from start until it either reaches the first page of
// the next block, or finds the next unprogrammed checkpoint group within
// the same block.
func (j *Journal) findHead(start int) {
	j.head = start

	for {
		j.head = j.nextUpage(j.head)
		if j.head == 0 {
			j.rollStats()
		}

		if isAligned(j.head, j.geom.Log2PPB) {
			if alignEq(j.head, j.tail, j.geom.Log2PPB) {
				j.tail = nextBlock(j.geom.NumBlocks, j.tail>>j.geom.Log2PPB) << j.geom.Log2PPB
			}
			break
		}

		if j.cpFree(j.head) {
			break
		}
	}
}

// Resume scans the chip for the latest checkpoint and restores head, tail,
// root, epoch and bad-block counters. Idempotent: calling it again after a
// successful resume is a no-op save for re-deriving the same state. On
// failure the journal is left in the empty-reset state and TooBad (wrapped)
// is returned.
func (j *Journal) Resume() error {
	first, err := j.findCheckblock(0)
	if err != nil {
		j.resetJournal()
		return err
	}

	j.epoch = hdrGetEpoch(j.scratch)
	last := j.findLastCheckblock(first)
	lastGroup := j.findLastGroup(last)

	if err := j.findRoot(lastGroup); err != nil {
		j.resetJournal()
		return err
	}

	j.tail = hdrGetTail(j.scratch)
	j.bbCurrent = hdrGetBBCurrent(j.scratch)
	j.bbLast = hdrGetBBLast(j.scratch)
	j.hdrClearUser()

	j.findHead(lastGroup)

	j.flags = flags{}
	j.tailSync = j.tail
	j.clearRecovery()

	logrus.Infof("journal: resumed head=%d tail=%d root=%d epoch=%d bb_current=%d bb_last=%d",
		j.head, j.tail, j.root, j.epoch, j.bbCurrent, j.bbLast)
	return nil
}
