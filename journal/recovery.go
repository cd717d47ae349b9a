/*
 recovery.go

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

// restartRecovery is entered when a second bad block is hit while a
// recovery enumeration is already in progress. The previous head is
// marked bad immediately unless it's also where we dumped our buffered
// metadata, in which case that's deferred to finishRecovery.
func (j *Journal) restartRecovery(oldHead int) {
	if j.recoverMeta == pageNone || !alignEq(j.recoverMeta, oldHead, j.geom.Log2PPB) {
		j.nand.MarkBad(oldHead >> j.geom.Log2PPB)
	} else {
		j.flags.badMeta = true
	}

	j.flags.enumDone = false
	j.recoverNext = j.recoverRoot &^ ((1 << j.geom.Log2PPB) - 1)
	j.root = j.recoverRoot
}

// dumpMeta programs the scratch metadata buffer, as-is, onto a fresh head
// page when recovery begins mid-group and the buffered metadata would
// otherwise be lost with the failing block.
func (j *Journal) dumpMeta() error {
	for i := 0; i < j.cfg.MaxRetries; i++ {
		err := func() error {
			if err := j.prepareHead(); err != nil {
				return err
			}
			if err := j.nand.Prog(j.head, j.scratch); err != nil {
				return err
			}
			j.recoverMeta = j.head
			j.head = j.nextUpage(j.head)
			if j.head == 0 {
				j.rollStats()
			}
			j.hdrClearUser()
			return nil
		}()
		if err == nil {
			return nil
		}
		if nand.KindOf(err) != nand.KindBadBlock {
			return err
		}

		j.bbCurrent++
		j.nand.MarkBad(j.head >> j.geom.Log2PPB)

		if err := j.skipBlock(); err != nil {
			return err
		}
	}

	return nand.Wrap(nand.KindTooBad, "dump_meta", j.head, nil)
}

// recoverFrom is entered whenever a Prog or Copy onto head returns
// BadBlock. It always advances past the failing block; whether it also
// begins (or restarts) a recovery enumeration depends on how much
// in-flight data was at risk.
func (j *Journal) recoverFrom(writeErr error) error {
	if nand.KindOf(writeErr) != nand.KindBadBlock {
		return writeErr
	}

	oldHead := j.head

	j.bbCurrent++
	if err := j.skipBlock(); err != nil {
		return err
	}

	if j.InRecovery() {
		logrus.Warnf("journal: bad block during recovery at page %d, restarting recovery", oldHead)
		j.restartRecovery(oldHead)
		return nand.Wrap(nand.KindRecover, "recover_from", oldHead, nil)
	}

	if isAligned(oldHead, j.geom.Log2PPB) {
		j.nand.MarkBad(oldHead >> j.geom.Log2PPB)
		logrus.Warnf("journal: bad block %d, no recovery required", oldHead>>j.geom.Log2PPB)
		return nil
	}

	j.recoverRoot = j.root
	j.recoverNext = j.recoverRoot &^ ((1 << j.geom.Log2PPB) - 1)

	if !isAligned(oldHead, j.log2ppc) {
		if err := j.dumpMeta(); err != nil {
			return err
		}
	}

	j.flags.recovery = true
	logrus.Warnf("journal: bad block at page %d, recovery started from root=%d", oldHead, j.recoverRoot)
	return nand.Wrap(nand.KindRecover, "recover_from", oldHead, nil)
}

// finishRecovery marks the recovered block (and, if it was also used to
// hold dumped metadata, that block too) bad, and clears recovery state.
func (j *Journal) finishRecovery() {
	j.nand.MarkBad(j.recoverRoot >> j.geom.Log2PPB)

	if j.flags.badMeta {
		j.nand.MarkBad(j.recoverMeta >> j.geom.Log2PPB)
	}

	j.clearRecovery()
}

// pushMeta buffers meta (or fills with 0xFF if nil) into the scratch slot
// for the page just written at head. If that completes a checkpoint group
// it programs the trailing metadata page and advances head past it.
func (j *Journal) pushMeta(meta []byte) error {
	oldHead := j.head
	offset := j.hdrUserOffset(j.head & ((1 << j.log2ppc) - 1))

	if meta != nil {
		copy(j.scratch[offset:offset+j.cfg.MetaSize], meta)
	} else {
		for i := offset; i < offset+j.cfg.MetaSize; i++ {
			j.scratch[i] = 0xff
		}
	}

	if !isAligned(j.head+2, j.log2ppc) {
		j.root = j.head
		j.head++
		return nil
	}

	hdrPutMagic(j.scratch)
	hdrSetEpoch(j.scratch, j.epoch)
	hdrSetTail(j.scratch, j.tail)
	hdrSetBBCurrent(j.scratch, j.bbCurrent)
	hdrSetBBLast(j.scratch, j.bbLast)

	if err := j.nand.Prog(j.head+1, j.scratch); err != nil {
		return j.recoverFrom(err)
	}
	j.flags.dirty = false

	j.root = oldHead
	j.head = j.nextUpage(j.head)

	if j.head == 0 {
		j.rollStats()
	}

	if j.flags.enumDone {
		j.finishRecovery()
	}

	if !j.flags.recovery {
		j.tailSync = j.tail
	}

	return nil
}

// Enqueue programs data (which may be nil, for a padding enqueue) at head
// and buffers meta, retrying up to MaxRetries times across bad blocks
// before giving up with TooBad. A Recover result means the caller (the
// map) must drive the recovery loop before retrying.
func (j *Journal) Enqueue(data, meta []byte) error {
	for i := 0; i < j.cfg.MaxRetries; i++ {
		err := func() error {
			if err := j.prepareHead(); err != nil {
				return err
			}
			if data != nil {
				if err := j.nand.Prog(j.head, data); err != nil {
					return err
				}
			}
			return nil
		}()

		if err == nil {
			return j.pushMeta(meta)
		}
		if rerr := j.recoverFrom(err); rerr != nil {
			return rerr
		}
	}

	return nand.Wrap(nand.KindTooBad, "enqueue", j.head, nil)
}

// Copy behaves like Enqueue, but the page contents come from copying an
// existing page p rather than an externally supplied buffer.
func (j *Journal) Copy(p int, meta []byte) error {
	for i := 0; i < j.cfg.MaxRetries; i++ {
		err := func() error {
			if err := j.prepareHead(); err != nil {
				return err
			}
			return j.nand.Copy(p, j.head)
		}()

		if err == nil {
			return j.pushMeta(meta)
		}
		if rerr := j.recoverFrom(err); rerr != nil {
			return rerr
		}
	}

	return nand.Wrap(nand.KindTooBad, "copy", j.head, nil)
}

// NextRecoverable enumerates the live pages of the block under recovery,
// in order, returning recoverRoot last and latching enumDone. Returns
// PageNone once there is nothing left to enumerate.
func (j *Journal) NextRecoverable() int {
	if !j.InRecovery() || j.flags.enumDone {
		return pageNone
	}

	n := j.recoverNext

	if j.recoverNext == j.recoverRoot {
		j.flags.enumDone = true
	} else {
		j.recoverNext = j.nextUpage(j.recoverNext)
	}

	return n
}
