/*
 io.go

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

import "github.com/jaco00/dharafs/nand"

// ReadMeta fetches the per-user-page metadata for any live page p, into
// buf (which must be at least MetaSize bytes). It resolves one of three
// cases: the page is still buffered in the scratch area, it was dumped
// during recovery, or it lives in its group's trailing metadata page.
func (j *Journal) ReadMeta(p int, buf []byte) error {
	ppcMask := (1 << j.log2ppc) - 1
	offset := j.hdrUserOffset(p & ppcMask)

	if alignEq(p, j.head, j.log2ppc) {
		copy(buf[:j.cfg.MetaSize], j.scratch[offset:offset+j.cfg.MetaSize])
		return nil
	}

	if j.recoverMeta != pageNone && alignEq(p, j.recoverRoot, j.log2ppc) {
		return j.nand.Read(j.recoverMeta, offset, buf[:j.cfg.MetaSize])
	}

	metaPage := p | ppcMask
	if j.cfg.Cache != nil {
		if cached, ok := j.cfg.Cache.Get(metaPage); ok {
			copy(buf[:j.cfg.MetaSize], cached[offset:offset+j.cfg.MetaSize])
			return nil
		}

		full := make([]byte, j.geom.PageSize())
		if err := j.nand.Read(metaPage, 0, full); err != nil {
			return err
		}
		j.cfg.Cache.Put(metaPage, full)
		copy(buf[:j.cfg.MetaSize], full[offset:offset+j.cfg.MetaSize])
		return nil
	}

	return j.nand.Read(metaPage, offset, buf[:j.cfg.MetaSize])
}

// Peek returns the oldest readable user page, or PageNone if the journal
// is empty. When tail sits on a block boundary it may skip up to
// MaxRetries bad blocks to find a readable one.
func (j *Journal) Peek() int {
	if j.head == j.tail {
		return pageNone
	}

	if isAligned(j.tail, j.geom.Log2PPB) {
		blk := j.tail >> j.geom.Log2PPB

		for i := 0; i < j.cfg.MaxRetries; i++ {
			if blk == j.head>>j.geom.Log2PPB || !j.nand.IsBad(blk) {
				j.tail = blk << j.geom.Log2PPB
				if j.tail == j.head {
					j.root = pageNone
				}
				return j.tail
			}
			blk = nextBlock(j.geom.NumBlocks, blk)
		}
	}

	return j.tail
}

// Dequeue advances tail to the next user page. If the journal is clean
// (no outstanding write or recovery), tailSync advances too, which is what
// actually reclaims space.
func (j *Journal) Dequeue() {
	if j.head == j.tail {
		return
	}

	j.tail = j.nextUpage(j.tail)

	if !j.flags.dirty && !j.flags.recovery {
		j.tailSync = j.tail
	}

	if j.head == j.tail {
		j.root = pageNone
	}
}

// Clear drops all live data: tail jumps to head, root becomes PageNone,
// the journal is marked dirty so the drop is checkpointed on the next sync.
func (j *Journal) Clear() {
	j.tail = j.head
	j.root = pageNone
	j.flags.dirty = true
	j.hdrClearUser()
}

// skipBlock advances head to the first page of the next block, refusing if
// that would land on tailSync's block, and rolling stats on wrap.
func (j *Journal) skipBlock() error {
	next := nextBlock(j.geom.NumBlocks, j.head>>j.geom.Log2PPB)

	if j.tailSync>>j.geom.Log2PPB == next {
		return nand.Wrap(nand.KindJournalFull, "skip_block", j.head, nil)
	}

	j.head = next << j.geom.Log2PPB
	if j.head == 0 {
		j.rollStats()
	}
	return nil
}

// prepareHead makes sure head sits on a page ready to be programmed:
// erasing the block it is aligned to, if necessary, and refusing if doing
// so would roll onto tailSync's block.
func (j *Journal) prepareHead() error {
	next := j.nextUpage(j.head)

	if alignEq(next, j.tailSync, j.geom.Log2PPB) && !alignEq(next, j.head, j.geom.Log2PPB) {
		return nand.Wrap(nand.KindJournalFull, "prepare_head", j.head, nil)
	}

	j.flags.dirty = true
	if !isAligned(j.head, j.geom.Log2PPB) {
		return nil
	}

	for i := 0; i < j.cfg.MaxRetries; i++ {
		blk := j.head >> j.geom.Log2PPB

		if !j.nand.IsBad(blk) {
			err := j.nand.Erase(blk)
			if err == nil && j.cfg.Cache != nil {
				j.cfg.Cache.InvalidateBlock(blk, j.geom.PagesPerBlock())
			}
			return err
		}

		j.bbCurrent++
		if err := j.skipBlock(); err != nil {
			return err
		}
	}

	return nand.Wrap(nand.KindTooBad, "prepare_head", j.head, nil)
}
