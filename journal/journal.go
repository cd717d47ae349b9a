/*
 journal.go

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

// Package journal implements a log-structured, double-ended queue over a
// raw NAND address space. Pages are grouped into checkpoint periods; the
// trailing page of each group carries a header plus per-user-page metadata,
// so the whole structure can be rebuilt by scanning the chip on Resume.
package journal

import (
	"fmt"

	"github.com/jaco00/dharafs/nand"
	"github.com/sirupsen/logrus"
)

const (
	pageNone   = nand.PageNone
	headerSize = 16
)

// Config is supplied once, at construction. Log2PPC of zero means "choose
// automatically", via ChoosePPC, the way the reference implementation's
// template instantiation does at compile time.
type Config struct {
	Driver     nand.Driver
	MetaSize   int
	CookieSize int
	MaxRetries int
	Log2PPC    uint

	// Cache, if non-nil, memoizes the trailing metadata page of each
	// checkpoint group so repeated ReadMeta calls against it (GC scanning,
	// recovery enumeration) don't re-read the chip. Entries are invalidated
	// block-wide whenever that block is erased.
	Cache MetaCache
}

// MetaCache is the memoization layer ReadMeta consults before falling back
// to the driver. nandsim.MetaCache satisfies this.
type MetaCache interface {
	Get(page int) ([]byte, bool)
	Put(page int, data []byte)
	InvalidateBlock(block, pagesPerBlock int)
}

// ChoosePPC returns the largest checkpoint-period exponent in [1, max] such
// that a header, a cookie and (2**ppc - 1) per-user-page metadata slices
// still fit on one page.
func ChoosePPC(cookieSize, metaSize int, log2PageSize uint, max uint) uint {
	maxMeta := (1 << log2PageSize) - headerSize - cookieSize
	totalMeta := metaSize
	ppc := uint(1)

	for ppc < max {
		totalMeta <<= 1
		totalMeta += metaSize

		if totalMeta > maxMeta {
			break
		}
		ppc++
	}

	return ppc
}

type flags struct {
	dirty, badMeta, recovery, enumDone bool
}

// Journal is the mutable, in-memory state of one log-structured queue over
// a nand.Driver. A single instance must not be used from more than one
// goroutine at a time; disjoint instances are independent.
type Journal struct {
	cfg  Config
	nand nand.Driver
	geom nand.Geometry

	log2ppc uint

	epoch             uint8
	bbCurrent, bbLast int
	head, tail        int
	tailSync          int
	root              int

	flags flags

	recoverRoot, recoverNext, recoverMeta int

	scratch []byte
}

// New validates cfg, derives the checkpoint period if not pinned, and
// returns a freshly reset (empty) Journal. Call Resume afterwards to
// recover prior state from the chip.
func New(cfg Config) (*Journal, error) {
	if cfg.Driver == nil {
		return nil, fmt.Errorf("journal: nil driver")
	}
	if cfg.MetaSize <= 0 {
		cfg.MetaSize = 132
	}
	if cfg.CookieSize <= 0 {
		cfg.CookieSize = 4
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 8
	}

	geom := nand.GeometryOf(cfg.Driver)

	log2ppc := cfg.Log2PPC
	if log2ppc == 0 {
		log2ppc = ChoosePPC(cfg.CookieSize, cfg.MetaSize, geom.Log2PageSize, 6)
	}
	if log2ppc > geom.Log2PPB {
		return nil, fmt.Errorf("journal: checkpoint period 2^%d exceeds block size 2^%d", log2ppc, geom.Log2PPB)
	}

	j := &Journal{
		cfg:     cfg,
		nand:    cfg.Driver,
		geom:    geom,
		log2ppc: log2ppc,
		scratch: make([]byte, geom.PageSize()),
	}
	j.resetJournal()

	logrus.Debugf("journal: initialized, log2_ppc=%d meta_size=%d cookie_size=%d", log2ppc, cfg.MetaSize, cfg.CookieSize)
	return j, nil
}

func isAligned(p int, n uint) bool { return p&((1<<n)-1) == 0 }
func alignEq(a, b int, n uint) bool { return (a^b)>>n == 0 }

func nextBlock(numBlocks, blk int) int {
	blk++
	if blk >= numBlocks {
		blk = 0
	}
	return blk
}

// nextUpage returns the successor user-page position of p, skipping over
// the metadata slot at the end of each checkpoint group and wrapping (with
// the caller responsible for noticing the wrap and rolling stats/epoch).
func (j *Journal) nextUpage(p int) int {
	p++
	if isAligned(p+1, j.log2ppc) {
		p++
	}
	if p >= j.geom.TotalPages() {
		p = 0
	}
	return p
}

func (j *Journal) clearRecovery() {
	j.recoverNext = pageNone
	j.recoverRoot = pageNone
	j.recoverMeta = pageNone
	j.flags.badMeta = false
	j.flags.recovery = false
	j.flags.enumDone = false
}

func (j *Journal) resetJournal() {
	j.epoch = 0
	j.bbLast = j.geom.NumBlocks >> 6
	j.bbCurrent = 0
	j.flags = flags{}

	j.head = 0
	j.tail = 0
	j.tailSync = 0
	j.root = pageNone

	j.clearRecovery()

	for i := range j.scratch {
		j.scratch[i] = 0xff
	}
}

func (j *Journal) rollStats() {
	j.bbLast = j.bbCurrent
	j.bbCurrent = 0
	j.epoch++
}

// Root returns the most recently written user page, or PageNone if the
// journal is empty.
func (j *Journal) Root() int { return j.root }

// Cookie returns the live application cookie region of the scratch buffer.
// Writes to the returned slice take effect the next time a checkpoint is
// programmed; this mirrors the reference implementation's direct pointer
// into the journal's own header buffer rather than a copy.
func (j *Journal) Cookie() []byte {
	return j.scratch[headerSize : headerSize+j.cfg.CookieSize]
}

// MetaSize and MaxRetries expose the construction-time tunables the map
// layer needs without duplicating them in its own config.
func (j *Journal) MetaSize() int    { return j.cfg.MetaSize }
func (j *Journal) MaxRetries() int  { return j.cfg.MaxRetries }
func (j *Journal) PagesPerBlock() int { return j.geom.PagesPerBlock() }

// Driver exposes the underlying nand.Driver for callers (the map layer)
// that need to read raw page data rather than journal metadata.
func (j *Journal) Driver() nand.Driver { return j.nand }

// PageSize is the configured page size in bytes.
func (j *Journal) PageSize() int { return j.geom.PageSize() }

// MarkDirty forces the journal into the dirty state, as Clear does.
func (j *Journal) MarkDirty() { j.flags.dirty = true }

// IsClean reports whether every write to date has been checkpointed and no
// recovery is outstanding.
func (j *Journal) IsClean() bool { return !j.flags.dirty && !j.flags.recovery }

// InRecovery reports whether a recovery enumeration is in progress.
func (j *Journal) InRecovery() bool { return j.flags.recovery }

// Capacity returns the number of user pages the journal can hold, given
// the worst recent bad-block count observed in either of the last two
// epochs.
func (j *Journal) Capacity() int {
	maxBad := j.bbLast
	if j.bbCurrent > maxBad {
		maxBad = j.bbCurrent
	}
	goodBlocks := j.geom.NumBlocks - maxBad - 1
	log2Cpb := j.geom.Log2PPB - j.log2ppc
	goodCps := goodBlocks << log2Cpb

	return (goodCps << j.log2ppc) - goodCps
}

// Size returns the number of user pages currently held in the log, between
// the last synced tail and the head.
func (j *Journal) Size() int {
	numPages := j.head
	numCps := j.head >> j.log2ppc

	if j.head < j.tailSync {
		total := j.geom.TotalPages()
		numPages += total
		numCps += total >> j.log2ppc
	}

	numPages -= j.tailSync
	numCps -= j.tailSync >> j.log2ppc

	return numPages - numCps
}
