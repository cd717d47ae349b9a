/*
 sim.go

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

// Package nandsim supplies nand.Driver backends for testing and CLI use: an
// in-memory device with injectable faults (SimDriver), and a file-backed
// device using a memory-mapped image (MmapDriver).
package nandsim

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/jaco00/dharafs/nand"
)

// Stats mirrors the call counters the reference simulator tracks, useful
// for asserting a test exercised the driver the way it expected to.
type Stats struct {
	IsBad, MarkBad           int
	Erase, EraseFail         int
	IsFree, Prog, ProgFail   int
	Read, ReadBytes          int
}

type blockStatus struct {
	failed   bool
	nextPage int
	timebomb int
}

// SimDriver is an in-memory nand.Driver with injectable bad blocks,
// permanent failures and delayed ("timebomb") failures, for exercising
// journal/map recovery paths deterministically.
type SimDriver struct {
	log2PageSize uint
	log2PPB      uint
	numBlocks    int

	pages   []byte
	blocks  []blockStatus
	bad     badBitmap
	pageBuf []byte

	stats  Stats
	frozen int
}

// NewSimDriver allocates a device of the given geometry in the state Reset
// leaves it in.
func NewSimDriver(log2PageSize, log2PPB uint, numBlocks int) *SimDriver {
	s := &SimDriver{
		log2PageSize: log2PageSize,
		log2PPB:      log2PPB,
		numBlocks:    numBlocks,
	}
	s.Reset()
	return s
}

func (s *SimDriver) pageSize() int       { return 1 << s.log2PageSize }
func (s *SimDriver) pagesPerBlock() int  { return 1 << s.log2PPB }
func (s *SimDriver) blockSize() int      { return s.pageSize() * s.pagesPerBlock() }

// Reset fills every page with 0x55 and marks it programmed, so no page is
// free until its block is erased, and clears all injected faults and
// statistics.
func (s *SimDriver) Reset() {
	s.pages = make([]byte, s.numBlocks*s.blockSize())
	for i := range s.pages {
		s.pages[i] = 0x55
	}
	s.blocks = make([]blockStatus, s.numBlocks)
	for i := range s.blocks {
		s.blocks[i].nextPage = s.pagesPerBlock()
	}
	s.bad = newBadBitmap(s.numBlocks)
	s.pageBuf = make([]byte, s.pageSize())
	s.stats = Stats{}
	s.frozen = 0
}

func (s *SimDriver) timebombTick(bno int) {
	b := &s.blocks[bno]
	if b.timebomb > 0 {
		b.timebomb--
		if b.timebomb == 0 {
			b.failed = true
		}
	}
}

// seqGen deterministically fills buf with pseudo-random bytes, the way a
// failing chip returns garbage instead of the last-programmed data.
func seqGen(seed int64, buf []byte) {
	r := rand.New(rand.NewSource(seed))
	for i := range buf {
		buf[i] = byte(r.Intn(256))
	}
}

func (s *SimDriver) blockData(bno int) []byte {
	start := bno * s.blockSize()
	return s.pages[start : start+s.blockSize()]
}

func (s *SimDriver) pageData(p int) []byte {
	start := p * s.pageSize()
	return s.pages[start : start+s.pageSize()]
}

func (s *SimDriver) NumBlocks() int     { return s.numBlocks }
func (s *SimDriver) Log2PageSize() uint { return s.log2PageSize }
func (s *SimDriver) Log2PPB() uint      { return s.log2PPB }

func (s *SimDriver) IsBad(block int) bool {
	if !s.frozenNow() {
		s.stats.IsBad++
	}
	return s.bad.Get(block)
}

func (s *SimDriver) MarkBad(block int) {
	if !s.frozenNow() {
		s.stats.MarkBad++
	}
	s.bad.Set(block)
}

func (s *SimDriver) Erase(block int) error {
	if s.bad.Get(block) {
		return nand.Wrap(nand.KindBadBlock, "erase", 0, fmt.Errorf("erase called on block marked bad: %d", block))
	}

	if !s.frozenNow() {
		s.stats.Erase++
	}
	s.blocks[block].nextPage = 0
	s.timebombTick(block)

	blk := s.blockData(block)
	if s.blocks[block].failed {
		if !s.frozenNow() {
			s.stats.EraseFail++
		}
		seqGen(int64(block)*57+29, blk)
		return nand.Wrap(nand.KindBadBlock, "erase", block, nil)
	}

	for i := range blk {
		blk[i] = 0xff
	}
	return nil
}

func (s *SimDriver) Prog(page int, data []byte) error {
	bno := page >> s.log2PPB
	pno := page & (s.pagesPerBlock() - 1)

	if s.bad.Get(bno) {
		return nand.Wrap(nand.KindBadBlock, "prog", page, fmt.Errorf("prog called on block marked bad: %d", bno))
	}
	if pno < s.blocks[bno].nextPage {
		return nand.Wrap(nand.KindBadBlock, "prog", page, fmt.Errorf("out-of-order page programming in block %d", bno))
	}

	pg := s.pageData(page)

	if !s.frozenNow() {
		s.stats.Prog++
	}
	s.blocks[bno].nextPage = pno + 1
	s.timebombTick(bno)

	if s.blocks[bno].failed {
		if !s.frozenNow() {
			s.stats.ProgFail++
		}
		seqGen(int64(page)*57+29, pg)
		return nand.Wrap(nand.KindBadBlock, "prog", page, nil)
	}

	n := len(pg)
	if len(data) < n {
		n = len(data)
	}
	copy(pg, data[:n])
	return nil
}

func (s *SimDriver) IsFree(page int) bool {
	bno := page >> s.log2PPB
	pno := page & (s.pagesPerBlock() - 1)

	if !s.frozenNow() {
		s.stats.IsFree++
	}
	return s.blocks[bno].nextPage <= pno
}

func (s *SimDriver) Read(page, offset int, buf []byte) error {
	pg := s.pageData(page)[offset:]
	if len(buf) > len(pg) {
		return fmt.Errorf("sim: read out of range: offset=%d length=%d", offset, len(buf))
	}

	if !s.frozenNow() {
		s.stats.Read++
		s.stats.ReadBytes += len(buf)
	}

	copy(buf, pg)
	return nil
}

func (s *SimDriver) Copy(src, dst int) error {
	if err := s.Read(src, 0, s.pageBuf); err != nil {
		return err
	}
	return s.Prog(dst, s.pageBuf)
}

func (s *SimDriver) frozenNow() bool { return s.frozen > 0 }

// Freeze pauses statistics counting (nestable); Thaw resumes it.
func (s *SimDriver) Freeze() { s.frozen++ }
func (s *SimDriver) Thaw()   { s.frozen-- }

// Stats returns a snapshot of the call counters accumulated so far.
func (s *SimDriver) Stats() Stats { return s.stats }

// SetFailed marks block permanently failed: subsequent erase/prog on it
// return BadBlock and fill the block with garbage instead of real data.
func (s *SimDriver) SetFailed(block int) { s.blocks[block].failed = true }

// SetTimebomb arms block to fail automatically after ttl more erase/prog
// operations against it.
func (s *SimDriver) SetTimebomb(block, ttl int) { s.blocks[block].timebomb = ttl }

// InjectBad marks count randomly chosen blocks bad and failed, as if they
// shipped from the factory pre-marked.
func (s *SimDriver) InjectBad(count int) {
	for i := 0; i < count; i++ {
		bno := rand.Intn(s.numBlocks)
		s.bad.Set(bno)
		s.blocks[bno].failed = true
	}
}

// InjectFailed marks count randomly chosen blocks failed without a bad-block
// marker, simulating a chip that starts returning garbage with no warning.
func (s *SimDriver) InjectFailed(count int) {
	for i := 0; i < count; i++ {
		s.SetFailed(rand.Intn(s.numBlocks))
	}
}

// InjectTimebombs arms count randomly chosen blocks with a random TTL in
// [1, maxTTL].
func (s *SimDriver) InjectTimebombs(count, maxTTL int) {
	for i := 0; i < count; i++ {
		s.SetTimebomb(rand.Intn(s.numBlocks), rand.Intn(maxTTL)+1)
	}
}

func repStatus(b blockStatus, badMark bool) byte {
	switch {
	case b.failed && badMark:
		return 'B'
	case b.failed:
		return 'b'
	case badMark:
		return '?'
	case b.nextPage != 0:
		return ':'
	default:
		return '.'
	}
}

// Dump writes a human-readable operation-count and per-block status report
// to w, one row of up to 64 block-status characters at a time.
func (s *SimDriver) Dump(w io.Writer) {
	fmt.Fprintf(w, "NAND operation counts:\n")
	fmt.Fprintf(w, "    is_bad:         %d\n", s.stats.IsBad)
	fmt.Fprintf(w, "    mark_bad:       %d\n", s.stats.MarkBad)
	fmt.Fprintf(w, "    erase:          %d\n", s.stats.Erase)
	fmt.Fprintf(w, "    erase failures: %d\n", s.stats.EraseFail)
	fmt.Fprintf(w, "    is_free:        %d\n", s.stats.IsFree)
	fmt.Fprintf(w, "    prog:           %d\n", s.stats.Prog)
	fmt.Fprintf(w, "    prog failures:  %d\n", s.stats.ProgFail)
	fmt.Fprintf(w, "    read:           %d\n", s.stats.Read)
	fmt.Fprintf(w, "    read (bytes):   %d\n\n", s.stats.ReadBytes)

	fmt.Fprintf(w, "Block status:\n")
	for i := 0; i < s.numBlocks; {
		n := s.numBlocks - i
		if n > 64 {
			n = 64
		}
		row := make([]byte, n)
		for k := 0; k < n; k++ {
			row[k] = repStatus(s.blocks[i+k], s.bad.Get(i+k))
		}
		fmt.Fprintf(w, "    %s\n", row)
		i += n
	}
}
