/*
 mmap.go

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

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/jaco00/dharafs/nand"
)

// MmapDriver is a nand.Driver backed by a memory-mapped file, so a device
// image survives process restarts and can be inspected with ordinary file
// tools between runs. Bad-block tracking lives in a small bitmap packed
// into the first hdrSize bytes of that same mapping, ahead of the page
// data, so a mark survives a restart exactly like programmed data does -
// there is no separate save/restore step, since a write through the
// mapping already is the persistence.
type MmapDriver struct {
	file    *os.File
	data    []byte
	hdrSize int

	log2PageSize uint
	log2PPB      uint
	numBlocks    int

	bad      mmapBadBitmap
	nextPage []int
}

// mmapBadBitmapSize returns the number of header bytes needed to hold one
// bit per block.
func mmapBadBitmapSize(numBlocks int) int { return (numBlocks + 7) / 8 }

// mmapBadBitmap is badBitmap's counterpart for MmapDriver: instead of its
// own backing array, it addresses a byte range inside the memory-mapped
// file directly, so Set takes effect in the mapping (and, after Sync or on
// process exit, on disk) with no separate persistence step.
type mmapBadBitmap struct {
	bytes []byte
}

func (b mmapBadBitmap) Get(block int) bool {
	return b.bytes[block/8]&(1<<(uint(block)%8)) != 0
}

func (b mmapBadBitmap) Set(block int) {
	b.bytes[block/8] |= 1 << (uint(block) % 8)
}

// OpenMmapDriver maps path (creating and zero-extending it if necessary) as
// a device of the given geometry. The mapped file carries a small header
// of packed bad-block bits ahead of the page data, so bad blocks marked in
// a prior run are still bad after a reopen. Close unmaps and closes the
// file.
func OpenMmapDriver(path string, log2PageSize, log2PPB uint, numBlocks int) (*MmapDriver, error) {
	pageSize := 1 << log2PageSize
	pagesPerBlock := 1 << log2PPB
	hdrSize := mmapBadBitmapSize(numBlocks)
	size := int64(hdrSize) + int64(numBlocks)*int64(pageSize)*int64(pagesPerBlock)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("nandsim: open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("nandsim: stat %s: %w", path, err)
	}

	fresh := info.Size() < size
	if fresh {
		if err := f.Truncate(size); err != nil {
			f.Close()
			return nil, fmt.Errorf("nandsim: truncate %s: %w", path, err)
		}
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("nandsim: mmap %s: %w", path, err)
	}

	if fresh {
		for i := range data {
			data[i] = 0xff
		}
		for i := 0; i < hdrSize; i++ {
			data[i] = 0
		}
	}

	nextPage := make([]int, numBlocks)
	for i := range nextPage {
		nextPage[i] = pagesPerBlock
	}

	return &MmapDriver{
		file:         f,
		data:         data,
		hdrSize:      hdrSize,
		log2PageSize: log2PageSize,
		log2PPB:      log2PPB,
		numBlocks:    numBlocks,
		bad:          mmapBadBitmap{bytes: data[:hdrSize]},
		nextPage:     nextPage,
	}, nil
}

// Close unmaps and closes the backing file.
func (d *MmapDriver) Close() error {
	if d.data != nil {
		if err := unix.Munmap(d.data); err != nil {
			return fmt.Errorf("nandsim: munmap: %w", err)
		}
		d.data = nil
	}
	return d.file.Close()
}

// Sync flushes the mapped pages to disk.
func (d *MmapDriver) Sync() error {
	return unix.Msync(d.data, unix.MS_SYNC)
}

func (d *MmapDriver) pageSize() int      { return 1 << d.log2PageSize }
func (d *MmapDriver) pagesPerBlock() int { return 1 << d.log2PPB }
func (d *MmapDriver) blockSize() int     { return d.pageSize() * d.pagesPerBlock() }

func (d *MmapDriver) pageData(p int) []byte {
	start := d.hdrSize + p*d.pageSize()
	return d.data[start : start+d.pageSize()]
}

func (d *MmapDriver) NumBlocks() int     { return d.numBlocks }
func (d *MmapDriver) Log2PageSize() uint { return d.log2PageSize }
func (d *MmapDriver) Log2PPB() uint      { return d.log2PPB }

func (d *MmapDriver) IsBad(block int) bool { return d.bad.Get(block) }
func (d *MmapDriver) MarkBad(block int)    { d.bad.Set(block) }

func (d *MmapDriver) Erase(block int) error {
	if d.bad.Get(block) {
		return nand.Wrap(nand.KindBadBlock, "erase", 0, fmt.Errorf("erase on block marked bad: %d", block))
	}
	d.nextPage[block] = 0
	start := d.hdrSize + block*d.blockSize()
	blk := d.data[start : start+d.blockSize()]
	for i := range blk {
		blk[i] = 0xff
	}
	return nil
}

func (d *MmapDriver) Prog(page int, data []byte) error {
	bno := page >> d.log2PPB
	pno := page & (d.pagesPerBlock() - 1)

	if d.bad.Get(bno) {
		return nand.Wrap(nand.KindBadBlock, "prog", page, fmt.Errorf("prog on block marked bad: %d", bno))
	}
	if pno < d.nextPage[bno] {
		return nand.Wrap(nand.KindBadBlock, "prog", page, fmt.Errorf("out-of-order page programming in block %d", bno))
	}

	d.nextPage[bno] = pno + 1
	copy(d.pageData(page), data)
	return nil
}

func (d *MmapDriver) IsFree(page int) bool {
	bno := page >> d.log2PPB
	pno := page & (d.pagesPerBlock() - 1)
	return d.nextPage[bno] <= pno
}

func (d *MmapDriver) Read(page, offset int, buf []byte) error {
	copy(buf, d.pageData(page)[offset:])
	return nil
}

func (d *MmapDriver) Copy(src, dst int) error {
	tmp := make([]byte, d.pageSize())
	if err := d.Read(src, 0, tmp); err != nil {
		return err
	}
	return d.Prog(dst, tmp)
}
