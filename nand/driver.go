/*
 driver.go

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

// Package nand describes the boundary contract between the journal/map core
// and whatever raw flash (or simulation) backs it.
package nand

const (
	// PageNone and SectorNone are the sentinel values used throughout the
	// journal and map wire format; both are all-ones 32-bit words.
	PageNone   = 0xFFFFFFFF
	SectorNone = 0xFFFFFFFF
)

// Driver is the capability set a host supplies for a physical or simulated
// chip. Every method may block; no two calls are ever in flight on the same
// Driver from the same journal/map instance simultaneously.
type Driver interface {
	// NumBlocks, Log2PageSize and Log2PPB describe fixed geometry.
	NumBlocks() int
	Log2PageSize() uint
	Log2PPB() uint

	// IsBad is non-destructive and must be cheap.
	IsBad(block int) bool

	// MarkBad is best-effort; there is nothing useful to do if it fails.
	MarkBad(block int)

	// Erase must verify chip status and report BadBlock on failure.
	Erase(block int) error

	// Prog programs one full page. Pages within a block are always
	// programmed in increasing order and never reprogrammed.
	Prog(page int, data []byte) error

	// IsFree may be imprecise in the conservative direction: it may say
	// false for a programmed all-0xFF page, but must never say true for a
	// page holding real data.
	IsFree(page int) bool

	// Read fetches a byte range from a page. ECC is handled here.
	Read(page int, offset int, buf []byte) error

	// Copy transfers one page's contents to another page, applying ECC.
	Copy(src, dst int) error
}

// Geometry holds the three fixed constants of a Driver, constructed once,
// and derives from them the quantities every caller of Driver ends up
// recomputing.
type Geometry struct {
	Log2PageSize uint
	Log2PPB      uint
	NumBlocks    int
}

func (g Geometry) PageSize() int      { return 1 << g.Log2PageSize }
func (g Geometry) PagesPerBlock() int { return 1 << g.Log2PPB }
func (g Geometry) BlockSize() int     { return g.PageSize() * g.PagesPerBlock() }
func (g Geometry) TotalPages() int    { return g.NumBlocks * g.PagesPerBlock() }

func (g Geometry) BlockOf(page int) int      { return page >> g.Log2PPB }
func (g Geometry) PageInBlock(page int) int  { return page & (g.PagesPerBlock() - 1) }
func (g Geometry) BlockStart(block int) int  { return block << g.Log2PPB }
func (g Geometry) IsBlockAligned(page int) bool { return g.PageInBlock(page) == 0 }

// GeometryOf reads the three fixed quantities off a Driver.
func GeometryOf(d Driver) Geometry {
	return Geometry{
		Log2PageSize: d.Log2PageSize(),
		Log2PPB:      d.Log2PPB(),
		NumBlocks:    d.NumBlocks(),
	}
}
