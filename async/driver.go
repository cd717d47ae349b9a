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

package async

import "github.com/jaco00/dharafs/nand"

// yieldingDriver decorates a nand.Driver so every IsBad, MarkBad, Erase,
// Prog, Read and Copy call first offers the Yielder a suspension point
// carrying the operation's address. IsFree and the geometry queries pass
// straight through without yielding.
type yieldingDriver struct {
	inner nand.Driver
	y     Yielder
}

func wrap(d nand.Driver, y Yielder) nand.Driver {
	return &yieldingDriver{inner: d, y: y}
}

func (d *yieldingDriver) NumBlocks() int     { return d.inner.NumBlocks() }
func (d *yieldingDriver) Log2PageSize() uint { return d.inner.Log2PageSize() }
func (d *yieldingDriver) Log2PPB() uint      { return d.inner.Log2PPB() }

func (d *yieldingDriver) IsBad(block int) bool {
	d.y.Yield(StepInfo{Kind: StepIsBad, Block: block, Page: -1})
	return d.inner.IsBad(block)
}

func (d *yieldingDriver) MarkBad(block int) {
	d.y.Yield(StepInfo{Kind: StepMarkBad, Block: block, Page: -1})
	d.inner.MarkBad(block)
}

func (d *yieldingDriver) Erase(block int) error {
	d.y.Yield(StepInfo{Kind: StepErase, Block: block, Page: -1})
	return d.inner.Erase(block)
}

func (d *yieldingDriver) Prog(page int, data []byte) error {
	d.y.Yield(StepInfo{Kind: StepProg, Block: -1, Page: page})
	return d.inner.Prog(page, data)
}

func (d *yieldingDriver) IsFree(page int) bool {
	return d.inner.IsFree(page)
}

func (d *yieldingDriver) Read(page, offset int, buf []byte) error {
	d.y.Yield(StepInfo{Kind: StepRead, Block: -1, Page: page})
	return d.inner.Read(page, offset, buf)
}

func (d *yieldingDriver) Copy(src, dst int) error {
	d.y.Yield(StepInfo{Kind: StepCopy, Block: -1, Page: src})
	return d.inner.Copy(src, dst)
}
