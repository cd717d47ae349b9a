/*
 write.go

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

package ftlmap

import "github.com/jaco00/dharafs/nand"

// prepareWrite runs auto-GC, traces the path to dst (building meta for the
// new page), and bumps count if dst is a genuinely new sector, refusing
// with MapFull if the map is already at capacity.
func (m *Map) prepareWrite(dst uint32, meta []byte) error {
	if err := m.autoGC(); err != nil {
		return err
	}

	if _, err := m.tracePath(dst, meta); err != nil {
		if nand.KindOf(err) != nand.KindNotFound {
			return err
		}

		if m.count >= m.Capacity() {
			return nand.Wrap(nand.KindMapFull, "prepare_write", 0, nil)
		}
		m.count++
	}

	ckSetCount(m.j.Cookie(), m.count)
	return nil
}

// Write stores data at logical sector dst, retrying across any number of
// internal Recover results until the journal either accepts the write or
// fails hard.
func (m *Map) Write(dst uint32, data []byte) error {
	for {
		meta := make([]byte, m.metaSize)
		oldCount := m.count

		if err := m.prepareWrite(dst, meta); err != nil {
			return err
		}

		err := m.j.Enqueue(data, meta)
		if err == nil {
			return nil
		}

		m.count = oldCount

		if err := m.tryRecover(err); err != nil {
			return err
		}
	}
}

// CopyPage copies the contents of physical page src to logical sector dst
// without materializing them through the caller.
func (m *Map) CopyPage(src int, dst uint32) error {
	for {
		meta := make([]byte, m.metaSize)
		oldCount := m.count

		if err := m.prepareWrite(dst, meta); err != nil {
			return err
		}

		err := m.j.Copy(src, meta)
		if err == nil {
			return nil
		}

		m.count = oldCount

		if err := m.tryRecover(err); err != nil {
			return err
		}
	}
}

// CopySector duplicates sector src's current data into sector dst. If src
// is unmapped, dst is trimmed instead.
func (m *Map) CopySector(src, dst uint32) error {
	p, err := m.Find(src)
	if err != nil {
		if nand.KindOf(err) == nand.KindNotFound {
			return m.Trim(dst)
		}
		return err
	}

	return m.CopyPage(p, dst)
}

// tryDelete removes sector s from the trie by promoting its closest cousin
// subtree in its place. NotFound is not an error: trimming an unmapped
// sector is a no-op.
func (m *Map) tryDelete(s uint32) error {
	meta := make([]byte, m.metaSize)

	if _, err := m.tracePath(s, meta); err != nil {
		if nand.KindOf(err) == nand.KindNotFound {
			return nil
		}
		return err
	}

	level := radixDepth - 1
	var altPage uint32 = sectorNone

	for level >= 0 {
		altPage = metaGetAlt(meta, level)
		if altPage != uint32(pageNone) {
			break
		}
		level--
	}

	if level < 0 {
		m.count = 0
		m.j.Clear()
		return nil
	}

	altMeta := make([]byte, m.metaSize)
	if err := m.j.ReadMeta(int(altPage), altMeta); err != nil {
		return err
	}

	metaSetID(meta, metaGetID(altMeta))
	metaSetAlt(meta, level, uint32(pageNone))
	for i := level + 1; i < radixDepth; i++ {
		metaSetAlt(meta, i, metaGetAlt(altMeta, i))
	}
	metaSetAlt(meta, level, uint32(pageNone))

	ckSetCount(m.j.Cookie(), m.count-1)
	if err := m.j.Copy(int(altPage), meta); err != nil {
		return err
	}

	m.count--
	return nil
}

// Trim deletes sector s. You don't need to call this before overwriting a
// sector, but it's a useful hint that frees the sector's old page sooner.
func (m *Map) Trim(s uint32) error {
	for {
		if err := m.autoGC(); err != nil {
			return err
		}

		err := m.tryDelete(s)
		if err == nil {
			return nil
		}

		if err := m.tryRecover(err); err != nil {
			return err
		}
	}
}
