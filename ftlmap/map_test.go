/*
 map_test.go

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

import (
	"bytes"
	"testing"

	"github.com/jaco00/dharafs/journal"
	"github.com/jaco00/dharafs/nand"
	"github.com/jaco00/dharafs/nandsim"
	"github.com/stretchr/testify/require"
)

const (
	testLog2PageSize = 9
	testLog2PPB      = 3
	testNumBlocks    = 113
	testMetaSize     = 132
	testCookieSize   = 4
	testMaxRetries   = 8
	testGCRatio      = 4
)

func newTestMap(t *testing.T) (*Map, *nandsim.SimDriver) {
	t.Helper()
	sim := nandsim.NewSimDriver(testLog2PageSize, testLog2PPB, testNumBlocks)
	j, err := journal.New(journal.Config{
		Driver:     sim,
		MetaSize:   testMetaSize,
		CookieSize: testCookieSize,
		MaxRetries: testMaxRetries,
	})
	require.NoError(t, err)

	m, err := New(Config{Journal: j, GCRatio: testGCRatio})
	require.NoError(t, err)
	return m, sim
}

func fillPattern(n int, seed byte) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = seed + byte(i)
	}
	return buf
}

func TestWriteThenRead(t *testing.T) {
	m, _ := newTestMap(t)
	pageSize := m.j.PageSize()

	want := fillPattern(pageSize, 0x11)
	require.NoError(t, m.Write(5, want))

	got := make([]byte, pageSize)
	require.NoError(t, m.Read(5, got))
	require.True(t, bytes.Equal(want, got))

	if m.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", m.Size())
	}
}

func TestReadUnmappedSectorIsBlank(t *testing.T) {
	m, _ := newTestMap(t)
	pageSize := m.j.PageSize()

	got := make([]byte, pageSize)
	for i := range got {
		got[i] = 0
	}
	require.NoError(t, m.Read(42, got))

	for i, b := range got {
		if b != 0xff {
			t.Fatalf("byte %d = %#x, want 0xff for an unmapped sector", i, b)
		}
	}
}

func TestOverwriteReplacesData(t *testing.T) {
	m, _ := newTestMap(t)
	pageSize := m.j.PageSize()

	require.NoError(t, m.Write(7, fillPattern(pageSize, 0x01)))
	require.NoError(t, m.Write(7, fillPattern(pageSize, 0x02)))

	if m.Size() != 1 {
		t.Fatalf("overwriting an existing sector should not grow Size(), got %d", m.Size())
	}

	got := make([]byte, pageSize)
	require.NoError(t, m.Read(7, got))
	require.True(t, bytes.Equal(fillPattern(pageSize, 0x02), got))
}

func TestTrimRemovesSector(t *testing.T) {
	m, _ := newTestMap(t)
	pageSize := m.j.PageSize()

	require.NoError(t, m.Write(3, fillPattern(pageSize, 0x05)))
	require.NoError(t, m.Trim(3))

	if m.Size() != 0 {
		t.Fatalf("Size() after trimming the only sector = %d, want 0", m.Size())
	}

	_, err := m.Find(3)
	if nand.KindOf(err) != nand.KindNotFound {
		t.Fatalf("Find after Trim should report NotFound, got %v", err)
	}
}

func TestTrimUnmappedSectorIsNoop(t *testing.T) {
	m, _ := newTestMap(t)
	require.NoError(t, m.Trim(99))
	if m.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", m.Size())
	}
}

func TestCopySectorDuplicatesData(t *testing.T) {
	m, _ := newTestMap(t)
	pageSize := m.j.PageSize()

	want := fillPattern(pageSize, 0x33)
	require.NoError(t, m.Write(1, want))
	require.NoError(t, m.CopySector(1, 2))

	got := make([]byte, pageSize)
	require.NoError(t, m.Read(2, got))
	require.True(t, bytes.Equal(want, got))

	if m.Size() != 2 {
		t.Fatalf("Size() after CopySector to a new sector = %d, want 2", m.Size())
	}
}

func TestCopySectorFromUnmappedTrimsDestination(t *testing.T) {
	m, _ := newTestMap(t)
	pageSize := m.j.PageSize()

	require.NoError(t, m.Write(4, fillPattern(pageSize, 0x44)))
	require.NoError(t, m.CopySector(9, 4))

	if m.Size() != 0 {
		t.Fatalf("copying from an unmapped source should trim the destination; Size() = %d", m.Size())
	}
}

func TestManySectorsSurviveGC(t *testing.T) {
	m, _ := newTestMap(t)
	pageSize := m.j.PageSize()

	const n = 40
	for s := uint32(0); s < n; s++ {
		require.NoError(t, m.Write(s, fillPattern(pageSize, byte(s))))
	}

	require.NoError(t, m.Sync())

	for s := uint32(0); s < n; s++ {
		got := make([]byte, pageSize)
		require.NoError(t, m.Read(s, got))
		require.True(t, bytes.Equal(fillPattern(pageSize, byte(s)), got), "sector %d corrupted after GC", s)
	}
}

func TestResumeRecoversWrittenSectors(t *testing.T) {
	m, sim := newTestMap(t)
	pageSize := m.j.PageSize()

	want := fillPattern(pageSize, 0x77)
	require.NoError(t, m.Write(10, want))
	require.NoError(t, m.Sync())

	j2, err := journal.New(journal.Config{
		Driver:     sim,
		MetaSize:   testMetaSize,
		CookieSize: testCookieSize,
		MaxRetries: testMaxRetries,
	})
	require.NoError(t, err)
	m2, err := New(Config{Journal: j2, GCRatio: testGCRatio})
	require.NoError(t, err)
	require.NoError(t, m2.Resume())

	if m2.Size() != 1 {
		t.Fatalf("resumed Size() = %d, want 1", m2.Size())
	}

	got := make([]byte, pageSize)
	require.NoError(t, m2.Read(10, got))
	require.True(t, bytes.Equal(want, got))
}

func TestCapacityNeverNegative(t *testing.T) {
	m, _ := newTestMap(t)
	if m.Capacity() < 0 {
		t.Fatalf("Capacity() must clamp to zero, got %d", m.Capacity())
	}
}
