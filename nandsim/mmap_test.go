/*
 mmap_test.go

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
	"bytes"
	"path/filepath"
	"testing"

	"github.com/jaco00/dharafs/nand"
	"github.com/stretchr/testify/require"
)

func TestMmapDriverEraseProgReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.img")
	d, err := OpenMmapDriver(path, 9, 3, 4)
	require.NoError(t, err)
	defer d.Close()

	require.NoError(t, d.Erase(0))
	data := bytes.Repeat([]byte{0x5a}, d.pageSize())
	require.NoError(t, d.Prog(0, data))

	got := make([]byte, d.pageSize())
	require.NoError(t, d.Read(0, 0, got))
	require.True(t, bytes.Equal(data, got))
}

func TestMmapDriverPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.img")

	d, err := OpenMmapDriver(path, 9, 3, 4)
	require.NoError(t, err)
	require.NoError(t, d.Erase(0))
	data := bytes.Repeat([]byte{0x77}, d.pageSize())
	require.NoError(t, d.Prog(0, data))
	require.NoError(t, d.Sync())
	require.NoError(t, d.Close())

	d2, err := OpenMmapDriver(path, 9, 3, 4)
	require.NoError(t, err)
	defer d2.Close()

	got := make([]byte, d2.pageSize())
	require.NoError(t, d2.Read(0, 0, got))
	require.True(t, bytes.Equal(data, got))
}

func TestMmapDriverFreshIsBlank(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.img")
	d, err := OpenMmapDriver(path, 9, 3, 2)
	require.NoError(t, err)
	defer d.Close()

	got := make([]byte, d.pageSize())
	require.NoError(t, d.Read(0, 0, got))
	for _, b := range got {
		if b != 0xff {
			t.Fatal("a freshly created device image should read back as all-0xFF")
		}
	}
}

func TestMmapDriverMarkBadBlocksErase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.img")
	d, err := OpenMmapDriver(path, 9, 3, 2)
	require.NoError(t, err)
	defer d.Close()

	d.MarkBad(0)
	err = d.Erase(0)
	require.Error(t, err)
	if nand.KindOf(err) != nand.KindBadBlock {
		t.Fatalf("erasing a marked-bad block should report BadBlock, got %v", nand.KindOf(err))
	}
}

func TestMmapDriverBadBlocksPersistAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.img")

	d, err := OpenMmapDriver(path, 9, 3, 5)
	require.NoError(t, err)
	d.MarkBad(2)
	require.NoError(t, d.Sync())
	require.NoError(t, d.Close())

	d2, err := OpenMmapDriver(path, 9, 3, 5)
	require.NoError(t, err)
	defer d2.Close()

	require.True(t, d2.IsBad(2), "a block marked bad before closing should still be bad after reopening")
	require.False(t, d2.IsBad(1), "reopening must not mark unrelated blocks bad")

	err = d2.Erase(2)
	require.Error(t, err)
	require.Equal(t, nand.KindBadBlock, nand.KindOf(err))
}

func TestMmapDriverFreshImageHasNoBadBlocks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.img")
	d, err := OpenMmapDriver(path, 9, 3, 8)
	require.NoError(t, err)
	defer d.Close()

	for b := 0; b < 8; b++ {
		require.False(t, d.IsBad(b), "block %d should not start out bad on a fresh image", b)
	}
}
