/*
 journal_test.go

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
	"testing"

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
)

func newTestJournal(t *testing.T) (*Journal, *nandsim.SimDriver) {
	t.Helper()
	sim := nandsim.NewSimDriver(testLog2PageSize, testLog2PPB, testNumBlocks)
	j, err := New(Config{
		Driver:     sim,
		MetaSize:   testMetaSize,
		CookieSize: testCookieSize,
		MaxRetries: testMaxRetries,
	})
	require.NoError(t, err)
	return j, sim
}

func TestChoosePPC(t *testing.T) {
	ppc := ChoosePPC(testCookieSize, testMetaSize, testLog2PageSize, 6)
	if ppc == 0 || ppc > 6 {
		t.Fatalf("ChoosePPC returned out-of-range %d", ppc)
	}
	// the chosen period must leave room for header + cookie + one metadata
	// slot per user page (2^ppc - 1 of them; the last page is the checkpoint)
	maxMeta := (1 << testLog2PageSize) - headerSize - testCookieSize
	total := testMetaSize * ((1 << ppc) - 1)
	if total > maxMeta {
		t.Fatalf("ChoosePPC(%d) overflows one page: %d > %d", ppc, total, maxMeta)
	}
}

func TestChoosePPCClampsToMax(t *testing.T) {
	// tiny metadata size so the loop would run past max if unclamped
	ppc := ChoosePPC(1, 1, 12, 2)
	if ppc > 2 {
		t.Fatalf("ChoosePPC must not exceed max=2, got %d", ppc)
	}
}

func TestNewRejectsNilDriver(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestNewFreshJournalIsEmpty(t *testing.T) {
	j, _ := newTestJournal(t)
	if j.Root() != int(nand.PageNone) {
		t.Fatalf("fresh journal should have no root, got %d", j.Root())
	}
	if j.Size() != 0 {
		t.Fatalf("fresh journal size = %d, want 0", j.Size())
	}
	if !j.IsClean() {
		t.Fatal("fresh journal should be clean")
	}
}

func TestResumeOnBlankDeviceFails(t *testing.T) {
	j, _ := newTestJournal(t)
	err := j.Resume()
	require.Error(t, err)
	if nand.KindOf(err) != nand.KindTooBad {
		t.Fatalf("Resume on a blank device should report TooBad, got %v", nand.KindOf(err))
	}
}

func TestEnqueueThenPeekDequeue(t *testing.T) {
	j, _ := newTestJournal(t)

	data := make([]byte, j.PageSize())
	for i := range data {
		data[i] = byte(i)
	}
	meta := make([]byte, testMetaSize)

	require.NoError(t, j.Enqueue(data, meta))
	if j.Root() == int(nand.PageNone) {
		t.Fatal("root should be set after a successful enqueue")
	}
	if j.Size() != 1 {
		t.Fatalf("size after one enqueue = %d, want 1", j.Size())
	}

	p := j.Peek()
	if p == int(nand.PageNone) {
		t.Fatal("Peek should return the enqueued page")
	}
	j.Dequeue()
	// the group is not checkpointed yet, so Dequeue moves only tail; Size
	// counts from tailSync, which stays put until the journal is clean
	if j.Size() != 1 {
		t.Fatalf("size after dequeue = %d, want 1", j.Size())
	}
}

func TestResumeAfterEnqueueRecoversRoot(t *testing.T) {
	j, sim := newTestJournal(t)

	data := make([]byte, j.PageSize())
	meta := make([]byte, testMetaSize)
	// Resume restores the root recorded by the last checkpoint, so note the
	// root each time an enqueue completes a checkpoint group
	root := int(nand.PageNone)
	for i := 0; i < (1 << 4); i++ {
		require.NoError(t, j.Enqueue(data, meta))
		if j.IsClean() {
			root = j.Root()
		}
	}

	j2, err := New(Config{
		Driver:     sim,
		MetaSize:   testMetaSize,
		CookieSize: testCookieSize,
		MaxRetries: testMaxRetries,
	})
	require.NoError(t, err)
	require.NoError(t, j2.Resume())

	if j2.Root() != root {
		t.Fatalf("resumed root = %d, want %d", j2.Root(), root)
	}
}

func TestCapacityNonNegative(t *testing.T) {
	j, _ := newTestJournal(t)
	if j.Capacity() < 0 {
		t.Fatalf("Capacity must never be negative, got %d", j.Capacity())
	}
}

func TestCookieIsLiveView(t *testing.T) {
	j, _ := newTestJournal(t)
	cookie := j.Cookie()
	if len(cookie) != testCookieSize {
		t.Fatalf("Cookie length = %d, want %d", len(cookie), testCookieSize)
	}
	nand.W32(cookie, 0x1234)
	if nand.R32(j.Cookie()) != 0x1234 {
		t.Fatal("writes through Cookie() should be visible on the next call")
	}
}
