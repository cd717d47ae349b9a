/*
 badmap_test.go

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

import "testing"

func TestBadBitmapGetSet(t *testing.T) {
	b := newBadBitmap(130)
	for _, block := range []int{0, 1, 63, 64, 65, 129} {
		if b.Get(block) {
			t.Fatalf("block %d should start clear", block)
		}
	}

	b.Set(64)
	if !b.Get(64) {
		t.Fatal("block 64 should be set")
	}
	if b.Get(63) || b.Get(65) {
		t.Fatal("Set must not affect neighboring blocks")
	}
}

func TestBadBitmapCount(t *testing.T) {
	b := newBadBitmap(200)
	if b.Count() != 0 {
		t.Fatalf("fresh bitmap count = %d, want 0", b.Count())
	}

	for _, block := range []int{0, 5, 63, 64, 199} {
		b.Set(block)
	}
	if b.Count() != 5 {
		t.Fatalf("count = %d, want 5", b.Count())
	}
}
