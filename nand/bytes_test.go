/*
 bytes_test.go

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

package nand

import "testing"

func TestW32R32RoundTrip(t *testing.T) {
	buf := make([]byte, 4)
	for _, v := range []uint32{0, 1, 0xdeadbeef, 0xffffffff} {
		W32(buf, v)
		if got := R32(buf); got != v {
			t.Fatalf("R32(W32(%#x)) = %#x", v, got)
		}
	}
}

func TestW16R16RoundTrip(t *testing.T) {
	buf := make([]byte, 2)
	for _, v := range []uint16{0, 1, 0xbeef, 0xffff} {
		W16(buf, v)
		if got := R16(buf); got != v {
			t.Fatalf("R16(W16(%#x)) = %#x", v, got)
		}
	}
}

func TestW32LittleEndian(t *testing.T) {
	buf := make([]byte, 4)
	W32(buf, 0x01020304)
	want := []byte{0x04, 0x03, 0x02, 0x01}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("byte %d = %#x, want %#x", i, buf[i], want[i])
		}
	}
}
