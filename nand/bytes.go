/*
 bytes.go

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

import "encoding/binary"

// R32/W32/R16/W16 are the little-endian packing primitives used by every
// on-disk structure in this module (metadata page header, cookie, per-page
// metadata). Kept as free functions over a byte slice rather than methods
// on a struct, matching the way dpfs/ent.go and dpfs/file_key.go pack their
// own fixed binary records with encoding/binary directly.
func R32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }
func W32(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }
func R16(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }
func W16(b []byte, v uint16) { binary.LittleEndian.PutUint16(b, v) }
