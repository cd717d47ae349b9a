/*
 errors.go

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

import "fmt"

// Kind tags the small closed set of outcomes the journal and map recognize.
// Recover is internal-only: it must never escape a Map-level operation.
type Kind uint8

const (
	KindNone Kind = iota
	KindBadBlock
	KindEcc
	KindTooBad
	KindRecover
	KindJournalFull
	KindNotFound
	KindMapFull
	KindCorruptMap
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBadBlock:
		return "bad_block"
	case KindEcc:
		return "ecc"
	case KindTooBad:
		return "too_bad"
	case KindRecover:
		return "recover"
	case KindJournalFull:
		return "journal_full"
	case KindNotFound:
		return "not_found"
	case KindMapFull:
		return "map_full"
	case KindCorruptMap:
		return "corrupt_map"
	default:
		return "unknown"
	}
}

// Error wraps a Kind with the operation and block/page that produced it, the
// way dpfs wraps sentinel conditions with fmt.Errorf but with an explicit,
// comparable tag a caller can switch on without string matching.
type Error struct {
	Kind Kind
	Op   string
	Pos  int
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("nand: %s at %d: %s: %v", e.Op, e.Pos, e.Kind, e.Err)
	}
	return fmt.Sprintf("nand: %s at %d: %s", e.Op, e.Pos, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, KindBadBlock) style checks work against a bare Kind
// sentinel without requiring the caller to unwrap an *Error by hand.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && e.Kind == k
}

func (k Kind) Error() string { return k.String() }

// Wrap constructs an *Error for the given kind, op and position. Err may be
// nil when the kind alone is the payload (e.g. NotFound).
func Wrap(kind Kind, op string, pos int, err error) *Error {
	return &Error{Kind: kind, Op: op, Pos: pos, Err: err}
}

// KindOf extracts the Kind carried by err, if any, defaulting to KindNone
// for a nil error and KindTooBad for an error this package didn't produce.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindTooBad
}
