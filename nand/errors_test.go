/*
 errors_test.go

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

import (
	"errors"
	"testing"
)

func TestWrapIsAgainstKind(t *testing.T) {
	err := Wrap(KindBadBlock, "prog", 12, nil)
	if !errors.Is(err, KindBadBlock) {
		t.Fatal("errors.Is should match the wrapped kind")
	}
	if errors.Is(err, KindEcc) {
		t.Fatal("errors.Is should not match an unrelated kind")
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(nil) != KindNone {
		t.Fatal("KindOf(nil) should be KindNone")
	}
	if KindOf(errors.New("opaque")) != KindTooBad {
		t.Fatal("KindOf of a foreign error should default to KindTooBad")
	}
	if KindOf(Wrap(KindNotFound, "find", 0, nil)) != KindNotFound {
		t.Fatal("KindOf should unwrap an *Error's own Kind")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("chip timeout")
	err := Wrap(KindEcc, "read", 3, cause)
	if !errors.Is(err, cause) {
		t.Fatal("errors.Is should see through to the wrapped cause")
	}
}
