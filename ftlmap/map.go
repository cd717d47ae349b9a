/*
 map.go

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
	"fmt"

	"github.com/jaco00/dharafs/journal"
	"github.com/jaco00/dharafs/nand"
)

// Config is supplied once, at construction.
type Config struct {
	Journal *journal.Journal
	GCRatio int
}

// Map is a radix-trie sector index layered over a journal.Journal. Every
// externally visible mutating method is an idempotent retry loop: it
// either succeeds, leaving count consistent with the journal's cookie, or
// returns a hard error (TooBad, MapFull, Ecc). An intermediate Recover
// result from the journal is never visible outside this package.
type Map struct {
	j       *journal.Journal
	driver  nand.Driver
	gcRatio int
	count   int

	metaSize   int
	maxRetries int
}

// New wraps an already-constructed journal.Journal with a sector index. A
// GCRatio of zero defaults to 1, matching the reference implementation's
// refusal to divide by zero.
func New(cfg Config) (*Map, error) {
	if cfg.Journal == nil {
		return nil, fmt.Errorf("ftlmap: nil journal")
	}
	gcRatio := cfg.GCRatio
	if gcRatio <= 0 {
		gcRatio = 1
	}

	return &Map{
		j:          cfg.Journal,
		driver:     cfg.Journal.Driver(),
		gcRatio:    gcRatio,
		metaSize:   cfg.Journal.MetaSize(),
		maxRetries: cfg.Journal.MaxRetries(),
	}, nil
}

// Resume delegates to the underlying journal and then recovers the live
// sector count from its checkpointed cookie.
func (m *Map) Resume() error {
	if err := m.j.Resume(); err != nil {
		m.count = 0
		return err
	}

	m.count = ckGetCount(m.j.Cookie())
	return nil
}

// Clear deletes every sector in the map.
func (m *Map) Clear() {
	if m.count != 0 {
		m.count = 0
		m.j.Clear()
	}
}

// Capacity returns the maximum number of sectors the map can hold, after
// reserving space for garbage collection headroom and a retry safety
// margin. It returns zero rather than going negative.
func (m *Map) Capacity() int {
	total := m.j.Capacity()
	reserve := total / (m.gcRatio + 1)
	safetyMargin := m.maxRetries * m.j.PagesPerBlock()

	if reserve+safetyMargin >= total {
		return 0
	}
	return total - reserve - safetyMargin
}

// Size returns the current number of mapped sectors.
func (m *Map) Size() int { return m.count }

// tracePath descends the trie for target. If newMeta is non-nil it is
// populated so that, if written to a new page at the current journal head,
// it encodes the complete, up-to-date path to target: at every depth it
// either copies forward the alt-pointer of the page that covered that bit,
// or records the diverging page itself as the cousin alt. Returns the
// physical page currently holding target, or NotFound.
func (m *Map) tracePath(target uint32, newMeta []byte) (int, error) {
	meta := make([]byte, m.metaSize)
	depth := 0
	p := m.j.Root()

	if newMeta != nil {
		metaSetID(newMeta, target)
	}

	if p == pageNone {
		return m.notFound(depth, newMeta)
	}

	if err := m.j.ReadMeta(p, meta); err != nil {
		return 0, err
	}

	for depth < radixDepth {
		id := metaGetID(meta)

		if id == sectorNone {
			return m.notFound(depth, newMeta)
		}

		if (target^id)&dBit(depth) != 0 {
			if newMeta != nil {
				metaSetAlt(newMeta, depth, uint32(p))
			}

			p = int(metaGetAlt(meta, depth))
			if p == pageNone {
				depth++
				return m.notFound(depth, newMeta)
			}

			if err := m.j.ReadMeta(p, meta); err != nil {
				return 0, err
			}
		} else if newMeta != nil {
			metaSetAlt(newMeta, depth, metaGetAlt(meta, depth))
		}

		depth++
	}

	return p, nil
}

func (m *Map) notFound(depth int, newMeta []byte) (int, error) {
	if newMeta != nil {
		for depth < radixDepth {
			metaSetAlt(newMeta, depth, sectorNone)
			depth++
		}
	}
	return 0, nand.Wrap(nand.KindNotFound, "trace_path", 0, nil)
}

// Find locates the physical page currently holding target, or NotFound.
func (m *Map) Find(target uint32) (int, error) {
	return m.tracePath(target, nil)
}

// Read fetches the full page for sector s into data. An unmapped sector
// reads back as all-0xFF, per the contract that a sector never written (or
// since trimmed) behaves as blank media.
func (m *Map) Read(s uint32, data []byte) error {
	p, err := m.Find(s)
	if err != nil {
		if nand.KindOf(err) == nand.KindNotFound {
			for i := range data {
				data[i] = 0xff
			}
			return nil
		}
		return err
	}

	return m.driver.Read(p, 0, data)
}
