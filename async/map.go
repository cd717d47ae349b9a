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

package async

import "github.com/jaco00/dharafs/ftlmap"

// Map wraps an ftlmap.Map the same way Journal wraps a journal.Journal:
// every call that can reach the driver becomes a channel-driven suspension
// sequence instead of a synchronous call.
type Map struct {
	inner *ftlmap.Map
	sched *Scheduler
}

// NewMap builds a Map on top of an already-constructed async Journal, so
// both layers share one Scheduler and therefore one suspension stream.
func NewMap(j *Journal, gcRatio int) (*Map, error) {
	m, err := ftlmap.New(ftlmap.Config{Journal: j.inner, GCRatio: gcRatio})
	if err != nil {
		return nil, err
	}
	return &Map{inner: m, sched: j.sched}, nil
}

func (m *Map) run(fn func() error) <-chan error {
	done := make(chan error, 1)
	go func() {
		err := fn()
		m.sched.close()
		done <- err
	}()
	return done
}

// Resume drives ftlmap.Map.Resume asynchronously.
func (m *Map) Resume() <-chan error { return m.run(m.inner.Resume) }

// Write drives ftlmap.Map.Write asynchronously.
func (m *Map) Write(dst uint32, data []byte) <-chan error {
	return m.run(func() error { return m.inner.Write(dst, data) })
}

// Read drives ftlmap.Map.Read asynchronously.
func (m *Map) Read(s uint32, data []byte) <-chan error {
	return m.run(func() error { return m.inner.Read(s, data) })
}

// Trim drives ftlmap.Map.Trim asynchronously.
func (m *Map) Trim(s uint32) <-chan error {
	return m.run(func() error { return m.inner.Trim(s) })
}

// CopySector drives ftlmap.Map.CopySector asynchronously.
func (m *Map) CopySector(src, dst uint32) <-chan error {
	return m.run(func() error { return m.inner.CopySector(src, dst) })
}

// Sync drives ftlmap.Map.Sync asynchronously.
func (m *Map) Sync() <-chan error { return m.run(m.inner.Sync) }

// GC drives ftlmap.Map.GC asynchronously.
func (m *Map) GC() <-chan error { return m.run(m.inner.GC) }

// Unwrap exposes the underlying ftlmap.Map for read-only accessors
// (Size, Capacity, Find). Size and Capacity do not touch the driver; Find
// reads page metadata through it.
func (m *Map) Unwrap() *ftlmap.Map { return m.inner }
