/*
 gc.go

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
	"github.com/jaco00/dharafs/nand"
	"github.com/sirupsen/logrus"
)

// rawGC inspects one raw page: if it's filler or stale it does nothing; if
// it's still the live representative of its sector, it is copied forward
// with refreshed metadata. Returns journal errors (including Recover) as
// they come, without dequeuing — the caller decides when that's safe.
func (m *Map) rawGC(src int) error {
	meta := make([]byte, m.metaSize)

	if err := m.j.ReadMeta(src, meta); err != nil {
		return err
	}

	target := metaGetID(meta)
	if target == sectorNone {
		return nil
	}

	current, err := m.tracePath(target, meta)
	if err != nil {
		if nand.KindOf(err) == nand.KindNotFound {
			return nil
		}
		return err
	}

	if current != src {
		return nil
	}

	ckSetCount(m.j.Cookie(), m.count)
	return m.j.Copy(src, meta)
}

// padQueue either enqueues an empty padding page (if the log is empty) or
// copies the current root forward, purely to advance the checkpoint
// machinery when there's nothing else useful to garbage-collect.
func (m *Map) padQueue() error {
	p := m.j.Root()
	ckSetCount(m.j.Cookie(), m.count)

	if p == pageNone {
		return m.j.Enqueue(nil, nil)
	}

	rootMeta := make([]byte, m.metaSize)
	if err := m.j.ReadMeta(p, rootMeta); err != nil {
		return err
	}

	return m.j.Copy(p, rootMeta)
}

// tryRecover drives the journal's recovery loop after a caller has seen a
// Recover result. It is only valid to call with cause actually carrying
// KindRecover; any other error is simply returned unchanged.
func (m *Map) tryRecover(cause error) error {
	if nand.KindOf(cause) != nand.KindRecover {
		return cause
	}

	restartCount := 0

	for m.j.InRecovery() {
		p := m.j.NextRecoverable()

		var err error
		if p == pageNone {
			err = m.padQueue()
		} else {
			err = m.rawGC(p)
		}

		if err != nil {
			if nand.KindOf(err) != nand.KindRecover {
				return err
			}

			if restartCount >= m.maxRetries {
				logrus.Errorf("ftlmap: recovery exhausted after %d restarts", restartCount)
				return nand.Wrap(nand.KindTooBad, "try_recover", 0, nil)
			}
			restartCount++
			logrus.Warnf("ftlmap: recovery restart %d/%d", restartCount, m.maxRetries)
		}
	}

	return nil
}

// autoGC runs gcRatio garbage-collection steps whenever the journal's size
// has reached the map's Capacity, keeping writes ahead of exhaustion
// instead of letting the journal fill up and stall.
func (m *Map) autoGC() error {
	if m.j.Size() < m.Capacity() {
		return nil
	}

	for i := 0; i < m.gcRatio; i++ {
		if err := m.GC(); err != nil {
			return err
		}
	}
	return nil
}

// Sync flushes the journal until it is fully checkpointed: every dirty or
// in-flight page is either garbage-collected away or padded past. Once
// Sync returns successfully, every write/trim/copy to date is durable.
func (m *Map) Sync() error {
	for !m.j.IsClean() {
		p := m.j.Peek()

		var err error
		if p == pageNone {
			err = m.padQueue()
		} else {
			err = m.rawGC(p)
			if err == nil {
				m.j.Dequeue()
			}
		}

		if err != nil {
			if rerr := m.tryRecover(err); rerr != nil {
				return rerr
			}
		}
	}
	return nil
}

// GC performs one garbage-collection step: inspect the oldest page, rewrite
// it forward if it's still live, and dequeue it either way. Safe to call at
// any time; autoGC calls it automatically when the journal nears capacity.
func (m *Map) GC() error {
	if m.count == 0 {
		return nil
	}

	for {
		tail := m.j.Peek()
		if tail == pageNone {
			break
		}

		if err := m.rawGC(tail); err == nil {
			m.j.Dequeue()
			break
		} else {
			if rerr := m.tryRecover(err); rerr != nil {
				return rerr
			}
		}
	}
	return nil
}
