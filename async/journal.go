/*
 journal.go

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

import "github.com/jaco00/dharafs/journal"

// Journal wraps a journal.Journal so its driver-facing calls surface as
// suspension points on a Scheduler instead of blocking the caller straight
// through to completion.
type Journal struct {
	inner *journal.Journal
	sched *Scheduler
}

// NewJournal builds a Journal whose underlying nand.Driver calls are routed
// through sched. cfg.Driver must already be set to the real backing driver;
// this constructor replaces it with a yielding decorator.
func NewJournal(cfg journal.Config, sched *Scheduler) (*Journal, error) {
	real := cfg.Driver
	cfg.Driver = wrap(real, sched)

	j, err := journal.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Journal{inner: j, sched: sched}, nil
}

// run executes fn on a fresh goroutine and returns a channel that receives
// its single result once fn returns, closing the scheduler's step channel
// so a concurrently blocked Scheduler.Next unblocks with ok == false.
func (j *Journal) run(fn func() error) <-chan error {
	done := make(chan error, 1)
	go func() {
		err := fn()
		j.sched.close()
		done <- err
	}()
	return done
}

// Resume drives journal.Journal.Resume asynchronously. The caller must pump
// the Journal's Scheduler (Next/Continue) concurrently until the returned
// channel is ready.
func (j *Journal) Resume() <-chan error { return j.run(j.inner.Resume) }

// Enqueue drives journal.Journal.Enqueue asynchronously.
func (j *Journal) Enqueue(data, meta []byte) <-chan error {
	return j.run(func() error { return j.inner.Enqueue(data, meta) })
}

// Copy drives journal.Journal.Copy asynchronously.
func (j *Journal) Copy(p int, meta []byte) <-chan error {
	return j.run(func() error { return j.inner.Copy(p, meta) })
}

// Unwrap exposes the underlying journal.Journal for read-only/bookkeeping
// accessors (Root, Cookie, Capacity, Size, ...), none of which touch the
// driver and so need no asynchronous form.
func (j *Journal) Unwrap() *journal.Journal { return j.inner }
