/*
 yielder.go

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

// Package async lets a journal.Journal or ftlmap.Map be driven one NAND
// operation at a time by an external scheduling loop, instead of running a
// whole Resume/Write/Sync to completion on the calling goroutine. The
// reference implementation does this with a continuation-passing template
// library that threads a resumable stack through every call; Go already has
// a primitive for "pause here, someone else resumes me later" — a goroutine
// blocked on a channel — so that's what this package uses instead.
package async

// StepKind identifies which nand.Driver method a Yielder is about to see
// invoked.
type StepKind int

const (
	StepIsBad StepKind = iota
	StepMarkBad
	StepErase
	StepProg
	StepRead
	StepCopy
)

func (k StepKind) String() string {
	switch k {
	case StepIsBad:
		return "is_bad"
	case StepMarkBad:
		return "mark_bad"
	case StepErase:
		return "erase"
	case StepProg:
		return "prog"
	case StepRead:
		return "read"
	case StepCopy:
		return "copy"
	default:
		return "unknown"
	}
}

// StepInfo describes one pending nand.Driver call. Block and Page are
// whichever of the two addresses the underlying call, and may be -1 when not
// applicable (e.g. Block for a Read).
type StepInfo struct {
	Kind StepKind
	Block int
	Page  int
}

// Yielder is notified before every underlying NAND operation and controls
// when it actually runs. Yield may block for as long as it likes; the driver
// call it is guarding does not proceed until Yield returns.
type Yielder interface {
	Yield(step StepInfo)
}

// Scheduler is a Yielder that hands control to an external driving loop over
// a pair of unbuffered channels: the journal/map goroutine blocks in Yield
// until the driving loop calls Continue, and the driving loop blocks in Next
// until the journal/map goroutine reaches its next suspension point.
type Scheduler struct {
	steps    chan StepInfo
	resumes  chan struct{}
}

// NewScheduler returns a Scheduler ready to drive one asynchronous
// operation. A Scheduler is single-use: start exactly one async.Journal or
// async.Map call against it, then drive it to completion with Next/Continue
// before starting another.
func NewScheduler() *Scheduler {
	return &Scheduler{
		steps:   make(chan StepInfo),
		resumes: make(chan struct{}),
	}
}

// Yield implements Yielder by blocking the calling goroutine until the
// driving loop observes this step (via Next) and releases it (via
// Continue).
func (s *Scheduler) Yield(step StepInfo) {
	s.steps <- step
	<-s.resumes
}

// Next blocks until the operation under drive reaches its next suspension
// point, or the operation has finished and closed the scheduler, in which
// case ok is false.
func (s *Scheduler) Next() (step StepInfo, ok bool) {
	step, ok = <-s.steps
	return step, ok
}

// Continue releases the step most recently returned by Next, letting the
// underlying driver call proceed.
func (s *Scheduler) Continue() {
	s.resumes <- struct{}{}
}

// close is called once the wrapped operation has returned, unblocking any
// caller still waiting in Next.
func (s *Scheduler) close() {
	close(s.steps)
}
