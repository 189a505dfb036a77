// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package gpusync

import (
	"github.com/gogpu/gpusync/device"
	"golang.org/x/sync/errgroup"
)

// debugAssertions controls whether Join's at-most-one-exclusive-owner
// check panics when violated. Left on by default, like Rust's
// debug_assert! in a debug build; a release-oriented build of an
// application embedding this package can set it false to match Rust's
// release semantics (spec.md §7: "undefined behavior risk in release
// builds - these must be prevented by callers").
var debugAssertions = true

// joinFuture merges two sibling chains, representing the moment both of
// their events have happened.
type joinFuture struct {
	first, second Future
}

// Join combines first and second into a single Future representing the
// moment both have completed.
//
// Unlike the original's join(), which asserts and panics on device or
// queue mismatch (spec.md §9's Open Question on join's TODO error
// handling), this returns an error instead: ErrIllegalComposition wrapping
// a description of the mismatch. The at-most-one-exclusive-access
// invariant (spec.md testable property 3) is a separate, deeper check that
// remains a panic - see CheckBufferAccess/CheckImageAccess below.
func Join(first, second Future) (Future, error) {
	if !first.Device().SameDevice(second.Device()) {
		err := &ErrIllegalComposition{Reason: "join: first and second futures have different devices"}
		device.Logger().Error("rejected join", "error", err)
		return nil, err
	}

	if !first.QueueChangeAllowed() && !second.QueueChangeAllowed() {
		q1, ok1 := first.Queue()
		q2, ok2 := second.Queue()
		if !ok1 || !ok2 || !q1.SameQueue(q2) {
			err := &ErrIllegalComposition{Reason: "join: neither side allows a queue change and the queues differ"}
			device.Logger().Error("rejected join", "error", err)
			return nil, err
		}
	}

	return &joinFuture{first: first, second: second}, nil
}

func (f *joinFuture) Device() device.Device { return f.first.Device() }

// Queue implements the selection rule from spec.md §4.2: agree if both
// sides agree, otherwise defer to whichever side allows a queue change,
// otherwise unknown.
func (f *joinFuture) Queue() (device.Queue, bool) {
	q1, ok1 := f.first.Queue()
	q2, ok2 := f.second.Queue()
	switch {
	case ok1 && ok2:
		if q1.SameQueue(q2) {
			return q1, true
		}
		if f.first.QueueChangeAllowed() {
			return q2, true
		}
		if f.second.QueueChangeAllowed() {
			return q1, true
		}
		return nil, false
	case ok1:
		return q1, true
	case ok2:
		return q2, true
	default:
		return nil, false
	}
}

func (f *joinFuture) QueueChangeAllowed() bool {
	return f.first.QueueChangeAllowed() && f.second.QueueChangeAllowed()
}

// Flush flushes both predecessors. Spec.md §4.4 notes both flushes are
// idempotent and order does not matter for correctness - exactly the
// condition under which running them concurrently via errgroup is safe,
// so that's what this does rather than the original's sequential
// first-then-second.
func (f *joinFuture) Flush() error {
	var g errgroup.Group
	g.Go(f.first.Flush)
	g.Go(f.second.Flush)
	return g.Wait()
}

func (f *joinFuture) BuildSubmission() (Submission, error) {
	first, err := f.first.BuildSubmission()
	if err != nil {
		return nil, err
	}
	second, err := f.second.BuildSubmission()
	if err != nil {
		return nil, err
	}

	var firstQueue, secondQueue device.Queue
	if q, ok := f.first.Queue(); ok {
		firstQueue = q
	}
	if q, ok := f.second.Queue(); ok {
		secondQueue = q
	}
	return mergeSubmissions(first, second, firstQueue, secondQueue)
}

func (f *joinFuture) SignalFinished() {
	f.first.SignalFinished()
	f.second.SignalFinished()
}

// CleanupFinished cleans both predecessors concurrently, for the same
// reason Flush does.
func (f *joinFuture) CleanupFinished() {
	var g errgroup.Group
	g.Go(func() error { f.first.CleanupFinished(); return nil })
	g.Go(func() error { f.second.CleanupFinished(); return nil })
	_ = g.Wait()
}

func (f *joinFuture) CheckBufferAccess(buf device.Buffer, exclusive bool, q device.Queue) (Access, bool, error) {
	a1, ok1, err1 := f.first.CheckBufferAccess(buf, exclusive, q)
	a2, ok2, err2 := f.second.CheckBufferAccess(buf, exclusive, q)
	return joinAccess(a1, ok1, err1, a2, ok2, err2, exclusive)
}

func (f *joinFuture) CheckImageAccess(img device.Image, exclusive bool, q device.Queue) (Access, bool, error) {
	a1, ok1, err1 := f.first.CheckImageAccess(img, exclusive, q)
	a2, ok2, err2 := f.second.CheckImageAccess(img, exclusive, q)
	return joinAccess(a1, ok1, err1, a2, ok2, err2, exclusive)
}

// Close closes both predecessors concurrently. Neither side depends on
// submission order here - each chain's own Close is responsible for its
// own flush/wait semantics - so, as with Flush and CleanupFinished, this
// runs both through errgroup instead of the original's implicit sequential
// field-drop order.
func (f *joinFuture) Close() error {
	var g errgroup.Group
	g.Go(f.first.Close)
	g.Go(f.second.Close)
	return g.Wait()
}

// joinAccess implements the combination rule common to CheckBufferAccess
// and CheckImageAccess (spec.md §4.4): exactly one Ok wins outright; both
// Err means Err; both Ok unions stages/flags and, for an exclusive
// request, asserts that at most one side actually claimed it - no
// resource may have two concurrent exclusive owners (spec.md testable
// property 3).
func joinAccess(a1 Access, ok1 bool, err1 error, a2 Access, ok2 bool, err2 error, exclusive bool) (Access, bool, error) {
	if debugAssertions && exclusive && ok1 && ok2 {
		panic("gpusync: two futures both granted exclusive access to the same resource")
	}

	switch {
	case ok1 && !ok2:
		return a1, true, nil
	case ok2 && !ok1:
		return a2, true, nil
	case ok1 && ok2:
		return a1.Union(a2), true, nil
	default:
		if err1 != nil {
			return Access{}, false, err1
		}
		return Access{}, false, err2
	}
}
