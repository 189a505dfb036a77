// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package gpusync

import (
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gpusync/device"
)

// fenceState is the fence-signal node's state machine (spec.md §4.6):
//
//	Pending -> [flush] -> PartiallyFlushed -> [flush] -> Flushed -> [cleanup/close] -> Cleaned
//	Pending -> [flush] -> Flushed (single-step variants skip PartiallyFlushed entirely)
//	any state -> [panic mid-transition] -> Poisoned
//
// PartiallyFlushed exists only for the QueuePresent predecessor: presenting
// cannot carry a fence, so flushing it is two steps (submit the present,
// then submit an empty fence-bearing command buffer) and the first step
// must never be repeated on retry.
type fenceState int

const (
	statePending fenceState = iota
	statePartiallyFlushed
	stateFlushed
	stateCleaned
	statePoisoned
)

// fenceSignalFuture is the only node in the graph with genuinely shared
// mutable state: BuildSubmission, SignalFinished, CleanupFinished, and
// Close may all be called on the same *fenceSignalFuture (typically via
// separate Arc-like references kept by the caller and by a later
// combinator), so every transition runs under mu.
type fenceSignalFuture struct {
	previous Future
	fence    device.Fence
	timeout  time.Duration

	mu      sync.Mutex
	state   fenceState
	present device.PresentBuilder // the submitted present while PartiallyFlushed; never read - state alone records that the present ran
}

// ThenSignalFence attaches a fence to previous, to be signalled once its
// work completes. The returned future's BuildSubmission flushes (if
// necessary) and then waits on the fence, returning EmptySubmission{} to
// any successor - a signalled fence proves completion, so there is nothing
// left to wait on downstream.
func ThenSignalFence(previous Future, opts ...FenceSignalOption) (Future, error) {
	fence, err := previous.Device().CreateFence()
	if err != nil {
		return nil, fmt.Errorf("gpusync: allocating fence: %w", err)
	}
	o := resolveFenceSignalOptions(opts)
	return &fenceSignalFuture{previous: previous, fence: fence, timeout: o.timeout}, nil
}

// ThenSignalFenceAndFlush is ThenSignalFence followed by Flush. This is the
// usual way to end a chain: almost every caller wants the GPU submission to
// actually happen rather than sitting built but unsubmitted.
func ThenSignalFenceAndFlush(previous Future, opts ...FenceSignalOption) (Future, error) {
	f, err := ThenSignalFence(previous, opts...)
	if err != nil {
		return nil, err
	}
	if err := f.Flush(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *fenceSignalFuture) Device() device.Device { return f.previous.Device() }

// Queue always reports an unknown queue, (nil, false): waiting on the fence
// happens on the host, not on any particular queue. ThenExecuteSameQueue
// therefore cannot be chained directly after a fence-signal node; use
// ThenExecute with an explicit queue instead.
func (f *fenceSignalFuture) Queue() (device.Queue, bool) { return nil, false }

// QueueChangeAllowed is always true: successors may target any queue.
func (f *fenceSignalFuture) QueueChangeAllowed() bool { return true }

// Flush runs the state machine forward by exactly one submission attempt,
// idempotently: Flushed and Cleaned are terminal no-ops, and a failed
// attempt leaves the state wherever it failed so a retry picks up from
// there rather than resubmitting work that already reached the device.
func (f *fenceSignalFuture) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flushLocked()
}

func (f *fenceSignalFuture) flushLocked() (err error) {
	switch f.state {
	case stateFlushed, stateCleaned:
		return nil
	case statePoisoned:
		// Matches the original's "a poisoned future does nothing" handling:
		// the panic that poisoned this node already propagated to its
		// caller once: a second call is a no-op, not a second panic.
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			f.state = statePoisoned
			device.Logger().Error("fence-signal node poisoned by a panic mid-transition", "panic", r)
			panic(r)
		}
	}()

	if f.state == statePartiallyFlushed {
		return f.flushFencePhase()
	}

	sub, err := f.previous.BuildSubmission()
	if err != nil {
		return err
	}

	queue, hasQueue := f.previous.Queue()

	switch s := sub.(type) {
	case EmptySubmission:
		if !hasQueue {
			return fmt.Errorf("gpusync: fence signal: no known queue for an empty submission")
		}
		b := f.Device().NewSubmitBuilder()
		b.SetFenceSignal(f.fence)
		if err := b.Submit(queue); err != nil {
			device.Logger().Error("fence signal: submit failed", "error", err)
			return err
		}
		f.state = stateFlushed
		return nil

	case SemaphoreWaitSubmission:
		if !hasQueue {
			return fmt.Errorf("gpusync: fence signal: no known queue for a semaphore-wait submission")
		}
		b := f.Device().NewSubmitBuilder()
		for _, sem := range s.Semaphores {
			b.AddWait(sem, StageAllCommands.ToNative())
		}
		b.SetFenceSignal(f.fence)
		if err := b.Submit(queue); err != nil {
			device.Logger().Error("fence signal: submit failed", "error", err)
			return err
		}
		f.state = stateFlushed
		return nil

	case CommandBufferSubmission:
		if s.Builder.HasFence() {
			return &ErrIllegalComposition{Reason: "fence signal: submit builder already carries a fence"}
		}
		if !hasQueue {
			return fmt.Errorf("gpusync: fence signal: no known queue for a command-buffer submission")
		}
		s.Builder.SetFenceSignal(f.fence)
		if err := s.Builder.Submit(queue); err != nil {
			device.Logger().Error("fence signal: submit failed", "error", err)
			return err
		}
		f.state = stateFlushed
		return nil

	case PresentSubmission:
		// A present operation cannot carry a fence, so this is two
		// submissions: the present itself, then a separate empty,
		// fence-bearing command buffer. Step 1 must never be repeated, so
		// its success is committed to PartiallyFlushed before attempting
		// step 2.
		if !hasQueue {
			return fmt.Errorf("gpusync: fence signal: no known queue for a present submission")
		}
		if err := s.Builder.Submit(queue); err != nil {
			device.Logger().Error("fence signal: present submit failed", "error", err)
			return err
		}
		f.present = s.Builder
		f.state = statePartiallyFlushed
		return f.flushFencePhase()

	default:
		return fmt.Errorf("gpusync: fence signal: unrecognized submission variant")
	}
}

// flushFencePhase performs (or retries) the second step of a
// PartiallyFlushed present: submitting an empty command buffer that only
// carries the fence signal.
func (f *fenceSignalFuture) flushFencePhase() error {
	queue, hasQueue := f.previous.Queue()
	if !hasQueue {
		return fmt.Errorf("gpusync: fence signal: no known queue to submit the deferred fence signal")
	}
	b := f.Device().NewSubmitBuilder()
	b.SetFenceSignal(f.fence)
	if err := b.Submit(queue); err != nil {
		device.Logger().Error("fence signal: deferred fence submit failed", "error", err)
		return err
	}
	f.state = stateFlushed
	f.present = nil
	return nil
}

// BuildSubmission flushes if necessary, then blocks until the fence is
// signalled (or f.timeout elapses) before declaring the event complete. A
// signalled fence is proof the GPU is done, so successors receive
// EmptySubmission{} - there is nothing left for them to wait on.
func (f *fenceSignalFuture) BuildSubmission() (Submission, error) {
	if err := f.Flush(); err != nil {
		return nil, err
	}
	if err := f.fence.Wait(f.timeout); err != nil {
		return nil, err
	}
	return EmptySubmission{}, nil
}

// SignalFinished requires the node to have reached Flushed (or a later
// terminal state) first - calling it any earlier would tell resource
// accounting the GPU observed work it was never even submitted.
func (f *fenceSignalFuture) SignalFinished() {
	f.mu.Lock()
	state := f.state
	f.mu.Unlock()
	if state != stateFlushed && state != stateCleaned {
		panic("gpusync: SignalFinished called on a fence-signal node that has not flushed")
	}
	f.previous.SignalFinished()
}

// CleanupFinished never blocks: it polls the fence with a zero timeout and,
// only if that reports the fence already signalled, releases the
// predecessor and moves to Cleaned.
func (f *fenceSignalFuture) CleanupFinished() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != stateFlushed {
		return
	}
	if err := f.fence.Wait(0); err != nil {
		return
	}
	f.previous.SignalFinished()
	f.previous.CleanupFinished()
	f.state = stateCleaned
}

func (f *fenceSignalFuture) CheckBufferAccess(buf device.Buffer, exclusive bool, q device.Queue) (Access, bool, error) {
	f.mu.Lock()
	cleaned := f.state == stateCleaned || f.state == statePoisoned
	f.mu.Unlock()
	if cleaned {
		return Access{}, false, errUnknownAccess
	}
	return f.previous.CheckBufferAccess(buf, exclusive, q)
}

func (f *fenceSignalFuture) CheckImageAccess(img device.Image, exclusive bool, q device.Queue) (Access, bool, error) {
	f.mu.Lock()
	cleaned := f.state == stateCleaned || f.state == statePoisoned
	f.mu.Unlock()
	if cleaned {
		return Access{}, false, errUnknownAccess
	}
	return f.previous.CheckImageAccess(img, exclusive, q)
}

// Close forces a last flush, then - if the node reached Flushed - blocks on
// the fence before releasing the predecessor, so the predecessor's
// resources are never considered free while the GPU might still be using
// them. A Pending or PartiallyFlushed node that fails to flush on Close
// just drops the predecessor, cascading into its own Close/Drop-equivalent
// behavior, same as the original giving up and letting the chain's
// destructor order take over.
func (f *fenceSignalFuture) Close() error {
	f.mu.Lock()
	state := f.state
	f.mu.Unlock()

	if state == stateCleaned || state == statePoisoned {
		return nil
	}

	flushErr := f.Flush()

	f.mu.Lock()
	state = f.state
	f.mu.Unlock()

	var waitErr error
	if state == stateFlushed {
		waitErr = f.fence.Wait(f.timeout)
	}

	f.fence.Destroy()
	closeErr := f.previous.Close()

	f.mu.Lock()
	f.state = stateCleaned
	f.mu.Unlock()

	if flushErr != nil {
		return flushErr
	}
	if waitErr != nil {
		return waitErr
	}
	return closeErr
}
