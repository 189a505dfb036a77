// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package gpusync

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpusync/device"
)

// semaphoreSignalFuture wraps a predecessor and a freshly allocated
// semaphore. Flushing it submits the predecessor's work plus a signal of
// this node's semaphore; successors inherit the dependency as a
// SemaphoreWaitSubmission without needing to know anything about the
// predecessor.
type semaphoreSignalFuture struct {
	previous Future
	sem      device.Semaphore

	mu      sync.Mutex
	flushed bool
	flushErr error
}

// ThenSignalSemaphore signals a semaphore after previous. Call this when
// you want to run work on one queue and make the result visible on
// another: the returned future's BuildSubmission hands successors a
// SemaphoreWaitSubmission instead of needing to re-submit previous's work.
func ThenSignalSemaphore(previous Future) (Future, error) {
	sem, err := previous.Device().CreateSemaphore()
	if err != nil {
		return nil, fmt.Errorf("gpusync: allocating semaphore: %w", err)
	}
	return &semaphoreSignalFuture{previous: previous, sem: sem}, nil
}

// ThenSignalSemaphoreAndFlush is ThenSignalSemaphore followed by Flush.
//
// When you want to run operations A on one queue and operations B on
// another that need to see A's results, it is usually best to submit A as
// soon as possible while B is still being built - if A and B were on the
// same queue you'd have to choose between submitting them together or
// separately, but across queues you need two submits anyway, so flushing
// eagerly is never a disadvantage.
func ThenSignalSemaphoreAndFlush(previous Future) (Future, error) {
	f, err := ThenSignalSemaphore(previous)
	if err != nil {
		return nil, err
	}
	if err := f.Flush(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *semaphoreSignalFuture) Device() device.Device { return f.previous.Device() }

func (f *semaphoreSignalFuture) Queue() (device.Queue, bool) { return nil, false }

// QueueChangeAllowed is always true: the entire point of a semaphore
// signal is a cross-queue hand-off.
func (f *semaphoreSignalFuture) QueueChangeAllowed() bool { return true }

func (f *semaphoreSignalFuture) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.flushed {
		return f.flushErr
	}

	sub, err := f.previous.BuildSubmission()
	if err != nil {
		f.flushErr = err
		f.flushed = true
		return err
	}

	builder, err := asCommandBufferBuilder(f.Device(), sub)
	if err != nil {
		f.flushErr = err
		f.flushed = true
		return err
	}
	builder.AddSignal(f.sem)

	queue, ok := f.previous.Queue()
	if !ok {
		err := fmt.Errorf("gpusync: semaphore signal: predecessor has no known queue")
		f.flushErr = err
		f.flushed = true
		return err
	}

	if err := builder.Submit(queue); err != nil {
		f.flushErr = err
		f.flushed = true
		return err
	}

	f.flushed = true
	return nil
}

func (f *semaphoreSignalFuture) BuildSubmission() (Submission, error) {
	if err := f.Flush(); err != nil {
		return nil, err
	}
	return SemaphoreWaitSubmission{Semaphores: []device.Semaphore{f.sem}}, nil
}

func (f *semaphoreSignalFuture) SignalFinished() { f.previous.SignalFinished() }

func (f *semaphoreSignalFuture) CleanupFinished() { f.previous.CleanupFinished() }

func (f *semaphoreSignalFuture) CheckBufferAccess(buf device.Buffer, exclusive bool, q device.Queue) (Access, bool, error) {
	return f.previous.CheckBufferAccess(buf, exclusive, q)
}

func (f *semaphoreSignalFuture) CheckImageAccess(img device.Image, exclusive bool, q device.Queue) (Access, bool, error) {
	return f.previous.CheckImageAccess(img, exclusive, q)
}

// Close flushes (if not already done) then closes the predecessor -
// cascading into a fence-signal node's blocking Close further down the
// chain if there is one - so a pending semaphore is never left dangling
// (spec.md §4.5: "must not leak a pending semaphore").
func (f *semaphoreSignalFuture) Close() error {
	flushErr := f.Flush()
	closeErr := f.previous.Close()
	f.sem.Destroy()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

// asCommandBufferBuilder converts an arbitrary Submission into a
// CommandBufferSubmission's builder, the way the original's
// `let b: SubmitCommandBufferBuilder = sem.into();` conversion does for a
// SemaphoresWait. Empty, SemaphoresWait and CommandBuffer all convert; a
// Present cannot: signalling a semaphore after presenting would need a
// second submit, which this node does not perform.
func asCommandBufferBuilder(dev device.Device, sub Submission) (device.SubmitBuilder, error) {
	switch s := sub.(type) {
	case EmptySubmission:
		return dev.NewSubmitBuilder(), nil
	case SemaphoreWaitSubmission:
		b := dev.NewSubmitBuilder()
		for _, sem := range s.Semaphores {
			b.AddWait(sem, StageAllCommands.ToNative())
		}
		return b, nil
	case CommandBufferSubmission:
		return s.Builder, nil
	default:
		return nil, &ErrIllegalComposition{Reason: "cannot signal a semaphore after a QueuePresent submission"}
	}
}
