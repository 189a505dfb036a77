// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package gpusync

import (
	"sync"

	"github.com/gogpu/gpusync/device"
)

// presentFuture wraps a predecessor with a swapchain present. It is
// intended to be the last node of a chain: its BuildSubmission submits the
// present itself on the first call and hands successors EmptySubmission{};
// it never returns a PresentSubmission to a successor. Nothing
// in this package knows how to append a command buffer or another present
// after one (the merge table's unspecified CommandBuffer/Present cells,
// spec.md §4.2).
type presentFuture struct {
	previous Future
	queue    device.Queue

	mu       sync.Mutex
	built    bool
	buildErr error
}

// ThenSwapchainPresent presents to queue after previous. As with
// ThenExecute, queue must agree with previous's queue unless previous
// allows a queue change.
func ThenSwapchainPresent(previous Future, queue device.Queue) (Future, error) {
	if !previous.QueueChangeAllowed() {
		prevQueue, ok := previous.Queue()
		if !ok || !prevQueue.SameQueue(queue) {
			return nil, &ErrIllegalComposition{Reason: "present: predecessor does not allow a queue change to the requested queue"}
		}
	}
	return &presentFuture{previous: previous, queue: queue}, nil
}

func (f *presentFuture) Device() device.Device { return f.previous.Device() }

func (f *presentFuture) Queue() (device.Queue, bool) { return f.queue, true }

func (f *presentFuture) QueueChangeAllowed() bool { return false }

// Flush flushes the predecessor, then submits the present if nothing has
// submitted it yet.
func (f *presentFuture) Flush() error {
	if err := f.previous.Flush(); err != nil {
		return err
	}
	_, err := f.BuildSubmission()
	return err
}

// BuildSubmission appends this node's present onto the predecessor's
// accumulator at most once. A predecessor that is itself a
// CommandBufferSubmission must be flushed (submitted) eagerly first, since
// a command-buffer submission and a present cannot be merged into one -
// chainSubmission enforces this by returning ErrIllegalComposition for
// that pairing, same as Join's mergeSubmissions would. Later calls return
// the first call's cached result, matching the rest of this package's
// at-most-once submission contract.
func (f *presentFuture) BuildSubmission() (Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.built {
		if f.buildErr != nil {
			return nil, f.buildErr
		}
		return EmptySubmission{}, nil
	}
	f.built = true

	prev, err := f.previous.BuildSubmission()
	if err != nil {
		f.buildErr = err
		return nil, err
	}

	mine := PresentSubmission{Builder: f.Device().NewPresentBuilder()}

	prevQueue, _ := f.previous.Queue()
	merged, err := chainSubmission(prev, mine, prevQueue, f.queue)
	if err != nil {
		f.buildErr = err
		return nil, err
	}

	// A solo PresentSubmission survives chainSubmission untouched when
	// prev was Empty (the common case): nothing upstream will ever submit
	// it, so this node must.
	if present, ok := merged.(PresentSubmission); ok {
		if err := present.Builder.Submit(f.queue); err != nil {
			f.buildErr = err
			return nil, err
		}
		return EmptySubmission{}, nil
	}

	return merged, nil
}

func (f *presentFuture) SignalFinished() { f.previous.SignalFinished() }

func (f *presentFuture) CleanupFinished() { f.previous.CleanupFinished() }

func (f *presentFuture) CheckBufferAccess(buf device.Buffer, exclusive bool, q device.Queue) (Access, bool, error) {
	return f.previous.CheckBufferAccess(buf, exclusive, q)
}

func (f *presentFuture) CheckImageAccess(img device.Image, exclusive bool, q device.Queue) (Access, bool, error) {
	return f.previous.CheckImageAccess(img, exclusive, q)
}

// Close forces the present to actually happen if nothing has submitted it
// yet, then closes the predecessor. A present has no host-waitable
// completion of its own, so there is nothing further for Close to block
// on: unlike a fence-signal node, closing a present chain does not prove
// the GPU is done, only that the present was issued.
func (f *presentFuture) Close() error {
	flushErr := f.Flush()
	_, buildErr := f.BuildSubmission()
	closeErr := f.previous.Close()

	if flushErr != nil {
		return flushErr
	}
	if buildErr != nil {
		return buildErr
	}
	return closeErr
}
