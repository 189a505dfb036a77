// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package gpusync

import (
	"sync"

	"github.com/gogpu/gpusync/device"
)

// BufferAccess declares that a command buffer touches buf with the given
// access, exclusively or not. Passed to ThenExecute so CheckBufferAccess
// can answer authoritatively for resources this node's command buffer
// touches, instead of merely delegating to the predecessor.
//
// Grounded on original_source's bind_vertex_buffers.rs, which performs the
// same kind of device-ownership/resource-manifest check before recording a
// command that references a buffer.
type BufferAccess struct {
	Buffer    device.Buffer
	Access    Access
	Exclusive bool
}

// ImageAccess is BufferAccess's counterpart for images.
type ImageAccess struct {
	Image     device.Image
	Access    Access
	Exclusive bool
}

// executeFuture wraps a predecessor and a single sealed command buffer,
// along with the manifest of resources that command buffer touches.
//
// Its accumulated CommandBufferSubmission stays open for a successor
// (another ThenExecute, a present, a fence signal) to merge further work
// into - unless nothing ever does, in which case Flush submits it
// directly. built/submitted track which of those happened, so whichever
// comes first (a direct Flush call, or a successor pulling the
// accumulator via BuildSubmission) is the only one that ever reaches the
// device.
type executeFuture struct {
	previous Future
	queue    device.Queue
	cmdBuf   device.CommandBuffer
	buffers  []BufferAccess
	images   []ImageAccess

	mu        sync.Mutex
	built     bool
	submitted bool
	sub       Submission
	buildErr  error
}

// ThenExecute runs cmdBuf on queue after previous. buffers and images
// declare every resource cmdBuf accesses and how, so CheckBufferAccess and
// CheckImageAccess can answer for them without inspecting the command
// buffer's contents - this package never does.
//
// If previous does not allow a queue change, queue must match its queue
// exactly; ThenExecuteSameQueue is the common case of reusing previous's
// queue, which always passes that check.
func ThenExecute(previous Future, queue device.Queue, cmdBuf device.CommandBuffer, buffers []BufferAccess, images []ImageAccess) (Future, error) {
	if !previous.QueueChangeAllowed() {
		prevQueue, ok := previous.Queue()
		if !ok || !prevQueue.SameQueue(queue) {
			return nil, &ErrIllegalComposition{Reason: "execute: predecessor does not allow a queue change to the requested queue"}
		}
	}
	return &executeFuture{previous: previous, queue: queue, cmdBuf: cmdBuf, buffers: buffers, images: images}, nil
}

// ThenExecuteSameQueue is ThenExecute using previous's own queue. It
// returns an error if previous's queue is unknown - callers in that
// situation must use ThenExecute with an explicit queue instead.
func ThenExecuteSameQueue(previous Future, cmdBuf device.CommandBuffer, buffers []BufferAccess, images []ImageAccess) (Future, error) {
	queue, ok := previous.Queue()
	if !ok {
		return nil, &ErrIllegalComposition{Reason: "execute: predecessor's queue is unknown, use ThenExecute with an explicit queue"}
	}
	return ThenExecute(previous, queue, cmdBuf, buffers, images)
}

func (f *executeFuture) Device() device.Device { return f.previous.Device() }

func (f *executeFuture) Queue() (device.Queue, bool) { return f.queue, true }

func (f *executeFuture) QueueChangeAllowed() bool { return false }

// Flush builds this node's accumulator (merging the predecessor's, same as
// BuildSubmission) and, if nothing has consumed it yet, submits it
// directly - the behavior needed when this node is the end of a chain with
// no following present or fence signal to do that submission instead.
func (f *executeFuture) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.buildLocked(); err != nil {
		return err
	}
	if f.submitted {
		return nil
	}

	cb, ok := f.sub.(CommandBufferSubmission)
	if !ok {
		// Already folded into something else's accumulator (e.g. merged
		// with wait semaphores and handed back as-is) - nothing of ours
		// left to submit directly.
		return nil
	}
	if err := cb.Builder.Submit(f.queue); err != nil {
		f.buildErr = err
		return err
	}
	f.submitted = true
	f.sub = EmptySubmission{}
	return nil
}

// BuildSubmission merges this node's command buffer into whatever
// accumulator the predecessor produced, caching the result so a second
// call - whether from a direct Flush or a successor further up the chain -
// never re-merges or re-submits the same command buffer. A QueuePresent
// accumulator cannot accept a command buffer after it (the merge table's
// unspecified cell, spec.md §4.2) - presenting must be the last step of a
// chain.
func (f *executeFuture) BuildSubmission() (Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.buildLocked(); err != nil {
		return nil, err
	}
	// The caller now owns submitting sub; mark it consumed so a later Flush
	// or BuildSubmission on this node never hands it to the device again.
	sub := f.sub
	f.submitted = true
	f.sub = EmptySubmission{}
	return sub, nil
}

func (f *executeFuture) buildLocked() error {
	if f.submitted {
		f.sub = EmptySubmission{}
		return nil
	}
	if f.built {
		return f.buildErr
	}
	f.built = true

	prev, err := f.previous.BuildSubmission()
	if err != nil {
		f.buildErr = err
		return err
	}

	builder := f.Device().NewSubmitBuilder()
	builder.AddCommandBuffer(f.cmdBuf)
	mine := CommandBufferSubmission{Builder: builder}

	prevQueue, _ := f.previous.Queue()
	merged, err := chainSubmission(prev, mine, prevQueue, f.queue)
	if err != nil {
		f.buildErr = err
		return err
	}
	f.sub = merged
	return nil
}

func (f *executeFuture) SignalFinished() { f.previous.SignalFinished() }

func (f *executeFuture) CleanupFinished() { f.previous.CleanupFinished() }

func (f *executeFuture) CheckBufferAccess(buf device.Buffer, exclusive bool, q device.Queue) (Access, bool, error) {
	for _, b := range f.buffers {
		if b.Buffer == buf {
			if exclusive && !b.Exclusive {
				return Access{}, false, errUnknownAccess
			}
			return b.Access, true, nil
		}
	}
	return f.previous.CheckBufferAccess(buf, exclusive, q)
}

func (f *executeFuture) CheckImageAccess(img device.Image, exclusive bool, q device.Queue) (Access, bool, error) {
	for _, i := range f.images {
		if i.Image == img {
			if exclusive && !i.Exclusive {
				return Access{}, false, errUnknownAccess
			}
			return i.Access, true, nil
		}
	}
	return f.previous.CheckImageAccess(img, exclusive, q)
}

func (f *executeFuture) Close() error {
	flushErr := f.Flush()
	closeErr := f.previous.Close()
	f.cmdBuf.Destroy()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
