// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package gpusync implements the submission-synchronization core of a
// Vulkan-oriented rendering library: a composable graph of future-like
// nodes representing pending GPU work, and the algorithm that folds that
// graph into batched device submissions while tracking resource access.
//
// A Future is not an async-runtime future - there is no poll-based
// reactor. It is a host-side value representing an event that will happen
// on the GPU, built by chaining combinators starting from an Identity
// node:
//
//	f, err := gpusync.ThenExecute(gpusync.NewIdentity(dev, queue), queue, cmdBuf, buffers, images)
//	fenceFuture, err := gpusync.ThenSignalFenceAndFlush(f)
//
// See device.Device/device.Queue for the external collaborators this
// package submits work to, and fence_signal.go for the central state
// machine that batches and retries device submissions.
package gpusync

import "github.com/gogpu/gpusync/device"

// Future represents an event that will happen on the GPU. Every
// combinator in this package returns a value satisfying Future; chains
// form a tree (most often a line) by composition, with each combinator
// exclusively owning its predecessor(s).
type Future interface {
	// Device returns the owning device. Total, infallible.
	Device() device.Device

	// Queue returns the queue this future's event happens on, and whether
	// that queue is known. (nil, false) means "unknown or irrelevant" -
	// the Go rendering of the Rust trait's Option<&Arc<Queue>>.
	Queue() (device.Queue, bool)

	// QueueChangeAllowed reports whether successors may target a
	// different queue than the one Queue returns. If false, every
	// successor built from this future must target Queue() exactly.
	QueueChangeAllowed() bool

	// Flush performs, at most once, the device submission this node owns.
	// Later calls are no-ops. Flush is idempotent: callers may call it
	// any number of times from any number of goroutines (for the one
	// node type that is actually shared-mutable, the fence-signal node;
	// other node types are not designed to be called concurrently with
	// themselves).
	Flush() error

	// BuildSubmission returns the accumulator describing work that must
	// run before this node's event is considered complete.
	//
	// Implementations must never produce the same non-Empty Submission
	// from two different Future values representing the same underlying
	// work - a shared-reference wrapper around a future that has already
	// been (or will be) submitted through its own path must always
	// return EmptySubmission{}, or the exactly-once submission invariant
	// breaks.
	BuildSubmission() (Submission, error)

	// SignalFinished declares that the GPU has observed completion of
	// this node's submission. Calling it before that is actually true
	// corrupts resource accounting - it is the caller's responsibility to
	// have confirmed completion (by waiting on whatever BuildSubmission
	// returned, or by a prior successful CleanupFinished). SignalFinished
	// propagates to predecessors.
	SignalFinished()

	// CleanupFinished is a best-effort, non-blocking probe: if completion
	// can be observed without waiting, it releases the predecessor this
	// node holds. It never blocks.
	CleanupFinished()

	// CheckBufferAccess asks whether submitting something after this
	// future is granted access (exclusive or shared) to buf on queue q.
	//
	// ok reports whether access is granted; when ok is true, Access
	// describes the latest usage of the resource to barrier against
	// (which may be the zero value when don't-care). When ok is false,
	// err is non-nil and means "don't know, ask another source" - that
	// answer is always safe. A true ok is a positive claim that must be
	// correct.
	CheckBufferAccess(buf device.Buffer, exclusive bool, q device.Queue) (access Access, ok bool, err error)

	// CheckImageAccess is CheckBufferAccess's counterpart for images.
	// Changing an image's layout is treated as exclusive access.
	CheckImageAccess(img device.Image, exclusive bool, q device.Queue) (access Access, ok bool, err error)

	// Close releases this node and, transitively, its predecessor(s). Go
	// has no destructor, so Close is the explicit analogue of the
	// original's Drop impls (spec.md §4.6, §9): it forces a last flush,
	// then - depending on what that flush produced - blocks on any fence
	// this node or a predecessor is holding, to preserve the safety
	// property that a resource is never considered free while the GPU
	// might still be using it. Callers that never call Close leak exactly
	// what the underlying handles would leak (an unreleased fence,
	// semaphore, or command buffer) - same as forgetting to call
	// hal.Resource.Destroy().
	Close() error
}
