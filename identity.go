// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package gpusync

import "github.com/gogpu/gpusync/device"

// identityFuture is a zero-work anchor: the seed every chain is built from.
// It owns no predecessor, submits nothing, and knows nothing about any
// resource.
type identityFuture struct {
	dev   device.Device
	queue device.Queue
}

// NewIdentity returns a Future anchoring a new chain to dev and queue.
// queue may be nil if the queue is not yet known; QueueChangeAllowed is
// always true for an identity node, so the first combinator applied to it
// determines the chain's actual queue.
//
// This is the gpusync analogue of vulkano's DummyFuture / NowFuture: the
// seed every user-built chain starts from.
func NewIdentity(dev device.Device, queue device.Queue) Future {
	return &identityFuture{dev: dev, queue: queue}
}

func (f *identityFuture) Device() device.Device { return f.dev }

func (f *identityFuture) Queue() (device.Queue, bool) {
	if f.queue == nil {
		return nil, false
	}
	return f.queue, true
}

func (f *identityFuture) QueueChangeAllowed() bool { return true }

func (f *identityFuture) Flush() error { return nil }

func (f *identityFuture) BuildSubmission() (Submission, error) { return EmptySubmission{}, nil }

func (f *identityFuture) SignalFinished() {}

func (f *identityFuture) CleanupFinished() {}

func (f *identityFuture) CheckBufferAccess(device.Buffer, bool, device.Queue) (Access, bool, error) {
	return Access{}, false, errUnknownAccess
}

func (f *identityFuture) CheckImageAccess(device.Image, bool, device.Queue) (Access, bool, error) {
	return Access{}, false, errUnknownAccess
}

// Close is a no-op: an identity node owns nothing.
func (f *identityFuture) Close() error { return nil }
