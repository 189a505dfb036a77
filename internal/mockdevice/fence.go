// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package mockdevice

import (
	"sync"
	"time"

	"github.com/gogpu/gpusync/device"
)

// Fence implements device.Fence with a closed-channel signal, modeled on
// github.com/gogpu/wgpu/hal/noop.Fence's atomic counter but supporting a
// real host wait/timeout since the future graph's fence-signal node
// depends on one.
type Fence struct {
	Resource

	mu        sync.Mutex
	done      chan struct{}
	signalled bool
}

func newFence() *Fence {
	return &Fence{done: make(chan struct{})}
}

// Wait blocks until Signal has been called or timeout elapses. A zero
// timeout polls without blocking, matching CleanupFinished's usage.
func (f *Fence) Wait(timeout time.Duration) error {
	f.mu.Lock()
	done := f.done
	f.mu.Unlock()

	if timeout <= 0 {
		select {
		case <-done:
			return nil
		default:
			return device.ErrTimeout
		}
	}

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return device.ErrTimeout
	}
}

// Signal marks the fence signalled. Called by a submit carrying this
// fence; idempotent.
func (f *Fence) Signal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.signalled {
		f.signalled = true
		close(f.done)
	}
}

// Reset returns the fence to the unsignalled state.
func (f *Fence) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signalled = false
	f.done = make(chan struct{})
	return nil
}
