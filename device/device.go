// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package device

// Device represents a logical GPU device. It is the owner of every queue,
// fence, and semaphore a future chain touches, and the unit of identity
// that Join uses to reject cross-device composition.
//
// A real implementation wraps a VkDevice (or the equivalent on another
// backend); construction, feature negotiation, and resource creation
// beyond fences/semaphores are out of scope for this package - see
// github.com/gogpu/wgpu/hal.Device for the fuller surface a real backend
// exposes.
type Device interface {
	// SameDevice reports whether other is the same logical device. Join
	// returns an error when this does not hold for its two sides.
	SameDevice(other Device) bool

	// CreateFence allocates a new, unsignalled fence. Fences are
	// single-use in this core: a fresh one is allocated per fence-signal
	// node, never recycled by the future graph itself (a real backend may
	// pool them internally, as github.com/gogpu/wgpu/hal/vulkan's
	// fencePool does).
	CreateFence() (Fence, error)

	// CreateSemaphore allocates a new, unsignalled semaphore for
	// cross-queue ordering. Semaphores are never waited on by the host;
	// see Semaphore.
	CreateSemaphore() (Semaphore, error)

	// NewSubmitBuilder returns a fresh, empty SubmitBuilder for accumulating
	// a command-buffer submission.
	NewSubmitBuilder() SubmitBuilder

	// NewPresentBuilder returns a fresh, empty PresentBuilder for
	// accumulating a swapchain present operation.
	NewPresentBuilder() PresentBuilder
}

// Queue identifies a device queue that work can be submitted to. Queues
// support identity comparison only - the future graph never inspects queue
// capabilities, it just tracks which queue a chain of work targets.
type Queue interface {
	// SameQueue reports whether other is the same queue.
	SameQueue(other Queue) bool
}
