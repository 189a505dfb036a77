// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package device

import "time"

// StageMask is the native pipeline-stage bit pattern a backend understands
// (e.g. the raw VkPipelineStageFlags value). The future graph never
// inspects individual bits; it only ORs masks together and hands the
// result to a SubmitBuilder. See the gpusync.PipelineStages type for the
// enumeration that produces one.
type StageMask uint64

// AccessMask is the native access-flag bit pattern a backend understands
// (e.g. the raw VkAccessFlags value). See gpusync.AccessFlags.
type AccessMask uint64

// Buffer is an opaque handle to a GPU buffer resource. The future graph
// uses it only as a comparison key in CheckBufferAccess calls; it never
// dereferences it.
type Buffer interface {
	// Destroy releases the buffer. Provided for symmetry with a real
	// backend's resource type; the future graph never calls it.
	Destroy()
}

// Image is an opaque handle to a GPU image (texture) resource, with the
// same role as Buffer for CheckImageAccess.
type Image interface {
	Destroy()
}

// CommandBuffer holds a sealed, already-recorded sequence of GPU commands.
// Recording (draw calls, bind calls, copies) happens entirely outside this
// package; a CommandBuffer arrives at the future graph fully formed.
type CommandBuffer interface {
	Destroy()
}

// Fence is a device-signalled, host-waitable synchronization primitive.
// Fences are single-use in this core: one is allocated per fence-signal
// node and never reset for reuse by the future graph (Reset exists for
// symmetry with a real backend and for tests).
type Fence interface {
	// Wait blocks until the fence is signalled or timeout elapses.
	// Returns ErrTimeout if the deadline passes first, ErrDeviceLost if
	// the device was lost while waiting.
	Wait(timeout time.Duration) error

	// Reset returns the fence to the unsignalled state.
	Reset() error

	Destroy()
}

// Semaphore is a device-internal synchronization primitive used strictly
// for cross-queue ordering. It has no host-visible wait operation - only
// SubmitBuilder.AddWait/AddSignal ever touch one.
type Semaphore interface {
	Destroy()
}

// SubmitBuilder accumulates a command-buffer submission: command buffers,
// semaphore waits/signals, and at most one fence signal, before being
// sealed with Submit. It mirrors the shape of
// github.com/gogpu/wgpu/hal/vulkan's vk.SubmitInfo builder, generalized to
// an interface so the future graph does not depend on a specific backend.
type SubmitBuilder interface {
	// AddCommandBuffer appends a command buffer to the submission, in
	// order.
	AddCommandBuffer(cb CommandBuffer)

	// AddWait records a semaphore the device must wait on, at the given
	// pipeline stage, before starting this submission's work.
	AddWait(sem Semaphore, stage StageMask)

	// AddSignal records a semaphore the device signals once this
	// submission's work completes.
	AddSignal(sem Semaphore)

	// SetFenceSignal attaches a fence to be signalled on completion. A
	// builder may carry at most one; callers must check HasFence first -
	// attaching a second is a programmer error (spec.md's "submit-builder
	// already carrying a fence" invariant).
	SetFenceSignal(f Fence)

	// HasFence reports whether SetFenceSignal has already been called.
	HasFence() bool

	// Merge appends other's command buffers, waits, and signals into this
	// builder, preserving order, and returns the combined builder. Both
	// builders must target the same queue; neither may carry a fence
	// signal yet (merging happens before the fence-signal node decides to
	// attach one).
	Merge(other SubmitBuilder) SubmitBuilder

	// Submit seals and submits the builder to q. The builder must not be
	// reused afterward.
	Submit(q Queue) error
}

// PresentBuilder accumulates a swapchain present operation: the semaphores
// it must wait on before presenting. It mirrors
// github.com/gogpu/wgpu/hal/vulkan's vk.PresentInfoKHR builder.
type PresentBuilder interface {
	// AddWait records a semaphore the present operation must wait on.
	AddWait(sem Semaphore)

	// Submit seals and submits the present to q.
	Submit(q Queue) error
}
