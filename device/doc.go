// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package device describes the external collaborators that the gpusync
// future graph submits work to: a device, its queues, and the
// synchronization and submission-builder primitives a Vulkan-style backend
// provides.
//
// Everything in this package is an interface. gpusync treats real
// construction of these objects (choosing a physical device, allocating a
// VkFence, recording a command buffer) as out of scope - that is the job of
// a real backend such as the one github.com/gogpu/wgpu/hal/vulkan
// implements. This package only documents the operations the future graph
// needs from that backend.
//
// # Thread Safety
//
// Submitting to a Queue (SubmitBuilder.Submit, PresentBuilder.Submit) is
// typically thread-safe (backend-specific, as in
// github.com/gogpu/wgpu/hal). Fence and Semaphore are not safe for
// concurrent mutation; the future graph serializes access to a given fence
// behind its own node-local mutex (see the fence-signal node).
package device
