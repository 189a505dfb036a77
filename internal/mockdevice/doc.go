// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package mockdevice implements github.com/gogpu/gpusync/device against an
// in-memory, single-process model instead of a real Vulkan device. It
// exists to drive the future-graph tests: every submit, wait, and present
// is recorded rather than dispatched to a GPU, modeled on
// github.com/gogpu/wgpu/hal/noop's placeholder backend.
package mockdevice
