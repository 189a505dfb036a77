// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package mockdevice

// Resource is a placeholder implementation shared by the mock backend's
// resource types, mirroring github.com/gogpu/wgpu/hal/noop.Resource.
type Resource struct {
	Name      string
	destroyed bool
}

// Destroy marks the resource destroyed. Idempotent.
func (r *Resource) Destroy() { r.destroyed = true }

// Destroyed reports whether Destroy has been called, for test assertions.
func (r *Resource) Destroyed() bool { return r.destroyed }

// Buffer implements device.Buffer.
type Buffer struct{ Resource }

// NewBuffer returns a named mock buffer, useful only as a comparison key.
func NewBuffer(name string) *Buffer { return &Buffer{Resource{Name: name}} }

// Image implements device.Image.
type Image struct{ Resource }

// NewImage returns a named mock image.
func NewImage(name string) *Image { return &Image{Resource{Name: name}} }

// CommandBuffer implements device.CommandBuffer.
type CommandBuffer struct{ Resource }

// NewCommandBuffer returns a named mock command buffer.
func NewCommandBuffer(name string) *CommandBuffer { return &CommandBuffer{Resource{Name: name}} }

// Semaphore implements device.Semaphore. Allocated only via
// Device.CreateSemaphore, which assigns id.
type Semaphore struct {
	Resource
	id uint64
}
