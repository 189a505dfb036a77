// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package mockdevice

import (
	"fmt"

	"github.com/gogpu/gpusync/device"
)

type waitEntry struct {
	sem   device.Semaphore
	stage device.StageMask
}

// submitBuilder implements device.SubmitBuilder, mirroring the shape of
// github.com/gogpu/wgpu/hal/vulkan's vk.SubmitInfo builder without talking
// to a real queue: Submit just appends a SubmitRecord to the owning
// Device's log and signals the attached fence, if any.
type submitBuilder struct {
	dev *Device

	cmdBufs []device.CommandBuffer
	waits   []waitEntry
	signals []device.Semaphore
	fence   device.Fence
}

func (b *submitBuilder) AddCommandBuffer(cb device.CommandBuffer) {
	b.cmdBufs = append(b.cmdBufs, cb)
}

func (b *submitBuilder) AddWait(sem device.Semaphore, stage device.StageMask) {
	b.waits = append(b.waits, waitEntry{sem: sem, stage: stage})
}

func (b *submitBuilder) AddSignal(sem device.Semaphore) {
	b.signals = append(b.signals, sem)
}

func (b *submitBuilder) SetFenceSignal(f device.Fence) {
	if b.fence != nil {
		panic("mockdevice: submit builder already carries a fence")
	}
	b.fence = f
}

func (b *submitBuilder) HasFence() bool { return b.fence != nil }

func (b *submitBuilder) Merge(other device.SubmitBuilder) device.SubmitBuilder {
	o, ok := other.(*submitBuilder)
	if !ok {
		panic("mockdevice: Merge given a SubmitBuilder from a different backend")
	}
	if b.fence != nil && o.fence != nil {
		panic("mockdevice: merging two submit builders that both carry a fence")
	}
	b.cmdBufs = append(b.cmdBufs, o.cmdBufs...)
	b.waits = append(b.waits, o.waits...)
	b.signals = append(b.signals, o.signals...)
	if o.fence != nil {
		b.fence = o.fence
	}
	return b
}

func (b *submitBuilder) Submit(q device.Queue) error {
	queue, ok := q.(*Queue)
	if !ok {
		return fmt.Errorf("mockdevice: Submit given a queue from a different backend")
	}

	b.dev.recordSubmit(SubmitRecord{
		Queue:          queue,
		CommandBuffers: len(b.cmdBufs),
		Waits:          len(b.waits),
		Signals:        len(b.signals),
		HasFence:       b.fence != nil,
	})

	if b.fence != nil {
		if f, ok := b.fence.(*Fence); ok {
			f.Signal()
		}
	}
	return nil
}

// presentBuilder implements device.PresentBuilder, mirroring
// github.com/gogpu/wgpu/hal/vulkan's vk.PresentInfoKHR builder.
type presentBuilder struct {
	dev   *Device
	waits []device.Semaphore
}

func (b *presentBuilder) AddWait(sem device.Semaphore) {
	b.waits = append(b.waits, sem)
}

func (b *presentBuilder) Submit(q device.Queue) error {
	queue, ok := q.(*Queue)
	if !ok {
		return fmt.Errorf("mockdevice: Submit given a queue from a different backend")
	}
	b.dev.recordPresent(PresentRecord{Queue: queue, Waits: len(b.waits)})
	return nil
}
