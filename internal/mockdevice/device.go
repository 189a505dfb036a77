// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package mockdevice

import (
	"sync"
	"sync/atomic"

	"github.com/gogpu/gpusync/device"
)

var nextID atomic.Uint64

// Device implements device.Device over an in-memory model. Every submit and
// present it processes is appended to a log a test can inspect afterward.
type Device struct {
	id uint64

	mu       sync.Mutex
	submits  []SubmitRecord
	presents []PresentRecord
}

// SubmitRecord is one recorded call to a SubmitBuilder.Submit.
type SubmitRecord struct {
	Queue         *Queue
	CommandBuffers int
	Waits          int
	Signals        int
	HasFence       bool
}

// PresentRecord is one recorded call to a PresentBuilder.Submit.
type PresentRecord struct {
	Queue *Queue
	Waits int
}

// New returns a fresh mock device.
func New() *Device {
	return &Device{id: nextID.Add(1)}
}

// SameDevice reports whether other is the same *Device.
func (d *Device) SameDevice(other device.Device) bool {
	o, ok := other.(*Device)
	return ok && o == d
}

// CreateFence allocates a new, unsignalled mock fence.
func (d *Device) CreateFence() (device.Fence, error) {
	return newFence(), nil
}

// CreateSemaphore allocates a new mock semaphore.
func (d *Device) CreateSemaphore() (device.Semaphore, error) {
	return &Semaphore{id: nextID.Add(1)}, nil
}

// NewSubmitBuilder returns an empty SubmitBuilder bound to this device's log.
func (d *Device) NewSubmitBuilder() device.SubmitBuilder {
	return &submitBuilder{dev: d}
}

// NewPresentBuilder returns an empty PresentBuilder bound to this device's
// log.
func (d *Device) NewPresentBuilder() device.PresentBuilder {
	return &presentBuilder{dev: d}
}

// Submits returns a snapshot of every submit recorded so far.
func (d *Device) Submits() []SubmitRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]SubmitRecord(nil), d.submits...)
}

// Presents returns a snapshot of every present recorded so far.
func (d *Device) Presents() []PresentRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]PresentRecord(nil), d.presents...)
}

func (d *Device) recordSubmit(r SubmitRecord) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.submits = append(d.submits, r)
}

func (d *Device) recordPresent(r PresentRecord) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.presents = append(d.presents, r)
}
