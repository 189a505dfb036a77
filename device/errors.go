// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package device

import "errors"

// Common device-layer errors representing unrecoverable device states.
var (
	// ErrDeviceLost indicates the GPU device has been lost (driver crash,
	// hardware disconnection, driver timeout). The device cannot be
	// recovered; this core does not attempt to retry past it, per the
	// Non-goals.
	ErrDeviceLost = errors.New("device: lost")

	// ErrTimeout indicates a Fence.Wait call exceeded its deadline without
	// observing the fence signalled.
	ErrTimeout = errors.New("device: wait timed out")

	// ErrSubmitFailed indicates the driver rejected a submission. Callers
	// should inspect the wrapped cause for details. The gpusync
	// fence-signal node does not inspect it: it tells a "full" from a
	// "partial" failure by which submission step failed.
	ErrSubmitFailed = errors.New("device: submit failed")
)
