// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package gpusync

import "time"

// defaultFenceTimeout bounds how long a fence-signal node's BuildSubmission
// and Close will block waiting on the GPU before giving up with
// device.ErrTimeout. It keeps the original's fixed 600-second ceiling as
// the default; WithFenceTimeout overrides it per node (spec.md's Open
// Question on fence wait duration).
const defaultFenceTimeout = 10 * time.Minute

// fenceSignalOptions holds the configurable knobs for a fence-signal node.
type fenceSignalOptions struct {
	timeout time.Duration
}

// FenceSignalOption configures ThenSignalFence and ThenSignalFenceAndFlush.
type FenceSignalOption func(*fenceSignalOptions)

// WithFenceTimeout overrides the default 10-minute wait ceiling used by a
// fence-signal node's BuildSubmission and Close.
func WithFenceTimeout(d time.Duration) FenceSignalOption {
	return func(o *fenceSignalOptions) { o.timeout = d }
}

func resolveFenceSignalOptions(opts []FenceSignalOption) fenceSignalOptions {
	o := fenceSignalOptions{timeout: defaultFenceTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
