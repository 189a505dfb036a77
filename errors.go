// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package gpusync

import "errors"

// errUnknownAccess is the "don't know" answer CheckBufferAccess and
// CheckImageAccess return when a node has no opinion about a resource -
// always a safe answer, never a claim. Nodes with no predecessor (Identity)
// or no predecessor left (a Cleaned or Poisoned fence-signal node) return
// this.
var errUnknownAccess = errors.New("gpusync: access unknown")

// errPoisoned marks a fence-signal node whose state transition panicked
// partway through. It is never returned to callers - a poisoned node's
// Flush restores Poisoned and returns nil, matching the original's "don't
// do anything" handling - but names the invariant a panic during
// flushImpl enforces.
var errPoisoned = errors.New("gpusync: fence-signal node is poisoned")
