// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package mockdevice

import "github.com/gogpu/gpusync/device"

// Queue implements device.Queue for the mock backend.
type Queue struct {
	id   uint64
	Name string
}

// NewQueue returns a fresh named queue. Name is only used in logs and test
// failure messages.
func NewQueue(name string) *Queue {
	return &Queue{id: nextID.Add(1), Name: name}
}

// SameQueue reports whether other is the same *Queue.
func (q *Queue) SameQueue(other device.Queue) bool {
	o, ok := other.(*Queue)
	return ok && o == q
}
