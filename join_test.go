// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package gpusync_test

import (
	"testing"

	"github.com/gogpu/gpusync"
	"github.com/gogpu/gpusync/internal/mockdevice"
)

func TestJoinRejectsDifferentDevices(t *testing.T) {
	devA := mockdevice.New()
	devB := mockdevice.New()
	q := mockdevice.NewQueue("main")

	first := gpusync.NewIdentity(devA, q)
	second := gpusync.NewIdentity(devB, q)

	if _, err := gpusync.Join(first, second); err == nil {
		t.Error("Join across different devices should fail")
	}
}

func TestJoinRejectsMismatchedQueuesWhenNeitherAllowsChange(t *testing.T) {
	dev := mockdevice.New()
	q1 := mockdevice.NewQueue("graphics")
	q2 := mockdevice.NewQueue("transfer")

	first, err := gpusync.ThenExecute(gpusync.NewIdentity(dev, q1), q1, mockdevice.NewCommandBuffer("a"), nil, nil)
	if err != nil {
		t.Fatalf("ThenExecute: %v", err)
	}
	second, err := gpusync.ThenExecute(gpusync.NewIdentity(dev, q2), q2, mockdevice.NewCommandBuffer("b"), nil, nil)
	if err != nil {
		t.Fatalf("ThenExecute: %v", err)
	}

	if _, err := gpusync.Join(first, second); err == nil {
		t.Error("Join of two fixed-queue futures on different queues should fail")
	}
}

func TestJoinQueueSelection(t *testing.T) {
	dev := mockdevice.New()
	q1 := mockdevice.NewQueue("graphics")

	// identity allows a queue change, so joining it with a fixed-queue
	// future should adopt the fixed side's queue.
	first := gpusync.NewIdentity(dev, nil)
	second, err := gpusync.ThenExecute(gpusync.NewIdentity(dev, q1), q1, mockdevice.NewCommandBuffer("a"), nil, nil)
	if err != nil {
		t.Fatalf("ThenExecute: %v", err)
	}

	joined, err := gpusync.Join(first, second)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	q, ok := joined.Queue()
	if !ok || !q.SameQueue(q1) {
		t.Errorf("Join queue = %v, ok=%v, want q1", q, ok)
	}
}

func TestJoinExclusiveAccessConflictPanics(t *testing.T) {
	dev := mockdevice.New()
	q := mockdevice.NewQueue("main")
	buf := mockdevice.NewBuffer("shared")

	access := gpusync.BufferAccess{Buffer: buf, Exclusive: true}

	first, err := gpusync.ThenExecute(gpusync.NewIdentity(dev, q), q, mockdevice.NewCommandBuffer("a"), []gpusync.BufferAccess{access}, nil)
	if err != nil {
		t.Fatalf("ThenExecute: %v", err)
	}
	second, err := gpusync.ThenExecute(gpusync.NewIdentity(dev, q), q, mockdevice.NewCommandBuffer("b"), []gpusync.BufferAccess{access}, nil)
	if err != nil {
		t.Fatalf("ThenExecute: %v", err)
	}

	joined, err := gpusync.Join(first, second)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("CheckBufferAccess should panic when both sides claim exclusive access to the same buffer")
		}
	}()
	_, _, _ = joined.CheckBufferAccess(buf, true, q)
}
