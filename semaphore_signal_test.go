// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package gpusync_test

import (
	"testing"

	"github.com/gogpu/gpusync"
	"github.com/gogpu/gpusync/internal/mockdevice"
)

func TestSemaphoreSignalHandsOffAcrossQueues(t *testing.T) {
	dev := mockdevice.New()
	graphics := mockdevice.NewQueue("graphics")
	transfer := mockdevice.NewQueue("transfer")

	upload, err := gpusync.ThenExecute(gpusync.NewIdentity(dev, transfer), transfer, mockdevice.NewCommandBuffer("upload"), nil, nil)
	if err != nil {
		t.Fatalf("ThenExecute: %v", err)
	}

	signalled, err := gpusync.ThenSignalSemaphoreAndFlush(upload)
	if err != nil {
		t.Fatalf("ThenSignalSemaphoreAndFlush: %v", err)
	}

	submits := dev.Submits()
	if len(submits) != 1 || submits[0].Queue != transfer || submits[0].Signals != 1 {
		t.Fatalf("submits = %#v, want one submit on transfer signalling one semaphore", submits)
	}

	render, err := gpusync.ThenExecute(signalled, graphics, mockdevice.NewCommandBuffer("render"), nil, nil)
	if err != nil {
		t.Fatalf("ThenExecute: %v", err)
	}

	sub, err := render.BuildSubmission()
	if err != nil {
		t.Fatalf("BuildSubmission: %v", err)
	}
	cb, ok := sub.(gpusync.CommandBufferSubmission)
	if !ok {
		t.Fatalf("BuildSubmission = %T, want CommandBufferSubmission carrying the cross-queue wait", sub)
	}
	if err := cb.Builder.Submit(graphics); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	submits = dev.Submits()
	if len(submits) != 2 {
		t.Fatalf("submits after render = %d, want 2", len(submits))
	}
	if submits[1].Waits != 1 {
		t.Errorf("render submit waits = %d, want 1 (waiting on the cross-queue semaphore)", submits[1].Waits)
	}
}
