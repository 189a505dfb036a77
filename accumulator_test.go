// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package gpusync

import (
	"testing"

	"github.com/gogpu/gpusync/device"
	"github.com/gogpu/gpusync/internal/mockdevice"
)

func TestMergeSubmissionsEmptyIsIdentity(t *testing.T) {
	dev := mockdevice.New()
	q := mockdevice.NewQueue("main")

	variants := []Submission{
		EmptySubmission{},
		SemaphoreWaitSubmission{Semaphores: nil},
		CommandBufferSubmission{Builder: dev.NewSubmitBuilder()},
		PresentSubmission{Builder: dev.NewPresentBuilder()},
	}

	for _, v := range variants {
		got, err := mergeSubmissions(EmptySubmission{}, v, q, q)
		if err != nil {
			t.Fatalf("merge(Empty, %T) error: %v", v, err)
		}
		assertSameSubmission(t, got, v)

		got, err = mergeSubmissions(v, EmptySubmission{}, q, q)
		if err != nil {
			t.Fatalf("merge(%T, Empty) error: %v", v, err)
		}
		assertSameSubmission(t, got, v)
	}
}

// assertSameSubmission compares by variant and the field that identifies
// it, rather than ==: SemaphoreWaitSubmission carries a slice field, which
// makes the Submission interface's dynamic type uncomparable with ==.
func assertSameSubmission(t *testing.T, got, want Submission) {
	t.Helper()
	switch w := want.(type) {
	case EmptySubmission:
		if _, ok := got.(EmptySubmission); !ok {
			t.Errorf("got %T, want EmptySubmission", got)
		}
	case SemaphoreWaitSubmission:
		g, ok := got.(SemaphoreWaitSubmission)
		if !ok || len(g.Semaphores) != len(w.Semaphores) {
			t.Errorf("got %#v, want %#v", got, want)
		}
	case CommandBufferSubmission:
		g, ok := got.(CommandBufferSubmission)
		if !ok || g.Builder != w.Builder {
			t.Errorf("got %#v, want %#v", got, want)
		}
	case PresentSubmission:
		g, ok := got.(PresentSubmission)
		if !ok || g.Builder != w.Builder {
			t.Errorf("got %#v, want %#v", got, want)
		}
	default:
		t.Fatalf("unrecognized submission variant %T", want)
	}
}

func TestMergeSubmissionsCommandBufferPresentIllegal(t *testing.T) {
	dev := mockdevice.New()
	q := mockdevice.NewQueue("main")

	cb := CommandBufferSubmission{Builder: dev.NewSubmitBuilder()}
	pr := PresentSubmission{Builder: dev.NewPresentBuilder()}

	if _, err := mergeSubmissions(cb, pr, q, q); err == nil {
		t.Error("merge(CommandBuffer, Present) should be illegal")
	}
	if _, err := mergeSubmissions(pr, cb, q, q); err == nil {
		t.Error("merge(Present, CommandBuffer) should be illegal")
	}
}

func TestMergeSubmissionsCommandBufferDifferentQueues(t *testing.T) {
	dev := mockdevice.New()
	q1 := mockdevice.NewQueue("graphics")
	q2 := mockdevice.NewQueue("transfer")

	left := CommandBufferSubmission{Builder: dev.NewSubmitBuilder()}
	right := CommandBufferSubmission{Builder: dev.NewSubmitBuilder()}

	if _, err := mergeSubmissions(left, right, q1, q2); err == nil {
		t.Error("merging two CommandBuffer submissions across different queues should be illegal")
	}
}

func TestMergeSubmissionsCommandBufferSameQueueMerges(t *testing.T) {
	dev := mockdevice.New()
	q := mockdevice.NewQueue("main")

	left := CommandBufferSubmission{Builder: dev.NewSubmitBuilder()}
	left.Builder.AddCommandBuffer(mockdevice.NewCommandBuffer("a"))
	right := CommandBufferSubmission{Builder: dev.NewSubmitBuilder()}
	right.Builder.AddCommandBuffer(mockdevice.NewCommandBuffer("b"))

	got, err := mergeSubmissions(left, right, q, q)
	if err != nil {
		t.Fatalf("merge error: %v", err)
	}
	merged, ok := got.(CommandBufferSubmission)
	if !ok {
		t.Fatalf("merge result type = %T, want CommandBufferSubmission", got)
	}
	if err := merged.Builder.Submit(q); err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	submits := dev.Submits()
	if len(submits) != 1 || submits[0].CommandBuffers != 2 {
		t.Errorf("submits = %#v, want one submit with 2 command buffers", submits)
	}
}

func TestMergeSubmissionsSemaphoreWaitCommandBufferSubmitsEagerly(t *testing.T) {
	dev := mockdevice.New()
	q := mockdevice.NewQueue("main")

	sem, err := dev.CreateSemaphore()
	if err != nil {
		t.Fatalf("CreateSemaphore: %v", err)
	}
	left := SemaphoreWaitSubmission{Semaphores: []device.Semaphore{sem}}
	right := CommandBufferSubmission{Builder: dev.NewSubmitBuilder()}
	right.Builder.AddCommandBuffer(mockdevice.NewCommandBuffer("b"))

	got, err := mergeSubmissions(left, right, q, q)
	if err != nil {
		t.Fatalf("merge error: %v", err)
	}
	assertSameSubmission(t, got, left)

	submits := dev.Submits()
	if len(submits) != 1 || submits[0].Queue != q || submits[0].CommandBuffers != 1 {
		t.Fatalf("submits = %#v, want one eager submit of the CommandBuffer side", submits)
	}
}

func TestMergeSubmissionsCommandBufferSemaphoreWaitSubmitsEagerly(t *testing.T) {
	dev := mockdevice.New()
	q := mockdevice.NewQueue("main")

	sem, err := dev.CreateSemaphore()
	if err != nil {
		t.Fatalf("CreateSemaphore: %v", err)
	}
	left := CommandBufferSubmission{Builder: dev.NewSubmitBuilder()}
	left.Builder.AddCommandBuffer(mockdevice.NewCommandBuffer("a"))
	right := SemaphoreWaitSubmission{Semaphores: []device.Semaphore{sem}}

	got, err := mergeSubmissions(left, right, q, q)
	if err != nil {
		t.Fatalf("merge error: %v", err)
	}
	assertSameSubmission(t, got, right)

	submits := dev.Submits()
	if len(submits) != 1 || submits[0].Queue != q || submits[0].CommandBuffers != 1 {
		t.Fatalf("submits = %#v, want one eager submit of the CommandBuffer side", submits)
	}
}

func TestMergeSubmissionsSemaphoreWaitPresentSubmitsEagerly(t *testing.T) {
	dev := mockdevice.New()
	q := mockdevice.NewQueue("main")

	sem, err := dev.CreateSemaphore()
	if err != nil {
		t.Fatalf("CreateSemaphore: %v", err)
	}
	left := SemaphoreWaitSubmission{Semaphores: []device.Semaphore{sem}}
	right := PresentSubmission{Builder: dev.NewPresentBuilder()}

	got, err := mergeSubmissions(left, right, q, q)
	if err != nil {
		t.Fatalf("merge error: %v", err)
	}
	assertSameSubmission(t, got, left)

	if len(dev.Presents()) != 1 {
		t.Fatalf("presents recorded = %d, want 1 (eager submit of the Present side)", len(dev.Presents()))
	}
}

func TestMergeSubmissionsPresentSemaphoreWaitSubmitsEagerly(t *testing.T) {
	dev := mockdevice.New()
	q := mockdevice.NewQueue("main")

	sem, err := dev.CreateSemaphore()
	if err != nil {
		t.Fatalf("CreateSemaphore: %v", err)
	}
	left := PresentSubmission{Builder: dev.NewPresentBuilder()}
	right := SemaphoreWaitSubmission{Semaphores: []device.Semaphore{sem}}

	got, err := mergeSubmissions(left, right, q, q)
	if err != nil {
		t.Fatalf("merge error: %v", err)
	}
	assertSameSubmission(t, got, right)

	if len(dev.Presents()) != 1 {
		t.Fatalf("presents recorded = %d, want 1 (eager submit of the Present side)", len(dev.Presents()))
	}
}

func TestChainSubmissionFoldsSemaphoreWaitIntoCommandBuffer(t *testing.T) {
	dev := mockdevice.New()
	q := mockdevice.NewQueue("main")

	sem, err := dev.CreateSemaphore()
	if err != nil {
		t.Fatalf("CreateSemaphore: %v", err)
	}
	prev := SemaphoreWaitSubmission{Semaphores: []device.Semaphore{sem}}
	mine := CommandBufferSubmission{Builder: dev.NewSubmitBuilder()}
	mine.Builder.AddCommandBuffer(mockdevice.NewCommandBuffer("a"))

	got, err := chainSubmission(prev, mine, q, q)
	if err != nil {
		t.Fatalf("chainSubmission error: %v", err)
	}
	cb, ok := got.(CommandBufferSubmission)
	if !ok {
		t.Fatalf("chainSubmission result = %T, want CommandBufferSubmission (still open, not submitted)", got)
	}
	if len(dev.Submits()) != 0 {
		t.Fatalf("submits recorded = %d, want 0 - chainSubmission must not submit early", len(dev.Submits()))
	}
	if err := cb.Builder.Submit(q); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	submits := dev.Submits()
	if len(submits) != 1 || submits[0].Waits != 1 {
		t.Fatalf("submits = %#v, want one submit waiting on the folded semaphore", submits)
	}
}

func TestChainSubmissionFoldsSemaphoreWaitIntoPresent(t *testing.T) {
	dev := mockdevice.New()
	q := mockdevice.NewQueue("main")

	sem, err := dev.CreateSemaphore()
	if err != nil {
		t.Fatalf("CreateSemaphore: %v", err)
	}
	prev := SemaphoreWaitSubmission{Semaphores: []device.Semaphore{sem}}
	mine := PresentSubmission{Builder: dev.NewPresentBuilder()}

	got, err := chainSubmission(prev, mine, q, q)
	if err != nil {
		t.Fatalf("chainSubmission error: %v", err)
	}
	pr, ok := got.(PresentSubmission)
	if !ok {
		t.Fatalf("chainSubmission result = %T, want PresentSubmission (still open, not submitted)", got)
	}
	if len(dev.Presents()) != 0 {
		t.Fatalf("presents recorded = %d, want 0 - chainSubmission must not submit early", len(dev.Presents()))
	}
	if err := pr.Builder.Submit(q); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	presents := dev.Presents()
	if len(presents) != 1 || presents[0].Waits != 1 {
		t.Fatalf("presents = %#v, want one present waiting on the folded semaphore", presents)
	}
}

func TestMergeSubmissionsPresentPresentSubmitsBoth(t *testing.T) {
	dev := mockdevice.New()
	q1 := mockdevice.NewQueue("a")
	q2 := mockdevice.NewQueue("b")

	left := PresentSubmission{Builder: dev.NewPresentBuilder()}
	right := PresentSubmission{Builder: dev.NewPresentBuilder()}

	got, err := mergeSubmissions(left, right, q1, q2)
	if err != nil {
		t.Fatalf("merge error: %v", err)
	}
	if _, ok := got.(EmptySubmission); !ok {
		t.Errorf("merge(Present, Present) = %T, want EmptySubmission", got)
	}
	if len(dev.Presents()) != 2 {
		t.Errorf("presents recorded = %d, want 2", len(dev.Presents()))
	}
}
