// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package gpusync

import (
	"fmt"

	"github.com/gogpu/gpusync/device"
)

// ErrIllegalComposition is returned when a Join or a merge of two
// Submissions is not a legal composition: disjoint queues with no side
// allowing a queue change, or a CommandBuffer/Present pairing the merge
// table in spec.md §4.2 leaves unspecified.
type ErrIllegalComposition struct {
	Reason string
}

func (e *ErrIllegalComposition) Error() string {
	return fmt.Sprintf("gpusync: illegal composition: %s", e.Reason)
}

// Submission is a tagged value describing work that must run before a
// future's event is considered complete. It is the one-of-four
// accumulator from spec.md §3: Empty, SemaphoresWait, CommandBuffer, or
// QueuePresent. Implemented as an interface with four concrete types
// rather than a Rust-style enum, since Go has no sum types; mergeSubmissions
// below is the explicit switch on the pair of concrete types the original
// implements as a match block.
type Submission interface {
	isSubmission()
}

// EmptySubmission means there is nothing to submit. It is the identity
// element for merging: merge(Empty, x) == merge(x, Empty) == x for every
// variant x (spec.md §8, testable property 5).
type EmptySubmission struct{}

func (EmptySubmission) isSubmission() {}

// SemaphoreWaitSubmission is a set of semaphores that successor work must
// wait on before starting.
type SemaphoreWaitSubmission struct {
	Semaphores []device.Semaphore
}

func (SemaphoreWaitSubmission) isSubmission() {}

// CommandBufferSubmission is a partially built command-buffer submission
// that may still accept more command buffers, a fence signal, or
// semaphore waits/signals before being sealed.
type CommandBufferSubmission struct {
	Builder device.SubmitBuilder
}

func (CommandBufferSubmission) isSubmission() {}

// PresentSubmission is a partially built swapchain-present submission,
// which can accept semaphore waits before being sealed.
type PresentSubmission struct {
	Builder device.PresentBuilder
}

func (PresentSubmission) isSubmission() {}

// mergeSubmissions implements the sixteen-cell merge table from spec.md
// §4.2, matching vulkano's join.rs match block cell for cell. A
// SemaphoresWait accumulator combined with a CommandBuffer or QueuePresent
// one submits the other side immediately (on leftQueue/rightQueue as
// appropriate) and the result is SemaphoresWait - the wait semaphores
// carry forward, they do not become a precondition of the now-submitted
// work. This mirrors join.rs's "submit b; SemaphoresWait(a)" arms exactly;
// it is not the same thing as execute.go/present.go folding a wait into an
// accumulator that is still open for further appending, since here the
// submitted side is sealed and gone.
//
// leftQueue/rightQueue are consulted by every cell that submits or merges
// something: CommandBuffer/Present paired with SemaphoresWait submit on
// their own queue; merging two CommandBuffer builders must confirm they
// target the same queue; merging two QueuePresent accumulators (only
// possible when Join combines two independent present chains) submits
// both, since there is no way to fold one present into another.
//
// Two cells (CommandBuffer paired with Present, in either order) are not
// legal compositions in the current design: the original leaves them
// unimplemented!(), and this returns ErrIllegalComposition rather than
// guessing.
func mergeSubmissions(left, right Submission, leftQueue, rightQueue device.Queue) (Submission, error) {
	switch l := left.(type) {
	case EmptySubmission:
		return right, nil

	case SemaphoreWaitSubmission:
		switch r := right.(type) {
		case EmptySubmission:
			return l, nil
		case SemaphoreWaitSubmission:
			return SemaphoreWaitSubmission{Semaphores: append(append([]device.Semaphore{}, l.Semaphores...), r.Semaphores...)}, nil
		case CommandBufferSubmission:
			if err := r.Builder.Submit(rightQueue); err != nil {
				return nil, err
			}
			return l, nil
		case PresentSubmission:
			if err := r.Builder.Submit(rightQueue); err != nil {
				return nil, err
			}
			return l, nil
		}

	case CommandBufferSubmission:
		switch r := right.(type) {
		case EmptySubmission:
			return l, nil
		case SemaphoreWaitSubmission:
			if err := l.Builder.Submit(leftQueue); err != nil {
				return nil, err
			}
			return r, nil
		case CommandBufferSubmission:
			if !leftQueue.SameQueue(rightQueue) {
				return nil, &ErrIllegalComposition{Reason: "merging two CommandBuffer submissions across different queues"}
			}
			return CommandBufferSubmission{Builder: l.Builder.Merge(r.Builder)}, nil
		case PresentSubmission:
			return nil, &ErrIllegalComposition{Reason: "CommandBuffer paired with QueuePresent is not a legal composition"}
		}

	case PresentSubmission:
		switch r := right.(type) {
		case EmptySubmission:
			return l, nil
		case SemaphoreWaitSubmission:
			if err := l.Builder.Submit(leftQueue); err != nil {
				return nil, err
			}
			return r, nil
		case CommandBufferSubmission:
			return nil, &ErrIllegalComposition{Reason: "QueuePresent paired with CommandBuffer is not a legal composition"}
		case PresentSubmission:
			if err := l.Builder.Submit(leftQueue); err != nil {
				return nil, err
			}
			if err := r.Builder.Submit(rightQueue); err != nil {
				return nil, err
			}
			return EmptySubmission{}, nil
		}
	}

	return nil, &ErrIllegalComposition{Reason: "unrecognized submission variant"}
}

// chainSubmission threads a predecessor's pending accumulator into mine,
// a builder this node just created and still owns exclusively. This is
// the §4.7 append operation execute.go and present.go use to grow their
// own not-yet-submitted builder - distinct from mergeSubmissions, which is
// §4.2's Join table for combining two independent sibling accumulators
// and therefore submits eagerly in the asymmetric cells. Here nothing has
// been sealed yet on either side, so a SemaphoresWait predecessor folds
// into mine as wait entries instead of triggering a premature submit that
// would drop the very dependency this node is trying to carry forward.
//
// mine is always CommandBufferSubmission or PresentSubmission - the two
// variants that own a builder still open for appending. previousQueue is
// only consulted when prev is itself a CommandBufferSubmission that must
// merge with mine's builder.
func chainSubmission(prev, mine Submission, previousQueue, myQueue device.Queue) (Submission, error) {
	switch p := prev.(type) {
	case EmptySubmission:
		return mine, nil

	case SemaphoreWaitSubmission:
		switch m := mine.(type) {
		case CommandBufferSubmission:
			for _, sem := range p.Semaphores {
				m.Builder.AddWait(sem, StageAllCommands.ToNative())
			}
			return m, nil
		case PresentSubmission:
			for _, sem := range p.Semaphores {
				m.Builder.AddWait(sem)
			}
			return m, nil
		}

	case CommandBufferSubmission:
		switch m := mine.(type) {
		case CommandBufferSubmission:
			if !previousQueue.SameQueue(myQueue) {
				return nil, &ErrIllegalComposition{Reason: "appending a CommandBuffer onto a predecessor targeting a different queue"}
			}
			return CommandBufferSubmission{Builder: p.Builder.Merge(m.Builder)}, nil
		case PresentSubmission:
			return nil, &ErrIllegalComposition{Reason: "CommandBuffer paired with QueuePresent is not a legal composition"}
		}

	case PresentSubmission:
		return nil, &ErrIllegalComposition{Reason: "QueuePresent paired with CommandBuffer is not a legal composition"}
	}

	return nil, &ErrIllegalComposition{Reason: "unrecognized submission variant"}
}
