// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package gpusync

import "github.com/gogpu/gpusync/device"

// PipelineStages is a bitmask of points in the GPU command pipeline where a
// barrier can be scoped. It is a dense enumeration, generated the way
// core/track's BufferUses bitmask is in the teacher repo: named bit
// constants, a zero value that means "none", and plain bitwise OR for
// union (Go has no operator overloading, so there is no BitOr method to
// implement here - "a | b" already does it).
type PipelineStages uint32

// Pipeline stage bits. The set and ordering matches vulkano's
// sync::pipeline::PipelineStages field list, which this spec's
// check_buffer_access/check_image_access contract is distilled from.
const StageNone PipelineStages = 0

const (
	StageTopOfPipe PipelineStages = 1 << iota
	StageDrawIndirect
	StageVertexInput
	StageVertexShader
	StageTessellationControlShader
	StageTessellationEvaluationShader
	StageGeometryShader
	StageFragmentShader
	StageEarlyFragmentTests
	StageLateFragmentTests
	StageColorAttachmentOutput
	StageComputeShader
	StageTransfer
	StageBottomOfPipe
	StageHost
	StageAllGraphics
	StageAllCommands
)

// None reports whether no stage bit is set.
func (s PipelineStages) None() bool { return s == StageNone }

// Contains reports whether every bit in other is also set in s.
func (s PipelineStages) Contains(other PipelineStages) bool { return s&other == other }

// ToNative converts the stage set to the native bit pattern a
// device.SubmitBuilder expects. Because PipelineStages already uses the
// same bit layout a backend would, this is a direct widening conversion -
// a real backend that needs a different native layout would translate
// here instead.
func (s PipelineStages) ToNative() device.StageMask { return device.StageMask(s) }

// AccessFlags is a bitmask of read/write access classes used to scope
// barriers, following the same dense-enumeration idiom as PipelineStages.
type AccessFlags uint32

// Access flag bits, matching vulkano's sync::pipeline::AccessFlagBits
// field list.
const AccessNone AccessFlags = 0

const (
	AccessIndirectCommandRead AccessFlags = 1 << iota
	AccessIndexRead
	AccessVertexAttributeRead
	AccessUniformRead
	AccessInputAttachmentRead
	AccessShaderRead
	AccessShaderWrite
	AccessColorAttachmentRead
	AccessColorAttachmentWrite
	AccessDepthStencilAttachmentRead
	AccessDepthStencilAttachmentWrite
	AccessTransferRead
	AccessTransferWrite
	AccessHostRead
	AccessHostWrite
	AccessMemoryRead
	AccessMemoryWrite
)

// None reports whether no access bit is set.
func (a AccessFlags) None() bool { return a == AccessNone }

// Contains reports whether every bit in other is also set in a.
func (a AccessFlags) Contains(other AccessFlags) bool { return a&other == other }

// ToNative converts the access set to the native bit pattern a
// device.SubmitBuilder expects.
func (a AccessFlags) ToNative() device.AccessMask { return device.AccessMask(a) }

// Access is the pair (pipeline stages, access flags) describing the latest
// use of a resource along a chain - the payload check_buffer_access and
// check_image_access hand back on a granted claim.
type Access struct {
	Stages PipelineStages
	Flags  AccessFlags
}

// Union returns the bitwise OR of a and other on both fields. Join uses
// this to combine two Ok claims from sibling chains (spec.md §4.4).
func (a Access) Union(other Access) Access {
	return Access{Stages: a.Stages | other.Stages, Flags: a.Flags | other.Flags}
}
