// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package loopir

import (
	"slices"

	"github.com/gomlx/evtgen/pkg/core/symbolic"
	"github.com/gomlx/gopjrt/dtypes"
)

// InnerFn builds the scalar expression of a node for one point of its iteration space.
// rindex is nil for nodes without reduction.
type InnerFn func(index, rindex []symbolic.Expr) Expr

// Origin records which operation of the user's program a node was lowered from.
type Origin struct {
	// Name of the operation node in the user's graph, e.g. "add_1".
	Name string

	// Op is the operation type in the user's graph, e.g. "aten.add".
	Op string
}

// Buffer is a named output of the loop-level IR.
type Buffer interface {
	// Name of the buffer, used by Load expressions of other nodes.
	Name() string

	// DType of the buffer elements.
	DType() dtypes.DType

	// Origins are the user's graph operations this buffer was lowered from.
	Origins() []Origin

	// ReadNames returns the names of the buffers read by this one, without repetitions.
	ReadNames() []string
}

// ComputedBuffer is a buffer whose elements are computed by an InnerFn over an iteration space.
type ComputedBuffer struct {
	name    string
	dtype   dtypes.DType
	origins []Origin

	// Ranges are the extents of the output iteration space.
	Ranges []int

	// ReductionRanges are the extents of the reduction iteration space, empty if the buffer
	// is not a reduction.
	ReductionRanges []int

	// InnerFn computes one element.
	InnerFn InnerFn
}

var _ Buffer = (*ComputedBuffer)(nil)

// NewComputedBuffer creates a point-wise buffer (no reduction).
func NewComputedBuffer(name string, dtype dtypes.DType, ranges []int, fn InnerFn, origins ...Origin) *ComputedBuffer {
	return &ComputedBuffer{
		name:    name,
		dtype:   dtype,
		origins: slices.Clone(origins),
		Ranges:  slices.Clone(ranges),
		InnerFn: fn,
	}
}

// WithReduction sets the reduction ranges and returns the buffer itself.
func (b *ComputedBuffer) WithReduction(reductionRanges ...int) *ComputedBuffer {
	b.ReductionRanges = slices.Clone(reductionRanges)
	return b
}

// Name implements Buffer.
func (b *ComputedBuffer) Name() string { return b.name }

// DType implements Buffer.
func (b *ComputedBuffer) DType() dtypes.DType { return b.dtype }

// Origins implements Buffer.
func (b *ComputedBuffer) Origins() []Origin { return b.origins }

// Index returns the symbolic index variables of the iteration space: "x0, x1, ..." for
// the output ranges and "r0, ..." for the reduction ranges (nil if not a reduction).
func (b *ComputedBuffer) Index() (index, rindex []symbolic.Expr) {
	index = symbolic.Symbols("x", len(b.Ranges))
	if len(b.ReductionRanges) > 0 {
		rindex = symbolic.Symbols("r", len(b.ReductionRanges))
	}
	return
}

// Body evaluates the InnerFn over the buffer's own index variables.
func (b *ComputedBuffer) Body() Expr {
	index, rindex := b.Index()
	return b.InnerFn(index, rindex)
}

// ReadNames implements Buffer.
func (b *ComputedBuffer) ReadNames() []string {
	var names []string
	Walk(b.Body(), func(e Expr) {
		if load, ok := e.(*Load); ok && !slices.Contains(names, load.Name) {
			names = append(names, load.Name)
		}
	})
	return names
}

// Numel returns the number of elements of the output iteration space.
func (b *ComputedBuffer) Numel() int {
	return product(b.Ranges)
}

// ReductionNumel returns the number of elements of the reduction iteration space, 1 if
// the buffer is not a reduction.
func (b *ComputedBuffer) ReductionNumel() int {
	return product(b.ReductionRanges)
}

func product(dims []int) int {
	p := 1
	for _, d := range dims {
		p *= d
	}
	return p
}
