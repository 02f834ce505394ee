// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package loopir

// OpType enumerates the operations of the loop-level IR.
//
// Code generators usually support only a subset of them, and must report the ones
// they don't support by name (see OpType.String, which returns the snake-case op name).
type OpType int

//go:generate go tool enumer -type=OpType -trimprefix=OpType -transform=snake -output=gen_optype_enumer.go optype.go

const (
	OpTypeInvalid OpType = iota

	// Leaves.

	OpTypeLoad
	OpTypeConstant
	OpTypeIndexExpr

	// Binary ops.

	OpTypeAdd
	OpTypeSub
	OpTypeMul
	OpTypeTrueDiv
	OpTypeMaximum
	OpTypeMinimum
	OpTypeEq
	OpTypeNe
	OpTypeGe
	OpTypeGt
	OpTypeLe
	OpTypeLt

	// Unary ops.

	OpTypeNeg
	OpTypeAbs
	OpTypeExp
	OpTypeLog
	OpTypeSqrt
	OpTypeRelu
	OpTypeSigmoid
	OpTypeTanh
	OpTypeToDtype

	// Others.

	OpTypeWhere
	OpTypeReduction

	// OpTypeLast should always be kept the last, it is used as a counter/marker for OpType.
	OpTypeLast
)

// IsBinary returns whether the op takes two operands of the same dtype.
func (op OpType) IsBinary() bool {
	return op >= OpTypeAdd && op <= OpTypeLt
}

// IsUnary returns whether the op takes one operand.
func (op OpType) IsUnary() bool {
	return op >= OpTypeNeg && op <= OpTypeToDtype
}

// IsComparison returns whether the op is a binary comparison, whose output is a boolean.
func (op OpType) IsComparison() bool {
	return op >= OpTypeEq && op <= OpTypeLt
}
