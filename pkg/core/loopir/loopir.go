// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package loopir defines the loop-level IR consumed by the code generators: scalar
// expression trees built by a node's inner function, for one point of the node's
// iteration space.
//
// Expressions form a closed set of variants (Load, Constant, IndexExpr, Binary, Unary,
// Where and Reduction), so code generators can dispatch with an exhaustive type switch.
// Nodes are immutable once built.
package loopir

import (
	"github.com/gomlx/evtgen/pkg/core/symbolic"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
)

// Expr is a scalar expression. It is implemented only by the variants in this package.
type Expr interface {
	// OpType of the expression.
	OpType() OpType

	// Operands are the sub-expressions, in evaluation order.
	Operands() []Expr

	isExpr()
}

// Load reads the element at Index of the named buffer.
type Load struct {
	Name  string
	Index symbolic.Expr
}

// Constant is a scalar literal of the given dtype.
//
// Value is usually a float64, an int64, a float16.Float16, a bool or a symbolic.Expr.
type Constant struct {
	Value any
	DType dtypes.DType
}

// IndexExpr converts a symbolic index expression to a value of the given dtype.
type IndexExpr struct {
	Index symbolic.Expr
	DType dtypes.DType
}

// Binary is an element-wise operation with two operands.
type Binary struct {
	Op       OpType
	LHS, RHS Expr
}

// Unary is an element-wise operation with one operand.
//
// For OpTypeToDtype, DType holds the target dtype.
type Unary struct {
	Op    OpType
	X     Expr
	DType dtypes.DType
}

// Where selects OnTrue if Cond is true, OnFalse otherwise.
type Where struct {
	Cond, OnTrue, OnFalse Expr
}

// ReduceType selects the reduction performed by a Reduction.
type ReduceType int

const (
	ReduceSum ReduceType = iota
	ReduceProd
	ReduceMax
	ReduceMin
)

// String returns the name of the reduction.
func (r ReduceType) String() string {
	switch r {
	case ReduceSum:
		return "sum"
	case ReduceProd:
		return "prod"
	case ReduceMax:
		return "max"
	case ReduceMin:
		return "min"
	default:
		return "unknown"
	}
}

// Reduction accumulates Value over the reduction index.
type Reduction struct {
	DType, SrcDType dtypes.DType
	Type            ReduceType
	Value           Expr
}

func (*Load) OpType() OpType      { return OpTypeLoad }
func (*Constant) OpType() OpType  { return OpTypeConstant }
func (*IndexExpr) OpType() OpType { return OpTypeIndexExpr }
func (b *Binary) OpType() OpType  { return b.Op }
func (u *Unary) OpType() OpType   { return u.Op }
func (*Where) OpType() OpType     { return OpTypeWhere }
func (*Reduction) OpType() OpType { return OpTypeReduction }

func (*Load) Operands() []Expr        { return nil }
func (*Constant) Operands() []Expr    { return nil }
func (*IndexExpr) Operands() []Expr   { return nil }
func (b *Binary) Operands() []Expr    { return []Expr{b.LHS, b.RHS} }
func (u *Unary) Operands() []Expr     { return []Expr{u.X} }
func (w *Where) Operands() []Expr     { return []Expr{w.Cond, w.OnTrue, w.OnFalse} }
func (r *Reduction) Operands() []Expr { return []Expr{r.Value} }

func (*Load) isExpr()      {}
func (*Constant) isExpr()  {}
func (*IndexExpr) isExpr() {}
func (*Binary) isExpr()    {}
func (*Unary) isExpr()     {}
func (*Where) isExpr()     {}
func (*Reduction) isExpr() {}

// NewLoad returns a Load of buffer name at index.
func NewLoad(name string, index symbolic.Expr) *Load {
	return &Load{Name: name, Index: index}
}

// NewConstant returns a Constant with the given value and dtype.
func NewConstant(value any, dtype dtypes.DType) *Constant {
	return &Constant{Value: value, DType: dtype}
}

// NewBinary returns a Binary op. It panics if op is not a binary op.
func NewBinary(op OpType, lhs, rhs Expr) *Binary {
	if !op.IsBinary() {
		exceptions.Panicf("loopir.NewBinary(%s): op is not a binary operation", op)
	}
	return &Binary{Op: op, LHS: lhs, RHS: rhs}
}

// NewUnary returns a Unary op. It panics if op is not a unary op.
func NewUnary(op OpType, x Expr) *Unary {
	if !op.IsUnary() {
		exceptions.Panicf("loopir.NewUnary(%s): op is not a unary operation", op)
	}
	return &Unary{Op: op, X: x}
}

// Add returns lhs + rhs.
func Add(lhs, rhs Expr) Expr { return NewBinary(OpTypeAdd, lhs, rhs) }

// Sub returns lhs - rhs.
func Sub(lhs, rhs Expr) Expr { return NewBinary(OpTypeSub, lhs, rhs) }

// Mul returns lhs * rhs.
func Mul(lhs, rhs Expr) Expr { return NewBinary(OpTypeMul, lhs, rhs) }

// Ge returns lhs >= rhs.
func Ge(lhs, rhs Expr) Expr { return NewBinary(OpTypeGe, lhs, rhs) }

// ToDtype converts x to dtype.
func ToDtype(x Expr, dtype dtypes.DType) Expr {
	return &Unary{Op: OpTypeToDtype, X: x, DType: dtype}
}

// Walk visits expr and its operands in post-order: operands (in order) before the
// expression that consumes them.
func Walk(expr Expr, fn func(Expr)) {
	for _, operand := range expr.Operands() {
		Walk(operand, fn)
	}
	fn(expr)
}
