// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package evt lowers the expression of an epilogue node to a CUTLASS 3.x Epilogue Visitor
// Tree (EVT): a sequence of C++ `using` declarations, one per visited sub-expression,
// ending with the composite alias CustomEVT.
//
// Only a small closed set of operations is supported: Load, Constant (float16 and float32
// only), and the binary ops Mul, Ge, Add and Sub. Anything else fails with an error that
// wraps ErrNotImplemented, and no partial declaration block is ever returned.
//
// Example: for `add(load("buf0"), constant(1.0, float32))`, with "buf0" being the
// accumulator, the block is:
//
//	using EVT_expr_0 = cutlass::epilogue::fusion::Sm90AccFetch /* :=buf0 */;
//	using EVT_expr_1 = cutlass::epilogue::fusion::Sm90ScalarBroadcast<ElementScalar> /* value=1.0, dtype=torch.float32 */;
//	using EVT_expr_2 = cutlass::epilogue::fusion::Sm90EVT<cutlass::epilogue::fusion::Sm90Compute<cutlass::plus, ElementCompute, ElementCompute, RoundStyle>,EVT_expr_0,EVT_expr_1>;
//	using CustomEVT = EVT_expr_2;
package evt

import (
	"fmt"
	"strings"

	"github.com/gomlx/evtgen/pkg/core/loopir"
	"github.com/gomlx/evtgen/pkg/core/symbolic"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ErrNotImplemented is wrapped by every error reporting a construct that can't be expressed
// as a CUTLASS epilogue. Callers may use it to fall back to a non-fused code path.
var ErrNotImplemented = errors.New("not implemented for CUTLASS epilogues")

// UnsupportedOpError is returned when the expression uses an operation outside the
// supported set. It wraps ErrNotImplemented.
type UnsupportedOpError struct {
	Op string
}

func (e *UnsupportedOpError) Error() string {
	return fmt.Sprintf("unsupported operation %q: %s", e.Op, ErrNotImplemented)
}

func (e *UnsupportedOpError) Unwrap() error { return ErrNotImplemented }

// UnsupportedDTypeError is returned for a constant whose dtype is not float16 or float32.
// It wraps ErrNotImplemented.
type UnsupportedDTypeError struct {
	DType dtypes.DType
}

func (e *UnsupportedDTypeError) Error() string {
	return fmt.Sprintf("unsupported dtype for constant: %s: %s", e.DType, ErrNotImplemented)
}

func (e *UnsupportedDTypeError) Unwrap() error { return ErrNotImplemented }

const (
	// AliasPrefix is the prefix of the aliases declared for each sub-expression.
	AliasPrefix = "EVT_expr_"

	// CustomEVT is the alias of the composite type representing the whole epilogue.
	CustomEVT = "CustomEVT"
)

// binaryFunctors maps the supported binary ops to the functor names in cutlass/functional.h.
var binaryFunctors = map[loopir.OpType]string{
	loopir.OpTypeMul: "multiplies",
	loopir.OpTypeGe:  "greater_equal",
	loopir.OpTypeAdd: "plus",
	loopir.OpTypeSub: "minus",
}

// formatter holds the state of one lowering: it is never reused.
type formatter struct {
	// accumulator is the name of the node read from the GEMM/convolution accumulator,
	// instead of from memory.
	accumulator string

	lines      []string
	varCounter int
}

// Lower builds the expression of fn at the given index and lowers it to a declaration
// block. rindex may be nil. Loads of the buffer named accumulator read from the accumulator;
// all other loads read from the source tensor.
//
// The returned block has one line per declaration, each terminated by a new line.
func Lower(fn loopir.InnerFn, index, rindex []symbolic.Expr, accumulator string) (string, error) {
	root := fn(index, rindex)
	if isNil(root) {
		return "", errors.New("evt.Lower: inner function returned a nil expression")
	}
	f := &formatter{accumulator: accumulator}
	last, err := f.lower(root)
	if err != nil {
		return "", err
	}
	f.lines = append(f.lines, declaration(CustomEVT, last))
	return strings.Join(f.lines, "\n") + "\n", nil
}

// LowerNode lowers the expression of the epilogue buffer, over its own index variables.
func LowerNode(buffer *loopir.ComputedBuffer, accumulator string) (string, error) {
	index, rindex := buffer.Index()
	block, err := Lower(buffer.InnerFn, index, rindex, accumulator)
	if err != nil {
		return "", errors.WithMessagef(err, "lowering epilogue %q to CUTLASS EVT", buffer.Name())
	}
	if klog.V(2).Enabled() {
		klog.Infof("evt: epilogue %q (accumulator %q):\n%s", buffer.Name(), accumulator, block)
	}
	return block, nil
}

// lower declares expr, after declaring its operands, and returns the alias it was bound to.
func (f *formatter) lower(expr loopir.Expr) (string, error) {
	if isNil(expr) {
		return "", errors.Errorf("evt: nil %T expression after %d declaration(s)", expr, f.varCounter)
	}
	switch e := expr.(type) {
	case *loopir.Load:
		if e.Name == f.accumulator {
			return f.declare(accFetch(e.Name)), nil
		}
		return f.declare(srcFetch(e.Name)), nil

	case *loopir.Constant:
		literal, ok := dtypeLiteral(e.DType)
		if !ok {
			return "", errors.WithStack(&UnsupportedDTypeError{DType: e.DType})
		}
		return f.declare(scalarBroadcast(loopir.FormatValue(e.Value), literal)), nil

	case *loopir.Binary:
		functor, ok := binaryFunctors[e.Op]
		if !ok {
			return "", errors.WithStack(&UnsupportedOpError{Op: e.Op.String()})
		}
		lhs, err := f.lower(e.LHS)
		if err != nil {
			return "", err
		}
		rhs, err := f.lower(e.RHS)
		if err != nil {
			return "", err
		}
		return f.declare(compute(functor, lhs, rhs)), nil

	case *loopir.Reduction:
		// Epilogues are point-wise: the reduction axes belong to the GEMM itself.
		return "", errors.WithStack(&UnsupportedOpError{Op: loopir.OpTypeReduction.String()})

	case *loopir.IndexExpr, *loopir.Unary, *loopir.Where:
		return "", errors.WithStack(&UnsupportedOpError{Op: e.OpType().String()})

	default:
		return "", errors.Errorf("evt: unknown expression type %T", expr)
	}
}

// isNil returns whether expr is nil, or a nil pointer to one of the expression variants.
func isNil(expr loopir.Expr) bool {
	switch e := expr.(type) {
	case nil:
		return true
	case *loopir.Load:
		return e == nil
	case *loopir.Constant:
		return e == nil
	case *loopir.IndexExpr:
		return e == nil
	case *loopir.Binary:
		return e == nil
	case *loopir.Unary:
		return e == nil
	case *loopir.Where:
		return e == nil
	case *loopir.Reduction:
		return e == nil
	default:
		return false
	}
}

// declare binds rendered to a fresh alias and returns the alias.
func (f *formatter) declare(rendered string) string {
	alias := Alias(f.varCounter)
	f.varCounter++
	f.lines = append(f.lines, declaration(alias, rendered))
	return alias
}

// Alias returns the name of the n-th declared alias of a block.
func Alias(n int) string {
	return fmt.Sprintf("%s%d", AliasPrefix, n)
}

// dtypeLiteral returns how the dtype is named in the constant annotations, and whether
// constants of that dtype are supported at all.
func dtypeLiteral(dtype dtypes.DType) (string, bool) {
	switch dtype {
	case dtypes.Float16:
		return "torch.float16", true
	case dtypes.Float32:
		return "torch.float32", true
	default:
		return "", false
	}
}
