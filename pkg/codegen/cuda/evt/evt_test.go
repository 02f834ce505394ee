// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package evt

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	. "github.com/gomlx/evtgen/pkg/core/loopir"
	"github.com/gomlx/evtgen/pkg/core/symbolic"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exprFn returns an InnerFn that ignores the index and returns the expression built by build.
func exprFn(build func(idx symbolic.Expr) Expr) InnerFn {
	return func(index, _ []symbolic.Expr) Expr {
		return build(symbolic.Linear(index, []int{128, 64}))
	}
}

func lowerExpr(t *testing.T, accumulator string, build func(idx symbolic.Expr) Expr) (string, error) {
	t.Helper()
	return Lower(exprFn(build), symbolic.Symbols("x", 2), nil, accumulator)
}

func TestLowerBiasAdd(t *testing.T) {
	block, err := lowerExpr(t, "T", func(idx symbolic.Expr) Expr {
		return Add(NewLoad("T", idx), NewConstant(1.0, dtypes.Float32))
	})
	require.NoError(t, err)
	want := "using EVT_expr_0 = cutlass::epilogue::fusion::Sm90AccFetch /* :=T */;\n" +
		"using EVT_expr_1 = cutlass::epilogue::fusion::Sm90ScalarBroadcast<ElementScalar> /* value=1.0, dtype=torch.float32 */;\n" +
		"using EVT_expr_2 = cutlass::epilogue::fusion::Sm90EVT<cutlass::epilogue::fusion::Sm90Compute<cutlass::plus, ElementCompute, ElementCompute, RoundStyle>,EVT_expr_0,EVT_expr_1>;\n" +
		"using CustomEVT = EVT_expr_2;\n"
	assert.Equal(t, want, block)
}

func TestLowerFunctors(t *testing.T) {
	for op, functor := range map[OpType]string{
		OpTypeMul: "multiplies",
		OpTypeGe:  "greater_equal",
		OpTypeAdd: "plus",
		OpTypeSub: "minus",
	} {
		t.Run(op.String(), func(t *testing.T) {
			block, err := lowerExpr(t, "buf0", func(idx symbolic.Expr) Expr {
				return NewBinary(op, NewLoad("buf0", idx), NewLoad("buf1", idx))
			})
			require.NoError(t, err)
			lines := strings.Split(strings.TrimSuffix(block, "\n"), "\n")
			require.Len(t, lines, 4)
			assert.Equal(t, "using EVT_expr_0 = cutlass::epilogue::fusion::Sm90AccFetch /* :=buf0 */;", lines[0])
			assert.Equal(t, "using EVT_expr_1 = cutlass::epilogue::fusion::Sm90SrcFetch /* :=buf1 */;", lines[1])
			assert.Equal(t, fmt.Sprintf(
				"using EVT_expr_2 = cutlass::epilogue::fusion::Sm90EVT<cutlass::epilogue::fusion::Sm90Compute<cutlass::%s, ElementCompute, ElementCompute, RoundStyle>,EVT_expr_0,EVT_expr_1>;",
				functor), lines[2])
			assert.Equal(t, "using CustomEVT = EVT_expr_2;", lines[3])
		})
	}
}

func TestAccumulatorExclusivity(t *testing.T) {
	build := func(idx symbolic.Expr) Expr { return NewLoad("buf3", idx) }

	block, err := lowerExpr(t, "buf3", build)
	require.NoError(t, err)
	assert.Contains(t, block, "Sm90AccFetch /* :=buf3 */")
	assert.NotContains(t, block, "Sm90SrcFetch")

	block, err = lowerExpr(t, "buf7", build)
	require.NoError(t, err)
	assert.Contains(t, block, "Sm90SrcFetch /* :=buf3 */")
	assert.NotContains(t, block, "Sm90AccFetch")

	// No accumulator bound.
	block, err = lowerExpr(t, "", build)
	require.NoError(t, err)
	assert.NotContains(t, block, "Sm90AccFetch")
}

// relu-like epilogue: (acc >= 0) * acc - bias * 0.5, with acc loaded twice.
func reluLike(idx symbolic.Expr) Expr {
	acc := NewLoad("buf0", idx)
	mask := Ge(acc, NewConstant(0.0, dtypes.Float32))
	scaledBias := Mul(NewLoad("arg2_1", idx), NewConstant(0.5, dtypes.Float16))
	return Sub(Mul(mask, NewLoad("buf0", idx)), scaledBias)
}

var declarationRegexp = regexp.MustCompile(`^using (\w+) = (.*);$`)

func TestBlockInvariants(t *testing.T) {
	block, err := lowerExpr(t, "buf0", reluLike)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(block, "\n"), "\n")

	// 9 sub-expressions + CustomEVT.
	require.Len(t, lines, 10)
	declared := make(map[string]int)
	for ii, line := range lines[:len(lines)-1] {
		m := declarationRegexp.FindStringSubmatch(line)
		require.NotNil(t, m, "line %d: %q", ii, line)

		// Aliases are contiguous from 0.
		require.Equal(t, Alias(ii), m[1])

		// Every alias referenced was declared before.
		for _, ref := range regexp.MustCompile(`EVT_expr_\d+`).FindAllString(m[2], -1) {
			pos, found := declared[ref]
			require.True(t, found, "line %d references undeclared %s", ii, ref)
			require.Less(t, pos, ii)
		}
		declared[m[1]] = ii
	}
	assert.Equal(t, "using CustomEVT = EVT_expr_8;", lines[len(lines)-1])

	// No common sub-expression elimination: "buf0" is fetched from the accumulator twice.
	assert.Equal(t, 2, strings.Count(block, "Sm90AccFetch /* :=buf0 */"))
	assert.Contains(t, block, "/* value=0.5, dtype=torch.float16 */")
	assert.Contains(t, block, "/* value=0.0, dtype=torch.float32 */")

	// Determinism.
	again, err := lowerExpr(t, "buf0", reluLike)
	require.NoError(t, err)
	assert.Equal(t, block, again)
}

func TestSymbolicConstant(t *testing.T) {
	block, err := lowerExpr(t, "buf0", func(idx symbolic.Expr) Expr {
		return NewConstant(symbolic.Add(symbolic.Symbol("ks0"), symbolic.Int(1)), dtypes.Float32)
	})
	require.NoError(t, err)
	assert.Contains(t, block, "/* value=symbolic_expr('ks0 + 1'), dtype=torch.float32 */")
}

func TestUnsupported(t *testing.T) {
	testCases := []struct {
		name  string
		build func(idx symbolic.Expr) Expr
		op    string
	}{
		{"exp", func(idx symbolic.Expr) Expr { return NewUnary(OpTypeExp, NewLoad("buf0", idx)) }, "exp"},
		{"true_div", func(idx symbolic.Expr) Expr {
			return NewBinary(OpTypeTrueDiv, NewLoad("buf0", idx), NewConstant(2.0, dtypes.Float32))
		}, "true_div"},
		{"nested maximum", func(idx symbolic.Expr) Expr {
			return Add(NewLoad("buf0", idx), NewBinary(OpTypeMaximum, NewLoad("buf0", idx), NewLoad("buf1", idx)))
		}, "maximum"},
		{"where", func(idx symbolic.Expr) Expr {
			acc := NewLoad("buf0", idx)
			return &Where{Cond: Ge(acc, acc), OnTrue: acc, OnFalse: acc}
		}, "where"},
		{"index_expr", func(idx symbolic.Expr) Expr { return &IndexExpr{Index: idx, DType: dtypes.Float32} }, "index_expr"},
		{"to_dtype", func(idx symbolic.Expr) Expr { return ToDtype(NewLoad("buf0", idx), dtypes.Float16) }, "to_dtype"},
		{"reduction", func(idx symbolic.Expr) Expr {
			return &Reduction{DType: dtypes.Float32, SrcDType: dtypes.Float32, Type: ReduceSum, Value: NewLoad("buf0", idx)}
		}, "reduction"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			block, err := lowerExpr(t, "buf0", tc.build)
			require.Error(t, err)
			assert.Empty(t, block)
			require.ErrorIs(t, err, ErrNotImplemented)
			var opErr *UnsupportedOpError
			require.True(t, errors.As(err, &opErr))
			assert.Equal(t, tc.op, opErr.Op)
			assert.Contains(t, err.Error(), tc.op)
		})
	}
}

func TestUnsupportedDType(t *testing.T) {
	for _, dtype := range []dtypes.DType{dtypes.Int32, dtypes.Float64, dtypes.BFloat16, dtypes.Bool} {
		t.Run(dtype.String(), func(t *testing.T) {
			_, err := lowerExpr(t, "buf0", func(idx symbolic.Expr) Expr {
				return Mul(NewLoad("buf0", idx), NewConstant(int64(2), dtype))
			})
			require.ErrorIs(t, err, ErrNotImplemented)
			var dtypeErr *UnsupportedDTypeError
			require.True(t, errors.As(err, &dtypeErr))
			assert.Equal(t, dtype, dtypeErr.DType)
		})
	}
}

func TestLowerNode(t *testing.T) {
	epilogue := NewComputedBuffer("buf1", dtypes.Float32, []int{128, 64},
		func(index, _ []symbolic.Expr) Expr {
			idx := symbolic.Linear(index, []int{128, 64})
			return Mul(NewLoad("buf0", idx), NewLoad("arg3_1", idx))
		})
	block, err := LowerNode(epilogue, "buf0")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(block, "using CustomEVT = EVT_expr_2;\n"))

	bad := NewComputedBuffer("buf2", dtypes.Float32, []int{128, 64},
		func(index, _ []symbolic.Expr) Expr { return NewUnary(OpTypeTanh, NewLoad("buf0", index[0])) })
	_, err = LowerNode(bad, "buf0")
	require.ErrorIs(t, err, ErrNotImplemented)
	assert.Contains(t, err.Error(), `"buf2"`)

	nilFn := NewComputedBuffer("buf3", dtypes.Float32, []int{4},
		func(index, _ []symbolic.Expr) Expr { return nil })
	_, err = LowerNode(nilFn, "buf0")
	require.Error(t, err)
}

func TestNilOperands(t *testing.T) {
	for name, build := range map[string]func(idx symbolic.Expr) Expr{
		"load":     func(idx symbolic.Expr) Expr { return Add((*Load)(nil), NewConstant(1.0, dtypes.Float32)) },
		"constant": func(idx symbolic.Expr) Expr { return Mul(NewLoad("buf0", idx), (*Constant)(nil)) },
		"binary":   func(idx symbolic.Expr) Expr { return Sub(NewLoad("buf0", idx), (*Binary)(nil)) },
		"unary":    func(idx symbolic.Expr) Expr { return Add(NewLoad("buf0", idx), (*Unary)(nil)) },
		"root":     func(idx symbolic.Expr) Expr { return (*Where)(nil) },
	} {
		t.Run(name, func(t *testing.T) {
			var block string
			var err error
			require.NotPanics(t, func() { block, err = lowerExpr(t, "buf0", build) })
			require.Error(t, err)
			assert.Empty(t, block)
			assert.False(t, errors.Is(err, ErrNotImplemented))
		})
	}
}
