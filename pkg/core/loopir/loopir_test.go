// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package loopir

import (
	"math"
	"testing"

	"github.com/gomlx/evtgen/pkg/core/symbolic"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestOpType(t *testing.T) {
	assert.Equal(t, "mul", OpTypeMul.String())
	assert.Equal(t, "ge", OpTypeGe.String())
	assert.Equal(t, "true_div", OpTypeTrueDiv.String())
	assert.Equal(t, "reduction", OpTypeReduction.String())

	op, err := OpTypeString("index_expr")
	require.NoError(t, err)
	assert.Equal(t, OpTypeIndexExpr, op)
	_, err = OpTypeString("fft")
	require.Error(t, err)

	assert.True(t, OpTypeSub.IsBinary())
	assert.False(t, OpTypeExp.IsBinary())
	assert.True(t, OpTypeExp.IsUnary())
	assert.True(t, OpTypeGe.IsComparison())
	assert.False(t, OpTypeAdd.IsComparison())

	require.Panics(t, func() { _ = NewBinary(OpTypeExp, nil, nil) })
	require.Panics(t, func() { _ = NewUnary(OpTypeAdd, nil) })
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "1.0", FormatValue(1.0))
	assert.Equal(t, "0.5", FormatValue(float32(0.5)))
	assert.Equal(t, "-2.25", FormatValue(-2.25))
	assert.Equal(t, "1000000.0", FormatValue(1e6))
	assert.Equal(t, "1e-05", FormatValue(1e-5))
	assert.Equal(t, "1e+16", FormatValue(1e16))
	assert.Equal(t, "inf", FormatValue(math.Inf(1)))
	assert.Equal(t, "-inf", FormatValue(math.Inf(-1)))
	assert.Equal(t, "nan", FormatValue(math.NaN()))
	assert.Equal(t, "0.0", FormatValue(0.0))
	assert.Equal(t, "1.5", FormatValue(float16.Fromfloat32(1.5)))
	assert.Equal(t, "3", FormatValue(int64(3)))
	assert.Equal(t, "True", FormatValue(true))
	assert.Equal(t, "symbolic_expr('x0 + 1')",
		FormatValue(symbolic.Add(symbolic.Symbol("x0"), symbolic.Int(1))))
}

func TestComputedBuffer(t *testing.T) {
	buf := NewComputedBuffer("buf1", dtypes.Float32, []int{4, 8},
		func(index, rindex []symbolic.Expr) Expr {
			idx := symbolic.Linear(index, []int{4, 8})
			return Add(
				Mul(NewLoad("buf0", idx), NewLoad("arg2_1", idx)),
				NewLoad("buf0", idx))
		},
		Origin{Name: "add", Op: "aten.add"})

	assert.Equal(t, "buf1", buf.Name())
	assert.Equal(t, dtypes.Float32, buf.DType())
	assert.Equal(t, 32, buf.Numel())
	assert.Equal(t, 1, buf.ReductionNumel())
	assert.Equal(t, []string{"buf0", "arg2_1"}, buf.ReadNames())
	assert.Equal(t, []Origin{{"add", "aten.add"}}, buf.Origins())

	index, rindex := buf.Index()
	assert.Len(t, index, 2)
	assert.Nil(t, rindex)
	assert.Equal(t,
		"add(mul(load(buf0, 8*x0 + x1), load(arg2_1, 8*x0 + x1)), load(buf0, 8*x0 + x1))",
		Format(buf.Body()))

	buf.WithReduction(16)
	assert.Equal(t, 16, buf.ReductionNumel())
	_, rindex = buf.Index()
	assert.Len(t, rindex, 1)
}

func TestWalk(t *testing.T) {
	x := NewLoad("a", symbolic.Symbol("x0"))
	c := NewConstant(2.0, dtypes.Float32)
	expr := Sub(Mul(x, c), x)

	var visited []OpType
	Walk(expr, func(e Expr) { visited = append(visited, e.OpType()) })
	assert.Equal(t, []OpType{OpTypeLoad, OpTypeConstant, OpTypeMul, OpTypeLoad, OpTypeSub}, visited)
}
