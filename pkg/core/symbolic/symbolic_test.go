// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package symbolic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	x := Symbols("x", 3)
	assert.Equal(t, "x0", x[0].String())
	assert.Equal(t, "x2", x[2].String())

	assert.Equal(t, "x0 + x1", Add(x[0], x[1]).String())
	assert.Equal(t, "x0 + 3", Add(x[0], Int(1), Int(2)).String())
	assert.Equal(t, "x0 - 3", Add(x[0], Int(-3)).String())
	assert.Equal(t, "0", Add().String())
	assert.Equal(t, "x1", Add(Int(0), x[1]).String())

	assert.Equal(t, "128*x1", Mul(x[1], Int(128)).String())
	assert.Equal(t, "0", Mul(x[1], Int(0)).String())
	assert.Equal(t, "x0 - x1", Add(x[0], Mul(Int(-1), x[1])).String())
	assert.Equal(t, "2*(x0 + x1)", Mul(Int(2), Add(x[0], x[1])).String())

	assert.Equal(t, "(x0//4)", FloorDiv{x[0], Int(4)}.String())
	assert.Equal(t, "Mod(x0 + 1, 4)", Mod{Add(x[0], Int(1)), Int(4)}.String())
}

func TestLinear(t *testing.T) {
	x := Symbols("x", 3)
	assert.Equal(t, "x0", Linear(x[:1], []int{16}).String())
	assert.Equal(t, "8*x0 + x1", Linear(x[:2], []int{4, 8}).String())
	assert.Equal(t, "32*x0 + 8*x1 + x2", Linear(x, []int{2, 4, 8}).String())
}
