// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package loopir

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gomlx/evtgen/pkg/core/symbolic"
	"github.com/x448/float16"
)

// FormatValue renders a literal argument of an expression.
//
// Floats are rendered the way Python's repr renders them (always with a decimal point
// or an exponent, "inf" and "nan" in lower case), since that is the convention of the
// comments consumed downstream. Symbolic expressions are wrapped in an opaque
// symbolic_expr('...') token. Everything else uses its natural "%v" form.
func FormatValue(value any) string {
	switch v := value.(type) {
	case symbolic.Expr:
		return "symbolic_expr('" + v.String() + "')"
	case float64:
		return formatFloat(v, 64)
	case float32:
		return formatFloat(float64(v), 32)
	case float16.Float16:
		return formatFloat(float64(v.Float32()), 32)
	case bool:
		if v {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatFloat(v float64, bitSize int) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, bitSize)
	}
	s := strconv.FormatFloat(v, 'f', -1, bitSize)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// Format returns a human-readable one-line rendering of the expression, for debugging
// and logging.
func Format(expr Expr) string {
	var sb strings.Builder
	format(&sb, expr)
	return sb.String()
}

func format(sb *strings.Builder, expr Expr) {
	switch e := expr.(type) {
	case *Load:
		fmt.Fprintf(sb, "load(%s, %s)", e.Name, e.Index)
		return
	case *Constant:
		fmt.Fprintf(sb, "constant(%s, %s)", FormatValue(e.Value), e.DType)
		return
	case *IndexExpr:
		fmt.Fprintf(sb, "index_expr(%s, %s)", e.Index, e.DType)
		return
	case *Reduction:
		fmt.Fprintf(sb, "reduction(%s, %s, %s, ", e.DType, e.SrcDType, e.Type)
		format(sb, e.Value)
		sb.WriteString(")")
		return
	case *Unary:
		if e.Op == OpTypeToDtype {
			sb.WriteString("to_dtype(")
			format(sb, e.X)
			fmt.Fprintf(sb, ", %s)", e.DType)
			return
		}
	}
	sb.WriteString(expr.OpType().String())
	sb.WriteString("(")
	for ii, operand := range expr.Operands() {
		if ii > 0 {
			sb.WriteString(", ")
		}
		format(sb, operand)
	}
	sb.WriteString(")")
}
