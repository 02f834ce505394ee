// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package symbolic holds the minimal symbolic integer expressions used to describe
// iteration indices and extents in the loop-level IR.
//
// It only builds and prints expressions: there is no simplification beyond folding
// integer literals, and the printed form is canonical in the sense that two expressions
// built the same way always print the same way.
package symbolic

import (
	"fmt"
	"strings"
)

// Expr is a symbolic integer expression.
type Expr interface {
	// String returns the canonical text of the expression.
	String() string

	// precedence is used to decide when sub-expressions need parenthesis.
	precedence() int
}

const (
	precSum = iota + 1
	precProduct
	precAtom
)

// Symbol is a named integer variable, e.g. the loop index "x0".
type Symbol string

func (s Symbol) String() string  { return string(s) }
func (s Symbol) precedence() int { return precAtom }

// Int is an integer literal.
type Int int64

func (i Int) String() string { return fmt.Sprintf("%d", int64(i)) }
func (i Int) precedence() int {
	if i < 0 {
		return precSum
	}
	return precAtom
}

// Symbols returns the symbols prefix0, prefix1, ..., prefix{n-1}.
func Symbols(prefix string, n int) []Expr {
	symbols := make([]Expr, n)
	for ii := range symbols {
		symbols[ii] = Symbol(fmt.Sprintf("%s%d", prefix, ii))
	}
	return symbols
}

// Sum of terms.
type Sum struct {
	Terms []Expr
}

// Product of factors.
type Product struct {
	Factors []Expr
}

// FloorDiv is the integer division of Num by Den, rounding towards negative infinity.
type FloorDiv struct {
	Num, Den Expr
}

// Mod is the modulo of Num by Den.
type Mod struct {
	Num, Den Expr
}

// Add returns the sum of the given terms. Integer literals are folded and zero terms dropped.
func Add(terms ...Expr) Expr {
	var constant Int
	kept := make([]Expr, 0, len(terms))
	for _, term := range terms {
		switch t := term.(type) {
		case Int:
			constant += t
		case Sum:
			kept = append(kept, t.Terms...)
		default:
			kept = append(kept, t)
		}
	}
	if constant != 0 {
		kept = append(kept, constant)
	}
	switch len(kept) {
	case 0:
		return Int(0)
	case 1:
		return kept[0]
	}
	return Sum{Terms: kept}
}

// Mul returns the product of the given factors. Integer literals are folded into a leading
// coefficient; a zero coefficient collapses the product to 0.
func Mul(factors ...Expr) Expr {
	coefficient := Int(1)
	kept := make([]Expr, 0, len(factors))
	for _, factor := range factors {
		switch f := factor.(type) {
		case Int:
			coefficient *= f
		case Product:
			kept = append(kept, f.Factors...)
		default:
			kept = append(kept, f)
		}
	}
	if coefficient == 0 {
		return Int(0)
	}
	if coefficient != 1 || len(kept) == 0 {
		kept = append([]Expr{coefficient}, kept...)
	}
	if len(kept) == 1 {
		return kept[0]
	}
	return Product{Factors: kept}
}

// Linear returns the row-major linear index of the given indices over the given extents:
// the last index varies fastest.
func Linear(indices []Expr, extents []int) Expr {
	terms := make([]Expr, 0, len(indices))
	stride := 1
	for ii := len(indices) - 1; ii >= 0; ii-- {
		terms = append([]Expr{Mul(Int(stride), indices[ii])}, terms...)
		stride *= extents[ii]
	}
	return Add(terms...)
}

func (s Sum) String() string {
	var sb strings.Builder
	for ii, term := range s.Terms {
		text := parenthesize(term, precSum)
		if ii > 0 {
			if strings.HasPrefix(text, "-") {
				sb.WriteString(" - ")
				text = text[1:]
			} else {
				sb.WriteString(" + ")
			}
		}
		sb.WriteString(text)
	}
	return sb.String()
}

func (s Sum) precedence() int { return precSum }

func (p Product) String() string {
	parts := make([]string, len(p.Factors))
	for ii, factor := range p.Factors {
		parts[ii] = parenthesize(factor, precProduct)
		if ii == 0 {
			if c, ok := factor.(Int); ok && c == -1 && len(p.Factors) > 1 {
				parts[ii] = "-"
			}
		}
	}
	if parts[0] == "-" {
		return "-" + strings.Join(parts[1:], "*")
	}
	return strings.Join(parts, "*")
}

func (p Product) precedence() int { return precProduct }

func (d FloorDiv) String() string {
	return fmt.Sprintf("(%s//%s)", d.Num, d.Den)
}

func (d FloorDiv) precedence() int { return precAtom }

func (m Mod) String() string {
	return fmt.Sprintf("Mod(%s, %s)", m.Num, m.Den)
}

func (m Mod) precedence() int { return precAtom }

func parenthesize(e Expr, minPrecedence int) string {
	if e.precedence() < minPrecedence {
		return "(" + e.String() + ")"
	}
	return e.String()
}
