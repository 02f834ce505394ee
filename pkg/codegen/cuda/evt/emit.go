// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package evt

// Emitters for the declaration block grammar: one function per node kind of the EVT.
// Downstream code matches this text exactly, including spacing.

const fusionNamespace = "cutlass::epilogue::fusion::"

// declaration renders `using <alias> = <expression>;`.
func declaration(alias, expression string) string {
	return "using " + alias + " = " + expression + ";"
}

// accFetch reads the value from the GEMM/convolution accumulator.
func accFetch(name string) string {
	return fusionNamespace + "Sm90AccFetch /* :=" + name + " */"
}

// srcFetch reads the value from the source tensor (the "C" operand) in global memory.
func srcFetch(name string) string {
	return fusionNamespace + "Sm90SrcFetch /* :=" + name + " */"
}

// scalarBroadcast broadcasts a scalar to every element.
func scalarBroadcast(value, dtype string) string {
	return fusionNamespace + "Sm90ScalarBroadcast<ElementScalar> /* value=" + value + ", dtype=" + dtype + " */"
}

// compute applies the binary functor (from cutlass/functional.h) to the nodes lhs and rhs.
func compute(functor, lhs, rhs string) string {
	return fusionNamespace + "Sm90EVT<" +
		fusionNamespace + "Sm90Compute<cutlass::" + functor + ", ElementCompute, ElementCompute, RoundStyle>," +
		lhs + "," + rhs + ">"
}
