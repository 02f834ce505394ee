// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package cuda

import (
	"bytes"
	"slices"
	"text/template"

	"github.com/gomlx/evtgen/pkg/core/loopir"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// TileShape is the CTA tile of a CUTLASS GEMM, in elements.
type TileShape struct {
	M, N, K int
}

// DefaultTileShape is used by NewGemmTemplate.
var DefaultTileShape = TileShape{M: 128, N: 128, K: 64}

// GemmTemplate is the buffer computed by a CUTLASS 3.x SM90 GEMM, `A[M, K] x B[K, N]`,
// whose epilogue can be fused with point-wise nodes reading its output.
type GemmTemplate struct {
	name    string
	dtype   dtypes.DType
	origins []loopir.Origin

	// M, N, K are the GEMM problem sizes.
	M, N, K int

	// A and B are the names of the input buffers.
	A, B string

	// Tile is the CTA tile shape.
	Tile TileShape
}

var _ TemplateBuffer = (*GemmTemplate)(nil)

// NewGemmTemplate creates the template buffer name = a x b, with a of shape [m, k] and b of
// shape [k, n].
func NewGemmTemplate(name string, dtype dtypes.DType, a, b string, m, n, k int, origins ...loopir.Origin) *GemmTemplate {
	return &GemmTemplate{
		name:    name,
		dtype:   dtype,
		origins: slices.Clone(origins),
		M:       m,
		N:       n,
		K:       k,
		A:       a,
		B:       b,
		Tile:    DefaultTileShape,
	}
}

// Name implements loopir.Buffer.
func (g *GemmTemplate) Name() string { return g.name }

// DType implements loopir.Buffer.
func (g *GemmTemplate) DType() dtypes.DType { return g.dtype }

// Origins implements loopir.Buffer.
func (g *GemmTemplate) Origins() []loopir.Origin { return g.origins }

// ReadNames implements loopir.Buffer.
func (g *GemmTemplate) ReadNames() []string {
	if g.A == g.B {
		return []string{g.A}
	}
	return []string{g.A, g.B}
}

// Numel is the number of output elements.
func (g *GemmTemplate) Numel() int { return g.M * g.N }

// ReductionNumel is always 1: the K dimension is reduced inside the template, not by
// the scheduler.
func (g *GemmTemplate) ReductionNumel() int { return 1 }

// elementType returns the CUTLASS element type of the dtype.
func elementType(dtype dtypes.DType) (string, error) {
	switch dtype {
	case dtypes.Float32:
		return "float", nil
	case dtypes.Float16:
		return "cutlass::half_t", nil
	case dtypes.BFloat16:
		return "cutlass::bfloat16_t", nil
	default:
		return "", errors.Errorf("CUTLASS GEMM template doesn't support dtype %s", dtype)
	}
}

// gemmTemplateData is passed to gemmSourceTemplate.
type gemmTemplateData struct {
	*GemmTemplate
	Element           string
	KernelName        string
	EpilogueDecl      string
	AlignmentElements int
}

var gemmSourceTemplate = template.Must(template.New("cutlass_gemm").Parse(`#include <cutlass/cutlass.h>
#include <cutlass/gemm/device/gemm_universal_adapter.h>
#include <cutlass/gemm/kernel/gemm_universal.hpp>
#include <cutlass/gemm/collective/collective_builder.hpp>
#include <cutlass/epilogue/collective/collective_builder.hpp>
#include <cutlass/epilogue/fusion/sm90_callbacks_tma_warpspecialized.hpp>

using namespace cute;

// {{.Name}} = {{.A}}[{{.M}}, {{.K}}] x {{.B}}[{{.K}}, {{.N}}]
namespace {{.KernelName}}_types {
using ElementA = {{.Element}};
using ElementB = {{.Element}};
using ElementC = {{.Element}};
using ElementD = {{.Element}};
using ElementAccumulator = float;
using ElementCompute = float;
using ElementScalar = float;
constexpr auto RoundStyle = cutlass::FloatRoundStyle::round_to_nearest;
constexpr int Alignment = {{.AlignmentElements}};
using TileShape = Shape<_{{.Tile.M}}, _{{.Tile.N}}, _{{.Tile.K}}>;
using ClusterShape = Shape<_1, _1, _1>;

{{.EpilogueDecl}}

using CollectiveEpilogue = typename cutlass::epilogue::collective::CollectiveBuilder<
    cutlass::arch::Sm90, cutlass::arch::OpClassTensorOp,
    TileShape, ClusterShape, cutlass::epilogue::collective::EpilogueTileAuto,
    ElementAccumulator, ElementCompute,
    ElementC, cutlass::layout::RowMajor, Alignment,
    ElementD, cutlass::layout::RowMajor, Alignment,
    cutlass::epilogue::TmaWarpSpecialized, CustomEVT>::CollectiveOp;

using CollectiveMainloop = typename cutlass::gemm::collective::CollectiveBuilder<
    cutlass::arch::Sm90, cutlass::arch::OpClassTensorOp,
    ElementA, cutlass::layout::RowMajor, Alignment,
    ElementB, cutlass::layout::RowMajor, Alignment,
    ElementAccumulator, TileShape, ClusterShape,
    cutlass::gemm::collective::StageCountAutoCarveout<
        static_cast<int>(sizeof(typename CollectiveEpilogue::SharedStorage))>,
    cutlass::gemm::KernelTmaWarpSpecialized>::CollectiveOp;

using GemmKernel = cutlass::gemm::kernel::GemmUniversal<
    Shape<int, int, int, int>, CollectiveMainloop, CollectiveEpilogue>;
using Gemm = cutlass::gemm::device::GemmUniversalAdapter<GemmKernel>;
}  // namespace {{.KernelName}}_types

extern "C" int {{.KernelName}}(const void* {{.A}}, const void* {{.B}}, void* {{.Name}}, cudaStream_t stream) {
  using namespace {{.KernelName}}_types;
  typename Gemm::Arguments arguments{
      cutlass::gemm::GemmUniversalMode::kGemm,
      { {{- .M}}, {{.N}}, {{.K}}, 1},
      {static_cast<const ElementA*>({{.A}}), {}, static_cast<const ElementB*>({{.B}}), {}},
      {{"{{}"}}, nullptr, {}, static_cast<ElementD*>({{.Name}}), {}}};
  Gemm gemm;
  if (gemm.can_implement(arguments) != cutlass::Status::kSuccess) {
    return -1;
  }
  if (gemm.initialize(arguments, nullptr, stream) != cutlass::Status::kSuccess) {
    return -2;
  }
  return gemm.run(stream) == cutlass::Status::kSuccess ? 0 : -3;
}
`))

// MakeKernelRender implements TemplateBuffer. The rendered source uses KernelNamePlaceholder
// for the kernel name and EpiloguePlaceholder for the EVT declarations, which must define
// CustomEVT.
func (g *GemmTemplate) MakeKernelRender() (*TemplateKernel, RenderFn) {
	kernel := NewTemplateKernel(gemmSourceTemplate.Name(), g.ReadNames()...)
	render := func() (string, error) {
		element, err := elementType(g.dtype)
		if err != nil {
			return "", errors.WithMessagef(err, "rendering GEMM %q", g.name)
		}
		var buf bytes.Buffer
		err = gemmSourceTemplate.Execute(&buf, gemmTemplateData{
			GemmTemplate:      g,
			Element:           element,
			KernelName:        KernelNamePlaceholder,
			EpilogueDecl:      EpiloguePlaceholder,
			AlignmentElements: 128 / 8 / g.dtype.Size(),
		})
		if err != nil {
			return "", errors.Wrapf(err, "rendering GEMM %q", g.name)
		}
		return buf.String(), nil
	}
	return kernel, render
}
