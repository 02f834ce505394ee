// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package cuda

import (
	"fmt"
	"strings"

	"github.com/gomlx/evtgen/pkg/codegen"
	"github.com/gomlx/evtgen/pkg/core/loopir"
	"github.com/gomlx/evtgen/pkg/support/sets"
)

const (
	// KernelNamePlaceholder is replaced by the kernel name when the kernel is defined.
	KernelNamePlaceholder = "KERNEL_NAME"

	// EpiloguePlaceholder is replaced by the EVT declarations of the fused epilogues.
	EpiloguePlaceholder = "#EPILOGUE_DECLARATION#"
)

// RenderFn renders the source of a template kernel. The source contains KernelNamePlaceholder
// and, for templates supporting epilogue fusion, EpiloguePlaceholder.
type RenderFn func() (string, error)

// TemplateBuffer is a buffer computed by a CUDA template (e.g. a CUTLASS GEMM) instead of
// by an inner function.
type TemplateBuffer interface {
	loopir.Buffer

	// MakeKernelRender creates the kernel object and the function to render its source.
	MakeKernelRender() (*TemplateKernel, RenderFn)
}

// TemplateKernel is a kernel instantiated from a template: it knows its arguments and how
// to call itself.
type TemplateKernel struct {
	templateName   string
	inputs         []string
	removedBuffers sets.Set[string]
}

// NewTemplateKernel creates a kernel for the template, reading the named input buffers.
func NewTemplateKernel(templateName string, inputs ...string) *TemplateKernel {
	return &TemplateKernel{
		templateName:   templateName,
		inputs:         inputs,
		removedBuffers: sets.Make[string](),
	}
}

// TemplateName returns the name of the template the kernel was instantiated from.
func (k *TemplateKernel) TemplateName() string { return k.templateName }

// RemoveBuffer marks the buffer as not needed anymore: the kernel keeps it on-chip, so it
// is never allocated.
func (k *TemplateKernel) RemoveBuffer(name string) {
	k.removedBuffers.Insert(name)
}

// RemovedBuffers returns the buffers removed by the kernel.
func (k *TemplateKernel) RemovedBuffers() sets.Set[string] { return k.removedBuffers }

// CallKernel writes to the program the call to the kernel named kernelName, writing its
// result to output.
func (k *TemplateKernel) CallKernel(session *codegen.Session, kernelName string, output loopir.Buffer) {
	args := append(append([]string{}, k.inputs...), output.Name(), "stream0")
	session.WriteLine(fmt.Sprintf("%s(%s);", kernelName, strings.Join(args, ", ")))
}
