// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package cuda generates the CUDA kernels of template nodes (e.g. CUTLASS GEMMs), fusing
// their point-wise epilogues as CUTLASS Epilogue Visitor Trees.
//
// Scheduling.CodegenTemplate renders the template, lowers each epilogue with package evt,
// splices the declarations into the template source and registers the kernel through
// Scheduling.DefineKernel, which deduplicates identical sources within the Session.
package cuda

import (
	"fmt"
	"strings"

	"github.com/gomlx/evtgen/pkg/codegen"
	"github.com/gomlx/evtgen/pkg/codegen/cuda/evt"
	"github.com/gomlx/evtgen/pkg/core/loopir"
	"github.com/gomlx/evtgen/pkg/scheduler"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// KernelPrefix starts the name of every CUDA kernel.
const KernelPrefix = "cuda"

// Scheduling generates the CUDA template kernels of one program.
type Scheduling struct {
	session   *codegen.Session
	scheduler *scheduler.Scheduler
}

// NewScheduling creates a Scheduling writing to session, with the buffer liveness tracked
// by sched.
func NewScheduling(session *codegen.Session, sched *scheduler.Scheduler) *Scheduling {
	return &Scheduling{session: session, scheduler: sched}
}

// Session returns the Session the kernels are written to.
func (s *Scheduling) Session() *codegen.Session { return s.session }

// DefineKernel returns the name of the kernel for the source src, registering it in the
// Session the first time the source is seen.
//
// The name is "cuda_<suffix>", or "cuda_fused_<ops>_<suffix>" with Config.DescriptiveNames.
// Every occurrence of KernelNamePlaceholder in src is replaced by the name before
// registration, but the cache is keyed by the source before replacement.
func (s *Scheduling) DefineKernel(src string, schedule []scheduler.Node) string {
	if name, found := s.session.LookupKernel(src); found {
		klog.V(1).Infof("cuda: kernel source already defined as %q", name)
		return name
	}

	parts := []string{KernelPrefix}
	if s.session.Config().DescriptiveNames {
		if fused := codegen.FusedKernelName(schedule); fused != "" {
			parts = append(parts, fused)
		}
	}
	parts = append(parts, s.session.NextKernelSuffix())
	name := strings.Join(parts, "_")
	s.session.RecordKernel(src, name)

	src = strings.ReplaceAll(src, KernelNamePlaceholder, name)
	kernelPath := codegen.KernelPath(s.session.Config().CacheDir, codegen.CodeHash(src), "cu")
	metadata := []string{fmt.Sprintf("%s kernel path: %s", codegen.CommentPrefix, kernelPath)}
	origins, detailedOrigins := codegen.KernelMetadata(schedule)
	if origins != "" {
		metadata = append(metadata, origins, detailedOrigins)
	}
	s.session.RegisterKernel(codegen.KernelDefinition{
		Name:     name,
		Code:     compileWrapper(name, src),
		Metadata: strings.Join(metadata, "\n"),
		Source:   src,
		Path:     kernelPath,
	})
	return name
}

// compileWrapper returns the statement compiling the kernel source at program load time.
func compileWrapper(name, src string) string {
	return fmt.Sprintf("auto %s = async_compile.cuda(R\"CUTLASS(\n%s\n)CUTLASS\", \"so\");",
		name, strings.TrimSpace(src))
}

// CodegenTemplate generates the kernel of template fused with its epilogues, and writes
// the call to it in the program.
//
// It panics if the template node is a reduction or is not a TemplateBuffer. If an epilogue
// can't be lowered (see evt.ErrNotImplemented), or the rendered template has no
// EpiloguePlaceholder to receive the epilogues, it returns an error and no kernel is defined.
func (s *Scheduling) CodegenTemplate(template scheduler.Node, epilogues []scheduler.Node) error {
	if group := template.Group(); group.RNumel != 1 {
		exceptions.Panicf("cuda.CodegenTemplate(%q): template nodes can't have a reduction, got group %s",
			template.Name(), group)
	}
	templateBuffer, ok := template.Buffer().(TemplateBuffer)
	if !ok {
		exceptions.Panicf("cuda.CodegenTemplate(%q): buffer of type %T is not a cuda.TemplateBuffer",
			template.Name(), template.Buffer())
	}
	kernel, render := templateBuffer.MakeKernelRender()

	template.MarkRun()
	for _, epilogue := range epilogues {
		epilogue.MarkRun()
	}

	src, err := render()
	if err != nil {
		return errors.WithMessagef(err, "rendering template %q", template.Name())
	}

	blocks := make([]string, 0, len(epilogues))
	for _, epilogue := range epilogues {
		computed, ok := epilogue.Buffer().(*loopir.ComputedBuffer)
		if !ok {
			return errors.Wrapf(evt.ErrNotImplemented, "epilogue %q of template %q is a %T",
				epilogue.Name(), template.Name(), epilogue.Buffer())
		}
		block, err := evt.LowerNode(computed, template.Name())
		if err != nil {
			return errors.WithMessagef(err, "fusing epilogues of template %q", template.Name())
		}
		blocks = append(blocks, block)
	}
	if len(blocks) > 0 && !strings.Contains(src, EpiloguePlaceholder) {
		return errors.Errorf("template %q has no %s placeholder to fuse its %d epilogue(s) into",
			template.Name(), EpiloguePlaceholder, len(blocks))
	}
	src = strings.Replace(src, EpiloguePlaceholder, strings.Join(blocks, "\n"), 1)

	schedule := append([]scheduler.Node{template}, epilogues...)
	name := s.DefineKernel(src, schedule)
	origins, _ := codegen.KernelMetadata(schedule)
	s.session.WriteComment(origins)
	kernel.CallKernel(s.session, name, templateBuffer)

	s.session.RemovedBuffers.Union(kernel.RemovedBuffers())
	s.scheduler.FreeBuffers()
	return nil
}
