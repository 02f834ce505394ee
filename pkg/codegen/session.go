// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package codegen holds the state shared by the kernel code generators during the
// generation of one compiled program: the Session (kernel-definition cache, kernel name
// suffix counter, buffer bookkeeping and the wrapper program being written), its Config,
// and the helpers to name kernels and describe their provenance.
//
// A Session is not safe for concurrent use: code generation of one program is strictly
// sequential.
package codegen

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/evtgen/pkg/support/sets"
	"github.com/google/uuid"
	"k8s.io/klog/v2"
)

// CommentPrefix starts every comment line of the wrapper program.
const CommentPrefix = "//"

// KernelDefinition is a kernel registered with Session.DefineKernel.
type KernelDefinition struct {
	// Name of the kernel, unique within the Session.
	Name string

	// Code is the kernel definition statement, including the kernel source.
	Code string

	// Source is the kernel source, with the kernel name already substituted. It may be
	// empty if the kernel was defined with DefineKernel.
	Source string

	// Path where the kernel source is stored, under Config.CacheDir. It may be empty.
	Path string

	// Metadata is a comment block with the kernel path and provenance.
	Metadata string
}

// Session is the state of the generation of one program.
type Session struct {
	config Config
	id     string

	// srcToKernel caches the source of each kernel defined to its name.
	srcToKernel  map[string]string
	kernelSuffix int

	// RemovedBuffers are buffers that kernels made unnecessary (e.g. an intermediate
	// result kept in registers by a fused kernel): they are never allocated.
	RemovedBuffers sets.Set[string]

	// FreedBuffers are buffers already released by the program.
	FreedBuffers sets.Set[string]

	kernels []KernelDefinition
	lines   []string
}

// NewSession creates a new Session with an empty kernel cache.
func NewSession(config Config) *Session {
	return &Session{
		config:         config,
		id:             uuid.NewString(),
		srcToKernel:    make(map[string]string),
		RemovedBuffers: sets.Make[string](),
		FreedBuffers:   sets.Make[string](),
	}
}

// Config returns the configuration of the session.
func (s *Session) Config() Config { return s.config }

// ID is a unique identifier of the session, used in logs and in the program header.
func (s *Session) ID() string { return s.id }

// LookupKernel returns the name of the kernel previously recorded for the exact source src.
func (s *Session) LookupKernel(src string) (name string, found bool) {
	name, found = s.srcToKernel[src]
	return
}

// RecordKernel records name as the kernel for source src.
func (s *Session) RecordKernel(src, name string) {
	s.srcToKernel[src] = name
}

// NumCachedKernels returns the number of distinct kernel sources recorded.
func (s *Session) NumCachedKernels() int { return len(s.srcToKernel) }

// NextKernelSuffix returns the next unique kernel name suffix ("0", "1", ...).
func (s *Session) NextKernelSuffix() string {
	suffix := fmt.Sprintf("%d", s.kernelSuffix)
	s.kernelSuffix++
	return suffix
}

// SetNextKernelSuffix sets the value returned by the next call to NextKernelSuffix.
func (s *Session) SetNextKernelSuffix(next int) {
	s.kernelSuffix = next
}

// DefineKernel registers the kernel definition in the program.
func (s *Session) DefineKernel(name, code, metadata string) {
	s.RegisterKernel(KernelDefinition{Name: name, Code: code, Metadata: metadata})
}

// RegisterKernel registers the kernel definition in the program, along with its source and path.
func (s *Session) RegisterKernel(kernel KernelDefinition) {
	s.kernels = append(s.kernels, kernel)
	klog.V(1).Infof("session %s: defined kernel %q (%s of code)", s.id, kernel.Name, humanize.Bytes(uint64(len(kernel.Code))))
}

// Kernels returns the kernels defined so far, in order of definition.
func (s *Session) Kernels() []KernelDefinition { return s.kernels }

// WriteLine appends a statement to the body of the program.
func (s *Session) WriteLine(line string) {
	s.lines = append(s.lines, line)
}

// WriteComment appends a comment block to the body of the program. Lines not yet
// prefixed with CommentPrefix are prefixed, empty lines are dropped.
func (s *Session) WriteComment(comment string) {
	for _, line := range strings.Split(comment, "\n") {
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, CommentPrefix) {
			line = CommentPrefix + " " + line
		}
		s.WriteLine(line)
	}
}

// Lines returns the body of the program written so far.
func (s *Session) Lines() []string { return s.lines }

// Program returns the full program: a header, the kernel definitions (each preceded by its
// metadata) and the body.
func (s *Session) Program() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s Generated by evtgen, session %s\n", CommentPrefix, s.id)
	for _, kernel := range s.kernels {
		sb.WriteString("\n")
		if kernel.Metadata != "" {
			sb.WriteString(kernel.Metadata)
			sb.WriteString("\n")
		}
		sb.WriteString(kernel.Code)
		if !strings.HasSuffix(kernel.Code, "\n") {
			sb.WriteString("\n")
		}
	}
	if len(s.lines) > 0 {
		sb.WriteString("\n")
		sb.WriteString(strings.Join(s.lines, "\n"))
		sb.WriteString("\n")
	}
	return sb.String()
}
