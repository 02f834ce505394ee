// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package scheduler keeps track of the nodes of a program being generated: their
// iteration groups, which ones already ran, and when their buffers can be freed.
//
// The decision of which nodes are fused together is taken before: the code generators
// receive the already-formed schedules, mark their nodes as run and ask the Scheduler to
// free the buffers no longer needed.
package scheduler

import (
	"fmt"
	"slices"

	"github.com/gomlx/evtgen/pkg/codegen"
	"github.com/gomlx/evtgen/pkg/core/loopir"
	"github.com/gomlx/evtgen/pkg/support/sets"
	"github.com/gomlx/exceptions"
	"k8s.io/klog/v2"
)

// Group is the iteration space of a node: the number of output elements (Numel) and the
// number of elements reduced per output element (RNumel, 1 for point-wise nodes).
type Group struct {
	Numel, RNumel int
}

// String implements fmt.Stringer.
func (g Group) String() string {
	return fmt.Sprintf("(%d, %d)", g.Numel, g.RNumel)
}

// Sized is implemented by buffers that know their iteration space.
type Sized interface {
	Numel() int
	ReductionNumel() int
}

// Node is a node of the schedule.
type Node interface {
	// Name of the node, the same as the name of its buffer.
	Name() string

	// Group returns the iteration space of the node.
	Group() Group

	// Buffer produced by the node.
	Buffer() loopir.Buffer

	// Origins of the node's buffer.
	Origins() []loopir.Origin

	// MarkRun marks the node as executed: from here on its buffer is available and its
	// inputs may be freed once all their other users have run.
	MarkRun()

	// IsRun returns whether MarkRun was called.
	IsRun() bool
}

// SchedulerNode is the Node implementation of the Scheduler.
type SchedulerNode struct {
	buffer loopir.Buffer
	group  Group
	isRun  bool
}

var _ Node = (*SchedulerNode)(nil)

// Name implements Node.
func (n *SchedulerNode) Name() string { return n.buffer.Name() }

// Group implements Node.
func (n *SchedulerNode) Group() Group { return n.group }

// Buffer implements Node.
func (n *SchedulerNode) Buffer() loopir.Buffer { return n.buffer }

// Origins implements Node.
func (n *SchedulerNode) Origins() []loopir.Origin { return n.buffer.Origins() }

// MarkRun implements Node.
func (n *SchedulerNode) MarkRun() {
	if n.isRun {
		klog.Warningf("scheduler: node %q marked as run more than once", n.Name())
	}
	n.isRun = true
}

// IsRun implements Node.
func (n *SchedulerNode) IsRun() bool { return n.isRun }

// String implements fmt.Stringer.
func (n *SchedulerNode) String() string {
	return fmt.Sprintf("SchedulerNode(%s, group=%s)", n.Name(), n.group)
}

// Scheduler holds the nodes of one program, in topological order.
type Scheduler struct {
	session *codegen.Session
	nodes   []*SchedulerNode
	byName  map[string]*SchedulerNode

	// users maps a buffer name to the nodes reading it.
	users map[string][]*SchedulerNode

	// outputs are the buffers returned by the program: they are never freed.
	outputs sets.Set[string]
}

// New creates a Scheduler writing to session. outputs are the names of the buffers returned
// by the program.
func New(session *codegen.Session, outputs ...string) *Scheduler {
	return &Scheduler{
		session: session,
		byName:  make(map[string]*SchedulerNode),
		users:   make(map[string][]*SchedulerNode),
		outputs: sets.MakeWith(outputs...),
	}
}

// AddNode appends a node computing the buffer. Nodes must be added in topological order,
// and buffer names must be unique.
//
// The iteration group is taken from the buffer if it implements Sized, otherwise it is
// (1, 1).
func (s *Scheduler) AddNode(buffer loopir.Buffer) *SchedulerNode {
	name := buffer.Name()
	if _, found := s.byName[name]; found {
		exceptions.Panicf("scheduler.AddNode(%q): a node with this name already exists", name)
	}
	node := &SchedulerNode{buffer: buffer, group: Group{Numel: 1, RNumel: 1}}
	if sized, ok := buffer.(Sized); ok {
		node.group = Group{Numel: sized.Numel(), RNumel: sized.ReductionNumel()}
	}
	s.nodes = append(s.nodes, node)
	s.byName[name] = node
	for _, input := range buffer.ReadNames() {
		s.users[input] = append(s.users[input], node)
	}
	return node
}

// Nodes returns the nodes in the order they were added.
func (s *Scheduler) Nodes() []*SchedulerNode { return s.nodes }

// Node returns the node with the given name, or nil if there isn't one.
func (s *Scheduler) Node(name string) *SchedulerNode { return s.byName[name] }

// Users returns the names of the nodes reading the named buffer.
func (s *Scheduler) Users(name string) []string {
	users := make([]string, 0, len(s.users[name]))
	for _, user := range s.users[name] {
		users = append(users, user.Name())
	}
	return users
}

// FreeBuffers releases the buffers of nodes that already ran and whose users all ran,
// except the program outputs. Buffers removed by kernels were never allocated: they are
// marked as freed without writing anything to the program.
func (s *Scheduler) FreeBuffers() {
	for _, node := range s.nodes {
		name := node.Name()
		if !node.isRun || s.outputs.Has(name) || s.session.FreedBuffers.Has(name) {
			continue
		}
		if !slices.ContainsFunc(s.users[name], func(user *SchedulerNode) bool { return !user.isRun }) {
			s.session.FreedBuffers.Insert(name)
			if s.session.RemovedBuffers.Has(name) {
				continue
			}
			s.session.WriteLine(fmt.Sprintf("%s.reset();", name))
			klog.V(2).Infof("scheduler: freed buffer %q", name)
		}
	}
}
