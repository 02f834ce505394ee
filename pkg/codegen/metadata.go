// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package codegen

import (
	"crypto/sha256"
	"encoding/base32"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/gomlx/evtgen/pkg/core/loopir"
	"github.com/gomlx/evtgen/pkg/support/sets"
)

// ScheduledNode is what kernel naming and provenance need to know about a scheduled node.
type ScheduledNode interface {
	Name() string
	Origins() []loopir.Origin
}

// CodeHash returns a content hash of the source code: "c" followed by 51 lower-case
// base32 characters of its SHA-256.
func CodeHash(code string) string {
	sum := sha256.Sum256([]byte(code))
	return "c" + strings.ToLower(base32.StdEncoding.EncodeToString(sum[:]))[:51]
}

// KernelPath returns where a kernel with the given hash is stored under cacheDir:
// "<cacheDir>/<hash[1:3]>/<hash>.<ext>".
func KernelPath(cacheDir, hash, ext string) string {
	return path.Join(cacheDir, hash[1:3], hash+"."+ext)
}

// opName returns the op name without its namespace: "aten.add" -> "add".
func opName(op string) string {
	if idx := strings.LastIndex(op, "."); idx >= 0 {
		return op[idx+1:]
	}
	return op
}

// FusedKernelName returns a human-readable name fragment for a kernel fusing the given
// nodes: "fused_" followed by the sorted, unique, op names of their origins. E.g.:
// "fused_add_mm". It returns "" if the nodes have no origins.
func FusedKernelName[N ScheduledNode](schedule []N) string {
	ops := sets.Make[string]()
	for _, node := range schedule {
		for _, origin := range node.Origins() {
			ops.Insert(opName(origin.Op))
		}
	}
	if len(ops) == 0 {
		return ""
	}
	return strings.Join(append([]string{"fused"}, sets.Sorted(ops)...), "_")
}

// KernelMetadata returns comment lines describing where the nodes of a kernel came from:
// origins is a one-line summary of the source nodes and ops, and detailedOrigins lists
// each source node in schedule order. Both are empty if there are no origins.
func KernelMetadata[N ScheduledNode](schedule []N) (origins, detailedOrigins string) {
	names := sets.Make[string]()
	ops := sets.Make[string]()
	var detailed []string
	for _, node := range schedule {
		for _, origin := range node.Origins() {
			if names.Has(origin.Name) {
				continue
			}
			names.Insert(origin.Name)
			ops.Insert(origin.Op)
			detailed = append(detailed, fmt.Sprintf("%s   %%%s : %s", CommentPrefix, origin.Name, origin.Op))
		}
	}
	if len(names) == 0 {
		return "", ""
	}
	origins = fmt.Sprintf("%s Source Nodes: [%s], Original ops: [%s]", CommentPrefix,
		strings.Join(sets.Sorted(names), ", "), strings.Join(sets.Sorted(ops), ", "))
	detailedOrigins = strings.Join(slices.Insert(detailed, 0, CommentPrefix+" Graph fragment:"), "\n")
	return
}
