// Package tree builds the treemap node hierarchy from a flat stream of
// analyzed file paths. File nodes arrive in walk order; ancestor directory
// nodes are materialized lazily the first time any file references them,
// which makes construction idempotent and independent of traversal order.
package tree

import (
	"strings"
	"sync"

	"github.com/cyclomap/cyclo/internal/errors"
)

// Node is one treemap cell. Directory nodes are synthetic: zero complexity
// and zero lines, present only to give their children a parent.
type Node struct {
	Label      string
	Parent     string
	Complexity float64
	Lines      int
}

// Arrays is the final output record set: four equal-length parallel
// sequences plus the mean complexity used as the color-scale midpoint.
type Arrays struct {
	Lines          []int
	Complexity     []float64
	Labels         []string
	Parents        []string
	MeanComplexity float64
}

// Len returns the number of nodes.
func (a *Arrays) Len() int {
	return len(a.Labels)
}

// NodeSet accumulates nodes for one analysis run. Labels are unique; the
// four backing slices always have equal length. Appends are the only
// mutation, guarded by a mutex so parallel per-file analysis can share one
// set.
type NodeSet struct {
	mu      sync.Mutex
	lines   []int
	ccs     []float64
	labels  []string
	parents []string
	seen    map[string]struct{}
}

// NewNodeSet creates an empty node set.
func NewNodeSet() *NodeSet {
	return &NodeSet{seen: make(map[string]struct{})}
}

// AddFile records one analyzed file and materializes any missing ancestor
// directory nodes. rel is the slash-separated path including the walk
// root's own name ("proj/sub/b.py"); every proper prefix of it becomes a
// directory node the first time it is seen, walking upward until the
// top-level component, whose parent is the empty string.
func (ns *NodeSet) AddFile(rel string, complexity float64, lines int) {
	components := strings.Split(rel, "/")

	ns.mu.Lock()
	defer ns.mu.Unlock()

	ns.append(rel, parentOf(components), complexity, lines)

	for i := len(components) - 1; i >= 1; i-- {
		label := strings.Join(components[:i], "/")
		if _, ok := ns.seen[label]; ok {
			continue
		}
		ns.append(label, parentOf(components[:i]), 0, 0)
	}
}

// append assumes ns.mu is held and the label is not present.
func (ns *NodeSet) append(label, parent string, complexity float64, lines int) {
	ns.seen[label] = struct{}{}
	ns.labels = append(ns.labels, label)
	ns.parents = append(ns.parents, parent)
	ns.ccs = append(ns.ccs, complexity)
	ns.lines = append(ns.lines, lines)
}

// Contains reports whether a label is already in the set.
func (ns *NodeSet) Contains(label string) bool {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	_, ok := ns.seen[label]
	return ok
}

// Len returns the current node count.
func (ns *NodeSet) Len() int {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	return len(ns.labels)
}

// Nodes returns a snapshot of the set in insertion order.
func (ns *NodeSet) Nodes() []Node {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	nodes := make([]Node, len(ns.labels))
	for i := range ns.labels {
		nodes[i] = Node{
			Label:      ns.labels[i],
			Parent:     ns.parents[i],
			Complexity: ns.ccs[i],
			Lines:      ns.lines[i],
		}
	}
	return nodes
}

// Finalize validates the cross-array invariants and produces the output
// record set. A length mismatch is a builder defect; an empty set means
// there is nothing to visualize. Both abort the run.
func (ns *NodeSet) Finalize() (*Arrays, error) {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	if len(ns.lines) != len(ns.labels) {
		return nil, errors.NewConsistencyError("lines (%d) and labels (%d) length mismatch", len(ns.lines), len(ns.labels))
	}
	if len(ns.labels) != len(ns.parents) {
		return nil, errors.NewConsistencyError("labels (%d) and parents (%d) length mismatch", len(ns.labels), len(ns.parents))
	}
	if len(ns.parents) != len(ns.ccs) {
		return nil, errors.NewConsistencyError("parents (%d) and complexity (%d) length mismatch", len(ns.parents), len(ns.ccs))
	}
	if len(ns.labels) == 0 {
		return nil, errors.NewConsistencyError("empty node set, nothing to visualize")
	}

	sum := 0.0
	for _, cc := range ns.ccs {
		sum += cc
	}

	a := &Arrays{
		Lines:          make([]int, len(ns.lines)),
		Complexity:     make([]float64, len(ns.ccs)),
		Labels:         make([]string, len(ns.labels)),
		Parents:        make([]string, len(ns.parents)),
		MeanComplexity: sum / float64(len(ns.ccs)),
	}
	copy(a.Lines, ns.lines)
	copy(a.Complexity, ns.ccs)
	copy(a.Labels, ns.labels)
	copy(a.Parents, ns.parents)
	return a, nil
}

// parentOf joins all but the last component, or returns "" at the top.
func parentOf(components []string) string {
	if len(components) <= 1 {
		return ""
	}
	return strings.Join(components[:len(components)-1], "/")
}
