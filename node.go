package spath

import (
	"fmt"
	"iter"
	"slices"
)

// Node is one query result: a value and the normalized path locating it in
// the queried document. The value is borrowed from the caller's tree, not
// copied.
type Node struct {
	Value Value
	Path  NormalizedPath
}

// NodeList is an ordered list of query results. Queries with overlapping
// selectors may legitimately select the same node more than once; the
// engine never deduplicates.
type NodeList []Node

func (l NodeList) Len() int { return len(l) }

// All iterates the nodes in result order.
func (l NodeList) All() iter.Seq[Node] {
	return slices.Values(l)
}

// Values returns the selected values in result order.
func (l NodeList) Values() []Value {
	out := make([]Value, len(l))
	for i, n := range l {
		out[i] = n.Value
	}
	return out
}

// Paths returns the normalized paths in result order.
func (l NodeList) Paths() []NormalizedPath {
	out := make([]NormalizedPath, len(l))
	for i, n := range l {
		out[i] = n.Path
	}
	return out
}

// First returns the first node, if any.
func (l NodeList) First() (Node, bool) {
	if len(l) == 0 {
		return Node{}, false
	}
	return l[0], true
}

// ExactlyOne returns the single node of a one-element list and fails with
// ErrExactlyOne otherwise.
func (l NodeList) ExactlyOne() (Node, error) {
	if len(l) != 1 {
		return Node{}, fmt.Errorf("%w: got %d", ErrExactlyOne, len(l))
	}
	return l[0], nil
}

// AtMostOne returns the single node if present. An empty list returns
// ok=false; more than one node fails with ErrExactlyOne.
func (l NodeList) AtMostOne() (Node, bool, error) {
	switch len(l) {
	case 0:
		return Node{}, false, nil
	case 1:
		return l[0], true, nil
	default:
		return Node{}, false, fmt.Errorf("%w: got %d", ErrExactlyOne, len(l))
	}
}

// Dedup returns a new list sorted by path with duplicate paths removed.
// The receiver is left unchanged.
func (l NodeList) Dedup() NodeList {
	out := slices.Clone(l)
	slices.SortStableFunc(out, func(a, b Node) int {
		return a.Path.Compare(b.Path)
	})
	return slices.CompactFunc(out, func(a, b Node) bool {
		return a.Path.Compare(b.Path) == 0
	})
}
