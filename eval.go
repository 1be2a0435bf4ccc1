package spath

import (
	"fmt"
	"iter"
)

type evaluator struct {
	source   string
	root     Value
	maxDepth int
}

func (e *evaluator) evalError(sp span, format string, args ...any) error {
	return &EvalError{
		Source:  e.source,
		Start:   sp.start,
		End:     sp.end,
		Message: fmt.Sprintf(format, args...),
	}
}

// evalQuery runs a query from its anchor: the document root for '$',
// the given current node for '@'.
func (e *evaluator) evalQuery(q subQuery, current Value) (NodeList, error) {
	start := current
	if q.root {
		start = e.root
	}
	nodes := NodeList{{Value: start}}
	for _, seg := range q.segments {
		next, err := e.evalSegment(seg, nodes)
		if err != nil {
			return nil, err
		}
		nodes = next
	}
	return nodes, nil
}

func (e *evaluator) evalSegment(seg segment, input NodeList) (NodeList, error) {
	var out NodeList
	for _, node := range input {
		if seg.descendant {
			if err := e.descend(seg.selectors, node, 0, &out); err != nil {
				return nil, err
			}
			continue
		}
		if err := e.applySelectors(seg.selectors, node, &out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// descend visits node and its descendants in document pre-order, applying
// the selector union at each visited node.
func (e *evaluator) descend(selectors []selector, node Node, depth int, out *NodeList) error {
	if e.maxDepth > 0 && depth > e.maxDepth {
		return e.evalError(span{}, "descendant traversal exceeded maximum depth %d", e.maxDepth)
	}
	if err := e.applySelectors(selectors, node, out); err != nil {
		return err
	}
	for child := range childNodes(node) {
		if err := e.descend(selectors, child, depth+1, out); err != nil {
			return err
		}
	}
	return nil
}

// childNodes yields the immediate children of a node in document order.
// Scalars have none.
func childNodes(node Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		switch node.Value.Kind() {
		case KindArray:
			a, _ := node.Value.AsArray()
			for i, v := range a.All() {
				if !yield(Node{Value: v, Path: node.Path.child(Index(int64(i)))}) {
					return
				}
			}
		case KindObject:
			o, _ := node.Value.AsObject()
			for k, v := range o.All() {
				if !yield(Node{Value: v, Path: node.Path.child(Name(k))}) {
					return
				}
			}
		}
	}
}

func (e *evaluator) applySelectors(selectors []selector, node Node, out *NodeList) error {
	for _, sel := range selectors {
		switch s := sel.(type) {
		case *nameSelector:
			if o, ok := node.Value.AsObject(); ok {
				if v, ok := o.Get(s.name); ok {
					*out = append(*out, Node{Value: v, Path: node.Path.child(Name(s.name))})
				}
			}
		case *indexSelector:
			if a, ok := node.Value.AsArray(); ok {
				idx := s.index
				if idx < 0 {
					idx += int64(a.Len())
				}
				if idx >= 0 && idx < int64(a.Len()) {
					if v, ok := a.At(int(idx)); ok {
						*out = append(*out, Node{Value: v, Path: node.Path.child(Index(idx))})
					}
				}
			}
		case *wildcardSelector:
			for child := range childNodes(node) {
				*out = append(*out, child)
			}
		case *sliceSelector:
			if a, ok := node.Value.AsArray(); ok {
				e.applySlice(s, a, node, out)
			}
		case *filterSelector:
			for child := range childNodes(node) {
				ok, err := s.expr.evalLogical(e, child.Value)
				if err != nil {
					return err
				}
				if ok {
					*out = append(*out, child)
				}
			}
		}
	}
	return nil
}

// applySlice selects array elements per the RFC 9535 slice semantics:
// bounds are normalized against the length, then clamped so that any
// start/end/step combination yields a valid, possibly empty, range.
func (e *evaluator) applySlice(s *sliceSelector, a Array, node Node, out *NodeList) {
	length := int64(a.Len())
	step := int64(1)
	if s.step != nil {
		step = *s.step
	}

	var start, end int64
	if step > 0 {
		start, end = 0, length
	} else {
		start, end = length-1, -length-1
	}
	if s.start != nil {
		start = *s.start
	}
	if s.end != nil {
		end = *s.end
	}

	lower, upper := sliceBounds(start, end, step, length)
	if step > 0 {
		for i := lower; i < upper; i += step {
			if v, ok := a.At(int(i)); ok {
				*out = append(*out, Node{Value: v, Path: node.Path.child(Index(i))})
			}
		}
	} else {
		for i := upper; i > lower; i += step {
			if v, ok := a.At(int(i)); ok {
				*out = append(*out, Node{Value: v, Path: node.Path.child(Index(i))})
			}
		}
	}
}

func sliceBounds(start, end, step, length int64) (int64, int64) {
	if start < 0 {
		start += length
	}
	if end < 0 {
		end += length
	}
	if step >= 0 {
		return clamp(start, 0, length), clamp(end, 0, length)
	}
	return clamp(end, -1, length-1), clamp(start, -1, length-1)
}

func clamp(v, lo, hi int64) int64 {
	return max(lo, min(v, hi))
}
