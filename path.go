package spath

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// PathElement is a single step of a normalized path: either an object
// member name or an array index.
type PathElement struct {
	name   string
	index  int64
	isName bool
}

// Name returns a path element addressing an object member.
func Name(name string) PathElement {
	return PathElement{name: name, isName: true}
}

// Index returns a path element addressing an array element.
func Index(index int64) PathElement {
	return PathElement{index: index}
}

func (e PathElement) IsName() bool  { return e.isName }
func (e PathElement) IsIndex() bool { return !e.isName }

// AsName returns the member name when the element addresses one.
func (e PathElement) AsName() (string, bool) {
	return e.name, e.isName
}

// AsIndex returns the array index when the element addresses one.
func (e PathElement) AsIndex() (int64, bool) {
	return e.index, !e.isName
}

// Compare orders path elements: indices before names, indices numerically,
// names lexicographically by byte value.
func (e PathElement) Compare(other PathElement) int {
	switch {
	case !e.isName && !other.isName:
		return cmp.Compare(e.index, other.index)
	case !e.isName:
		return -1
	case !other.isName:
		return 1
	default:
		return strings.Compare(e.name, other.name)
	}
}

// String renders the element in its bracketed canonical form: ['name'] with
// the RFC 9535 escape table, or [index].
func (e PathElement) String() string {
	if e.isName {
		return "[" + quoteName(e.name) + "]"
	}
	return "[" + strconv.FormatInt(e.index, 10) + "]"
}

// NormalizedPath is the unique location of a node in a document, one
// element per level from the root.
type NormalizedPath []PathElement

// String renders the canonical form, e.g. $['store']['book'][0].
func (p NormalizedPath) String() string {
	var b strings.Builder
	b.WriteByte('$')
	for _, e := range p {
		b.WriteString(e.String())
	}
	return b.String()
}

// Compare orders paths element-wise, shorter prefixes first.
func (p NormalizedPath) Compare(other NormalizedPath) int {
	for i := range p {
		if i >= len(other) {
			return 1
		}
		if c := p[i].Compare(other[i]); c != 0 {
			return c
		}
	}
	if len(p) < len(other) {
		return -1
	}
	return 0
}

// child returns a new path extended by one element. The result never
// aliases the receiver's backing array, so sibling paths built from the
// same parent stay independent.
func (p NormalizedPath) child(e PathElement) NormalizedPath {
	next := make(NormalizedPath, len(p)+1)
	copy(next, p)
	next[len(p)] = e
	return next
}

// quoteName renders a member name as a single-quoted string literal with
// the RFC 9535 escape set.
func quoteName(name string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range name {
		switch r {
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('\'')
	return b.String()
}
