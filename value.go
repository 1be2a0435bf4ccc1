package spath

import "iter"

// Kind identifies the shape of a value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is the read-only contract a document node must satisfy to be
// queried. Implementations report their kind and expose the corresponding
// capability; the getters return false when the value is of another kind.
//
// Numbers carry float64 semantics. Integer-valued documents must present
// their numbers as float64; there is no separate integer kind.
type Value interface {
	Kind() Kind
	AsBool() (bool, bool)
	AsNumber() (float64, bool)
	AsString() (string, bool)
	AsArray() (Array, bool)
	AsObject() (Object, bool)
}

// Array is an ordered sequence of values.
type Array interface {
	Len() int

	// At returns the element at a non-negative index.
	At(i int) (Value, bool)

	// All iterates elements in order.
	All() iter.Seq2[int, Value]
}

// Object is a collection of named members that preserves insertion order.
type Object interface {
	Len() int
	Get(key string) (Value, bool)
	Contains(key string) bool

	// All iterates members in insertion order.
	All() iter.Seq2[string, Value]
}

// literal adapts a filter literal to the Value contract so comparisons can
// treat literals and document nodes uniformly.
type literal struct {
	kind Kind
	b    bool
	num  float64
	str  string
}

func litNull() Value            { return &literal{kind: KindNull} }
func litBool(v bool) Value      { return &literal{kind: KindBool, b: v} }
func litNumber(v float64) Value { return &literal{kind: KindNumber, num: v} }
func litString(v string) Value  { return &literal{kind: KindString, str: v} }

func (l *literal) Kind() Kind { return l.kind }

func (l *literal) AsBool() (bool, bool) {
	return l.b, l.kind == KindBool
}

func (l *literal) AsNumber() (float64, bool) {
	return l.num, l.kind == KindNumber
}

func (l *literal) AsString() (string, bool) {
	return l.str, l.kind == KindString
}

func (l *literal) AsArray() (Array, bool)   { return nil, false }
func (l *literal) AsObject() (Object, bool) { return nil, false }
