// Package json adapts JSON documents to the spath value model. Unlike a
// plain map[string]any, its document type preserves object member order,
// so wildcard and descendant queries visit members in the order the
// document wrote them.
package json

import (
	"bytes"
	"fmt"
	"iter"
	"strconv"

	gojson "encoding/json"

	"github.com/jacoelho/spath"
)

// Value is one node of a JSON document tree.
type Value struct {
	kind    spath.Kind
	b       bool
	num     float64
	str     string
	arr     []*Value
	members []member
	index   map[string]int
}

type member struct {
	key   string
	value *Value
}

// Null returns the JSON null value.
func Null() *Value { return &Value{kind: spath.KindNull} }

// Bool returns a JSON boolean.
func Bool(v bool) *Value { return &Value{kind: spath.KindBool, b: v} }

// Number returns a JSON number.
func Number(v float64) *Value { return &Value{kind: spath.KindNumber, num: v} }

// String returns a JSON string.
func String(v string) *Value { return &Value{kind: spath.KindString, str: v} }

// Array returns a JSON array of the given elements.
func Array(items ...*Value) *Value {
	return &Value{kind: spath.KindArray, arr: items}
}

// Object returns an empty JSON object; populate it with Set.
func Object() *Value {
	return &Value{kind: spath.KindObject, index: make(map[string]int)}
}

// Append adds elements to an array and returns the receiver for chaining.
func (v *Value) Append(items ...*Value) *Value {
	v.arr = append(v.arr, items...)
	return v
}

// Set adds or replaces an object member and returns the receiver for
// chaining. A new key goes to the end of the member order; an existing key
// keeps its position.
func (v *Value) Set(key string, item *Value) *Value {
	if i, ok := v.index[key]; ok {
		v.members[i].value = item
		return v
	}
	v.index[key] = len(v.members)
	v.members = append(v.members, member{key: key, value: item})
	return v
}

func (v *Value) Kind() spath.Kind { return v.kind }

func (v *Value) AsBool() (bool, bool) {
	return v.b, v.kind == spath.KindBool
}

func (v *Value) AsNumber() (float64, bool) {
	return v.num, v.kind == spath.KindNumber
}

func (v *Value) AsString() (string, bool) {
	return v.str, v.kind == spath.KindString
}

func (v *Value) AsArray() (spath.Array, bool) {
	if v.kind != spath.KindArray {
		return nil, false
	}
	return arrayView{v}, true
}

func (v *Value) AsObject() (spath.Object, bool) {
	if v.kind != spath.KindObject {
		return nil, false
	}
	return objectView{v}, true
}

type arrayView struct{ v *Value }

func (a arrayView) Len() int { return len(a.v.arr) }

func (a arrayView) At(i int) (spath.Value, bool) {
	if i < 0 || i >= len(a.v.arr) {
		return nil, false
	}
	return a.v.arr[i], true
}

func (a arrayView) All() iter.Seq2[int, spath.Value] {
	return func(yield func(int, spath.Value) bool) {
		for i, v := range a.v.arr {
			if !yield(i, v) {
				return
			}
		}
	}
}

type objectView struct{ v *Value }

func (o objectView) Len() int { return len(o.v.members) }

func (o objectView) Get(key string) (spath.Value, bool) {
	i, ok := o.v.index[key]
	if !ok {
		return nil, false
	}
	return o.v.members[i].value, true
}

func (o objectView) Contains(key string) bool {
	_, ok := o.v.index[key]
	return ok
}

func (o objectView) All() iter.Seq2[string, spath.Value] {
	return func(yield func(string, spath.Value) bool) {
		for _, m := range o.v.members {
			if !yield(m.key, m.value) {
				return
			}
		}
	}
}

// MarshalJSON renders the document with object members in insertion order.
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.marshal(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *Value) marshal(buf *bytes.Buffer) error {
	switch v.kind {
	case spath.KindNull:
		buf.WriteString("null")
	case spath.KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case spath.KindNumber:
		out, err := gojson.Marshal(v.num)
		if err != nil {
			return err
		}
		buf.Write(out)
	case spath.KindString:
		out, err := gojson.Marshal(v.str)
		if err != nil {
			return err
		}
		buf.Write(out)
	case spath.KindArray:
		buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.marshal(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case spath.KindObject:
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := gojson.Marshal(m.key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := m.value.marshal(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// Interface converts the document to the standard library's generic
// representation: map[string]any, []any, float64, string, bool, nil.
// Member order is lost.
func (v *Value) Interface() any {
	switch v.kind {
	case spath.KindBool:
		return v.b
	case spath.KindNumber:
		return v.num
	case spath.KindString:
		return v.str
	case spath.KindArray:
		out := make([]any, len(v.arr))
		for i, item := range v.arr {
			out[i] = item.Interface()
		}
		return out
	case spath.KindObject:
		out := make(map[string]any, len(v.members))
		for _, m := range v.members {
			out[m.key] = m.value.Interface()
		}
		return out
	default:
		return nil
	}
}

// From deep-converts any spath value into a JSON document, so results
// taken from other adapters can be marshaled or compared here.
func From(src spath.Value) (*Value, error) {
	switch src.Kind() {
	case spath.KindNull:
		return Null(), nil
	case spath.KindBool:
		b, _ := src.AsBool()
		return Bool(b), nil
	case spath.KindNumber:
		n, _ := src.AsNumber()
		return Number(n), nil
	case spath.KindString:
		s, _ := src.AsString()
		return String(s), nil
	case spath.KindArray:
		a, _ := src.AsArray()
		out := Array()
		for _, item := range a.All() {
			converted, err := From(item)
			if err != nil {
				return nil, err
			}
			out.Append(converted)
		}
		return out, nil
	case spath.KindObject:
		o, _ := src.AsObject()
		out := Object()
		for key, item := range o.All() {
			converted, err := From(item)
			if err != nil {
				return nil, err
			}
			out.Set(key, converted)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value kind %v", src.Kind())
	}
}
