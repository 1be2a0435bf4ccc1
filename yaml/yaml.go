// Package yaml adapts YAML documents for querying. Documents decode into
// the ordered document type of the json package, so mapping key order is
// preserved and results marshal back to JSON.
package yaml

import (
	"errors"
	"fmt"
	"io"

	goyaml "github.com/goccy/go-yaml"

	"github.com/jacoelho/spath/json"
)

// ErrDecode reports input that is not a well-formed YAML document.
var ErrDecode = errors.New("yaml: invalid document")

// Parse decodes one YAML document.
func Parse(data []byte) (*json.Value, error) {
	var doc any
	if err := goyaml.UnmarshalWithOptions(data, &doc, goyaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDecode, err)
	}
	return convert(doc)
}

// Decode reads one YAML document from r.
func Decode(r io.Reader) (*json.Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDecode, err)
	}
	return Parse(data)
}

// convert maps goccy's generic representation onto the document type.
// UseOrderedMap yields MapSlice for mappings, which keeps key order.
func convert(v any) (*json.Value, error) {
	switch t := v.(type) {
	case nil:
		return json.Null(), nil
	case bool:
		return json.Bool(t), nil
	case string:
		return json.String(t), nil
	case int:
		return json.Number(float64(t)), nil
	case int64:
		return json.Number(float64(t)), nil
	case uint64:
		return json.Number(float64(t)), nil
	case float64:
		return json.Number(t), nil
	case []any:
		out := json.Array()
		for _, item := range t {
			converted, err := convert(item)
			if err != nil {
				return nil, err
			}
			out.Append(converted)
		}
		return out, nil
	case goyaml.MapSlice:
		out := json.Object()
		for _, item := range t {
			key, ok := item.Key.(string)
			if !ok {
				key = fmt.Sprint(item.Key)
			}
			converted, err := convert(item.Value)
			if err != nil {
				return nil, err
			}
			out.Set(key, converted)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unsupported node type %T", ErrDecode, v)
	}
}
