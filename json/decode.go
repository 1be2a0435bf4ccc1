package json

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	gojson "encoding/json"

	"github.com/jacoelho/spath"
	"github.com/jacoelho/spath/internal/stack"
)

// ErrDecode reports input that is not a single well-formed JSON document.
var ErrDecode = errors.New("json: invalid document")

// Parse decodes one JSON document. Input after the top-level value is an
// error.
func Parse(data []byte) (*Value, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads one JSON document from r. Numbers become float64; object
// member order is preserved. Anything after the top-level value is an
// error.
func Decode(r io.Reader) (*Value, error) {
	dec := gojson.NewDecoder(r)
	dec.UseNumber()

	root, err := decodeDocument(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: data after top-level value", ErrDecode)
	}
	return root, nil
}

// frame is one open container during the token walk. For objects, key
// holds the member name awaiting its value.
type frame struct {
	container *Value
	key       string
	hasKey    bool
}

// decodeDocument walks the token stream iteratively, tracking open
// containers on an explicit stack. Containers attach to their parent when
// they open, so member order falls out of token order.
func decodeDocument(dec *gojson.Decoder) (*Value, error) {
	frames := stack.New[frame]()
	var root *Value

	place := func(v *Value) {
		top := frames.PeekRef()
		if top == nil {
			root = v
			return
		}
		switch top.container.kind {
		case spath.KindArray:
			top.container.arr = append(top.container.arr, v)
		default:
			top.container.Set(top.key, v)
			top.hasKey = false
		}
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrDecode)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrDecode, err)
		}

		if d, ok := tok.(gojson.Delim); ok {
			switch d {
			case '{':
				obj := Object()
				place(obj)
				frames.Push(frame{container: obj})
			case '[':
				arr := Array()
				place(arr)
				frames.Push(frame{container: arr})
			case '}', ']':
				frames.Pop()
			}
			if frames.IsEmpty() && root != nil {
				return root, nil
			}
			continue
		}

		if top := frames.PeekRef(); top != nil && top.container.kind == spath.KindObject && !top.hasKey {
			// Decoder guarantees object keys are strings.
			top.key = tok.(string)
			top.hasKey = true
			continue
		}

		v, err := scalar(tok)
		if err != nil {
			return nil, err
		}
		place(v)
		if frames.IsEmpty() {
			return root, nil
		}
	}
}

func scalar(tok gojson.Token) (*Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case gojson.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: number %q: %s", ErrDecode, t, err)
		}
		return Number(f), nil
	default:
		return nil, fmt.Errorf("%w: unexpected token %v", ErrDecode, tok)
	}
}
