package spath

import (
	"fmt"
	"sync"
)

// FuncType classifies what a filter function parameter consumes or its
// result produces.
type FuncType uint8

const (
	// ValueType is a single value or Nothing.
	ValueType FuncType = iota + 1

	// LogicalType is a boolean.
	LogicalType

	// NodesType is a list of nodes.
	NodesType
)

func (t FuncType) String() string {
	switch t {
	case ValueType:
		return "ValueType"
	case LogicalType:
		return "LogicalType"
	case NodesType:
		return "NodesType"
	default:
		return fmt.Sprintf("FuncType(%d)", uint8(t))
	}
}

// FuncValue is the tagged runtime value passed to and returned by filter
// functions. Type selects which field is meaningful.
type FuncValue struct {
	Type FuncType

	// Value holds a ValueType result; nil means Nothing.
	Value Value

	// Logical holds a LogicalType result.
	Logical bool

	// Nodes holds a NodesType result.
	Nodes NodeList
}

// ValueOf wraps a value as a ValueType FuncValue.
func ValueOf(v Value) FuncValue { return FuncValue{Type: ValueType, Value: v} }

// Nothing is the absent ValueType result.
func Nothing() FuncValue { return FuncValue{Type: ValueType} }

// LogicalOf wraps a boolean as a LogicalType FuncValue.
func LogicalOf(v bool) FuncValue { return FuncValue{Type: LogicalType, Logical: v} }

// NodesOf wraps a node list as a NodesType FuncValue.
func NodesOf(nodes NodeList) FuncValue { return FuncValue{Type: NodesType, Nodes: nodes} }

// Func is a filter function implementation. Arguments arrive already
// converted to the declared parameter types. A returned error aborts the
// whole query as an EvalError.
type Func func(args []FuncValue) (FuncValue, error)

// Function couples a name and signature with an implementation. Arity is
// fixed: len(Args) arguments, no variadics.
type Function struct {
	name   string
	args   []FuncType
	result FuncType
	fn     Func
}

// NewFunction declares a filter function.
func NewFunction(name string, args []FuncType, result FuncType, fn Func) *Function {
	return &Function{name: name, args: args, result: result, fn: fn}
}

func (f *Function) Name() string     { return f.name }
func (f *Function) Args() []FuncType { return f.args }
func (f *Function) Result() FuncType { return f.result }

// Registry maps function names to declarations. A registry is mutable
// until handed to Parse; parsing and evaluation only read it, so a single
// registry is shareable across goroutines once populated.
type Registry struct {
	funcs map[string]*Function
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]*Function)}
}

// Register adds a function. Registering a taken name fails with
// ErrDuplicateFunction and leaves the registry unchanged.
func (r *Registry) Register(fn *Function) error {
	if _, ok := r.funcs[fn.name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateFunction, fn.name)
	}
	r.funcs[fn.name] = fn
	return nil
}

// Lookup finds a function by name.
func (r *Registry) Lookup(name string) (*Function, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

// Clone returns an independent copy. Extending the default registry goes
// through a clone so the shared instance stays untouched.
func (r *Registry) Clone() *Registry {
	out := NewRegistry()
	for name, fn := range r.funcs {
		out.funcs[name] = fn
	}
	return out
}

// DefaultRegistry returns the process-wide registry holding the built-in
// functions. Treat it as read-only; use Clone to extend it.
var DefaultRegistry = sync.OnceValue(func() *Registry {
	r := NewRegistry()
	for _, fn := range builtins() {
		if err := r.Register(fn); err != nil {
			panic(err)
		}
	}
	return r
})
