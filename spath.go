package spath

import (
	"github.com/jacoelho/spath/internal/parser"
)

// Query is a compiled expression, ready to run against any document.
// A Query is immutable and safe for concurrent use.
type Query struct {
	source   string
	str      string
	maxDepth int
	segments []segment
}

// Option configures parsing and evaluation.
type Option func(*config)

type config struct {
	registry *Registry
	maxDepth int
}

// WithRegistry selects the function registry the query binds against.
// The default is DefaultRegistry().
func WithRegistry(r *Registry) Option {
	return func(c *config) {
		c.registry = r
	}
}

// WithMaxDepth bounds descendant traversal. Descending more than depth
// levels below a '..' segment's input node fails the query with an
// EvalError. Zero or negative means unbounded, the default.
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		c.maxDepth = depth
	}
}

// Parse compiles an expression. Errors are *ParseError wrapping ErrSyntax,
// whether the failure is lexical, grammatical, or a function binding
// problem. A failed Parse returns no query.
func Parse(expr string, opts ...Option) (*Query, error) {
	cfg := config{registry: DefaultRegistry()}
	for _, opt := range opts {
		opt(&cfg)
	}

	ast, err := parser.Parse(expr)
	if err != nil {
		perr := err.(*parser.Error)
		return nil, &ParseError{
			Source:  expr,
			Start:   perr.Span.Start,
			End:     perr.Span.End,
			Message: perr.Msg,
		}
	}

	b := &binder{source: expr, registry: cfg.registry}
	segments, err := b.bindQuery(ast)
	if err != nil {
		return nil, err
	}
	return &Query{
		source:   expr,
		str:      ast.String(),
		maxDepth: cfg.maxDepth,
		segments: segments,
	}, nil
}

// MustParse is Parse for expressions known to be valid; it panics on error.
func MustParse(expr string, opts ...Option) *Query {
	q, err := Parse(expr, opts...)
	if err != nil {
		panic(err)
	}
	return q
}

// Select runs the query against a document and returns the selected nodes
// in document order. The returned nodes borrow root's tree; mutating the
// tree afterwards invalidates them. Errors are *EvalError wrapping ErrEval.
//
// Select does not modify the query, so one query may run concurrently
// against many documents.
func (q *Query) Select(root Value) (NodeList, error) {
	e := &evaluator{source: q.source, root: root, maxDepth: q.maxDepth}
	return e.evalQuery(subQuery{root: true, segments: q.segments}, root)
}

// String renders the query in its canonical bracketed form.
func (q *Query) String() string {
	return q.str
}
