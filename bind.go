package spath

import (
	"fmt"

	"github.com/jacoelho/spath/internal/lexer"
	"github.com/jacoelho/spath/internal/parser"
)

// The binder turns the syntactic AST into the evaluable tree. All
// registry-dependent checks happen here: function existence, arity,
// argument conversions, and result-type placement. The parser stays
// registry-free so a query string has one grammar regardless of which
// functions a host registers.

type span struct {
	start int
	end   int
}

func spanOf(s lexer.Span) span {
	return span{start: s.Start, end: s.End}
}

type segment struct {
	descendant bool
	selectors  []selector
}

type selector interface{ isSelector() }

type nameSelector struct{ name string }
type indexSelector struct{ index int64 }
type wildcardSelector struct{}

type sliceSelector struct {
	start *int64
	end   *int64
	step  *int64
}

type filterSelector struct{ expr logicalExpr }

func (*nameSelector) isSelector()     {}
func (*indexSelector) isSelector()    {}
func (*wildcardSelector) isSelector() {}
func (*sliceSelector) isSelector()    {}
func (*filterSelector) isSelector()   {}

// subQuery is a query embedded in a filter, rooted at '$' or '@'.
type subQuery struct {
	root     bool
	segments []segment
}

// callNode is a bound function call with per-argument conversion plans.
type callNode struct {
	fn   *Function
	args []argNode
	span span
}

type binder struct {
	source   string
	registry *Registry
}

func (b *binder) errorf(sp span, format string, args ...any) error {
	return &ParseError{
		Source:  b.source,
		Start:   sp.start,
		End:     sp.end,
		Message: fmt.Sprintf(format, args...),
	}
}

func (b *binder) bindQuery(ast *parser.Query) ([]segment, error) {
	return b.bindSegments(ast.Segments)
}

func (b *binder) bindSegments(in []parser.Segment) ([]segment, error) {
	segments := make([]segment, 0, len(in))
	for _, s := range in {
		selectors := make([]selector, 0, len(s.Selectors))
		for _, sel := range s.Selectors {
			bound, err := b.bindSelector(sel)
			if err != nil {
				return nil, err
			}
			selectors = append(selectors, bound)
		}
		segments = append(segments, segment{descendant: s.Descendant, selectors: selectors})
	}
	return segments, nil
}

func (b *binder) bindSelector(sel parser.Selector) (selector, error) {
	switch s := sel.(type) {
	case *parser.NameSelector:
		return &nameSelector{name: s.Name}, nil
	case *parser.IndexSelector:
		return &indexSelector{index: s.Index}, nil
	case *parser.WildcardSelector:
		return &wildcardSelector{}, nil
	case *parser.SliceSelector:
		return &sliceSelector{start: s.Start, end: s.End, step: s.Step}, nil
	case *parser.FilterSelector:
		expr, err := b.bindLogicalOr(s.Expr)
		if err != nil {
			return nil, err
		}
		return &filterSelector{expr: expr}, nil
	default:
		return nil, fmt.Errorf("unhandled selector %T", sel)
	}
}

func (b *binder) bindLogicalOr(or parser.LogicalOr) (logicalExpr, error) {
	exprs := make([]logicalExpr, 0, len(or.Ands))
	for _, and := range or.Ands {
		bound, err := b.bindLogicalAnd(and)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, bound)
	}
	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return &orExpr{exprs: exprs}, nil
}

func (b *binder) bindLogicalAnd(and parser.LogicalAnd) (logicalExpr, error) {
	exprs := make([]logicalExpr, 0, len(and.Exprs))
	for _, basic := range and.Exprs {
		bound, err := b.bindBasicExpr(basic)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, bound)
	}
	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return &andExpr{exprs: exprs}, nil
}

func (b *binder) bindBasicExpr(expr parser.BasicExpr) (logicalExpr, error) {
	switch e := expr.(type) {
	case *parser.ParenExpr:
		inner, err := b.bindLogicalOr(e.Expr)
		if err != nil {
			return nil, err
		}
		if e.Not {
			return &notExpr{expr: inner}, nil
		}
		return inner, nil

	case *parser.ExistExpr:
		q, err := b.bindSubQuery(e.Query)
		if err != nil {
			return nil, err
		}
		var out logicalExpr = &existExpr{query: q}
		if e.Not {
			out = &notExpr{expr: out}
		}
		return out, nil

	case *parser.CompareExpr:
		left, err := b.bindOperand(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := b.bindOperand(e.Right)
		if err != nil {
			return nil, err
		}
		return &compareExpr{
			left:  left,
			op:    e.Op,
			right: right,
			span:  span{start: e.Span.Start, end: e.Span.End},
		}, nil

	case *parser.CallExpr:
		call, err := b.bindCall(e)
		if err != nil {
			return nil, err
		}
		if call.fn.result == ValueType {
			return nil, b.errorf(call.span, "%s() returns a value and cannot be used as a test", call.fn.name)
		}
		var out logicalExpr = &callTestExpr{call: call}
		if e.Not {
			out = &notExpr{expr: out}
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unhandled filter expression %T", expr)
	}
}

func (b *binder) bindSubQuery(q parser.Query) (subQuery, error) {
	segments, err := b.bindSegments(q.Segments)
	if err != nil {
		return subQuery{}, err
	}
	return subQuery{root: q.Root, segments: segments}, nil
}

// bindOperand binds a comparison operand. Only constructs that produce a
// single value or Nothing can be compared: literals, singular queries,
// and calls of functions that return ValueType.
func (b *binder) bindOperand(arg parser.Arg) (operand, error) {
	switch a := arg.(type) {
	case *parser.LiteralExpr:
		return &literalOperand{value: literalValue(a)}, nil

	case *parser.QueryExpr:
		if !a.Query.IsSingular() {
			return nil, b.errorf(spanOf(a.Span), "comparison requires a singular query")
		}
		q, err := b.bindSubQuery(a.Query)
		if err != nil {
			return nil, err
		}
		return &singularQueryOperand{query: q}, nil

	case *parser.CallExpr:
		call, err := b.bindCall(a)
		if err != nil {
			return nil, err
		}
		if call.fn.result != ValueType {
			return nil, b.errorf(call.span, "%s() does not return a comparable value", call.fn.name)
		}
		return &callOperand{call: call}, nil

	default:
		return nil, fmt.Errorf("unhandled operand %T", arg)
	}
}

func (b *binder) bindCall(call *parser.CallExpr) (*callNode, error) {
	sp := spanOf(call.Span)
	fn, ok := b.registry.Lookup(call.Name)
	if !ok {
		return nil, b.errorf(sp, "unknown function %q", call.Name)
	}
	if len(call.Args) != len(fn.args) {
		return nil, b.errorf(sp, "%s() takes %d argument(s), got %d", fn.name, len(fn.args), len(call.Args))
	}

	args := make([]argNode, 0, len(call.Args))
	for i, arg := range call.Args {
		bound, err := b.bindArg(fn, i, arg)
		if err != nil {
			return nil, err
		}
		args = append(args, bound)
	}
	return &callNode{fn: fn, args: args, span: sp}, nil
}

// bindArg plans the conversion of one argument to its declared parameter
// type. A query bound to a ValueType parameter need not be singular; a
// non-singular one is deferred to evaluation, where it must select exactly
// one node.
func (b *binder) bindArg(fn *Function, i int, arg parser.Arg) (argNode, error) {
	declared := fn.args[i]
	sp := spanOf(arg.ArgSpan())

	switch a := arg.(type) {
	case *parser.LiteralExpr:
		if declared != ValueType {
			return nil, b.errorf(sp, "argument %d of %s() must be a query, got a literal", i+1, fn.name)
		}
		return &argLiteral{value: literalValue(a)}, nil

	case *parser.QueryExpr:
		q, err := b.bindSubQuery(a.Query)
		if err != nil {
			return nil, err
		}
		switch declared {
		case ValueType:
			if a.Query.IsSingular() {
				return &argSingularQuery{query: q}, nil
			}
			return &argValueQuery{query: q, span: sp}, nil
		case LogicalType:
			return &argLogicalQuery{query: q}, nil
		case NodesType:
			return &argNodesQuery{query: q}, nil
		}

	case *parser.CallExpr:
		inner, err := b.bindCall(a)
		if err != nil {
			return nil, err
		}
		result := inner.fn.result
		ok := result == declared || (declared == LogicalType && result == NodesType)
		if !ok {
			return nil, b.errorf(sp, "argument %d of %s() needs %s, but %s() returns %s",
				i+1, fn.name, declared, inner.fn.name, result)
		}
		return &argCall{call: inner, want: declared}, nil
	}
	return nil, fmt.Errorf("unhandled argument %T", arg)
}

func literalValue(lit *parser.LiteralExpr) Value {
	switch lit.Kind {
	case parser.LiteralNull:
		return litNull()
	case parser.LiteralBool:
		return litBool(lit.Bool)
	case parser.LiteralNumber:
		return litNumber(lit.Num)
	default:
		return litString(lit.Str)
	}
}
