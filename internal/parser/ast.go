package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jacoelho/spath/internal/lexer"
)

// Query is a sequence of segments anchored at the document root ('$') or,
// inside filters, at the current node ('@').
type Query struct {
	Root     bool
	Segments []Segment
}

// IsSingular reports whether the query selects at most one node: no
// descendant segments, and every segment is a single name or index selector.
func (q Query) IsSingular() bool {
	for _, seg := range q.Segments {
		if seg.Descendant || len(seg.Selectors) != 1 {
			return false
		}
		switch seg.Selectors[0].(type) {
		case *NameSelector, *IndexSelector:
		default:
			return false
		}
	}
	return true
}

func (q Query) String() string {
	var b strings.Builder
	if q.Root {
		b.WriteByte('$')
	} else {
		b.WriteByte('@')
	}
	for _, seg := range q.Segments {
		b.WriteString(seg.String())
	}
	return b.String()
}

// Segment applies its selector union to each input node; a descendant
// segment first visits the node and all of its descendants.
type Segment struct {
	Descendant bool
	Selectors  []Selector
}

func (s Segment) String() string {
	var b strings.Builder
	if s.Descendant {
		b.WriteString("..")
	}
	b.WriteByte('[')
	for i, sel := range s.Selectors {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(sel.String())
	}
	b.WriteByte(']')
	return b.String()
}

// Selector picks children of a node.
type Selector interface {
	fmt.Stringer
	isSelector()
}

// NameSelector selects an object member by name.
type NameSelector struct {
	Name string
}

func (*NameSelector) isSelector()      {}
func (s *NameSelector) String() string { return quoteName(s.Name) }

// IndexSelector selects an array element; negative indices count from the end.
type IndexSelector struct {
	Index int64
}

func (*IndexSelector) isSelector()      {}
func (s *IndexSelector) String() string { return strconv.FormatInt(s.Index, 10) }

// WildcardSelector selects every child of an object or array.
type WildcardSelector struct{}

func (*WildcardSelector) isSelector()    {}
func (*WildcardSelector) String() string { return "*" }

// SliceSelector selects a range of array elements. Nil bounds take the
// defaults of the step direction; Step is never zero.
type SliceSelector struct {
	Start *int64
	End   *int64
	Step  *int64
}

func (*SliceSelector) isSelector() {}

func (s *SliceSelector) String() string {
	var b strings.Builder
	if s.Start != nil {
		b.WriteString(strconv.FormatInt(*s.Start, 10))
	}
	b.WriteByte(':')
	if s.End != nil {
		b.WriteString(strconv.FormatInt(*s.End, 10))
	}
	if s.Step != nil {
		b.WriteByte(':')
		b.WriteString(strconv.FormatInt(*s.Step, 10))
	}
	return b.String()
}

// FilterSelector selects the children for which the filter expression holds.
type FilterSelector struct {
	Expr LogicalOr
}

func (*FilterSelector) isSelector()      {}
func (s *FilterSelector) String() string { return "?" + s.Expr.String() }

// LogicalOr is a disjunction of conjunctions; '||' binds loosest.
type LogicalOr struct {
	Ands []LogicalAnd
}

func (e LogicalOr) String() string {
	parts := make([]string, len(e.Ands))
	for i, and := range e.Ands {
		parts[i] = and.String()
	}
	return strings.Join(parts, " || ")
}

// LogicalAnd is a conjunction of basic expressions.
type LogicalAnd struct {
	Exprs []BasicExpr
}

func (e LogicalAnd) String() string {
	parts := make([]string, len(e.Exprs))
	for i, expr := range e.Exprs {
		parts[i] = expr.String()
	}
	return strings.Join(parts, " && ")
}

// BasicExpr is one operand of a conjunction: a parenthesized expression, an
// existence test, a comparison, or a function call in test position.
type BasicExpr interface {
	fmt.Stringer
	isBasicExpr()
}

// ParenExpr is a parenthesized filter expression, optionally negated.
type ParenExpr struct {
	Not  bool
	Expr LogicalOr
}

func (*ParenExpr) isBasicExpr() {}

func (e *ParenExpr) String() string {
	if e.Not {
		return "!(" + e.Expr.String() + ")"
	}
	return "(" + e.Expr.String() + ")"
}

// ExistExpr tests whether an embedded query selects at least one node.
type ExistExpr struct {
	Not   bool
	Query Query
}

func (*ExistExpr) isBasicExpr() {}

func (e *ExistExpr) String() string {
	if e.Not {
		return "!" + e.Query.String()
	}
	return e.Query.String()
}

// CompareExpr compares two operands with one of == != < <= > >=.
type CompareExpr struct {
	Left  Arg
	Op    CompareOp
	Right Arg
	Span  lexer.Span
}

func (*CompareExpr) isBasicExpr() {}

func (e *CompareExpr) String() string {
	return e.Left.String() + " " + e.Op.String() + " " + e.Right.String()
}

// CompareOp identifies a comparison operator.
type CompareOp uint8

const (
	OpEq CompareOp = iota + 1
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

func (op CompareOp) String() string {
	switch op {
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	default:
		return fmt.Sprintf("CompareOp(%d)", uint8(op))
	}
}

// CallExpr is a function call. In test position Not records a preceding '!';
// as a comparison operand or argument Not is always false.
type CallExpr struct {
	Not  bool
	Name string
	Args []Arg
	Span lexer.Span
}

func (*CallExpr) isBasicExpr() {}
func (*CallExpr) isArg()       {}

func (e *CallExpr) ArgSpan() lexer.Span { return e.Span }

func (e *CallExpr) String() string {
	parts := make([]string, len(e.Args))
	for i, arg := range e.Args {
		parts[i] = arg.String()
	}
	s := e.Name + "(" + strings.Join(parts, ", ") + ")"
	if e.Not {
		return "!" + s
	}
	return s
}

// Arg is a comparison operand or function argument: a literal, an embedded
// query, or a nested function call.
type Arg interface {
	fmt.Stringer
	ArgSpan() lexer.Span
	isArg()
}

// LiteralKind identifies the type of a literal operand.
type LiteralKind uint8

const (
	LiteralNull LiteralKind = iota
	LiteralBool
	LiteralNumber
	LiteralString
)

// LiteralExpr is a literal operand. Exactly one of Bool, Num or Str is
// meaningful, per Kind.
type LiteralExpr struct {
	Kind LiteralKind
	Bool bool
	Num  float64
	Str  string
	Span lexer.Span
}

func (*LiteralExpr) isArg() {}

func (e *LiteralExpr) ArgSpan() lexer.Span { return e.Span }

func (e *LiteralExpr) String() string {
	switch e.Kind {
	case LiteralNull:
		return "null"
	case LiteralBool:
		return strconv.FormatBool(e.Bool)
	case LiteralNumber:
		return strconv.FormatFloat(e.Num, 'g', -1, 64)
	case LiteralString:
		return quoteName(e.Str)
	default:
		return fmt.Sprintf("LiteralKind(%d)", uint8(e.Kind))
	}
}

// QueryExpr is an embedded query used as an operand.
type QueryExpr struct {
	Query Query
	Span  lexer.Span
}

func (*QueryExpr) isArg() {}

func (e *QueryExpr) ArgSpan() lexer.Span { return e.Span }

func (e *QueryExpr) String() string { return e.Query.String() }

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
