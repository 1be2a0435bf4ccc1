// Package parser turns SPath expression text into a syntactic AST.
//
// The parser is purely grammatical: it validates structure (including the
// slice step, which must not be zero) but performs no function-registry
// lookups. Type-checking of function calls happens in the binder, so that
// the grammar stays independent of any particular registry. A failed parse
// discards the in-progress tree; there are no partial results.
package parser

import (
	"fmt"

	"github.com/jacoelho/spath/internal/lexer"
)

// Error is a grammar error covering a span of the source.
type Error struct {
	Span lexer.Span
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at offset %d", e.Msg, e.Span.Start)
}

// Parse parses a complete SPath expression. The expression must be anchored
// at '$' and consume all input.
func Parse(source string) (*Query, error) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		lexErr := err.(*lexer.Error)
		return nil, &Error{
			Span: lexer.Span{Start: lexErr.Offset, End: lexErr.Offset + 1},
			Msg:  lexErr.Msg,
		}
	}

	p := &parser{tokens: tokens}
	if _, ok := p.accept(lexer.Root); !ok {
		return nil, p.errorf("query must start with '$'")
	}
	segments, err := p.parseSegments()
	if err != nil {
		return nil, err
	}
	if p.peek().Kind != lexer.EOF {
		return nil, p.errorf("unexpected %s after query", p.peek())
	}
	return &Query{Root: true, Segments: segments}, nil
}

type parser struct {
	tokens []lexer.Token
	pos    int
}

func (p *parser) peek() lexer.Token {
	return p.tokens[p.pos]
}

func (p *parser) next() lexer.Token {
	tok := p.tokens[p.pos]
	if tok.Kind != lexer.EOF {
		p.pos++
	}
	return tok
}

func (p *parser) accept(kind lexer.Kind) (lexer.Token, bool) {
	if p.peek().Kind == kind {
		return p.next(), true
	}
	return lexer.Token{}, false
}

func (p *parser) expect(kind lexer.Kind) (lexer.Token, error) {
	if tok, ok := p.accept(kind); ok {
		return tok, nil
	}
	return lexer.Token{}, p.errorf("unexpected %s, expected %s", p.peek(), kind)
}

func (p *parser) errorf(format string, args ...any) error {
	return &Error{Span: p.peek().Span, Msg: fmt.Sprintf(format, args...)}
}

// parseSegments consumes segments until the next token cannot start one.
func (p *parser) parseSegments() ([]Segment, error) {
	var segments []Segment
	for {
		switch p.peek().Kind {
		case lexer.Dot:
			p.next()
			seg, err := p.parseDotSegment()
			if err != nil {
				return nil, err
			}
			segments = append(segments, seg)
		case lexer.DotDot:
			p.next()
			seg, err := p.parseDescendantSegment()
			if err != nil {
				return nil, err
			}
			segments = append(segments, seg)
		case lexer.LBracket:
			p.next()
			selectors, err := p.parseBracketedSelectors()
			if err != nil {
				return nil, err
			}
			segments = append(segments, Segment{Selectors: selectors})
		default:
			return segments, nil
		}
	}
}

// parseDotSegment parses what follows a '.': a shorthand name or wildcard.
func (p *parser) parseDotSegment() (Segment, error) {
	if _, ok := p.accept(lexer.Star); ok {
		return Segment{Selectors: []Selector{&WildcardSelector{}}}, nil
	}
	name, err := p.parseMemberName()
	if err != nil {
		return Segment{}, err
	}
	return Segment{Selectors: []Selector{&NameSelector{Name: name}}}, nil
}

// parseDescendantSegment parses what follows a '..'.
func (p *parser) parseDescendantSegment() (Segment, error) {
	switch p.peek().Kind {
	case lexer.Star:
		p.next()
		return Segment{Descendant: true, Selectors: []Selector{&WildcardSelector{}}}, nil
	case lexer.LBracket:
		p.next()
		selectors, err := p.parseBracketedSelectors()
		if err != nil {
			return Segment{}, err
		}
		return Segment{Descendant: true, Selectors: selectors}, nil
	default:
		name, err := p.parseMemberName()
		if err != nil {
			return Segment{}, err
		}
		return Segment{Descendant: true, Selectors: []Selector{&NameSelector{Name: name}}}, nil
	}
}

// parseMemberName accepts an identifier as a shorthand member name.
// The keywords true, false and null are valid member names.
func (p *parser) parseMemberName() (string, error) {
	switch tok := p.peek(); tok.Kind {
	case lexer.Ident, lexer.True, lexer.False, lexer.Null:
		p.next()
		return tok.Text, nil
	default:
		return "", p.errorf("unexpected %s, expected member name", tok)
	}
}

// parseBracketedSelectors parses a comma-separated selector union up to ']'.
func (p *parser) parseBracketedSelectors() ([]Selector, error) {
	var selectors []Selector
	for {
		sel, err := p.parseSelector()
		if err != nil {
			return nil, err
		}
		selectors = append(selectors, sel)
		if _, ok := p.accept(lexer.Comma); ok {
			continue
		}
		if _, err := p.expect(lexer.RBracket); err != nil {
			return nil, err
		}
		return selectors, nil
	}
}

func (p *parser) parseSelector() (Selector, error) {
	switch tok := p.peek(); tok.Kind {
	case lexer.String:
		p.next()
		return &NameSelector{Name: tok.Str}, nil
	case lexer.Star:
		p.next()
		return &WildcardSelector{}, nil
	case lexer.Int:
		p.next()
		if p.peek().Kind == lexer.Colon {
			start := tok.Int
			return p.parseSlice(&start)
		}
		return &IndexSelector{Index: tok.Int}, nil
	case lexer.Colon:
		return p.parseSlice(nil)
	case lexer.Question:
		p.next()
		expr, err := p.parseLogicalOr()
		if err != nil {
			return nil, err
		}
		return &FilterSelector{Expr: expr}, nil
	default:
		return nil, p.errorf("unexpected %s, expected selector", tok)
	}
}

// parseSlice continues a slice selector after its optional start bound.
// The caller has already consumed the start, and the next token is ':'.
func (p *parser) parseSlice(start *int64) (Selector, error) {
	if _, err := p.expect(lexer.Colon); err != nil {
		return nil, err
	}
	sel := &SliceSelector{Start: start}

	if tok, ok := p.accept(lexer.Int); ok {
		end := tok.Int
		sel.End = &end
	}
	if _, ok := p.accept(lexer.Colon); ok {
		if tok, ok := p.accept(lexer.Int); ok {
			if tok.Int == 0 {
				return nil, &Error{Span: tok.Span, Msg: "slice step cannot be zero"}
			}
			step := tok.Int
			sel.Step = &step
		}
	}
	return sel, nil
}

// parseLogicalOr parses a filter expression with the standard precedence:
// '!' binds tighter than comparisons, then '&&', then '||'.
func (p *parser) parseLogicalOr() (LogicalOr, error) {
	var or LogicalOr
	for {
		and, err := p.parseLogicalAnd()
		if err != nil {
			return LogicalOr{}, err
		}
		or.Ands = append(or.Ands, and)
		if _, ok := p.accept(lexer.Or); !ok {
			return or, nil
		}
	}
}

func (p *parser) parseLogicalAnd() (LogicalAnd, error) {
	var and LogicalAnd
	for {
		basic, err := p.parseBasicExpr()
		if err != nil {
			return LogicalAnd{}, err
		}
		and.Exprs = append(and.Exprs, basic)
		if _, ok := p.accept(lexer.And); !ok {
			return and, nil
		}
	}
}

func (p *parser) parseBasicExpr() (BasicExpr, error) {
	if _, ok := p.accept(lexer.Not); ok {
		return p.parseNegated()
	}
	if _, ok := p.accept(lexer.LParen); ok {
		inner, err := p.parseLogicalOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen); err != nil {
			return nil, err
		}
		return &ParenExpr{Expr: inner}, nil
	}
	return p.parseComparisonOrTest()
}

// parseNegated parses the expression following a '!'. Negation applies to a
// parenthesized expression, an existence test, or a function call; a
// comparison must be parenthesized to be negated.
func (p *parser) parseNegated() (BasicExpr, error) {
	if _, ok := p.accept(lexer.LParen); ok {
		inner, err := p.parseLogicalOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen); err != nil {
			return nil, err
		}
		return &ParenExpr{Not: true, Expr: inner}, nil
	}

	switch p.peek().Kind {
	case lexer.Root, lexer.Current:
		q, span, err := p.parseEmbeddedQuery()
		if err != nil {
			return nil, err
		}
		if isCompareOp(p.peek().Kind) {
			return nil, &Error{Span: span, Msg: "negated comparison must be parenthesized"}
		}
		return &ExistExpr{Not: true, Query: q}, nil
	case lexer.Ident:
		call, err := p.parseCall()
		if err != nil {
			return nil, err
		}
		if isCompareOp(p.peek().Kind) {
			return nil, &Error{Span: call.Span, Msg: "negated comparison must be parenthesized"}
		}
		call.Not = true
		return call, nil
	default:
		return nil, p.errorf("unexpected %s after '!'", p.peek())
	}
}

// parseComparisonOrTest parses an operand, then either a comparison against
// a second operand or a bare test (existence test or function call).
func (p *parser) parseComparisonOrTest() (BasicExpr, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	opTok := p.peek()
	if !isCompareOp(opTok.Kind) {
		switch l := left.(type) {
		case *QueryExpr:
			return &ExistExpr{Query: l.Query}, nil
		case *CallExpr:
			return l, nil
		default:
			return nil, &Error{Span: left.ArgSpan(), Msg: "literal is not a valid test expression"}
		}
	}
	p.next()

	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return &CompareExpr{
		Left:  left,
		Op:    compareOpFor(opTok.Kind),
		Right: right,
		Span:  lexer.Span{Start: left.ArgSpan().Start, End: right.ArgSpan().End},
	}, nil
}

// parseOperand parses a comparison operand or function argument: a literal,
// an embedded query, or a function call.
func (p *parser) parseOperand() (Arg, error) {
	switch tok := p.peek(); tok.Kind {
	case lexer.Null:
		p.next()
		return &LiteralExpr{Kind: LiteralNull, Span: tok.Span}, nil
	case lexer.True, lexer.False:
		p.next()
		return &LiteralExpr{Kind: LiteralBool, Bool: tok.Kind == lexer.True, Span: tok.Span}, nil
	case lexer.Int:
		p.next()
		return &LiteralExpr{Kind: LiteralNumber, Num: float64(tok.Int), Span: tok.Span}, nil
	case lexer.Float:
		p.next()
		return &LiteralExpr{Kind: LiteralNumber, Num: tok.Float, Span: tok.Span}, nil
	case lexer.String:
		p.next()
		return &LiteralExpr{Kind: LiteralString, Str: tok.Str, Span: tok.Span}, nil
	case lexer.Root, lexer.Current:
		q, span, err := p.parseEmbeddedQuery()
		if err != nil {
			return nil, err
		}
		return &QueryExpr{Query: q, Span: span}, nil
	case lexer.Ident:
		return p.parseCall()
	default:
		return nil, p.errorf("unexpected %s, expected literal, query, or function call", tok)
	}
}

// parseEmbeddedQuery parses a query rooted at '$' or '@' inside a filter.
func (p *parser) parseEmbeddedQuery() (Query, lexer.Span, error) {
	tok := p.next()
	segments, err := p.parseSegments()
	if err != nil {
		return Query{}, lexer.Span{}, err
	}
	span := lexer.Span{Start: tok.Span.Start, End: tok.Span.End}
	if len(segments) > 0 {
		span.End = p.prevEnd()
	}
	return Query{Root: tok.Kind == lexer.Root, Segments: segments}, span, nil
}

func (p *parser) prevEnd() int {
	if p.pos == 0 {
		return 0
	}
	return p.tokens[p.pos-1].Span.End
}

// parseCall parses a function call whose name token is the current token.
func (p *parser) parseCall() (*CallExpr, error) {
	name := p.next()
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}

	call := &CallExpr{Name: name.Text}
	if p.peek().Kind != lexer.RParen {
		for {
			arg, err := p.parseOperand()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
			if _, ok := p.accept(lexer.Comma); !ok {
				break
			}
		}
	}
	closing, err := p.expect(lexer.RParen)
	if err != nil {
		return nil, err
	}
	call.Span = lexer.Span{Start: name.Span.Start, End: closing.Span.End}
	return call, nil
}

func isCompareOp(kind lexer.Kind) bool {
	switch kind {
	case lexer.Eq, lexer.Ne, lexer.Lt, lexer.Le, lexer.Gt, lexer.Ge:
		return true
	default:
		return false
	}
}

func compareOpFor(kind lexer.Kind) CompareOp {
	switch kind {
	case lexer.Eq:
		return OpEq
	case lexer.Ne:
		return OpNe
	case lexer.Lt:
		return OpLt
	case lexer.Le:
		return OpLe
	case lexer.Gt:
		return OpGt
	case lexer.Ge:
		return OpGe
	default:
		return 0
	}
}
