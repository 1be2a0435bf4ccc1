package spath

import (
	"errors"
	"fmt"

	"github.com/jacoelho/spath/internal/diag"
)

var (
	// ErrSyntax reports an expression that does not parse or bind.
	ErrSyntax = errors.New("spath: invalid query")

	// ErrEval reports a query that failed during evaluation.
	ErrEval = errors.New("spath: evaluation failed")

	// ErrDuplicateFunction reports a registration under a taken name.
	ErrDuplicateFunction = errors.New("spath: function already registered")

	// ErrExactlyOne reports a NodeList cardinality violation.
	ErrExactlyOne = errors.New("spath: expected exactly one node")
)

// ParseError is a compile-time failure pinned to a span of the expression.
// It covers both grammar errors and function binding errors, and unwraps to
// ErrSyntax.
type ParseError struct {
	// Source is the full expression text.
	Source string

	// Start and End delimit the offending span in bytes, half-open.
	Start int
	End   int

	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s at %s", e.Message, diag.PositionAt(e.Source, e.Start))
}

func (e *ParseError) Unwrap() error { return ErrSyntax }

// Annotate renders the expression with a caret marking the offending span.
func (e *ParseError) Annotate() string {
	return diag.Annotate(e.Source, e.Start, e.End, e.Message)
}

// EvalError is a runtime failure pinned to the span of the expression
// construct that raised it. It unwraps to ErrEval.
type EvalError struct {
	Source string

	Start int
	End   int

	Message string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("eval error: %s at %s", e.Message, diag.PositionAt(e.Source, e.Start))
}

func (e *EvalError) Unwrap() error { return ErrEval }

// Annotate renders the expression with a caret marking the offending span.
func (e *EvalError) Annotate() string {
	return diag.Annotate(e.Source, e.Start, e.End, e.Message)
}
