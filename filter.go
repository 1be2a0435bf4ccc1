package spath

import "github.com/jacoelho/spath/internal/parser"

// logicalExpr is a bound filter expression evaluated against one candidate
// node.
type logicalExpr interface {
	evalLogical(e *evaluator, current Value) (bool, error)
}

type orExpr struct{ exprs []logicalExpr }

func (x *orExpr) evalLogical(e *evaluator, current Value) (bool, error) {
	for _, expr := range x.exprs {
		ok, err := expr.evalLogical(e, current)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

type andExpr struct{ exprs []logicalExpr }

func (x *andExpr) evalLogical(e *evaluator, current Value) (bool, error) {
	for _, expr := range x.exprs {
		ok, err := expr.evalLogical(e, current)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

type notExpr struct{ expr logicalExpr }

func (x *notExpr) evalLogical(e *evaluator, current Value) (bool, error) {
	ok, err := x.expr.evalLogical(e, current)
	return !ok, err
}

// existExpr tests whether the embedded query selects anything.
type existExpr struct{ query subQuery }

func (x *existExpr) evalLogical(e *evaluator, current Value) (bool, error) {
	nodes, err := e.evalQuery(x.query, current)
	if err != nil {
		return false, err
	}
	return len(nodes) > 0, nil
}

// callTestExpr is a function call in test position. The binder guarantees
// the function returns LogicalType or NodesType.
type callTestExpr struct{ call *callNode }

func (x *callTestExpr) evalLogical(e *evaluator, current Value) (bool, error) {
	out, err := x.call.invoke(e, current)
	if err != nil {
		return false, err
	}
	if out.Type == NodesType {
		return len(out.Nodes) > 0, nil
	}
	return out.Logical, nil
}

type compareExpr struct {
	left  operand
	op    parser.CompareOp
	right operand
	span  span
}

func (x *compareExpr) evalLogical(e *evaluator, current Value) (bool, error) {
	left, err := x.left.evalOperand(e, current)
	if err != nil {
		return false, err
	}
	right, err := x.right.evalOperand(e, current)
	if err != nil {
		return false, err
	}

	switch x.op {
	case parser.OpEq:
		return equalValues(left, right), nil
	case parser.OpNe:
		return !equalValues(left, right), nil
	case parser.OpLt:
		return lessValues(left, right), nil
	case parser.OpLe:
		return lessValues(left, right) || equalValues(left, right), nil
	case parser.OpGt:
		return lessValues(right, left), nil
	case parser.OpGe:
		return lessValues(right, left) || equalValues(left, right), nil
	default:
		return false, e.evalError(x.span, "unhandled comparison operator")
	}
}

// operand produces a single value, or nil for Nothing.
type operand interface {
	evalOperand(e *evaluator, current Value) (Value, error)
}

type literalOperand struct{ value Value }

func (o *literalOperand) evalOperand(*evaluator, Value) (Value, error) {
	return o.value, nil
}

// singularQueryOperand evaluates a singular query; an unmatched query is
// Nothing, not an error.
type singularQueryOperand struct{ query subQuery }

func (o *singularQueryOperand) evalOperand(e *evaluator, current Value) (Value, error) {
	nodes, err := e.evalQuery(o.query, current)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	return nodes[0].Value, nil
}

type callOperand struct{ call *callNode }

func (o *callOperand) evalOperand(e *evaluator, current Value) (Value, error) {
	out, err := o.call.invoke(e, current)
	if err != nil {
		return nil, err
	}
	return out.Value, nil
}

// invoke evaluates the arguments and applies the function. A plain error
// from the implementation is pinned to the call's span.
func (c *callNode) invoke(e *evaluator, current Value) (FuncValue, error) {
	args := make([]FuncValue, len(c.args))
	for i, arg := range c.args {
		v, err := arg.evalArg(e, current)
		if err != nil {
			return FuncValue{}, err
		}
		args[i] = v
	}
	out, err := c.fn.fn(args)
	if err != nil {
		return FuncValue{}, e.evalError(c.span, "%s", err)
	}
	return out, nil
}

// argNode converts one argument to its declared parameter type.
type argNode interface {
	evalArg(e *evaluator, current Value) (FuncValue, error)
}

type argLiteral struct{ value Value }

func (a *argLiteral) evalArg(*evaluator, Value) (FuncValue, error) {
	return ValueOf(a.value), nil
}

type argSingularQuery struct{ query subQuery }

func (a *argSingularQuery) evalArg(e *evaluator, current Value) (FuncValue, error) {
	nodes, err := e.evalQuery(a.query, current)
	if err != nil {
		return FuncValue{}, err
	}
	if len(nodes) == 0 {
		return Nothing(), nil
	}
	return ValueOf(nodes[0].Value), nil
}

// argValueQuery is a non-singular query bound to a ValueType parameter.
// It must select exactly one node at evaluation time.
type argValueQuery struct {
	query subQuery
	span  span
}

func (a *argValueQuery) evalArg(e *evaluator, current Value) (FuncValue, error) {
	nodes, err := e.evalQuery(a.query, current)
	if err != nil {
		return FuncValue{}, err
	}
	if len(nodes) != 1 {
		return FuncValue{}, e.evalError(a.span, "query must select exactly one node, got %d", len(nodes))
	}
	return ValueOf(nodes[0].Value), nil
}

type argLogicalQuery struct{ query subQuery }

func (a *argLogicalQuery) evalArg(e *evaluator, current Value) (FuncValue, error) {
	nodes, err := e.evalQuery(a.query, current)
	if err != nil {
		return FuncValue{}, err
	}
	return LogicalOf(len(nodes) > 0), nil
}

type argNodesQuery struct{ query subQuery }

func (a *argNodesQuery) evalArg(e *evaluator, current Value) (FuncValue, error) {
	nodes, err := e.evalQuery(a.query, current)
	if err != nil {
		return FuncValue{}, err
	}
	return NodesOf(nodes), nil
}

// argCall is a nested call; want records the declared parameter type so a
// NodesType result can narrow to LogicalType.
type argCall struct {
	call *callNode
	want FuncType
}

func (a *argCall) evalArg(e *evaluator, current Value) (FuncValue, error) {
	out, err := a.call.invoke(e, current)
	if err != nil {
		return FuncValue{}, err
	}
	if a.want == LogicalType && out.Type == NodesType {
		return LogicalOf(len(out.Nodes) > 0), nil
	}
	return out, nil
}

// equalValues is deep equality: kinds must agree, then contents. Nothing
// equals only Nothing. Comparing values never fails.
func equalValues(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case KindNull:
		return true
	case KindBool:
		x, _ := a.AsBool()
		y, _ := b.AsBool()
		return x == y
	case KindNumber:
		x, _ := a.AsNumber()
		y, _ := b.AsNumber()
		return x == y
	case KindString:
		x, _ := a.AsString()
		y, _ := b.AsString()
		return x == y
	case KindArray:
		x, _ := a.AsArray()
		y, _ := b.AsArray()
		if x.Len() != y.Len() {
			return false
		}
		for i, v := range x.All() {
			w, ok := y.At(i)
			if !ok || !equalValues(v, w) {
				return false
			}
		}
		return true
	case KindObject:
		x, _ := a.AsObject()
		y, _ := b.AsObject()
		if x.Len() != y.Len() {
			return false
		}
		for k, v := range x.All() {
			w, ok := y.Get(k)
			if !ok || !equalValues(v, w) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// lessValues orders numbers against numbers and strings against strings;
// every other pairing is false.
func lessValues(a, b Value) bool {
	if a == nil || b == nil {
		return false
	}
	if x, ok := a.AsNumber(); ok {
		y, ok := b.AsNumber()
		return ok && x < y
	}
	if x, ok := a.AsString(); ok {
		y, ok := b.AsString()
		return ok && x < y
	}
	return false
}
