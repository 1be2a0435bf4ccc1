package spath

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// builtins declares the standard function extensions.
func builtins() []*Function {
	return []*Function{
		NewFunction("length", []FuncType{ValueType}, ValueType, lengthFunc),
		NewFunction("count", []FuncType{NodesType}, ValueType, countFunc),
		NewFunction("match", []FuncType{ValueType, ValueType}, LogicalType, matchFunc),
		NewFunction("search", []FuncType{ValueType, ValueType}, LogicalType, searchFunc),
		NewFunction("value", []FuncType{NodesType}, ValueType, valueFunc),
	}
}

// lengthFunc returns the length of its argument: characters of a string,
// elements of an array, members of an object. Anything else, including
// Nothing, yields Nothing.
func lengthFunc(args []FuncValue) (FuncValue, error) {
	v := args[0].Value
	if v == nil {
		return Nothing(), nil
	}
	switch v.Kind() {
	case KindString:
		s, _ := v.AsString()
		return ValueOf(litNumber(float64(utf8.RuneCountInString(s)))), nil
	case KindArray:
		a, _ := v.AsArray()
		return ValueOf(litNumber(float64(a.Len()))), nil
	case KindObject:
		o, _ := v.AsObject()
		return ValueOf(litNumber(float64(o.Len()))), nil
	default:
		return Nothing(), nil
	}
}

// countFunc returns the number of nodes its query argument selected.
func countFunc(args []FuncValue) (FuncValue, error) {
	return ValueOf(litNumber(float64(len(args[0].Nodes)))), nil
}

// matchFunc tests a string against a regular expression that must cover
// the whole string. Non-string operands or an invalid pattern yield false
// rather than an error.
func matchFunc(args []FuncValue) (FuncValue, error) {
	return LogicalOf(regexMatch(args[0].Value, args[1].Value, true)), nil
}

// searchFunc tests whether any substring matches the regular expression.
func searchFunc(args []FuncValue) (FuncValue, error) {
	return LogicalOf(regexMatch(args[0].Value, args[1].Value, false)), nil
}

func regexMatch(input, pattern Value, anchored bool) bool {
	if input == nil || pattern == nil {
		return false
	}
	s, ok := input.AsString()
	if !ok {
		return false
	}
	p, ok := pattern.AsString()
	if !ok {
		return false
	}
	if anchored {
		p = "^(?:" + p + ")$"
	}
	re, err := regexp.Compile(p)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

// valueFunc converts a single-node list to its value. Any other
// cardinality is an error: callers that cannot guarantee a singleton
// should test with count first.
func valueFunc(args []FuncValue) (FuncValue, error) {
	nodes := args[0].Nodes
	if len(nodes) != 1 {
		return FuncValue{}, fmt.Errorf("value() requires exactly one node, got %d", len(nodes))
	}
	return ValueOf(nodes[0].Value), nil
}
