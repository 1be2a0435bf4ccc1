package spath_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/jacoelho/spath"
	"github.com/jacoelho/spath/json"
)

const bookstore = `{
  "store": {
    "book": [
      {"category": "reference", "author": "Nigel Rees", "title": "Sayings of the Century", "price": 8.95},
      {"category": "fiction", "author": "Evelyn Waugh", "title": "Sword of Honour", "price": 12.99},
      {"category": "fiction", "author": "Herman Melville", "title": "Moby Dick", "isbn": "0-553-21311-3", "price": 8.99},
      {"category": "fiction", "author": "J. R. R. Tolkien", "title": "The Lord of the Rings", "isbn": "0-395-19395-8", "price": 22.99}
    ],
    "bicycle": {"color": "red", "price": 399}
  }
}`

func mustDoc(t *testing.T, src string) *json.Value {
	t.Helper()
	doc, err := json.Parse([]byte(src))
	if err != nil {
		t.Fatalf("invalid fixture: %v", err)
	}
	return doc
}

func selectStrings(t *testing.T, doc *json.Value, expr string) []string {
	t.Helper()
	nodes, err := spath.MustParse(expr).Select(doc)
	if err != nil {
		t.Fatalf("Select(%q) error: %v", expr, err)
	}
	out := make([]string, 0, len(nodes))
	for _, v := range nodes.Values() {
		s, ok := v.AsString()
		if !ok {
			t.Fatalf("Select(%q): non-string result %v", expr, v)
		}
		out = append(out, s)
	}
	return out
}

func selectPaths(t *testing.T, doc *json.Value, expr string) []string {
	t.Helper()
	nodes, err := spath.MustParse(expr).Select(doc)
	if err != nil {
		t.Fatalf("Select(%q) error: %v", expr, err)
	}
	out := make([]string, 0, len(nodes))
	for _, p := range nodes.Paths() {
		out = append(out, p.String())
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSelect(t *testing.T) {
	doc := mustDoc(t, bookstore)

	tests := []struct {
		name string
		expr string
		want []string
	}{
		{
			name: "member shorthand chain",
			expr: "$.store.bicycle.color",
			want: []string{"red"},
		},
		{
			name: "wildcard over array keeps order",
			expr: "$.store.book[*].author",
			want: []string{"Nigel Rees", "Evelyn Waugh", "Herman Melville", "J. R. R. Tolkien"},
		},
		{
			name: "descendant name",
			expr: "$..author",
			want: []string{"Nigel Rees", "Evelyn Waugh", "Herman Melville", "J. R. R. Tolkien"},
		},
		{
			name: "index",
			expr: "$.store.book[2].title",
			want: []string{"Moby Dick"},
		},
		{
			name: "negative index",
			expr: "$.store.book[-1].title",
			want: []string{"The Lord of the Rings"},
		},
		{
			name: "out of range index selects nothing",
			expr: "$.store.book[10].title",
			want: []string{},
		},
		{
			name: "slice",
			expr: "$.store.book[1:3].title",
			want: []string{"Sword of Honour", "Moby Dick"},
		},
		{
			name: "slice with step",
			expr: "$.store.book[::2].title",
			want: []string{"Sayings of the Century", "Moby Dick"},
		},
		{
			name: "reverse slice",
			expr: "$.store.book[::-1].title",
			want: []string{"The Lord of the Rings", "Moby Dick", "Sword of Honour", "Sayings of the Century"},
		},
		{
			name: "slice clamps out of range bounds",
			expr: "$.store.book[2:100].title",
			want: []string{"Moby Dick", "The Lord of the Rings"},
		},
		{
			name: "union evaluates left to right",
			expr: "$.store.book[3,0].title",
			want: []string{"The Lord of the Rings", "Sayings of the Century"},
		},
		{
			name: "name union",
			expr: "$.store.book[0]['author','title']",
			want: []string{"Nigel Rees", "Sayings of the Century"},
		},
		{
			name: "filter existence",
			expr: "$.store.book[?@.isbn].title",
			want: []string{"Moby Dick", "The Lord of the Rings"},
		},
		{
			name: "filter comparison",
			expr: "$.store.book[?@.price < 10].title",
			want: []string{"Sayings of the Century", "Moby Dick"},
		},
		{
			name: "filter conjunction",
			expr: "$.store.book[?@.price < 10 && @.category == 'fiction'].title",
			want: []string{"Moby Dick"},
		},
		{
			name: "filter disjunction",
			expr: "$.store.book[?@.category == 'reference' || @.price >= 22].title",
			want: []string{"Sayings of the Century", "The Lord of the Rings"},
		},
		{
			name: "filter negated existence",
			expr: "$.store.book[?!@.isbn].title",
			want: []string{"Sayings of the Century", "Sword of Honour"},
		},
		{
			name: "filter parenthesized negation",
			expr: "$.store.book[?!(@.price < 10)].title",
			want: []string{"Sword of Honour", "The Lord of the Rings"},
		},
		{
			name: "filter against absolute query",
			expr: "$.store.book[?@.price < $.store.bicycle.price].title",
			want: []string{"Sayings of the Century", "Sword of Honour", "Moby Dick", "The Lord of the Rings"},
		},
		{
			name: "missing member selects nothing",
			expr: "$.store.nothing",
			want: []string{},
		},
		{
			name: "name selector on array selects nothing",
			expr: "$.store.book.title",
			want: []string{},
		},
		{
			name: "index selector on object selects nothing",
			expr: "$.store[0]",
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := selectStrings(t, doc, tt.expr)
			if !equalStrings(got, tt.want) {
				t.Errorf("Select(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestSelectPhonesExample(t *testing.T) {
	doc := mustDoc(t, `{"name": "John", "phones": ["home", "work"]}`)

	nodes, err := spath.MustParse("$.phones[1]").Select(doc)
	if err != nil {
		t.Fatal(err)
	}
	node, err := nodes.ExactlyOne()
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := node.Value.AsString(); s != "work" {
		t.Errorf("value = %q, want work", s)
	}
	if got := node.Path.String(); got != "$['phones'][1]" {
		t.Errorf("path = %s, want $['phones'][1]", got)
	}
}

func TestSelectNormalizedPaths(t *testing.T) {
	doc := mustDoc(t, bookstore)

	tests := []struct {
		expr string
		want []string
	}{
		{
			expr: "$.store.book[0].title",
			want: []string{"$['store']['book'][0]['title']"},
		},
		{
			expr: "$.store.book[-1].price",
			want: []string{"$['store']['book'][3]['price']"},
		},
		{
			expr: "$..isbn",
			want: []string{"$['store']['book'][2]['isbn']", "$['store']['book'][3]['isbn']"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got := selectPaths(t, doc, tt.expr)
			if !equalStrings(got, tt.want) {
				t.Errorf("paths = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectDescendantOrder(t *testing.T) {
	doc := mustDoc(t, `{"a": {"x": 1, "b": {"x": 2}}, "c": [{"x": 3}]}`)

	got := selectPaths(t, doc, "$..x")
	want := []string{
		"$['a']['x']",
		"$['a']['b']['x']",
		"$['c'][0]['x']",
	}
	if !equalStrings(got, want) {
		t.Errorf("pre-order walk = %v, want %v", got, want)
	}
}

func TestSelectDuplicatesAndDedup(t *testing.T) {
	doc := mustDoc(t, bookstore)

	nodes, err := spath.MustParse("$.store.book[0,0].title").Select(doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 2 {
		t.Fatalf("union duplicates collapsed: got %d nodes, want 2", len(nodes))
	}
	deduped := nodes.Dedup()
	if len(deduped) != 1 {
		t.Errorf("Dedup() = %d nodes, want 1", len(deduped))
	}
	if len(nodes) != 2 {
		t.Errorf("Dedup() modified the receiver")
	}
}

func TestComparisonSemantics(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		expr    string
		matches int
	}{
		{
			name:    "deep array equality",
			doc:     `[{"d": [1, 2], "e": [1, 2]}]`,
			expr:    "$[?@.d == @.e]",
			matches: 1,
		},
		{
			name:    "array order matters",
			doc:     `[{"d": [1, 2], "e": [2, 1]}]`,
			expr:    "$[?@.d == @.e]",
			matches: 0,
		},
		{
			name:    "deep object equality ignores member order",
			doc:     `[{"d": {"p": 1, "q": 2}, "e": {"q": 2, "p": 1}}]`,
			expr:    "$[?@.d == @.e]",
			matches: 1,
		},
		{
			name:    "kind mismatch is not equal",
			doc:     `[{"a": 1, "b": "1"}]`,
			expr:    "$[?@.a == @.b]",
			matches: 0,
		},
		{
			name:    "kind mismatch not-equal",
			doc:     `[{"a": 1, "b": "1"}]`,
			expr:    "$[?@.a != @.b]",
			matches: 1,
		},
		{
			name:    "mixed kinds never order",
			doc:     `[{"a": 1, "b": "1"}]`,
			expr:    "$[?@.a < @.b || @.a > @.b || @.a <= @.b || @.a >= @.b]",
			matches: 0,
		},
		{
			name:    "string ordering",
			doc:     `[{"a": "apple", "b": "banana"}]`,
			expr:    "$[?@.a < @.b]",
			matches: 1,
		},
		{
			name:    "absent equals absent",
			doc:     `[{"a": 1}]`,
			expr:    "$[?@.missing == @.alsomissing]",
			matches: 1,
		},
		{
			name:    "absent does not equal present",
			doc:     `[{"a": 1}]`,
			expr:    "$[?@.missing == @.a]",
			matches: 0,
		},
		{
			name:    "absent does not equal null",
			doc:     `[{"a": null}]`,
			expr:    "$[?@.missing == @.a]",
			matches: 0,
		},
		{
			name:    "null equals null",
			doc:     `[{"a": null, "b": null}]`,
			expr:    "$[?@.a == @.b]",
			matches: 1,
		},
		{
			name:    "absent never orders",
			doc:     `[{"a": 1}]`,
			expr:    "$[?@.missing < @.a || @.missing > @.a]",
			matches: 0,
		},
		{
			name:    "less-or-equal uses equality fallback",
			doc:     `[{"a": 5, "b": 5}]`,
			expr:    "$[?@.a <= @.b && @.a >= @.b]",
			matches: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustDoc(t, tt.doc)
			nodes, err := spath.MustParse(tt.expr).Select(doc)
			if err != nil {
				t.Fatalf("Select(%q) error: %v", tt.expr, err)
			}
			if len(nodes) != tt.matches {
				t.Errorf("Select(%q) = %d nodes, want %d", tt.expr, len(nodes), tt.matches)
			}
		})
	}
}

func TestFunctions(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		expr    string
		matches int
	}{
		{
			name:    "length of string",
			doc:     `[{"s": "abc"}, {"s": "abcd"}]`,
			expr:    "$[?length(@.s) > 3]",
			matches: 1,
		},
		{
			name:    "length counts characters not bytes",
			doc:     `[{"s": "héllo"}]`,
			expr:    "$[?length(@.s) == 5]",
			matches: 1,
		},
		{
			name:    "length of array",
			doc:     `[{"a": [1, 2, 3]}]`,
			expr:    "$[?length(@.a) == 3]",
			matches: 1,
		},
		{
			name:    "length of object",
			doc:     `[{"o": {"x": 1, "y": 2}}]`,
			expr:    "$[?length(@.o) == 2]",
			matches: 1,
		},
		{
			name:    "length of number is nothing",
			doc:     `[{"n": 5}]`,
			expr:    "$[?length(@.n) == 1]",
			matches: 0,
		},
		{
			name:    "length of missing is nothing",
			doc:     `[{"n": 5}]`,
			expr:    "$[?length(@.missing) == 0]",
			matches: 0,
		},
		{
			name:    "count children",
			doc:     `[{"a": 1, "b": 2}, {"a": 1}]`,
			expr:    "$[?count(@.*) == 2]",
			matches: 1,
		},
		{
			name:    "count of empty nodelist",
			doc:     `[{"a": 1}]`,
			expr:    "$[?count(@.missing.*) == 0]",
			matches: 1,
		},
		{
			name:    "match covers whole string",
			doc:     `[{"s": "abc"}]`,
			expr:    "$[?match(@.s, 'a.c')]",
			matches: 1,
		},
		{
			name:    "match is anchored",
			doc:     `[{"s": "abc"}]`,
			expr:    "$[?match(@.s, 'a')]",
			matches: 0,
		},
		{
			name:    "match on non-string is false",
			doc:     `[{"s": 5}]`,
			expr:    "$[?match(@.s, '5')]",
			matches: 0,
		},
		{
			name:    "invalid pattern is false not error",
			doc:     `[{"s": "abc"}]`,
			expr:    "$[?match(@.s, '(')]",
			matches: 0,
		},
		{
			name:    "search finds substring",
			doc:     `[{"s": "abc"}]`,
			expr:    "$[?search(@.s, 'b')]",
			matches: 1,
		},
		{
			name:    "value of singleton",
			doc:     `[{"b": {"x": 1}}]`,
			expr:    "$[?value(@..x) == 1]",
			matches: 1,
		},
		{
			name:    "nested calls",
			doc:     `[{"s": "abc"}, {"s": "abcdef"}]`,
			expr:    "$[?length(value(@..s)) > 3]",
			matches: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustDoc(t, tt.doc)
			nodes, err := spath.MustParse(tt.expr).Select(doc)
			if err != nil {
				t.Fatalf("Select(%q) error: %v", tt.expr, err)
			}
			if len(nodes) != tt.matches {
				t.Errorf("Select(%q) = %d nodes, want %d", tt.expr, len(nodes), tt.matches)
			}
		})
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		expr string
	}{
		{
			name: "value on multiple nodes",
			doc:  `[{"b": {"x": 1}, "c": {"x": 2}}]`,
			expr: "$[?value(@..x) == 1]",
		},
		{
			name: "value on empty nodelist",
			doc:  `[{"a": 1}]`,
			expr: "$[?value(@..missing) == 1]",
		},
		{
			name: "non-singular query for value parameter",
			doc:  `[{"a": 1, "b": 2}]`,
			expr: "$[?length(@.*) == 1]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustDoc(t, tt.doc)
			_, err := spath.MustParse(tt.expr).Select(doc)
			if err == nil {
				t.Fatalf("Select(%q) succeeded, want error", tt.expr)
			}
			if !errors.Is(err, spath.ErrEval) {
				t.Errorf("error %v does not wrap ErrEval", err)
			}
			var evalErr *spath.EvalError
			if !errors.As(err, &evalErr) {
				t.Fatalf("got %T, want *EvalError", err)
			}
			if evalErr.Start == 0 && evalErr.End == 0 {
				t.Errorf("eval error carries no span: %+v", evalErr)
			}
		})
	}
}

func TestParseBindErrors(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantMsg string
	}{
		{
			name:    "unknown function",
			expr:    "$[?frobnicate(@)]",
			wantMsg: `unknown function "frobnicate"`,
		},
		{
			name:    "wrong arity",
			expr:    "$[?length(@, @)]",
			wantMsg: "takes 1 argument(s), got 2",
		},
		{
			name:    "value result in test position",
			expr:    "$[?length(@.a)]",
			wantMsg: "cannot be used as a test",
		},
		{
			name:    "logical result as comparison operand",
			expr:    "$[?match(@.a, 'x') == true]",
			wantMsg: "does not return a comparable value",
		},
		{
			name:    "non-singular comparison operand",
			expr:    "$[?@.* == 1]",
			wantMsg: "comparison requires a singular query",
		},
		{
			name:    "literal for nodes parameter",
			expr:    "$[?count(1) == 1]",
			wantMsg: "must be a query",
		},
		{
			name:    "value result for nodes parameter",
			expr:    "$[?count(length(@.a)) == 1]",
			wantMsg: "needs NodesType",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := spath.Parse(tt.expr)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tt.expr)
			}
			if !errors.Is(err, spath.ErrSyntax) {
				t.Errorf("error %v does not wrap ErrSyntax", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Parse(%q) error %q, want it to contain %q", tt.expr, err, tt.wantMsg)
			}
		})
	}
}

func TestParseErrorAnnotate(t *testing.T) {
	_, err := spath.Parse("$[?@.a = 1]")
	if err == nil {
		t.Fatal("want error")
	}
	var perr *spath.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("got %T, want *ParseError", err)
	}
	if perr.Start != 7 {
		t.Errorf("Start = %d, want 7", perr.Start)
	}
	annotated := perr.Annotate()
	if !strings.Contains(annotated, "$[?@.a = 1]") || !strings.Contains(annotated, "^") {
		t.Errorf("Annotate() = %q", annotated)
	}
}

func TestWithMaxDepth(t *testing.T) {
	doc := mustDoc(t, `{"a": {"b": {"c": {"d": 1}}}}`)

	q, err := spath.Parse("$..d", spath.WithMaxDepth(2))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := q.Select(doc); !errors.Is(err, spath.ErrEval) {
		t.Errorf("shallow limit: err = %v, want ErrEval", err)
	}

	q, err = spath.Parse("$..d", spath.WithMaxDepth(10))
	if err != nil {
		t.Fatal(err)
	}
	nodes, err := q.Select(doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 1 {
		t.Errorf("got %d nodes, want 1", len(nodes))
	}
}

func TestWithRegistry(t *testing.T) {
	reg := spath.DefaultRegistry().Clone()
	first := spath.NewFunction("first", []spath.FuncType{spath.NodesType}, spath.ValueType,
		func(args []spath.FuncValue) (spath.FuncValue, error) {
			nodes := args[0].Nodes
			if len(nodes) == 0 {
				return spath.Nothing(), nil
			}
			return spath.ValueOf(nodes[0].Value), nil
		})
	if err := reg.Register(first); err != nil {
		t.Fatal(err)
	}

	doc := mustDoc(t, `[{"a": [3, 1]}, {"a": [7, 9]}]`)
	q, err := spath.Parse("$[?first(@.a.*) == 3]", spath.WithRegistry(reg))
	if err != nil {
		t.Fatal(err)
	}
	nodes, err := q.Select(doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 1 {
		t.Errorf("got %d nodes, want 1", len(nodes))
	}

	// The custom function stays invisible to the default registry.
	if _, err := spath.Parse("$[?first(@.a.*) == 3]"); !errors.Is(err, spath.ErrSyntax) {
		t.Errorf("default registry accepted custom function: %v", err)
	}
}

func TestQueryString(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{expr: "$.a[0]", want: "$['a'][0]"},
		{expr: "$..b[?@.x > 1]", want: "$..['b'][?@['x'] > 1]"},
		{expr: "$[1:2:1]", want: "$[1:2:1]"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			if got := spath.MustParse(tt.expr).String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMustParsePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParse did not panic on invalid input")
		}
	}()
	spath.MustParse("$[")
}

func TestNodeListHelpers(t *testing.T) {
	doc := mustDoc(t, bookstore)

	empty, err := spath.MustParse("$.missing").Select(doc)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := empty.First(); ok {
		t.Error("First() on empty list returned a node")
	}
	if _, err := empty.ExactlyOne(); !errors.Is(err, spath.ErrExactlyOne) {
		t.Errorf("ExactlyOne() on empty list: err = %v", err)
	}
	if _, ok, err := empty.AtMostOne(); ok || err != nil {
		t.Errorf("AtMostOne() on empty list = %v, %v", ok, err)
	}

	many, err := spath.MustParse("$..author").Select(doc)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := many.AtMostOne(); !errors.Is(err, spath.ErrExactlyOne) {
		t.Errorf("AtMostOne() on %d nodes: err = %v", many.Len(), err)
	}
	if first, ok := many.First(); !ok {
		t.Error("First() on populated list returned nothing")
	} else if s, _ := first.Value.AsString(); s != "Nigel Rees" {
		t.Errorf("First() = %q", s)
	}

	var count int
	for range many.All() {
		count++
	}
	if count != many.Len() {
		t.Errorf("All() yielded %d nodes, want %d", count, many.Len())
	}
}

func TestSelectScalarRootAndFilters(t *testing.T) {
	doc := mustDoc(t, `42`)

	nodes, err := spath.MustParse("$").Select(doc)
	if err != nil {
		t.Fatal(err)
	}
	node, err := nodes.ExactlyOne()
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := node.Value.AsNumber(); n != 42 {
		t.Errorf("root = %v, want 42", n)
	}
	if node.Path.String() != "$" {
		t.Errorf("root path = %s, want $", node.Path)
	}

	// Scalars have no children for any child selector.
	for _, expr := range []string{"$[0]", "$.a", "$[*]", "$[?@ == 42]"} {
		nodes, err := spath.MustParse(expr).Select(doc)
		if err != nil {
			t.Fatalf("Select(%q) error: %v", expr, err)
		}
		if len(nodes) != 0 {
			t.Errorf("Select(%q) on scalar = %d nodes, want 0", expr, len(nodes))
		}
	}
}
