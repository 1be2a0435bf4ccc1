package lexer

import "fmt"

// Kind identifies the lexical class of a token.
type Kind uint8

const (
	EOF Kind = iota

	Ident
	String
	Int
	Float

	Root    // $
	Current // @
	Dot     // .
	DotDot  // ..
	LBracket
	RBracket
	LParen
	RParen
	Comma
	Colon
	Question
	Star

	Eq  // ==
	Ne  // !=
	Lt  // <
	Le  // <=
	Gt  // >
	Ge  // >=
	And // &&
	Or  // ||
	Not // !

	True
	False
	Null
)

var kindNames = map[Kind]string{
	EOF:      "end of input",
	Ident:    "identifier",
	String:   "string literal",
	Int:      "integer literal",
	Float:    "float literal",
	Root:     "'$'",
	Current:  "'@'",
	Dot:      "'.'",
	DotDot:   "'..'",
	LBracket: "'['",
	RBracket: "']'",
	LParen:   "'('",
	RParen:   "')'",
	Comma:    "','",
	Colon:    "':'",
	Question: "'?'",
	Star:     "'*'",
	Eq:       "'=='",
	Ne:       "'!='",
	Lt:       "'<'",
	Le:       "'<='",
	Gt:       "'>'",
	Ge:       "'>='",
	And:      "'&&'",
	Or:       "'||'",
	Not:      "'!'",
	True:     "'true'",
	False:    "'false'",
	Null:     "'null'",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Span is a half-open byte-offset range [Start, End) into the source text.
type Span struct {
	Start int
	End   int
}

// Token is a single lexical unit with its source span.
type Token struct {
	Kind Kind
	Span Span

	// Text is the raw source slice covered by Span.
	Text string

	// Str holds the decoded value for String tokens, with quotes removed
	// and escape sequences resolved.
	Str string

	// Int holds the value for Int tokens.
	Int int64

	// Float holds the value for Float tokens.
	Float float64
}

func (t Token) String() string {
	switch t.Kind {
	case Ident, String, Int, Float:
		return fmt.Sprintf("%s %q", t.Kind, t.Text)
	default:
		return t.Kind.String()
	}
}
