// Package lexer converts SPath expression text into a token stream.
//
// The lexer is total: Tokenize either returns the complete token stream,
// terminated by an EOF token, or a single *Error carrying the byte offset of
// the first offending character. It never recovers silently.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Error is a lexical error at a byte offset of the source.
type Error struct {
	Offset int
	Msg    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at offset %d", e.Msg, e.Offset)
}

// Tokenize scans the whole source and returns its tokens.
// The returned stream always ends with an EOF token on success.
func Tokenize(source string) ([]Token, error) {
	l := &lexer{source: source}
	var tokens []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			return tokens, nil
		}
	}
}

type lexer struct {
	source string
	pos    int
}

func (l *lexer) next() (Token, error) {
	l.skipBlank()
	start := l.pos

	if l.pos >= len(l.source) {
		return l.emit(EOF, start), nil
	}

	c := l.source[l.pos]
	switch {
	case c == '$':
		l.pos++
		return l.emit(Root, start), nil
	case c == '@':
		l.pos++
		return l.emit(Current, start), nil
	case c == '.':
		l.pos++
		if l.peek() == '.' {
			l.pos++
			return l.emit(DotDot, start), nil
		}
		return l.emit(Dot, start), nil
	case c == '[':
		l.pos++
		return l.emit(LBracket, start), nil
	case c == ']':
		l.pos++
		return l.emit(RBracket, start), nil
	case c == '(':
		l.pos++
		return l.emit(LParen, start), nil
	case c == ')':
		l.pos++
		return l.emit(RParen, start), nil
	case c == ',':
		l.pos++
		return l.emit(Comma, start), nil
	case c == ':':
		l.pos++
		return l.emit(Colon, start), nil
	case c == '?':
		l.pos++
		return l.emit(Question, start), nil
	case c == '*':
		l.pos++
		return l.emit(Star, start), nil
	case c == '=':
		l.pos++
		if l.peek() != '=' {
			return Token{}, &Error{Offset: start, Msg: "invalid character '=', expected '=='"}
		}
		l.pos++
		return l.emit(Eq, start), nil
	case c == '!':
		l.pos++
		if l.peek() == '=' {
			l.pos++
			return l.emit(Ne, start), nil
		}
		return l.emit(Not, start), nil
	case c == '<':
		l.pos++
		if l.peek() == '=' {
			l.pos++
			return l.emit(Le, start), nil
		}
		return l.emit(Lt, start), nil
	case c == '>':
		l.pos++
		if l.peek() == '=' {
			l.pos++
			return l.emit(Ge, start), nil
		}
		return l.emit(Gt, start), nil
	case c == '&':
		l.pos++
		if l.peek() != '&' {
			return Token{}, &Error{Offset: start, Msg: "invalid character '&', expected '&&'"}
		}
		l.pos++
		return l.emit(And, start), nil
	case c == '|':
		l.pos++
		if l.peek() != '|' {
			return Token{}, &Error{Offset: start, Msg: "invalid character '|', expected '||'"}
		}
		l.pos++
		return l.emit(Or, start), nil
	case c == '\'' || c == '"':
		return l.scanString(start, c)
	case c == '-' || isDigit(c):
		return l.scanNumber(start)
	default:
		return l.scanIdent(start)
	}
}

func (l *lexer) peek() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	return l.source[l.pos]
}

func (l *lexer) skipBlank() {
	for l.pos < len(l.source) {
		switch l.source[l.pos] {
		case ' ', '\t', '\n', '\r':
			l.pos++
		default:
			return
		}
	}
}

func (l *lexer) emit(kind Kind, start int) Token {
	return Token{
		Kind: kind,
		Span: Span{Start: start, End: l.pos},
		Text: l.source[start:l.pos],
	}
}

// scanString consumes a quoted string literal and decodes its escapes.
// Supported escapes follow RFC 9535: \b \f \n \r \t \/ \\ the quote
// character itself, and \uXXXX including surrogate pairs.
func (l *lexer) scanString(start int, quote byte) (Token, error) {
	l.pos++ // opening quote
	var b strings.Builder
	for {
		if l.pos >= len(l.source) {
			return Token{}, &Error{Offset: start, Msg: "unterminated string literal"}
		}
		c := l.source[l.pos]
		switch c {
		case quote:
			l.pos++
			tok := l.emit(String, start)
			tok.Str = b.String()
			return tok, nil
		case '\\':
			l.pos++
			if l.pos >= len(l.source) {
				return Token{}, &Error{Offset: start, Msg: "unterminated string literal"}
			}
			if err := l.scanEscape(&b, quote); err != nil {
				return Token{}, err
			}
		default:
			r, size := utf8.DecodeRuneInString(l.source[l.pos:])
			if r == utf8.RuneError && size == 1 {
				return Token{}, &Error{Offset: l.pos, Msg: "invalid UTF-8 in string literal"}
			}
			b.WriteRune(r)
			l.pos += size
		}
	}
}

func (l *lexer) scanEscape(b *strings.Builder, quote byte) error {
	c := l.source[l.pos]
	switch c {
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case '/':
		b.WriteByte('/')
	case '\\':
		b.WriteByte('\\')
	case quote:
		b.WriteByte(quote)
	case 'u':
		r, err := l.scanUnicodeEscape()
		if err != nil {
			return err
		}
		b.WriteRune(r)
		return nil
	default:
		return &Error{Offset: l.pos - 1, Msg: fmt.Sprintf("invalid escape sequence '\\%c'", c)}
	}
	l.pos++
	return nil
}

func (l *lexer) scanUnicodeEscape() (rune, error) {
	escStart := l.pos - 1
	l.pos++ // 'u'
	first, err := l.scanHex4(escStart)
	if err != nil {
		return 0, err
	}
	if utf16IsHighSurrogate(first) {
		if l.pos+1 < len(l.source) && l.source[l.pos] == '\\' && l.source[l.pos+1] == 'u' {
			save := l.pos
			l.pos += 2
			second, err := l.scanHex4(escStart)
			if err != nil {
				return 0, err
			}
			if utf16IsLowSurrogate(second) {
				return utf16Combine(first, second), nil
			}
			l.pos = save
		}
		return unicode.ReplacementChar, nil
	}
	if utf16IsLowSurrogate(first) {
		return unicode.ReplacementChar, nil
	}
	return rune(first), nil
}

func (l *lexer) scanHex4(escStart int) (uint32, error) {
	if l.pos+4 > len(l.source) {
		return 0, &Error{Offset: escStart, Msg: "invalid unicode escape sequence"}
	}
	v, err := strconv.ParseUint(l.source[l.pos:l.pos+4], 16, 32)
	if err != nil {
		return 0, &Error{Offset: escStart, Msg: "invalid unicode escape sequence"}
	}
	l.pos += 4
	return uint32(v), nil
}

func utf16IsHighSurrogate(v uint32) bool { return v >= 0xD800 && v <= 0xDBFF }
func utf16IsLowSurrogate(v uint32) bool  { return v >= 0xDC00 && v <= 0xDFFF }

func utf16Combine(high, low uint32) rune {
	return rune((high-0xD800)<<10 | (low - 0xDC00) + 0x10000)
}

// scanNumber consumes an integer or float literal, including a leading minus.
func (l *lexer) scanNumber(start int) (Token, error) {
	if l.source[l.pos] == '-' {
		l.pos++
		if !isDigit(l.peek()) {
			return Token{}, &Error{Offset: start, Msg: "invalid character '-'"}
		}
	}
	for isDigit(l.peek()) {
		l.pos++
	}

	isFloat := false
	if l.peek() == '.' && l.pos+1 < len(l.source) && isDigit(l.source[l.pos+1]) {
		isFloat = true
		l.pos++
		for isDigit(l.peek()) {
			l.pos++
		}
	}
	if c := l.peek(); c == 'e' || c == 'E' {
		mark := l.pos
		l.pos++
		if c := l.peek(); c == '+' || c == '-' {
			l.pos++
		}
		if !isDigit(l.peek()) {
			l.pos = mark
		} else {
			isFloat = true
			for isDigit(l.peek()) {
				l.pos++
			}
		}
	}

	text := l.source[start:l.pos]
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Token{}, &Error{Offset: start, Msg: fmt.Sprintf("invalid float literal %q", text)}
		}
		tok := l.emit(Float, start)
		tok.Float = f
		return tok, nil
	}

	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return Token{}, &Error{Offset: start, Msg: fmt.Sprintf("integer literal %q out of range", text)}
	}
	tok := l.emit(Int, start)
	tok.Int = n
	return tok, nil
}

func (l *lexer) scanIdent(start int) (Token, error) {
	r, size := utf8.DecodeRuneInString(l.source[l.pos:])
	if !isIdentStart(r) {
		return Token{}, &Error{Offset: start, Msg: fmt.Sprintf("invalid character %q", r)}
	}
	l.pos += size
	for l.pos < len(l.source) {
		r, size := utf8.DecodeRuneInString(l.source[l.pos:])
		if !isIdentPart(r) {
			break
		}
		l.pos += size
	}

	tok := l.emit(Ident, start)
	switch tok.Text {
	case "true":
		tok.Kind = True
	case "false":
		tok.Kind = False
	case "null":
		tok.Kind = Null
	}
	return tok, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r >= 0x80
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}
