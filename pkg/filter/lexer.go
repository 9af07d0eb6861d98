package filter

import (
	"strings"
	"unicode/utf8"
)

// Lexer splits an expression into tokens on demand. It never fails:
// malformed input produces TokUnknown tokens and the parser reports them.
type Lexer struct {
	input string
	pos   int
}

// NewLexer creates a lexer over input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Lex tokenizes the whole input, including the trailing TokEol.
func Lex(input string) []Token {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.Next()
		tokens = append(tokens, tok)
		if tok.Kind == TokEol {
			return tokens
		}
	}
}

// Value returns the text covered by tok. String tokens come back without
// their quotes.
func (l *Lexer) Value(tok Token) string {
	if tok.Start < 0 || tok.End() > len(l.input) {
		return ""
	}
	return l.input[tok.Start:tok.End()]
}

// Input returns the text being scanned.
func (l *Lexer) Input() string {
	return l.input
}

// Next scans the next token. Once the input is exhausted every call
// returns TokEol.
func (l *Lexer) Next() Token {
	l.skipSpaces()

	if l.pos >= len(l.input) {
		return Token{Kind: TokEol, Start: len(l.input)}
	}

	ch := l.input[l.pos]
	switch {
	case isDigit(ch):
		return l.scanNumberOrDate()
	case isLetter(ch):
		return l.scanName()
	case ch == '"' || ch == '\'':
		return l.scanString(ch)
	}

	switch ch {
	case '!':
		switch l.peek(1) {
		case '=':
			return l.emit(TokNotEqual, 2)
		case '~':
			return l.emit(TokNotFuzzyEqual, 2)
		}
	case '~':
		return l.emit(TokFuzzyEqual, 1)
	case '=':
		return l.emit(TokEqual, 1)
	case ':':
		return l.emit(TokColon, 1)
	case '>':
		if l.peek(1) == '=' {
			return l.emit(TokGreaterThanOrEqual, 2)
		}
		return l.emit(TokGreaterThan, 1)
	case '<':
		if l.peek(1) == '=' {
			return l.emit(TokLessThanOrEqual, 2)
		}
		return l.emit(TokLessThan, 1)
	}

	_, width := utf8.DecodeRuneInString(l.input[l.pos:])
	return l.emit(TokUnknown, width)
}

func (l *Lexer) emit(kind TokenKind, width int) Token {
	tok := Token{Kind: kind, Start: l.pos, Len: width}
	l.pos += width
	return tok
}

func (l *Lexer) peek(offset int) byte {
	if p := l.pos + offset; p < len(l.input) {
		return l.input[p]
	}
	return 0
}

func (l *Lexer) skipSpaces() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\n', '\r':
			l.pos++
		default:
			return
		}
	}
}

// scanNumberOrDate treats a dash in the fifth position (YYYY-) as the start
// of a date; anything else is a decimal number.
func (l *Lexer) scanNumberOrDate() Token {
	start := l.pos
	if l.peek(4) == '-' {
		for l.pos < len(l.input) && (isDigit(l.input[l.pos]) || l.input[l.pos] == '-') {
			l.pos++
		}
		return Token{Kind: TokDate, Start: start, Len: l.pos - start}
	}

	seenDot := false
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '.' && !seenDot {
			seenDot = true
		} else if !isDigit(ch) {
			break
		}
		l.pos++
	}
	return Token{Kind: TokNumber, Start: start, Len: l.pos - start}
}

func (l *Lexer) scanName() Token {
	start := l.pos
	for l.pos < len(l.input) && (isLetter(l.input[l.pos]) || l.input[l.pos] == '_') {
		l.pos++
	}
	return Token{Kind: keyword(l.input[start:l.pos]), Start: start, Len: l.pos - start}
}

func keyword(word string) TokenKind {
	switch strings.ToLower(word) {
	case "and":
		return TokAnd
	case "or":
		return TokOr
	case "true":
		return TokTrue
	case "false":
		return TokFalse
	default:
		return TokName
	}
}

// scanString reads up to the matching quote. An unterminated string is
// returned as a TokUnknown spanning the rest of the input.
func (l *Lexer) scanString(quote byte) Token {
	start := l.pos
	end := strings.IndexByte(l.input[start+1:], quote)
	if end < 0 {
		l.pos = len(l.input)
		return Token{Kind: TokUnknown, Start: start, Len: l.pos - start}
	}
	tok := Token{Kind: TokString, Start: start + 1, Len: end}
	l.pos = start + 1 + end + 1
	return tok
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
