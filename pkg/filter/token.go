package filter

import "fmt"

// TokenKind is the lexical class of a Token.
type TokenKind int

const (
	TokUnknown TokenKind = iota
	TokNumber
	TokString
	TokDate
	TokName
	TokTrue
	TokFalse
	TokGreaterThan
	TokGreaterThanOrEqual
	TokLessThan
	TokLessThanOrEqual
	TokEqual
	TokNotEqual
	TokFuzzyEqual
	TokNotFuzzyEqual
	TokAnd
	TokOr
	TokColon
	TokEol
)

var tokenNames = [...]string{
	TokUnknown:            "Unknown",
	TokNumber:             "Number",
	TokString:             "String",
	TokDate:               "Date",
	TokName:               "Name",
	TokTrue:               "True",
	TokFalse:              "False",
	TokGreaterThan:        "GreaterThan",
	TokGreaterThanOrEqual: "GreaterThanOrEqual",
	TokLessThan:           "LessThan",
	TokLessThanOrEqual:    "LessThanOrEqual",
	TokEqual:              "Equal",
	TokNotEqual:           "NotEqual",
	TokFuzzyEqual:         "FuzzyEqual",
	TokNotFuzzyEqual:      "NotFuzzyEqual",
	TokAnd:                "And",
	TokOr:                 "Or",
	TokColon:              "Colon",
	TokEol:                "Eol",
}

func (k TokenKind) String() string {
	if k >= 0 && int(k) < len(tokenNames) {
		return tokenNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Symbol returns the operator spelling used when rendering expressions.
func (k TokenKind) Symbol() string {
	switch k {
	case TokGreaterThan:
		return ">"
	case TokGreaterThanOrEqual:
		return ">="
	case TokLessThan:
		return "<"
	case TokLessThanOrEqual:
		return "<="
	case TokEqual:
		return "="
	case TokNotEqual:
		return "!="
	case TokFuzzyEqual:
		return "~"
	case TokNotFuzzyEqual:
		return "!~"
	case TokAnd:
		return "and"
	case TokOr:
		return "or"
	case TokColon:
		return ":"
	default:
		return k.String()
	}
}

const (
	precedenceNone       = 0
	precedenceLogical    = 10
	precedenceComparison = 20
)

// Precedence reports how tightly an infix operator binds. Tokens that are
// not infix operators return 0, which ends an expression.
func (k TokenKind) Precedence() int {
	switch k {
	case TokAnd, TokOr:
		return precedenceLogical
	case TokGreaterThan, TokGreaterThanOrEqual, TokLessThan, TokLessThanOrEqual,
		TokEqual, TokNotEqual, TokFuzzyEqual, TokNotFuzzyEqual:
		return precedenceComparison
	default:
		return precedenceNone
	}
}

// IsInfix reports whether k may appear as the operator of a Binary node.
func (k TokenKind) IsInfix() bool {
	return k.Precedence() > precedenceNone
}

// Token is a span of the lexer input. Start and Len are byte offsets; for
// strings the span excludes the surrounding quotes.
type Token struct {
	Kind  TokenKind
	Start int
	Len   int
}

func (t Token) End() int {
	return t.Start + t.Len
}
