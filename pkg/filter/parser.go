package filter

import (
	"strconv"
	"time"
)

// Parser builds an Expr from tokens pulled lazily from a Lexer. A Parser
// holds a cursor and must not be shared between goroutines.
type Parser struct {
	lex *Lexer
	tok Token
}

// NewParser creates a parser for input.
func NewParser(input string) *Parser {
	lex := NewLexer(input)
	return &Parser{lex: lex, tok: lex.Next()}
}

// Parse parses a complete filter expression.
func Parse(input string) (Expr, error) {
	return NewParser(input).Parse()
}

// Parse consumes the whole input and returns its syntax tree.
func (p *Parser) Parse() (Expr, error) {
	return p.parseExpr(precedenceNone)
}

func (p *Parser) advance() Token {
	tok := p.tok
	p.tok = p.lex.Next()
	return tok
}

// parseExpr is a precedence climber: it keeps folding operators that bind
// tighter than minPrecedence into the left operand.
func (p *Parser) parseExpr(minPrecedence int) (Expr, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	for {
		op := p.tok
		if op.Kind == TokEol {
			return left, nil
		}
		if !op.Kind.IsInfix() {
			return nil, syntaxErrorf(op.Start, "unknown infix token: %s at %d", op.Kind, op.Start)
		}
		precedence := op.Kind.Precedence()
		if precedence <= minPrecedence {
			return left, nil
		}
		p.advance()

		right, err := p.parseExpr(precedence)
		if err != nil {
			return nil, err
		}
		left = Binary{Left: left, Operator: op.Kind, Right: right}
	}
}

func (p *Parser) parseOperand() (Expr, error) {
	tok := p.advance()
	switch tok.Kind {
	case TokTrue:
		return Boolean{Value: true}, nil
	case TokFalse:
		return Boolean{Value: false}, nil
	case TokNumber:
		return p.parseNumber(tok)
	case TokString:
		return String{Value: p.lex.Value(tok)}, nil
	case TokName:
		return Variable{Name: p.lex.Value(tok)}, nil
	case TokDate:
		text := p.lex.Value(tok)
		d, err := time.Parse(time.DateOnly, text)
		if err != nil {
			return nil, syntaxErrorf(tok.Start, "Could not parse date %q at %d", text, tok.Start)
		}
		return Date{Value: d}, nil
	default:
		return nil, syntaxErrorf(tok.Start, "unknown left token: %s at %d", tok.Kind, tok.Start)
	}
}

// parseNumber handles a numeric leaf and what may follow it directly: a
// clock continuation (06:00, 1:02:03) or a unit suffix (10km).
func (p *Parser) parseNumber(tok Token) (Expr, error) {
	value, err := p.numberValue(tok)
	if err != nil {
		return nil, err
	}

	if p.tok.Kind == TokColon {
		return p.parseClock(value)
	}

	if p.tok.Kind != TokName {
		return Number{Value: value}, nil
	}

	suffix := p.tok
	unit, ok := ParseUnit(p.lex.Value(suffix))
	if !ok {
		return nil, syntaxErrorf(suffix.Start, "unknown unit: %s at %d", p.lex.Value(suffix), suffix.Start)
	}
	p.advance()
	return Quantity{Value: Number{Value: value}, Unit: unit}, nil
}

// parseClock folds mm:ss or hh:mm:ss into a number of seconds.
func (p *Parser) parseClock(first float64) (Expr, error) {
	total := first
	for parts := 1; p.tok.Kind == TokColon; parts++ {
		colon := p.advance()
		if parts == 3 {
			return nil, syntaxErrorf(colon.Start, "unknown infix token: %s at %d", colon.Kind, colon.Start)
		}
		next := p.advance()
		if next.Kind != TokNumber {
			return nil, syntaxErrorf(next.Start, "expected number after ':' at %d", next.Start)
		}
		v, err := p.numberValue(next)
		if err != nil {
			return nil, err
		}
		total = total*60 + v
	}
	return Number{Value: total}, nil
}

func (p *Parser) numberValue(tok Token) (float64, error) {
	text := p.lex.Value(tok)
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, syntaxErrorf(tok.Start, "Could not parse number %q at %d", text, tok.Start)
	}
	return v, nil
}
