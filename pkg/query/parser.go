package query

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidPattern marks a 'matches' predicate whose right-hand side
// does not compile as a regular expression. It is detected at parse
// time, never deferred to evaluation.
var ErrInvalidPattern = errors.New("invalid match pattern")

// ParseError reports a grammar violation along with the byte offset of
// the offending token.
type ParseError struct {
	Pos int
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse builds a filter expression from a full token sequence. Trailing
// unconsumed tokens are a ParseError. Parsing is pure and performs no
// evaluation.
func Parse(tokens []Token) (Expr, error) {
	p := &parser{toks: tokens}
	expr, err := p.expr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Kind != TokenEOF {
		return nil, &ParseError{Pos: tok.Pos, Msg: fmt.Sprintf("unexpected %s after expression", tok)}
	}
	return expr, nil
}

// ParseString lexes and parses a filter expression in one step.
func ParseString(input string) (Expr, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

type parser struct {
	toks []Token
	pos  int
}

// peek returns the current token, or a TokenEOF token past the end.
func (p *parser) peek() Token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	end := 0
	if n := len(p.toks); n > 0 {
		end = p.toks[n-1].Pos + len(p.toks[n-1].Text)
	}
	return Token{Kind: TokenEOF, Pos: end}
}

func (p *parser) next() Token {
	tok := p.peek()
	if tok.Kind != TokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expr() (Expr, error) {
	return p.orExpr()
}

func (p *parser) orExpr() (Expr, error) {
	left, err := p.andExpr()
	if err != nil {
		return nil, err
	}
	for p.peek().Is(TokenKeyword, "or") {
		p.next()
		right, err := p.andExpr()
		if err != nil {
			return nil, err
		}
		left = &Or{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) andExpr() (Expr, error) {
	left, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.peek().Is(TokenKeyword, "and") {
		p.next()
		right, err := p.primary()
		if err != nil {
			return nil, err
		}
		left = &And{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) primary() (Expr, error) {
	if p.peek().Is(TokenPunct, "(") {
		open := p.next()
		inner, err := p.expr()
		if err != nil {
			return nil, err
		}
		if !p.peek().Is(TokenPunct, ")") {
			return nil, &ParseError{Pos: open.Pos, Msg: "unbalanced parenthesis"}
		}
		p.next()
		return &Group{Inner: inner}, nil
	}
	return p.predicate()
}

func (p *parser) predicate() (Expr, error) {
	ref, err := p.fieldRef()
	if err != nil {
		return nil, err
	}

	opTok := p.peek()
	var op Op
	switch {
	case opTok.Is(TokenKeyword, "is"):
		op = OpIs
	case opTok.Is(TokenKeyword, "contains"):
		op = OpContains
	case opTok.Is(TokenKeyword, "matches"), opTok.Is(TokenKeyword, "like"):
		op = OpMatches
	default:
		return nil, &ParseError{Pos: opTok.Pos, Msg: fmt.Sprintf("expected operator (is, contains, matches), got %s", opTok)}
	}
	p.next()

	valTok := p.peek()
	switch valTok.Kind {
	case TokenIdent, TokenString, TokenKeyword:
		// Keywords are allowed in value position so that e.g.
		// "user is secret" stays expressible without quoting.
	default:
		return nil, &ParseError{Pos: valTok.Pos, Msg: fmt.Sprintf("expected value, got %s", valTok)}
	}
	p.next()

	pred := &Predicate{Ref: ref, Op: op, Value: valTok.Text}
	if op == OpMatches {
		re, err := regexp.Compile(valTok.Text)
		if err != nil {
			return nil, &ParseError{
				Pos: valTok.Pos,
				Msg: fmt.Sprintf("invalid pattern %q: %v", valTok.Text, err),
				Err: ErrInvalidPattern,
			}
		}
		pred.pattern = re
	}
	return pred, nil
}

func (p *parser) fieldRef() (FieldRef, error) {
	tok := p.peek()
	switch {
	case tok.Is(TokenPunct, "."):
		p.next()
		return FieldRef{Wildcard: true}, nil
	case tok.Is(TokenPunct, "$"):
		p.next()
		attr := p.peek()
		if !attr.Is(TokenIdent, "name") {
			return FieldRef{}, &ParseError{Pos: attr.Pos, Msg: fmt.Sprintf("unknown record attribute $%s", attr.Text)}
		}
		p.next()
		return FieldRef{Wildcard: true}, nil
	case tok.Kind == TokenIdent:
		p.next()
		return FieldRef{Name: tok.Text}, nil
	default:
		return FieldRef{}, &ParseError{Pos: tok.Pos, Msg: fmt.Sprintf("expected field reference, got %s", tok)}
	}
}
