package query

import (
	"fmt"
	"strings"
)

// LexError reports an unlexable input along with the byte offset of the
// offending character.
type LexError struct {
	Pos int
	Msg string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at offset %d: %s", e.Pos, e.Msg)
}

// Lexer turns an input string into a sequence of tokens. It holds no
// state beyond the read position; constructing a new Lexer over the same
// input restarts the sequence. Delimiters are whitespace, single quotes
// and the punctuation characters ( ) = $.
type Lexer struct {
	input string
	pos   int
}

// NewLexer returns a Lexer positioned at the start of input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize lexes the whole input eagerly. It is the common entry point;
// use a Lexer directly when streaming matters.
func Tokenize(input string) ([]Token, error) {
	lx := NewLexer(input)
	var toks []Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == TokenEOF {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}

// Next returns the next token. After the input is exhausted it returns a
// TokenEOF token on every call.
func (l *Lexer) Next() (Token, error) {
	l.skipSpace()

	if l.pos >= len(l.input) {
		return Token{Kind: TokenEOF, Pos: l.pos}, nil
	}

	start := l.pos
	switch c := l.input[l.pos]; c {
	case '\'':
		return l.lexString()
	case '(', ')', '=', '$':
		l.pos++
		return Token{Kind: TokenPunct, Text: string(c), Pos: start}, nil
	default:
		if c < 0x20 || c == 0x7f {
			return Token{}, &LexError{Pos: start, Msg: fmt.Sprintf("unrecognized character %q", c)}
		}
		return l.lexWord()
	}
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\n', '\r':
			l.pos++
		default:
			return
		}
	}
}

// lexString consumes a single-quoted literal. A backslash escapes the
// quote character (and itself) inside the literal.
func (l *Lexer) lexString() (Token, error) {
	start := l.pos
	l.pos++ // opening quote

	var sb strings.Builder
	for l.pos < len(l.input) {
		switch c := l.input[l.pos]; c {
		case '\'':
			l.pos++
			return Token{Kind: TokenString, Text: sb.String(), Pos: start}, nil
		case '\\':
			if l.pos+1 < len(l.input) {
				next := l.input[l.pos+1]
				if next == '\'' || next == '\\' {
					sb.WriteByte(next)
					l.pos += 2
					continue
				}
			}
			sb.WriteByte(c)
			l.pos++
		default:
			sb.WriteByte(c)
			l.pos++
		}
	}

	return Token{}, &LexError{Pos: start, Msg: "unterminated string literal"}
}

// lexWord consumes a maximal run of characters up to whitespace, a quote
// or punctuation. A run that is exactly "." is the name-wildcard
// punctuation; dots inside a longer run stay part of the identifier so
// values like mail.google.com lex as a single token.
func (l *Lexer) lexWord() (Token, error) {
	start := l.pos
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' ||
			c == '\'' || c == '(' || c == ')' || c == '=' || c == '$' {
			break
		}
		l.pos++
	}

	text := l.input[start:l.pos]
	if text == "." {
		return Token{Kind: TokenPunct, Text: ".", Pos: start}, nil
	}
	if lower := strings.ToLower(text); keywords[lower] {
		return Token{Kind: TokenKeyword, Text: lower, Pos: start}, nil
	}
	return Token{Kind: TokenIdent, Text: text, Pos: start}, nil
}
