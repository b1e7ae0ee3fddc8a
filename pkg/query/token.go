package query

import "fmt"

// TokenKind classifies a lexed token.
type TokenKind int

const (
	// TokenIdent is a maximal run of non-whitespace, non-punctuation
	// characters that is not a keyword.
	TokenIdent TokenKind = iota

	// TokenString is a single-quoted string literal with the quotes
	// stripped and escapes resolved.
	TokenString

	// TokenKeyword is one of the reserved command or filter words.
	// The token text is stored lowercased.
	TokenKeyword

	// TokenPunct is one of ( ) . $ =
	TokenPunct

	// TokenEOF marks the end of input.
	TokenEOF
)

func (k TokenKind) String() string {
	switch k {
	case TokenIdent:
		return "identifier"
	case TokenString:
		return "string"
	case TokenKeyword:
		return "keyword"
	case TokenPunct:
		return "punctuation"
	case TokenEOF:
		return "end of input"
	}
	return "unknown"
}

// Token is a single lexical unit of the command/filter language.
// Pos is the byte offset of the token's first character in the input.
type Token struct {
	Kind TokenKind
	Text string
	Pos  int
}

// Is reports whether the token has the given kind and text. Keyword
// tokens store their text lowercased, so comparison is exact.
func (t Token) Is(kind TokenKind, text string) bool {
	return t.Kind == kind && t.Text == text
}

func (t Token) String() string {
	if t.Kind == TokenEOF {
		return "end of input"
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}

// keywords holds every reserved word of the command and filter language.
// Keywords are matched case-insensitively; see Lexer.
var keywords = map[string]bool{
	"set":       true,
	"del":       true,
	"delete":    true,
	"show":      true,
	"reveal":    true,
	"copy":      true,
	"history":   true,
	"rename":    true,
	"import":    true,
	"secret":    true,
	"sensitive": true,
	"all":       true,
	"and":       true,
	"or":        true,
	"contains":  true,
	"matches":   true,
	"like":      true,
	"is":        true,
}
