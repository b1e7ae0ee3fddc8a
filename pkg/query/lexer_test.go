package query

import (
	"errors"
	"testing"
)

func TestTokenize(t *testing.T) {
	t.Run("Keywords And Identifiers", func(t *testing.T) {
		toks, err := Tokenize("set del delete show reveal copy history rename import secret sensitive all and or contains matches like is setter revealed name user pass url")
		if err != nil {
			t.Fatalf("Tokenize failed: %v", err)
		}

		wantKeywords := 18
		for i := 0; i < wantKeywords; i++ {
			if toks[i].Kind != TokenKeyword {
				t.Errorf("token %d (%q): expected keyword, got %s", i, toks[i].Text, toks[i].Kind)
			}
		}
		for i := wantKeywords; i < len(toks); i++ {
			if toks[i].Kind != TokenIdent {
				t.Errorf("token %d (%q): expected identifier, got %s", i, toks[i].Text, toks[i].Kind)
			}
		}
	})

	t.Run("Keywords Are Case Insensitive", func(t *testing.T) {
		toks, err := Tokenize("SHOW Contains aNd")
		if err != nil {
			t.Fatalf("Tokenize failed: %v", err)
		}
		for i, want := range []string{"show", "contains", "and"} {
			if !toks[i].Is(TokenKeyword, want) {
				t.Errorf("token %d: expected keyword %q, got %v", i, want, toks[i])
			}
		}
	})

	t.Run("Quoted Strings", func(t *testing.T) {
		toks, err := Tokenize(`'oh wow spaces' '' 'don\'t panic' 'back\\slash'`)
		if err != nil {
			t.Fatalf("Tokenize failed: %v", err)
		}
		want := []string{"oh wow spaces", "", "don't panic", `back\slash`}
		if len(toks) != len(want) {
			t.Fatalf("expected %d tokens, got %d", len(want), len(toks))
		}
		for i, w := range want {
			if toks[i].Kind != TokenString || toks[i].Text != w {
				t.Errorf("token %d: expected string %q, got %v", i, w, toks[i])
			}
		}
	})

	t.Run("Punctuation And Dotted Identifiers", func(t *testing.T) {
		toks, err := Tokenize("( . mail.google.com ) $name url=x")
		if err != nil {
			t.Fatalf("Tokenize failed: %v", err)
		}
		want := []Token{
			{Kind: TokenPunct, Text: "("},
			{Kind: TokenPunct, Text: "."},
			{Kind: TokenIdent, Text: "mail.google.com"},
			{Kind: TokenPunct, Text: ")"},
			{Kind: TokenPunct, Text: "$"},
			{Kind: TokenIdent, Text: "name"},
			{Kind: TokenIdent, Text: "url"},
			{Kind: TokenPunct, Text: "="},
			{Kind: TokenIdent, Text: "x"},
		}
		if len(toks) != len(want) {
			t.Fatalf("expected %d tokens, got %d: %v", len(want), len(toks), toks)
		}
		for i, w := range want {
			if toks[i].Kind != w.Kind || toks[i].Text != w.Text {
				t.Errorf("token %d: expected %v %q, got %v", i, w.Kind, w.Text, toks[i])
			}
		}
	})

	t.Run("Unterminated String Reports Position", func(t *testing.T) {
		_, err := Tokenize("show user is 'oops")
		var lexErr *LexError
		if !errors.As(err, &lexErr) {
			t.Fatalf("expected LexError, got %v", err)
		}
		if lexErr.Pos != 13 {
			t.Errorf("expected position 13, got %d", lexErr.Pos)
		}
	})

	t.Run("Unrecognized Character", func(t *testing.T) {
		_, err := Tokenize("user \x01 pass")
		var lexErr *LexError
		if !errors.As(err, &lexErr) {
			t.Fatalf("expected LexError, got %v", err)
		}
	})

	t.Run("Empty Input", func(t *testing.T) {
		toks, err := Tokenize("   \t\n ")
		if err != nil {
			t.Fatalf("Tokenize failed: %v", err)
		}
		if len(toks) != 0 {
			t.Errorf("expected no tokens, got %v", toks)
		}
	})
}

func TestLexerRestart(t *testing.T) {
	input := "user is zahash"

	first, err := Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	second, err := Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("restarted lex differs: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("token %d differs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestLexerStreamsEOF(t *testing.T) {
	lx := NewLexer("a")
	if tok, err := lx.Next(); err != nil || tok.Kind != TokenIdent {
		t.Fatalf("expected identifier, got %v, %v", tok, err)
	}
	for i := 0; i < 3; i++ {
		tok, err := lx.Next()
		if err != nil || tok.Kind != TokenEOF {
			t.Fatalf("expected EOF on call %d, got %v, %v", i, tok, err)
		}
	}
}
