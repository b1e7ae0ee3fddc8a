// Package session executes the interactive command language against an
// unlocked vault: it parses command lines with the query lexer, routes
// filter clauses through the query parser and evaluator, applies vault
// mutations and persists the encrypted envelope after each of them.
package session

import (
	"fmt"

	"github.com/sealkeep/ward/pkg/query"
	"github.com/sealkeep/ward/pkg/vault"
)

// Cmd is one parsed command. The variant set mirrors the command
// language: set, del, show, reveal, history, copy, rename, import.
type Cmd interface {
	isCmd()
}

// SetCmd creates or updates a record.
type SetCmd struct {
	Name        string
	Assignments []vault.Assignment
}

// DelCmd deletes a whole record, or only the listed fields.
type DelCmd struct {
	Name   string
	Fields []string
}

// ShowCmd queries records; Reveal selects unmasked output.
type ShowCmd struct {
	Query  Query
	Reveal bool
}

// HistoryCmd lists a record's change log.
type HistoryCmd struct {
	Name   string
	Reveal bool
}

// CopyCmd resolves a field value for the caller's clipboard.
type CopyCmd struct {
	Name  string
	Field string
}

// RenameCmd changes a record's name.
type RenameCmd struct {
	Old string
	New string
}

// ImportCmd bulk-loads records from a file, one per line.
type ImportCmd struct {
	Path string
}

func (*SetCmd) isCmd()     {}
func (*DelCmd) isCmd()     {}
func (*ShowCmd) isCmd()    {}
func (*HistoryCmd) isCmd() {}
func (*CopyCmd) isCmd()    {}
func (*RenameCmd) isCmd()  {}
func (*ImportCmd) isCmd()  {}

// Query is the target of show/reveal: every record, one record by name,
// or the records matching a filter expression.
type Query struct {
	All  bool
	Name string
	Expr query.Expr
}

// ParseCommand lexes and parses one command line.
func ParseCommand(line string) (Cmd, error) {
	tokens, err := query.Tokenize(line)
	if err != nil {
		return nil, err
	}
	p := &cmdParser{toks: tokens}
	return p.command()
}

// ParseImportLine parses one import file line: a record name followed by
// assignments, the same shape as an interactive set without the keyword.
func ParseImportLine(line string) (*SetCmd, error) {
	tokens, err := query.Tokenize(line)
	if err != nil {
		return nil, err
	}
	p := &cmdParser{toks: tokens}
	cmd, err := p.setBody()
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	return cmd, nil
}

type cmdParser struct {
	toks []query.Token
	pos  int
}

func (p *cmdParser) peek() query.Token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	end := 0
	if n := len(p.toks); n > 0 {
		end = p.toks[n-1].Pos + len(p.toks[n-1].Text)
	}
	return query.Token{Kind: query.TokenEOF, Pos: end}
}

func (p *cmdParser) next() query.Token {
	tok := p.peek()
	if tok.Kind != query.TokenEOF {
		p.pos++
	}
	return tok
}

func (p *cmdParser) errf(pos int, format string, args ...any) error {
	return &query.ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *cmdParser) expectEnd() error {
	if tok := p.peek(); tok.Kind != query.TokenEOF {
		return p.errf(tok.Pos, "unexpected %s at end of command", tok)
	}
	return nil
}

// value accepts any token usable as a bare value: identifiers, quoted
// strings, and keywords (so names like "secret" stay usable).
func (p *cmdParser) value(what string) (string, error) {
	tok := p.peek()
	switch tok.Kind {
	case query.TokenIdent, query.TokenString, query.TokenKeyword:
		p.next()
		return tok.Text, nil
	default:
		return "", p.errf(tok.Pos, "expected %s, got %s", what, tok)
	}
}

func (p *cmdParser) command() (Cmd, error) {
	tok := p.peek()
	if tok.Kind != query.TokenKeyword {
		return nil, p.errf(tok.Pos, "expected a command (set, del, show, reveal, copy, history, rename, import), got %s", tok)
	}

	switch tok.Text {
	case "set":
		p.next()
		cmd, err := p.setBody()
		if err != nil {
			return nil, err
		}
		return cmd, p.expectEnd()

	case "del", "delete":
		p.next()
		name, err := p.value("record name")
		if err != nil {
			return nil, err
		}
		var fields []string
		for p.peek().Kind != query.TokenEOF {
			field, err := p.value("field name")
			if err != nil {
				return nil, err
			}
			fields = append(fields, field)
		}
		return &DelCmd{Name: name, Fields: fields}, nil

	case "show":
		p.next()
		q, err := p.query()
		if err != nil {
			return nil, err
		}
		return &ShowCmd{Query: q}, nil

	case "reveal":
		p.next()
		if p.peek().Is(query.TokenKeyword, "history") {
			p.next()
			name, err := p.value("record name")
			if err != nil {
				return nil, err
			}
			if err := p.expectEnd(); err != nil {
				return nil, err
			}
			return &HistoryCmd{Name: name, Reveal: true}, nil
		}
		q, err := p.query()
		if err != nil {
			return nil, err
		}
		return &ShowCmd{Query: q, Reveal: true}, nil

	case "history":
		p.next()
		name, err := p.value("record name")
		if err != nil {
			return nil, err
		}
		if err := p.expectEnd(); err != nil {
			return nil, err
		}
		return &HistoryCmd{Name: name}, nil

	case "copy":
		p.next()
		name, err := p.value("record name")
		if err != nil {
			return nil, err
		}
		field, err := p.value("field name")
		if err != nil {
			return nil, err
		}
		if err := p.expectEnd(); err != nil {
			return nil, err
		}
		return &CopyCmd{Name: name, Field: field}, nil

	case "rename":
		p.next()
		oldName, err := p.value("current record name")
		if err != nil {
			return nil, err
		}
		newName, err := p.value("new record name")
		if err != nil {
			return nil, err
		}
		if err := p.expectEnd(); err != nil {
			return nil, err
		}
		return &RenameCmd{Old: oldName, New: newName}, nil

	case "import":
		p.next()
		path, err := p.value("file path")
		if err != nil {
			return nil, err
		}
		if err := p.expectEnd(); err != nil {
			return nil, err
		}
		return &ImportCmd{Path: path}, nil

	default:
		return nil, p.errf(tok.Pos, "unknown command %q", tok.Text)
	}
}

// setBody parses `<name> [[sensitive|secret] <field> = <value>]...`.
// Assigning the same field twice in one command is a parse error.
func (p *cmdParser) setBody() (*SetCmd, error) {
	name, err := p.value("record name")
	if err != nil {
		return nil, err
	}

	var assignments []vault.Assignment
	seen := map[string]bool{}
	for {
		tok := p.peek()
		if tok.Kind == query.TokenEOF {
			break
		}

		sensitive := false
		if tok.Is(query.TokenKeyword, "sensitive") || tok.Is(query.TokenKeyword, "secret") {
			sensitive = true
			p.next()
		}

		keyTok := p.peek()
		key, err := p.value("field name")
		if err != nil {
			return nil, err
		}
		if seen[key] {
			return nil, p.errf(keyTok.Pos, "field %q assigned twice", key)
		}
		seen[key] = true

		if eq := p.peek(); !eq.Is(query.TokenPunct, "=") {
			return nil, p.errf(eq.Pos, "expected '=' after field %q, got %s", key, eq)
		}
		p.next()

		value, err := p.value("field value")
		if err != nil {
			return nil, err
		}

		assignments = append(assignments, vault.Assignment{Key: key, Value: value, Sensitive: sensitive})
	}

	return &SetCmd{Name: name, Assignments: assignments}, nil
}

// query parses the target of show/reveal: 'all', a bare record name, or
// a trailing filter expression.
func (p *cmdParser) query() (Query, error) {
	tok := p.peek()
	if tok.Kind == query.TokenEOF {
		return Query{}, p.errf(tok.Pos, "expected 'all', a record name or a filter expression")
	}
	if tok.Is(query.TokenKeyword, "all") && len(p.toks)-p.pos == 1 {
		return Query{All: true}, nil
	}
	if len(p.toks)-p.pos == 1 {
		name, err := p.value("record name")
		if err != nil {
			return Query{}, err
		}
		return Query{Name: name}, nil
	}

	expr, err := query.Parse(p.toks[p.pos:])
	if err != nil {
		return Query{}, err
	}
	p.pos = len(p.toks)
	return Query{Expr: expr}, nil
}
