// Package query implements the filter expression language used to select
// vault records: a lexer, a recursive descent parser producing a small
// AST, and an evaluator that matches one record at a time.
//
// The grammar, lowest to highest precedence:
//
//	expr      := orExpr
//	orExpr    := andExpr ( 'or' andExpr )*
//	andExpr   := primary ( 'and' primary )*
//	primary   := '(' expr ')' | predicate
//	predicate := fieldRef operator value
//	fieldRef  := identifier | '$' 'name' | '.'
//	operator  := 'is' | 'contains' | 'matches'
//	value     := string-literal | identifier
//
// Keywords are matched case-insensitively. 'is' compares exactly,
// 'contains' is a case-insensitive substring test, and 'matches' is an
// unanchored regular expression search whose pattern is compiled at
// parse time.
package query

import "regexp"

// Op is a predicate comparison operator.
type Op int

const (
	OpIs Op = iota
	OpContains
	OpMatches
)

func (op Op) String() string {
	switch op {
	case OpIs:
		return "is"
	case OpContains:
		return "contains"
	case OpMatches:
		return "matches"
	}
	return "unknown"
}

// FieldRef names the left-hand side of a predicate: either a record
// field by key, or the record's own name when Wildcard is set (written
// '.' or '$name' in the source text).
type FieldRef struct {
	Name     string
	Wildcard bool
}

// Expr is a filter expression node. The variant set is closed:
// Predicate, And, Or and Group.
type Expr interface {
	isExpr()
}

// Predicate compares one field (or the record name) against a value.
type Predicate struct {
	Ref   FieldRef
	Op    Op
	Value string

	// pattern is compiled by the parser when Op is OpMatches.
	pattern *regexp.Regexp
}

// And is a short-circuiting conjunction.
type And struct {
	Left, Right Expr
}

// Or is a short-circuiting disjunction.
type Or struct {
	Left, Right Expr
}

// Group is a parenthesized subexpression.
type Group struct {
	Inner Expr
}

func (*Predicate) isExpr() {}
func (*And) isExpr()       {}
func (*Or) isExpr()        {}
func (*Group) isExpr()     {}

// Pattern returns the regular expression compiled for an OpMatches
// predicate, or nil for other operators. Exposed for tests.
func (p *Predicate) Pattern() *regexp.Regexp {
	return p.pattern
}
