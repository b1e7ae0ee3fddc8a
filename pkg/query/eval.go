package query

import "strings"

// Source is the record view the evaluator matches against. The vault's
// record type satisfies it; tests can use any lightweight stand-in.
type Source interface {
	// RecordName returns the record's own name.
	RecordName() string

	// FieldValue returns the value of the field with the given key,
	// and whether the field exists.
	FieldValue(key string) (string, bool)
}

// Matches evaluates a filter expression against a single record. It is
// pure, side-effect free and total: a predicate referencing a field the
// record does not carry evaluates to false, never to an error.
func Matches(expr Expr, src Source) bool {
	switch e := expr.(type) {
	case *Predicate:
		return matchPredicate(e, src)
	case *And:
		return Matches(e.Left, src) && Matches(e.Right, src)
	case *Or:
		return Matches(e.Left, src) || Matches(e.Right, src)
	case *Group:
		return Matches(e.Inner, src)
	}
	return false
}

func matchPredicate(p *Predicate, src Source) bool {
	var subject string
	if p.Ref.Wildcard {
		subject = src.RecordName()
	} else {
		value, ok := src.FieldValue(p.Ref.Name)
		if !ok {
			return false
		}
		subject = value
	}

	switch p.Op {
	case OpIs:
		return subject == p.Value
	case OpContains:
		return strings.Contains(strings.ToLower(subject), strings.ToLower(p.Value))
	case OpMatches:
		return p.pattern != nil && p.pattern.MatchString(subject)
	}
	return false
}
