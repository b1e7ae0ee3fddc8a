package vault

import (
	"time"

	"github.com/google/uuid"
)

// Mask is the fixed string substituted for sensitive values by Show and
// by unrevealed History output.
const Mask = "*****"

// Field is a single named value within a record. Sensitive fields are
// masked by default and only shown via explicit reveal.
type Field struct {
	Key       string `msgpack:"key"`
	Value     string `msgpack:"value"`
	Sensitive bool   `msgpack:"sensitive"`
}

// HistoryKind classifies a history entry.
type HistoryKind int

const (
	// FieldSet records a field overwrite; PriorValue/PriorSensitive
	// hold the state the field had before.
	FieldSet HistoryKind = iota

	// FieldDeleted records a field removal; PriorValue/PriorSensitive
	// hold the last known state.
	FieldDeleted

	// RecordDeleted records a whole-record deletion; Fields holds a
	// snapshot of the fields the record still carried.
	RecordDeleted
)

func (k HistoryKind) String() string {
	switch k {
	case FieldSet:
		return "set"
	case FieldDeleted:
		return "deleted"
	case RecordDeleted:
		return "record deleted"
	}
	return "unknown"
}

// HistoryEntry is one immutable entry of a record's append-only change
// log, ordered oldest-first.
type HistoryEntry struct {
	Timestamp      time.Time   `msgpack:"timestamp"`
	Kind           HistoryKind `msgpack:"kind"`
	FieldKey       string      `msgpack:"field_key,omitempty"`
	PriorValue     string      `msgpack:"prior_value,omitempty"`
	PriorSensitive bool        `msgpack:"prior_sensitive,omitempty"`
	Fields         []Field     `msgpack:"fields,omitempty"`
}

// Record is a named group of fields representing one credential entry.
// The ID is assigned once at creation and never changes; Name is the
// external lookup key, unique within the vault. Fields keep insertion
// order.
type Record struct {
	ID        uuid.UUID      `msgpack:"id"`
	Name      string         `msgpack:"name"`
	Fields    []Field        `msgpack:"fields"`
	History   []HistoryEntry `msgpack:"history"`
	CreatedAt time.Time      `msgpack:"created_at"`
	UpdatedAt time.Time      `msgpack:"updated_at"`
}

// RecordName implements the query evaluator's record view.
func (r *Record) RecordName() string {
	return r.Name
}

// FieldValue implements the query evaluator's record view.
func (r *Record) FieldValue(key string) (string, bool) {
	for _, f := range r.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// field returns a pointer to the field with the given key, or nil.
func (r *Record) field(key string) *Field {
	for i := range r.Fields {
		if r.Fields[i].Key == key {
			return &r.Fields[i]
		}
	}
	return nil
}

// clone returns a deep copy so callers can hold query results without
// aliasing vault-owned state.
func (r *Record) clone() *Record {
	cp := *r
	cp.Fields = append([]Field(nil), r.Fields...)
	cp.History = cloneHistory(r.History)
	return &cp
}

func cloneHistory(entries []HistoryEntry) []HistoryEntry {
	out := append([]HistoryEntry(nil), entries...)
	for i := range out {
		out[i].Fields = append([]Field(nil), out[i].Fields...)
	}
	return out
}
