// Package vault holds the in-memory collection of secret records: field
// mutation, append-only history capture, redaction of sensitive values
// and tombstoning of deleted records.
//
// The vault assumes exclusive, sequential access. Every operation either
// fully updates the record plus its history or makes no change, so a
// caller may stop between operations with no partial-mutation risk. A
// multi-threaded host must wrap the vault in its own mutual exclusion.
package vault

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sealkeep/ward/pkg/query"
)

// Assignment is one field mutation supplied to Set.
type Assignment struct {
	Key       string
	Value     string
	Sensitive bool
}

// Vault owns all records between unlock and persist. Records keep
// insertion order; deleted records move to a tombstone list so their
// history stays addressable.
type Vault struct {
	records    []*Record
	tombstones []*Record

	// now is the clock used for timestamps; replaceable in tests.
	now func() time.Time
}

// New returns an empty vault.
func New() *Vault {
	return &Vault{now: time.Now}
}

// Len returns the number of live records.
func (v *Vault) Len() int {
	return len(v.records)
}

// Set creates the named record if absent (fresh UUID, empty history) and
// applies the assignments in order. Overwriting an existing field first
// archives its prior value and sensitivity as a FieldSet history entry;
// a fresh field is inserted without one.
func (v *Vault) Set(name string, assignments []Assignment) {
	rec := v.lookup(name)
	if rec == nil {
		rec = &Record{
			ID:        uuid.New(),
			Name:      name,
			CreatedAt: v.now(),
		}
		v.records = append(v.records, rec)
	}

	for _, a := range assignments {
		if f := rec.field(a.Key); f != nil {
			rec.History = append(rec.History, HistoryEntry{
				Timestamp:      v.now(),
				Kind:           FieldSet,
				FieldKey:       f.Key,
				PriorValue:     f.Value,
				PriorSensitive: f.Sensitive,
			})
			f.Value = a.Value
			f.Sensitive = a.Sensitive
		} else {
			rec.Fields = append(rec.Fields, Field{
				Key:       a.Key,
				Value:     a.Value,
				Sensitive: a.Sensitive,
			})
		}
	}

	rec.UpdatedAt = v.now()
}

// Delete removes a whole record. The record is tombstoned: a
// RecordDeleted entry snapshotting its remaining fields is appended and
// the record becomes unreachable for Set/Show/Reveal while History keeps
// answering for its name. Returns a snapshot of the record as it was.
func (v *Vault) Delete(name string) (*Record, error) {
	for i, rec := range v.records {
		if rec.Name != name {
			continue
		}
		snapshot := rec.clone()
		rec.History = append(rec.History, HistoryEntry{
			Timestamp: v.now(),
			Kind:      RecordDeleted,
			Fields:    append([]Field(nil), rec.Fields...),
		})
		rec.Fields = nil
		rec.UpdatedAt = v.now()
		v.records = append(v.records[:i], v.records[i+1:]...)
		v.tombstones = append(v.tombstones, rec)
		return snapshot, nil
	}
	return nil, fmt.Errorf("delete %q: %w", name, ErrRecordNotFound)
}

// DeleteFields removes the given fields from a record, appending one
// FieldDeleted history entry per field actually present. Keys the record
// does not carry are ignored; partial application is allowed.
func (v *Vault) DeleteFields(name string, keys []string) (*Record, error) {
	rec := v.lookup(name)
	if rec == nil {
		return nil, fmt.Errorf("delete fields of %q: %w", name, ErrRecordNotFound)
	}

	for _, key := range keys {
		for i, f := range rec.Fields {
			if f.Key != key {
				continue
			}
			rec.History = append(rec.History, HistoryEntry{
				Timestamp:      v.now(),
				Kind:           FieldDeleted,
				FieldKey:       f.Key,
				PriorValue:     f.Value,
				PriorSensitive: f.Sensitive,
			})
			rec.Fields = append(rec.Fields[:i], rec.Fields[i+1:]...)
			break
		}
	}

	rec.UpdatedAt = v.now()
	return rec.clone(), nil
}

// Show returns the records matching the filter, in vault iteration
// order, with every sensitive value replaced by the mask string.
func (v *Vault) Show(expr query.Expr) []*Record {
	return v.search(expr, true)
}

// Reveal returns the records matching the filter with actual values.
func (v *Vault) Reveal(expr query.Expr) []*Record {
	return v.search(expr, false)
}

// All returns every live record, redacted or not.
func (v *Vault) All(redact bool) []*Record {
	out := make([]*Record, 0, len(v.records))
	for _, rec := range v.records {
		out = append(out, v.copyOut(rec, redact))
	}
	return out
}

// Get returns a single record by name, redacted or not.
func (v *Vault) Get(name string, redact bool) (*Record, error) {
	rec := v.lookup(name)
	if rec == nil {
		return nil, fmt.Errorf("get %q: %w", name, ErrRecordNotFound)
	}
	return v.copyOut(rec, redact), nil
}

// History returns a record's change log oldest-first. Tombstoned records
// still answer. With reveal false, prior values whose field was
// sensitive are masked, as are sensitive fields inside RecordDeleted
// snapshots.
func (v *Vault) History(name string, reveal bool) ([]HistoryEntry, error) {
	rec := v.lookup(name)
	if rec == nil {
		rec = v.lookupTombstone(name)
	}
	if rec == nil {
		return nil, fmt.Errorf("history of %q: %w", name, ErrRecordNotFound)
	}

	entries := cloneHistory(rec.History)
	if !reveal {
		for i := range entries {
			if entries[i].PriorSensitive {
				entries[i].PriorValue = Mask
			}
			for j := range entries[i].Fields {
				if entries[i].Fields[j].Sensitive {
					entries[i].Fields[j].Value = Mask
				}
			}
		}
	}
	return entries, nil
}

// Rename changes a record's name. The id and history are untouched.
func (v *Vault) Rename(oldName, newName string) error {
	rec := v.lookup(oldName)
	if rec == nil {
		return fmt.Errorf("rename %q: %w", oldName, ErrRecordNotFound)
	}
	if v.lookup(newName) != nil {
		return fmt.Errorf("rename to %q: %w", newName, ErrNameTaken)
	}
	rec.Name = newName
	rec.UpdatedAt = v.now()
	return nil
}

// FieldValue resolves a field's actual value, e.g. for a clipboard copy
// performed by the caller. Sensitivity does not block resolution.
func (v *Vault) FieldValue(name, key string) (string, error) {
	rec := v.lookup(name)
	if rec == nil {
		return "", fmt.Errorf("copy from %q: %w", name, ErrRecordNotFound)
	}
	value, ok := rec.FieldValue(key)
	if !ok {
		return "", fmt.Errorf("copy %q from %q: %w", key, name, ErrFieldNotFound)
	}
	return value, nil
}

func (v *Vault) search(expr query.Expr, redact bool) []*Record {
	var out []*Record
	for _, rec := range v.records {
		if query.Matches(expr, rec) {
			out = append(out, v.copyOut(rec, redact))
		}
	}
	return out
}

func (v *Vault) copyOut(rec *Record, redact bool) *Record {
	cp := rec.clone()
	if redact {
		Redact(cp)
	}
	return cp
}

// Redact replaces every sensitive field value of rec with the mask
// string, in place.
func Redact(rec *Record) {
	for i := range rec.Fields {
		if rec.Fields[i].Sensitive {
			rec.Fields[i].Value = Mask
		}
	}
}

func (v *Vault) lookup(name string) *Record {
	for _, rec := range v.records {
		if rec.Name == name {
			return rec
		}
	}
	return nil
}

// lookupTombstone scans newest-first so the latest deletion under a
// reused name wins.
func (v *Vault) lookupTombstone(name string) *Record {
	for i := len(v.tombstones) - 1; i >= 0; i-- {
		if v.tombstones[i].Name == name {
			return v.tombstones[i]
		}
	}
	return nil
}
