package vault

import (
	"errors"
	"testing"
	"time"

	"github.com/sealkeep/ward/pkg/query"
)

func set(v *Vault, name string, assigns ...Assignment) {
	v.Set(name, assigns)
}

func plain(key, value string) Assignment {
	return Assignment{Key: key, Value: value}
}

func sensitive(key, value string) Assignment {
	return Assignment{Key: key, Value: value, Sensitive: true}
}

func TestSet(t *testing.T) {
	t.Run("Creates Record With Stable ID", func(t *testing.T) {
		v := New()
		set(v, "gmail", plain("user", "zahash"))

		first, err := v.Get("gmail", false)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}

		set(v, "gmail", plain("pass", "amogus"))
		second, err := v.Get("gmail", false)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}

		if first.ID != second.ID {
			t.Errorf("record ID changed across sets: %s vs %s", first.ID, second.ID)
		}
		if len(second.Fields) != 2 {
			t.Errorf("expected 2 fields, got %d", len(second.Fields))
		}
	})

	t.Run("Fresh Field Has No History Entry", func(t *testing.T) {
		v := New()
		set(v, "gmail", plain("user", "zahash"), plain("pass", "amogus"))

		entries, err := v.History("gmail", true)
		if err != nil {
			t.Fatalf("History failed: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("expected empty history after initial set, got %d entries", len(entries))
		}
	})

	t.Run("Overwrite Archives Prior Value", func(t *testing.T) {
		v := New()
		set(v, "gmail", plain("pass", "a"))
		set(v, "gmail", plain("pass", "b"))
		set(v, "gmail", plain("pass", "c"))

		rec, err := v.Get("gmail", false)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got, _ := rec.FieldValue("pass"); got != "c" {
			t.Errorf("expected pass == c, got %q", got)
		}

		entries, err := v.History("gmail", true)
		if err != nil {
			t.Fatalf("History failed: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected exactly 2 history entries, got %d", len(entries))
		}
		for i, want := range []string{"a", "b"} {
			if entries[i].Kind != FieldSet {
				t.Errorf("entry %d: expected FieldSet, got %v", i, entries[i].Kind)
			}
			if entries[i].FieldKey != "pass" || entries[i].PriorValue != want {
				t.Errorf("entry %d: expected prior %q of pass, got %+v", i, want, entries[i])
			}
		}
	})

	t.Run("Overwrite Archives Prior Sensitivity", func(t *testing.T) {
		v := New()
		set(v, "gmail", sensitive("pass", "a"))
		set(v, "gmail", plain("pass", "b"))

		entries, err := v.History("gmail", true)
		if err != nil {
			t.Fatalf("History failed: %v", err)
		}
		if len(entries) != 1 || !entries[0].PriorSensitive {
			t.Errorf("expected one entry with PriorSensitive, got %+v", entries)
		}

		rec, _ := v.Get("gmail", false)
		if f := rec.field("pass"); f == nil || f.Sensitive {
			t.Errorf("expected pass to be non-sensitive after overwrite, got %+v", f)
		}
	})
}

func TestDeleteFields(t *testing.T) {
	v := New()
	set(v, "gmail", plain("user", "zahash"), sensitive("pass", "amogus"))

	rec, err := v.DeleteFields("gmail", []string{"pass", "nosuch"})
	if err != nil {
		t.Fatalf("DeleteFields failed: %v", err)
	}
	if _, ok := rec.FieldValue("pass"); ok {
		t.Error("pass should be gone from active fields")
	}
	if _, ok := rec.FieldValue("user"); !ok {
		t.Error("user should survive")
	}

	entries, err := v.History("gmail", true)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry (missing keys are ignored), got %d", len(entries))
	}
	e := entries[0]
	if e.Kind != FieldDeleted || e.FieldKey != "pass" || e.PriorValue != "amogus" || !e.PriorSensitive {
		t.Errorf("unexpected FieldDeleted entry: %+v", e)
	}
}

func TestDeleteRecord(t *testing.T) {
	v := New()
	set(v, "gmail", plain("url", "mail.google.com"), sensitive("pass", "gpass"))

	snapshot, err := v.Delete("gmail")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if snapshot.Name != "gmail" || len(snapshot.Fields) != 2 {
		t.Errorf("unexpected snapshot: %+v", snapshot)
	}

	t.Run("Gone From Live Set", func(t *testing.T) {
		if v.Len() != 0 {
			t.Errorf("expected empty vault, got %d records", v.Len())
		}
		if _, err := v.Get("gmail", false); !errors.Is(err, ErrRecordNotFound) {
			t.Errorf("expected ErrRecordNotFound, got %v", err)
		}
	})

	t.Run("Tombstone Keeps History", func(t *testing.T) {
		entries, err := v.History("gmail", true)
		if err != nil {
			t.Fatalf("History on tombstone failed: %v", err)
		}
		last := entries[len(entries)-1]
		if last.Kind != RecordDeleted {
			t.Fatalf("expected RecordDeleted entry, got %v", last.Kind)
		}
		if len(last.Fields) != 2 {
			t.Errorf("expected snapshot of 2 remaining fields, got %+v", last.Fields)
		}
	})

	t.Run("Tombstone Not Mutable Via Set", func(t *testing.T) {
		// A set after delete starts a fresh record with a new id.
		set(v, "gmail", plain("user", "fresh"))
		rec, err := v.Get("gmail", false)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if len(rec.History) != 0 {
			t.Errorf("fresh record should have empty history, got %d entries", len(rec.History))
		}
	})

	t.Run("Deleting Missing Record", func(t *testing.T) {
		if _, err := v.Delete("nosuch"); !errors.Is(err, ErrRecordNotFound) {
			t.Errorf("expected ErrRecordNotFound, got %v", err)
		}
	})
}

func TestShowReveal(t *testing.T) {
	v := New()
	set(v, "gmail", plain("user", "zahash"), sensitive("pass", "amogus"))
	set(v, "discord", plain("url", "discord.com"))

	filter, err := query.ParseString(". contains mail")
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}

	t.Run("Show Masks Sensitive Fields", func(t *testing.T) {
		records := v.Show(filter)
		if len(records) != 1 || records[0].Name != "gmail" {
			t.Fatalf("expected only gmail, got %+v", records)
		}
		if got, _ := records[0].FieldValue("pass"); got != Mask {
			t.Errorf("expected masked pass, got %q", got)
		}
		if got, _ := records[0].FieldValue("user"); got != "zahash" {
			t.Errorf("expected plain user untouched, got %q", got)
		}
	})

	t.Run("Reveal Returns Actual Values", func(t *testing.T) {
		records := v.Reveal(filter)
		if got, _ := records[0].FieldValue("pass"); got != "amogus" {
			t.Errorf("expected actual pass, got %q", got)
		}
	})

	t.Run("Results Do Not Alias Vault State", func(t *testing.T) {
		records := v.Reveal(filter)
		records[0].Fields[0].Value = "mutated"

		rec, _ := v.Get("gmail", false)
		if got, _ := rec.FieldValue("user"); got == "mutated" {
			t.Error("query result mutation leaked into the vault")
		}
	})

	t.Run("Preserves Vault Iteration Order", func(t *testing.T) {
		all, err := query.ParseString(". matches '.*'")
		if err != nil {
			t.Fatalf("ParseString failed: %v", err)
		}
		records := v.Show(all)
		if len(records) != 2 || records[0].Name != "gmail" || records[1].Name != "discord" {
			t.Errorf("expected insertion order gmail, discord; got %+v", records)
		}
	})
}

func TestHistoryMasking(t *testing.T) {
	v := New()
	set(v, "gmail", sensitive("pass", "old"))
	set(v, "gmail", sensitive("pass", "new"))
	v.Delete("gmail")

	masked, err := v.History("gmail", false)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if masked[0].PriorValue != Mask {
		t.Errorf("expected masked prior value, got %q", masked[0].PriorValue)
	}
	last := masked[len(masked)-1]
	if last.Fields[0].Value != Mask {
		t.Errorf("expected masked snapshot value, got %q", last.Fields[0].Value)
	}

	revealed, err := v.History("gmail", true)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if revealed[0].PriorValue != "old" {
		t.Errorf("expected revealed prior value, got %q", revealed[0].PriorValue)
	}
}

func TestHistoryOrderedOldestFirst(t *testing.T) {
	v := New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	v.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	set(v, "gmail", plain("pass", "a"))
	set(v, "gmail", plain("pass", "b"))
	set(v, "gmail", plain("pass", "c"))

	entries, _ := v.History("gmail", true)
	for i := 1; i < len(entries); i++ {
		if entries[i].Timestamp.Before(entries[i-1].Timestamp) {
			t.Errorf("history not oldest-first at %d: %v then %v", i, entries[i-1].Timestamp, entries[i].Timestamp)
		}
	}
}

func TestRename(t *testing.T) {
	v := New()
	set(v, "discord", plain("url", "discord.com"))

	if err := v.Rename("gmail", "discord"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}

	set(v, "gmail", plain("user", "zahash"))
	if err := v.Rename("gmail", "discord"); !errors.Is(err, ErrNameTaken) {
		t.Errorf("expected ErrNameTaken, got %v", err)
	}

	before, _ := v.Get("gmail", false)
	if err := v.Rename("gmail", "gmail2"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	after, err := v.Get("gmail2", false)
	if err != nil {
		t.Fatalf("Get after rename failed: %v", err)
	}
	if after.ID != before.ID {
		t.Error("rename must not change the record id")
	}
}

func TestFieldValue(t *testing.T) {
	v := New()
	set(v, "gmail", sensitive("pass", "gpass"))

	if got, err := v.FieldValue("gmail", "pass"); err != nil || got != "gpass" {
		t.Errorf("expected actual value even for sensitive field, got %q, %v", got, err)
	}
	if _, err := v.FieldValue("gmail", "nosuch"); !errors.Is(err, ErrFieldNotFound) {
		t.Errorf("expected ErrFieldNotFound, got %v", err)
	}
	if _, err := v.FieldValue("nosuch", "pass"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}
