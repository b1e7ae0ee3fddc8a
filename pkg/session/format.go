package session

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sealkeep/ward/pkg/vault"
)

// FormatRecord renders a record as one line: the quoted name followed by
// its fields sorted by key. Masked values print bare so they read as a
// mask, not as a literal.
func FormatRecord(rec *vault.Record) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "'%s'", rec.Name)

	fields := append([]vault.Field(nil), rec.Fields...)
	sort.Slice(fields, func(i, j int) bool { return fields[i].Key < fields[j].Key })

	for _, f := range fields {
		sb.WriteByte(' ')
		sb.WriteString(formatField(f))
	}
	return sb.String()
}

// FormatHistoryEntry renders one change-log entry with its timestamp.
func FormatHistoryEntry(entry vault.HistoryEntry) string {
	ts := entry.Timestamp.Format("2006-01-02 15:04 -07:00")
	switch entry.Kind {
	case vault.FieldSet:
		return fmt.Sprintf("(%s) set %s: was %s", ts, entry.FieldKey, formatValue(entry.PriorValue))
	case vault.FieldDeleted:
		return fmt.Sprintf("(%s) deleted %s: was %s", ts, entry.FieldKey, formatValue(entry.PriorValue))
	case vault.RecordDeleted:
		var sb strings.Builder
		fmt.Fprintf(&sb, "(%s) record deleted", ts)
		fields := append([]vault.Field(nil), entry.Fields...)
		sort.Slice(fields, func(i, j int) bool { return fields[i].Key < fields[j].Key })
		for _, f := range fields {
			sb.WriteByte(' ')
			sb.WriteString(formatField(f))
		}
		return sb.String()
	}
	return fmt.Sprintf("(%s) %s", ts, entry.Kind)
}

func formatField(f vault.Field) string {
	return fmt.Sprintf("%s=%s", f.Key, formatValue(f.Value))
}

func formatValue(value string) string {
	if value == vault.Mask {
		return vault.Mask
	}
	return fmt.Sprintf("'%s'", value)
}
