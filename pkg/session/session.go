package session

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/sealkeep/ward/pkg/crypt"
	"github.com/sealkeep/ward/pkg/storage"
	"github.com/sealkeep/ward/pkg/vault"
)

// Result is what a command produced: printable lines, and for copy the
// resolved field value (clipboard writing is the caller's concern).
type Result struct {
	Lines []string
	Value string
}

// Session binds an unlocked vault to its crypto box and backing store.
// Commands are processed one at a time: parse, mutate or query, persist
// if mutating. There is no concurrent access to the vault.
type Session struct {
	vault  *vault.Vault
	box    *crypt.Box
	salt   []byte
	store  *storage.Store
	logger *slog.Logger

	// saving is set around our own writes so the external-change
	// watcher does not report them.
	saving atomic.Bool
}

// New wires a session around an already unlocked vault.
func New(v *vault.Vault, box *crypt.Box, salt []byte, store *storage.Store, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{vault: v, box: box, salt: salt, store: store, logger: logger}
}

// Vault exposes the underlying vault, e.g. for tests.
func (s *Session) Vault() *vault.Vault {
	return s.vault
}

// Exec parses and applies one command line. Lex and parse errors leave
// the vault untouched; a failed persist also leaves the in-memory vault
// intact (the prior on-disk envelope remains valid) so the command can
// be retried.
func (s *Session) Exec(line string) (*Result, error) {
	cmd, err := ParseCommand(line)
	if err != nil {
		return nil, err
	}
	return s.apply(cmd)
}

func (s *Session) apply(cmd Cmd) (*Result, error) {
	switch c := cmd.(type) {
	case *SetCmd:
		s.vault.Set(c.Name, c.Assignments)
		if err := s.Save(); err != nil {
			return nil, err
		}
		return &Result{}, nil

	case *DelCmd:
		var rec *vault.Record
		var err error
		if len(c.Fields) == 0 {
			rec, err = s.vault.Delete(c.Name)
		} else {
			rec, err = s.vault.DeleteFields(c.Name, c.Fields)
		}
		if err != nil {
			return nil, err
		}
		if err := s.Save(); err != nil {
			return nil, err
		}
		vault.Redact(rec)
		return &Result{Lines: []string{FormatRecord(rec)}}, nil

	case *ShowCmd:
		records, err := s.resolve(c.Query, c.Reveal)
		if err != nil {
			return nil, err
		}
		lines := make([]string, 0, len(records))
		for _, rec := range records {
			lines = append(lines, FormatRecord(rec))
		}
		return &Result{Lines: lines}, nil

	case *HistoryCmd:
		entries, err := s.vault.History(c.Name, c.Reveal)
		if err != nil {
			return nil, err
		}
		lines := make([]string, 0, len(entries))
		for _, entry := range entries {
			lines = append(lines, FormatHistoryEntry(entry))
		}
		return &Result{Lines: lines}, nil

	case *CopyCmd:
		value, err := s.vault.FieldValue(c.Name, c.Field)
		if err != nil {
			return nil, err
		}
		return &Result{Value: value}, nil

	case *RenameCmd:
		if err := s.vault.Rename(c.Old, c.New); err != nil {
			return nil, err
		}
		if err := s.Save(); err != nil {
			return nil, err
		}
		return &Result{Lines: []string{fmt.Sprintf("renamed %q to %q", c.Old, c.New)}}, nil

	case *ImportCmd:
		return s.runImport(c.Path)

	default:
		return nil, fmt.Errorf("unhandled command %T", cmd)
	}
}

func (s *Session) resolve(q Query, reveal bool) ([]*vault.Record, error) {
	redact := !reveal
	switch {
	case q.All:
		return s.vault.All(redact), nil
	case q.Name != "":
		rec, err := s.vault.Get(q.Name, redact)
		if err != nil {
			return nil, err
		}
		return []*vault.Record{rec}, nil
	default:
		if reveal {
			return s.vault.Reveal(q.Expr), nil
		}
		return s.vault.Show(q.Expr), nil
	}
}

// runImport applies one set per non-empty input line. A malformed line
// aborts only that line; the rest proceed.
func (s *Session) runImport(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	var imported, skipped int
	var lines []string

	scanner := bufio.NewScanner(f)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, err := ParseImportLine(line)
		if err != nil {
			skipped++
			lines = append(lines, fmt.Sprintf("line %d skipped: %v", lineno, err))
			s.logger.Warn("skipping malformed import line", "line", lineno, "error", err)
			continue
		}
		s.vault.Set(cmd.Name, cmd.Assignments)
		imported++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}

	if imported > 0 {
		if err := s.Save(); err != nil {
			return nil, err
		}
	}

	lines = append(lines, fmt.Sprintf("imported %d records", imported))
	return &Result{Lines: lines}, nil
}

// Save encrypts the vault under a fresh nonce and writes the envelope
// atomically.
func (s *Session) Save() error {
	plaintext, err := s.vault.MarshalBinary()
	if err != nil {
		return err
	}
	nonce, ciphertext, err := s.box.Encrypt(plaintext)
	if err != nil {
		return err
	}

	s.saving.Store(true)
	defer s.saving.Store(false)

	env := &storage.Envelope{Salt: s.salt, Nonce: nonce, Ciphertext: ciphertext}
	if err := s.store.Save(env); err != nil {
		return fmt.Errorf("failed to persist vault (in-memory state kept, retry the command): %w", err)
	}
	s.logger.Debug("vault persisted", "path", s.store.Path, "records", s.vault.Len())
	return nil
}

// Watch logs a warning when the vault file changes outside this session.
func (s *Session) Watch(ctx context.Context) error {
	return s.store.Watch(ctx, s.logger, s.saving.Load)
}
