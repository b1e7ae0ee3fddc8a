package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// TempFilePrefix is the prefix used for temporary atomic write files.
	TempFilePrefix = "ward-tmp-"

	// FileMode restricts the vault file to its owner.
	FileMode os.FileMode = 0600
)

// ErrNoVault distinguishes a missing vault file (the first-run case)
// from actual IO failure.
var ErrNoVault = errors.New("no vault file")

// Store reads and writes the envelope at a fixed path.
type Store struct {
	Path string
}

// NewStore returns a store for the vault file at path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Exists reports whether a vault file is already present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.Path)
	return err == nil
}

// Load reads and decodes the envelope. A missing file yields ErrNoVault.
func (s *Store) Load() (*Envelope, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrNoVault, s.Path)
		}
		return nil, fmt.Errorf("failed to read vault file: %w", err)
	}
	return UnmarshalEnvelope(data)
}

// Save encodes and writes the envelope all-or-nothing: the bytes go to a
// temp file in the same directory which is then renamed over the target,
// so a crash mid-write leaves the prior vault intact.
func (s *Store) Save(env *Envelope) error {
	data, err := env.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0700); err != nil {
		return fmt.Errorf("failed to create vault directory: %w", err)
	}
	return writeFileAtomic(s.Path, data, FileMode)
}

// writeFileAtomic writes data to a file atomically by writing to a temp
// file and then renaming it to the target filename.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)

	// Create the temporary file in the same directory to ensure the
	// rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(dir, TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name()) // Clean up if we fail before rename

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpFile.Name(), perm); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), filename); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", filename, err)
	}

	return nil
}
