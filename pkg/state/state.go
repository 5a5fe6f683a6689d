// Package state persists the last-known network identity between runs.
// Each run loads the identity the previous run saved, compares it with the
// freshly resolved one, and writes the current identity back. The file is a
// single JSON document replaced atomically, so a crash mid-write never
// leaves a truncated state behind.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ChiefGyk3D/netpulse/pkg/models"
)

// ErrCorrupt marks a state file that exists but cannot be parsed. Callers
// treat it as a first run rather than aborting.
var ErrCorrupt = errors.New("state file is corrupt")

// Store reads and writes the identity state file at a fixed path.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the state file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the identity saved by the previous run. A missing file is a
// first run and yields (nil, nil); an unparsable file yields an error
// wrapping ErrCorrupt.
func (s *Store) Load() (*models.NetworkIdentity, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var identity models.NetworkIdentity
	if err := json.Unmarshal(data, &identity); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &identity, nil
}

// Save replaces the state file with the given identity. The document is
// written to a temporary file in the same directory, synced, and renamed
// over the old state so readers only ever observe a complete file.
func (s *Store) Save(identity models.NetworkIdentity) error {
	data, err := json.MarshalIndent(identity, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp state file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
