// Package store persists the user dictionary as a single JSON document
// mapping word UUIDs to save-format entries. Every edit is a full-document
// read/rewrite; there is no entry-level granularity.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/ttsforge/voxdict/pkg/word"
)

// CorruptError reports a persisted document that failed schema validation.
type CorruptError struct {
	Path   string
	Reason string
	Err    error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt dictionary document %s: %s", e.Path, e.Reason)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// Store reads and replaces the persisted dictionary document. Read and Write
// are individually safe for concurrent use; callers that need a whole
// read-modify-write cycle to be atomic must hold their own lock around it.
type Store struct {
	mu   sync.Mutex
	path string
}

// New returns a Store backed by the document at path. The document does not
// need to exist yet.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the location of the persisted document.
func (s *Store) Path() string { return s.path }

// Read returns the persisted dictionary, or an empty one if no document
// exists. Any entry that fails schema validation, and any key that is not a
// valid UUID, makes the whole document corrupt.
func (s *Store) Read() (map[string]word.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]word.Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dictionary document: %w", err)
	}

	var saved map[string]word.SaveFormatEntry
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, &CorruptError{Path: s.path, Reason: "invalid JSON", Err: err}
	}

	dict := make(map[string]word.Entry, len(saved))
	for id, s2 := range saved {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, &CorruptError{Path: s.path, Reason: fmt.Sprintf("key %q is not a UUID", id), Err: err}
		}
		entry, err := word.FromSaveFormat(s2)
		if err != nil {
			return nil, &CorruptError{Path: s.path, Reason: fmt.Sprintf("entry %s failed validation", id), Err: err}
		}
		dict[parsed.String()] = entry
	}
	return dict, nil
}

// Write serializes the whole dictionary and atomically replaces the
// persisted document, so a concurrent reader never observes a partial write.
func (s *Store) Write(dict map[string]word.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := make(map[string]word.SaveFormatEntry, len(dict))
	for id, entry := range dict {
		saved[id] = word.ToSaveFormat(entry)
	}
	data, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize dictionary: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dictionary directory: %w", err)
	}

	// Write to a sibling temp file and rename over the target so the
	// replacement is atomic on the same filesystem.
	tmp, err := os.CreateTemp(dir, ".userdict-*.json")
	if err != nil {
		return fmt.Errorf("create temp document: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp document: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp document: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace dictionary document: %w", err)
	}
	return nil
}
