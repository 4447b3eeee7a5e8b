// Package storage is the persistence shim: a string-keyed blob store backed
// by a single local JSON file, the server-side analog of the browser's
// localStorage. Values are opaque JSON blobs; callers own their schema.
package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Store persists string-keyed JSON blobs. All methods are safe on a nil
// receiver (no persistence), mirroring how the server runs without a
// configured store path.
type Store struct {
	mu    sync.Mutex
	path  string
	blobs map[string]json.RawMessage
}

// NewStore opens (or creates) the blob file at path.
// If path is empty, NewStore returns (nil, nil) and no persistence occurs.
// A malformed blob file is discarded and logged, never fatal.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, nil
	}

	s := &Store{path: path, blobs: make(map[string]json.RawMessage)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blob store %s: %w", path, err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.blobs); err != nil {
			slog.Warn("discarding corrupt blob store", "tag", "storage", "path", path, "err", err)
			s.blobs = make(map[string]json.RawMessage)
		}
	}
	return s, nil
}

// Get unmarshals the blob stored under key into v.
// Returns false when the key is absent. A corrupt blob is deleted and
// reported as absent, per the recover-by-discarding policy.
func (s *Store) Get(key string, v interface{}) (bool, error) {
	if s == nil {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.blobs[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		slog.Warn("discarding corrupt blob", "tag", "storage", "key", key, "err", err)
		delete(s.blobs, key)
		if werr := s.flushLocked(); werr != nil {
			slog.Error("flushing blob store", "tag", "storage", "err", werr)
		}
		return false, nil
	}
	return true, nil
}

// Set marshals v and stores it under key, rewriting the whole file.
func (s *Store) Set(key string, v interface{}) error {
	if s == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal blob %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = raw
	return s.flushLocked()
}

// Delete removes the blob under key. No-op if absent.
func (s *Store) Delete(key string) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[key]; !ok {
		return nil
	}
	delete(s.blobs, key)
	return s.flushLocked()
}

// flushLocked writes the whole blob map to disk via a temp file rename.
// Caller must hold s.mu.
func (s *Store) flushLocked() error {
	data, err := json.MarshalIndent(s.blobs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal blob store: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".blobstore-*")
	if err != nil {
		return fmt.Errorf("failed to create temp blob file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write blob store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close blob store: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace blob store: %w", err)
	}
	return nil
}
