// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package checkpoint persists ingestion progress so an interrupted run can
// resume without re-fetching committed report groups.
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// State is the resume point of an ingestion run. The JSON field names
// match the progress files written by earlier versions of the loader.
type State struct {
	// NextGroupIndex is the index of the first group not yet started.
	NextGroupIndex int `json:"start_index"`

	// ProcessedKeys holds every group key whose reports are all stored.
	ProcessedKeys map[string]bool `json:"keys_seen"`
}

// NewState returns an empty state.
func NewState() State {
	return State{ProcessedKeys: map[string]bool{}}
}

// Processed reports whether key was fully committed.
func (s State) Processed(key string) bool {
	return s.ProcessedKeys[key]
}

// MarkProcessed records key as committed at position index. The resume
// index never moves backwards.
func (s *State) MarkProcessed(key string, index int) {
	if s.ProcessedKeys == nil {
		s.ProcessedKeys = map[string]bool{}
	}
	s.ProcessedKeys[key] = true
	if index+1 > s.NextGroupIndex {
		s.NextGroupIndex = index + 1
	}
}

// FileStore keeps State in a JSON file.
type FileStore struct {
	Path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the checkpoint. A missing file yields an empty state; a file
// that cannot be parsed is an error so a bad checkpoint is never mistaken
// for a fresh start.
func (f *FileStore) Load() (State, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewState(), nil
	}
	if err != nil {
		return State{}, fmt.Errorf("reading checkpoint %s: %w", f.Path, err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("parsing checkpoint %s: %w", f.Path, err)
	}
	if s.NextGroupIndex < 0 {
		return State{}, fmt.Errorf("checkpoint %s: negative start_index %d", f.Path, s.NextGroupIndex)
	}
	if s.ProcessedKeys == nil {
		s.ProcessedKeys = map[string]bool{}
	}
	return s, nil
}

// Save replaces the checkpoint atomically.
func (f *FileStore) Save(s State) error {
	if s.ProcessedKeys == nil {
		s.ProcessedKeys = map[string]bool{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling checkpoint: %w", err)
	}
	if err := writeFileAtomic(f.Path, data); err != nil {
		return fmt.Errorf("saving checkpoint %s: %w", f.Path, err)
	}
	return nil
}

// Reset deletes the checkpoint file.
func (f *FileStore) Reset() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing checkpoint %s: %w", f.Path, err)
	}
	return nil
}

// writeFileAtomic writes data to a temp file in path's directory, syncs it
// and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".checkpoint-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	if writeErr == nil {
		writeErr = tmpFile.Sync()
	}
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
