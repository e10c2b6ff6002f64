// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingReturnsEmptyState(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "progress.json"))

	s, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, s.NextGroupIndex)
	assert.NotNil(t, s.ProcessedKeys)
	assert.Empty(t, s.ProcessedKeys)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "progress.json")
	store := NewFileStore(path)

	s := NewState()
	s.MarkProcessed("737_2Q2021", 0)
	s.MarkProcessed("283_1Q2020", 1)
	require.NoError(t, store.Save(s))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, got.NextGroupIndex)
	assert.True(t, got.Processed("737_2Q2021"))
	assert.True(t, got.Processed("283_1Q2020"))
	assert.False(t, got.Processed("131_4Q2019"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start_index":2,"keys_seen":{"737_2Q2021":true,"283_1Q2020":true}}`, string(raw))
}

func TestLoadLegacyProgressFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"start_index": 3, "keys_seen": {"a": true}}`), 0o644))

	s, err := NewFileStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, 3, s.NextGroupIndex)
	assert.True(t, s.Processed("a"))
}

func TestLoadCorruptFileFails(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"truncated", `{"start_index": 3, "keys_`, "parsing checkpoint"},
		{"negative index", `{"start_index": -1, "keys_seen": {}}`, "negative start_index"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "progress.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := NewFileStore(path).Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestMarkProcessedNeverDecreasesIndex(t *testing.T) {
	s := State{}
	s.MarkProcessed("b", 4)
	assert.Equal(t, 5, s.NextGroupIndex)
	s.MarkProcessed("a", 1)
	assert.Equal(t, 5, s.NextGroupIndex)
	assert.True(t, s.Processed("a"))
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "progress.json"))
	for i := 0; i < 3; i++ {
		s := NewState()
		s.MarkProcessed("k", i)
		require.NoError(t, store.Save(s))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "progress.json", entries[0].Name())
}

func TestReset(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "progress.json"))
	require.NoError(t, store.Reset())
	require.NoError(t, store.Save(NewState()))
	require.NoError(t, store.Reset())
	_, err := os.Stat(store.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestStepTracker(t *testing.T) {
	tracker := &StepTracker{Path: filepath.Join(t.TempDir(), "progress", "steps.txt")}

	last, err := tracker.LastCompleted()
	require.NoError(t, err)
	assert.Equal(t, -1, last)

	require.NoError(t, tracker.Complete(2))
	last, err = tracker.LastCompleted()
	require.NoError(t, err)
	assert.Equal(t, 2, last)

	require.NoError(t, tracker.Clear())
	last, err = tracker.LastCompleted()
	require.NoError(t, err)
	assert.Equal(t, -1, last)
}
