// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVocabularyValidate(t *testing.T) {
	tests := []struct {
		name   string
		vocab  Vocabulary
		errMsg string
	}{
		{"default", DefaultVocabulary, ""},
		{"empty", Vocabulary{}, "empty"},
		{"bad identifier", Vocabulary{"Assets; DROP TABLE"}, "invalid concept name"},
		{"reserved", Vocabulary{"source_url"}, "reserved"},
		{"duplicate", Vocabulary{"Assets", "Assets"}, "duplicate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.vocab.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadVocabulary(t *testing.T) {
	v, err := LoadVocabulary("")
	require.NoError(t, err)
	assert.Equal(t, DefaultVocabulary, v)

	path := filepath.Join(t.TempDir(), "concepts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("concepts:\n  - Assets\n  - DebtCurrent\n"), 0o644))
	v, err = LoadVocabulary(path)
	require.NoError(t, err)
	assert.Equal(t, Vocabulary{"Assets", "DebtCurrent"}, v)

	require.NoError(t, os.WriteFile(path, []byte("concepts: []\n"), 0o644))
	_, err = LoadVocabulary(path)
	assert.Error(t, err)
}

func TestNewResultRowDefaultsToZero(t *testing.T) {
	vocab := Vocabulary{"Assets", "Liabilities", "DebtCurrent"}
	row := NewResultRow("42", ExtractedConcepts{
		Values:    map[string]float64{"Assets": 100, "Revenues": 7},
		SourceURL: "https://www.sec.gov/x",
	}, vocab)

	assert.Equal(t, "42", row.ReportID)
	assert.Equal(t, "https://www.sec.gov/x", row.SourceURL)
	assert.Equal(t, map[string]float64{"Assets": 100, "Liabilities": 0, "DebtCurrent": 0}, row.Values)

	empty := NewResultRow("43", ExtractedConcepts{}, vocab)
	assert.Len(t, empty.Values, 3)
	for _, name := range vocab {
		assert.Zero(t, empty.Values[name])
	}
}
