// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package results

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/industry-leverage/pkg/types"
)

var testVocab = types.Vocabulary{"Assets", "Liabilities", "DebtCurrent"}

func openTestStore(t *testing.T, vocab types.Vocabulary) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "results.db")
	s, err := Open(path, vocab)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func row(id, src string, assets, liabilities, debt float64) types.ResultRow {
	return types.ResultRow{
		ReportID:  id,
		SourceURL: src,
		Values:    map[string]float64{"Assets": assets, "Liabilities": liabilities, "DebtCurrent": debt},
	}
}

func TestUpsertIsIdempotent(t *testing.T) {
	s, _ := openTestStore(t, testVocab)
	ctx := context.Background()

	out, err := s.Upsert(ctx, row("311", "https://a", 100, 50, 10))
	require.NoError(t, err)
	assert.Equal(t, Inserted, out)

	out, err = s.Upsert(ctx, row("311", "https://a", 100, 50, 10))
	require.NoError(t, err)
	assert.Equal(t, Updated, out)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUpsertOverwritesWithLatestValues(t *testing.T) {
	s, _ := openTestStore(t, testVocab)
	ctx := context.Background()

	_, err := s.Upsert(ctx, row("311", "https://a", 100, 50, 10))
	require.NoError(t, err)
	_, err = s.Upsert(ctx, row("311", "https://b", 200, 0, 0))
	require.NoError(t, err)

	got, err := s.Get(ctx, "311")
	require.NoError(t, err)
	assert.Equal(t, "https://b", got.SourceURL)
	assert.Equal(t, map[string]float64{"Assets": 200, "Liabilities": 0, "DebtCurrent": 0}, got.Values)
}

func TestUpdateKeepsSourceURLWhenEmpty(t *testing.T) {
	s, _ := openTestStore(t, testVocab)
	ctx := context.Background()

	_, err := s.Upsert(ctx, row("7", "https://keep", 1, 2, 3))
	require.NoError(t, err)
	_, err = s.Upsert(ctx, row("7", "", 4, 5, 6))
	require.NoError(t, err)

	got, err := s.Get(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "https://keep", got.SourceURL)
	assert.Equal(t, 4.0, got.Values["Assets"])
}

func TestInsertConflict(t *testing.T) {
	s, _ := openTestStore(t, testVocab)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, row("1", "", 1, 1, 1)))
	err := s.Insert(ctx, row("1", "", 2, 2, 2))

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "1", conflict.ReportID)
}

func TestUpdateMissingRow(t *testing.T) {
	s, _ := openTestStore(t, testVocab)
	err := s.Update(context.Background(), row("nope", "", 1, 1, 1))
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestGetMissing(t *testing.T) {
	s, _ := openTestStore(t, testVocab)
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestMissingValuesStoredAsZero(t *testing.T) {
	s, _ := openTestStore(t, testVocab)
	ctx := context.Background()

	r := types.NewResultRow("9", types.ExtractedConcepts{}, testVocab)
	_, err := s.Upsert(ctx, r)
	require.NoError(t, err)

	got, err := s.Get(ctx, "9")
	require.NoError(t, err)
	assert.Len(t, got.Values, len(testVocab))
	for _, name := range testVocab {
		assert.Zero(t, got.Values[name], name)
	}
}

func TestOpenAddsNewVocabularyColumns(t *testing.T) {
	s, path := openTestStore(t, testVocab)
	ctx := context.Background()
	_, err := s.Upsert(ctx, row("1", "https://a", 10, 5, 1))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	wider := append(types.Vocabulary{}, testVocab...)
	wider = append(wider, "StockholdersEquity")
	s2, err := Open(path, wider)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.Values["Assets"])
	assert.Equal(t, 0.0, got.Values["StockholdersEquity"])
}

func TestAllOrderedByReportID(t *testing.T) {
	s, _ := openTestStore(t, testVocab)
	ctx := context.Background()
	for _, id := range []string{"b", "c", "a"} {
		_, err := s.Upsert(ctx, row(id, "", 1, 1, 1))
		require.NoError(t, err)
	}

	rows, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "a", rows[0].ReportID)
	assert.Equal(t, "c", rows[2].ReportID)
}

func TestOpenRejectsBadVocabulary(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "x.db"), types.Vocabulary{"bad name"})
	assert.Error(t, err)
}
