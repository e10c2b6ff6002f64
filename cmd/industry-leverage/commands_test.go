// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/industry-leverage/internal/results"
	"github.com/pdiddy/industry-leverage/pkg/types"
)

func TestConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	setDefaults()

	cfg := pipelineConfig()
	assert.Equal(t, "data/input/tickers.csv", cfg.Classify.TickersFile)
	assert.Equal(t, "https://api.xbrl.us", cfg.Ingest.XBRL.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Ingest.XBRL.Timeout)
	assert.Equal(t, 55*time.Minute, cfg.Ingest.TokenRefreshAfter)
	assert.Equal(t, 100, cfg.Ingest.ProgressEvery)
	assert.Equal(t, "edgar_db", cfg.Discovery.Name)
	assert.Equal(t, "progress/pipeline.json", cfg.ProgressFile)
	assert.Equal(t, cfg.Discovery.OutputFile, cfg.Ingest.GroupsFile)
	assert.Equal(t, cfg.Ingest.DatabasePath, cfg.Ratios.DatabasePath)
}

func TestBindFlagsOverridesConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	setDefaults()

	require.NoError(t, ingestCmd.Flags().Set("database-path", "/tmp/other.db"))
	require.NoError(t, ingestCmd.Flags().Set("requests-per-minute", "10"))
	t.Cleanup(func() {
		ingestCmd.Flags().Set("database-path", "data/output/reports.db")
		ingestCmd.Flags().Set("requests-per-minute", "60")
		ingestCmd.Flags().Lookup("database-path").Changed = false
		ingestCmd.Flags().Lookup("requests-per-minute").Changed = false
	})
	require.NoError(t, bindFlags(ingestCmd))

	cfg := ingestConfig()
	assert.Equal(t, "/tmp/other.db", cfg.DatabasePath)
	assert.Equal(t, 10, cfg.XBRL.RequestsPerMinute)
	assert.Equal(t, "progress/ingest.json", cfg.CheckpointPath)
}

func TestRunRatios(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "reports.db")
	groupsPath := filepath.Join(dir, "groups.json")
	outPath := filepath.Join(dir, "ratios.xlsx")

	store, err := results.Open(dbPath, types.DefaultVocabulary)
	require.NoError(t, err)
	row := types.NewResultRow("1", types.ExtractedConcepts{Values: map[string]float64{
		"Assets": 200, "StockholdersEquity": 100, "DebtNoncurrent": 50,
	}}, types.DefaultVocabulary)
	_, err = store.Upsert(context.Background(), row)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	groups := types.ReportGroups{{Key: "737_2Q2021", Reports: []types.ReportRef{{ReportID: "1", DocumentType: types.DocQuarterly}}}}
	require.NoError(t, types.WriteReportGroups(groupsPath, groups))

	var out bytes.Buffer
	err = runRatios(context.Background(), types.RatioConfig{
		DatabasePath: dbPath,
		GroupsFile:   groupsPath,
		OutputFile:   outPath,
	}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "1 industry-quarters from 1 reports")

	f, err := excelize.OpenFile(outPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("ratios")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "737_2Q2021", rows[1][0])
	assert.Equal(t, "0.25", rows[1][4])
}

func TestRunExportSIC(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "sic.json")
	require.NoError(t, os.WriteFile(in, []byte(`{"ABCD": "7372", "EFG": "N/A"}`), 0o644))

	var out bytes.Buffer
	cfg := types.SICExportConfig{SICFile: in, OutputFile: filepath.Join(dir, "x", "tickers.xlsx")}
	require.NoError(t, runExportSIC(cfg, &out))
	assert.Contains(t, out.String(), "Exported 2 tickers")

	_, err := os.Stat(cfg.OutputFile)
	assert.NoError(t, err)
}
