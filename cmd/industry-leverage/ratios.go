// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/industry-leverage/internal/ratios"
	"github.com/pdiddy/industry-leverage/internal/results"
	"github.com/pdiddy/industry-leverage/pkg/types"
)

var ratiosCmd = &cobra.Command{
	Use:   "ratios",
	Short: "Aggregate industry debt-to-assets and debt-to-equity medians",
	Long: `Ratios reads the ingested report rows, computes total debt for each
report, and writes per industry-quarter medians of debt/assets and
debt/equity to a spreadsheet. Reports with zero assets or zero equity are
ignored. The "all" medians count zero-debt reports as 0; the "exclude"
medians cover only reports with debt.`,
	Annotations: map[string]string{sectionAnnotation: "ratios"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRatios(cmd.Context(), ratioConfig(), os.Stdout)
	},
}

func runRatios(ctx context.Context, cfg types.RatioConfig, w io.Writer) error {
	vocab, err := types.LoadVocabulary(cfg.VocabularyFile)
	if err != nil {
		return err
	}
	if err := ratios.CheckVocabulary(vocab); err != nil {
		return err
	}
	groups, err := types.ReadReportGroups(cfg.GroupsFile)
	if err != nil {
		return err
	}

	store, err := results.Open(cfg.DatabasePath, vocab)
	if err != nil {
		return err
	}
	defer store.Close()

	rows, err := store.All(ctx)
	if err != nil {
		return err
	}
	out, err := ratios.Aggregate(rows, groups.ReportIndex())
	if err != nil {
		return err
	}
	if err := ratios.ExportXLSX(out, cfg.OutputFile); err != nil {
		return err
	}
	fmt.Fprintf(w, "Ratios: %d industry-quarters from %d reports, wrote %s\n", len(out), len(rows), cfg.OutputFile)
	return nil
}

func init() {
	ratiosCmd.Flags().String("database-path", "data/output/reports.db", "SQLite result store")
	ratiosCmd.Flags().String("groups-file", "data/output/report_groups.json", "report group JSON from discover")
	ratiosCmd.Flags().String("vocabulary", "", "YAML file listing tracked concepts (default: built-in list)")
	ratiosCmd.Flags().String("output-file", "data/output/industry_ratios.xlsx", "spreadsheet output")

	rootCmd.AddCommand(ratiosCmd)
}
