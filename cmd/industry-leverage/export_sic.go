// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/industry-leverage/internal/tickers"
	"github.com/pdiddy/industry-leverage/pkg/types"
)

var exportSICCmd = &cobra.Command{
	Use:         "export-sic",
	Short:       "Write the ticker to SIC mapping as a spreadsheet",
	Long:        `Export-sic converts the classify output into an .xlsx file with Ticker and three-digit SIC columns.`,
	Annotations: map[string]string{sectionAnnotation: "sic_export"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExportSIC(sicExportConfig(), os.Stdout)
	},
}

func runExportSIC(cfg types.SICExportConfig, w io.Writer) error {
	m, err := tickers.ReadSICMapping(cfg.SICFile)
	if err != nil {
		return err
	}
	if err := tickers.ExportXLSX(m, cfg.OutputFile); err != nil {
		return err
	}
	fmt.Fprintf(w, "Exported %d tickers to %s\n", len(m), cfg.OutputFile)
	return nil
}

func init() {
	exportSICCmd.Flags().String("sic-file", "data/output/sic_codes.json", "ticker to SIC JSON from classify")
	exportSICCmd.Flags().String("output-file", "data/output/ticker_sic.xlsx", "spreadsheet output")

	rootCmd.AddCommand(exportSICCmd)
}
