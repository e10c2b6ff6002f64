// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/industry-leverage/internal/discovery"
	"github.com/pdiddy/industry-leverage/internal/tickers"
	"github.com/pdiddy/industry-leverage/pkg/types"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find 10-Q/10-K filings for each industry and quarter",
	Long: `Discover takes every classified spin-off, truncates its SIC code to three
digits and queries the XBRL US public database for SEC 10-Q and 10-K reports
whose period ends in the spin-off's calendar quarter. Results are written as
a JSON object keyed "<sic>_<q>Q<yyyy>" in first-seen order.

Database credentials come from DB_USER and DB_PASSWORD unless --database-url
is given.`,
	Annotations: map[string]string{sectionAnnotation: "discovery"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDiscover(cmd.Context(), discoveryConfig(), os.Stdout)
	},
}

func runDiscover(ctx context.Context, cfg types.DiscoveryConfig, w io.Writer) error {
	rows, err := tickers.ReadCSV(cfg.TickersFile)
	if err != nil {
		return err
	}
	sics, err := tickers.ReadSICMapping(cfg.SICFile)
	if err != nil {
		return err
	}

	connString := discovery.ConnString(cfg, loadedSecrets.Get("DB_USER"), loadedSecrets.Get("DB_PASSWORD"))
	finder, err := discovery.NewPostgresFinder(ctx, connString)
	if err != nil {
		return err
	}
	defer finder.Close()

	res, err := discovery.Discover(ctx, rows, sics, finder, logger, w)
	if err != nil {
		return err
	}
	if err := types.WriteReportGroups(cfg.OutputFile, res.Groups); err != nil {
		return err
	}
	fmt.Fprintf(w, "Wrote %s\n", cfg.OutputFile)
	if res.HasFailures() {
		logger.WithField("failed", res.Failed).Warn("some report queries failed; rerun discover to retry them")
	}
	return nil
}

func init() {
	discoverCmd.Flags().String("database-url", "", "Postgres connection string (overrides host, port, name)")
	discoverCmd.Flags().String("host", discovery.DefaultHost, "database host")
	discoverCmd.Flags().Int("port", discovery.DefaultPort, "database port")
	discoverCmd.Flags().String("name", discovery.DefaultName, "database name")
	discoverCmd.Flags().String("tickers-file", "data/input/tickers.csv", "input CSV with Spinoff and Date columns")
	discoverCmd.Flags().String("sic-file", "data/output/sic_codes.json", "ticker to SIC JSON from classify")
	discoverCmd.Flags().String("output-file", "data/output/report_groups.json", "report group JSON output")

	rootCmd.AddCommand(discoverCmd)
}
