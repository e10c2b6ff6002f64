// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pdiddy/industry-leverage/internal/tickers"
	"github.com/pdiddy/industry-leverage/internal/xbrl"
	"github.com/pdiddy/industry-leverage/pkg/types"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Map spin-off tickers to SIC codes",
	Long: `Classify reads a CSV with Spinoff and Date columns, looks up each ticker
in the XBRL US report index and keeps the SIC code of the report whose period
end is closest to the spin-off date. Tickers without a match are recorded as
"N/A". The mapping is written as JSON.

Credentials come from XBRL_EMAIL, XBRL_PASSWORD, XBRL_CLIENT_ID and
XBRL_SECRET (environment, .env, or .secrets/).`,
	Annotations: map[string]string{sectionAnnotation: "classify"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClassify(cmd.Context(), classifyConfig(), os.Stdout)
	},
}

func runClassify(ctx context.Context, cfg types.ClassifyConfig, w io.Writer) error {
	rows, err := tickers.ReadCSV(cfg.TickersFile)
	if err != nil {
		return err
	}

	client := apiClient(cfg.XBRL)
	keeper := xbrl.NewTokenKeeper(authenticator(client, cfg.XBRL), nil, 0)
	if err := keeper.Authenticate(ctx); err != nil {
		return err
	}
	log := logger.WithField("session", uuid.NewString())

	lookup := func(ctx context.Context, ticker string, row tickers.Row) (string, error) {
		token, err := keeper.AccessToken(ctx)
		if err != nil {
			return "", err
		}
		return xbrl.LookupSIC(ctx, client, token, ticker, row.Date)
	}
	res, err := tickers.Classify(ctx, rows, lookup, log, w)
	if err != nil {
		return err
	}

	if err := tickers.WriteSICMapping(cfg.OutputFile, res.Mapping); err != nil {
		return err
	}
	fmt.Fprintf(w, "Wrote %s\n", cfg.OutputFile)
	return nil
}

func init() {
	classifyCmd.Flags().String("tickers-file", "data/input/tickers.csv", "input CSV with Spinoff and Date columns")
	classifyCmd.Flags().String("output-file", "data/output/sic_codes.json", "ticker to SIC JSON output")
	addXBRLFlags(classifyCmd)

	rootCmd.AddCommand(classifyCmd)
}
