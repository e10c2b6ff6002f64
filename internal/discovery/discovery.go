// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discovery finds the filings of every classified spin-off's
// industry in the quarter of the spin-off and groups them by
// industry-quarter key.
package discovery

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/industry-leverage/internal/tickers"
	"github.com/pdiddy/industry-leverage/pkg/types"
)

// ReportFinder lists 10-Q and 10-K reports whose period ends within
// [start, end] for companies whose SIC code starts with sicPrefix.
type ReportFinder interface {
	FindReports(ctx context.Context, sicPrefix string, start, end time.Time) ([]types.ReportRef, error)
}

// Result holds the outcome of a discovery run.
type Result struct {
	Queried int
	Skipped int
	Failed  int
	Reports int
	Groups  types.ReportGroups
}

// HasFailures reports whether any query failed.
func (r Result) HasFailures() bool {
	return r.Failed > 0
}

// Discover queries finder once per ticker row with a known SIC code. Keys
// appear in first-seen order; a later row with the same key replaces that
// key's report list. Failed queries are logged and skipped.
func Discover(ctx context.Context, rows []tickers.Row, sics tickers.SICMapping, finder ReportFinder, log logrus.FieldLogger, w io.Writer) (Result, error) {
	var res Result
	for _, row := range rows {
		sic, ok := sics.Lookup(row.Spinoff)
		if !ok {
			res.Skipped++
			continue
		}
		key := types.GroupKeyFor(sic, row.Date)
		start, end := types.QuarterBounds(row.Date)

		refs, err := finder.FindReports(ctx, key.SIC, start, end)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			log.WithError(err).WithFields(logrus.Fields{
				"ticker": row.Spinoff,
				"key":    key.String(),
			}).Warn("report query failed")
			res.Failed++
			continue
		}
		res.Queried++
		res.Groups.Set(key.String(), refs)
		fmt.Fprintf(w, "%-12s %-8s %d reports\n", key, row.Spinoff, len(refs))
	}
	res.Reports = res.Groups.TotalReports()
	fmt.Fprintf(w, "\nDiscovery summary: %d groups, %d reports, %d skipped, %d failed\n",
		len(res.Groups), res.Reports, res.Skipped, res.Failed)
	return res, nil
}
