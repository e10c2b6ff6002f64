//go:build mage

package main

import "github.com/magefile/mage/mg"

// Stage groups the pipeline stage targets.
type Stage mg.Namespace

// Classify maps the spin-off tickers in data/input/tickers.csv to SIC codes.
func (Stage) Classify() error {
	return runStage("classify")
}

// Discover finds the filings for each industry and quarter.
func (Stage) Discover() error {
	return runStage("discover")
}

// Ingest extracts concepts from every discovered filing, resuming from the
// checkpoint.
func (Stage) Ingest() error {
	return runStage("ingest")
}

// Ratios writes the industry leverage spreadsheet.
func (Stage) Ratios() error {
	return runStage("ratios")
}

// ExportSIC writes the ticker/SIC spreadsheet.
func (Stage) ExportSIC() error {
	return runStage("export-sic")
}

// Pipeline runs every stage in order.
func Pipeline() error {
	mg.Deps(Init)
	return runStage("pipeline")
}
