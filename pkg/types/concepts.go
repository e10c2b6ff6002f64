// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"os"
	"regexp"

	"go.yaml.in/yaml/v3"
)

// NetIncomeConcept is never stored, whatever the document type.
const NetIncomeConcept = "NetIncomeLoss"

// Column names reserved by the result table.
const (
	ColumnReportID  = "report_id"
	ColumnSourceURL = "source_url"
)

// DefaultVocabulary is the set of balance-sheet concepts the leverage
// ratios are computed from.
var DefaultVocabulary = Vocabulary{
	"Assets",
	"AssetsCurrent",
	"Liabilities",
	"StockholdersEquity",
	"DebtCurrent",
	"DebtNoncurrent",
	"LongTermDebtCurrent",
	"LongTermDebtNoncurrent",
	"LinesOfCreditCurrent",
	"CapitalLeaseObligationsCurrent",
	"CapitalLeaseObligationsNoncurrent",
	"FinanceLeaseLiabilityCurrent",
	"FinanceLeaseLiabilityNoncurrent",
}

// Vocabulary is the ordered list of tracked concept local names. Each
// name becomes a REAL column of the result table.
type Vocabulary []string

var conceptNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Validate checks that every name is usable as a column name and that
// there are no duplicates.
func (v Vocabulary) Validate() error {
	if len(v) == 0 {
		return fmt.Errorf("vocabulary is empty")
	}
	seen := make(map[string]bool, len(v))
	for _, name := range v {
		if !conceptNamePattern.MatchString(name) {
			return fmt.Errorf("invalid concept name %q", name)
		}
		if name == ColumnReportID || name == ColumnSourceURL {
			return fmt.Errorf("concept name %q collides with a reserved column", name)
		}
		if seen[name] {
			return fmt.Errorf("duplicate concept name %q", name)
		}
		seen[name] = true
	}
	return nil
}

// Set returns the names as a lookup set.
func (v Vocabulary) Set() map[string]bool {
	s := make(map[string]bool, len(v))
	for _, name := range v {
		s[name] = true
	}
	return s
}

type vocabularyFile struct {
	Concepts []string `yaml:"concepts"`
}

// LoadVocabulary reads a YAML file of the form `concepts: [...]`. An
// empty path yields DefaultVocabulary.
func LoadVocabulary(path string) (Vocabulary, error) {
	if path == "" {
		return DefaultVocabulary, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary: %w", err)
	}
	var f vocabularyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing vocabulary %s: %w", path, err)
	}
	v := Vocabulary(f.Concepts)
	if err := v.Validate(); err != nil {
		return nil, fmt.Errorf("vocabulary %s: %w", path, err)
	}
	return v, nil
}

// ExtractedConcepts is the reduced result of one fact search.
type ExtractedConcepts struct {
	Values    map[string]float64
	SourceURL string
}

// ResultRow is one row of the result table. Values holds an entry for
// every vocabulary concept; 0 means either zero or not reported.
type ResultRow struct {
	ReportID  string
	SourceURL string
	Values    map[string]float64
}

// NewResultRow populates every vocabulary concept, defaulting to 0.
// Concepts outside the vocabulary are dropped.
func NewResultRow(reportID string, c ExtractedConcepts, vocab Vocabulary) ResultRow {
	row := ResultRow{
		ReportID:  reportID,
		SourceURL: c.SourceURL,
		Values:    make(map[string]float64, len(vocab)),
	}
	for _, name := range vocab {
		row.Values[name] = c.Values[name]
	}
	return row
}
