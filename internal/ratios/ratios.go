// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ratios turns stored report rows into industry-quarter leverage
// medians and exports them as a spreadsheet.
package ratios

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/industry-leverage/pkg/types"
)

// RequiredConcepts must be in the vocabulary for ratios to be meaningful.
var RequiredConcepts = []string{
	"Assets",
	"StockholdersEquity",
	"DebtCurrent",
	"DebtNoncurrent",
	"LongTermDebtNoncurrent",
	"CapitalLeaseObligationsCurrent",
	"CapitalLeaseObligationsNoncurrent",
	"FinanceLeaseLiabilityCurrent",
	"FinanceLeaseLiabilityNoncurrent",
	"LinesOfCreditCurrent",
}

// CheckVocabulary reports the required concepts missing from vocab.
func CheckVocabulary(vocab types.Vocabulary) error {
	set := vocab.Set()
	var missing []string
	for _, name := range RequiredConcepts {
		if !set[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("vocabulary lacks concepts needed for ratios: %v", missing)
	}
	return nil
}

// TotalDebt sums a row's debt. Noncurrent debt comes from the first
// nonzero of DebtNoncurrent and LongTermDebtNoncurrent, else from lease
// obligations. Current lease and credit-line balances are added only when
// DebtCurrent is zero. DebtCurrent is always added.
func TotalDebt(v map[string]float64) float64 {
	var total float64
	switch {
	case v["DebtNoncurrent"] != 0:
		total += v["DebtNoncurrent"]
	case v["LongTermDebtNoncurrent"] != 0:
		total += v["LongTermDebtNoncurrent"]
	default:
		total += v["CapitalLeaseObligationsNoncurrent"] + v["FinanceLeaseLiabilityNoncurrent"]
	}
	if v["DebtCurrent"] == 0 {
		total += v["CapitalLeaseObligationsCurrent"] + v["LinesOfCreditCurrent"] + v["FinanceLeaseLiabilityCurrent"]
	}
	return total + v["DebtCurrent"]
}

// IndustryRatio is one output row: medians for one industry and quarter.
// The "All" figures include zero-debt reports as ratio 0; the "Exclude"
// figures cover only reports with debt and are absent when there are none.
type IndustryRatio struct {
	Key     string
	SIC     string
	Quarter int
	Year    int

	DebtToAssetsAll float64
	DebtToEquityAll float64
	CountAll        int

	HasExclude          bool
	DebtToAssetsExclude float64
	DebtToEquityExclude float64
	CountExclude        int
}

type sample struct {
	daAll, deAll []float64
	daEx, deEx   []float64
}

// Aggregate groups rows by the report group key of their report_id.
// Rows with zero assets, zero equity, or no key are left out. Results are
// ordered by year then quarter, newest first, then by key.
func Aggregate(rows []types.ResultRow, index map[string]string) ([]IndustryRatio, error) {
	samples := map[string]*sample{}
	for _, r := range rows {
		key, ok := index[r.ReportID]
		if !ok {
			continue
		}
		assets, equity := r.Values["Assets"], r.Values["StockholdersEquity"]
		if assets == 0 || equity == 0 {
			continue
		}

		s := samples[key]
		if s == nil {
			s = &sample{}
			samples[key] = s
		}
		debt := TotalDebt(r.Values)
		if debt == 0 {
			s.daAll = append(s.daAll, 0)
			s.deAll = append(s.deAll, 0)
			continue
		}
		da, de := debt/assets, debt/equity
		s.daAll = append(s.daAll, da)
		s.deAll = append(s.deAll, de)
		s.daEx = append(s.daEx, da)
		s.deEx = append(s.deEx, de)
	}

	out := make([]IndustryRatio, 0, len(samples))
	for key, s := range samples {
		gk, err := types.ParseGroupKey(key)
		if err != nil {
			return nil, err
		}
		r := IndustryRatio{
			Key:             key,
			SIC:             gk.SIC,
			Quarter:         gk.Quarter,
			Year:            gk.Year,
			DebtToAssetsAll: median(s.daAll),
			DebtToEquityAll: median(s.deAll),
			CountAll:        len(s.daAll),
		}
		if len(s.daEx) > 0 {
			r.HasExclude = true
			r.DebtToAssetsExclude = median(s.daEx)
			r.DebtToEquityExclude = median(s.deEx)
			r.CountExclude = len(s.daEx)
		}
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		if a.Quarter != b.Quarter {
			return a.Quarter > b.Quarter
		}
		return a.Key < b.Key
	})
	return out, nil
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

// SheetName is the worksheet the ratios are written to.
const SheetName = "ratios"

var header = []any{
	"Key", "SIC", "Quarter", "Year",
	"debt_to_assets_median_all", "debt_to_equity_median_all", "count_all",
	"debt_to_assets_median_exclude", "debt_to_equity_median_exclude", "count_exclude",
}

// ExportXLSX writes ratios to path. Exclude columns are left blank for
// groups where every report had zero debt.
func ExportXLSX(ratios []IndustryRatio, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range ratios {
		row := []any{
			r.Key, r.SIC, r.Quarter, r.Year,
			r.DebtToAssetsAll, r.DebtToEquityAll, r.CountAll,
			nil, nil, nil,
		}
		if r.HasExclude {
			row[7], row[8], row[9] = r.DebtToAssetsExclude, r.DebtToEquityExclude, r.CountExclude
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
