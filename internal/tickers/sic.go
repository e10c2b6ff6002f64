// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tickers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/industry-leverage/internal/xbrl"
)

// NotAvailable marks a ticker whose SIC code could not be found.
const NotAvailable = "N/A"

// SICEntry pairs a spin-off ticker with its SIC code or NotAvailable.
type SICEntry struct {
	Ticker string
	SIC    string
}

// SICMapping is an ordered ticker -> SIC mapping. Order follows the input
// list so the JSON file reads like the CSV it came from.
type SICMapping []SICEntry

// Lookup returns the SIC code for ticker. Unknown tickers and NotAvailable
// entries report false.
func (m SICMapping) Lookup(ticker string) (string, bool) {
	for _, e := range m {
		if e.Ticker == ticker {
			return e.SIC, e.SIC != "" && e.SIC != NotAvailable
		}
	}
	return "", false
}

func (m *SICMapping) set(ticker, sic string) {
	for i := range *m {
		if (*m)[i].Ticker == ticker {
			(*m)[i].SIC = sic
			return
		}
	}
	*m = append(*m, SICEntry{Ticker: ticker, SIC: sic})
}

// MarshalJSON writes a JSON object in mapping order.
func (m SICMapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Ticker)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.SIC)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ParseSICMapping reads a JSON object of ticker -> SIC. Codes may be
// numbers or strings; null is read as NotAvailable.
func ParseSICMapping(data []byte) (SICMapping, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("expected a JSON object")
	}
	var m SICMapping
	root.ForEach(func(key, value gjson.Result) bool {
		sic := value.String()
		if value.Type == gjson.Null || sic == "" {
			sic = NotAvailable
		}
		m.set(key.String(), sic)
		return true
	})
	return m, nil
}

// ReadSICMapping loads a mapping file.
func ReadSICMapping(path string) (SICMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading SIC mapping: %w", err)
	}
	m, err := ParseSICMapping(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// WriteSICMapping writes the mapping as indented JSON.
func WriteSICMapping(path string, m SICMapping) error {
	raw, err := m.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encoding SIC mapping: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "    "); err != nil {
		return fmt.Errorf("formatting SIC mapping: %w", err)
	}
	buf.WriteByte('\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// SICLookup resolves a normalized ticker to a SIC code near date.
type SICLookup func(ctx context.Context, ticker string, row Row) (string, error)

// ClassifyResult holds the outcome of a classification run.
type ClassifyResult struct {
	Found   int
	Missing int
	Failed  int
	Mapping SICMapping
}

// Total returns the number of rows classified.
func (r ClassifyResult) Total() int {
	return r.Found + r.Missing + r.Failed
}

// Classify looks up every row. Tickers with no SIC, or whose lookup fails
// remotely, are recorded as NotAvailable. Rate limiting and cancellation
// stop the run.
func Classify(ctx context.Context, rows []Row, lookup SICLookup, log logrus.FieldLogger, w io.Writer) (ClassifyResult, error) {
	var res ClassifyResult
	for _, row := range rows {
		ticker := NormalizeTicker(row.Spinoff)
		sic, err := lookup(ctx, ticker, row)
		switch {
		case err == nil:
			res.Found++
		case errors.Is(err, xbrl.ErrRateLimited), errors.Is(err, xbrl.ErrNoRequestSlot), ctx.Err() != nil:
			return res, fmt.Errorf("classifying %s: %w", row.Spinoff, err)
		case errors.Is(err, xbrl.ErrNoSIC):
			log.WithField("ticker", ticker).Debug("no SIC code")
			res.Missing++
			sic = NotAvailable
		default:
			log.WithError(err).WithField("ticker", ticker).Warn("SIC lookup failed")
			res.Failed++
			sic = NotAvailable
		}
		res.Mapping.set(row.Spinoff, sic)
		fmt.Fprintf(w, "%-8s %s  SIC %s\n", row.Spinoff, row.Date.Format("2006-01-02"), sic)
	}
	fmt.Fprintf(w, "\nClassify summary: %d found, %d missing, %d failed (total: %d)\n",
		res.Found, res.Missing, res.Failed, res.Total())
	return res, nil
}

// ExportXLSX writes Ticker and three-digit SIC columns to an .xlsx file.
func ExportXLSX(m SICMapping, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	if err := f.SetSheetRow(sheet, "A1", &[]any{"Ticker", "SIC"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, e := range m {
		sic := e.SIC
		if len(sic) > 3 {
			sic = sic[:3]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &[]any{e.Ticker, sic}); err != nil {
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
