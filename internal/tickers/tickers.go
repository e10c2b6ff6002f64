// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tickers reads the spin-off ticker list and maps each ticker to
// the SIC code of its nearest filing.
package tickers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Row is one spin-off from the tickers CSV.
type Row struct {
	Spinoff string
	Date    time.Time
}

// dateLayouts are tried in order. The first matches the two-digit-year
// dates the ticker lists are kept in.
var dateLayouts = []string{
	"1/2/06",
	"1/2/2006",
	"2006-01-02",
}

// ParseDate parses a spin-off date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// NormalizeTicker turns a spin-off ticker into the symbol the API knows:
// first four characters, trailing Q removed, upper case, no dots.
// Truncation happens before dot removal, so "BRK.B" becomes "BRK".
func NormalizeTicker(spinoff string) string {
	t := strings.TrimSpace(spinoff)
	if len(t) > 4 {
		t = t[:4]
	}
	t = strings.TrimRight(t, "Q")
	return strings.ReplaceAll(strings.ToUpper(t), ".", "")
}

// ReadCSV reads the tickers file at path.
func ReadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening tickers: %w", err)
	}
	defer f.Close()
	rows, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// ParseCSV reads rows with Spinoff and Date columns, in any position.
// Rows with an empty ticker are skipped.
func ParseCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty tickers file")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	tickerCol, dateCol := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case "Spinoff":
			tickerCol = i
		case "Date":
			dateCol = i
		}
	}
	if tickerCol < 0 || dateCol < 0 {
		return nil, fmt.Errorf("header must contain Spinoff and Date columns, got %v", header)
	}

	var rows []Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if tickerCol >= len(rec) || dateCol >= len(rec) {
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", line, len(header), len(rec))
		}
		ticker := strings.TrimSpace(rec[tickerCol])
		if ticker == "" {
			continue
		}
		date, err := ParseDate(rec[dateCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, Row{Spinoff: ticker, Date: date})
	}
	return rows, nil
}
