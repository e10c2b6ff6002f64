// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

// DocumentType is the SEC form type of a structured financial report.
type DocumentType string

const (
	DocQuarterly DocumentType = "10-Q"
	DocAnnual    DocumentType = "10-K"
)

// ReportRef points at one report to extract. ReportID is opaque: the
// upstream database hands out integers, but nothing here depends on that.
type ReportRef struct {
	ReportID     string       `json:"report_id" yaml:"report_id"`
	DocumentType DocumentType `json:"document_type" yaml:"document_type"`
}

// MarshalJSON writes numeric report IDs as JSON numbers so the mapping
// file keeps the shape the discovery database produced.
func (r ReportRef) MarshalJSON() ([]byte, error) {
	var id []byte
	if _, err := strconv.ParseInt(r.ReportID, 10, 64); err == nil {
		id = []byte(r.ReportID)
	} else {
		quoted, err := json.Marshal(r.ReportID)
		if err != nil {
			return nil, err
		}
		id = quoted
	}
	docType, err := json.Marshal(string(r.DocumentType))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"report_id":`)
	buf.Write(id)
	buf.WriteString(`,"document_type":`)
	buf.Write(docType)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// GroupKey identifies a report group: a three-digit SIC prefix and a
// calendar quarter. Its string form is "737_2Q2021".
type GroupKey struct {
	SIC     string
	Quarter int
	Year    int
}

var groupKeyPattern = regexp.MustCompile(`^(\d+)_([1-4])Q(\d{4})$`)

// GroupKeyFor builds the key for an industry code and a date inside the
// quarter. Only the first three characters of sic are used.
func GroupKeyFor(sic string, date time.Time) GroupKey {
	if len(sic) > 3 {
		sic = sic[:3]
	}
	return GroupKey{SIC: sic, Quarter: QuarterOf(date), Year: date.Year()}
}

// ParseGroupKey parses the "SIC_qQyyyy" form.
func ParseGroupKey(s string) (GroupKey, error) {
	m := groupKeyPattern.FindStringSubmatch(s)
	if m == nil {
		return GroupKey{}, fmt.Errorf("malformed group key %q", s)
	}
	q, _ := strconv.Atoi(m[2])
	y, _ := strconv.Atoi(m[3])
	return GroupKey{SIC: m[1], Quarter: q, Year: y}, nil
}

func (k GroupKey) String() string {
	return fmt.Sprintf("%s_%dQ%d", k.SIC, k.Quarter, k.Year)
}

// QuarterOf returns the calendar quarter (1-4) of t.
func QuarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// QuarterBounds returns the first and last day of t's calendar quarter.
func QuarterBounds(t time.Time) (start, end time.Time) {
	firstMonth := time.Month(3*(QuarterOf(t)-1) + 1)
	start = time.Date(t.Year(), firstMonth, 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 3, -1)
	return start, end
}

// ReportGroup is the unit of checkpointing: every report sharing one key.
type ReportGroup struct {
	Key     string
	Reports []ReportRef
}

// ReportGroups is the ordered input to ingestion. Order matters: the
// checkpoint stores an index into it.
type ReportGroups []ReportGroup

// TotalReports counts references across all groups.
func (g ReportGroups) TotalReports() int {
	n := 0
	for _, grp := range g {
		n += len(grp.Reports)
	}
	return n
}

// ReportIndex maps each report ID to the key of the group containing it.
// A report listed under several keys maps to the last one.
func (g ReportGroups) ReportIndex() map[string]string {
	idx := make(map[string]string, g.TotalReports())
	for _, grp := range g {
		for _, r := range grp.Reports {
			idx[r.ReportID] = grp.Key
		}
	}
	return idx
}

// Set replaces the reports of key in place, or appends a new group.
func (g *ReportGroups) Set(key string, reports []ReportRef) {
	for i := range *g {
		if (*g)[i].Key == key {
			(*g)[i].Reports = reports
			return
		}
	}
	*g = append(*g, ReportGroup{Key: key, Reports: reports})
}

// MarshalJSON writes the groups as a JSON object in slice order.
func (g ReportGroups) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, grp := range g {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(grp.Key)
		if err != nil {
			return nil, err
		}
		reports := grp.Reports
		if reports == nil {
			reports = []ReportRef{}
		}
		val, err := json.Marshal(reports)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ParseReportGroups decodes a JSON object of key -> [{report_id,
// document_type}] keeping the object's key order. A key repeated in the
// object keeps its first position and its last value.
func ParseReportGroups(data []byte) (ReportGroups, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("report groups: invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("report groups: expected a JSON object")
	}

	var groups ReportGroups
	var parseErr error
	root.ForEach(func(key, value gjson.Result) bool {
		if !value.IsArray() {
			parseErr = fmt.Errorf("report groups: %q is not a list", key.String())
			return false
		}
		var refs []ReportRef
		for i, r := range value.Array() {
			id := r.Get("report_id")
			if !id.Exists() || id.String() == "" {
				parseErr = fmt.Errorf("report groups: %q entry %d has no report_id", key.String(), i)
				return false
			}
			refs = append(refs, ReportRef{
				ReportID:     id.String(),
				DocumentType: DocumentType(r.Get("document_type").String()),
			})
		}
		groups.Set(key.String(), refs)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return groups, nil
}

// ReadReportGroups loads a report group mapping file.
func ReadReportGroups(path string) (ReportGroups, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report groups: %w", err)
	}
	return ParseReportGroups(data)
}

// WriteReportGroups writes the mapping with indentation.
func WriteReportGroups(path string, groups ReportGroups) error {
	raw, err := json.Marshal(groups)
	if err != nil {
		return fmt.Errorf("marshaling report groups: %w", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "    "); err != nil {
		return fmt.Errorf("indenting report groups: %w", err)
	}
	return os.WriteFile(path, out.Bytes(), 0o644)
}
