// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ratios

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/industry-leverage/pkg/types"
)

func TestTotalDebt(t *testing.T) {
	tests := []struct {
		name string
		v    map[string]float64
		want float64
	}{
		{"debt noncurrent wins", map[string]float64{"DebtNoncurrent": 100, "LongTermDebtNoncurrent": 80, "DebtCurrent": 10}, 110},
		{"long term fallback", map[string]float64{"LongTermDebtNoncurrent": 80, "DebtCurrent": 10}, 90},
		{"lease fallback", map[string]float64{"CapitalLeaseObligationsNoncurrent": 5, "FinanceLeaseLiabilityNoncurrent": 7, "DebtCurrent": 1}, 13},
		{"current components when debt current is zero", map[string]float64{
			"DebtNoncurrent":                 50,
			"CapitalLeaseObligationsCurrent": 1,
			"LinesOfCreditCurrent":           2,
			"FinanceLeaseLiabilityCurrent":   3,
		}, 56},
		{"current components ignored when debt current set", map[string]float64{
			"DebtNoncurrent":       50,
			"DebtCurrent":          4,
			"LinesOfCreditCurrent": 2,
		}, 54},
		{"nothing", map[string]float64{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, TotalDebt(tt.v), 1e-9)
		})
	}
}

func resultRow(id string, assets, equity, debt float64) types.ResultRow {
	return types.ResultRow{
		ReportID: id,
		Values:   map[string]float64{"Assets": assets, "StockholdersEquity": equity, "DebtNoncurrent": debt},
	}
}

func TestAggregate(t *testing.T) {
	rows := []types.ResultRow{
		resultRow("1", 100, 50, 20),  // 0.2, 0.4
		resultRow("2", 100, 50, 0),   // zero debt
		resultRow("3", 200, 100, 80), // 0.4, 0.8
		resultRow("4", 0, 50, 10),    // no assets, dropped
		resultRow("5", 100, 0, 10),   // no equity, dropped
		resultRow("6", 100, 100, 0),  // only zero debt in its group
		resultRow("7", 100, 100, 50), // unknown report, dropped
	}
	index := map[string]string{
		"1": "737_2Q2021",
		"2": "737_2Q2021",
		"3": "737_2Q2021",
		"4": "737_2Q2021",
		"5": "737_2Q2021",
		"6": "283_4Q2021",
	}

	got, err := Aggregate(rows, index)
	require.NoError(t, err)
	require.Len(t, got, 2)

	q4 := got[0]
	assert.Equal(t, "283_4Q2021", q4.Key)
	assert.Equal(t, 1, q4.CountAll)
	assert.Zero(t, q4.DebtToAssetsAll)
	assert.False(t, q4.HasExclude)

	q2 := got[1]
	assert.Equal(t, "737", q2.SIC)
	assert.Equal(t, 2, q2.Quarter)
	assert.Equal(t, 2021, q2.Year)
	assert.Equal(t, 3, q2.CountAll)
	assert.InDelta(t, 0.2, q2.DebtToAssetsAll, 1e-9)
	assert.InDelta(t, 0.4, q2.DebtToEquityAll, 1e-9)
	assert.True(t, q2.HasExclude)
	assert.Equal(t, 2, q2.CountExclude)
	assert.InDelta(t, 0.3, q2.DebtToAssetsExclude, 1e-9)
	assert.InDelta(t, 0.6, q2.DebtToEquityExclude, 1e-9)
}

func TestAggregateSortsNewestFirst(t *testing.T) {
	rows := []types.ResultRow{
		resultRow("a", 1, 1, 1),
		resultRow("b", 1, 1, 1),
		resultRow("c", 1, 1, 1),
		resultRow("d", 1, 1, 1),
	}
	index := map[string]string{
		"a": "100_1Q2022",
		"b": "100_4Q2021",
		"c": "200_1Q2022",
		"d": "100_3Q2022",
	}
	got, err := Aggregate(rows, index)
	require.NoError(t, err)

	var keys []string
	for _, r := range got {
		keys = append(keys, r.Key)
	}
	assert.Equal(t, []string{"100_3Q2022", "100_1Q2022", "200_1Q2022", "100_4Q2021"}, keys)
}

func TestAggregateRejectsMalformedKey(t *testing.T) {
	_, err := Aggregate([]types.ResultRow{resultRow("1", 1, 1, 1)}, map[string]string{"1": "bogus"})
	assert.Error(t, err)
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 0.0, median(nil))
	assert.Equal(t, 2.0, median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, median([]float64{4, 1, 3, 2}))
}

func TestCheckVocabulary(t *testing.T) {
	assert.NoError(t, CheckVocabulary(types.DefaultVocabulary))
	err := CheckVocabulary(types.Vocabulary{"Assets"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "StockholdersEquity")
}

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ratios.xlsx")
	ratios := []IndustryRatio{
		{Key: "737_2Q2021", SIC: "737", Quarter: 2, Year: 2021, DebtToAssetsAll: 0.25, DebtToEquityAll: 0.5, CountAll: 2,
			HasExclude: true, DebtToAssetsExclude: 0.5, DebtToEquityExclude: 1, CountExclude: 1},
		{Key: "283_1Q2021", SIC: "283", Quarter: 1, Year: 2021, CountAll: 1},
	}
	require.NoError(t, ExportXLSX(ratios, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Key", rows[0][0])
	assert.Equal(t, []string{"737_2Q2021", "737", "2", "2021", "0.25", "0.5", "2", "0.5", "1", "1"}, rows[1])
	assert.Equal(t, "283_1Q2021", rows[2][0])
}
