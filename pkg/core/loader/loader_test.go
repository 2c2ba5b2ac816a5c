package loader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storage_feasibility/pkg/core/assumption"
	"storage_feasibility/pkg/core/diagnostics"
)

func TestLoadInputs_YAML(t *testing.T) {
	in, err := New("testdata", nil).LoadInputs("site.yaml")
	require.NoError(t, err)

	assert.Equal(t, "riverside", in.Name)
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), in.StartDate)
	assert.Equal(t, 610, in.Property.UnitCount)
	assert.True(t, in.Property.Characteristics.MultiStory)
	assert.Equal(t, 360, in.Financing.AmortizationMonths)
	require.Len(t, in.Occupancy.Targets, 3)
	assert.Equal(t, assumption.TargetAverage, in.Occupancy.Targets[2].Kind)

	// Only area_per_fte was overridden; the rest of the catalog is the default.
	assert.Equal(t, 45000.0, in.Expenses.Staffing.AreaPerFTE)
	assert.Equal(t, assumption.DefaultStaffing().MinFTE, in.Expenses.Staffing.MinFTE)
	assert.Len(t, in.Expenses.Lines, len(assumption.DefaultExpenseLines()))
	assert.Equal(t, assumption.DefaultRevenueBenchmarks(), in.Revenue)

	assert.NoError(t, in.Validate())
}

func TestLoadInputs_JSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	data, err := assumption.DefaultInputs().ToJSON()
	require.NoError(t, err)
	require.NoError(t, writeFile(dir, "site.json", data))

	in, err := New(dir, nil).LoadInputs("site.json")
	require.NoError(t, err)
	assert.Equal(t, "new-development", in.Name)
	assert.NoError(t, in.Validate())
}

func TestLoadInputs_NameFromFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeFile(dir, "north-lot.yaml", []byte("start_date: 2025-06-01\n")))

	in, err := New(dir, nil).LoadInputs("north-lot.yaml")
	require.NoError(t, err)
	assert.Equal(t, "north-lot", in.Name)
	assert.Equal(t, time.June, in.StartDate.Month())
}

func TestParseInputs_BadDate(t *testing.T) {
	_, err := ParseInputs([]byte("start_date: next spring\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start_date")
}

func TestLoadInputs_MissingFile(t *testing.T) {
	_, err := New("testdata", nil).LoadInputs("nope.yaml")
	assert.Error(t, err)
}

func TestLoadBenchmarks(t *testing.T) {
	b, err := New("testdata", nil).LoadBenchmarks("benchmarks.yaml")
	require.NoError(t, err)

	assert.Equal(t, 0.03, b.Revenue.DiscountPct)
	assert.Equal(t, 55000.0, b.Expenses.Staffing.AreaPerFTE)
	require.Len(t, b.Expenses.Lines, 5)
	assert.Equal(t, assumption.EscalateTax, b.Expenses.Lines[3].Escalation)
	assert.Equal(t, assumption.IfThirdPartyMgmt, b.Expenses.Lines[4].Condition)
	assert.True(t, b.Expenses.Lines[0].Wage)

	in := b.Apply(assumption.DefaultInputs())
	assert.Len(t, in.Expenses.Lines, 5)
	assert.NoError(t, in.Validate())
}

func TestLoadAttrition_HJSON(t *testing.T) {
	table, err := New("testdata", nil).LoadAttrition("attrition.hjson")
	require.NoError(t, err)
	assert.Equal(t, 4, table.Len())
	assert.Equal(t, 4, table.MaxTenure(1))

	diag := diagnostics.NewCollector()
	assert.Equal(t, 0.06, table.Rate(1, 3, 5, diag), "gap filled from tenure 2")
	assert.Equal(t, 0.04, table.Rate(2, 1, 5, diag), "untabulated month uses default_rate")
	assert.Equal(t, 2, diag.Count(diagnostics.LookupGap))
}

func TestLoadAttrition_StrictJSON(t *testing.T) {
	table, err := New("testdata", nil).LoadAttrition("attrition.json")
	require.NoError(t, err)
	assert.Equal(t, 2, table.MaxTenure(3))
}

func TestParseAttrition_Errors(t *testing.T) {
	_, err := ParseAttrition([]byte(`{records: []}`))
	assert.Error(t, err)

	_, err = ParseAttrition([]byte(`{records: [{rental_month: 13, tenure_month: 1, vacate_probability: 0.1}]}`))
	assert.Error(t, err)
}

func TestLoadSeasonality(t *testing.T) {
	l := New("testdata", nil)
	p, err := l.LoadSeasonality("seasonality.json")
	require.NoError(t, err)
	assert.Equal(t, 1.25, p.At(time.June).Rentals)
	assert.Equal(t, 0.65, p.At(time.December).Rentals)

	flat, err := l.LoadSeasonality("")
	require.NoError(t, err)
	assert.Equal(t, 1.0, flat.At(time.March).Rate)

	_, err = ParseSeasonality([]byte(`{months: [{month: 1, rentals: 1, vacates: 1, rate: 1, expense: 1}]}`))
	assert.Error(t, err)
}

func TestRepositoryDataFiles(t *testing.T) {
	l := New("../../../data", nil)
	table, err := l.LoadAttrition("attrition.hjson")
	require.NoError(t, err)
	assert.Equal(t, 12*36, table.Len())

	_, err = l.LoadSeasonality("seasonality.json")
	require.NoError(t, err)
}

func writeFile(dir, name string, data []byte) error {
	return os.WriteFile(filepath.Join(dir, name), data, 0o644)
}
