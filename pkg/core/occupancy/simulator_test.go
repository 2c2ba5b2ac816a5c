package occupancy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storage_feasibility/pkg/core/assumption"
	"storage_feasibility/pkg/core/attrition"
	"storage_feasibility/pkg/core/diagnostics"
	"storage_feasibility/pkg/core/seasonality"
)

// testCurve front-loads move-out risk and settles at 3% a month.
var testCurve = []float64{0.02, 0.04, 0.05, 0.05, 0.04, 0.04, 0.035, 0.035, 0.03, 0.03, 0.03, 0.03}

func newSim(t *testing.T, in assumption.ProjectionInputs, profile *seasonality.Profile) (*Simulator, *diagnostics.Collector) {
	t.Helper()
	require.NoError(t, in.Validate())
	table, err := attrition.Uniform(testCurve)
	require.NoError(t, err)
	diag := diagnostics.NewCollector()
	return NewSimulator(in, table, profile, diag), diag
}

// =============================================================================
// TARGET PATH
// =============================================================================

func TestTargetPath_YearEnd(t *testing.T) {
	plan := assumption.OccupancyPlan{
		StartingOccupancy: 0,
		Targets: []assumption.OccupancyTarget{
			{Year: 1, Occupancy: 0.36},
			{Year: 2, Occupancy: 0.72},
		},
	}
	path := TargetPath(plan)
	require.Len(t, path, assumption.HorizonMonths+1)
	assert.InDelta(t, 0.03, path[1], 1e-12)
	assert.InDelta(t, 0.36, path[12], 1e-12)
	assert.InDelta(t, 0.39, path[13], 1e-12)
	assert.InDelta(t, 0.72, path[24], 1e-12)
	for m := 25; m <= assumption.HorizonMonths; m++ {
		assert.Equal(t, 0.72, path[m])
	}
}

func TestTargetPath_IntermediateAverage(t *testing.T) {
	plan := assumption.OccupancyPlan{
		Targets: []assumption.OccupancyTarget{
			{Year: 1, Occupancy: 0.3, Kind: assumption.TargetAverage},
			{Year: 2, Occupancy: 0.8, Kind: assumption.TargetYearEnd},
		},
	}
	path := TargetPath(plan)

	var sum float64
	for m := 1; m <= 12; m++ {
		sum += path[m]
	}
	assert.InDelta(t, 0.3, sum/12, 1e-12)
	assert.InDelta(t, assumption.AverageYearEnd(0, 0.3), path[12], 1e-12)
	assert.InDelta(t, 0.8, path[24], 1e-12)
	assertNonDecreasing(t, path)
}

func TestTargetPath_StabilizedAverageHoldsFlat(t *testing.T) {
	plan := assumption.DefaultInputs().Occupancy
	plan.Targets[2].Kind = assumption.TargetAverage
	path := TargetPath(plan)

	for m := 25; m <= assumption.HorizonMonths; m++ {
		assert.Equal(t, 0.92, path[m], "month %d", m)
	}
	assert.InDelta(t, 0.68, path[24], 1e-12)
	assertNonDecreasing(t, path)
}

func TestRun_StabilizedAverageMeetsTarget(t *testing.T) {
	in := assumption.DefaultInputs()
	in.Occupancy.Targets[2].Kind = assumption.TargetAverage
	sim, _ := newSim(t, in, seasonality.Flat())
	states := sim.Run()

	yearMean := func(year int) float64 {
		var sum float64
		for _, st := range states[(year-1)*12 : year*12] {
			sum += st.Occupancy
		}
		return sum / 12
	}
	assert.InDelta(t, 0.92, yearMean(3), 1e-9)
	for year := 4; year <= assumption.HorizonYears; year++ {
		assert.InDelta(t, 0.92, yearMean(year), 1e-9, "year %d", year)
	}
	for i := 24; i < len(states); i++ {
		assert.LessOrEqual(t, states[i].Occupancy, 0.92+1e-9)
		assert.False(t, states[i].OverTarget, "month %d", states[i].Month)
	}
}

func assertNonDecreasing(t *testing.T, path []float64) {
	t.Helper()
	for m := 1; m < len(path); m++ {
		assert.GreaterOrEqual(t, path[m], path[m-1], "month %d", m)
	}
}

// =============================================================================
// SIMULATION PROPERTIES
// =============================================================================

func TestRun_OccupancyIdentityAndNonNegativity(t *testing.T) {
	sim, _ := newSim(t, assumption.DefaultInputs(), seasonality.Flat())
	states := sim.Run()
	require.Len(t, states, assumption.HorizonMonths)

	prev := 0.0
	for _, st := range states {
		assert.InDelta(t, prev, st.Beginning, 1e-9, "month %d beginning", st.Month)
		assert.InDelta(t, st.Beginning+st.Rentals-st.Vacates, st.Ending, 1e-9, "month %d identity", st.Month)
		assert.GreaterOrEqual(t, st.Ending, 0.0)
		assert.GreaterOrEqual(t, st.Rentals, 0.0)
		assert.GreaterOrEqual(t, st.Vacates, 0.0)
		assert.LessOrEqual(t, st.Ending, 500.0+1e-9)
		prev = st.Ending
	}
}

func TestRun_NewDevelopmentFirstMonth(t *testing.T) {
	sim, _ := newSim(t, assumption.DefaultInputs(), seasonality.Flat())
	first, ok := sim.Step()
	require.True(t, ok)

	assert.Greater(t, first.Rentals, 0.0)
	assert.Equal(t, 0.0, first.Vacates)
	assert.InDelta(t, 500*0.33/12, first.Ending, 1e-9)
}

func TestRun_ConvergesToStabilizedTarget(t *testing.T) {
	in := assumption.DefaultInputs()
	sim, _ := newSim(t, in, seasonality.Flat())
	states := sim.Run()

	for _, st := range states[36:] {
		assert.InDelta(t, 0.92, st.Occupancy, 1e-9, "month %d", st.Month)
	}
	// Year-end milestones land on target.
	assert.InDelta(t, 0.33, states[11].Occupancy, 1e-9)
	assert.InDelta(t, 0.68, states[23].Occupancy, 1e-9)
}

func TestRun_ExistingFacilityHoldsTarget(t *testing.T) {
	in := assumption.DefaultInputs()
	in.Occupancy = assumption.OccupancyPlan{
		StartingOccupancy: 0.90,
		Targets:           []assumption.OccupancyTarget{{Year: 1, Occupancy: 0.90}},
	}
	sim, _ := newSim(t, in, seasonality.Flat())
	states := sim.Run()

	assert.Greater(t, states[0].Vacates, 0.0, "seed cohort attrites from month 1")
	for _, st := range states {
		assert.InDelta(t, 0.90, st.Occupancy, 1e-9)
	}
}

func TestRun_SeasonalRentalsAndCapacity(t *testing.T) {
	factors := seasonality.Flat().Factors()
	for i := range factors {
		factors[i].Rentals = 3 // aggressive velocity overshoots every month
	}
	profile, err := seasonality.NewProfile(factors)
	require.NoError(t, err)

	in := assumption.DefaultInputs()
	in.Occupancy.Targets = []assumption.OccupancyTarget{{Year: 1, Occupancy: 0.98}}
	sim, _ := newSim(t, in, profile)
	states := sim.Run()

	sawOver := false
	for _, st := range states {
		assert.LessOrEqual(t, st.Ending, 500.0+1e-9)
		if st.OverTarget {
			sawOver = true
			assert.Equal(t, 0.0, st.Rentals)
		}
	}
	assert.True(t, sawOver, "tripled velocity must overshoot the path")
}

func TestCohorts_DenseAndRetired(t *testing.T) {
	in := assumption.DefaultInputs()
	in.CohortRetireThreshold = 0.5
	sim, _ := newSim(t, in, seasonality.Flat())
	sim.Run()

	cohorts := sim.Cohorts()
	require.NotEmpty(t, cohorts)
	for i := 1; i < len(cohorts); i++ {
		assert.Greater(t, cohorts[i].Origin, cohorts[i-1].Origin)
	}
	remaining := sim.Remaining()
	require.Len(t, remaining, assumption.HorizonMonths+1)
	for o, r := range remaining {
		assert.True(t, r == 0 || r >= 0.5, "origin %d holds %v below the retire threshold", o, r)
	}
}

func TestStep_StopsAtHorizon(t *testing.T) {
	sim, _ := newSim(t, assumption.DefaultInputs(), nil)
	sim.Run()
	_, ok := sim.Step()
	assert.False(t, ok)
	assert.Equal(t, assumption.HorizonMonths, sim.Month())
}
