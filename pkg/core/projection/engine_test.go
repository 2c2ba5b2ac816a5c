package projection

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storage_feasibility/pkg/core/annual"
	"storage_feasibility/pkg/core/assumption"
	"storage_feasibility/pkg/core/attrition"
	"storage_feasibility/pkg/core/seasonality"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	table, err := attrition.Uniform([]float64{0.02, 0.04, 0.05, 0.05, 0.04, 0.04, 0.035, 0.035, 0.03, 0.03, 0.03, 0.03})
	require.NoError(t, err)

	factors := seasonality.Flat().Factors()
	for i := range factors {
		// Mild summer peak in both move-ins and move-outs.
		if i >= 4 && i <= 7 {
			factors[i].Rentals = 1.1
			factors[i].Vacates = 1.1
			factors[i].Expense = 1.15
		}
	}
	profile, err := seasonality.NewProfile(factors)
	require.NoError(t, err)
	return NewEngine(table, profile)
}

func TestRun_NewDevelopment(t *testing.T) {
	proj, err := testEngine(t).Run(assumption.DefaultInputs())
	require.NoError(t, err)

	require.Len(t, proj.Months, assumption.HorizonMonths)
	require.Len(t, proj.Years, assumption.HorizonYears)

	first := proj.Months[0]
	assert.Greater(t, first.Rentals, 0.0)
	assert.Equal(t, 0.0, first.Vacates)
	assert.Greater(t, first.TotalRevenue, 0.0)

	for _, m := range proj.Months {
		assert.GreaterOrEqual(t, m.GrossRentalIncome, 0.0, "month %d", m.Month)
		assert.GreaterOrEqual(t, m.EndingUnits, 0.0, "month %d", m.Month)
		assert.InDelta(t, m.TotalRevenue-m.TotalExpenses, m.NOI, 1e-9)
		assert.InDelta(t, m.NOI-m.DebtService, m.CashFlow, 1e-9)
	}

	require.NotNil(t, proj.Returns)
	assert.Len(t, proj.Returns.CashFlows, 8)
	assert.NotNil(t, proj.Years[6].DSCR)
}

func TestRun_Deterministic(t *testing.T) {
	e := testEngine(t)
	in := assumption.DefaultInputs()

	a, err := e.Run(in)
	require.NoError(t, err)
	b, err := e.Run(in)
	require.NoError(t, err)

	ja, err := a.ToJSON()
	require.NoError(t, err)
	jb, err := b.ToJSON()
	require.NoError(t, err)
	assert.Equal(t, string(ja), string(jb))
}

func TestRun_ConcurrentRunsShareTables(t *testing.T) {
	e := testEngine(t)
	want, err := e.Run(assumption.DefaultInputs())
	require.NoError(t, err)
	wantJSON, err := want.ToJSON()
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]byte, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := e.Run(assumption.DefaultInputs())
			if err != nil {
				return
			}
			results[i], _ = p.ToJSON()
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		assert.Equal(t, string(wantJSON), string(got))
	}
}

func TestRun_RollupConservation(t *testing.T) {
	proj, err := testEngine(t).Run(assumption.DefaultInputs())
	require.NoError(t, err)
	require.NoError(t, annual.Conserved(proj.Months, proj.Years, 1e-6))

	var y3 float64
	for _, m := range proj.Months[24:36] {
		y3 += m.DebtService
	}
	assert.InDelta(t, y3, proj.Years[2].DebtService, 1e-6)
}

func TestRun_AmortizingLoanPaysOff(t *testing.T) {
	in := assumption.DefaultInputs()
	in.Financing = assumption.Financing{LoanAmount: 3_000_000, AnnualRate: 0.07, TermMonths: 60}
	proj, err := testEngine(t).Run(in)
	require.NoError(t, err)

	assert.InDelta(t, 0, proj.Months[59].LoanBalance, 1e-6)
	for _, m := range proj.Months[60:] {
		assert.Equal(t, 0.0, m.DebtService)
	}
}

func TestRun_ConfigurationError(t *testing.T) {
	in := assumption.DefaultInputs()
	in.Property.TotalArea = -1
	in.Financing.TermMonths = 0
	in.Occupancy.Targets[2].Occupancy = 0.5 // below year 2

	_, err := testEngine(t).Run(in)
	require.Error(t, err)

	var cfgErr *assumption.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.GreaterOrEqual(t, len(cfgErr.Problems), 3)
}

func TestRun_NoTable(t *testing.T) {
	_, err := NewEngine(nil, nil).Run(assumption.DefaultInputs())
	assert.ErrorIs(t, err, ErrNoAttritionTable)
}

func TestRun_ZeroRateLoanWarns(t *testing.T) {
	in := assumption.DefaultInputs()
	in.Financing = assumption.Financing{LoanAmount: 12000, TermMonths: 12}
	proj, err := testEngine(t).Run(in)
	require.NoError(t, err)

	for _, m := range proj.Months[:12] {
		assert.InDelta(t, 1000, m.Principal, 1e-9)
		assert.Equal(t, 0.0, m.Interest)
	}
	found := false
	for _, w := range proj.Warnings {
		if w.Component == "debt" {
			found = true
		}
	}
	assert.True(t, found)
}
