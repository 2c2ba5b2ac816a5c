package valuation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storage_feasibility/pkg/core/assumption"
	"storage_feasibility/pkg/core/debt"
	"storage_feasibility/pkg/core/diagnostics"
	"storage_feasibility/pkg/models"
)

func TestNPV(t *testing.T) {
	flows := []float64{-1000, 500, 500, 500}
	want := -1000 + 500/1.1 + 500/math.Pow(1.1, 2) + 500/math.Pow(1.1, 3)
	assert.InDelta(t, want, NPV(flows, 0.10), 1e-9)
	assert.InDelta(t, 500.0, NPV(flows, 0), 1e-9)
}

func TestIRR(t *testing.T) {
	tests := []struct {
		name  string
		flows []float64
		want  float64
	}{
		{"single period", []float64{-100, 110}, 0.10},
		{"even annuity", []float64{-1000, 400, 400, 400}, 0.097010},
		{"negative return", []float64{-1000, 300, 300, 300}, 0},
		{"large exit", []float64{-2_000_000, -150_000, 50_000, 180_000, 250_000, 260_000, 270_000, 4_200_000}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			irr, ok := IRR(tt.flows)
			require.True(t, ok)
			assert.InDelta(t, 0, NPV(tt.flows, irr), 1e-4)
			if tt.want != 0 {
				assert.InDelta(t, tt.want, irr, 1e-3)
			}
		})
	}

	t.Run("no sign change", func(t *testing.T) {
		_, ok := IRR([]float64{100, 200})
		assert.False(t, ok)
	})
}

func years(noi, debtService float64, n int) []models.AnnualSummary {
	out := make([]models.AnnualSummary, n)
	for i := range out {
		out[i] = models.AnnualSummary{
			Year:             i + 1,
			NOI:              noi,
			TotalRevenue:     noi * 1.6,
			TotalExpenses:    noi * 0.6,
			DebtService:      debtService,
			CashFlow:         noi - debtService,
			AverageOccupancy: 0.9,
		}
	}
	return out
}

func TestCalculateReturns(t *testing.T) {
	in := assumption.DefaultInputs()
	in.Financing = assumption.Financing{LoanAmount: 6_000_000, AnnualRate: 0.065, TermMonths: 120, AmortizationMonths: 300}
	in.Valuation = assumption.Valuation{TotalDevelopmentCost: 10_000_000, ExitCapRate: 0.06, DiscountRate: 0.10}
	schedule := debt.BuildSchedule(in.Financing, nil)
	annualDS := schedule[0].Payment * 12

	ys := years(900_000, annualDS, 7)
	ret := CalculateReturns(ys, schedule, in, nil)
	require.NotNil(t, ret)

	assert.Equal(t, 4_000_000.0, ret.Equity)
	assert.InDelta(t, 15_000_000, ret.ExitValue, 1e-6)
	assert.InDelta(t, schedule[83].Ending, ret.ExitLoanBalance, 1e-9, "actual balance, not a haircut")
	assert.InDelta(t, ret.ExitValue-ret.ExitLoanBalance, ret.NetSaleProceeds, 1e-6)
	require.Len(t, ret.CashFlows, 8)
	assert.Equal(t, -4_000_000.0, ret.CashFlows[0])

	require.NotNil(t, ret.IRR)
	assert.InDelta(t, 0, NPV(ret.CashFlows, *ret.IRR), 1e-3)
	assert.InDelta(t, NPV(ret.CashFlows, 0.10), ret.NPV, 1e-9)
	require.NotNil(t, ret.EquityMultiple)
	assert.Greater(t, *ret.EquityMultiple, 1.0)

	require.NotNil(t, ret.DevelopmentYield)
	assert.InDelta(t, 0.09, *ret.DevelopmentYield, 1e-12)
	assert.InDelta(t, 0.03, *ret.DevelopmentSpread, 1e-12)

	require.NotNil(t, ret.BreakEvenOccupancy)
	potential := 900_000 * 1.6 / 0.9
	assert.InDelta(t, (900_000*0.6+annualDS)/potential, *ret.BreakEvenOccupancy, 1e-12)
}

func TestCalculateReturns_LossMakingExitStillRepaysLoan(t *testing.T) {
	in := assumption.DefaultInputs()
	in.Financing = assumption.Financing{LoanAmount: 6_000_000, AnnualRate: 0.065, TermMonths: 120, AmortizationMonths: 300}
	in.Valuation = assumption.Valuation{TotalDevelopmentCost: 10_000_000, ExitCapRate: 0.06, DiscountRate: 0.10}
	schedule := debt.BuildSchedule(in.Financing, nil)
	diag := diagnostics.NewCollector()

	ys := years(900_000, schedule[0].Payment*12, 7)
	ys[6].NOI = -50_000
	ret := CalculateReturns(ys, schedule, in, diag)
	require.NotNil(t, ret)

	assert.Equal(t, 0.0, ret.ExitValue)
	assert.Greater(t, ret.ExitLoanBalance, 0.0)
	assert.InDelta(t, -ret.ExitLoanBalance, ret.NetSaleProceeds, 1e-9)
	assert.InDelta(t, ys[6].CashFlow-ret.ExitLoanBalance, ret.CashFlows[7], 1e-6)
	assert.Equal(t, 1, diag.Occurrences("returns:exit_noi"))

	var distributions float64
	for _, cf := range ret.CashFlows[1:] {
		distributions += cf
	}
	require.NotNil(t, ret.EquityMultiple)
	assert.InDelta(t, distributions/ret.Equity, *ret.EquityMultiple, 1e-9)
}

func TestCalculateReturns_Degenerate(t *testing.T) {
	in := assumption.DefaultInputs()
	in.Valuation = assumption.Valuation{}
	in.Financing = assumption.Financing{TermMonths: 12}
	diag := diagnostics.NewCollector()

	// No equity, no exit: every flow is non-negative.
	ret := CalculateReturns(years(100_000, 0, 7), nil, in, diag)
	require.NotNil(t, ret)
	assert.Nil(t, ret.IRR)
	assert.Nil(t, ret.EquityMultiple)
	assert.Nil(t, ret.DevelopmentYield)
	assert.Equal(t, 2, diag.Count(diagnostics.NumericDegeneracy))

	assert.Nil(t, CalculateReturns(nil, nil, in, diag))
}

func TestStabilizedIndex(t *testing.T) {
	plan := assumption.DefaultInputs().Occupancy
	assert.Equal(t, 3, StabilizedIndex(plan, 7))
	assert.Equal(t, 1, StabilizedIndex(plan, 2))
	assert.Equal(t, 0, StabilizedIndex(assumption.OccupancyPlan{}, 7))
}
