package debt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storage_feasibility/pkg/core/assumption"
	"storage_feasibility/pkg/core/diagnostics"
)

func TestBuildSchedule_ClosedFormPayment(t *testing.T) {
	f := assumption.Financing{LoanAmount: 9687379, AnnualRate: 0.075, TermMonths: 300}
	schedule := BuildSchedule(f, nil)
	require.Len(t, schedule, 300)

	r := 0.075 / 12
	want := 9687379 * r / (1 - math.Pow(1+r, -300))
	assert.InDelta(t, want, schedule[0].Payment, 1e-6)
	assert.InDelta(t, 9687379*r, schedule[0].Interest, 1e-6)

	var principal float64
	for i, st := range schedule {
		principal += st.Principal
		if i < len(schedule)-1 {
			assert.InDelta(t, want, st.Payment, 1e-6, "month %d", st.Month)
		}
		if i > 0 {
			assert.Equal(t, schedule[i-1].Ending, st.Beginning)
		}
	}
	assert.InDelta(t, 9687379, principal, 1e-4)
	assert.Equal(t, 0.0, schedule[299].Ending)
	assert.Equal(t, 0.0, schedule[299].Balloon)
}

func TestBuildSchedule_ZeroRate(t *testing.T) {
	diag := diagnostics.NewCollector()
	schedule := BuildSchedule(assumption.Financing{LoanAmount: 12000, TermMonths: 12}, diag)
	require.Len(t, schedule, 12)

	for _, st := range schedule {
		assert.InDelta(t, 1000, st.Principal, 1e-9)
		assert.Equal(t, 0.0, st.Interest)
	}
	assert.InDelta(t, 0, schedule[11].Ending, 1e-9)
	assert.Equal(t, 1, diag.Count(diagnostics.NumericDegeneracy))
}

func TestBuildSchedule_InterestOnly(t *testing.T) {
	f := assumption.Financing{LoanAmount: 1_000_000, AnnualRate: 0.06, TermMonths: 120, InterestOnlyMonths: 24}
	schedule := BuildSchedule(f, nil)

	for _, st := range schedule[:24] {
		assert.True(t, st.InterestOnly)
		assert.InDelta(t, 5000, st.Payment, 1e-9)
		assert.Equal(t, 0.0, st.Principal)
		assert.Equal(t, 1_000_000.0, st.Ending)
	}
	assert.InDelta(t, Payment(1_000_000, 0.005, 96), schedule[24].Payment, 1e-6)
	assert.InDelta(t, 0, schedule[119].Ending, 1e-9)
}

func TestBuildSchedule_Balloon(t *testing.T) {
	// 25-year amortization on a 10-year term.
	f := assumption.Financing{LoanAmount: 5_000_000, AnnualRate: 0.065, TermMonths: 120, AmortizationMonths: 300}
	schedule := BuildSchedule(f, nil)
	require.Len(t, schedule, 120)

	last := schedule[119]
	assert.Greater(t, last.Balloon, 0.0)
	assert.Equal(t, 0.0, last.Ending)
	assert.InDelta(t, Payment(5_000_000, 0.065/12, 300), last.Payment, 1e-6)
	assert.Equal(t, last.Balloon, BalanceAfter(schedule, 120))
	assert.Equal(t, 0.0, BalanceAfter(schedule, 121))
}

func TestAt(t *testing.T) {
	schedule := BuildSchedule(assumption.Financing{LoanAmount: 12000, AnnualRate: 0.12, TermMonths: 12}, nil)
	assert.Equal(t, schedule[5], At(schedule, 6))
	past := At(schedule, 13)
	assert.Equal(t, 13, past.Month)
	assert.Equal(t, 0.0, past.Payment)
}

func TestBuildSchedule_NoLoan(t *testing.T) {
	diag := diagnostics.NewCollector()
	schedule := BuildSchedule(assumption.Financing{TermMonths: 60}, diag)
	require.Len(t, schedule, 60)
	for _, st := range schedule {
		assert.Equal(t, 0.0, st.Payment)
	}
	assert.Empty(t, diag.Warnings())
}
