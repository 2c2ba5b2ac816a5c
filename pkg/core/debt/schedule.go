// Package debt builds the permanent-loan amortization schedule.
package debt

import (
	"math"

	"storage_feasibility/pkg/core/assumption"
	"storage_feasibility/pkg/core/diagnostics"
)

// State is one month of the loan.
type State struct {
	Month        int     `json:"month"`
	Beginning    float64 `json:"beginning_balance"`
	Payment      float64 `json:"payment"` // interest + principal, excludes any balloon
	Interest     float64 `json:"interest"`
	Principal    float64 `json:"principal"`
	Balloon      float64 `json:"balloon,omitempty"`
	Ending       float64 `json:"ending_balance"`
	InterestOnly bool    `json:"interest_only,omitempty"`
}

// Payment is the level annuity payment for principal over n months at a
// monthly rate. A zero rate degrades to straight-line.
func Payment(principal, monthlyRate float64, n int) float64 {
	if n <= 0 {
		return principal
	}
	if monthlyRate == 0 {
		return principal / float64(n)
	}
	return principal * monthlyRate / (1 - math.Pow(1+monthlyRate, -float64(n)))
}

// AmortizationPeriod is the number of amortizing months after interest-only
// ends. Zero AmortizationMonths means fully amortizing within the term.
func AmortizationPeriod(f assumption.Financing) int {
	if f.AmortizationMonths > 0 {
		return f.AmortizationMonths
	}
	return f.TermMonths - f.InterestOnlyMonths
}

// BuildSchedule returns one State per month of the loan term.
func BuildSchedule(f assumption.Financing, diag *diagnostics.Collector) []State {
	if f.TermMonths <= 0 {
		return nil
	}
	schedule := make([]State, 0, f.TermMonths)
	r := f.AnnualRate / 12
	n := AmortizationPeriod(f)
	balance := f.LoanAmount

	if r == 0 && balance > 0 {
		diag.Addf("debt:zero_rate", diagnostics.NumericDegeneracy, "debt", 0,
			"loan carries a zero rate, principal amortizes straight-line")
	}

	var level float64
	for m := 1; m <= f.TermMonths; m++ {
		st := State{Month: m, Beginning: balance}
		st.Interest = balance * r

		if m <= f.InterestOnlyMonths {
			// 1. Interest only
			st.InterestOnly = true
			st.Payment = st.Interest
		} else {
			// 2. Amortizing. The level payment is fixed at the first
			// amortizing month.
			k := m - f.InterestOnlyMonths
			if k == 1 {
				level = Payment(balance, r, n)
			}
			st.Principal = level - st.Interest
			if k >= n || st.Principal > balance {
				st.Principal = balance
			}
			if st.Principal < 0 {
				st.Principal = 0
			}
			st.Payment = st.Interest + st.Principal
		}

		balance -= st.Principal
		if balance < 0 {
			balance = 0
		}

		// 3. Balloon at term
		if m == f.TermMonths && balance > 0 {
			st.Balloon = balance
			balance = 0
		}
		st.Ending = balance
		schedule = append(schedule, st)
	}
	return schedule
}

// At returns the state for month m, or a zero State (after payoff or before
// the loan) carrying only the month number.
func At(schedule []State, m int) State {
	if m >= 1 && m <= len(schedule) {
		return schedule[m-1]
	}
	return State{Month: m}
}

// BalanceAfter is the outstanding balance at the end of month m, before any
// balloon is settled. Used for exit proceeds.
func BalanceAfter(schedule []State, m int) float64 {
	switch {
	case len(schedule) == 0, m > len(schedule):
		return 0
	case m < 1:
		return schedule[0].Beginning
	}
	st := schedule[m-1]
	return st.Ending + st.Balloon
}
