package valuation

import (
	"math"

	"storage_feasibility/pkg/core/assumption"
	"storage_feasibility/pkg/core/debt"
	"storage_feasibility/pkg/core/diagnostics"
	"storage_feasibility/pkg/models"
)

// =============================================================================
// DISCOUNTING
// =============================================================================

// NPV discounts cashFlows (index 0 undiscounted) at rate.
func NPV(cashFlows []float64, rate float64) float64 {
	var npv float64
	factor := 1.0
	for _, cf := range cashFlows {
		npv += cf / factor
		factor *= 1 + rate
	}
	return npv
}

// npvDerivative is d(NPV)/d(rate).
func npvDerivative(cashFlows []float64, rate float64) float64 {
	var d float64
	for t, cf := range cashFlows {
		if t == 0 {
			continue
		}
		d -= float64(t) * cf / math.Pow(1+rate, float64(t+1))
	}
	return d
}

const (
	irrMaxIterations = 100
	irrTolerance     = 1e-7
	irrLowerBound    = -0.99
	irrUpperBound    = 10.0
)

// IRR solves NPV(cashFlows, r) = 0. Newton from a 10% guess; when Newton
// stalls or leaves the bounds it falls back to bisection. ok is false when
// the flows never change sign or no root is bracketed.
func IRR(cashFlows []float64) (irr float64, ok bool) {
	if !signChange(cashFlows) {
		return 0, false
	}

	// 1. Newton-Raphson
	r := 0.10
	for i := 0; i < irrMaxIterations; i++ {
		f := NPV(cashFlows, r)
		if math.Abs(f) < irrTolerance {
			return r, true
		}
		d := npvDerivative(cashFlows, r)
		if math.Abs(d) < 1e-12 {
			break
		}
		next := r - f/d
		if next <= irrLowerBound || next >= irrUpperBound || math.IsNaN(next) {
			break
		}
		if math.Abs(next-r) < 1e-12 {
			return next, true
		}
		r = next
	}

	// 2. Bisection
	lo, hi := irrLowerBound, irrUpperBound
	flo := NPV(cashFlows, lo)
	if flo*NPV(cashFlows, hi) > 0 {
		return 0, false
	}
	for i := 0; i < 200; i++ {
		mid := (lo + hi) / 2
		fmid := NPV(cashFlows, mid)
		if math.Abs(fmid) < irrTolerance || (hi-lo)/2 < 1e-12 {
			return mid, true
		}
		if flo*fmid < 0 {
			hi = mid
		} else {
			lo, flo = mid, fmid
		}
	}
	return (lo + hi) / 2, true
}

func signChange(cashFlows []float64) bool {
	var pos, neg bool
	for _, cf := range cashFlows {
		pos = pos || cf > 0
		neg = neg || cf < 0
	}
	return pos && neg
}

// =============================================================================
// HOLD-PERIOD RETURNS
// =============================================================================

// StabilizedIndex picks the year used for yield and break-even: the year
// after the last lease-up target, or the final year if the horizon is shorter.
func StabilizedIndex(plan assumption.OccupancyPlan, years int) int {
	idx := plan.StabilizationYear()
	if idx > years-1 {
		idx = years - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// CalculateReturns derives the levered hold-period returns. The sale happens
// at the end of the last projected year at final NOI over the exit cap rate,
// net of the actual remaining loan balance.
func CalculateReturns(years []models.AnnualSummary, schedule []debt.State, in assumption.ProjectionInputs, diag *diagnostics.Collector) *models.Returns {
	if len(years) == 0 {
		return nil
	}
	equity := in.EquityContribution()
	last := years[len(years)-1]
	stab := years[StabilizedIndex(in.Occupancy, len(years))]

	ret := &models.Returns{
		HoldYears:     len(years),
		Equity:        equity,
		StabilizedNOI: stab.NOI,
	}

	// 1. Exit. The loan is repaid at sale even when the property has no
	// value, so proceeds can be negative.
	exitMonth := len(years) * 12
	switch {
	case in.Valuation.ExitCapRate <= 0:
		diag.Addf("returns:exit_cap", diagnostics.NumericDegeneracy, "returns", 0,
			"exit cap rate is zero, sale value excluded")
	case last.NOI <= 0:
		diag.Addf("returns:exit_noi", diagnostics.NumericDegeneracy, "returns", 0,
			"final-year NOI %.2f is not positive, sale value floored at zero", last.NOI)
	default:
		ret.ExitValue = last.NOI / in.Valuation.ExitCapRate
	}
	ret.ExitLoanBalance = debt.BalanceAfter(schedule, exitMonth)
	ret.NetSaleProceeds = ret.ExitValue - ret.ExitLoanBalance

	// 2. Cash flow vector
	ret.CashFlows = make([]float64, 0, len(years)+1)
	ret.CashFlows = append(ret.CashFlows, -equity)
	var distributions float64
	for i, y := range years {
		cf := y.CashFlow
		if i == len(years)-1 {
			cf += ret.NetSaleProceeds
		}
		distributions += cf
		ret.CashFlows = append(ret.CashFlows, cf)
	}

	// 3. IRR, NPV, multiple
	if irr, ok := IRR(ret.CashFlows); ok {
		ret.IRR = models.Float(irr)
	} else {
		diag.Addf("returns:irr", diagnostics.NumericDegeneracy, "returns", 0,
			"IRR undefined for the hold-period cash flows")
	}
	ret.NPV = NPV(ret.CashFlows, in.Valuation.DiscountRate)
	if equity > 0 {
		ret.EquityMultiple = models.Float(distributions / equity)
	}

	// 4. Development yield and break-even
	if cost := in.Valuation.TotalDevelopmentCost; cost > 0 {
		y := stab.NOI / cost
		ret.DevelopmentYield = models.Float(y)
		ret.DevelopmentSpread = models.Float(y - in.Valuation.ExitCapRate)
	}
	if stab.AverageOccupancy > 0 && stab.TotalRevenue > 0 {
		potential := stab.TotalRevenue / stab.AverageOccupancy
		ret.BreakEvenOccupancy = models.Float((stab.TotalExpenses + stab.DebtService) / potential)
	}
	return ret
}
