// Package annual rolls the monthly projection into yearly summaries and
// derives the investment ratios.
package annual

import (
	"fmt"

	"storage_feasibility/pkg/core/assumption"
	"storage_feasibility/pkg/core/diagnostics"
	"storage_feasibility/pkg/models"
)

// Aggregate groups months by projection year. Flows are summed, balances take
// the last month of the year, rates are averaged.
func Aggregate(months []models.MonthlyRecord, in assumption.ProjectionInputs, diag *diagnostics.Collector) []models.AnnualSummary {
	var years []models.AnnualSummary
	for start := 0; start < len(months); start += 12 {
		end := start + 12
		if end > len(months) {
			end = len(months)
		}
		years = append(years, summarize(months[start:end]))
	}
	for i := range years {
		applyMetrics(&years[i], in, diag)
	}
	return years
}

func summarize(block []models.MonthlyRecord) models.AnnualSummary {
	last := block[len(block)-1]
	y := models.AnnualSummary{
		Year:            last.Year,
		EndingUnits:     last.EndingUnits,
		EndingOccupancy: last.Occupancy,
		LoanBalance:     last.LoanBalance,
		Revenue:         make(map[string]float64),
		Expenses:        make(map[string]float64),
		ExpenseGroups:   make(map[string]float64),
	}
	for _, m := range block {
		// Flows
		y.Rentals += m.Rentals
		y.Vacates += m.Vacates
		y.TotalRevenue += m.TotalRevenue
		y.TotalExpenses += m.TotalExpenses
		y.NOI += m.NOI
		y.Interest += m.Interest
		y.Principal += m.Principal
		y.DebtService += m.DebtService
		y.CashFlow += m.CashFlow
		addInto(y.Revenue, m.Revenue)
		addInto(y.Expenses, m.Expenses)
		addInto(y.ExpenseGroups, m.ExpenseGroups)

		// Rates
		y.AverageOccupancy += m.Occupancy
		y.AverageNewMoveInRate += m.NewMoveInRate
		y.AverageInPlaceRate += m.InPlaceRate
	}
	n := float64(len(block))
	y.AverageOccupancy /= n
	y.AverageNewMoveInRate /= n
	y.AverageInPlaceRate /= n
	return y
}

func addInto(dst, src map[string]float64) {
	for k, v := range src {
		dst[k] += v
	}
}

// applyMetrics fills the ratio fields. A zero denominator leaves the metric
// nil and records a warning.
func applyMetrics(y *models.AnnualSummary, in assumption.ProjectionInputs, diag *diagnostics.Collector) {
	y.DSCR = ratio(y.NOI, y.DebtService, "dscr", "debt service", y.Year, diag)

	basis := in.Valuation.BasisCost()
	if y.Year > 1 && in.Valuation.CurrentValue > 0 {
		basis = in.Valuation.CurrentValue
	}
	y.CapRate = ratio(y.NOI, basis, "cap_rate", "cap rate basis", y.Year, diag)
	y.CashOnCash = ratio(y.CashFlow, in.EquityContribution(), "cash_on_cash", "equity", y.Year, diag)
	y.Yield = ratio(y.NOI, in.Valuation.TotalDevelopmentCost, "yield", "total development cost", y.Year, diag)
}

func ratio(num, den float64, metric, denName string, year int, diag *diagnostics.Collector) *float64 {
	if den == 0 {
		diag.Addf("annual:"+metric, diagnostics.NumericDegeneracy, "annual", 0,
			"%s is zero, %s left undefined (first seen in year %d)", denName, metric, year)
		return nil
	}
	return models.Float(num / den)
}

// Conserved reports whether annual NOI and rentals equal the monthly sums
// within tol. It backs the projection checks.
func Conserved(months []models.MonthlyRecord, years []models.AnnualSummary, tol float64) error {
	var noi, rentals, annualNOI, annualRentals float64
	for _, m := range months {
		noi += m.NOI
		rentals += m.Rentals
	}
	for _, y := range years {
		annualNOI += y.NOI
		annualRentals += y.Rentals
	}
	if d := noi - annualNOI; d > tol || d < -tol {
		return fmt.Errorf("annual NOI %.6f differs from monthly sum %.6f", annualNOI, noi)
	}
	if d := rentals - annualRentals; d > tol || d < -tol {
		return fmt.Errorf("annual rentals %.6f differ from monthly sum %.6f", annualRentals, rentals)
	}
	return nil
}
