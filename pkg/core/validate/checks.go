package validate

import (
	"fmt"
	"math"

	"storage_feasibility/pkg/core/annual"
	"storage_feasibility/pkg/core/assumption"
	"storage_feasibility/pkg/models"
)

// =============================================================================
// PROJECTION CONSISTENCY CHECKS
// =============================================================================

// Report collects every consistency check run against one projection.
type Report struct {
	Occupancy       *IdentityCheck  `json:"occupancy_identity"`
	Rollup          *RollupCheck    `json:"rollup"`
	Loan            *LoanCheck      `json:"loan"`
	ExpenseOutliers []*OutlierCheck `json:"expense_outliers,omitempty"`
	NOICAGR         float64         `json:"noi_cagr_pct"`
	AllPassed       bool            `json:"all_passed"`
	FailedChecks    []string        `json:"failed_checks,omitempty"`
}

// IdentityCheck validates ending = beginning + rentals - vacates every month
// and that occupied units never go negative or past capacity.
type IdentityCheck struct {
	MaxDifference float64 `json:"max_difference"`
	WorstMonth    int     `json:"worst_month"`
	MinUnits      float64 `json:"min_units"`
	MaxUnits      float64 `json:"max_units"`
	IsLinked      bool    `json:"is_linked"`
	Tolerance     float64 `json:"tolerance"`
}

// RollupCheck validates annual flows against the monthly sums.
type RollupCheck struct {
	IsLinked  bool    `json:"is_linked"`
	Note      string  `json:"note,omitempty"`
	Tolerance float64 `json:"tolerance"`
}

// LoanCheck validates loan - principal repaid - balloons = closing balance.
type LoanCheck struct {
	LoanAmount     float64 `json:"loan_amount"`
	PrincipalPaid  float64 `json:"principal_paid"`
	Balloons       float64 `json:"balloons"`
	ClosingBalance float64 `json:"closing_balance"`
	Difference     float64 `json:"difference"`
	IsLinked       bool    `json:"is_linked"`
	Tolerance      float64 `json:"tolerance"`
}

// outlierThresholdPct flags an operating-expense year that moves more than
// this against the prior year.
const outlierThresholdPct = 50.0

// CheckProjection runs all checks.
func CheckProjection(p *models.Projection, in assumption.ProjectionInputs, tolerance float64) *Report {
	report := &Report{AllPassed: true}

	// 1. Occupancy identity
	report.Occupancy = checkOccupancy(p.Months, float64(in.Property.UnitCount), in.Occupancy.StartingOccupancy, tolerance)
	if !report.Occupancy.IsLinked {
		report.AllPassed = false
		report.FailedChecks = append(report.FailedChecks, "ending = beginning + rentals - vacates")
	}

	// 2. Annual rollup
	report.Rollup = &RollupCheck{IsLinked: true, Tolerance: tolerance}
	if err := annual.Conserved(p.Months, p.Years, tolerance); err != nil {
		report.Rollup.IsLinked = false
		report.Rollup.Note = err.Error()
		report.AllPassed = false
		report.FailedChecks = append(report.FailedChecks, "annual flows = sum of months")
	}

	// 3. Loan balance
	report.Loan = checkLoan(p.Months, in.Financing.LoanAmount, tolerance)
	if !report.Loan.IsLinked {
		report.AllPassed = false
		report.FailedChecks = append(report.FailedChecks, "loan - principal - balloons = closing balance")
	}

	// 4. Informational
	for i := 1; i < len(p.Years); i++ {
		if p.Years[i-1].TotalExpenses == 0 {
			continue // growth from zero has no finite percentage
		}
		check := CheckForOutlier("total_expenses", p.Years[i].TotalExpenses, p.Years[i-1].TotalExpenses, outlierThresholdPct)
		if check.IsOutlier {
			check.Year = p.Years[i].Year
			report.ExpenseOutliers = append(report.ExpenseOutliers, check)
		}
	}
	if n := len(p.Years); n > 1 {
		report.NOICAGR = CalculateCAGR(p.Years[0].NOI, p.Years[n-1].NOI, n-1)
	}
	return report
}

func checkOccupancy(months []models.MonthlyRecord, units, starting, tolerance float64) *IdentityCheck {
	check := &IdentityCheck{Tolerance: tolerance, IsLinked: true, MinUnits: math.Inf(1)}
	prev := starting * units
	for _, m := range months {
		diff := math.Abs(prev + m.Rentals - m.Vacates - m.EndingUnits)
		if diff > check.MaxDifference {
			check.MaxDifference = diff
			check.WorstMonth = m.Month
		}
		check.MinUnits = math.Min(check.MinUnits, m.EndingUnits)
		check.MaxUnits = math.Max(check.MaxUnits, m.EndingUnits)
		prev = m.EndingUnits
	}
	if len(months) == 0 {
		check.MinUnits = 0
	}
	check.IsLinked = check.MaxDifference <= tolerance && check.MinUnits >= -tolerance && check.MaxUnits <= units+tolerance
	return check
}

func checkLoan(months []models.MonthlyRecord, loan, tolerance float64) *LoanCheck {
	check := &LoanCheck{LoanAmount: loan, Tolerance: tolerance}
	for _, m := range months {
		check.PrincipalPaid += m.Principal
		check.Balloons += m.Balloon
	}
	if len(months) > 0 {
		check.ClosingBalance = months[len(months)-1].LoanBalance
	}
	check.Difference = loan - check.PrincipalPaid - check.Balloons - check.ClosingBalance
	// Relative tolerance: principal sums over a large loan carry float drift.
	check.IsLinked = math.Abs(check.Difference) <= tolerance*math.Max(1, loan/1e6)
	return check
}

// Summary is a one-line description of the report.
func (r *Report) Summary() string {
	if r.AllPassed {
		return fmt.Sprintf("all checks passed (max occupancy drift %.2e)", r.Occupancy.MaxDifference)
	}
	return fmt.Sprintf("%d check(s) failed: %v", len(r.FailedChecks), r.FailedChecks)
}
