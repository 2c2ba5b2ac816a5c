package assumption

import (
	"fmt"
	"strings"
)

// Problem is one rejected input field.
type Problem struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ConfigurationError rejects a whole run before simulation starts.
type ConfigurationError struct {
	Problems []Problem `json:"problems"`
}

func (e *ConfigurationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, fmt.Sprintf("%s: %s", p.Field, p.Reason))
	}
	return "invalid projection inputs: " + strings.Join(parts, "; ")
}

func (e *ConfigurationError) add(field, format string, args ...any) {
	e.Problems = append(e.Problems, Problem{Field: field, Reason: fmt.Sprintf(format, args...)})
}

// Validate checks every invariant of the inputs. It returns nil or a
// *ConfigurationError listing all problems found.
func (in ProjectionInputs) Validate() error {
	e := &ConfigurationError{}

	// Property
	if in.Property.TotalArea <= 0 {
		e.add("property.total_area", "must be > 0, got %v", in.Property.TotalArea)
	}
	if in.Property.UnitCount <= 0 {
		e.add("property.unit_count", "must be > 0, got %d", in.Property.UnitCount)
	}
	cc := in.Property.Characteristics.ClimateControlledFraction
	if cc < 0 || cc > 1 {
		e.add("property.characteristics.climate_controlled_fraction", "must be within [0,1], got %v", cc)
	}
	if in.StartDate.IsZero() {
		e.add("start_date", "is required")
	}

	// Financing
	f := in.Financing
	if f.LoanAmount < 0 {
		e.add("financing.loan_amount", "must be >= 0, got %v", f.LoanAmount)
	}
	if f.AnnualRate < 0 {
		e.add("financing.annual_rate", "must be >= 0, got %v", f.AnnualRate)
	}
	if f.TermMonths <= 0 {
		e.add("financing.term_months", "must be > 0, got %d", f.TermMonths)
	}
	if f.InterestOnlyMonths < 0 || (f.TermMonths > 0 && f.InterestOnlyMonths >= f.TermMonths) {
		e.add("financing.interest_only_months", "must be within [0, term), got %d", f.InterestOnlyMonths)
	}
	if f.AmortizationMonths != 0 && f.AmortizationMonths < f.TermMonths {
		e.add("financing.amortization_months", "must be 0 or >= term_months, got %d", f.AmortizationMonths)
	}

	// Occupancy
	occ := in.Occupancy
	if occ.StartingOccupancy < 0 || occ.StartingOccupancy > 1 {
		e.add("occupancy.starting_occupancy", "must be within [0,1], got %v", occ.StartingOccupancy)
	}
	if len(occ.Targets) == 0 {
		e.add("occupancy.targets", "at least one target is required")
	}
	// Monotonicity and reachability apply to resolved year-ends.
	prev := occ.StartingOccupancy
	ends := occ.YearEnds()
	for i, t := range occ.Targets {
		field := fmt.Sprintf("occupancy.targets[%d]", i)
		if t.Year != i+1 {
			e.add(field+".year", "targets must be consecutive years starting at 1, got %d", t.Year)
		}
		if t.Occupancy < 0 || t.Occupancy > 1 {
			e.add(field+".occupancy", "must be within [0,1], got %v", t.Occupancy)
		} else if ends[i] > 1 {
			e.add(field+".occupancy", "average %v needs a year-end of %.4f, above full occupancy", t.Occupancy, ends[i])
		}
		if ends[i] < prev {
			e.add(field+".occupancy", "targets must be non-decreasing (year-end %v after %v)", ends[i], prev)
		}
		switch t.Kind {
		case "", TargetYearEnd, TargetAverage:
		default:
			e.add(field+".kind", "unknown target kind %q", t.Kind)
		}
		prev = ends[i]
	}
	if len(occ.Targets) > HorizonYears {
		e.add("occupancy.targets", "at most %d targets fit the horizon, got %d", HorizonYears, len(occ.Targets))
	}

	// Rates
	if in.Rates.StartingRate < 0 {
		e.add("rates.starting_rate", "must be >= 0, got %v", in.Rates.StartingRate)
	}
	if in.Rates.StartingInPlaceRate < 0 {
		e.add("rates.starting_in_place_rate", "must be >= 0, got %v", in.Rates.StartingInPlaceRate)
	}
	if in.Rates.NewMoveInGrowth <= -1 {
		e.add("rates.new_move_in_growth", "must be > -1, got %v", in.Rates.NewMoveInGrowth)
	}
	if in.Rates.InPlaceIncrease <= -1 {
		e.add("rates.in_place_increase", "must be > -1, got %v", in.Rates.InPlaceIncrease)
	}
	if in.Growth.ExpenseGrowth <= -1 {
		e.add("growth.expense_growth", "must be > -1, got %v", in.Growth.ExpenseGrowth)
	}
	if in.Growth.TaxGrowth <= -1 {
		e.add("growth.tax_growth", "must be > -1, got %v", in.Growth.TaxGrowth)
	}

	// Benchmarks
	rb := in.Revenue
	for _, pct := range []struct {
		name string
		v    float64
	}{
		{"revenue.discount_pct", rb.DiscountPct},
		{"revenue.write_off_pct", rb.WriteOffPct},
		{"revenue.late_fee_pct", rb.LateFeePct},
		{"revenue.other_fee_pct", rb.OtherFeePct},
		{"revenue.insurance_penetration", rb.InsurancePenetration},
	} {
		if pct.v < 0 || pct.v > 1 {
			e.add(pct.name, "must be within [0,1], got %v", pct.v)
		}
	}
	if rb.DiscountPct+rb.WriteOffPct > 1 {
		e.add("revenue", "discount_pct + write_off_pct must not exceed 1")
	}
	if in.Expenses.Staffing.AreaPerFTE <= 0 {
		e.add("expenses.staffing.area_per_fte", "must be > 0, got %v", in.Expenses.Staffing.AreaPerFTE)
	}
	seen := make(map[string]bool, len(in.Expenses.Lines))
	for i, l := range in.Expenses.Lines {
		field := fmt.Sprintf("expenses.lines[%d]", i)
		if l.Key == "" {
			e.add(field+".key", "is required")
		} else if seen[l.Key] {
			e.add(field+".key", "duplicate key %q", l.Key)
		}
		seen[l.Key] = true
		switch l.Basis {
		case BasisFixedMonthly, BasisPerAreaAnnual, BasisPerFTEAnnual, BasisPctPayroll, BasisPctRevenue:
		default:
			e.add(field+".basis", "unknown basis %q", l.Basis)
		}
		if l.Amount < 0 {
			e.add(field+".amount", "must be >= 0, got %v", l.Amount)
		}
		if !knownGroup(l.Group) {
			e.add(field+".group", "unknown group %q", l.Group)
		}
	}

	// Valuation
	v := in.Valuation
	switch v.CapRateBasis {
	case "", BasisPurchasePrice, BasisDevelopmentCost:
	default:
		e.add("valuation.cap_rate_basis", "unknown basis %q", v.CapRateBasis)
	}
	if v.PurchasePrice < 0 || v.TotalDevelopmentCost < 0 || v.CurrentValue < 0 || v.Equity < 0 {
		e.add("valuation", "prices, costs and equity must be >= 0")
	}
	if v.ExitCapRate < 0 {
		e.add("valuation.exit_cap_rate", "must be >= 0, got %v", v.ExitCapRate)
	}

	if len(e.Problems) > 0 {
		return e
	}
	return nil
}

func knownGroup(g ExpenseGroup) bool {
	for _, known := range ExpenseGroups() {
		if g == known {
			return true
		}
	}
	return false
}
