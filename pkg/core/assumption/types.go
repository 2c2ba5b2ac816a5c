// Package assumption defines ProjectionInputs, the immutable configuration a
// feasibility projection runs from: property specs, financing, occupancy
// targets, rate drivers, growth rates and the revenue/expense benchmark tables.
//
// Every constant the projection uses lives here or in a table passed alongside
// it; nothing is read from package-level mutable state.
package assumption

import (
	"encoding/json"
	"fmt"
	"time"
)

// HorizonMonths is the fixed projection length.
const HorizonMonths = 84

// HorizonYears is HorizonMonths expressed in whole years.
const HorizonYears = HorizonMonths / 12

// =============================================================================
// PROPERTY
// =============================================================================

// Characteristics are the physical flags that gate conditional expense lines.
type Characteristics struct {
	MultiStory                bool    `json:"multi_story" yaml:"multi_story"`
	ClimateControlledFraction float64 `json:"climate_controlled_fraction" yaml:"climate_controlled_fraction"` // 0-1 of rentable area
	GolfCart                  bool    `json:"golf_cart" yaml:"golf_cart"`
	Apartment                 bool    `json:"apartment" yaml:"apartment"`
	ThirdPartyManaged         bool    `json:"third_party_managed" yaml:"third_party_managed"`
	GroundLease               bool    `json:"ground_lease" yaml:"ground_lease"`
}

// PropertySpecs describes the facility.
type PropertySpecs struct {
	TotalArea       float64         `json:"total_area" yaml:"total_area"` // net rentable square feet
	UnitCount       int             `json:"unit_count" yaml:"unit_count"`
	Characteristics Characteristics `json:"characteristics" yaml:"characteristics"`
}

// AverageUnitArea is total area divided by unit count.
func (p PropertySpecs) AverageUnitArea() float64 {
	if p.UnitCount <= 0 {
		return 0
	}
	return p.TotalArea / float64(p.UnitCount)
}

// =============================================================================
// FINANCING
// =============================================================================

// Financing holds the permanent loan terms.
type Financing struct {
	LoanAmount         float64 `json:"loan_amount" yaml:"loan_amount"`
	AnnualRate         float64 `json:"annual_rate" yaml:"annual_rate"` // decimal, 0.075 = 7.5%
	TermMonths         int     `json:"term_months" yaml:"term_months"`
	InterestOnlyMonths int     `json:"interest_only_months,omitempty" yaml:"interest_only_months"`
	// AmortizationMonths longer than TermMonths produces a balloon at term.
	// Zero means fully amortizing over TermMonths.
	AmortizationMonths int `json:"amortization_months,omitempty" yaml:"amortization_months"`
}

// =============================================================================
// OCCUPANCY TARGETS
// =============================================================================

// TargetKind says how an occupancy target constrains its year.
type TargetKind string

const (
	TargetYearEnd TargetKind = "year_end" // occupancy at month 12 of the year
	TargetAverage TargetKind = "average"  // mean occupancy across the year
)

// OccupancyTarget is one lease-up year's goal, as a fraction of units.
type OccupancyTarget struct {
	Year      int        `json:"year" yaml:"year"`
	Occupancy float64    `json:"occupancy" yaml:"occupancy"`
	Kind      TargetKind `json:"kind,omitempty" yaml:"kind"`
}

// OccupancyPlan is the lease-up curve the simulator tracks. Years after the
// last target hold the last target's occupancy (the stabilized value).
type OccupancyPlan struct {
	StartingOccupancy float64           `json:"starting_occupancy" yaml:"starting_occupancy"` // 0 for new development
	Targets           []OccupancyTarget `json:"targets" yaml:"targets"`
}

// Stabilized returns the occupancy the plan settles at.
func (p OccupancyPlan) Stabilized() float64 {
	if len(p.Targets) == 0 {
		return p.StartingOccupancy
	}
	return p.Targets[len(p.Targets)-1].Occupancy
}

// FlatFinalYear reports whether the final target is a stabilized average,
// which holds its whole year at the target instead of ramping into it.
func (p OccupancyPlan) FlatFinalYear() bool {
	return len(p.Targets) > 0 && p.Targets[len(p.Targets)-1].Kind == TargetAverage
}

// YearEnds resolves every target to the occupancy at month 12 of its year.
// An intermediate average target becomes the year-end whose linear ramp from
// the previous year-end averages to it; a final average target is the flat
// stabilized level. Values are not clamped, so an unreachable average shows
// up above 1.
func (p OccupancyPlan) YearEnds() []float64 {
	ends := make([]float64, len(p.Targets))
	prev := p.StartingOccupancy
	for i, t := range p.Targets {
		end := t.Occupancy
		if t.Kind == TargetAverage && i < len(p.Targets)-1 {
			end = AverageYearEnd(prev, t.Occupancy)
		}
		ends[i] = end
		prev = end
	}
	return ends
}

// AverageYearEnd is the year-end e for which the ramp prev + (e-prev)*k/12,
// k = 1..12, has mean avg. That mean is prev + (e-prev)*13/24.
func AverageYearEnd(prev, avg float64) float64 {
	return prev + (avg-prev)*24/13
}

// StabilizationYear is the year of the final target (0 when there are none).
func (p OccupancyPlan) StabilizationYear() int {
	if len(p.Targets) == 0 {
		return 0
	}
	return p.Targets[len(p.Targets)-1].Year
}

// =============================================================================
// RATES & GROWTH
// =============================================================================

// RateDrivers are the two independent escalation paths.
type RateDrivers struct {
	StartingRate float64 `json:"starting_rate" yaml:"starting_rate"` // annual $/sf for new move-ins at month 1
	// StartingInPlaceRate prices the occupancy already in place at month 0.
	// Zero falls back to StartingRate.
	StartingInPlaceRate float64 `json:"starting_in_place_rate,omitempty" yaml:"starting_in_place_rate"`
	NewMoveInGrowth     float64 `json:"new_move_in_growth" yaml:"new_move_in_growth"` // annual
	InPlaceIncrease     float64 `json:"in_place_increase" yaml:"in_place_increase"`   // annual
}

// SeedRate is the rate charged to pre-existing tenants.
func (r RateDrivers) SeedRate() float64 {
	if r.StartingInPlaceRate > 0 {
		return r.StartingInPlaceRate
	}
	return r.StartingRate
}

// Growth holds expense escalators applied at projection anniversaries.
type Growth struct {
	ExpenseGrowth float64 `json:"expense_growth" yaml:"expense_growth"`
	TaxGrowth     float64 `json:"tax_growth" yaml:"tax_growth"`
}

// =============================================================================
// VALUATION
// =============================================================================

// CapRateBasis selects the year-1 cap rate denominator.
type CapRateBasis string

const (
	BasisPurchasePrice   CapRateBasis = "purchase_price"
	BasisDevelopmentCost CapRateBasis = "development_cost"
)

// Valuation holds the inputs used only by the annual metrics and returns.
type Valuation struct {
	PurchasePrice        float64      `json:"purchase_price" yaml:"purchase_price"`
	TotalDevelopmentCost float64      `json:"total_development_cost" yaml:"total_development_cost"` // land + construction + soft costs
	CurrentValue         float64      `json:"current_value,omitempty" yaml:"current_value"`         // denominator for years 2+, 0 = reuse year-1 basis
	Equity               float64      `json:"equity,omitempty" yaml:"equity"`                       // 0 = basis cost less loan
	CapRateBasis         CapRateBasis `json:"cap_rate_basis,omitempty" yaml:"cap_rate_basis"`
	ExitCapRate          float64      `json:"exit_cap_rate" yaml:"exit_cap_rate"`
	DiscountRate         float64      `json:"discount_rate" yaml:"discount_rate"`
}

// BasisCost is the year-1 cap rate denominator.
func (v Valuation) BasisCost() float64 {
	if v.CapRateBasis == BasisDevelopmentCost {
		return v.TotalDevelopmentCost
	}
	if v.PurchasePrice > 0 {
		return v.PurchasePrice
	}
	return v.TotalDevelopmentCost
}

// =============================================================================
// PROJECTION INPUTS
// =============================================================================

// ProjectionInputs is the complete, immutable input to one projection run.
type ProjectionInputs struct {
	Name      string        `json:"name,omitempty" yaml:"name"`
	StartDate time.Time     `json:"start_date" yaml:"-"` // YAML carries it as a string, see loader
	Property  PropertySpecs `json:"property" yaml:"property"`
	Financing Financing     `json:"financing" yaml:"financing"`
	Occupancy OccupancyPlan `json:"occupancy" yaml:"occupancy"`
	Rates     RateDrivers   `json:"rates" yaml:"rates"`
	Growth    Growth        `json:"growth" yaml:"growth"`
	Valuation Valuation     `json:"valuation" yaml:"valuation"`

	Revenue  RevenueBenchmarks `json:"revenue" yaml:"revenue"`
	Expenses ExpenseBenchmarks `json:"expenses" yaml:"expenses"`

	// CohortRetireThreshold retires a cohort once its remaining units fall
	// below it. Zero uses DefaultCohortRetireThreshold.
	CohortRetireThreshold float64 `json:"cohort_retire_threshold,omitempty" yaml:"cohort_retire_threshold"`
}

// DefaultCohortRetireThreshold matches the smallest unit fraction carried.
const DefaultCohortRetireThreshold = 0.01

// RetireThreshold returns the effective cohort retire threshold.
func (in ProjectionInputs) RetireThreshold() float64 {
	if in.CohortRetireThreshold > 0 {
		return in.CohortRetireThreshold
	}
	return DefaultCohortRetireThreshold
}

// EquityContribution is the configured equity, or the basis cost less the
// loan when no explicit figure is given. Never negative.
func (in ProjectionInputs) EquityContribution() float64 {
	if in.Valuation.Equity > 0 {
		return in.Valuation.Equity
	}
	cost := in.Valuation.TotalDevelopmentCost
	if cost == 0 {
		cost = in.Valuation.PurchasePrice
	}
	eq := cost - in.Financing.LoanAmount
	if eq < 0 {
		return 0
	}
	return eq
}

// MonthDate returns the first-of-month date for projection month m (1-based).
func (in ProjectionInputs) MonthDate(m int) time.Time {
	start := time.Date(in.StartDate.Year(), in.StartDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start.AddDate(0, m-1, 0)
}

// Clone returns a copy that shares no slices with the receiver, so variants
// can be edited while other goroutines read the original.
func (in ProjectionInputs) Clone() ProjectionInputs {
	out := in
	out.Occupancy.Targets = append([]OccupancyTarget(nil), in.Occupancy.Targets...)
	out.Expenses.Lines = append([]ExpenseLine(nil), in.Expenses.Lines...)
	return out
}

// ToJSON serializes the inputs.
func (in ProjectionInputs) ToJSON() ([]byte, error) {
	return json.MarshalIndent(in, "", "  ")
}

// FromJSON deserializes inputs. The result is not validated.
func FromJSON(data []byte) (*ProjectionInputs, error) {
	var in ProjectionInputs
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to parse projection inputs: %w", err)
	}
	return &in, nil
}
