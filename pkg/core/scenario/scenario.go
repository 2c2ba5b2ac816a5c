// Package scenario runs probability-weighted variants of a projection and
// one-at-a-time sensitivity shocks. Every variant is an independent engine
// run over a cloned input set, so they execute concurrently.
package scenario

import (
	"math"

	"storage_feasibility/pkg/core/assumption"
)

// Scenario adjusts the base inputs. Zero fields leave the base untouched.
type Scenario struct {
	Name   string  `json:"name" yaml:"name"`
	Weight float64 `json:"weight" yaml:"weight"` // probability, weights are normalized

	RateAdjustment       float64 `json:"rate_adjustment" yaml:"rate_adjustment"`                     // multiplicative on starting rates
	RateGrowthAdjustment float64 `json:"rate_growth_adjustment" yaml:"rate_growth_adjustment"`       // additive on both growth rates
	StabilizedOccupancy  float64 `json:"stabilized_occupancy" yaml:"stabilized_occupancy"`           // 0 keeps the plan's
	MonthsToStabilize    int     `json:"months_to_stabilize" yaml:"months_to_stabilize"`             // 0 keeps the plan's
	CostAdjustment       float64 `json:"cost_adjustment" yaml:"cost_adjustment"`                     // multiplicative on development cost and purchase price
	ExpenseAdjustment    float64 `json:"expense_adjustment" yaml:"expense_adjustment"`               // multiplicative on non-percentage lines
	ExpenseGrowthAdj     float64 `json:"expense_growth_adjustment" yaml:"expense_growth_adjustment"` // additive on expense growth
	InterestAdjustment   float64 `json:"interest_adjustment" yaml:"interest_adjustment"`             // additive on loan rate
	ExitCapAdjustment    float64 `json:"exit_cap_adjustment" yaml:"exit_cap_adjustment"`             // additive on exit cap
}

// DefaultScenarios are the standard downside, base and upside cases.
func DefaultScenarios() []Scenario {
	return []Scenario{
		{
			Name:                 "conservative",
			Weight:               0.25,
			RateAdjustment:       -0.10,
			RateGrowthAdjustment: -0.01,
			StabilizedOccupancy:  0.88,
			MonthsToStabilize:    42,
			CostAdjustment:       0.10,
			ExpenseAdjustment:    0.05,
			ExpenseGrowthAdj:     0.005,
			InterestAdjustment:   0.005,
			ExitCapAdjustment:    0.0075,
		},
		{Name: "base", Weight: 0.50},
		{
			Name:                 "aggressive",
			Weight:               0.25,
			RateAdjustment:       0.05,
			RateGrowthAdjustment: 0.005,
			StabilizedOccupancy:  0.95,
			MonthsToStabilize:    30,
			CostAdjustment:       -0.05,
			ExpenseAdjustment:    -0.02,
			ExpenseGrowthAdj:     -0.0025,
			ExitCapAdjustment:    -0.0025,
		},
	}
}

// Apply returns a modified copy of base.
func (s Scenario) Apply(base assumption.ProjectionInputs) assumption.ProjectionInputs {
	in := base.Clone()
	if s.Name != "" {
		in.Name = joinName(base.Name, s.Name)
	}

	// 1. Rates
	in.Rates.StartingRate *= 1 + s.RateAdjustment
	in.Rates.StartingInPlaceRate *= 1 + s.RateAdjustment
	in.Rates.NewMoveInGrowth += s.RateGrowthAdjustment
	in.Rates.InPlaceIncrease += s.RateGrowthAdjustment

	// 2. Lease-up
	if s.MonthsToStabilize > 0 || s.StabilizedOccupancy > 0 {
		stabilized := in.Occupancy.Stabilized()
		if s.StabilizedOccupancy > 0 {
			stabilized = s.StabilizedOccupancy
		}
		months := s.MonthsToStabilize
		if months == 0 {
			months = in.Occupancy.StabilizationYear() * 12
		}
		in.Occupancy.Targets = LinearPlan(in.Occupancy.StartingOccupancy, stabilized, months)
	}

	// 3. Costs and expenses
	in.Valuation.TotalDevelopmentCost *= 1 + s.CostAdjustment
	in.Valuation.PurchasePrice *= 1 + s.CostAdjustment
	in.Growth.ExpenseGrowth += s.ExpenseGrowthAdj
	if s.ExpenseAdjustment != 0 {
		for i, l := range in.Expenses.Lines {
			if l.Basis == assumption.BasisPctPayroll || l.Basis == assumption.BasisPctRevenue {
				continue
			}
			in.Expenses.Lines[i].Amount = l.Amount * (1 + s.ExpenseAdjustment)
		}
	}

	// 4. Capital markets
	in.Financing.AnnualRate += s.InterestAdjustment
	if in.Financing.AnnualRate < 0 {
		in.Financing.AnnualRate = 0
	}
	in.Valuation.ExitCapRate += s.ExitCapAdjustment
	return in
}

// LinearPlan builds year-end targets for a straight-line lease-up from start
// to stabilized over months, then flat.
func LinearPlan(start, stabilized float64, months int) []assumption.OccupancyTarget {
	if stabilized < start {
		stabilized = start
	}
	if months < 1 {
		months = 1
	}
	years := int(math.Ceil(float64(months) / 12))
	if years > assumption.HorizonYears {
		years = assumption.HorizonYears
	}
	targets := make([]assumption.OccupancyTarget, 0, years)
	for y := 1; y <= years; y++ {
		progress := math.Min(1, float64(12*y)/float64(months))
		targets = append(targets, assumption.OccupancyTarget{
			Year:      y,
			Occupancy: start + (stabilized-start)*progress,
			Kind:      assumption.TargetYearEnd,
		})
	}
	return targets
}

func joinName(base, variant string) string {
	if base == "" {
		return variant
	}
	return base + "/" + variant
}
