package assumption

import "time"

// DefaultInputs is a ground-up development used by the CLI template and as a
// fixture: 60,000 sf, 500 units, leasing to 33%, 68% and 92% over three years.
func DefaultInputs() ProjectionInputs {
	return ProjectionInputs{
		Name:      "new-development",
		StartDate: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		Property: PropertySpecs{
			TotalArea: 60000,
			UnitCount: 500,
			Characteristics: Characteristics{
				ClimateControlledFraction: 0.4,
			},
		},
		Financing: Financing{
			LoanAmount: 9687379,
			AnnualRate: 0.075,
			TermMonths: 300,
		},
		Occupancy: OccupancyPlan{
			StartingOccupancy: 0,
			Targets: []OccupancyTarget{
				{Year: 1, Occupancy: 0.33, Kind: TargetYearEnd},
				{Year: 2, Occupancy: 0.68, Kind: TargetYearEnd},
				{Year: 3, Occupancy: 0.92, Kind: TargetYearEnd},
			},
		},
		Rates: RateDrivers{
			StartingRate:    18,
			NewMoveInGrowth: 0.03,
			InPlaceIncrease: 0.05,
		},
		Growth: Growth{ExpenseGrowth: 0.03, TaxGrowth: 0.02},
		Valuation: Valuation{
			TotalDevelopmentCost: 12900000,
			CapRateBasis:         BasisDevelopmentCost,
			ExitCapRate:          0.0575,
			DiscountRate:         0.10,
		},
		Revenue:  DefaultRevenueBenchmarks(),
		Expenses: DefaultExpenseBenchmarks(),
	}
}
