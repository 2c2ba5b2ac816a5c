// Package projection runs the 84-month feasibility projection. The Engine
// wires the occupancy simulator, rate escalator, revenue and expense builders
// and debt schedule in a fixed call order each month, then rolls the months
// into annual summaries and hold-period returns.
package projection

import (
	"errors"

	"storage_feasibility/pkg/core/annual"
	"storage_feasibility/pkg/core/assumption"
	"storage_feasibility/pkg/core/attrition"
	"storage_feasibility/pkg/core/debt"
	"storage_feasibility/pkg/core/diagnostics"
	"storage_feasibility/pkg/core/expense"
	"storage_feasibility/pkg/core/occupancy"
	"storage_feasibility/pkg/core/rate"
	"storage_feasibility/pkg/core/revenue"
	"storage_feasibility/pkg/core/seasonality"
	"storage_feasibility/pkg/core/valuation"
	"storage_feasibility/pkg/models"
)

// ErrNoAttritionTable is returned when the engine has no attrition curve.
var ErrNoAttritionTable = errors.New("projection engine requires an attrition table")

// Engine holds the shared read-only tables. One Engine can serve many
// concurrent Run calls; each run owns its simulator and collector.
type Engine struct {
	Attrition   *attrition.Table
	Seasonality *seasonality.Profile
}

// NewEngine creates an engine. A nil profile means no seasonality.
func NewEngine(table *attrition.Table, profile *seasonality.Profile) *Engine {
	if profile == nil {
		profile = seasonality.Flat()
	}
	return &Engine{Attrition: table, Seasonality: profile}
}

// Run validates the inputs and produces the full projection. The only error
// paths are a missing table and an *assumption.ConfigurationError; data
// problems found while running are returned as warnings.
func (e *Engine) Run(in assumption.ProjectionInputs) (*models.Projection, error) {
	if e.Attrition == nil {
		return nil, ErrNoAttritionTable
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	diag := diagnostics.NewCollector()

	// 1. Per-run components
	sim := occupancy.NewSimulator(in, e.Attrition, e.Seasonality, diag)
	esc := rate.NewEscalator(in.Rates, in.MonthDate(1), e.Seasonality)
	rev := revenue.NewBuilder(in.Revenue)
	exp := expense.NewBuilder(in)
	schedule := debt.BuildSchedule(in.Financing, diag)

	// 2. Monthly loop
	months := make([]models.MonthlyRecord, 0, assumption.HorizonMonths)
	for {
		st, ok := sim.Step()
		if !ok {
			break
		}
		months = append(months, e.month(st, sim, esc, rev, exp, schedule, diag))
	}

	// 3. Rollup
	years := annual.Aggregate(months, in, diag)
	returns := valuation.CalculateReturns(years, schedule, in, diag)

	return &models.Projection{
		Name:     in.Name,
		Months:   months,
		Years:    years,
		Returns:  returns,
		Warnings: diag.Warnings(),
	}, nil
}

func (e *Engine) month(
	st occupancy.MonthState,
	sim *occupancy.Simulator,
	esc *rate.Escalator,
	rev *revenue.Builder,
	exp *expense.Builder,
	schedule []debt.State,
	diag *diagnostics.Collector,
) models.MonthlyRecord {
	m := st.Month
	inPlace := esc.InPlaceRate(m, sim.Remaining())
	r := rev.Build(st, inPlace)
	x := exp.Build(m, r.Total, e.Seasonality.At(st.Date.Month()), diag)
	loan := debt.At(schedule, m)

	noi := r.Total - x.Total
	return models.MonthlyRecord{
		Month:             m,
		Date:              st.Date,
		Year:              st.Year,
		Rentals:           st.Rentals,
		Vacates:           st.Vacates,
		EndingUnits:       st.Ending,
		OccupiedArea:      st.OccupiedArea,
		Occupancy:         st.Occupancy,
		TargetOccupancy:   st.TargetOccupancy,
		OverTarget:        st.OverTarget,
		LiveCohorts:       st.LiveCohorts,
		NewMoveInRate:     esc.NewMoveInRate(m),
		InPlaceRate:       inPlace,
		Revenue:           r.Items,
		Expenses:          x.Items,
		ExpenseGroups:     x.Groups,
		GrossRentalIncome: r.Gross,
		TotalRevenue:      r.Total,
		TotalExpenses:     x.Total,
		NOI:               noi,
		Interest:          loan.Interest,
		Principal:         loan.Principal,
		DebtService:       loan.Payment,
		Balloon:           loan.Balloon,
		LoanBalance:       loan.Ending,
		CashFlow:          noi - loan.Payment,
	}
}
