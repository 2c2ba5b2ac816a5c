package models

import (
	"encoding/json"
	"time"

	"storage_feasibility/pkg/core/diagnostics"
)

// MonthlyRecord is one projection month. Values are unrounded.
type MonthlyRecord struct {
	Month int       `json:"month"`
	Date  time.Time `json:"date"`
	Year  int       `json:"year"`

	// Occupancy
	Rentals         float64 `json:"rentals"`
	Vacates         float64 `json:"vacates"`
	EndingUnits     float64 `json:"ending_units"`
	OccupiedArea    float64 `json:"occupied_area"`
	Occupancy       float64 `json:"occupancy"`
	TargetOccupancy float64 `json:"target_occupancy"`
	OverTarget      bool    `json:"over_target,omitempty"`
	LiveCohorts     int     `json:"live_cohorts"`

	// Rates (annual $/sf)
	NewMoveInRate float64 `json:"new_move_in_rate"`
	InPlaceRate   float64 `json:"in_place_rate"`

	// Operations
	Revenue           map[string]float64 `json:"revenue"`
	Expenses          map[string]float64 `json:"expenses"`
	ExpenseGroups     map[string]float64 `json:"expense_groups"`
	GrossRentalIncome float64            `json:"gross_rental_income"`
	TotalRevenue      float64            `json:"total_revenue"`
	TotalExpenses     float64            `json:"total_expenses"`
	NOI               float64            `json:"noi"`

	// Debt
	Interest    float64 `json:"interest"`
	Principal   float64 `json:"principal"`
	DebtService float64 `json:"debt_service"`
	Balloon     float64 `json:"balloon,omitempty"` // settled outside debt service
	LoanBalance float64 `json:"loan_balance"`

	CashFlow float64 `json:"cash_flow"` // NOI - debt service
}

// AnnualSummary rolls up 12 months. Flows are summed, balances take the last
// month and rates are averaged. Ratio metrics are nil when undefined.
type AnnualSummary struct {
	Year int `json:"year"`

	Rentals          float64 `json:"rentals"`
	Vacates          float64 `json:"vacates"`
	EndingUnits      float64 `json:"ending_units"`
	EndingOccupancy  float64 `json:"ending_occupancy"`
	AverageOccupancy float64 `json:"average_occupancy"`

	AverageNewMoveInRate float64 `json:"average_new_move_in_rate"`
	AverageInPlaceRate   float64 `json:"average_in_place_rate"`

	Revenue       map[string]float64 `json:"revenue"`
	Expenses      map[string]float64 `json:"expenses"`
	ExpenseGroups map[string]float64 `json:"expense_groups"`
	TotalRevenue  float64            `json:"total_revenue"`
	TotalExpenses float64            `json:"total_expenses"`
	NOI           float64            `json:"noi"`

	Interest    float64 `json:"interest"`
	Principal   float64 `json:"principal"`
	DebtService float64 `json:"debt_service"`
	LoanBalance float64 `json:"loan_balance"`
	CashFlow    float64 `json:"cash_flow"`

	DSCR       *float64 `json:"dscr"`
	CapRate    *float64 `json:"cap_rate"`
	CashOnCash *float64 `json:"cash_on_cash"`
	Yield      *float64 `json:"yield_on_cost"`
}

// Returns are the hold-period investment metrics.
type Returns struct {
	HoldYears       int     `json:"hold_years"`
	Equity          float64 `json:"equity"`
	StabilizedNOI   float64 `json:"stabilized_noi"`
	ExitValue       float64 `json:"exit_value"`
	ExitLoanBalance float64 `json:"exit_loan_balance"`
	NetSaleProceeds float64 `json:"net_sale_proceeds"`

	// CashFlows runs from the year-0 equity outflow through the exit year.
	CashFlows []float64 `json:"cash_flows"`

	IRR                *float64 `json:"irr"`
	NPV                float64  `json:"npv"`
	EquityMultiple     *float64 `json:"equity_multiple"`
	DevelopmentYield   *float64 `json:"development_yield"`
	DevelopmentSpread  *float64 `json:"development_spread"` // yield less exit cap
	BreakEvenOccupancy *float64 `json:"break_even_occupancy"`
}

// Projection is the complete engine output.
type Projection struct {
	Name     string                `json:"name,omitempty"`
	Months   []MonthlyRecord       `json:"months"`
	Years    []AnnualSummary       `json:"years"`
	Returns  *Returns              `json:"returns,omitempty"`
	Warnings []diagnostics.Warning `json:"warnings"`
}

// Float returns a pointer to v, for optional metrics.
func Float(v float64) *float64 { return &v }

// ToJSON serializes the projection.
func (p *Projection) ToJSON() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// Stabilized returns the final annual summary, or nil when empty.
func (p *Projection) Stabilized() *AnnualSummary {
	if len(p.Years) == 0 {
		return nil
	}
	return &p.Years[len(p.Years)-1]
}
