// Package display turns an unrounded projection into human-facing rows.
// Rounding happens only here, half away from zero on exact decimals; the
// engine output itself is never rounded.
package display

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"storage_feasibility/pkg/core/scenario"
	"storage_feasibility/pkg/models"
)

// AnnualRow is one display line of the annual summary.
type AnnualRow struct {
	Year          int              `json:"year"`
	Rentals       decimal.Decimal  `json:"rentals"`      // whole units
	Vacates       decimal.Decimal  `json:"vacates"`      // whole units
	EndingUnits   decimal.Decimal  `json:"ending_units"` // whole units
	Occupancy     decimal.Decimal  `json:"occupancy_pct"`
	InPlaceRate   decimal.Decimal  `json:"in_place_rate"` // $/sf, cents
	TotalRevenue  decimal.Decimal  `json:"total_revenue"`
	TotalExpenses decimal.Decimal  `json:"total_expenses"`
	NOI           decimal.Decimal  `json:"noi"`
	DebtService   decimal.Decimal  `json:"debt_service"`
	CashFlow      decimal.Decimal  `json:"cash_flow"`
	DSCR          *decimal.Decimal `json:"dscr,omitempty"`
	CapRate       *decimal.Decimal `json:"cap_rate_pct,omitempty"`
	CashOnCash    *decimal.Decimal `json:"cash_on_cash_pct,omitempty"`
}

// MonthlyRow is one display line of the monthly projection.
type MonthlyRow struct {
	Month       int             `json:"month"`
	Date        string          `json:"date"` // YYYY-MM
	Rentals     decimal.Decimal `json:"rentals"`
	Vacates     decimal.Decimal `json:"vacates"`
	EndingUnits decimal.Decimal `json:"ending_units"`
	Occupancy   decimal.Decimal `json:"occupancy_pct"`
	Revenue     decimal.Decimal `json:"revenue"`
	Expenses    decimal.Decimal `json:"expenses"`
	NOI         decimal.Decimal `json:"noi"`
	CashFlow    decimal.Decimal `json:"cash_flow"`
}

// Units rounds a fractional unit count to a whole unit.
func Units(v float64) decimal.Decimal { return decimal.NewFromFloat(v).Round(0) }

// Money rounds to cents.
func Money(v float64) decimal.Decimal { return decimal.NewFromFloat(v).Round(2) }

// Percent converts a fraction to a percentage with one decimal place.
func Percent(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Mul(decimal.NewFromInt(100)).Round(1)
}

func optional(v *float64, places int32, pct bool) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v)
	if pct {
		d = d.Mul(decimal.NewFromInt(100))
	}
	d = d.Round(places)
	return &d
}

// Annual builds display rows for every projection year.
func Annual(years []models.AnnualSummary) []AnnualRow {
	rows := make([]AnnualRow, 0, len(years))
	for _, y := range years {
		rows = append(rows, AnnualRow{
			Year:          y.Year,
			Rentals:       Units(y.Rentals),
			Vacates:       Units(y.Vacates),
			EndingUnits:   Units(y.EndingUnits),
			Occupancy:     Percent(y.EndingOccupancy),
			InPlaceRate:   Money(y.AverageInPlaceRate),
			TotalRevenue:  Money(y.TotalRevenue),
			TotalExpenses: Money(y.TotalExpenses),
			NOI:           Money(y.NOI),
			DebtService:   Money(y.DebtService),
			CashFlow:      Money(y.CashFlow),
			DSCR:          optional(y.DSCR, 2, false),
			CapRate:       optional(y.CapRate, 2, true),
			CashOnCash:    optional(y.CashOnCash, 2, true),
		})
	}
	return rows
}

// Monthly builds display rows for every projection month.
func Monthly(months []models.MonthlyRecord) []MonthlyRow {
	rows := make([]MonthlyRow, 0, len(months))
	for _, m := range months {
		rows = append(rows, MonthlyRow{
			Month:       m.Month,
			Date:        m.Date.Format("2006-01"),
			Rentals:     Units(m.Rentals),
			Vacates:     Units(m.Vacates),
			EndingUnits: Units(m.EndingUnits),
			Occupancy:   Percent(m.Occupancy),
			Revenue:     Money(m.TotalRevenue),
			Expenses:    Money(m.TotalExpenses),
			NOI:         Money(m.NOI),
			CashFlow:    Money(m.CashFlow),
		})
	}
	return rows
}

func dash(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

// WriteAnnual prints the annual rows as an aligned table.
func WriteAnnual(w io.Writer, rows []AnnualRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Year\tRentals\tVacates\tUnits\tOcc %\tRate\tRevenue\tExpenses\tNOI\tDebt Svc\tCash Flow\tDSCR\tCap %\tCoC %\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.Year, r.Rentals, r.Vacates, r.EndingUnits, r.Occupancy, r.InPlaceRate.StringFixed(2),
			r.TotalRevenue.StringFixed(2), r.TotalExpenses.StringFixed(2), r.NOI.StringFixed(2),
			r.DebtService.StringFixed(2), r.CashFlow.StringFixed(2),
			dash(r.DSCR), dash(r.CapRate), dash(r.CashOnCash))
	}
	return tw.Flush()
}

// WriteMonthly prints the monthly rows as an aligned table.
func WriteMonthly(w io.Writer, rows []MonthlyRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Month\tDate\tRentals\tVacates\tUnits\tOcc %\tRevenue\tExpenses\tNOI\tCash Flow\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.Month, r.Date, r.Rentals, r.Vacates, r.EndingUnits, r.Occupancy,
			r.Revenue.StringFixed(2), r.Expenses.StringFixed(2), r.NOI.StringFixed(2), r.CashFlow.StringFixed(2))
	}
	return tw.Flush()
}

// WriteReturns prints the hold-period metrics.
func WriteReturns(w io.Writer, ret *models.Returns) error {
	if ret == nil {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Equity\t%s\n", Money(ret.Equity).StringFixed(2))
	fmt.Fprintf(tw, "Stabilized NOI\t%s\n", Money(ret.StabilizedNOI).StringFixed(2))
	fmt.Fprintf(tw, "Exit value\t%s\n", Money(ret.ExitValue).StringFixed(2))
	fmt.Fprintf(tw, "Exit loan balance\t%s\n", Money(ret.ExitLoanBalance).StringFixed(2))
	fmt.Fprintf(tw, "IRR %%\t%s\n", dash(optional(ret.IRR, 2, true)))
	fmt.Fprintf(tw, "NPV\t%s\n", Money(ret.NPV).StringFixed(2))
	fmt.Fprintf(tw, "Equity multiple\t%s\n", dash(optional(ret.EquityMultiple, 2, false)))
	fmt.Fprintf(tw, "Development yield %%\t%s\n", dash(optional(ret.DevelopmentYield, 2, true)))
	fmt.Fprintf(tw, "Break-even occupancy %%\t%s\n", dash(optional(ret.BreakEvenOccupancy, 1, true)))
	return tw.Flush()
}

// WriteScenarios prints one line per scenario and the weighted summary.
func WriteScenarios(w io.Writer, a *scenario.Analysis) error {
	if a == nil {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Scenario\tWeight\tIRR %\tNPV\tStabilized NOI\tHurdle\t")
	for _, o := range a.Outcomes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\t\n",
			o.Scenario.Name, decimal.NewFromFloat(o.Scenario.Weight).Round(2),
			dash(optional(o.IRR, 2, true)), Money(o.NPV).StringFixed(2), Money(o.StabilizedNOI).StringFixed(2), o.MeetsHurdle)
	}
	fmt.Fprintf(tw, "Expected\t\t%s\t%s\t\t%t\t\n",
		dash(optional(a.ExpectedIRR, 2, true)), Money(a.ExpectedNPV).StringFixed(2), a.MeetsHurdle)
	return tw.Flush()
}

// WriteTornado prints the sensitivity bars, widest first.
func WriteTornado(w io.Writer, t *scenario.Tornado) error {
	if t == nil {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Base IRR %%\t%s\tBase NOI\t%s\t\n", dash(optional(t.BaseIRR, 2, true)), Money(t.BaseNOI).StringFixed(2))
	fmt.Fprintln(tw, "Variable\tLow\tHigh\tIRR low %\tIRR high %\tIRR swing %\tNOI swing\t")
	for _, b := range t.Bars {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			b.Variable, b.LowLabel, b.HighLabel,
			dash(optional(b.LowIRR, 2, true)), dash(optional(b.HighIRR, 2, true)),
			Percent(b.IRRSwing).StringFixed(1), Money(b.NOISwing).StringFixed(2))
	}
	return tw.Flush()
}
