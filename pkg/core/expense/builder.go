// Package expense builds monthly operating expenses from the benchmark line
// catalog, gated on property characteristics and escalated by anniversary
// year.
package expense

import (
	"math"

	"storage_feasibility/pkg/core/assumption"
	"storage_feasibility/pkg/core/diagnostics"
	"storage_feasibility/pkg/core/seasonality"
)

// Month is one month of expenses.
type Month struct {
	Items   map[string]float64 `json:"items"`
	Groups  map[string]float64 `json:"groups"`
	Payroll float64            `json:"payroll_base"` // wage lines only
	Total   float64            `json:"total_expenses"`
}

// line is a catalog entry that survived the condition filter, with its
// climate-control scale folded in.
type line struct {
	assumption.ExpenseLine
	scale float64
}

// Builder holds the resolved catalog for one property.
type Builder struct {
	lines  []line
	area   float64
	fte    float64
	growth assumption.Growth
}

// FTECount is max(minimum, area / area per FTE) plus the apartment add-on.
func FTECount(area float64, s assumption.Staffing, apartment bool) float64 {
	fte := 0.0
	if s.AreaPerFTE > 0 {
		fte = area / s.AreaPerFTE
	}
	fte = math.Max(s.MinFTE, fte)
	if apartment {
		fte += s.ApartmentFTE
	}
	return fte
}

// NewBuilder filters the catalog against the property's characteristics.
func NewBuilder(in assumption.ProjectionInputs) *Builder {
	ch := in.Property.Characteristics
	b := &Builder{
		area:   in.Property.TotalArea,
		fte:    FTECount(in.Property.TotalArea, in.Expenses.Staffing, ch.Apartment),
		growth: in.Growth,
	}
	for _, l := range in.Expenses.Lines {
		scale, ok := applies(l.Condition, ch)
		if !ok {
			continue
		}
		b.lines = append(b.lines, line{ExpenseLine: l, scale: scale})
	}
	return b
}

func applies(c assumption.Condition, ch assumption.Characteristics) (float64, bool) {
	switch c {
	case assumption.Always:
		return 1, true
	case assumption.IfMultiStory:
		return 1, ch.MultiStory
	case assumption.IfGolfCart:
		return 1, ch.GolfCart
	case assumption.IfApartment:
		return 1, ch.Apartment
	case assumption.IfClimate:
		return ch.ClimateControlledFraction, ch.ClimateControlledFraction > 0
	case assumption.IfThirdPartyMgmt:
		return 1, ch.ThirdPartyManaged
	case assumption.IfGroundLease:
		return 1, ch.GroundLease
	}
	return 0, false
}

// FTE is the staffing level used for per-FTE lines.
func (b *Builder) FTE() float64 { return b.fte }

// Lines is the number of catalog lines active for this property.
func (b *Builder) Lines() int { return len(b.lines) }

// Build computes month m's expenses. revenue is the month's total revenue
// and drives the percent-of-revenue lines.
func (b *Builder) Build(m int, revenue float64, season seasonality.Factor, diag *diagnostics.Collector) Month {
	year := (m-1)/12 + 1
	general := math.Pow(1+b.growth.ExpenseGrowth, float64(year-1))
	tax := math.Pow(1+b.growth.TaxGrowth, float64(year-1))

	out := Month{
		Items:  make(map[string]float64, len(b.lines)),
		Groups: make(map[string]float64, len(assumption.ExpenseGroups())),
	}
	amounts := make([]float64, len(b.lines))

	// 1. Volume-independent lines; wage lines form the payroll base.
	for i, l := range b.lines {
		var v float64
		switch l.Basis {
		case assumption.BasisFixedMonthly:
			v = l.Amount
		case assumption.BasisPerAreaAnnual:
			v = l.Amount * b.area / 12
		case assumption.BasisPerFTEAnnual:
			v = l.Amount * b.fte / 12
		default:
			continue
		}
		switch l.Escalation {
		case assumption.EscalateTax:
			v *= tax
		case assumption.EscalateNone:
		default:
			v *= general
		}
		v *= l.scale
		if l.Seasonal {
			v *= season.Expense
		}
		amounts[i] = v
		if l.Wage {
			out.Payroll += v
		}
	}

	// 2. Percentage lines. These ride on an already-escalated base.
	if revenue <= 0 {
		for _, l := range b.lines {
			if l.Basis == assumption.BasisPctRevenue {
				diag.Addf("expense:zero_revenue", diagnostics.NumericDegeneracy, "expense", m,
					"month has no revenue, percent-of-revenue lines are zero")
				break
			}
		}
		revenue = 0
	}
	for i, l := range b.lines {
		var v float64
		switch l.Basis {
		case assumption.BasisPctPayroll:
			v = l.Amount * out.Payroll
		case assumption.BasisPctRevenue:
			v = l.Amount * revenue
		default:
			continue
		}
		v *= l.scale
		if l.Seasonal {
			v *= season.Expense
		}
		amounts[i] = v
	}

	for i, l := range b.lines {
		out.Items[l.Key] = amounts[i]
		out.Groups[string(l.Group)] += amounts[i]
		out.Total += amounts[i]
	}
	return out
}
