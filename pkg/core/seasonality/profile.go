// Package seasonality provides calendar-month multipliers for rental
// velocity, vacate velocity, move-in pricing and seasonal expenses.
package seasonality

import (
	"fmt"
	"time"
)

// Factor is the set of multipliers for one calendar month. 1.0 is neutral.
type Factor struct {
	Month   int     `json:"month" yaml:"month"`     // 1-12
	Rentals float64 `json:"rentals" yaml:"rentals"` // move-in velocity
	Vacates float64 `json:"vacates" yaml:"vacates"` // applied to the base attrition rate
	Rate    float64 `json:"rate" yaml:"rate"`       // street-rate pricing
	Expense float64 `json:"expense" yaml:"expense"` // lines flagged seasonal
}

// Neutral is the all-ones factor.
func Neutral(month int) Factor {
	return Factor{Month: month, Rentals: 1, Vacates: 1, Rate: 1, Expense: 1}
}

// Profile is immutable after construction and safe for concurrent readers.
type Profile struct {
	months [12]Factor
}

// NewProfile requires exactly one factor per calendar month.
func NewProfile(factors []Factor) (*Profile, error) {
	if len(factors) != 12 {
		return nil, fmt.Errorf("seasonality needs 12 months, got %d", len(factors))
	}
	p := &Profile{}
	var seen [12]bool
	for _, f := range factors {
		if f.Month < 1 || f.Month > 12 {
			return nil, fmt.Errorf("seasonality month %d outside 1-12", f.Month)
		}
		if seen[f.Month-1] {
			return nil, fmt.Errorf("seasonality month %d listed twice", f.Month)
		}
		if f.Rentals < 0 || f.Vacates < 0 || f.Rate < 0 || f.Expense < 0 {
			return nil, fmt.Errorf("seasonality month %d has a negative factor", f.Month)
		}
		seen[f.Month-1] = true
		p.months[f.Month-1] = f
	}
	return p, nil
}

// Flat is a profile with no seasonal variation.
func Flat() *Profile {
	p := &Profile{}
	for i := range p.months {
		p.months[i] = Neutral(i + 1)
	}
	return p
}

// At returns the factors for a calendar month.
func (p *Profile) At(m time.Month) Factor {
	if p == nil {
		return Neutral(int(m))
	}
	return p.months[int(m)-1]
}

// Factors returns all twelve months in calendar order.
func (p *Profile) Factors() []Factor {
	out := make([]Factor, 12)
	copy(out, p.months[:])
	return out
}

// Mean averages each multiplier over the year.
func (p *Profile) Mean() Factor {
	var sum Factor
	for _, f := range p.months {
		sum.Rentals += f.Rentals
		sum.Vacates += f.Vacates
		sum.Rate += f.Rate
		sum.Expense += f.Expense
	}
	return Factor{Rentals: sum.Rentals / 12, Vacates: sum.Vacates / 12, Rate: sum.Rate / 12, Expense: sum.Expense / 12}
}
