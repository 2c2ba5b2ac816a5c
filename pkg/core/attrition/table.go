// Package attrition holds the static tenant-attrition curve: the probability a
// tenant who rented in calendar month r vacates after t months of tenure.
//
// Probabilities are hazard rates applied sequentially to a shrinking cohort;
// they do not need to sum to one for a rental month.
package attrition

import (
	"fmt"
	"sort"

	"storage_feasibility/pkg/core/diagnostics"
)

// DefaultRate is used for a rental month with no tabulated rows at all.
const DefaultRate = 0.05

// Record is one row of the attrition table.
type Record struct {
	RentalMonth       int     `json:"rental_month" yaml:"rental_month"`             // 1-12
	TenureMonth       int     `json:"tenure_month" yaml:"tenure_month"`             // >= 1
	VacateProbability float64 `json:"vacate_probability" yaml:"vacate_probability"` // [0,1]
}

// curve is the dense per-rental-month lookup. rates[t-1] is the resolved rate
// for tenure t; gap[t-1] marks tenures that were filled from a lower row.
type curve struct {
	rates []float64
	gap   []bool
}

// Table is immutable after NewTable and safe for concurrent readers.
type Table struct {
	curves      [13]*curve // index 1-12
	defaultRate float64
	records     int
}

// NewTable validates and indexes records. defaultRate <= 0 uses DefaultRate.
func NewTable(records []Record, defaultRate float64) (*Table, error) {
	if defaultRate <= 0 {
		defaultRate = DefaultRate
	}
	if defaultRate > 1 {
		return nil, fmt.Errorf("attrition default rate %v outside [0,1]", defaultRate)
	}

	byMonth := make(map[int]map[int]float64)
	for i, r := range records {
		if r.RentalMonth < 1 || r.RentalMonth > 12 {
			return nil, fmt.Errorf("attrition row %d: rental_month %d outside 1-12", i, r.RentalMonth)
		}
		if r.TenureMonth < 1 {
			return nil, fmt.Errorf("attrition row %d: tenure_month %d must be >= 1", i, r.TenureMonth)
		}
		if r.VacateProbability < 0 || r.VacateProbability > 1 {
			return nil, fmt.Errorf("attrition row %d: vacate_probability %v outside [0,1]", i, r.VacateProbability)
		}
		m := byMonth[r.RentalMonth]
		if m == nil {
			m = make(map[int]float64)
			byMonth[r.RentalMonth] = m
		}
		if _, dup := m[r.TenureMonth]; dup {
			return nil, fmt.Errorf("attrition row %d: duplicate (rental_month %d, tenure_month %d)", i, r.RentalMonth, r.TenureMonth)
		}
		m[r.TenureMonth] = r.VacateProbability
	}

	t := &Table{defaultRate: defaultRate, records: len(records)}
	for rm, tenures := range byMonth {
		keys := make([]int, 0, len(tenures))
		for k := range tenures {
			keys = append(keys, k)
		}
		sort.Ints(keys)
		maxTenure := keys[len(keys)-1]

		c := &curve{rates: make([]float64, maxTenure), gap: make([]bool, maxTenure)}
		// A gap takes the highest tabulated tenure at or below it. Tenures
		// below the first row have none and take the highest tabulated
		// tenure overall, the terminal rate.
		last := tenures[maxTenure]
		for tenure := 1; tenure <= maxTenure; tenure++ {
			if p, ok := tenures[tenure]; ok {
				last = p
				c.rates[tenure-1] = p
				continue
			}
			c.rates[tenure-1] = last
			c.gap[tenure-1] = true
		}
		t.curves[rm] = c
	}
	return t, nil
}

// Rate returns the base vacate probability for a cohort that rented in
// calendar month rentalMonth and is tenure months old. Gaps are compensated
// and recorded on diag (which may be nil); month is the projection month for
// the warning.
func (t *Table) Rate(rentalMonth, tenure, month int, diag *diagnostics.Collector) float64 {
	if rentalMonth < 1 || rentalMonth > 12 || t.curves[rentalMonth] == nil {
		diag.Addf(fmt.Sprintf("attrition:rental_month:%d", rentalMonth), diagnostics.LookupGap, "attrition", month,
			"no rows for rental month %d, using default rate %.4f", rentalMonth, t.defaultRate)
		return t.defaultRate
	}
	c := t.curves[rentalMonth]
	if tenure < 1 {
		tenure = 1
	}
	if tenure > len(c.rates) {
		// Terminal (stabilized) rate.
		return c.rates[len(c.rates)-1]
	}
	if c.gap[tenure-1] {
		diag.Addf(fmt.Sprintf("attrition:gap:%d:%d", rentalMonth, tenure), diagnostics.LookupGap, "attrition", month,
			"no row for rental month %d tenure %d, using highest available tenure", rentalMonth, tenure)
	}
	return c.rates[tenure-1]
}

// MaxTenure is the highest tabulated tenure for a rental month (0 if none).
func (t *Table) MaxTenure(rentalMonth int) int {
	if rentalMonth < 1 || rentalMonth > 12 || t.curves[rentalMonth] == nil {
		return 0
	}
	return len(t.curves[rentalMonth].rates)
}

// Len is the number of source records.
func (t *Table) Len() int { return t.records }

// Uniform builds a table where every rental month uses the same curve.
// Handy for fixtures and sensitivity runs.
func Uniform(curve []float64) (*Table, error) {
	records := make([]Record, 0, 12*len(curve))
	for rm := 1; rm <= 12; rm++ {
		for i, p := range curve {
			records = append(records, Record{RentalMonth: rm, TenureMonth: i + 1, VacateProbability: p})
		}
	}
	return NewTable(records, 0)
}
