// Package occupancy runs the cohort lease-up simulation: it ages every cohort
// of move-ins through the attrition curve and solves for the rentals needed
// each month to track the target occupancy path.
package occupancy

import (
	"time"

	"storage_feasibility/pkg/core/assumption"
	"storage_feasibility/pkg/core/attrition"
	"storage_feasibility/pkg/core/diagnostics"
	"storage_feasibility/pkg/core/seasonality"
)

// Cohort is the set of units that moved in during the same month.
type Cohort struct {
	Origin        int        `json:"origin"` // 0 = occupancy in place before month 1
	CalendarMonth time.Month `json:"calendar_month"`
	Original      float64    `json:"original"`
	Remaining     float64    `json:"remaining"`
	Retired       bool       `json:"retired,omitempty"`
}

// MonthState is the occupancy result for one projection month. Units are
// fractional; nothing here is rounded.
type MonthState struct {
	Month           int       `json:"month"`
	Date            time.Time `json:"date"`
	Year            int       `json:"year"`
	Beginning       float64   `json:"beginning_units"`
	Rentals         float64   `json:"rentals"`
	Vacates         float64   `json:"vacates"`
	Ending          float64   `json:"ending_units"`
	OccupiedArea    float64   `json:"occupied_area"`
	Occupancy       float64   `json:"occupancy"`
	TargetUnits     float64   `json:"target_units"`
	TargetOccupancy float64   `json:"target_occupancy"`
	OverTarget      bool      `json:"over_target,omitempty"`    // rentals clamped to zero
	CapacityBound   bool      `json:"capacity_bound,omitempty"` // rentals cut to stay within total units
	LiveCohorts     int       `json:"live_cohorts"`
}

// Simulator owns the cohort array for one run. It is not safe for concurrent
// use; the table and profile it reads are.
type Simulator struct {
	inputs  assumption.ProjectionInputs
	table   *attrition.Table
	profile *seasonality.Profile
	diag    *diagnostics.Collector

	units    float64
	unitArea float64
	retireAt float64
	targets  []float64                            // target occupancy, index 1..HorizonMonths
	cohorts  [assumption.HorizonMonths + 1]Cohort // dense, indexed by origin month
	month    int
	occupied float64
}

// NewSimulator seeds cohort 0 with the starting occupancy. Inputs must have
// passed Validate.
func NewSimulator(in assumption.ProjectionInputs, table *attrition.Table, profile *seasonality.Profile, diag *diagnostics.Collector) *Simulator {
	s := &Simulator{
		inputs:   in,
		table:    table,
		profile:  profile,
		diag:     diag,
		units:    float64(in.Property.UnitCount),
		unitArea: in.Property.AverageUnitArea(),
		retireAt: in.RetireThreshold(),
		targets:  TargetPath(in.Occupancy),
	}
	for o := range s.cohorts {
		s.cohorts[o].Origin = o
	}
	seed := in.Occupancy.StartingOccupancy * s.units
	s.cohorts[0] = Cohort{
		Origin:        0,
		CalendarMonth: in.MonthDate(0).Month(),
		Original:      seed,
		Remaining:     seed,
	}
	s.occupied = seed
	return s
}

// Month is the last simulated month (0 before the first Step).
func (s *Simulator) Month() int { return s.month }

// Step advances one month. It returns false once the horizon is exhausted.
func (s *Simulator) Step() (MonthState, bool) {
	if s.month >= assumption.HorizonMonths {
		return MonthState{}, false
	}
	s.month++
	m := s.month
	date := s.inputs.MonthDate(m)
	season := s.profile.At(date.Month())

	st := MonthState{
		Month:     m,
		Date:      date,
		Year:      (m-1)/12 + 1,
		Beginning: s.occupied,
	}

	// 1. Target
	st.TargetOccupancy = s.targets[m]
	st.TargetUnits = st.TargetOccupancy * s.units

	// 2. Vacates: seasonal multiplier on the base hazard, then reduce.
	for o := 0; o < m; o++ {
		c := &s.cohorts[o]
		if c.Retired || c.Remaining <= 0 {
			continue
		}
		base := s.table.Rate(int(c.CalendarMonth), m-o, m, s.diag)
		v := c.Remaining * clamp01(base*season.Vacates)
		c.Remaining -= v
		st.Vacates += v
		if c.Remaining < s.retireAt {
			st.Vacates += c.Remaining
			c.Remaining = 0
			c.Retired = true
		}
	}

	// 3. Rentals needed to land on target
	afterVacates := st.Beginning - st.Vacates
	required := st.TargetUnits - afterVacates
	if required < 0 {
		required = 0
		st.OverTarget = true
	}
	rentals := required * season.Rentals
	if afterVacates+rentals > s.units {
		rentals = s.units - afterVacates
		if rentals < 0 {
			rentals = 0
		}
		st.CapacityBound = true
	}
	st.Rentals = rentals

	// 4. New cohort
	if rentals > 0 {
		s.cohorts[m] = Cohort{
			Origin:        m,
			CalendarMonth: date.Month(),
			Original:      rentals,
			Remaining:     rentals,
		}
	}

	// 5. Close the month
	st.Ending = st.Beginning + st.Rentals - st.Vacates
	s.occupied = st.Ending
	st.OccupiedArea = st.Ending * s.unitArea
	st.Occupancy = st.Ending / s.units
	for o := 0; o <= m; o++ {
		if s.cohorts[o].Remaining > 0 {
			st.LiveCohorts++
		}
	}
	return st, true
}

// Run simulates the full horizon from the current position.
func (s *Simulator) Run() []MonthState {
	out := make([]MonthState, 0, assumption.HorizonMonths-s.month)
	for {
		st, ok := s.Step()
		if !ok {
			return out
		}
		out = append(out, st)
	}
}

// Remaining returns remaining units per origin month, 0..Month().
func (s *Simulator) Remaining() []float64 {
	out := make([]float64, s.month+1)
	for o := range out {
		out[o] = s.cohorts[o].Remaining
	}
	return out
}

// Cohorts returns every cohort opened so far, including retired ones.
func (s *Simulator) Cohorts() []Cohort {
	out := make([]Cohort, 0, s.month+1)
	for o := 0; o <= s.month; o++ {
		c := s.cohorts[o]
		if c.Original > 0 {
			out = append(out, c)
		}
	}
	return out
}

// =============================================================================
// TARGET PATH
// =============================================================================

// TargetPath expands the yearly plan into a monthly target occupancy series
// indexed 1..HorizonMonths. Each lease-up year interpolates linearly from the
// previous year-end to its resolved year-end (see OccupancyPlan.YearEnds). A
// final average target holds its whole year flat at the target. After the
// last target the path holds the stabilized value.
func TargetPath(plan assumption.OccupancyPlan) []float64 {
	path := make([]float64, assumption.HorizonMonths+1)
	path[0] = plan.StartingOccupancy
	ends := plan.YearEnds()
	last := len(ends) - 1

	prev := plan.StartingOccupancy
	m := 1
	for i := range ends {
		end := clamp01(ends[i])
		for k := 1; k <= 12 && m <= assumption.HorizonMonths; k++ {
			if i == last && plan.FlatFinalYear() {
				path[m] = end
			} else {
				path[m] = prev + (end-prev)*float64(k)/12
			}
			m++
		}
		prev = end
	}
	for ; m <= assumption.HorizonMonths; m++ {
		path[m] = prev
	}
	return path
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
