// Package rate computes the two independent rent paths: the street rate
// quoted to new move-ins and the average in-place rate paid by existing
// tenants.
package rate

import (
	"math"
	"time"

	"storage_feasibility/pkg/core/assumption"
	"storage_feasibility/pkg/core/seasonality"
)

// Escalator is built once per run. Rates are annual $ per square foot.
type Escalator struct {
	drivers assumption.RateDrivers
	newRate []float64 // index 1..HorizonMonths
}

// NewEscalator precomputes the new-move-in schedule for every projection
// month. start is the first-of-month date of month 1.
func NewEscalator(drivers assumption.RateDrivers, start time.Time, profile *seasonality.Profile) *Escalator {
	e := &Escalator{
		drivers: drivers,
		newRate: make([]float64, assumption.HorizonMonths+1),
	}
	for m := 1; m <= assumption.HorizonMonths; m++ {
		cal := start.AddDate(0, m-1, 0).Month()
		growth := math.Pow(1+drivers.NewMoveInGrowth, float64(m-1)/12)
		e.newRate[m] = drivers.StartingRate * growth * profile.At(cal).Rate
	}
	return e
}

// NewMoveInRate is the street rate for month m.
func (e *Escalator) NewMoveInRate(m int) float64 {
	if m < 1 {
		m = 1
	}
	if m > assumption.HorizonMonths {
		m = assumption.HorizonMonths
	}
	return e.newRate[m]
}

// OriginRate is the rate a cohort signed at. Origin 0 is the occupancy in
// place before month 1.
func (e *Escalator) OriginRate(origin int) float64 {
	if origin == 0 {
		return e.drivers.SeedRate()
	}
	return e.NewMoveInRate(origin)
}

// CohortRate is what a cohort from origin pays in month m after in-place
// increases. The seed cohort is priced as if it originated in month 1.
func (e *Escalator) CohortRate(origin, m int) float64 {
	anchor := origin
	if anchor < 1 {
		anchor = 1
	}
	months := m - anchor
	if months < 0 {
		months = 0
	}
	return e.OriginRate(origin) * math.Pow(1+e.drivers.InPlaceIncrease, float64(months)/12)
}

// InPlaceRate is the unit-weighted average of CohortRate over live cohorts.
// remaining is indexed by origin month. With no live units the street rate
// is returned.
func (e *Escalator) InPlaceRate(m int, remaining []float64) float64 {
	var units, weighted float64
	for origin, u := range remaining {
		if u <= 0 {
			continue
		}
		units += u
		weighted += u * e.CohortRate(origin, m)
	}
	if units <= 0 {
		return e.NewMoveInRate(m)
	}
	return weighted / units
}
