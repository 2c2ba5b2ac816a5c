package rate

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"storage_feasibility/pkg/core/assumption"
	"storage_feasibility/pkg/core/seasonality"
)

var jan2025 = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

func TestNewMoveInRate(t *testing.T) {
	e := NewEscalator(assumption.RateDrivers{StartingRate: 15, NewMoveInGrowth: 0.03}, jan2025, seasonality.Flat())

	assert.InDelta(t, 15.0, e.NewMoveInRate(1), 1e-12)
	assert.InDelta(t, 15*1.03, e.NewMoveInRate(13), 1e-9)
	assert.InDelta(t, 15*math.Pow(1.03, 6), e.NewMoveInRate(73), 1e-9)
	// Clamped to the horizon.
	assert.Equal(t, e.NewMoveInRate(84), e.NewMoveInRate(200))
}

func TestNewMoveInRate_Seasonal(t *testing.T) {
	factors := seasonality.Flat().Factors()
	factors[int(time.May)-1].Rate = 1.1
	profile, err := seasonality.NewProfile(factors)
	assert.NoError(t, err)

	e := NewEscalator(assumption.RateDrivers{StartingRate: 12}, jan2025, profile)
	assert.InDelta(t, 12*1.1, e.NewMoveInRate(5), 1e-12)
	assert.InDelta(t, 12.0, e.NewMoveInRate(6), 1e-12)
}

func TestInPlaceRate(t *testing.T) {
	e := NewEscalator(assumption.RateDrivers{
		StartingRate:        16,
		StartingInPlaceRate: 14,
		NewMoveInGrowth:     0,
		InPlaceIncrease:     0.06,
	}, jan2025, seasonality.Flat())

	t.Run("seed only in month 1", func(t *testing.T) {
		remaining := []float64{100}
		assert.InDelta(t, 14.0, e.InPlaceRate(1, remaining), 1e-12)
	})

	t.Run("weighted by units", func(t *testing.T) {
		remaining := make([]float64, 3)
		remaining[0] = 100 // seed at 14
		remaining[2] = 50  // signed at 16 in month 2
		want := (100*14*math.Pow(1.06, 1.0/12) + 50*16) / 150
		assert.InDelta(t, want, e.InPlaceRate(2, remaining), 1e-9)
	})

	t.Run("no live units falls back to street rate", func(t *testing.T) {
		assert.Equal(t, e.NewMoveInRate(10), e.InPlaceRate(10, make([]float64, 11)))
	})
}
