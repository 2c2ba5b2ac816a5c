package revenue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storage_feasibility/pkg/core/assumption"
	"storage_feasibility/pkg/core/occupancy"
)

func TestBuild(t *testing.T) {
	b := NewBuilder(assumption.RevenueBenchmarks{
		DiscountPct:             0.02,
		WriteOffPct:             0.01,
		AdminFeePerRental:       25,
		LateFeePct:              0.03,
		OtherFeePct:             0.005,
		InsurancePenetration:    0.5,
		InsurancePremiumPerUnit: 10,
		MerchandisePerRental:    12,
	})
	st := occupancy.MonthState{Rentals: 10, Ending: 200, OccupiedArea: 24000}

	got := b.Build(st, 18)

	gross := 24000 * 18.0 / 12 // 36,000
	assert.InDelta(t, gross, got.Gross, 1e-9)
	assert.InDelta(t, -720, got.Items[KeyDiscounts], 1e-9)
	assert.InDelta(t, -360, got.Items[KeyWriteOffs], 1e-9)
	assert.InDelta(t, gross-1080, got.Net, 1e-9)
	assert.InDelta(t, 250, got.Items[KeyAdminFees], 1e-9)
	assert.InDelta(t, 1080, got.Items[KeyLateFees], 1e-9)
	assert.InDelta(t, 180, got.Items[KeyOtherFees], 1e-9)
	assert.InDelta(t, 1000, got.Items[KeyInsurance], 1e-9)
	assert.InDelta(t, 120, got.Items[KeyMerchandise], 1e-9)
	assert.InDelta(t, 250+1080+180+1000+120, got.Ancillary, 1e-9)
	assert.InDelta(t, got.Net+got.Ancillary, got.Total, 1e-9)
}

func TestBuild_GrossNeverNegative(t *testing.T) {
	b := NewBuilder(assumption.DefaultRevenueBenchmarks())
	tests := []struct {
		name string
		area float64
		rate float64
	}{
		{"empty facility", 0, 18},
		{"zero rate", 1000, 0},
		{"negative rate input", 1000, -5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.Build(occupancy.MonthState{OccupiedArea: tt.area}, tt.rate)
			assert.GreaterOrEqual(t, got.Gross, 0.0)
			assert.GreaterOrEqual(t, got.Items[KeyGrossRent], 0.0)
		})
	}
}
