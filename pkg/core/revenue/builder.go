// Package revenue builds the monthly revenue lines from occupancy and the
// in-place rate.
package revenue

import (
	"storage_feasibility/pkg/core/assumption"
	"storage_feasibility/pkg/core/occupancy"
)

// Line keys. encoding/json orders map keys, so output stays stable.
const (
	KeyGrossRent   = "gross_rental_income"
	KeyDiscounts   = "discounts"
	KeyWriteOffs   = "write_offs"
	KeyNetRent     = "net_rental_income"
	KeyAdminFees   = "admin_fees"
	KeyLateFees    = "late_fees"
	KeyOtherFees   = "other_fees"
	KeyInsurance   = "tenant_insurance"
	KeyMerchandise = "merchandise"
)

// Month is one month of revenue. Discounts and write-offs are negative.
type Month struct {
	Items     map[string]float64 `json:"items"`
	Gross     float64            `json:"gross_rental_income"`
	Net       float64            `json:"net_rental_income"`
	Ancillary float64            `json:"ancillary_income"`
	Total     float64            `json:"total_revenue"`
}

// Builder applies a fixed set of revenue benchmarks.
type Builder struct {
	bench assumption.RevenueBenchmarks
}

// NewBuilder creates a revenue builder.
func NewBuilder(bench assumption.RevenueBenchmarks) *Builder {
	return &Builder{bench: bench}
}

// Build computes the month's revenue. inPlaceRate is annual $/sf.
func (b *Builder) Build(st occupancy.MonthState, inPlaceRate float64) Month {
	// 1. Rental income
	gross := st.OccupiedArea * inPlaceRate / 12
	if gross < 0 {
		gross = 0
	}
	discounts := -b.bench.DiscountPct * gross
	writeOffs := -b.bench.WriteOffPct * gross
	net := gross + discounts + writeOffs

	// 2. Ancillary income
	admin := b.bench.AdminFeePerRental * st.Rentals
	late := b.bench.LateFeePct * gross
	other := b.bench.OtherFeePct * gross
	insurance := st.Ending * b.bench.InsurancePenetration * b.bench.InsurancePremiumPerUnit
	merch := b.bench.MerchandisePerRental * st.Rentals
	ancillary := admin + late + other + insurance + merch

	return Month{
		Items: map[string]float64{
			KeyGrossRent:   gross,
			KeyDiscounts:   discounts,
			KeyWriteOffs:   writeOffs,
			KeyNetRent:     net,
			KeyAdminFees:   admin,
			KeyLateFees:    late,
			KeyOtherFees:   other,
			KeyInsurance:   insurance,
			KeyMerchandise: merch,
		},
		Gross:     gross,
		Net:       net,
		Ancillary: ancillary,
		Total:     net + ancillary,
	}
}
