package assumption

// =============================================================================
// REVENUE BENCHMARKS
// =============================================================================

// RevenueBenchmarks are the percentage-of-revenue and per-unit constants the
// revenue build-up applies every month.
type RevenueBenchmarks struct {
	DiscountPct             float64 `json:"discount_pct" yaml:"discount_pct"`                             // of gross rental income
	WriteOffPct             float64 `json:"write_off_pct" yaml:"write_off_pct"`                           // of gross rental income
	AdminFeePerRental       float64 `json:"admin_fee_per_rental" yaml:"admin_fee_per_rental"`             // $ per move-in
	LateFeePct              float64 `json:"late_fee_pct" yaml:"late_fee_pct"`                             // of gross rental income
	OtherFeePct             float64 `json:"other_fee_pct" yaml:"other_fee_pct"`                           // of gross rental income
	InsurancePenetration    float64 `json:"insurance_penetration" yaml:"insurance_penetration"`           // cap on share of occupied units insured
	InsurancePremiumPerUnit float64 `json:"insurance_premium_per_unit" yaml:"insurance_premium_per_unit"` // $ per insured unit per month
	MerchandisePerRental    float64 `json:"merchandise_per_rental" yaml:"merchandise_per_rental"`         // $ per move-in
}

// DefaultRevenueBenchmarks returns the house benchmark set.
func DefaultRevenueBenchmarks() RevenueBenchmarks {
	return RevenueBenchmarks{
		DiscountPct:             0.025,
		WriteOffPct:             0.01,
		AdminFeePerRental:       25,
		LateFeePct:              0.02,
		OtherFeePct:             0.005,
		InsurancePenetration:    0.75,
		InsurancePremiumPerUnit: 12,
		MerchandisePerRental:    15,
	}
}

// =============================================================================
// EXPENSE BENCHMARKS
// =============================================================================

// ExpenseGroup is the reporting group a line rolls into.
type ExpenseGroup string

const (
	GroupPayroll         ExpenseGroup = "payroll"
	GroupUtilities       ExpenseGroup = "utilities"
	GroupOtherOperating  ExpenseGroup = "other_operating"
	GroupRepairs         ExpenseGroup = "repairs_maintenance"
	GroupMarketing       ExpenseGroup = "marketing"
	GroupNonControllable ExpenseGroup = "non_controllable"
	GroupManagement      ExpenseGroup = "management"
	GroupLandLease       ExpenseGroup = "land_lease"
)

// ExpenseGroups lists groups in reporting order. Each call returns a new
// slice.
func ExpenseGroups() []ExpenseGroup {
	return []ExpenseGroup{
		GroupPayroll, GroupUtilities, GroupOtherOperating, GroupRepairs,
		GroupMarketing, GroupNonControllable, GroupManagement, GroupLandLease,
	}
}

// ExpenseBasis is how a line's Amount turns into a monthly figure.
type ExpenseBasis string

const (
	BasisFixedMonthly  ExpenseBasis = "fixed_monthly"   // Amount per month
	BasisPerAreaAnnual ExpenseBasis = "per_area_annual" // Amount per sf of total area per year
	BasisPerFTEAnnual  ExpenseBasis = "per_fte_annual"  // Amount per FTE per year
	BasisPctPayroll    ExpenseBasis = "pct_payroll"     // fraction of the month's wage lines
	BasisPctRevenue    ExpenseBasis = "pct_revenue"     // fraction of the month's total revenue
)

// Condition gates a line on a property characteristic.
type Condition string

const (
	Always           Condition = ""
	IfMultiStory     Condition = "multi_story"
	IfGolfCart       Condition = "golf_cart"
	IfApartment      Condition = "apartment"
	IfClimate        Condition = "climate_controlled" // also scaled by the climate-controlled fraction
	IfThirdPartyMgmt Condition = "third_party_managed"
	IfGroundLease    Condition = "ground_lease"
)

// Escalation picks which growth rate a line compounds at.
type Escalation string

const (
	EscalateGeneral Escalation = ""
	EscalateTax     Escalation = "tax"
	EscalateNone    Escalation = "none"
)

// ExpenseLine is one row of the expense benchmark table.
type ExpenseLine struct {
	Key        string       `json:"key" yaml:"key"`
	Group      ExpenseGroup `json:"group" yaml:"group"`
	Basis      ExpenseBasis `json:"basis" yaml:"basis"`
	Amount     float64      `json:"amount" yaml:"amount"`
	Condition  Condition    `json:"condition,omitempty" yaml:"condition"`
	Escalation Escalation   `json:"escalation,omitempty" yaml:"escalation"`
	Seasonal   bool         `json:"seasonal,omitempty" yaml:"seasonal"` // scaled by the month's expense factor
	Wage       bool         `json:"wage,omitempty" yaml:"wage"`         // part of the pct_payroll base
}

// Staffing derives the full-time-equivalent headcount from property size.
type Staffing struct {
	AreaPerFTE   float64 `json:"area_per_fte" yaml:"area_per_fte"`
	MinFTE       float64 `json:"min_fte" yaml:"min_fte"`
	ApartmentFTE float64 `json:"apartment_fte" yaml:"apartment_fte"` // added when an apartment is on site
}

// ExpenseBenchmarks is the full expense table plus staffing formula.
type ExpenseBenchmarks struct {
	Staffing Staffing      `json:"staffing" yaml:"staffing"`
	Lines    []ExpenseLine `json:"lines" yaml:"lines"`
}

// DefaultStaffing is one FTE per 60,000 sf, never fewer than one.
func DefaultStaffing() Staffing {
	return Staffing{AreaPerFTE: 60000, MinFTE: 1, ApartmentFTE: 0.5}
}

// DefaultExpenseBenchmarks returns the house expense table.
func DefaultExpenseBenchmarks() ExpenseBenchmarks {
	return ExpenseBenchmarks{
		Staffing: DefaultStaffing(),
		Lines:    DefaultExpenseLines(),
	}
}

// DefaultExpenseLines is the standard line-item catalog.
func DefaultExpenseLines() []ExpenseLine {
	return []ExpenseLine{
		// Payroll
		{Key: "salary_manager", Group: GroupPayroll, Basis: BasisPerFTEAnnual, Amount: 48000, Wage: true},
		{Key: "salary_assistant", Group: GroupPayroll, Basis: BasisPerFTEAnnual, Amount: 24000, Wage: true},
		{Key: "bonuses", Group: GroupPayroll, Basis: BasisPctPayroll, Amount: 0.05},
		{Key: "payroll_taxes", Group: GroupPayroll, Basis: BasisPctPayroll, Amount: 0.0765},
		{Key: "workers_comp", Group: GroupPayroll, Basis: BasisPctPayroll, Amount: 0.02},
		{Key: "retirement", Group: GroupPayroll, Basis: BasisPctPayroll, Amount: 0.02},
		{Key: "medical", Group: GroupPayroll, Basis: BasisPerFTEAnnual, Amount: 6000},
		{Key: "apartment_stipend", Group: GroupPayroll, Basis: BasisFixedMonthly, Amount: 500, Condition: IfApartment},

		// Utilities
		{Key: "electric", Group: GroupUtilities, Basis: BasisPerAreaAnnual, Amount: 0.35, Seasonal: true},
		{Key: "climate_control_electric", Group: GroupUtilities, Basis: BasisPerAreaAnnual, Amount: 0.45, Condition: IfClimate, Seasonal: true},
		{Key: "gas", Group: GroupUtilities, Basis: BasisPerAreaAnnual, Amount: 0.03, Seasonal: true},
		{Key: "water_sewer", Group: GroupUtilities, Basis: BasisPerAreaAnnual, Amount: 0.04},
		{Key: "trash", Group: GroupUtilities, Basis: BasisFixedMonthly, Amount: 250},
		{Key: "telephone", Group: GroupUtilities, Basis: BasisFixedMonthly, Amount: 300},
		{Key: "internet", Group: GroupUtilities, Basis: BasisFixedMonthly, Amount: 150},

		// Other operating
		{Key: "office_supplies", Group: GroupOtherOperating, Basis: BasisFixedMonthly, Amount: 200},
		{Key: "postage", Group: GroupOtherOperating, Basis: BasisFixedMonthly, Amount: 75},
		{Key: "bank_charges", Group: GroupOtherOperating, Basis: BasisFixedMonthly, Amount: 50},
		{Key: "credit_card_fees", Group: GroupOtherOperating, Basis: BasisPctRevenue, Amount: 0.025},
		{Key: "software_licenses", Group: GroupOtherOperating, Basis: BasisFixedMonthly, Amount: 400},
		{Key: "call_center", Group: GroupOtherOperating, Basis: BasisFixedMonthly, Amount: 350},
		{Key: "dues_subscriptions", Group: GroupOtherOperating, Basis: BasisFixedMonthly, Amount: 60},
		{Key: "travel", Group: GroupOtherOperating, Basis: BasisFixedMonthly, Amount: 100},
		{Key: "legal_professional", Group: GroupOtherOperating, Basis: BasisFixedMonthly, Amount: 150},
		{Key: "accounting", Group: GroupOtherOperating, Basis: BasisFixedMonthly, Amount: 250},
		{Key: "security_monitoring", Group: GroupOtherOperating, Basis: BasisFixedMonthly, Amount: 300},
		{Key: "pest_control", Group: GroupOtherOperating, Basis: BasisFixedMonthly, Amount: 125},
		{Key: "landscaping", Group: GroupOtherOperating, Basis: BasisPerAreaAnnual, Amount: 0.10, Seasonal: true},
		{Key: "snow_removal", Group: GroupOtherOperating, Basis: BasisPerAreaAnnual, Amount: 0.02, Seasonal: true},
		{Key: "janitorial", Group: GroupOtherOperating, Basis: BasisFixedMonthly, Amount: 200},
		{Key: "uniforms", Group: GroupOtherOperating, Basis: BasisFixedMonthly, Amount: 40},
		{Key: "training", Group: GroupOtherOperating, Basis: BasisFixedMonthly, Amount: 50},
		{Key: "miscellaneous", Group: GroupOtherOperating, Basis: BasisPerAreaAnnual, Amount: 0.02},

		// Repairs & maintenance
		{Key: "general_repairs", Group: GroupRepairs, Basis: BasisPerAreaAnnual, Amount: 0.15},
		{Key: "hvac_maintenance", Group: GroupRepairs, Basis: BasisPerAreaAnnual, Amount: 0.06, Condition: IfClimate},
		{Key: "elevator_maintenance", Group: GroupRepairs, Basis: BasisPerAreaAnnual, Amount: 0.05, Condition: IfMultiStory},
		{Key: "golf_cart_maintenance", Group: GroupRepairs, Basis: BasisFixedMonthly, Amount: 125, Condition: IfGolfCart},
		{Key: "apartment_maintenance", Group: GroupRepairs, Basis: BasisFixedMonthly, Amount: 150, Condition: IfApartment},
		{Key: "gate_door_repairs", Group: GroupRepairs, Basis: BasisPerAreaAnnual, Amount: 0.03},
		{Key: "paving_striping", Group: GroupRepairs, Basis: BasisPerAreaAnnual, Amount: 0.02},

		// Marketing
		{Key: "internet_advertising", Group: GroupMarketing, Basis: BasisFixedMonthly, Amount: 500, Seasonal: true},
		{Key: "website_seo", Group: GroupMarketing, Basis: BasisFixedMonthly, Amount: 250},
		{Key: "promotions", Group: GroupMarketing, Basis: BasisFixedMonthly, Amount: 150, Seasonal: true},
		{Key: "signage", Group: GroupMarketing, Basis: BasisFixedMonthly, Amount: 50},

		// Non-controllable
		{Key: "property_taxes", Group: GroupNonControllable, Basis: BasisPerAreaAnnual, Amount: 1.20, Escalation: EscalateTax},
		{Key: "property_insurance", Group: GroupNonControllable, Basis: BasisPerAreaAnnual, Amount: 0.27},
		{Key: "liability_insurance", Group: GroupNonControllable, Basis: BasisPerAreaAnnual, Amount: 0.05},

		// Management
		{Key: "management_fee", Group: GroupManagement, Basis: BasisPctRevenue, Amount: 0.06, Condition: IfThirdPartyMgmt},
		{Key: "asset_management_fee", Group: GroupManagement, Basis: BasisPctRevenue, Amount: 0.01, Condition: IfThirdPartyMgmt},

		// Land lease
		{Key: "ground_rent", Group: GroupLandLease, Basis: BasisFixedMonthly, Amount: 5000, Condition: IfGroundLease},
	}
}
