package scenario

import (
	"context"
	"sort"

	"storage_feasibility/pkg/core/assumption"
	"storage_feasibility/pkg/models"
)

// Shock moves one input down and up from the base case.
type Shock struct {
	Variable string `json:"variable"`
	Low      string `json:"low"`
	High     string `json:"high"`

	// apply shocks in place; direction -1 is the unfavorable side.
	apply func(in *assumption.ProjectionInputs, direction float64)
}

// DefaultShocks are the standard tornado variables.
func DefaultShocks() []Shock {
	return []Shock{
		{
			Variable: "starting_rate",
			Low:      "-10%",
			High:     "+10%",
			apply: func(in *assumption.ProjectionInputs, d float64) {
				in.Rates.StartingRate *= 1 + 0.10*d
				in.Rates.StartingInPlaceRate *= 1 + 0.10*d
			},
		},
		{
			Variable: "stabilized_occupancy",
			Low:      "-5 pts",
			High:     "+5 pts",
			apply: func(in *assumption.ProjectionInputs, d float64) {
				shiftStabilized(in, 0.05*d)
			},
		},
		{
			Variable: "interest_rate",
			Low:      "+100 bps",
			High:     "-100 bps",
			apply: func(in *assumption.ProjectionInputs, d float64) {
				in.Financing.AnnualRate -= 0.01 * d
				if in.Financing.AnnualRate < 0 {
					in.Financing.AnnualRate = 0
				}
			},
		},
		{
			Variable: "expense_growth",
			Low:      "+1 pt",
			High:     "-1 pt",
			apply: func(in *assumption.ProjectionInputs, d float64) {
				in.Growth.ExpenseGrowth -= 0.01 * d
			},
		},
		{
			Variable: "exit_cap_rate",
			Low:      "+50 bps",
			High:     "-50 bps",
			apply: func(in *assumption.ProjectionInputs, d float64) {
				in.Valuation.ExitCapRate -= 0.005 * d
			},
		},
	}
}

// shiftStabilized moves every target by delta scaled by its share of the
// lease-up, so the final target moves by the full delta and the path stays
// non-decreasing.
func shiftStabilized(in *assumption.ProjectionInputs, delta float64) {
	targets := in.Occupancy.Targets
	if len(targets) == 0 {
		return
	}
	start := in.Occupancy.StartingOccupancy
	final := targets[len(targets)-1].Occupancy
	span := final - start
	for i, t := range targets {
		share := 1.0
		if span > 0 {
			share = (t.Occupancy - start) / span
		}
		targets[i].Occupancy = clamp(t.Occupancy+delta*share, 0, 1)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// TornadoBar is one variable's low/high result. Low is the unfavorable shock.
type TornadoBar struct {
	Variable  string   `json:"variable"`
	LowLabel  string   `json:"low_label"`
	HighLabel string   `json:"high_label"`
	LowIRR    *float64 `json:"low_irr"`
	HighIRR   *float64 `json:"high_irr"`
	IRRSwing  float64  `json:"irr_swing"` // 0 when either side has no IRR
	LowNOI    float64  `json:"low_noi"`
	HighNOI   float64  `json:"high_noi"`
	NOISwing  float64  `json:"noi_swing"`
}

// Tornado is the sensitivity result, bars sorted by descending IRR swing then
// NOI swing.
type Tornado struct {
	BaseIRR *float64     `json:"base_irr"`
	BaseNOI float64      `json:"base_noi"`
	Bars    []TornadoBar `json:"bars"`
}

// Sensitivity runs base plus a low and high variant for every shock.
func (r *Runner) Sensitivity(ctx context.Context, base assumption.ProjectionInputs, shocks []Shock) (*Tornado, error) {
	if len(shocks) == 0 {
		shocks = DefaultShocks()
	}
	r.log.Infof("Running sensitivity for %q across %d variables", base.Name, len(shocks))

	// 1. Base, then low/high pairs in shock order
	inputs := []assumption.ProjectionInputs{base.Clone()}
	for _, s := range shocks {
		for _, d := range []float64{-1, 1} {
			in := base.Clone()
			s.apply(&in, d)
			in.Name = joinName(base.Name, s.Variable)
			inputs = append(inputs, in)
		}
	}
	projections, err := r.RunAll(ctx, inputs)
	if err != nil {
		return nil, err
	}

	// 2. Bars
	baseIRR, baseNOI := headline(projections[0])
	t := &Tornado{BaseIRR: baseIRR, BaseNOI: baseNOI}
	for i, s := range shocks {
		lowIRR, lowNOI := headline(projections[1+2*i])
		highIRR, highNOI := headline(projections[2+2*i])
		bar := TornadoBar{
			Variable:  s.Variable,
			LowLabel:  s.Low,
			HighLabel: s.High,
			LowIRR:    lowIRR,
			HighIRR:   highIRR,
			LowNOI:    lowNOI,
			HighNOI:   highNOI,
			NOISwing:  abs(highNOI - lowNOI),
		}
		if lowIRR != nil && highIRR != nil {
			bar.IRRSwing = abs(*highIRR - *lowIRR)
		}
		t.Bars = append(t.Bars, bar)
	}

	// 3. Widest bar first
	sort.SliceStable(t.Bars, func(i, j int) bool {
		if t.Bars[i].IRRSwing != t.Bars[j].IRRSwing {
			return t.Bars[i].IRRSwing > t.Bars[j].IRRSwing
		}
		return t.Bars[i].NOISwing > t.Bars[j].NOISwing
	})
	return t, nil
}

func headline(p *models.Projection) (*float64, float64) {
	if p.Returns == nil {
		return nil, 0
	}
	return p.Returns.IRR, p.Returns.StabilizedNOI
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
