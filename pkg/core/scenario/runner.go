package scenario

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"storage_feasibility/pkg/core/assumption"
	"storage_feasibility/pkg/core/projection"
	"storage_feasibility/pkg/models"
)

// DefaultHurdleRate is the levered IRR a deal must clear.
const DefaultHurdleRate = 0.12

// DefaultConcurrency bounds the number of projections in flight.
const DefaultConcurrency = 4

// Outcome is one scenario's result.
type Outcome struct {
	Scenario      Scenario           `json:"scenario"`
	Projection    *models.Projection `json:"projection,omitempty"`
	IRR           *float64           `json:"irr"`
	NPV           float64            `json:"npv"`
	StabilizedNOI float64            `json:"stabilized_noi"`
	MeetsHurdle   bool               `json:"meets_hurdle"`
}

// Analysis is the probability-weighted summary across scenarios.
type Analysis struct {
	Outcomes []Outcome `json:"outcomes"`

	ExpectedIRR   *float64 `json:"expected_irr"`
	ExpectedNPV   float64  `json:"expected_npv"`
	IRRStdDev     *float64 `json:"irr_std_dev"`
	MinIRR        *float64 `json:"min_irr"`
	MaxIRR        *float64 `json:"max_irr"`
	HurdleRate    float64  `json:"hurdle_rate"`
	MeetsHurdle   bool     `json:"meets_hurdle"`    // expected IRR clears the hurdle
	AllMeetHurdle bool     `json:"all_meet_hurdle"` // every scenario clears it
}

// Runner executes projections concurrently. The engine is shared read-only.
type Runner struct {
	engine      *projection.Engine
	log         *logrus.Logger
	concurrency int
	hurdle      float64
	progress    func() // called once per finished projection, from any goroutine
}

// NewRunner creates a runner. A nil logger discards output.
func NewRunner(engine *projection.Engine, log *logrus.Logger) *Runner {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.PanicLevel)
	}
	return &Runner{
		engine:      engine,
		log:         log,
		concurrency: DefaultConcurrency,
		hurdle:      DefaultHurdleRate,
	}
}

// WithConcurrency sets the worker limit (minimum 1).
func (r *Runner) WithConcurrency(n int) *Runner {
	if n < 1 {
		n = 1
	}
	r.concurrency = n
	return r
}

// WithHurdle sets the hurdle IRR.
func (r *Runner) WithHurdle(h float64) *Runner {
	r.hurdle = h
	return r
}

// WithProgress registers a callback invoked after each projection finishes.
// It must be safe for concurrent use.
func (r *Runner) WithProgress(fn func()) *Runner {
	r.progress = fn
	return r
}

// RunAll projects every input set concurrently. Results keep input order.
// The first failure cancels the remaining work and is returned.
func (r *Runner) RunAll(ctx context.Context, inputs []assumption.ProjectionInputs) ([]*models.Projection, error) {
	results := make([]*models.Projection, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i := range inputs {
		i, in := i, inputs[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			proj, err := r.engine.Run(in)
			if err != nil {
				return fmt.Errorf("projection %q: %w", in.Name, err)
			}
			results[i] = proj
			if r.progress != nil {
				r.progress()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Analyze runs each scenario against base and summarizes the outcomes.
// Weights are normalized; when they sum to zero every scenario counts equally.
func (r *Runner) Analyze(ctx context.Context, base assumption.ProjectionInputs, scenarios []Scenario) (*Analysis, error) {
	if len(scenarios) == 0 {
		scenarios = DefaultScenarios()
	}
	r.log.Infof("Running %d scenarios for %q", len(scenarios), base.Name)

	// 1. Build and run the variants
	inputs := make([]assumption.ProjectionInputs, len(scenarios))
	for i, s := range scenarios {
		inputs[i] = s.Apply(base)
	}
	projections, err := r.RunAll(ctx, inputs)
	if err != nil {
		return nil, err
	}

	// 2. Collect outcomes
	a := &Analysis{HurdleRate: r.hurdle, AllMeetHurdle: true}
	for i, s := range scenarios {
		p := projections[i]
		o := Outcome{Scenario: s, Projection: p}
		if p.Returns != nil {
			o.IRR = p.Returns.IRR
			o.NPV = p.Returns.NPV
			o.StabilizedNOI = p.Returns.StabilizedNOI
		}
		o.MeetsHurdle = o.IRR != nil && *o.IRR >= r.hurdle
		if !o.MeetsHurdle {
			a.AllMeetHurdle = false
		}
		a.Outcomes = append(a.Outcomes, o)
		r.log.WithFields(logrus.Fields{
			"scenario": s.Name,
			"irr":      o.IRR,
			"npv":      o.NPV,
		}).Debug("Scenario complete")
	}

	// 3. Weighted statistics
	weights := normalizedWeights(scenarios)
	npvs := make([]float64, len(a.Outcomes))
	for i, o := range a.Outcomes {
		npvs[i] = o.NPV
	}
	a.ExpectedNPV = stat.Mean(npvs, weights)

	irrs, irrWeights := definedIRRs(a.Outcomes, weights)
	if len(irrs) > 0 {
		mean, std := stat.PopMeanStdDev(irrs, irrWeights)
		a.ExpectedIRR = models.Float(mean)
		a.IRRStdDev = models.Float(std)
		a.MinIRR = models.Float(floats.Min(irrs))
		a.MaxIRR = models.Float(floats.Max(irrs))
		a.MeetsHurdle = mean >= r.hurdle
	}

	r.log.Infof("Scenario analysis complete: expected NPV %.0f, meets hurdle %t", a.ExpectedNPV, a.MeetsHurdle)
	return a, nil
}

func normalizedWeights(scenarios []Scenario) []float64 {
	w := make([]float64, len(scenarios))
	for i, s := range scenarios {
		w[i] = math.Max(0, s.Weight)
	}
	total := floats.Sum(w)
	if total == 0 {
		for i := range w {
			w[i] = 1
		}
		total = float64(len(w))
	}
	floats.Scale(1/total, w)
	return w
}

// definedIRRs drops scenarios whose IRR does not exist. The remaining weights
// are not renormalized; stat divides by their sum.
func definedIRRs(outcomes []Outcome, weights []float64) ([]float64, []float64) {
	var irrs, w []float64
	for i, o := range outcomes {
		if o.IRR == nil {
			continue
		}
		irrs = append(irrs, *o.IRR)
		w = append(w, weights[i])
	}
	return irrs, w
}
