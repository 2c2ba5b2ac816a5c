// Command feasibility projects one or more candidate sites from input files
// and prints the rounded annual summary, or the raw projection as JSON.
//
//	feasibility [flags] site-a.yaml site-b.yaml ...
//
// With no input files the built-in default development is projected.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"storage_feasibility/pkg/config"
	"storage_feasibility/pkg/core/assumption"
	"storage_feasibility/pkg/core/display"
	"storage_feasibility/pkg/core/loader"
	"storage_feasibility/pkg/core/projection"
	"storage_feasibility/pkg/core/scenario"
	"storage_feasibility/pkg/core/validate"
	"storage_feasibility/pkg/models"
)

type options struct {
	dataDir     string
	attrition   string
	seasonality string
	benchmarks  string
	format      string
	months      bool
	scenarios   bool
	sensitivity bool
	template    bool
}

// siteReport is one site's JSON output.
type siteReport struct {
	Projection  *models.Projection `json:"projection"`
	Checks      *validate.Report   `json:"checks"`
	Scenarios   *scenario.Analysis `json:"scenarios,omitempty"`
	Sensitivity *scenario.Tornado  `json:"sensitivity,omitempty"`
}

func main() {
	godotenv.Load()

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var opts options
	flag.StringVar(&opts.dataDir, "data", cfg.DataDir, "directory holding the attrition and seasonality tables")
	flag.StringVar(&opts.attrition, "attrition", "attrition.hjson", "attrition table (JSON or HJSON)")
	flag.StringVar(&opts.seasonality, "seasonality", "seasonality.json", "seasonality profile; empty for flat")
	flag.StringVar(&opts.benchmarks, "benchmarks", "", "YAML benchmark catalog applied to every site")
	flag.StringVar(&opts.format, "format", "table", "output format: table or json")
	flag.BoolVar(&opts.months, "months", false, "include monthly rows in table output")
	flag.BoolVar(&opts.scenarios, "scenarios", false, "run the weighted scenario analysis")
	flag.BoolVar(&opts.sensitivity, "sensitivity", false, "run the tornado sensitivity")
	flag.BoolVar(&opts.template, "template", false, "print the default inputs as JSON and exit")
	flag.Parse()

	// Logs stay on stderr so stdout carries only the report.
	logger := cfg.NewLogger()
	logger.SetOutput(os.Stderr)

	if err := run(context.Background(), opts, flag.Args(), cfg, logger, os.Stdout); err != nil {
		logger.Fatalf("%v", err)
	}
}

func run(ctx context.Context, opts options, files []string, cfg *config.Config, logger *logrus.Logger, out io.Writer) error {
	if opts.template {
		data, err := assumption.DefaultInputs().ToJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	if opts.format != "table" && opts.format != "json" {
		return fmt.Errorf("unknown format %q", opts.format)
	}

	// 1. Tables and inputs
	tables := loader.New(opts.dataDir, logger)
	table, err := tables.LoadAttrition(opts.attrition)
	if err != nil {
		return err
	}
	profile, err := tables.LoadSeasonality(opts.seasonality)
	if err != nil {
		return err
	}

	sites, err := loadSites(files, opts.benchmarks, logger)
	if err != nil {
		return err
	}

	// 2. Project every site concurrently
	engine := projection.NewEngine(table, profile)
	runner := scenario.NewRunner(engine, logger).WithConcurrency(cfg.Concurrency)
	if opts.format == "table" && len(sites) > 1 {
		bar := progressbar.Default(int64(len(sites)), "projecting sites")
		runner.WithProgress(func() { bar.Add(1) })
	}
	projections, err := runner.RunAll(ctx, sites)
	if err != nil {
		return err
	}
	runner.WithProgress(nil)

	// 3. Optional analyses and output
	reports := make([]siteReport, len(sites))
	for i, in := range sites {
		reports[i] = siteReport{
			Projection: projections[i],
			Checks:     validate.CheckProjection(projections[i], in, 1e-6),
		}
		if opts.scenarios {
			if reports[i].Scenarios, err = runner.Analyze(ctx, in, nil); err != nil {
				return err
			}
			for j := range reports[i].Scenarios.Outcomes {
				reports[i].Scenarios.Outcomes[j].Projection = nil
			}
		}
		if opts.sensitivity {
			if reports[i].Sensitivity, err = runner.Sensitivity(ctx, in, nil); err != nil {
				return err
			}
		}
	}

	if opts.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}
	for _, r := range reports {
		if err := writeTable(out, r, opts.months); err != nil {
			return err
		}
	}
	return nil
}

// loadSites reads every input file, or returns the default development.
func loadSites(files []string, benchmarks string, logger *logrus.Logger) ([]assumption.ProjectionInputs, error) {
	ld := loader.New("", logger)
	var catalog *loader.Benchmarks
	if benchmarks != "" {
		b, err := ld.LoadBenchmarks(benchmarks)
		if err != nil {
			return nil, err
		}
		catalog = &b
	}

	sites := make([]assumption.ProjectionInputs, 0, len(files))
	for _, f := range files {
		in, err := ld.LoadInputs(f)
		if err != nil {
			return nil, err
		}
		sites = append(sites, in)
	}
	if len(sites) == 0 {
		logger.Info("No input files given, projecting the default development")
		sites = append(sites, assumption.DefaultInputs())
	}
	if catalog != nil {
		for i := range sites {
			sites[i] = catalog.Apply(sites[i])
		}
	}
	return sites, nil
}

func writeTable(w io.Writer, r siteReport, months bool) error {
	p := r.Projection
	fmt.Fprintf(w, "\n== %s ==\n", p.Name)
	if err := display.WriteAnnual(w, display.Annual(p.Years)); err != nil {
		return err
	}
	if months {
		fmt.Fprintln(w)
		if err := display.WriteMonthly(w, display.Monthly(p.Months)); err != nil {
			return err
		}
	}
	fmt.Fprintln(w)
	if err := display.WriteReturns(w, p.Returns); err != nil {
		return err
	}

	if r.Scenarios != nil {
		fmt.Fprintln(w)
		if err := display.WriteScenarios(w, r.Scenarios); err != nil {
			return err
		}
	}
	if r.Sensitivity != nil {
		fmt.Fprintln(w)
		if err := display.WriteTornado(w, r.Sensitivity); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "\nChecks: %s\n", r.Checks.Summary())
	for _, warn := range p.Warnings {
		fmt.Fprintf(w, "  %s\n", warn)
	}
	return nil
}
