// Package loader reads the projection's data files: input sets and benchmark
// overrides as YAML, attrition and seasonality tables as JSON or HJSON.
// The engine never touches the filesystem; everything it needs is parsed here.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	hjson "github.com/hjson/hjson-go/v4"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"storage_feasibility/pkg/core/assumption"
	"storage_feasibility/pkg/core/attrition"
	"storage_feasibility/pkg/core/seasonality"
)

// Accepted start_date layouts, most specific first.
var dateLayouts = []string{"2006-01-02", "2006-01", time.RFC3339}

// Loader resolves relative paths against Dir.
type Loader struct {
	Dir string
	log *logrus.Logger
}

// New creates a loader rooted at dir. A nil logger discards output.
func New(dir string, log *logrus.Logger) *Loader {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.PanicLevel)
	}
	return &Loader{Dir: dir, log: log}
}

func (l *Loader) resolve(path string) string {
	if filepath.IsAbs(path) || l.Dir == "" {
		return path
	}
	return filepath.Join(l.Dir, path)
}

func (l *Loader) read(path string) ([]byte, error) {
	full := l.resolve(path)
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", full, err)
	}
	return data, nil
}

// =============================================================================
// INPUTS
// =============================================================================

// dateField carries start_date through YAML as text.
type dateField struct {
	StartDate string `yaml:"start_date"`
}

// ParseInputs decodes a YAML input set. Benchmarks the file leaves out keep
// their defaults. The result is not validated.
func ParseInputs(data []byte) (assumption.ProjectionInputs, error) {
	in := assumption.ProjectionInputs{
		Revenue:  assumption.DefaultRevenueBenchmarks(),
		Expenses: assumption.DefaultExpenseBenchmarks(),
	}
	if err := yaml.Unmarshal(data, &in); err != nil {
		return in, fmt.Errorf("failed to parse inputs: %w", err)
	}

	var d dateField
	if err := yaml.Unmarshal(data, &d); err != nil {
		return in, fmt.Errorf("failed to parse start_date: %w", err)
	}
	if d.StartDate != "" {
		start, err := parseDate(d.StartDate)
		if err != nil {
			return in, err
		}
		in.StartDate = start
	}
	return in, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("start_date %q: expected YYYY-MM-DD or YYYY-MM", s)
}

// LoadInputs reads an input set. Files ending in .json use the JSON layout of
// assumption.ProjectionInputs; anything else is YAML.
func (l *Loader) LoadInputs(path string) (assumption.ProjectionInputs, error) {
	data, err := l.read(path)
	if err != nil {
		return assumption.ProjectionInputs{}, err
	}

	var in assumption.ProjectionInputs
	if strings.EqualFold(filepath.Ext(path), ".json") {
		parsed, perr := assumption.FromJSON(data)
		if perr != nil {
			return in, perr
		}
		in = *parsed
	} else {
		in, err = ParseInputs(data)
		if err != nil {
			return in, fmt.Errorf("%s: %w", path, err)
		}
	}
	if in.Name == "" {
		in.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	l.log.WithFields(logrus.Fields{
		"file":  path,
		"name":  in.Name,
		"lines": len(in.Expenses.Lines),
	}).Debug("Loaded inputs")
	return in, nil
}

// Benchmarks is a standalone benchmark catalog file.
type Benchmarks struct {
	Revenue  assumption.RevenueBenchmarks `yaml:"revenue"`
	Expenses assumption.ExpenseBenchmarks `yaml:"expenses"`
}

// LoadBenchmarks reads a YAML benchmark catalog over the defaults.
func (l *Loader) LoadBenchmarks(path string) (Benchmarks, error) {
	b := Benchmarks{
		Revenue:  assumption.DefaultRevenueBenchmarks(),
		Expenses: assumption.DefaultExpenseBenchmarks(),
	}
	data, err := l.read(path)
	if err != nil {
		return b, err
	}
	if err := yaml.Unmarshal(data, &b); err != nil {
		return b, fmt.Errorf("failed to parse benchmarks %s: %w", path, err)
	}
	l.log.Infof("Loaded benchmarks from %s (%d expense lines)", path, len(b.Expenses.Lines))
	return b, nil
}

// Apply replaces the benchmark tables on in.
func (b Benchmarks) Apply(in assumption.ProjectionInputs) assumption.ProjectionInputs {
	out := in.Clone()
	out.Revenue = b.Revenue
	out.Expenses = assumption.ExpenseBenchmarks{
		Staffing: b.Expenses.Staffing,
		Lines:    append([]assumption.ExpenseLine(nil), b.Expenses.Lines...),
	}
	return out
}

// =============================================================================
// TABLES
// =============================================================================

// attritionFile is the on-disk layout of the attrition table.
type attritionFile struct {
	DefaultRate float64            `json:"default_rate"`
	Records     []attrition.Record `json:"records"`
}

// ParseAttrition decodes an attrition table. HJSON is a superset of JSON, so
// strict JSON files parse unchanged.
func ParseAttrition(data []byte) (*attrition.Table, error) {
	var f attritionFile
	if err := hjson.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse attrition table: %w", err)
	}
	if len(f.Records) == 0 {
		return nil, fmt.Errorf("attrition table has no records")
	}
	return attrition.NewTable(f.Records, f.DefaultRate)
}

// LoadAttrition reads and indexes an attrition table.
func (l *Loader) LoadAttrition(path string) (*attrition.Table, error) {
	data, err := l.read(path)
	if err != nil {
		return nil, err
	}
	table, err := ParseAttrition(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	l.log.Infof("Loaded attrition table from %s (%d rows)", path, table.Len())
	return table, nil
}

type seasonalityFile struct {
	Months []seasonality.Factor `json:"months"`
}

// ParseSeasonality decodes a twelve-month seasonality profile.
func ParseSeasonality(data []byte) (*seasonality.Profile, error) {
	var f seasonalityFile
	if err := hjson.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seasonality profile: %w", err)
	}
	return seasonality.NewProfile(f.Months)
}

// LoadSeasonality reads a seasonality profile. An empty path yields the flat
// profile.
func (l *Loader) LoadSeasonality(path string) (*seasonality.Profile, error) {
	if path == "" {
		l.log.Warn("No seasonality profile given, using flat factors")
		return seasonality.Flat(), nil
	}
	data, err := l.read(path)
	if err != nil {
		return nil, err
	}
	p, err := ParseSeasonality(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	l.log.Infof("Loaded seasonality profile from %s", path)
	return p, nil
}
