// Package diagnostics collects recoverable data-quality warnings raised while a
// projection runs. Nothing here interrupts computation: callers compensate for
// the condition and record it so outer layers can surface it.
package diagnostics

import "fmt"

// Kind classifies a warning.
type Kind string

const (
	// LookupGap marks an attrition (rental_month, tenure) pair that was not
	// tabulated and was resolved by fallback.
	LookupGap Kind = "LOOKUP_GAP"
	// NumericDegeneracy marks a division-by-zero style condition handled by a
	// documented fallback (zero-rate loan, zero debt service, zero basis).
	NumericDegeneracy Kind = "NUMERIC_DEGENERACY"
)

// Warning is a single compensated condition.
type Warning struct {
	Kind      Kind   `json:"kind"`
	Component string `json:"component"`
	Month     int    `json:"month,omitempty"` // 0 when not tied to a month
	Message   string `json:"message"`
}

func (w Warning) String() string {
	if w.Month > 0 {
		return fmt.Sprintf("[%s] %s month %d: %s", w.Kind, w.Component, w.Month, w.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", w.Kind, w.Component, w.Message)
}

// Collector accumulates warnings for one run. A nil *Collector is valid and
// discards everything, so components can be used without one.
//
// Collector is not safe for concurrent use; each projection owns its own.
type Collector struct {
	warnings []Warning
	seen     map[string]int
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{seen: make(map[string]int)}
}

// Add records a warning. Warnings sharing a key are recorded once; the key
// lets a component collapse a condition that repeats every month (a missing
// attrition row hit by every cohort, for example) into one entry.
func (c *Collector) Add(key string, w Warning) {
	if c == nil {
		return
	}
	if key != "" {
		if _, dup := c.seen[key]; dup {
			c.seen[key]++
			return
		}
		c.seen[key] = 1
	}
	c.warnings = append(c.warnings, w)
}

// Addf is a convenience wrapper building the message with fmt.Sprintf.
func (c *Collector) Addf(key string, kind Kind, component string, month int, format string, args ...any) {
	if c == nil {
		return
	}
	c.Add(key, Warning{
		Kind:      kind,
		Component: component,
		Month:     month,
		Message:   fmt.Sprintf(format, args...),
	})
}

// Warnings returns the recorded warnings in insertion order.
func (c *Collector) Warnings() []Warning {
	if c == nil || len(c.warnings) == 0 {
		return nil
	}
	out := make([]Warning, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// Occurrences reports how many times a key was raised, including duplicates.
func (c *Collector) Occurrences(key string) int {
	if c == nil {
		return 0
	}
	return c.seen[key]
}

// Count returns the number of distinct warnings of the given kind.
func (c *Collector) Count(kind Kind) int {
	if c == nil {
		return 0
	}
	n := 0
	for _, w := range c.warnings {
		if w.Kind == kind {
			n++
		}
	}
	return n
}
