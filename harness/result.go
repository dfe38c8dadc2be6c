// Package harness runs the target binary for each experiment, extracts its
// reported metrics, and aggregates them across repeated runs.
package harness

import "github.com/weiihann/pdqbench/experiment"

// Stats is the aggregate of one timing metric over all runs.
type Stats struct {
	Mean float64
	Std  float64
}

// Result holds the aggregated output of all runs of one experiment.
type Result struct {
	Experiment experiment.Experiment
	// Timing maps every timing metric to its statistics over all runs.
	Timing map[Metric]Stats
	// Sizes holds the size metrics reported by the first run, in KB.
	// Metrics the target did not report are absent.
	Sizes map[Metric]float64
}

// Size returns the reported size of m in KB, or 0 if it was not reported.
func (r *Result) Size(m Metric) float64 {
	return r.Sizes[m]
}

// Results maps experiment names to their results. Failed experiments
// are absent.
type Results map[string]*Result

// Has reports whether the named experiment completed successfully.
func (rs Results) Has(name string) bool {
	_, ok := rs[name]
	return ok
}
