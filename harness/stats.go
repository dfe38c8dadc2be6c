package harness

import "github.com/aclements/go-moremath/stats"

// ComputeStats returns the mean and sample standard deviation of values.
// A single value has a standard deviation of 0. values must not be empty.
func ComputeStats(values []float64) Stats {
	if len(values) == 0 {
		panic("harness: ComputeStats of empty sample")
	}

	sample := stats.Sample{Xs: values}
	if len(values) == 1 {
		return Stats{Mean: sample.Mean()}
	}

	return Stats{
		Mean: sample.Mean(),
		Std:  sample.StdDev(),
	}
}
