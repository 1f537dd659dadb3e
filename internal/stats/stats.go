// Package stats reduces benchmark samples to summary figures.
package stats

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Polarity tells whether higher or lower values are better for a metric.
type Polarity int

const (
	// Maximize is used for throughput metrics (GFLOPS, GB/s).
	Maximize Polarity = iota
	// Minimize is used for latency metrics.
	Minimize
)

func (p Polarity) String() string {
	if p == Minimize {
		return "minimize"
	}
	return "maximize"
}

// Summary is the reduction of one sample sequence.
type Summary struct {
	Best    float64
	Average float64
	Worst   float64
	StdDev  float64
}

// Reduce summarizes samples under p. The standard deviation is the sample
// deviation (n-1 divisor) and is zero for a single sample. An empty input
// yields a zero Summary.
func Reduce(samples []float64, p Polarity) Summary {
	if len(samples) == 0 {
		return Summary{}
	}
	hi, lo := floats.Max(samples), floats.Min(samples)
	s := Summary{
		Average: stat.Mean(samples, nil),
	}
	if len(samples) > 1 {
		s.StdDev = stat.StdDev(samples, nil)
	}
	if p == Minimize {
		s.Best, s.Worst = lo, hi
	} else {
		s.Best, s.Worst = hi, lo
	}
	return s
}
