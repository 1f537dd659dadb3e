// Package results holds the benchmark result model and the run's result store.
package results

import (
	"fmt"

	"github.com/fxnlabs/accelbench/internal/stats"
)

// Status is the cross-device verification status of a result.
type Status string

const (
	StatusNotApplicable Status = "n/a"
	StatusReference     Status = "reference"
	StatusPassed        Status = "passed"
	StatusFailed        Status = "failed"
)

// Tuple identifies one attempted (suite, benchmark, device, size).
type Tuple struct {
	Suite       string `json:"suite"`
	Benchmark   string `json:"benchmark"`
	Device      string `json:"device"`
	DeviceIndex int    `json:"deviceIndex"`
	Size        int64  `json:"size"`
	// Label describes the size in the workload's own terms, e.g. "512x512".
	Label string `json:"label"`
}

// BenchmarkResult is either a completed measurement or an error placeholder.
// Numeric fields are meaningful only when Error is empty.
type BenchmarkResult struct {
	Tuple
	Unit         string  `json:"unit"`
	Best         float64 `json:"best"`
	Average      float64 `json:"average"`
	Worst        float64 `json:"worst"`
	StdDev       float64 `json:"stddev"`
	Verification Status  `json:"verification"`
	Error        string  `json:"error,omitempty"`
}

// Measured builds a completed result from a reduced sample sequence.
func Measured(t Tuple, unit string, s stats.Summary) BenchmarkResult {
	return BenchmarkResult{
		Tuple:        t,
		Unit:         unit,
		Best:         s.Best,
		Average:      s.Average,
		Worst:        s.Worst,
		StdDev:       s.StdDev,
		Verification: StatusNotApplicable,
	}
}

// Failed builds an error placeholder. Its numeric fields stay zero.
func Failed(t Tuple, unit string, err error) BenchmarkResult {
	return BenchmarkResult{
		Tuple:        t,
		Unit:         unit,
		Verification: StatusNotApplicable,
		Error:        err.Error(),
	}
}

// OK reports whether r is a completed measurement.
func (r BenchmarkResult) OK() bool {
	return r.Error == ""
}

func (r BenchmarkResult) String() string {
	if !r.OK() {
		return fmt.Sprintf("%s/%s on %s [%s]: error: %s", r.Suite, r.Benchmark, r.Device, r.Label, r.Error)
	}
	return fmt.Sprintf("%s/%s on %s [%s]: best %.3f %s (avg %.3f, worst %.3f, sd %.3f) %s",
		r.Suite, r.Benchmark, r.Device, r.Label, r.Best, r.Unit, r.Average, r.Worst, r.StdDev, r.Verification)
}
