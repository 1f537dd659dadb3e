// Package bench runs benchmark suites over devices and sizes.
package bench

import (
	"fmt"

	"github.com/fxnlabs/accelbench/internal/gpu"
	"github.com/fxnlabs/accelbench/internal/measure"
	"github.com/fxnlabs/accelbench/internal/results"
	"github.com/fxnlabs/accelbench/internal/sizing"
	"github.com/fxnlabs/accelbench/internal/stats"
)

// Suite is an ordered list of tests run over every supported device and every
// size of the sweep.
type Suite struct {
	Name  string
	Sweep sizing.Sweep
	// ExcludeCPU skips CPU-class devices, e.g. for host/device transfers.
	ExcludeCPU bool
	Tests      []Test
	// Derive computes extra rows from the suite's collected results. It must
	// not execute any work.
	Derive func(rs []results.BenchmarkResult) []results.BenchmarkResult
}

// Supports reports whether the suite runs on a device.
func (s Suite) Supports(p gpu.Profile) bool {
	return !(s.ExcludeCPU && p.IsCPU())
}

// Test is one benchmark of a suite.
type Test struct {
	Name     string
	Unit     string
	Polarity stats.Polarity
	// Verified tests hand their output to cross-device verification.
	Verified bool
	// Label describes a workload size, e.g. "512x512".
	Label func(size int64) string
	Run   func(env *Env, size int) (Outcome, error)
}

// Outcome is what a test produced for one (device, size).
type Outcome struct {
	// Effective is the size actually run after fitting to the device.
	Effective int64
	Samples   measure.Measurement
	// Values are the samples converted to the test's unit.
	Values []float64
	// Output is the data checked by verification, nil when not verified.
	Output []float32
}

// DefaultSuites returns every built-in suite in run order.
func DefaultSuites() []Suite {
	return []Suite{
		ComputeSuite(),
		MemorySuite(),
		TransferSuite(),
		LatencySuite(),
	}
}

// Select returns the suites named in names, in the order given.
func Select(all []Suite, names []string) ([]Suite, error) {
	byName := make(map[string]Suite, len(all))
	for _, s := range all {
		byName[s.Name] = s
	}
	out := make([]Suite, 0, len(names))
	for _, n := range names {
		s, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("unknown suite %q", n)
		}
		out = append(out, s)
	}
	return out, nil
}

func elementsLabel(size int64) string {
	switch {
	case size >= 1<<20 && size%(1<<20) == 0:
		return fmt.Sprintf("%dMi elems", size>>20)
	case size >= 1<<10 && size%(1<<10) == 0:
		return fmt.Sprintf("%dKi elems", size>>10)
	}
	return fmt.Sprintf("%d elems", size)
}
