package bench

import (
	"fmt"
	"time"

	"github.com/fxnlabs/accelbench/internal/gpu"
	"github.com/fxnlabs/accelbench/internal/kernels"
	"github.com/fxnlabs/accelbench/internal/sizing"
	"github.com/fxnlabs/accelbench/internal/stats"
)

const (
	LatencySuiteName = "latency"
	UnitMicroseconds = "us"
)

// LatencySuite measures the launch-to-completion time of an empty kernel.
// The size is the number of threads launched.
func LatencySuite() Suite {
	one := []int{1}
	return Suite{
		Name:  LatencySuiteName,
		Sweep: sizing.Sweep{Quick: one, Standard: one, Full: []int{1, 1024}},
		Tests: []Test{{
			Name:     "launch",
			Unit:     UnitMicroseconds,
			Polarity: stats.Minimize,
			Label:    func(n int64) string { return fmt.Sprintf("%d threads", n) },
			Run:      runLaunch,
		}},
	}
}

func runLaunch(env *Env, size int) (Outcome, error) {
	inv, err := env.Compile(kernels.Empty)
	if err != nil {
		return Outcome{}, err
	}
	cfg := kernels.SingleThread
	if size > 1 {
		group := min(size, kernels.LinearGroupSize)
		if limit := env.Profile.MaxThreadsPerGroup; limit > 0 && limit < group {
			group = limit
		}
		cfg = gpu.Linear(size, group)
	}
	samples, err := env.Time(func() error { return inv.Launch(cfg, gpu.Args{}) })
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Effective: int64(size),
		Samples:   samples,
		Values:    samples.Map(func(d time.Duration) float64 { return float64(d) / float64(time.Microsecond) }),
	}, nil
}
