package bench

import (
	"time"

	"github.com/fxnlabs/accelbench/internal/gpu"
	"github.com/fxnlabs/accelbench/internal/kernels"
	"github.com/fxnlabs/accelbench/internal/sizing"
	"github.com/fxnlabs/accelbench/internal/stats"
)

const (
	MemorySuiteName = "memory"
	UnitGBps        = "GB/s"

	// TriadScalar is the s of a = b + s·c.
	TriadScalar = 3.0

	// memoryFloor is the smallest element count a streaming workload shrinks to.
	memoryFloor = 1 << 16
)

var streamSweep = sizing.Sweep{
	Quick:    []int{1 << 20},
	Standard: []int{1 << 20, 1 << 24},
	Full:     []int{1 << 20, 1 << 24, 1 << 26},
}

// MemorySuite measures on-device streaming bandwidth.
func MemorySuite() Suite {
	return Suite{
		Name:  MemorySuiteName,
		Sweep: streamSweep,
		Tests: []Test{
			{
				Name:     kernels.Copy.Name,
				Unit:     UnitGBps,
				Polarity: stats.Maximize,
				Label:    elementsLabel,
				Run:      runCopy,
			},
			{
				Name:     kernels.Triad.Name,
				Unit:     UnitGBps,
				Polarity: stats.Maximize,
				Verified: true,
				Label:    elementsLabel,
				Run:      runTriad,
			},
		},
	}
}

func runCopy(env *Env, size int) (Outcome, error) {
	n64, err := sizing.Fit(int64(size), memoryFloor, 4, 2, env.Profile)
	if err != nil {
		return Outcome{}, err
	}
	n := int(n64)
	inv, err := env.Compile(kernels.Copy)
	if err != nil {
		return Outcome{}, err
	}
	dst, err := env.Allocate(n)
	if err != nil {
		return Outcome{}, err
	}
	src, err := env.Upload(kernels.Fill(env.Seed, 3, n))
	if err != nil {
		return Outcome{}, err
	}

	args := gpu.Args{Buffers: []gpu.Buffer{dst, src}, Ints: []int{n}}
	cfg := kernels.LinearLaunch(n)
	samples, err := env.Time(func() error { return inv.Launch(cfg, args) })
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Effective: n64,
		Samples:   samples,
		Values:    bandwidth(samples, n64*4*2),
	}, nil
}

func runTriad(env *Env, size int) (Outcome, error) {
	n64, err := sizing.Fit(int64(size), memoryFloor, 4, 3, env.Profile)
	if err != nil {
		return Outcome{}, err
	}
	n := int(n64)
	inv, err := env.Compile(kernels.Triad)
	if err != nil {
		return Outcome{}, err
	}
	a, err := env.Allocate(n)
	if err != nil {
		return Outcome{}, err
	}
	b, err := env.Upload(kernels.Fill(env.Seed, 4, n))
	if err != nil {
		return Outcome{}, err
	}
	c, err := env.Upload(kernels.Fill(env.Seed, 5, n))
	if err != nil {
		return Outcome{}, err
	}

	args := gpu.Args{Buffers: []gpu.Buffer{a, b, c}, Ints: []int{n}, Floats: []float32{TriadScalar}}
	cfg := kernels.LinearLaunch(n)
	samples, err := env.Time(func() error { return inv.Launch(cfg, args) })
	if err != nil {
		return Outcome{}, err
	}
	out, err := a.ToHost()
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Effective: n64,
		Samples:   samples,
		Values:    bandwidth(samples, n64*4*3),
		Output:    out,
	}, nil
}

func bandwidth(samples []time.Duration, bytes int64) []float64 {
	out := make([]float64, len(samples))
	for i, d := range samples {
		out[i] = kernels.Bandwidth(bytes, d.Seconds())
	}
	return out
}
