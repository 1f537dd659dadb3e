package bench

import (
	"fmt"
	"time"

	"github.com/fxnlabs/accelbench/internal/gpu"
	"github.com/fxnlabs/accelbench/internal/kernels"
	"github.com/fxnlabs/accelbench/internal/results"
	"github.com/fxnlabs/accelbench/internal/sizing"
	"github.com/fxnlabs/accelbench/internal/stats"
)

const (
	ComputeSuiteName = "compute"
	SpeedupBenchmark = "speedup-tiled-vs-naive"
	UnitGFLOPS       = "GFLOPS"
)

// ComputeSuite multiplies square matrices with the naive and tiled kernels
// and derives the tiled speedup from the stored results.
func ComputeSuite() Suite {
	return Suite{
		Name: ComputeSuiteName,
		Sweep: sizing.Sweep{
			Quick:    []int{256, 512},
			Standard: []int{256, 512, 1024},
			Full:     []int{256, 512, 1024, 2048, 4096, 8192},
		},
		Tests: []Test{
			matMulTest(kernels.NaiveMatMul),
			matMulTest(kernels.TiledMatMul),
		},
		Derive: deriveSpeedup,
	}
}

func matMulTest(k gpu.Kernel) Test {
	return Test{
		Name:     k.Name,
		Unit:     UnitGFLOPS,
		Polarity: stats.Maximize,
		Verified: true,
		Label:    func(n int64) string { return fmt.Sprintf("%dx%d", n, n) },
		Run: func(env *Env, size int) (Outcome, error) {
			return runMatMul(env, k, size)
		},
	}
}

// runMatMul measures C = A·B for N = size. Matrix products cannot be shrunk
// without changing the benchmark, so a size that does not fit is skipped.
func runMatMul(env *Env, k gpu.Kernel, n int) (Outcome, error) {
	elements := int64(n) * int64(n)
	if _, err := sizing.Fit(elements, elements, 4, 3, env.Profile); err != nil {
		return Outcome{}, err
	}
	inv, err := env.Compile(k)
	if err != nil {
		return Outcome{}, err
	}
	a, err := env.Upload(kernels.Fill(env.Seed, 1, int(elements)))
	if err != nil {
		return Outcome{}, err
	}
	b, err := env.Upload(kernels.Fill(env.Seed, 2, int(elements)))
	if err != nil {
		return Outcome{}, err
	}
	c, err := env.Allocate(int(elements))
	if err != nil {
		return Outcome{}, err
	}

	args := gpu.Args{Buffers: []gpu.Buffer{a, b, c}, Ints: []int{n}}
	cfg := kernels.MatMulLaunch(n)
	samples, err := env.Time(func() error { return inv.Launch(cfg, args) })
	if err != nil {
		return Outcome{}, err
	}
	out, err := c.ToHost()
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Effective: int64(n),
		Samples:   samples,
		Values:    samples.Map(func(d time.Duration) float64 { return kernels.GFLOPS(n, d) }),
		Output:    out,
	}, nil
}

// deriveSpeedup pairs every successful tiled result with the naive result of
// the same device and size.
func deriveSpeedup(rs []results.BenchmarkResult) []results.BenchmarkResult {
	type key struct {
		device int
		size   int64
	}
	naive := make(map[key]results.BenchmarkResult)
	for _, r := range rs {
		if r.OK() && r.Benchmark == kernels.NaiveMatMul.Name {
			naive[key{r.DeviceIndex, r.Size}] = r
		}
	}

	var out []results.BenchmarkResult
	for _, tiled := range rs {
		if !tiled.OK() || tiled.Benchmark != kernels.TiledMatMul.Name {
			continue
		}
		base, ok := naive[key{tiled.DeviceIndex, tiled.Size}]
		if !ok || base.Best <= 0 || base.Average <= 0 || base.Worst <= 0 {
			continue
		}
		t := tiled.Tuple
		t.Benchmark = SpeedupBenchmark
		out = append(out, results.Measured(t, "x", stats.Summary{
			Best:    tiled.Best / base.Best,
			Average: tiled.Average / base.Average,
			Worst:   tiled.Worst / base.Worst,
		}))
	}
	return out
}
