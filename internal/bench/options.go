package bench

import (
	"github.com/fxnlabs/accelbench/internal/config"
	"github.com/fxnlabs/accelbench/internal/kernels"
	"github.com/fxnlabs/accelbench/internal/sizing"
)

// Options select what one run executes.
type Options struct {
	Suites  []string
	Devices []string
	Mode    sizing.Mode

	// Size overrides every sweep when positive.
	Size       int
	Warmup     int
	Iterations int
	Tolerance  float64
	Stride     int
	Seed       uint64
}

// OptionsFromConfig derives run options from a validated configuration.
func OptionsFromConfig(c *config.Config) Options {
	mode := c.Mode()
	counts := c.CountsFor(mode)
	return Options{
		Suites:     append([]string(nil), c.Run.Suites...),
		Devices:    append([]string(nil), c.Run.Devices...),
		Mode:       mode,
		Size:       c.Run.Size,
		Warmup:     counts.Warmup,
		Iterations: counts.Iterations,
		Tolerance:  c.Verification.Tolerance,
		Stride:     c.Verification.Stride,
		Seed:       kernels.DefaultSeed,
	}
}
