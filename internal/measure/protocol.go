// Package measure times kernel invocations with warmup and explicit synchronization.
package measure

import (
	"fmt"
	"time"
)

// Synchronizer blocks until all work submitted to one accelerator has completed.
type Synchronizer interface {
	Synchronize() error
}

// Measurement is the ordered sequence of raw timing samples of one
// (suite, benchmark, device, size) tuple.
type Measurement []time.Duration

// Seconds returns the samples in seconds.
func (m Measurement) Seconds() []float64 {
	out := make([]float64, len(m))
	for i, d := range m {
		out[i] = d.Seconds()
	}
	return out
}

// Map converts every sample with fn, e.g. a duration into GFLOP/s.
func (m Measurement) Map(fn func(time.Duration) float64) []float64 {
	out := make([]float64, len(m))
	for i, d := range m {
		out[i] = fn(d)
	}
	return out
}

// Protocol is the warmup-then-timed-iteration discipline.
type Protocol struct {
	Warmup     int
	Iterations int
	// Now is the clock samples are taken from. Nil means time.Now.
	Now func() time.Time
}

// Time runs Warmup untimed invocations, each followed by a synchronization
// barrier, then Iterations timed invocations bracketed by
// {start clock, launch, synchronize, stop clock}. Launch submission is
// asynchronous, so the synchronize inside the bracket is what makes a sample
// an execution time. Errors from launch or synchronize are returned as is,
// wrapped with the phase they occurred in.
func (p Protocol) Time(sync Synchronizer, launch func() error) (Measurement, error) {
	now := p.Now
	if now == nil {
		now = time.Now
	}

	for i := 0; i < p.Warmup; i++ {
		if err := launch(); err != nil {
			return nil, fmt.Errorf("warmup %d: %w", i, err)
		}
		if err := sync.Synchronize(); err != nil {
			return nil, fmt.Errorf("warmup %d: synchronize: %w", i, err)
		}
	}

	samples := make(Measurement, 0, p.Iterations)
	for i := 0; i < p.Iterations; i++ {
		start := now()
		if err := launch(); err != nil {
			return nil, fmt.Errorf("iteration %d: %w", i, err)
		}
		if err := sync.Synchronize(); err != nil {
			return nil, fmt.Errorf("iteration %d: synchronize: %w", i, err)
		}
		samples = append(samples, now().Sub(start))
	}
	return samples, nil
}
