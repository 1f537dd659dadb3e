package bench

import (
	"errors"
	"fmt"

	"github.com/fxnlabs/accelbench/internal/gpu"
	"github.com/fxnlabs/accelbench/internal/measure"
)

// Env is what a test sees of the device it runs on. Buffers allocated through
// Env are owned by the running test and released when it returns.
type Env struct {
	Acc      gpu.Accelerator
	Profile  gpu.Profile
	Protocol measure.Protocol
	Seed     uint64

	compiled map[string]gpu.Invocable
	buffers  []gpu.Buffer
}

func newEnv(acc gpu.Accelerator, p gpu.Profile, protocol measure.Protocol, seed uint64) *Env {
	return &Env{
		Acc:      acc,
		Profile:  p,
		Protocol: protocol,
		Seed:     seed,
		compiled: make(map[string]gpu.Invocable),
	}
}

// Compile compiles k once per accelerator and reuses it afterwards.
func (e *Env) Compile(k gpu.Kernel) (gpu.Invocable, error) {
	if inv, ok := e.compiled[k.Name]; ok {
		return inv, nil
	}
	inv, err := e.Acc.Compile(k)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", k.Name, err)
	}
	e.compiled[k.Name] = inv
	return inv, nil
}

// Allocate reserves a buffer owned by the current test.
func (e *Env) Allocate(count int) (gpu.Buffer, error) {
	b, err := e.Acc.Allocate(count)
	if err != nil {
		return nil, fmt.Errorf("allocate %d elements: %w", count, err)
	}
	e.buffers = append(e.buffers, b)
	return b, nil
}

// Upload allocates a buffer holding data.
func (e *Env) Upload(data []float32) (gpu.Buffer, error) {
	b, err := e.Allocate(len(data))
	if err != nil {
		return nil, err
	}
	if err := b.CopyFrom(data); err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	return b, nil
}

// Time runs the measurement protocol on this env's accelerator.
func (e *Env) Time(launch func() error) (measure.Measurement, error) {
	return e.Protocol.Time(e.Acc, launch)
}

// release disposes every buffer allocated since the last release.
func (e *Env) release() error {
	var errs []error
	for _, b := range e.buffers {
		if err := b.Dispose(); err != nil {
			errs = append(errs, err)
		}
	}
	e.buffers = nil
	return errors.Join(errs...)
}
