package bench

import (
	"errors"
	"fmt"
	"time"

	"github.com/fxnlabs/accelbench/internal/gpu"
	"github.com/fxnlabs/accelbench/internal/measure"
	"github.com/fxnlabs/accelbench/internal/metrics"
	"github.com/fxnlabs/accelbench/internal/results"
	"github.com/fxnlabs/accelbench/internal/sizing"
	"github.com/fxnlabs/accelbench/internal/stats"
	"github.com/fxnlabs/accelbench/internal/verify"
	"go.uber.org/zap"
)

// ErrNoDevices is returned when no device is left after filtering.
var ErrNoDevices = errors.New("no devices selected")

// Engine runs suites over the devices of a Manager. Each run owns a fresh
// result store and verifier.
type Engine struct {
	manager *gpu.Manager
	suites  []Suite
	logger  *zap.Logger
	metrics *metrics.Metrics
	// Now is the clock used for timing samples. Nil means time.Now.
	Now func() time.Time
}

// NewEngine creates an engine. m may be nil to skip metric collection.
func NewEngine(manager *gpu.Manager, logger *zap.Logger, m *metrics.Metrics, suites ...Suite) *Engine {
	if len(suites) == 0 {
		suites = DefaultSuites()
	}
	return &Engine{
		manager: manager,
		suites:  suites,
		logger:  logger.Named("bench"),
		metrics: m,
	}
}

// Report is the outcome of one run.
type Report struct {
	Devices []gpu.Profile
	Results []results.BenchmarkResult
}

// Run executes the selected suites and returns every result in emission
// order. Failures of a single tuple become error results; a panic aborts only
// the suite it happened in. Errors are returned only when nothing can run.
func (e *Engine) Run(opts Options) (*Report, error) {
	suites, err := Select(e.suites, opts.Suites)
	if err != nil {
		return nil, err
	}
	devices, err := e.manager.Devices(opts.Devices)
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("%w (filter %v)", ErrNoDevices, opts.Devices)
	}

	r := &run{
		engine:   e,
		opts:     opts,
		devices:  devices,
		store:    results.NewStore(),
		verifier: verify.New(opts.Tolerance, opts.Stride),
	}

	e.logger.Info("Starting benchmark run",
		zap.Strings("suites", opts.Suites),
		zap.Int("devices", len(devices)),
		zap.String("mode", string(opts.Mode)),
		zap.Int("warmup", opts.Warmup),
		zap.Int("iterations", opts.Iterations))

	for _, s := range suites {
		r.suite(s)
	}

	report := &Report{Results: r.store.Results()}
	for _, d := range devices {
		report.Devices = append(report.Devices, d.Profile)
	}
	e.logger.Info("Benchmark run complete", zap.Int("results", len(report.Results)))
	return report, nil
}

// run holds the state of a single Engine.Run.
type run struct {
	engine   *Engine
	opts     Options
	devices  []gpu.Device
	store    *results.Store
	verifier *verify.Verifier

	// inFlight is the tuple being measured, reported when a suite panics.
	inFlight *results.Tuple
	unit     string
}

func (r *run) suite(s Suite) {
	log := r.engine.logger.With(zap.String("suite", s.Name))
	start := r.store.Len()

	defer func() {
		if p := recover(); p != nil {
			log.Error("Suite aborted", zap.Any("panic", p))
			if r.inFlight != nil {
				r.record(results.Failed(*r.inFlight, r.unit, fmt.Errorf("suite aborted: %v", p)))
				r.inFlight = nil
			}
		}
	}()

	sizes := sizing.SizesFor(r.opts.Mode, r.opts.Size, s.Sweep)
	log.Info("Running suite", zap.Ints("sizes", sizes))

	for _, d := range r.devices {
		if !s.Supports(d.Profile) {
			log.Debug("Suite does not support device", zap.String("device", d.Profile.Label()))
			continue
		}
		r.device(s, d, sizes, log)
	}

	if s.Derive != nil {
		for _, res := range s.Derive(r.store.Since(start)) {
			r.record(res)
		}
	}
}

func (r *run) device(s Suite, d gpu.Device, sizes []int, log *zap.Logger) {
	log = log.With(zap.String("device", d.Profile.Label()))

	acc, err := r.engine.manager.Open(d.Handle)
	if err != nil {
		log.Warn("Failed to open device", zap.Error(err))
		for _, size := range sizes {
			for _, t := range s.Tests {
				r.record(results.Failed(r.tuple(s, t, d.Profile, int64(size)), t.Unit, err))
			}
		}
		return
	}
	defer func() {
		if err := acc.Dispose(); err != nil {
			log.Warn("Failed to dispose accelerator", zap.Error(err))
		}
	}()

	env := newEnv(acc, d.Profile, measure.Protocol{
		Warmup:     r.opts.Warmup,
		Iterations: r.opts.Iterations,
		Now:        r.engine.Now,
	}, r.opts.Seed)

	for _, size := range sizes {
		for _, t := range s.Tests {
			r.test(s, t, env, size, log)
		}
	}
}

func (r *run) test(s Suite, t Test, env *Env, size int, log *zap.Logger) {
	tuple := r.tuple(s, t, env.Profile, int64(size))
	r.inFlight, r.unit = &tuple, t.Unit
	defer func() {
		if err := env.release(); err != nil {
			log.Warn("Failed to release buffers", zap.Error(err))
		}
	}()

	log = log.With(zap.String("benchmark", t.Name), zap.Int("size", size))
	out, err := t.Run(env, size)
	if err != nil {
		if errors.Is(err, sizing.ErrInsufficientMemory) {
			log.Info("Skipping size that does not fit device memory", zap.Error(err))
		} else {
			log.Warn("Benchmark failed", zap.Error(err))
		}
		r.record(results.Failed(tuple, t.Unit, err))
		r.inFlight = nil
		return
	}

	if out.Effective > 0 && out.Effective != tuple.Size {
		tuple.Label = fmt.Sprintf("%s (reduced from %s)", label(t, out.Effective), label(t, tuple.Size))
		log.Info("Workload reduced to fit device memory", zap.Int64("effective", out.Effective))
	}
	res := results.Measured(tuple, t.Unit, stats.Reduce(out.Values, t.Polarity))
	idx := r.store.Append(res)
	r.inFlight = nil

	if t.Verified && out.Output != nil {
		effective := out.Effective
		if effective <= 0 {
			effective = tuple.Size
		}
		o := r.verifier.Check(verify.Key{Test: t.Name, Size: effective}, env.Profile.Label(), out.Output)
		if err := r.store.SetVerification(idx, o.Status); err != nil {
			log.Error("Failed to record verification", zap.Error(err))
		}
		res.Verification = o.Status
		if o.Status == results.StatusFailed {
			log.Warn("Output differs from reference device",
				zap.String("reference", o.Reference),
				zap.Int("index", o.Index),
				zap.Float32("want", o.Want),
				zap.Float32("got", o.Got))
		}
	}

	if m := r.engine.metrics; m != nil {
		m.ObserveSamples(s.Name, t.Name, env.Profile.Label(), out.Samples)
		m.ObserveResult(res)
	}
	log.Debug("Benchmark complete", zap.Stringer("result", res))
}

func (r *run) record(res results.BenchmarkResult) {
	r.store.Append(res)
	if m := r.engine.metrics; m != nil {
		m.ObserveResult(res)
	}
}

func (r *run) tuple(s Suite, t Test, p gpu.Profile, size int64) results.Tuple {
	return results.Tuple{
		Suite:       s.Name,
		Benchmark:   t.Name,
		Device:      p.Label(),
		DeviceIndex: p.Index,
		Size:        size,
		Label:       label(t, size),
	}
}

func label(t Test, size int64) string {
	if t.Label == nil {
		return fmt.Sprint(size)
	}
	return t.Label(size)
}
