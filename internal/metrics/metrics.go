package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxnlabs/accelbench/internal/measure"
	"github.com/fxnlabs/accelbench/internal/results"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the Prometheus collectors of one benchmark run. Each run owns
// its registry so repeated runs in one process never mix samples.
type Metrics struct {
	Registry *prometheus.Registry

	SampleDuration *prometheus.HistogramVec
	ResultsTotal   *prometheus.CounterVec
	BestValue      *prometheus.GaugeVec
	MatMulGFLOPS   *prometheus.GaugeVec

	VerificationTotal *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,

		SampleDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "accelbench_sample_duration_seconds",
			Help:    "Wall time of timed kernel invocations, including synchronization",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 14), // 1µs to ~67s
		}, []string{"suite", "benchmark", "device"}),

		ResultsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "accelbench_results_total",
			Help: "Benchmark results recorded, by outcome",
		}, []string{"suite", "outcome"}),

		BestValue: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "accelbench_best_value",
			Help: "Best value of the last completed result for a benchmark on a device",
		}, []string{"suite", "benchmark", "device", "unit"}),

		MatMulGFLOPS: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "accelbench_matmul_gflops",
			Help: "Average matrix multiplication performance in GFLOPS",
		}, []string{"kernel", "device", "size"}),

		VerificationTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "accelbench_verification_total",
			Help: "Cross-device verification outcomes",
		}, []string{"benchmark", "status"}),
	}
}

// ObserveSamples records the raw samples of one measurement.
func (m *Metrics) ObserveSamples(suite, benchmark, device string, samples measure.Measurement) {
	h := m.SampleDuration.WithLabelValues(suite, benchmark, device)
	for _, d := range samples {
		h.Observe(d.Seconds())
	}
}

// ObserveResult records a result once its verification status is final.
func (m *Metrics) ObserveResult(r results.BenchmarkResult) {
	if !r.OK() {
		m.ResultsTotal.WithLabelValues(r.Suite, "error").Inc()
		return
	}
	m.ResultsTotal.WithLabelValues(r.Suite, "ok").Inc()
	m.BestValue.WithLabelValues(r.Suite, r.Benchmark, r.Device, r.Unit).Set(r.Best)
	if r.Unit == "GFLOPS" {
		m.MatMulGFLOPS.WithLabelValues(r.Benchmark, r.Device, r.Label).Set(r.Average)
	}
	if r.Verification != results.StatusNotApplicable {
		m.VerificationTotal.WithLabelValues(r.Benchmark, string(r.Verification)).Inc()
	}
}

// WriteTextfile writes the registry in the Prometheus text format, suitable
// for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
