package results

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/fxnlabs/accelbench/internal/gpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRun() Run {
	return Run{
		Timestamp: time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC),
		Mode:      "quick",
		Devices: []gpu.Profile{
			{Index: 0, Backend: "simulated", Name: "sim-a", Class: gpu.ClassGPUA, TotalMemory: 1 << 30, WarpSize: 32},
		},
		Results: []BenchmarkResult{
			{
				Tuple:        Tuple{Suite: "compute", Benchmark: "matmul-tiled", Device: "#0 sim-a", Size: 512, Label: "512x512"},
				Unit:         "GFLOPS",
				Best:         123.456789012345,
				Average:      100.1,
				Worst:        0.1 + 0.2,
				StdDev:       1e-9,
				Verification: StatusReference,
			},
			{
				Tuple:        Tuple{Suite: "compute", Benchmark: "matmul-naive", Device: "#1 sim-b", DeviceIndex: 1, Size: 8192, Label: "8192x8192"},
				Unit:         "GFLOPS",
				Verification: StatusNotApplicable,
				Error:        "insufficient device memory",
			},
		},
	}
}

func TestExportRoundTrip(t *testing.T) {
	run := sampleRun()
	path := filepath.Join(t.TempDir(), "out", "run.json")

	require.NoError(t, Export(path, run))
	loaded, err := Load(path)
	require.NoError(t, err)

	assert.True(t, run.Timestamp.Equal(loaded.Timestamp))
	assert.Equal(t, run.Devices, loaded.Devices)
	require.Len(t, loaded.Results, len(run.Results))
	for i := range run.Results {
		want, got := run.Results[i], loaded.Results[i]
		assert.Equal(t, want.Best, got.Best)
		assert.Equal(t, want.Average, got.Average)
		assert.Equal(t, want.Worst, got.Worst)
		assert.Equal(t, want.StdDev, got.StdDev)
		assert.Equal(t, want.Verification, got.Verification)
		assert.Equal(t, want.Error, got.Error)
		assert.Equal(t, want, got)
	}
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte("{not json"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
