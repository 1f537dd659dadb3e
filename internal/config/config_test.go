package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fxnlabs/accelbench/fixtures"
	"github.com/fxnlabs/accelbench/internal/gpu"
	"github.com/fxnlabs/accelbench/internal/sizing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		config, err := LoadConfig("../../fixtures/tests/config/valid_config.yaml")
		require.NoError(t, err)
		require.NotNil(t, config)

		assert.Equal(t, "debug", config.Logger.Verbosity)
		assert.Equal(t, "console", config.Logger.Format, "unset fields keep defaults")
		assert.Equal(t, []string{"compute", "latency"}, config.Run.Suites)
		assert.Equal(t, []string{"gpu-a"}, config.Run.Devices)
		assert.Equal(t, sizing.ModeQuick, config.Mode())
		assert.Equal(t, 512, config.Run.Size)
		assert.Equal(t, "out/run.json", config.Run.Export)
		assert.Equal(t, Counts{Warmup: 2, Iterations: 4}, config.CountsFor(sizing.ModeQuick))
		assert.Equal(t, Counts{Warmup: 3, Iterations: 10}, config.CountsFor(sizing.ModeStandard))
		assert.Equal(t, 0.05, config.Verification.Tolerance)
		assert.Equal(t, 10, config.Verification.Stride)
		assert.False(t, config.CPU.Enabled)
		assert.Equal(t, "out/metrics.prom", config.Metrics.Output)

		devices := config.SimDevices()
		require.Len(t, devices, 1, "device list replaces the defaults")
		assert.Equal(t, "small-gpu", devices[0].Info.Name)
		assert.Equal(t, gpu.ClassGPUB, devices[0].Info.Class)
		assert.Equal(t, int64(256*1024*1024), devices[0].Info.TotalMemory)
		assert.Equal(t, int64(16*1024), devices[0].Info.MaxSharedMemoryPerGroup)
		assert.Equal(t, []string{"triad"}, devices[0].FailingKernels)
	})

	t.Run("non-existent file", func(t *testing.T) {
		_, err := LoadConfig("non-existent-file.yaml")
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		dir, err := os.Getwd()
		require.NoError(t, err)

		configPath := filepath.Join(dir, "..", "..", "fixtures", "tests", "invalid_config", "config.yaml")
		_, err = LoadConfig(configPath)
		assert.Error(t, err)
	})

	t.Run("invalid mode", func(t *testing.T) {
		_, err := LoadConfig("../../fixtures/tests/invalid_mode/config.yaml")
		assert.ErrorContains(t, err, "turbo")
	})

	t.Run("embedded template", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, fixtures.ConfigTemplate, 0644))
		config, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, Default(), config)
	})
}

func TestValidate(t *testing.T) {
	require.NoError(t, Default().Validate())

	cases := map[string]func(c *Config){
		"unknown suite":      func(c *Config) { c.Run.Suites = []string{"graphics"} },
		"no suite":           func(c *Config) { c.Run.Suites = nil },
		"negative size":      func(c *Config) { c.Run.Size = -1 },
		"zero iterations":    func(c *Config) { c.Measurement.Full.Iterations = 0 },
		"negative warmup":    func(c *Config) { c.Measurement.Quick.Warmup = -1 },
		"bad device class":   func(c *Config) { c.Simulated.Devices[0].Class = "fpga" },
		"no device memory":   func(c *Config) { c.Simulated.Devices[1].MemoryMB = 0 },
		"negative tolerance": func(c *Config) { c.Verification.Tolerance = -1 },
		"no devices": func(c *Config) {
			c.CPU.Enabled = false
			c.Simulated.Devices = nil
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
