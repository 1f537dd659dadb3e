package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/fxnlabs/accelbench/internal/gpu"
	"github.com/fxnlabs/accelbench/internal/sizing"
	"gopkg.in/yaml.v3"
)

// Suites lists every suite name in the order they run.
var Suites = []string{"compute", "memory", "transfer", "latency"}

// Counts are the warmup and timed iteration counts of one run mode.
type Counts struct {
	Warmup     int `yaml:"warmup"`
	Iterations int `yaml:"iterations"`
}

// Run is the run configuration: what to benchmark and where the results go.
type Run struct {
	Suites  []string `yaml:"suites"`
	Devices []string `yaml:"devices"`
	Mode    string   `yaml:"mode"`
	Size    int      `yaml:"size"`
	Export  string   `yaml:"export"`
}

// SimulatedDevice describes a device exposed by the simulated backend.
type SimulatedDevice struct {
	Name               string   `yaml:"name"`
	Class              string   `yaml:"class"`
	MemoryMB           int64    `yaml:"memoryMB"`
	ComputeUnits       int      `yaml:"computeUnits"`
	MaxThreadsPerGroup int      `yaml:"maxThreadsPerGroup"`
	SharedMemoryKB     int64    `yaml:"sharedMemoryKB"`
	WarpSize           int      `yaml:"warpSize"`
	ClockMHz           int      `yaml:"clockMHz"`
	UnsupportedKernels []string `yaml:"unsupportedKernels"`
	FailingKernels     []string `yaml:"failingKernels"`
}

type Config struct {
	Logger struct {
		Verbosity string `yaml:"verbosity"`
		Format    string `yaml:"format"`
	} `yaml:"logger"`
	Run         Run `yaml:"run"`
	Measurement struct {
		Quick    Counts `yaml:"quick"`
		Standard Counts `yaml:"standard"`
		Full     Counts `yaml:"full"`
	} `yaml:"measurement"`
	Verification struct {
		Tolerance float64 `yaml:"tolerance"`
		Stride    int     `yaml:"stride"`
	} `yaml:"verification"`
	CPU struct {
		Enabled bool `yaml:"enabled"`
		Workers int  `yaml:"workers"`
	} `yaml:"cpu"`
	Simulated struct {
		Workers int               `yaml:"workers"`
		Devices []SimulatedDevice `yaml:"devices"`
	} `yaml:"simulated"`
	Metrics struct {
		Output string `yaml:"output"`
	} `yaml:"metrics"`
}

// Default returns a configuration that benchmarks the host CPU and two
// simulated GPUs with every suite in standard mode.
func Default() *Config {
	var c Config
	c.Logger.Verbosity = "info"
	c.Logger.Format = "console"
	c.Run.Suites = append([]string(nil), Suites...)
	c.Run.Mode = string(sizing.ModeStandard)
	c.Measurement.Quick = Counts{Warmup: 1, Iterations: 3}
	c.Measurement.Standard = Counts{Warmup: 3, Iterations: 10}
	c.Measurement.Full = Counts{Warmup: 5, Iterations: 20}
	c.Verification.Tolerance = 1e-2
	c.CPU.Enabled = true
	c.Simulated.Workers = 4
	c.Simulated.Devices = []SimulatedDevice{
		{Name: "sim-gpu-a", Class: string(gpu.ClassGPUA), MemoryMB: 8192, ComputeUnits: 80, MaxThreadsPerGroup: 1024, SharedMemoryKB: 48, WarpSize: 32, ClockMHz: 1700},
		{Name: "sim-gpu-b", Class: string(gpu.ClassGPUB), MemoryMB: 4096, ComputeUnits: 40, MaxThreadsPerGroup: 256, SharedMemoryKB: 64, WarpSize: 64, ClockMHz: 2100},
	}
	return &c
}

// LoadConfig reads a YAML file over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := Default()
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if _, err := sizing.ParseMode(c.Run.Mode); err != nil {
		return err
	}
	if len(c.Run.Suites) == 0 {
		return fmt.Errorf("no suite selected")
	}
	for _, s := range c.Run.Suites {
		if !knownSuite(s) {
			return fmt.Errorf("unknown suite %q (want one of %s)", s, strings.Join(Suites, ", "))
		}
	}
	if c.Run.Size < 0 {
		return fmt.Errorf("invalid size: %d (must not be negative)", c.Run.Size)
	}
	for name, counts := range map[string]Counts{
		"quick":    c.Measurement.Quick,
		"standard": c.Measurement.Standard,
		"full":     c.Measurement.Full,
	} {
		if counts.Warmup < 0 {
			return fmt.Errorf("invalid %s warmup: %d (must not be negative)", name, counts.Warmup)
		}
		if counts.Iterations < 1 {
			return fmt.Errorf("invalid %s iterations: %d (must be positive)", name, counts.Iterations)
		}
	}
	if c.Verification.Tolerance < 0 {
		return fmt.Errorf("invalid verification tolerance: %g", c.Verification.Tolerance)
	}
	for _, d := range c.Simulated.Devices {
		if d.Name == "" {
			return fmt.Errorf("simulated device without name")
		}
		if !gpu.DeviceClass(d.Class).Valid() {
			return fmt.Errorf("simulated device %s: unknown class %q", d.Name, d.Class)
		}
		if d.MemoryMB <= 0 {
			return fmt.Errorf("simulated device %s: invalid memoryMB %d", d.Name, d.MemoryMB)
		}
	}
	if !c.CPU.Enabled && len(c.Simulated.Devices) == 0 {
		return fmt.Errorf("no device configured")
	}
	return nil
}

// Mode returns the parsed run mode.
func (c *Config) Mode() sizing.Mode {
	m, err := sizing.ParseMode(c.Run.Mode)
	if err != nil {
		return sizing.ModeStandard
	}
	return m
}

// CountsFor returns the warmup and iteration counts of mode.
func (c *Config) CountsFor(mode sizing.Mode) Counts {
	switch mode {
	case sizing.ModeQuick:
		return c.Measurement.Quick
	case sizing.ModeFull:
		return c.Measurement.Full
	}
	return c.Measurement.Standard
}

// SimDevices converts the simulated device descriptions for the gpu package.
func (c *Config) SimDevices() []gpu.SimDevice {
	out := make([]gpu.SimDevice, 0, len(c.Simulated.Devices))
	for _, d := range c.Simulated.Devices {
		out = append(out, gpu.SimDevice{
			Info: gpu.DeviceInfo{
				Name:                    d.Name,
				Class:                   gpu.DeviceClass(d.Class),
				ComputeUnits:            d.ComputeUnits,
				MaxThreadsPerGroup:      d.MaxThreadsPerGroup,
				MaxSharedMemoryPerGroup: d.SharedMemoryKB * 1024,
				TotalMemory:             d.MemoryMB * 1024 * 1024,
				WarpSize:                d.WarpSize,
				ClockRateMHz:            d.ClockMHz,
			},
			UnsupportedKernels: d.UnsupportedKernels,
			FailingKernels:     d.FailingKernels,
		})
	}
	return out
}

func knownSuite(name string) bool {
	for _, s := range Suites {
		if s == name {
			return true
		}
	}
	return false
}
