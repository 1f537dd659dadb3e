package gpu

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"
)

const (
	// CPUBackendName is the backend identifier of the host processor.
	CPUBackendName = "cpu"

	cpuMaxThreadsPerGroup = 1024
	cpuSharedMemory       = 64 * 1024
	defaultSystemMemory   = 8 * 1024 * 1024 * 1024
)

// CPUBackend exposes the host processor as a single accelerator.
// Thread groups of one launch are spread over Workers goroutines.
type CPUBackend struct {
	logger  *zap.Logger
	workers int
}

// NewCPUBackend creates a new CPU backend instance. workers <= 0 uses GOMAXPROCS.
func NewCPUBackend(logger *zap.Logger, workers int) *CPUBackend {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &CPUBackend{
		logger:  logger.Named("cpu"),
		workers: workers,
	}
}

func (c *CPUBackend) Name() string {
	return CPUBackendName
}

// Enumerate returns the host processor.
func (c *CPUBackend) Enumerate() ([]DeviceHandle, error) {
	return []DeviceHandle{{
		Backend: CPUBackendName,
		ID:      0,
		Info:    c.deviceInfo(),
	}}, nil
}

func (c *CPUBackend) Create(h DeviceHandle) (Accelerator, error) {
	if h.Backend != CPUBackendName || h.ID != 0 {
		return nil, fmt.Errorf("cpu backend cannot open device %s/%d", h.Backend, h.ID)
	}
	c.logger.Debug("CPU accelerator created", zap.Int("workers", c.workers))
	return newHostAccelerator(h, hostOptions{workers: c.workers}, c.logger), nil
}

// deviceInfo returns device information for the host CPU.
func (c *CPUBackend) deviceInfo() DeviceInfo {
	info := DeviceInfo{
		Name:                    fmt.Sprintf("CPU (%s)", runtime.GOARCH),
		Class:                   ClassCPU,
		ComputeUnits:            runtime.NumCPU(),
		MaxThreadsPerGroup:      cpuMaxThreadsPerGroup,
		MaxSharedMemoryPerGroup: cpuSharedMemory,
		TotalMemory:             getTotalSystemMemory(c.logger),
		WarpSize:                1,
	}
	if stats, err := cpu.Info(); err == nil && len(stats) > 0 {
		if model := strings.TrimSpace(stats[0].ModelName); model != "" {
			info.Name = model
		}
		info.ClockRateMHz = int(stats[0].Mhz)
	} else if err != nil {
		c.logger.Debug("CPU model unavailable", zap.Error(err))
	}
	return info
}

// getTotalSystemMemory returns total system memory in bytes
func getTotalSystemMemory(logger *zap.Logger) int64 {
	vm, err := mem.VirtualMemory()
	if err != nil || vm.Total == 0 {
		logger.Debug("System memory unavailable, assuming default", zap.Error(err))
		return defaultSystemMemory
	}
	return int64(vm.Total)
}
