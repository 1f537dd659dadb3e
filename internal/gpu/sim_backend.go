package gpu

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SimulatedBackendName is the backend identifier of simulated devices.
const SimulatedBackendName = "simulated"

// SimDevice describes one simulated accelerator. Kernels run on the host while
// the profile, memory limit and failure behaviour follow the description.
type SimDevice struct {
	Info DeviceInfo
	// UnsupportedKernels fail at Compile with ErrUnsupportedKernel.
	UnsupportedKernels []string
	// FailingKernels compile but are rejected at Launch with ErrLaunchFailed.
	FailingKernels []string
}

// SimOptions are shared by every device of a SimulatedBackend.
type SimOptions struct {
	Workers int
	// Clock, when set together with Timing, is advanced by Timing for every
	// completed launch and transfer, giving deterministic measurements.
	Clock  *SimClock
	Timing func(kernel string, cfg LaunchConfig) time.Duration
}

// SimulatedBackend exposes configured devices that execute on the host.
type SimulatedBackend struct {
	logger  *zap.Logger
	devices []SimDevice
	opts    SimOptions
}

// NewSimulatedBackend creates a backend enumerating devices in the given order.
func NewSimulatedBackend(logger *zap.Logger, devices []SimDevice, opts SimOptions) *SimulatedBackend {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &SimulatedBackend{
		logger:  logger.Named("simulated"),
		devices: devices,
		opts:    opts,
	}
}

func (s *SimulatedBackend) Name() string {
	return SimulatedBackendName
}

func (s *SimulatedBackend) Enumerate() ([]DeviceHandle, error) {
	handles := make([]DeviceHandle, 0, len(s.devices))
	for i, d := range s.devices {
		if !d.Info.Class.Valid() {
			return nil, fmt.Errorf("simulated device %q: unknown class %q", d.Info.Name, d.Info.Class)
		}
		handles = append(handles, DeviceHandle{Backend: SimulatedBackendName, ID: i, Info: d.Info})
	}
	return handles, nil
}

func (s *SimulatedBackend) Create(h DeviceHandle) (Accelerator, error) {
	if h.Backend != SimulatedBackendName || h.ID < 0 || h.ID >= len(s.devices) {
		return nil, fmt.Errorf("simulated backend cannot open device %s/%d", h.Backend, h.ID)
	}
	d := s.devices[h.ID]
	opts := hostOptions{
		workers:     s.opts.Workers,
		memoryLimit: d.Info.TotalMemory,
		unsupported: toSet(d.UnsupportedKernels),
		failLaunch:  toSet(d.FailingKernels),
		timing:      s.opts.Timing,
		clock:       s.opts.Clock,
	}
	s.logger.Debug("Simulated accelerator created",
		zap.String("device", d.Info.Name),
		zap.String("class", string(d.Info.Class)),
		zap.Int64("memory_mb", d.Info.TotalMemory/(1024*1024)))
	return newHostAccelerator(h, opts, s.logger), nil
}

func toSet(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// SimClock is a manually advanced clock.
type SimClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewSimClock(start time.Time) *SimClock {
	return &SimClock{now: start}
}

func (c *SimClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *SimClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
