package gpu

import "errors"

var (
	// ErrDisposed is returned when an accelerator or buffer is used after Dispose.
	ErrDisposed = errors.New("resource disposed")
	// ErrLaunchFailed is returned when a launch is rejected by the device.
	ErrLaunchFailed = errors.New("kernel launch failed")
	// ErrOutOfMemory is returned when an allocation exceeds the device's memory.
	ErrOutOfMemory = errors.New("device out of memory")
	// ErrUnsupportedKernel is returned by Compile when a kernel cannot be lowered.
	ErrUnsupportedKernel = errors.New("kernel not supported by device")
	// ErrMissingBarrier is returned when a kernel touches shared memory in two
	// consecutive thread phases without a Barrier between them.
	ErrMissingBarrier = errors.New("shared memory phase without barrier")
)

// DeviceClass is the closed set of accelerator classes.
type DeviceClass string

const (
	ClassCPU  DeviceClass = "cpu"
	ClassGPUA DeviceClass = "gpu-a"
	ClassGPUB DeviceClass = "gpu-b"
)

// Valid reports whether c is one of the known classes.
func (c DeviceClass) Valid() bool {
	switch c {
	case ClassCPU, ClassGPUA, ClassGPUB:
		return true
	}
	return false
}

// DeviceInfo contains the capacity metadata a backend reports for one device.
type DeviceInfo struct {
	Name                    string      `json:"name"`
	Class                   DeviceClass `json:"class"`
	ComputeUnits            int         `json:"computeUnits"`
	MaxThreadsPerGroup      int         `json:"maxThreadsPerGroup"`
	MaxSharedMemoryPerGroup int64       `json:"maxSharedMemoryPerGroup"` // in bytes
	TotalMemory             int64       `json:"totalMemory"`             // in bytes
	WarpSize                int         `json:"warpSize"`
	ClockRateMHz            int         `json:"clockRateMHz"`
}

// DeviceHandle identifies an enumerated device before an accelerator is created for it.
type DeviceHandle struct {
	Backend string
	ID      int
	Info    DeviceInfo
}

// Backend defines the interface for compute backends.
// A backend enumerates the devices it can drive and creates accelerators for them.
//
// Implementation notes:
// - Enumerate must return devices in a stable order; verification depends on it
// - Create may be called more than once per handle, each accelerator owns its resources
type Backend interface {
	// Name is the identifier stored in DeviceHandle.Backend.
	Name() string

	// Enumerate lists the devices this backend exposes.
	Enumerate() ([]DeviceHandle, error)

	// Create returns an accelerator for a handle previously returned by Enumerate.
	Create(h DeviceHandle) (Accelerator, error)
}

// Accelerator is a handle to one compute device able to execute kernels.
//
// Work submitted through Invocable.Launch is asynchronous. Synchronize blocks
// until everything submitted so far has completed and reports the first error
// raised by that work. Buffer transfers are synchronous and wait for pending
// launches before touching memory.
type Accelerator interface {
	// Handle returns the handle this accelerator was created from.
	Handle() DeviceHandle

	// Compile lowers a kernel for this device. Compile once per kernel and
	// reuse the Invocable across launches.
	Compile(k Kernel) (Invocable, error)

	// Allocate reserves a device buffer of count float32 elements.
	Allocate(count int) (Buffer, error)

	// Synchronize blocks until all submitted work on this accelerator completes.
	Synchronize() error

	// Dispose releases the accelerator. Buffers still allocated are released too.
	Dispose() error
}

// Invocable is a compiled kernel bound to one accelerator.
type Invocable interface {
	// Launch submits the kernel over the given domain. It returns once the
	// work is queued, not when it finishes.
	Launch(cfg LaunchConfig, args Args) error
}

// Buffer is a device allocation of float32 elements.
type Buffer interface {
	Len() int
	// CopyFrom uploads host data into the buffer. len(src) must not exceed Len.
	CopyFrom(src []float32) error
	// ToHost downloads the buffer into a new host slice.
	ToHost() ([]float32, error)
	// CopyTo copies this buffer into dst on the same accelerator.
	CopyTo(dst Buffer) error
	Dispose() error
}

// Dim2 is a two dimensional extent or index.
type Dim2 struct {
	X, Y int
}

// Size returns X*Y.
func (d Dim2) Size() int {
	return d.X * d.Y
}

// LaunchConfig is the launch geometry: Grid groups of Group threads each.
type LaunchConfig struct {
	Grid  Dim2
	Group Dim2
}

// Linear returns a one dimensional launch covering n threads with groups of size groupSize.
func Linear(n, groupSize int) LaunchConfig {
	return LaunchConfig{
		Grid:  Dim2{X: CeilDiv(n, groupSize), Y: 1},
		Group: Dim2{X: groupSize, Y: 1},
	}
}

// Args are the launch arguments: device buffers followed by scalars.
type Args struct {
	Buffers []Buffer
	Ints    []int
	Floats  []float32
}

// Params is the argument view a kernel body receives once buffers are bound to memory.
type Params struct {
	Buffers [][]float32
	Ints    []int
	Floats  []float32
}

// Kernel is a function executed once per logical thread, expressed per thread group.
// SharedMemory is the number of float32 slots of group shared storage the body
// carves with Group.Shared.
type Kernel struct {
	Name         string
	SharedMemory int
	Body         func(g *Group, p Params)
}
