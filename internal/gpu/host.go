package gpu

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const float32Bytes = 4

// hostOptions tunes a host-executed accelerator. The CPU backend uses the
// zero value plus a worker count; simulated devices add limits and hooks.
type hostOptions struct {
	workers     int
	memoryLimit int64
	unsupported map[string]bool
	failLaunch  map[string]bool
	timing      func(kernel string, cfg LaunchConfig) time.Duration
	clock       *SimClock
}

// hostAccelerator executes kernels on the host while honouring the
// asynchronous launch / synchronize contract.
type hostAccelerator struct {
	handle DeviceHandle
	opts   hostOptions
	log    *zap.Logger
	queue  stream

	mu        sync.Mutex
	allocated int64
	buffers   map[*hostBuffer]struct{}
	disposed  bool
}

func newHostAccelerator(h DeviceHandle, opts hostOptions, log *zap.Logger) *hostAccelerator {
	if opts.workers < 1 {
		opts.workers = 1
	}
	return &hostAccelerator{
		handle:  h,
		opts:    opts,
		log:     log.With(zap.String("device", h.Info.Name)),
		buffers: make(map[*hostBuffer]struct{}),
	}
}

func (a *hostAccelerator) Handle() DeviceHandle {
	return a.handle
}

func (a *hostAccelerator) Compile(k Kernel) (Invocable, error) {
	if a.isDisposed() {
		return nil, ErrDisposed
	}
	if k.Body == nil {
		return nil, fmt.Errorf("%w: kernel %q has no body", ErrUnsupportedKernel, k.Name)
	}
	if a.opts.unsupported[k.Name] {
		return nil, fmt.Errorf("%w: %s on %s", ErrUnsupportedKernel, k.Name, a.handle.Info.Name)
	}
	if limit := a.handle.Info.MaxSharedMemoryPerGroup; limit > 0 && int64(k.SharedMemory)*float32Bytes > limit {
		return nil, fmt.Errorf("%w: kernel %s needs %d bytes of shared memory, device has %d",
			ErrUnsupportedKernel, k.Name, k.SharedMemory*float32Bytes, limit)
	}
	a.log.Debug("Compiled kernel", zap.String("kernel", k.Name))
	return &hostKernel{acc: a, kernel: k}, nil
}

func (a *hostAccelerator) Allocate(count int) (Buffer, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid buffer length %d", count)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.disposed {
		return nil, ErrDisposed
	}
	size := int64(count) * float32Bytes
	if a.opts.memoryLimit > 0 && a.allocated+size > a.opts.memoryLimit {
		return nil, fmt.Errorf("%w: requested %d bytes with %d of %d in use",
			ErrOutOfMemory, size, a.allocated, a.opts.memoryLimit)
	}
	b := &hostBuffer{acc: a, data: make([]float32, count)}
	a.allocated += size
	a.buffers[b] = struct{}{}
	return b, nil
}

func (a *hostAccelerator) Synchronize() error {
	if a.isDisposed() {
		return ErrDisposed
	}
	return a.queue.wait()
}

func (a *hostAccelerator) Dispose() error {
	a.mu.Lock()
	if a.disposed {
		a.mu.Unlock()
		return nil
	}
	a.disposed = true
	a.mu.Unlock()

	// Pending work is drained so no goroutine keeps touching released memory.
	err := a.queue.wait()

	a.mu.Lock()
	for b := range a.buffers {
		b.data = nil
		b.disposed = true
	}
	a.buffers = nil
	a.allocated = 0
	a.mu.Unlock()

	a.log.Debug("Accelerator disposed")
	return err
}

func (a *hostAccelerator) isDisposed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.disposed
}

func (a *hostAccelerator) release(b *hostBuffer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.buffers[b]; !ok {
		return
	}
	delete(a.buffers, b)
	a.allocated -= int64(len(b.data)) * float32Bytes
}

// bind resolves launch arguments into the memory a kernel body reads.
func (a *hostAccelerator) bind(args Args) (Params, error) {
	p := Params{
		Buffers: make([][]float32, len(args.Buffers)),
		Ints:    args.Ints,
		Floats:  args.Floats,
	}
	for i, buf := range args.Buffers {
		hb, ok := buf.(*hostBuffer)
		if !ok || hb.acc != a {
			return Params{}, fmt.Errorf("%w: buffer %d does not belong to %s", ErrLaunchFailed, i, a.handle.Info.Name)
		}
		if hb.disposed {
			return Params{}, fmt.Errorf("buffer %d: %w", i, ErrDisposed)
		}
		p.Buffers[i] = hb.data
	}
	return p, nil
}

type hostKernel struct {
	acc    *hostAccelerator
	kernel Kernel
}

func (k *hostKernel) Launch(cfg LaunchConfig, args Args) error {
	a := k.acc
	if a.isDisposed() {
		return ErrDisposed
	}
	if a.opts.failLaunch[k.kernel.Name] {
		return fmt.Errorf("%w: %s rejected by %s", ErrLaunchFailed, k.kernel.Name, a.handle.Info.Name)
	}
	threads := cfg.Group.Size()
	if threads <= 0 || cfg.Grid.X < 0 || cfg.Grid.Y < 0 {
		return fmt.Errorf("%w: invalid geometry grid=%v group=%v", ErrLaunchFailed, cfg.Grid, cfg.Group)
	}
	if limit := a.handle.Info.MaxThreadsPerGroup; limit > 0 && threads > limit {
		return fmt.Errorf("%w: group of %d threads exceeds device limit %d", ErrLaunchFailed, threads, limit)
	}
	p, err := a.bind(args)
	if err != nil {
		return err
	}

	a.queue.submit(func() error {
		if err := runGrid(context.Background(), k.kernel, cfg, p, a.opts.workers); err != nil {
			return err
		}
		if a.opts.clock != nil && a.opts.timing != nil {
			a.opts.clock.Advance(a.opts.timing(k.kernel.Name, cfg))
		}
		return nil
	})
	return nil
}

type hostBuffer struct {
	acc      *hostAccelerator
	data     []float32
	disposed bool
}

func (b *hostBuffer) Len() int {
	return len(b.data)
}

func (b *hostBuffer) CopyFrom(src []float32) error {
	if err := b.ready(); err != nil {
		return err
	}
	if len(src) > len(b.data) {
		return fmt.Errorf("copy of %d elements into buffer of %d", len(src), len(b.data))
	}
	copy(b.data, src)
	b.acc.advanceTransfer("copy-in", len(src))
	return nil
}

func (b *hostBuffer) ToHost() ([]float32, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	out := make([]float32, len(b.data))
	copy(out, b.data)
	b.acc.advanceTransfer("copy-out", len(out))
	return out, nil
}

func (b *hostBuffer) CopyTo(dst Buffer) error {
	if err := b.ready(); err != nil {
		return err
	}
	hd, ok := dst.(*hostBuffer)
	if !ok || hd.acc != b.acc {
		return fmt.Errorf("copy target belongs to another accelerator")
	}
	if hd.disposed {
		return ErrDisposed
	}
	if len(hd.data) < len(b.data) {
		return fmt.Errorf("copy of %d elements into buffer of %d", len(b.data), len(hd.data))
	}
	copy(hd.data, b.data)
	b.acc.advanceTransfer("copy", len(b.data))
	return nil
}

func (b *hostBuffer) Dispose() error {
	if b.disposed {
		return nil
	}
	b.acc.release(b)
	b.disposed = true
	b.data = nil
	return nil
}

// ready waits for queued launches so transfers observe their results.
func (b *hostBuffer) ready() error {
	if b.disposed {
		return ErrDisposed
	}
	b.acc.queue.idle()
	return nil
}

// advanceTransfer charges a transfer to the synthetic clock, when one is attached.
func (a *hostAccelerator) advanceTransfer(kind string, elements int) {
	if a.opts.clock == nil || a.opts.timing == nil {
		return
	}
	a.opts.clock.Advance(a.opts.timing(kind, Linear(elements, 1)))
}
