package gpu

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Thread is one logical thread inside a group.
type Thread struct {
	// Local is the thread index within its group.
	Local Dim2
	// Global is the thread index within the whole launch domain.
	Global Dim2
	// Lane is the row-major linear form of Local.
	Lane int
}

// Group executes the threads of one thread group.
//
// Kernels are written as a sequence of thread phases. Each call to Threads runs
// the phase for every thread in the group. Values that must survive between
// phases live in Private registers or Shared storage. Once a kernel has touched
// shared storage, every further phase must be preceded by Barrier.
type Group struct {
	ID  Dim2
	Dim Dim2

	shared     []float32
	sharedUsed int
	usesShared bool
	needsSync  bool
	barriers   int
	err        error
}

func newGroup(dim Dim2, sharedSlots int) *Group {
	return &Group{Dim: dim, shared: make([]float32, sharedSlots)}
}

// reset prepares the group for another group index, reusing its storage.
func (g *Group) reset(id Dim2) {
	g.ID = id
	g.sharedUsed = 0
	g.usesShared = false
	g.needsSync = false
	g.barriers = 0
	g.err = nil
}

// Shared carves n float32 slots of group shared storage.
func (g *Group) Shared(n int) []float32 {
	if g.sharedUsed+n > len(g.shared) {
		g.fail(fmt.Errorf("%w: shared request %d exceeds %d slots", ErrLaunchFailed, g.sharedUsed+n, len(g.shared)))
		return make([]float32, n)
	}
	s := g.shared[g.sharedUsed : g.sharedUsed+n]
	g.sharedUsed += n
	g.usesShared = true
	return s
}

// Private allocates n registers per thread. Thread t owns regs[t.Lane*n : t.Lane*n+n].
func (g *Group) Private(n int) []float32 {
	return make([]float32, n*g.Dim.Size())
}

// Barrier waits until every thread of the group has finished the current phase.
func (g *Group) Barrier() {
	g.barriers++
	g.needsSync = false
}

// Barriers returns the number of barriers executed so far by this group.
func (g *Group) Barriers() int {
	return g.barriers
}

// Threads runs fn for every thread of the group in row-major lane order.
func (g *Group) Threads(fn func(t Thread)) {
	if g.err != nil {
		return
	}
	if g.usesShared && g.needsSync {
		g.fail(ErrMissingBarrier)
		return
	}
	lane := 0
	for y := 0; y < g.Dim.Y; y++ {
		for x := 0; x < g.Dim.X; x++ {
			fn(Thread{
				Local:  Dim2{X: x, Y: y},
				Global: Dim2{X: g.ID.X*g.Dim.X + x, Y: g.ID.Y*g.Dim.Y + y},
				Lane:   lane,
			})
			lane++
		}
	}
	g.needsSync = true
}

// Abort stops the group with err. The launch reports it at the next Synchronize.
func (g *Group) Abort(err error) {
	g.fail(err)
}

func (g *Group) fail(err error) {
	if g.err == nil {
		g.err = err
	}
}

// runGrid executes k over every group of cfg, spreading groups over at most
// workers goroutines. Each worker owns one Group and reuses its shared storage.
func runGrid(ctx context.Context, k Kernel, cfg LaunchConfig, p Params, workers int) error {
	groups := cfg.Grid.Size()
	if groups == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > groups {
		workers = groups
	}

	eg, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		eg.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: kernel %s panicked: %v", ErrLaunchFailed, k.Name, r)
				}
			}()
			g := newGroup(cfg.Group, k.SharedMemory)
			for i := w; i < groups; i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				g.reset(Dim2{X: i % cfg.Grid.X, Y: i / cfg.Grid.X})
				k.Body(g, p)
				if g.err != nil {
					return fmt.Errorf("kernel %s group (%d,%d): %w", k.Name, g.ID.X, g.ID.Y, g.err)
				}
			}
			return nil
		})
	}
	return eg.Wait()
}
