package gpu

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reverse reverses each group-sized block of buffer 0 through shared memory.
func reverse(withBarrier bool) Kernel {
	return Kernel{
		Name:         "reverse",
		SharedMemory: 64,
		Body: func(g *Group, p Params) {
			buf := p.Buffers[0]
			tile := g.Shared(g.Dim.X)
			g.Threads(func(t Thread) {
				tile[t.Local.X] = buf[t.Global.X]
			})
			if withBarrier {
				g.Barrier()
			}
			g.Threads(func(t Thread) {
				buf[t.Global.X] = tile[g.Dim.X-1-t.Local.X]
			})
		},
	}
}

func TestRunGrid(t *testing.T) {
	t.Run("shared memory with barrier", func(t *testing.T) {
		buf := []float32{0, 1, 2, 3, 4, 5, 6, 7}
		err := runGrid(context.Background(), reverse(true), Linear(8, 4), Params{Buffers: [][]float32{buf}}, 2)
		require.NoError(t, err)
		assert.Equal(t, []float32{3, 2, 1, 0, 7, 6, 5, 4}, buf)
	})

	t.Run("missing barrier fails", func(t *testing.T) {
		buf := make([]float32, 8)
		err := runGrid(context.Background(), reverse(false), Linear(8, 4), Params{Buffers: [][]float32{buf}}, 2)
		assert.True(t, errors.Is(err, ErrMissingBarrier))
	})

	t.Run("shared request above kernel declaration", func(t *testing.T) {
		k := reverse(true)
		k.SharedMemory = 2
		err := runGrid(context.Background(), k, Linear(8, 4), Params{Buffers: [][]float32{make([]float32, 8)}}, 1)
		assert.True(t, errors.Is(err, ErrLaunchFailed))
	})

	t.Run("empty grid", func(t *testing.T) {
		err := runGrid(context.Background(), reverse(true), LaunchConfig{Group: Dim2{X: 4, Y: 1}}, Params{}, 4)
		assert.NoError(t, err)
	})

	t.Run("thread indexing", func(t *testing.T) {
		cfg := LaunchConfig{Grid: Dim2{X: 3, Y: 2}, Group: Dim2{X: 2, Y: 2}}
		out := make([]float32, 6*4)
		k := Kernel{Name: "index", Body: func(g *Group, p Params) {
			g.Threads(func(t Thread) {
				width := cfg.Grid.X * cfg.Group.X
				p.Buffers[0][t.Global.Y*width+t.Global.X] = float32(t.Lane)
			})
		}}
		require.NoError(t, runGrid(context.Background(), k, cfg, Params{Buffers: [][]float32{out}}, 3))
		// Lanes are row-major within each 2x2 group.
		assert.Equal(t, []float32{0, 1, 0, 1, 0, 1}, out[:6])
		assert.Equal(t, []float32{2, 3, 2, 3, 2, 3}, out[6:12])
	})
}

func TestGroup_Barriers(t *testing.T) {
	g := newGroup(Dim2{X: 2, Y: 1}, 4)
	g.reset(Dim2{})
	regs := g.Private(3)
	assert.Len(t, regs, 6)

	g.Threads(func(Thread) {})
	g.Barrier()
	g.Barrier()
	assert.Equal(t, 2, g.Barriers())

	g.reset(Dim2{X: 1})
	assert.Zero(t, g.Barriers())
	assert.NoError(t, g.err)
}

func TestCeilDiv(t *testing.T) {
	assert.Equal(t, 0, CeilDiv(0, 16))
	assert.Equal(t, 1, CeilDiv(1, 16))
	assert.Equal(t, 1, CeilDiv(16, 16))
	assert.Equal(t, 2, CeilDiv(17, 16))
}
