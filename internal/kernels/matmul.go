// Package kernels holds the device kernels driven by the benchmark suites.
package kernels

import (
	"fmt"
	"time"

	"github.com/fxnlabs/accelbench/internal/gpu"
)

// TileSize is the edge of the square tiles staged into shared memory.
const TileSize = 16

// NaiveMatMul computes C = A·B for square row-major matrices with one thread
// per output element.
//
// Launch arguments: Buffers {A, B, C}, Ints {N}.
var NaiveMatMul = gpu.Kernel{
	Name: "matmul-naive",
	Body: naiveMatMul,
}

// TiledMatMul computes C = A·B staging TileSize×TileSize tiles of A and B into
// shared memory. It must be launched with MatMulLaunch geometry.
//
// Launch arguments: Buffers {A, B, C}, Ints {N}.
var TiledMatMul = gpu.Kernel{
	Name:         "matmul-tiled",
	SharedMemory: 2 * TileSize * TileSize,
	Body:         tiledMatMul,
}

// MatMulLaunch returns the launch geometry for an N×N product: groups of
// TileSize×TileSize threads over a ⌈N/TileSize⌉² grid.
func MatMulLaunch(n int) gpu.LaunchConfig {
	groups := gpu.CeilDiv(n, TileSize)
	return gpu.LaunchConfig{
		Grid:  gpu.Dim2{X: groups, Y: groups},
		Group: gpu.Dim2{X: TileSize, Y: TileSize},
	}
}

// MatMulFLOPs is the operation count of an N×N product, one multiply and one
// add per inner step.
func MatMulFLOPs(n int) float64 {
	fn := float64(n)
	return 2 * fn * fn * fn
}

// GFLOPS converts a wall time for an N×N product into GFLOP/s.
func GFLOPS(n int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return MatMulFLOPs(n) / d.Seconds() / 1e9
}

func naiveMatMul(g *gpu.Group, p gpu.Params) {
	a, b, c := p.Buffers[0], p.Buffers[1], p.Buffers[2]
	n := p.Ints[0]

	g.Threads(func(t gpu.Thread) {
		row, col := t.Global.Y, t.Global.X
		if row >= n || col >= n {
			return
		}
		var sum float32
		for k := 0; k < n; k++ {
			sum += a[row*n+k] * b[k*n+col]
		}
		c[row*n+col] = sum
	})
}

func tiledMatMul(g *gpu.Group, p gpu.Params) {
	if g.Dim.X != TileSize || g.Dim.Y != TileSize {
		g.Abort(fmt.Errorf("%w: tiled matmul needs %dx%d groups, got %dx%d",
			gpu.ErrLaunchFailed, TileSize, TileSize, g.Dim.X, g.Dim.Y))
		return
	}
	a, b, c := p.Buffers[0], p.Buffers[1], p.Buffers[2]
	n := p.Ints[0]

	tileA := g.Shared(TileSize * TileSize)
	tileB := g.Shared(TileSize * TileSize)
	acc := g.Private(1)

	tiles := gpu.CeilDiv(n, TileSize)
	for tile := 0; tile < tiles; tile++ {
		// Out-of-range elements are staged as zero so the accumulation below
		// runs a fixed TileSize steps without bounds checks.
		g.Threads(func(t gpu.Thread) {
			row, col := t.Global.Y, t.Global.X
			ty, tx := t.Local.Y, t.Local.X
			aCol := tile*TileSize + tx
			bRow := tile*TileSize + ty

			if row < n && aCol < n {
				tileA[ty*TileSize+tx] = a[row*n+aCol]
			} else {
				tileA[ty*TileSize+tx] = 0
			}
			if bRow < n && col < n {
				tileB[ty*TileSize+tx] = b[bRow*n+col]
			} else {
				tileB[ty*TileSize+tx] = 0
			}
		})
		g.Barrier()

		g.Threads(func(t gpu.Thread) {
			ty, tx := t.Local.Y, t.Local.X
			sum := acc[t.Lane]
			for k := 0; k < TileSize; k++ {
				sum += tileA[ty*TileSize+k] * tileB[k*TileSize+tx]
			}
			acc[t.Lane] = sum
		})
		// The next staging pass overwrites the tiles still being read above.
		g.Barrier()
	}

	g.Threads(func(t gpu.Thread) {
		row, col := t.Global.Y, t.Global.X
		if row < n && col < n {
			c[row*n+col] = acc[t.Lane]
		}
	})
}
