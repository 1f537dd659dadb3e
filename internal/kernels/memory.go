package kernels

import "github.com/fxnlabs/accelbench/internal/gpu"

// LinearGroupSize is the group width used by one dimensional kernels.
const LinearGroupSize = 256

// Copy streams src into dst.
//
// Launch arguments: Buffers {dst, src}, Ints {N}.
var Copy = gpu.Kernel{
	Name: "copy",
	Body: func(g *gpu.Group, p gpu.Params) {
		dst, src := p.Buffers[0], p.Buffers[1]
		n := p.Ints[0]
		g.Threads(func(t gpu.Thread) {
			if i := t.Global.X; i < n {
				dst[i] = src[i]
			}
		})
	},
}

// Triad computes a = b + s·c, the STREAM triad.
//
// Launch arguments: Buffers {a, b, c}, Ints {N}, Floats {s}.
var Triad = gpu.Kernel{
	Name: "triad",
	Body: func(g *gpu.Group, p gpu.Params) {
		a, b, c := p.Buffers[0], p.Buffers[1], p.Buffers[2]
		n := p.Ints[0]
		s := p.Floats[0]
		g.Threads(func(t gpu.Thread) {
			if i := t.Global.X; i < n {
				a[i] = b[i] + s*c[i]
			}
		})
	},
}

// LinearLaunch covers n elements with LinearGroupSize-wide groups.
func LinearLaunch(n int) gpu.LaunchConfig {
	return gpu.Linear(n, LinearGroupSize)
}

// Bandwidth converts bytes moved in seconds into GB/s.
func Bandwidth(bytes int64, seconds float64) float64 {
	if seconds <= 0 {
		return 0
	}
	return float64(bytes) / seconds / 1e9
}
