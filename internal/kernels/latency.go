package kernels

import "github.com/fxnlabs/accelbench/internal/gpu"

// Empty does nothing. Launching it over a single thread measures the
// launch-to-completion round trip of a device.
var Empty = gpu.Kernel{
	Name: "empty",
	Body: func(g *gpu.Group, _ gpu.Params) {
		g.Threads(func(gpu.Thread) {})
	},
}

// SingleThread is the launch geometry of one group of one thread.
var SingleThread = gpu.LaunchConfig{
	Grid:  gpu.Dim2{X: 1, Y: 1},
	Group: gpu.Dim2{X: 1, Y: 1},
}
