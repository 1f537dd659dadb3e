package kernels

import "math/rand/v2"

// DefaultSeed seeds workload inputs so every device multiplies the same matrices.
const DefaultSeed = 42

// Fill returns n pseudo-random values in [-1, 1) drawn from a PCG stream.
// The same (seed, stream, n) always yields the same values.
func Fill(seed, stream uint64, n int) []float32 {
	r := rand.New(rand.NewPCG(seed, stream))
	out := make([]float32, n)
	for i := range out {
		out[i] = r.Float32()*2 - 1
	}
	return out
}
