package gpu

// CeilDiv returns ⌈a/b⌉ for positive b.
func CeilDiv(a, b int) int {
	return (a + b - 1) / b
}

// Float32ToFloat64 converts a slice of float32 to float64
func Float32ToFloat64(input []float32) []float64 {
	output := make([]float64, len(input))
	for i, v := range input {
		output[i] = float64(v)
	}
	return output
}
