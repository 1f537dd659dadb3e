package results

import (
	"errors"
	"testing"

	"github.com/fxnlabs/accelbench/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	s := NewStore()
	tuple := Tuple{Suite: "compute", Benchmark: "matmul-tiled", Device: "#0 sim", Size: 512, Label: "512x512"}

	ok := s.Append(Measured(tuple, "GFLOPS", stats.Summary{Best: 3, Average: 2, Worst: 1, StdDev: 1}))
	bad := s.Append(Failed(tuple, "GFLOPS", errors.New("launch failed")))
	assert.Equal(t, 0, ok)
	assert.Equal(t, 1, bad)
	assert.Equal(t, 2, s.Len())

	t.Run("back-patch verification", func(t *testing.T) {
		require.NoError(t, s.SetVerification(ok, StatusReference))
		assert.Equal(t, StatusReference, s.Results()[ok].Verification)
	})

	t.Run("error placeholders are never verified", func(t *testing.T) {
		assert.Error(t, s.SetVerification(bad, StatusPassed))
		assert.Equal(t, StatusNotApplicable, s.Results()[bad].Verification)
	})

	t.Run("out of range", func(t *testing.T) {
		assert.Error(t, s.SetVerification(5, StatusPassed))
	})

	t.Run("results are copies", func(t *testing.T) {
		rs := s.Results()
		rs[0].Best = 99
		assert.Equal(t, 3.0, s.Results()[0].Best)
	})

	t.Run("since", func(t *testing.T) {
		assert.Len(t, s.Since(1), 1)
		assert.Nil(t, s.Since(2))
	})
}

func TestFailedHasNoMeasurement(t *testing.T) {
	r := Failed(Tuple{Benchmark: "copy"}, "GB/s", errors.New("insufficient device memory"))
	assert.False(t, r.OK())
	assert.Zero(t, r.Best)
	assert.Zero(t, r.Average)
	assert.Zero(t, r.Worst)
	assert.Zero(t, r.StdDev)
	assert.Equal(t, "insufficient device memory", r.Error)
	assert.Contains(t, r.String(), "error")
}
