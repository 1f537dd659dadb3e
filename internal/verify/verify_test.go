package verify

import (
	"math"
	"testing"

	"github.com/fxnlabs/accelbench/internal/results"
	"github.com/stretchr/testify/assert"
)

func series(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(i) * 0.5
	}
	return out
}

func TestVerifierCheck(t *testing.T) {
	key := Key{Test: "matmul-tiled", Size: 512}

	t.Run("first output is the reference", func(t *testing.T) {
		v := New(0, 0)
		out := v.Check(key, "dev0", series(10))
		assert.Equal(t, results.StatusReference, out.Status)
		assert.Equal(t, "dev0", out.Reference)
		assert.True(t, v.HasReference(key))
	})

	t.Run("identical sampled values pass", func(t *testing.T) {
		v := New(0, 0)
		v.Check(key, "dev0", series(5000))
		out := v.Check(key, "dev1", series(5000))
		assert.Equal(t, results.StatusPassed, out.Status)
		assert.Equal(t, "dev0", out.Reference)
	})

	t.Run("perturbing a sampled element fails", func(t *testing.T) {
		v := New(0, 0)
		v.Check(key, "dev0", series(5000))
		cand := series(5000)
		cand[3000] += 0.5
		out := v.Check(key, "dev1", cand)
		assert.Equal(t, results.StatusFailed, out.Status)
		assert.Equal(t, 3000, out.Index)
	})

	t.Run("unsampled elements are not inspected", func(t *testing.T) {
		v := New(0, 0)
		v.Check(key, "dev0", series(5000))
		cand := series(5000)
		cand[3001] += 100
		assert.Equal(t, results.StatusPassed, v.Check(key, "dev1", cand).Status)
	})

	t.Run("small outputs compare every element", func(t *testing.T) {
		v := New(0, 0)
		v.Check(key, "dev0", series(1024))
		cand := series(1024)
		cand[1023] += 0.02
		assert.Equal(t, results.StatusFailed, v.Check(key, "dev1", cand).Status)
	})

	t.Run("within tolerance passes", func(t *testing.T) {
		v := New(0, 0)
		v.Check(key, "dev0", series(16))
		cand := series(16)
		cand[7] += 0.005
		assert.Equal(t, results.StatusPassed, v.Check(key, "dev1", cand).Status)
	})

	t.Run("reference is first writer and never replaced", func(t *testing.T) {
		v := New(0, 0)
		ref := series(8)
		v.Check(key, "dev0", ref)
		ref[0] = 1000 // caller reuses its slice

		bad := series(8)
		bad[0] = 7
		assert.Equal(t, results.StatusFailed, v.Check(key, "dev1", bad).Status)
		assert.Equal(t, results.StatusPassed, v.Check(key, "dev2", series(8)).Status)
	})

	t.Run("keys are independent", func(t *testing.T) {
		v := New(0, 0)
		v.Check(key, "dev0", series(8))
		other := Key{Test: "matmul-tiled", Size: 1024}
		assert.Equal(t, results.StatusReference, v.Check(other, "dev1", series(8)).Status)
	})

	t.Run("length mismatch fails", func(t *testing.T) {
		v := New(0, 0)
		v.Check(key, "dev0", series(8))
		assert.Equal(t, results.StatusFailed, v.Check(key, "dev1", series(9)).Status)
	})

	t.Run("explicit stride", func(t *testing.T) {
		v := New(0, 2)
		v.Check(key, "dev0", series(8))
		cand := series(8)
		cand[3] = 99
		assert.Equal(t, results.StatusPassed, v.Check(key, "dev1", cand).Status)
		cand[4] = 99
		assert.Equal(t, results.StatusFailed, v.Check(key, "dev1", cand).Status)
	})
}

func TestFirstMismatch(t *testing.T) {
	want := []float32{1, 2, 3}
	assert.Equal(t, -1, FirstMismatch(want, []float32{1, 2, 3}, 1, 1e-2))
	assert.Equal(t, 1, FirstMismatch(want, []float32{1, 2.5, 3}, 1, 1e-2))
	assert.Equal(t, 0, FirstMismatch(want, []float32{float32(math.NaN()), 2, 3}, 1, 1e-2))
	assert.Equal(t, 1000, StrideFor(1025))
	assert.Equal(t, 1, StrideFor(1024))
}
