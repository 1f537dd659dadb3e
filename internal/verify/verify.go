// Package verify checks that devices agree on benchmark outputs.
//
// The first device to produce an output for a (test, size) key becomes the
// reference. Later outputs are compared against it at a sampling stride within
// an absolute tolerance. Sampling is best effort: differences from
// floating-point reassociation across backends are absorbed by the tolerance,
// and unsampled elements are never inspected.
package verify

import (
	"math"

	"github.com/fxnlabs/accelbench/internal/results"
)

const (
	// DefaultTolerance is the absolute tolerance for single precision outputs.
	DefaultTolerance = 1e-2
	// SmallOutput is the largest output compared element by element.
	SmallOutput = 1024
	// LargeStride is the sampling stride for outputs above SmallOutput.
	LargeStride = 1000
)

// Key identifies a test kind at one size.
type Key struct {
	Test string
	Size int64
}

// Outcome is the result of one Check.
type Outcome struct {
	Status results.Status
	// Reference names the device whose output is the baseline.
	Reference string
	// Index, Want and Got describe the first sampled mismatch when Status is failed.
	Index int
	Want  float32
	Got   float32
}

type reference struct {
	device string
	output []float32
}

// Verifier owns the reference outputs of one run. It is append-only and not
// safe for concurrent use.
type Verifier struct {
	Tolerance float64
	// Stride overrides the sampling policy when positive.
	Stride int

	refs map[Key]reference
}

// New returns a verifier. tolerance <= 0 uses DefaultTolerance; stride <= 0
// uses StrideFor.
func New(tolerance float64, stride int) *Verifier {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Verifier{
		Tolerance: tolerance,
		Stride:    stride,
		refs:      make(map[Key]reference),
	}
}

// Check records output as the reference for key when none exists yet,
// otherwise compares it with the reference. Callers pass only successful
// outputs, in device enumeration order.
func (v *Verifier) Check(key Key, device string, output []float32) Outcome {
	ref, ok := v.refs[key]
	if !ok {
		// The caller may reuse its slice; the reference keeps its own copy.
		v.refs[key] = reference{device: device, output: append([]float32(nil), output...)}
		return Outcome{Status: results.StatusReference, Reference: device, Index: -1}
	}

	out := Outcome{Status: results.StatusPassed, Reference: ref.device, Index: -1}
	if len(output) != len(ref.output) {
		out.Status = results.StatusFailed
		return out
	}
	stride := v.Stride
	if stride <= 0 {
		stride = StrideFor(len(output))
	}
	if i := FirstMismatch(ref.output, output, stride, v.Tolerance); i >= 0 {
		out.Status = results.StatusFailed
		out.Index = i
		out.Want = ref.output[i]
		out.Got = output[i]
	}
	return out
}

// HasReference reports whether key already has a reference output.
func (v *Verifier) HasReference(key Key) bool {
	_, ok := v.refs[key]
	return ok
}

// StrideFor is the default sampling stride for an output of n elements.
func StrideFor(n int) int {
	if n <= SmallOutput {
		return 1
	}
	return LargeStride
}

// FirstMismatch returns the first index sampled every stride elements where
// want and got differ by more than tolerance, or -1. NaN never matches.
func FirstMismatch(want, got []float32, stride int, tolerance float64) int {
	if stride < 1 {
		stride = 1
	}
	for i := 0; i < len(want) && i < len(got); i += stride {
		diff := math.Abs(float64(want[i]) - float64(got[i]))
		if !(diff <= tolerance) {
			return i
		}
	}
	return -1
}
