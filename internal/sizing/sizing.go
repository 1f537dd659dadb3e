// Package sizing picks workload sizes per run mode and shrinks them to fit a device.
package sizing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fxnlabs/accelbench/internal/gpu"
)

// MemoryMargin is the fraction of reported device memory a workload may use.
// The remainder is left to allocator and driver overhead.
const MemoryMargin = 0.8

// ErrInsufficientMemory is returned by Fit when no size at or above the floor fits.
var ErrInsufficientMemory = errors.New("insufficient device memory")

// Mode selects how large a sweep a run performs.
type Mode string

const (
	ModeQuick    Mode = "quick"
	ModeStandard Mode = "standard"
	ModeFull     Mode = "full"
)

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeQuick, ModeStandard, ModeFull:
		return m, nil
	case "":
		return ModeStandard, nil
	}
	return "", fmt.Errorf("unknown run mode %q (want quick, standard or full)", s)
}

// Sweep is the ordered size list a suite runs in each mode.
type Sweep struct {
	Quick    []int
	Standard []int
	Full     []int
}

// SizesFor returns the sizes to run. A positive explicit size overrides the sweep.
func SizesFor(mode Mode, explicit int, sweep Sweep) []int {
	if explicit > 0 {
		return []int{explicit}
	}
	var sizes []int
	switch mode {
	case ModeQuick:
		sizes = sweep.Quick
	case ModeFull:
		sizes = sweep.Full
	default:
		sizes = sweep.Standard
	}
	return append([]int(nil), sizes...)
}

// Footprint is the number of bytes a workload of size elements per buffer occupies.
func Footprint(size int64, elementBytes, buffers int) int64 {
	return size * int64(elementBytes) * int64(buffers)
}

// Budget is the number of bytes workloads may occupy on a device.
func Budget(p gpu.Profile) int64 {
	return int64(float64(p.TotalMemory) * MemoryMargin)
}

// Fit halves requested until its footprint fits the device budget. Sizes are
// element counts per buffer. Shrinking below floor fails with
// ErrInsufficientMemory; pass floor = requested for workloads that cannot be
// reduced. CPU profiles are treated as unbounded host memory.
func Fit(requested, floor int64, elementBytes, buffers int, p gpu.Profile) (int64, error) {
	if requested <= 0 {
		return 0, fmt.Errorf("invalid workload size %d", requested)
	}
	if p.IsCPU() {
		return requested, nil
	}
	if floor > requested {
		floor = requested
	}
	budget := Budget(p)
	size := requested
	for Footprint(size, elementBytes, buffers) > budget {
		size /= 2
		if size < floor || size == 0 {
			return 0, fmt.Errorf("%w: %d elements x %d bytes x %d buffers exceeds %d of %d bytes on %s",
				ErrInsufficientMemory, requested, elementBytes, buffers, budget, p.TotalMemory, p.Name)
		}
	}
	return size, nil
}
