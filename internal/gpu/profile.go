package gpu

import "fmt"

// Profile is the immutable capability descriptor of one enumerated device.
type Profile struct {
	Index                   int         `json:"index"`
	Backend                 string      `json:"backend"`
	Name                    string      `json:"name"`
	Class                   DeviceClass `json:"class"`
	ComputeUnits            int         `json:"computeUnits"`
	MaxThreadsPerGroup      int         `json:"maxThreadsPerGroup"`
	MaxSharedMemoryPerGroup int64       `json:"maxSharedMemoryPerGroup"`
	TotalMemory             int64       `json:"totalMemory"`
	WarpSize                int         `json:"warpSize"`
	ClockRateMHz            int         `json:"clockRateMHz"`
}

// NewProfile reads the backend-reported metadata of h. index is the device's
// position in enumeration order.
func NewProfile(h DeviceHandle, index int) Profile {
	return Profile{
		Index:                   index,
		Backend:                 h.Backend,
		Name:                    h.Info.Name,
		Class:                   h.Info.Class,
		ComputeUnits:            h.Info.ComputeUnits,
		MaxThreadsPerGroup:      h.Info.MaxThreadsPerGroup,
		MaxSharedMemoryPerGroup: h.Info.MaxSharedMemoryPerGroup,
		TotalMemory:             h.Info.TotalMemory,
		WarpSize:                h.Info.WarpSize,
		ClockRateMHz:            h.Info.ClockRateMHz,
	}
}

// IsCPU reports whether the device is the host processor class.
func (p Profile) IsCPU() bool {
	return p.Class == ClassCPU
}

// Label is the display name used in results, unique within a run.
func (p Profile) Label() string {
	return fmt.Sprintf("#%d %s", p.Index, p.Name)
}
