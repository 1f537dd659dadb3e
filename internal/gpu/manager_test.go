package gpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingBackend struct{}

func (failingBackend) Name() string                             { return "broken" }
func (failingBackend) Enumerate() ([]DeviceHandle, error)       { return nil, errors.New("driver missing") }
func (failingBackend) Create(DeviceHandle) (Accelerator, error) { return nil, errors.New("unreachable") }

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	a := testDevice("Sim Alpha", 1<<20)
	b := testDevice("Sim Beta", 1<<20)
	b.Info.Class = ClassGPUB
	m, err := NewManager(zap.NewNop(),
		NewCPUBackend(zap.NewNop(), 1),
		NewSimulatedBackend(zap.NewNop(), []SimDevice{a, b}, SimOptions{}))
	require.NoError(t, err)
	return m
}

func TestNewManager(t *testing.T) {
	_, err := NewManager(zap.NewNop())
	assert.Error(t, err)

	cpu := NewCPUBackend(zap.NewNop(), 1)
	_, err = NewManager(zap.NewNop(), cpu, cpu)
	assert.ErrorContains(t, err, "registered twice")
}

func TestManager_Devices(t *testing.T) {
	m := newTestManager(t)

	tests := []struct {
		name   string
		filter []string
		want   []int
	}{
		{name: "no filter", filter: nil, want: []int{0, 1, 2}},
		{name: "by index", filter: []string{"2"}, want: []int{2}},
		{name: "by class", filter: []string{"gpu-a"}, want: []int{1}},
		{name: "by backend", filter: []string{"simulated"}, want: []int{1, 2}},
		{name: "by name substring", filter: []string{"beta"}, want: []int{2}},
		{name: "union", filter: []string{"cpu", "alpha"}, want: []int{0, 1}},
		{name: "no match", filter: []string{"tpu"}, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			devices, err := m.Devices(tt.filter)
			require.NoError(t, err)
			var got []int
			for _, d := range devices {
				got = append(got, d.Profile.Index)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestManager_Open(t *testing.T) {
	m := newTestManager(t)
	devices, err := m.Devices([]string{"simulated"})
	require.NoError(t, err)
	require.NotEmpty(t, devices)

	acc, err := m.Open(devices[0].Handle)
	require.NoError(t, err)
	assert.Equal(t, "Sim Alpha", acc.Handle().Info.Name)
	require.NoError(t, acc.Dispose())

	_, err = m.Open(DeviceHandle{Backend: "missing"})
	assert.ErrorContains(t, err, "unknown backend")
}

func TestManager_EnumerationError(t *testing.T) {
	m, err := NewManager(zap.NewNop(), failingBackend{})
	require.NoError(t, err)
	_, err = m.Devices(nil)
	assert.ErrorContains(t, err, "driver missing")
}

func TestProfile(t *testing.T) {
	h := DeviceHandle{Backend: SimulatedBackendName, Info: testDevice("Sim", 1<<30).Info}
	p := NewProfile(h, 3)
	assert.Equal(t, "#3 Sim", p.Label())
	assert.False(t, p.IsCPU())
	assert.Equal(t, int64(1<<30), p.TotalMemory)
	assert.Equal(t, 256, p.MaxThreadsPerGroup)
}
