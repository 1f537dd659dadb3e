package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scale multiplies every element of buffer 0 by Floats[0].
var scale = Kernel{
	Name: "scale",
	Body: func(g *Group, p Params) {
		buf := p.Buffers[0]
		g.Threads(func(t Thread) {
			if i := t.Global.X; i < len(buf) {
				buf[i] *= p.Floats[0]
			}
		})
	},
}

func TestCPUBackend_Enumerate(t *testing.T) {
	backend := NewCPUBackend(zap.NewNop(), 2)
	assert.Equal(t, CPUBackendName, backend.Name())

	handles, err := backend.Enumerate()
	require.NoError(t, err)
	require.Len(t, handles, 1)

	info := handles[0].Info
	assert.Equal(t, ClassCPU, info.Class)
	assert.NotEmpty(t, info.Name)
	assert.Greater(t, info.TotalMemory, int64(0))
	assert.Greater(t, info.ComputeUnits, 0)
	assert.Equal(t, cpuMaxThreadsPerGroup, info.MaxThreadsPerGroup)
}

func TestCPUBackend_Create(t *testing.T) {
	backend := NewCPUBackend(zap.NewNop(), 0)
	handles, err := backend.Enumerate()
	require.NoError(t, err)

	t.Run("foreign handle", func(t *testing.T) {
		_, err := backend.Create(DeviceHandle{Backend: SimulatedBackendName})
		assert.Error(t, err)
	})

	t.Run("launch and read back", func(t *testing.T) {
		acc, err := backend.Create(handles[0])
		require.NoError(t, err)
		defer acc.Dispose()

		inv, err := acc.Compile(scale)
		require.NoError(t, err)

		buf, err := acc.Allocate(1000)
		require.NoError(t, err)
		host := make([]float32, 1000)
		for i := range host {
			host[i] = float32(i)
		}
		require.NoError(t, buf.CopyFrom(host))

		require.NoError(t, inv.Launch(Linear(1000, 64), Args{Buffers: []Buffer{buf}, Floats: []float32{2}}))
		require.NoError(t, acc.Synchronize())

		out, err := buf.ToHost()
		require.NoError(t, err)
		for i, v := range out {
			if !assert.Equal(t, float32(2*i), v, "element %d", i) {
				break
			}
		}
	})
}
