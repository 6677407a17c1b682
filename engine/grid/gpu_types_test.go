package grid

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVertexLayout(t *testing.T) {
	layout := VertexBufferLayout()
	assert.Equal(t, uint64(24), layout.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeVertex, layout.StepMode)
	require.Len(t, layout.Attributes, 2)

	position := layout.Attributes[0]
	assert.Equal(t, wgpu.VertexFormatFloat32x3, position.Format)
	assert.Equal(t, uint64(0), position.Offset)
	assert.Equal(t, uint32(0), position.ShaderLocation)

	color := layout.Attributes[1]
	assert.Equal(t, wgpu.VertexFormatFloat32x3, color.Format)
	assert.Equal(t, uint64(12), color.Offset)
	assert.Equal(t, uint32(1), color.ShaderLocation)
}

func TestVertexMarshal(t *testing.T) {
	v := Vertex{
		Position: [3]float32{1.5, -2.25, 0.5},
		Color:    [3]float32{0.25, 0.5, 1},
	}
	buf := v.Marshal()
	require.Len(t, buf, v.Size())

	want := []float32{1.5, -2.25, 0.5, 0.25, 0.5, 1}
	for i, w := range want {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		assert.Equal(t, w, got, "float %d", i)
	}
}

func TestGridUniformMarshal(t *testing.T) {
	u := GPUGridUniform{
		Resolution: [2]uint32{5, 7},
		XRange:     [2]float32{-1, 1},
		YRange:     [2]float32{-3, 3},
	}
	require.Equal(t, 32, u.Size())

	buf := u.Marshal()
	require.Len(t, buf, 32)

	assert.Equal(t, uint32(5), binary.LittleEndian.Uint32(buf[0:4]))
	assert.Equal(t, uint32(7), binary.LittleEndian.Uint32(buf[4:8]))
	assert.Equal(t, float32(-1), math.Float32frombits(binary.LittleEndian.Uint32(buf[8:12])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[12:16])))
	assert.Equal(t, float32(-3), math.Float32frombits(binary.LittleEndian.Uint32(buf[16:20])))
	assert.Equal(t, float32(3), math.Float32frombits(binary.LittleEndian.Uint32(buf[20:24])))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[24:28]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[28:32]))
}
