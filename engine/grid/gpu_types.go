package grid

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

// GridVertexSource is the canonical WGSL compute shader that fills a grid's
// vertex buffer. Its GridUniform struct matches GPUGridUniform exactly.
//
//go:embed assets/grid_vertex.wgsl
var GridVertexSource string

// GridIndexSource is the canonical WGSL compute shader that fills a grid's
// index buffer. Its GridUniform struct matches GPUGridUniform exactly.
//
//go:embed assets/grid_index.wgsl
var GridIndexSource string

// Vertex is the GPU-aligned representation of a single grid vertex.
// Matches the flat array<f32> layout the generation and evaluation shaders
// write (6 floats per vertex) and the render pipeline's vertex input.
// Size: 24 bytes (tightly packed, no padding required).
type Vertex struct {
	Position [3]float32 // offset  0: world-space position (12 bytes)
	Color    [3]float32 // offset 12: per-vertex RGB color (12 bytes)
}

// Size returns the size of the Vertex struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (24)
func (v *Vertex) Size() int {
	return int(unsafe.Sizeof(*v))
}

// Marshal serializes the Vertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 24-byte buffer ready for GPU upload
func (v *Vertex) Marshal() []byte {
	buf := make([]byte, 24)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(v.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(v.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(v.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(v.Color[0]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(v.Color[1]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(v.Color[2]))
	return buf
}

// VertexBufferLayout returns the wgpu vertex buffer layout for Vertex, used
// when building the render pipeline that draws generated grids.
//
// Returns:
//   - wgpu.VertexBufferLayout: stride 24, position at location 0, color at location 1
func VertexBufferLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(unsafe.Sizeof(Vertex{})),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{
				Format:         wgpu.VertexFormatFloat32x3,
				Offset:         0,
				ShaderLocation: 0,
			},
			{
				Format:         wgpu.VertexFormatFloat32x3,
				Offset:         12,
				ShaderLocation: 1,
			},
		},
	}
}

// GPUGridUniform is the GPU-aligned representation of the grid generation
// uniform buffer. Matches the WGSL GridUniform struct layout exactly (see
// GridVertexSource / GridIndexSource).
// Size: 32 bytes (std140 aligned: vec2<u32> + 2x vec2<f32> + trailing pad).
type GPUGridUniform struct {
	Resolution [2]uint32  // offset  0: vertex grid dimensions (width, height)
	XRange     [2]float32 // offset  8: world-space x extent (min, max)
	YRange     [2]float32 // offset 16: world-space y extent (min, max)
	_pad       [2]float32 // offset 24: padding to 32 bytes
}

// Size returns the size of the GPUGridUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPUGridUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUGridUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUGridUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:4], g.Resolution[0])
	binary.LittleEndian.PutUint32(buf[4:8], g.Resolution[1])
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.XRange[0]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.XRange[1]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.YRange[0]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.YRange[1]))
	binary.LittleEndian.PutUint32(buf[24:28], 0) // _pad
	binary.LittleEndian.PutUint32(buf[28:32], 0) // _pad
	return buf
}
