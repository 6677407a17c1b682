package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridCounts(t *testing.T) {
	tests := []struct {
		name          string
		width, height uint32
		wantVertices  uint32
		wantIndices   uint32
	}{
		{"minimum 2x2", 2, 2, 4, 6},
		{"demo 5x5", 5, 5, 25, 96},
		{"rectangular 3x2", 3, 2, 6, 12},
		{"large 256x256", 256, 256, 65536, 390150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantVertices, gridVertexCount(tt.width, tt.height))
			assert.Equal(t, tt.wantIndices, gridIndexCount(tt.width, tt.height))
		})
	}
}

func TestGridBufferByteSizes(t *testing.T) {
	var v Vertex
	assert.Equal(t, 24, v.Size())

	// 5x5 demo grid: 25 vertices * 24 bytes, 96 indices * 4 bytes.
	assert.Equal(t, uint32(600), gridVertexCount(5, 5)*uint32(v.Size()))
	assert.Equal(t, uint32(384), gridIndexCount(5, 5)*4)
}

func TestDispatchChunks16(t *testing.T) {
	tests := []struct {
		n    uint32
		want uint32
	}{
		{1, 1},
		{15, 1},
		{16, 1},
		{17, 2},
		{31, 2},
		{32, 2},
		{33, 3},
		{256, 16},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, dispatchChunks16(tt.n), "n=%d", tt.n)
	}
}

func TestDispatchChunks256(t *testing.T) {
	tests := []struct {
		n    uint32
		want uint32
	}{
		{1, 1},
		{25, 1},
		{255, 1},
		{256, 1},
		{257, 2},
		{65536, 256},
		{65537, 257},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, dispatchChunks256(tt.n), "n=%d", tt.n)
	}
}

// referenceVertices mirrors the vertex generation kernel on the CPU:
// row-major layout, positions interpolated across the ranges, zero z and
// color.
func referenceVertices(width, height uint32, xRange, yRange [2]float32) []Vertex {
	vertices := make([]Vertex, 0, width*height)
	for y := uint32(0); y < height; y++ {
		for x := uint32(0); x < width; x++ {
			tx := float32(x) / float32(width-1)
			ty := float32(y) / float32(height-1)
			vertices = append(vertices, Vertex{
				Position: [3]float32{
					xRange[0] + (xRange[1]-xRange[0])*tx,
					yRange[0] + (yRange[1]-yRange[0])*ty,
					0,
				},
			})
		}
	}
	return vertices
}

// referenceIndices mirrors the index generation kernel on the CPU: two
// triangles per cell, counter-clockwise seen from +z.
func referenceIndices(width, height uint32) []uint32 {
	indices := make([]uint32, 0, gridIndexCount(width, height))
	for y := uint32(0); y < height-1; y++ {
		for x := uint32(0); x < width-1; x++ {
			v0 := y*width + x
			v1 := v0 + 1
			v2 := v0 + width
			v3 := v2 + 1
			indices = append(indices, v0, v1, v2, v1, v3, v2)
		}
	}
	return indices
}

func TestGenerationReferenceCorners(t *testing.T) {
	xRange := [2]float32{-1, 1}
	yRange := [2]float32{-2, 2}
	vertices := referenceVertices(5, 5, xRange, yRange)
	require.Len(t, vertices, 25)

	assert.Equal(t, [3]float32{-1, -2, 0}, vertices[0].Position)
	assert.Equal(t, [3]float32{1, -2, 0}, vertices[4].Position)
	assert.Equal(t, [3]float32{-1, 2, 0}, vertices[20].Position)
	assert.Equal(t, [3]float32{1, 2, 0}, vertices[24].Position)

	// Center vertex of an odd grid sits at the range midpoints.
	assert.Equal(t, [3]float32{0, 0, 0}, vertices[12].Position)

	for _, v := range vertices {
		assert.Equal(t, [3]float32{0, 0, 0}, v.Color)
	}
}

func TestGenerationReferenceWinding(t *testing.T) {
	width, height := uint32(4), uint32(3)
	vertices := referenceVertices(width, height, [2]float32{-1, 1}, [2]float32{-1, 1})
	indices := referenceIndices(width, height)
	require.Len(t, indices, int(gridIndexCount(width, height)))

	// Every triangle must have positive signed area in the xy plane,
	// which is counter-clockwise when viewed from +z.
	for i := 0; i < len(indices); i += 3 {
		a := vertices[indices[i]].Position
		b := vertices[indices[i+1]].Position
		c := vertices[indices[i+2]].Position
		area := (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
		assert.Greater(t, area, float32(0), "triangle %d", i/3)
	}

	// All vertices referenced, none out of range.
	seen := make(map[uint32]bool)
	for _, idx := range indices {
		require.Less(t, idx, gridVertexCount(width, height))
		seen[idx] = true
	}
	assert.Len(t, seen, int(gridVertexCount(width, height)))
}
