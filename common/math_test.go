package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentity(t *testing.T) {
	m := make([]float32, 16)
	for i := range m {
		m[i] = float32(i) + 1
	}

	Identity(m)

	for i := range 16 {
		want := float32(0)
		if i%5 == 0 {
			want = 1
		}
		assert.Equal(t, want, m[i], "element %d", i)
	}
}

func TestMul4Identity(t *testing.T) {
	a := []float32{
		1, 5, 9, 13,
		2, 6, 10, 14,
		3, 7, 11, 15,
		4, 8, 12, 16,
	}
	id := make([]float32, 16)
	Identity(id)

	out := make([]float32, 16)
	Mul4(out, a, id)
	assert.Equal(t, a, out)

	Mul4(out, id, a)
	assert.Equal(t, a, out)
}

func TestMul4AliasesOutput(t *testing.T) {
	// Mul4 must produce the correct result even when out overlaps an input.
	a := []float32{
		2, 0, 0, 0,
		0, 3, 0, 0,
		0, 0, 4, 0,
		1, 2, 3, 1,
	}
	want := make([]float32, 16)
	Mul4(want, a, a)

	got := make([]float32, 16)
	copy(got, a)
	Mul4(got, got, a)

	assert.Equal(t, want, got)
}

func TestMul4TranslationComposition(t *testing.T) {
	// Translating by (1,2,3) then by (4,5,6) lands at (5,7,9).
	ta := make([]float32, 16)
	tb := make([]float32, 16)
	Identity(ta)
	Identity(tb)
	ta[12], ta[13], ta[14] = 1, 2, 3
	tb[12], tb[13], tb[14] = 4, 5, 6

	out := make([]float32, 16)
	Mul4(out, ta, tb)

	assert.InDelta(t, 5.0, out[12], 1e-6)
	assert.InDelta(t, 7.0, out[13], 1e-6)
	assert.InDelta(t, 9.0, out[14], 1e-6)
}

// mulVec4 applies a column-major 4x4 matrix to a vector.
func mulVec4(m []float32, v [4]float32) [4]float32 {
	var out [4]float32
	for row := range 4 {
		out[row] = m[row]*v[0] + m[4+row]*v[1] + m[8+row]*v[2] + m[12+row]*v[3]
	}
	return out
}

func TestPerspectiveDepthRange(t *testing.T) {
	m := make([]float32, 16)
	fov := float32(math.Pi / 4)
	Perspective(m, fov, 16.0/9.0, 0.1, 100)

	// A point on the near plane maps to z/w = 0, the far plane to z/w = 1.
	near := mulVec4(m, [4]float32{0, 0, -0.1, 1})
	assert.InDelta(t, 0.0, near[2]/near[3], 1e-5)

	far := mulVec4(m, [4]float32{0, 0, -100, 1})
	assert.InDelta(t, 1.0, far[2]/far[3], 1e-4)
}

func TestLookAtTransformsTargetToNegativeZ(t *testing.T) {
	m := make([]float32, 16)
	LookAt(m, 0, -5, 0, 0, 0, 0, 0, 0, 1)

	// The look target sits on the view-space -z axis at the eye distance.
	target := mulVec4(m, [4]float32{0, 0, 0, 1})
	assert.InDelta(t, 0.0, target[0], 1e-5)
	assert.InDelta(t, 0.0, target[1], 1e-5)
	assert.InDelta(t, -5.0, target[2], 1e-5)

	// The eye maps to the view-space origin.
	eye := mulVec4(m, [4]float32{0, -5, 0, 1})
	assert.InDelta(t, 0.0, eye[0], 1e-5)
	assert.InDelta(t, 0.0, eye[1], 1e-5)
	assert.InDelta(t, 0.0, eye[2], 1e-5)
}

func TestSliceBytesRoundTrip(t *testing.T) {
	values := []float32{1.5, -2.25, 0, 1e10}

	raw := SliceToBytes(values)
	require.Len(t, raw, len(values)*4)

	back := BytesToSlice[float32](raw)
	assert.Equal(t, values, back)
}

func TestSliceToBytesEmpty(t *testing.T) {
	assert.Nil(t, SliceToBytes([]uint32(nil)))
	assert.Nil(t, BytesToSlice[uint32](nil))
}
