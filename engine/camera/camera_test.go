package camera

import (
	"math"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZenithClamp(t *testing.T) {
	c := NewCamera()

	c.RotateZenith(-100)
	assert.InDelta(t, zenithEpsilon, c.Zenith(), 1e-6)

	c.RotateZenith(100)
	assert.InDelta(t, math32.Pi-zenithEpsilon, c.Zenith(), 1e-6)

	// A small tilt back off the clamp moves freely.
	c.RotateZenith(-0.5)
	assert.InDelta(t, math32.Pi-zenithEpsilon-0.5, c.Zenith(), 1e-5)
}

func TestAzimuthWrapsFloorModulo(t *testing.T) {
	c := NewCamera(WithAzimuth(0))

	c.RotateAzimuth(-math32.Pi / 2)
	assert.InDelta(t, 3*math32.Pi/2, c.Azimuth(), 1e-5)

	c.RotateAzimuth(math32.Pi)
	assert.InDelta(t, math32.Pi/2, c.Azimuth(), 1e-5)

	// Many full turns still land inside [0, 2*pi).
	for range 100 {
		c.RotateAzimuth(2*math32.Pi + 0.01)
	}
	assert.GreaterOrEqual(t, c.Azimuth(), float32(0))
	assert.Less(t, c.Azimuth(), float32(2*math32.Pi))
	assert.InDelta(t, math32.Pi/2+1.0, c.Azimuth(), 1e-2)
}

func TestAzimuthTinyNegativeStepStaysBelowFullTurn(t *testing.T) {
	// A tiny negative remainder plus 2*pi rounds to exactly 2*pi in float32;
	// the wrap must fold that back to 0, never report a full turn.
	c := NewCamera(WithAzimuth(0))
	c.RotateAzimuth(-1e-8)

	assert.GreaterOrEqual(t, c.Azimuth(), float32(0))
	assert.Less(t, c.Azimuth(), float32(2*math32.Pi))
}

func TestMoveDistanceMultiplicativeZoom(t *testing.T) {
	c := NewCamera(WithDistance(10))

	c.MoveDistance(0.1)
	assert.InDelta(t, 9.0, c.Distance(), 1e-5)

	c.MoveDistance(-0.1)
	assert.InDelta(t, 9.9, c.Distance(), 1e-5)

	// Zooming in forever stops at the closest limit.
	for range 100 {
		c.MoveDistance(0.5)
	}
	assert.InDelta(t, defaultClosest, c.Distance(), 1e-6)

	// Zooming out forever stops at the farthest limit.
	for range 100 {
		c.MoveDistance(-0.5)
	}
	assert.InDelta(t, defaultFarthest, c.Distance(), 1e-4)
}

func TestDistanceLimitsOption(t *testing.T) {
	c := NewCamera(WithDistanceLimits(2, 8), WithDistance(100))
	assert.InDelta(t, 8.0, c.Distance(), 1e-6)

	c.SetDistance(0.1)
	assert.InDelta(t, 2.0, c.Distance(), 1e-6)
}

func TestEyeOnZUpSphere(t *testing.T) {
	c := NewCamera(
		WithTarget(1, 2, 3),
		WithDistance(2),
		WithZenith(math32.Pi/2),
		WithAzimuth(0),
	)

	// Zenith pi/2 with azimuth 0 puts the eye on the +x side of the target.
	x, y, z := c.Eye()
	assert.InDelta(t, 3.0, x, 1e-5)
	assert.InDelta(t, 2.0, y, 1e-5)
	assert.InDelta(t, 3.0, z, 1e-5)

	// Quarter turn moves the eye to the +y side.
	c.RotateAzimuth(math32.Pi / 2)
	x, y, z = c.Eye()
	assert.InDelta(t, 1.0, x, 1e-5)
	assert.InDelta(t, 4.0, y, 1e-5)
	assert.InDelta(t, 3.0, z, 1e-5)

	// Eye always sits at exactly the orbit radius from the target.
	tx, ty, tz := c.Target()
	dx, dy, dz := x-tx, y-ty, z-tz
	dist := float32(math.Sqrt(float64(dx*dx + dy*dy + dz*dz)))
	assert.InDelta(t, c.Distance(), dist, 1e-5)
}

func TestInvariantsUnderArbitraryMutations(t *testing.T) {
	c := NewCamera()

	// Deterministic pseudo-random walk over every mutator.
	seed := uint32(12345)
	next := func() float32 {
		seed = seed*1664525 + 1013904223
		return float32(int32(seed>>8))/float32(1<<23) - 1.0
	}

	for i := 0; i < 1000; i++ {
		switch i % 4 {
		case 0:
			c.RotateZenith(next() * 3)
		case 1:
			c.RotateAzimuth(next() * 10)
		case 2:
			c.MoveDistance(next())
		case 3:
			c.SetTarget(next(), next(), next())
		}

		assert.GreaterOrEqual(t, c.Zenith(), float32(zenithEpsilon))
		assert.LessOrEqual(t, c.Zenith(), float32(math32.Pi-zenithEpsilon))
		assert.GreaterOrEqual(t, c.Azimuth(), float32(0))
		assert.Less(t, c.Azimuth(), float32(2*math32.Pi))
		assert.GreaterOrEqual(t, c.Distance(), float32(defaultClosest))
		assert.LessOrEqual(t, c.Distance(), float32(defaultFarthest))
	}
}

func TestViewProjectionRecomputedOnMutation(t *testing.T) {
	c := NewCamera()
	before := c.ViewProjectionMatrix()

	c.RotateAzimuth(0.5)
	after := c.ViewProjectionMatrix()
	assert.NotEqual(t, before, after)

	c.SetAspect(16.0 / 9.0)
	assert.NotEqual(t, after, c.ViewProjectionMatrix())
}

func TestCameraUniformLayout(t *testing.T) {
	var u GPUCameraUniform
	require.Equal(t, 64, u.Size())

	c := NewCamera()
	u.ViewProj = c.ViewProjectionMatrix()
	buf := u.Marshal()
	require.Len(t, buf, 64)

	for i := range 16 {
		got := math.Float32frombits(uint32(buf[i*4]) | uint32(buf[i*4+1])<<8 | uint32(buf[i*4+2])<<16 | uint32(buf[i*4+3])<<24)
		assert.Equal(t, u.ViewProj[i], got, "element %d", i)
	}
}
