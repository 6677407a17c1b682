package state

import (
	"sync"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"

	"github.com/gridforge/gridforge/engine/camera"
)

func TestActiveSamples(t *testing.T) {
	tests := []struct {
		name          string
		multisampling bool
		count         MSAASampleCount
		want          uint32
	}{
		{"off with 4x configured", false, MSAA4x, 1},
		{"on with 4x configured", true, MSAA4x, 4},
		{"on with 8x configured", true, MSAA8x, 8},
		{"on with 16x configured", true, MSAA16x, 16},
		{"on with off count stays single-sampled", true, MSAAOff, 1},
		{"off with off count", false, MSAAOff, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, activeSamples(tt.multisampling, tt.count))
		})
	}
}

func TestActiveSamplesToggleRoundTrip(t *testing.T) {
	// Toggling off and back on must land on the configured count again.
	count := MSAA4x
	assert.Equal(t, uint32(4), activeSamples(true, count))
	assert.Equal(t, uint32(1), activeSamples(false, count))
	assert.Equal(t, uint32(4), activeSamples(true, count))
}

func TestPresentModeMapping(t *testing.T) {
	assert.Equal(t, wgpu.PresentModeFifo, PresentModeVSync.toWGPU())
	assert.Equal(t, wgpu.PresentModeImmediate, PresentModeUncapped.toWGPU())
	assert.Equal(t, wgpu.PresentModeImmediate, PresentMode(99).toWGPU())
}

func TestMSAAConstants(t *testing.T) {
	assert.Equal(t, MSAASampleCount(1), MSAAOff)
	assert.Equal(t, MSAASampleCount(4), MSAA4x)
	assert.Equal(t, MSAASampleCount(8), MSAA8x)
	assert.Equal(t, MSAASampleCount(16), MSAA16x)
}

func TestResizeZeroAreaIsNoOp(t *testing.T) {
	// A minimized window reports a zero-area surface. Resize must bail out
	// before touching the surface, the render targets, or the camera; this
	// state has no GPU resources at all, so any attempt would panic.
	cam := camera.NewCamera(camera.WithAspect(4.0 / 3.0))
	s := &stateImpl{
		mu:     &sync.Mutex{},
		cam:    cam,
		width:  640,
		height: 480,
	}

	s.Resize(0, 480)
	s.Resize(640, 0)
	s.Resize(0, 0)

	assert.Equal(t, uint32(640), s.width)
	assert.Equal(t, uint32(480), s.height)
	assert.InDelta(t, 4.0/3.0, cam.Aspect(), 1e-6)
}

func TestWithMSAAOption(t *testing.T) {
	s := &stateImpl{msaaSampleCount: MSAA4x}

	WithMSAA(MSAA8x)(s)
	assert.True(t, s.multisampling)
	assert.Equal(t, MSAA8x, s.msaaSampleCount)

	WithMSAA(MSAAOff)(s)
	assert.False(t, s.multisampling)
	// The configured count survives so a later SetMultisampling(true)
	// returns to the previous quality.
	assert.Equal(t, MSAA8x, s.msaaSampleCount)
}
