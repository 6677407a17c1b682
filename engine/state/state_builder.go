package state

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gridforge/gridforge/engine/camera"
)

// StateOption configures a State during construction.
type StateOption func(*stateImpl)

// WithMSAA sets the multisampling sample count and enables multisampling
// when the count is greater than 1. MSAAOff leaves multisampling disabled.
// When not specified, multisampling starts disabled with MSAA4x configured
// for SetMultisampling(true).
//
// Parameters:
//   - count: the MSAA sample count to render at while multisampling is on
//
// Returns:
//   - StateOption: the option to pass to NewState
func WithMSAA(count MSAASampleCount) StateOption {
	return func(s *stateImpl) {
		if count > 1 {
			s.msaaSampleCount = count
			s.multisampling = true
		} else {
			s.multisampling = false
		}
	}
}

// WithPresentMode sets how frames are delivered to the display.
// Defaults to PresentModeUncapped.
//
// Parameters:
//   - mode: the present mode (VSync or Uncapped)
//
// Returns:
//   - StateOption: the option to pass to NewState
func WithPresentMode(mode PresentMode) StateOption {
	return func(s *stateImpl) {
		s.presentMode = mode
	}
}

// WithGridResolution sets the initial grid's vertex dimensions.
// Defaults to 5x5.
//
// Parameters:
//   - width: vertex count along x (must be >= 2)
//   - height: vertex count along y (must be >= 2)
//
// Returns:
//   - StateOption: the option to pass to NewState
func WithGridResolution(width, height uint32) StateOption {
	return func(s *stateImpl) {
		s.gridWidth = width
		s.gridHeight = height
	}
}

// WithRanges sets the world-space extent the grid spans.
// Defaults to [-1, 1] on both axes.
//
// Parameters:
//   - xRange: x extent as (min, max)
//   - yRange: y extent as (min, max)
//
// Returns:
//   - StateOption: the option to pass to NewState
func WithRanges(xRange, yRange [2]float32) StateOption {
	return func(s *stateImpl) {
		s.xRange = xRange
		s.yRange = yRange
	}
}

// WithEvaluator sets the WGSL source and entry point of the per-vertex
// evaluation kernel run after every generation. An empty entry point selects
// the module's sole @compute entry. Without this option vertices stay as the
// generator produced them.
//
// Parameters:
//   - source: WGSL source declaring the vertex storage buffer at @group(0) @binding(0)
//   - entryPoint: the kernel entry point name, or "" for the module default
//
// Returns:
//   - StateOption: the option to pass to NewState
func WithEvaluator(source, entryPoint string) StateOption {
	return func(s *stateImpl) {
		s.evaluatorSource = source
		s.evaluatorEntry = entryPoint
	}
}

// WithClearColor sets the render pass clear color.
// Defaults to dark gray (0.1, 0.1, 0.1, 1.0).
//
// Parameters:
//   - r, g, b, a: color components in [0, 1]
//
// Returns:
//   - StateOption: the option to pass to NewState
func WithClearColor(r, g, b, a float64) StateOption {
	return func(s *stateImpl) {
		s.clearColor = wgpu.Color{R: r, G: g, B: b, A: a}
	}
}

// WithCamera supplies a preconfigured camera instead of the default orbit.
//
// Parameters:
//   - cam: the camera to render through
//
// Returns:
//   - StateOption: the option to pass to NewState
func WithCamera(cam camera.Camera) StateOption {
	return func(s *stateImpl) {
		s.cam = cam
	}
}

// WithForceFallbackAdapter forces the software fallback adapter, useful on
// machines without GPU access.
//
// Parameters:
//   - force: whether to require the fallback adapter
//
// Returns:
//   - StateOption: the option to pass to NewState
func WithForceFallbackAdapter(force bool) StateOption {
	return func(s *stateImpl) {
		s.forceFallbackAdapter = force
	}
}
