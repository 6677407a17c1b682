package state

import (
	_ "embed"
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gridforge/gridforge/engine/camera"
	"github.com/gridforge/gridforge/engine/grid"
	"github.com/gridforge/gridforge/engine/window"
)

// surfaceShaderSource renders generated grids: camera uniform at
// @group(0) @binding(0), vertex layout matching grid.VertexBufferLayout.
//
//go:embed assets/surface.wgsl
var surfaceShaderSource string

type stateImpl struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat *wgpu.TextureFormat
	presentMode   PresentMode
	clearColor    wgpu.Color

	width  uint32
	height uint32

	// multisampling toggles between sample count 1 and msaaSampleCount.
	// Invariant: the MSAA color target exists iff multisampling is on, and
	// the depth target's sample count always matches the render pipeline's.
	multisampling    bool
	msaaSampleCount  MSAASampleCount
	msaaTexture      *wgpu.Texture
	msaaTextureView  *wgpu.TextureView
	depthTexture     *wgpu.Texture
	depthTextureView *wgpu.TextureView

	shaderModule   *wgpu.ShaderModule
	pipelineLayout *wgpu.PipelineLayout
	renderPipeline *wgpu.RenderPipeline

	cam                   camera.Camera
	cameraBuffer          *wgpu.Buffer
	cameraBindGroupLayout *wgpu.BindGroupLayout
	cameraBindGroup       *wgpu.BindGroup

	generator grid.Generator
	evaluator grid.Evaluator
	buffers   *grid.GridBuffers

	gridWidth  uint32
	gridHeight uint32
	xRange     [2]float32
	yRange     [2]float32

	// Builder configuration consumed during construction.
	evaluatorSource      string
	evaluatorEntry       string
	forceFallbackAdapter bool
}

// State owns every GPU resource of the grid surface system and keeps them
// consistent across window resizes, multisampling toggles, and grid
// regeneration. One State per window.
type State interface {
	// Resize reconfigures the surface and recreates the depth and MSAA
	// targets for the new dimensions, then updates the camera aspect ratio.
	// A zero-area size (minimized window) is ignored.
	//
	// Parameters:
	//   - width: new surface width in pixels
	//   - height: new surface height in pixels
	Resize(width, height int)

	// SetMultisampling switches anti-aliasing on or off. Setting the current
	// state again is a no-op. Otherwise the render pipeline is rebuilt at
	// the new sample count and all render targets are recreated to match.
	//
	// Parameters:
	//   - enabled: whether the configured MSAA sample count should be active
	SetMultisampling(enabled bool)

	// Multisampling reports whether anti-aliasing is currently active.
	//
	// Returns:
	//   - bool: true when rendering at the configured MSAA sample count
	Multisampling() bool

	// SetGridResolution replaces the current grid with a freshly generated
	// one at the new resolution, over the same world-space ranges. The old
	// buffers are released before the replacement is generated, and the
	// evaluator (if any) is re-run on the new vertices.
	//
	// Parameters:
	//   - width: vertex count along x (must be >= 2)
	//   - height: vertex count along y (must be >= 2)
	//
	// Returns:
	//   - error: an error if generation or evaluation failed
	SetGridResolution(width, height uint32) error

	// GridResolution returns the current grid's vertex dimensions.
	//
	// Returns:
	//   - width, height: vertex counts along x and y
	GridResolution() (width, height uint32)

	// RotateZenith tilts the camera orbit and re-uploads the camera uniform.
	//
	// Parameters:
	//   - delta: zenith change in radians
	RotateZenith(delta float32)

	// RotateAzimuth swings the camera orbit and re-uploads the camera uniform.
	//
	// Parameters:
	//   - delta: azimuth change in radians
	RotateAzimuth(delta float32)

	// MoveDistance zooms the camera and re-uploads the camera uniform.
	//
	// Parameters:
	//   - delta: multiplicative zoom step, positive moves toward the target
	MoveDistance(delta float32)

	// Camera returns the camera this state renders through. Mutating it
	// directly does not re-upload the uniform; prefer the Rotate/Move
	// forwarders for per-frame input.
	//
	// Returns:
	//   - camera.Camera: the owned camera
	Camera() camera.Camera

	// Generator returns the grid generator, exposed for readback tooling.
	//
	// Returns:
	//   - grid.Generator: the owned generator
	Generator() grid.Generator

	// Buffers returns the current grid's GPU buffers. The state retains
	// ownership; callers must not release them.
	//
	// Returns:
	//   - *grid.GridBuffers: the current grid, nil only after a failed regeneration
	Buffers() *grid.GridBuffers

	// Render draws one frame: acquires the swapchain texture, clears color
	// and depth, draws the full grid through the camera bind group, submits,
	// and presents.
	//
	// Returns:
	//   - error: an error if the surface texture could not be acquired or commands could not be encoded
	Render() error

	// Close releases every GPU resource the state owns. The state must not
	// be used afterwards.
	Close()
}

var _ State = &stateImpl{}

// NewState acquires the GPU (instance, surface, adapter, device, queue) for
// the given window and builds the full resource set: camera uniform and bind
// group, render pipeline, grid generator, optional evaluator, and the initial
// generated grid. Panics if any setup step fails; a State that cannot finish
// construction has no usable fallback.
//
// Parameters:
//   - win: the window providing the surface descriptor and initial dimensions
//   - options: functional options to configure the state
//
// Returns:
//   - State: the fully initialized state
func NewState(win window.Window, options ...StateOption) State {
	runtime.LockOSThread()
	s := &stateImpl{
		mu:              &sync.Mutex{},
		presentMode:     PresentModeUncapped,
		clearColor:      wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0},
		msaaSampleCount: MSAA4x,
		gridWidth:       5,
		gridHeight:      5,
		xRange:          [2]float32{-1, 1},
		yRange:          [2]float32{-1, 1},
	}
	for _, option := range options {
		option(s)
	}

	s.instance = wgpu.CreateInstance(nil)
	s.surface = s.instance.CreateSurface(win.SurfaceDescriptor())

	adapter, err := s.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: s.forceFallbackAdapter,
		CompatibleSurface:    s.surface,
	})
	if err != nil {
		panic(err)
	}
	s.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		panic(err)
	}
	s.device = device
	s.queue = device.GetQueue()

	if s.cam == nil {
		s.cam = camera.NewCamera()
	}

	var camUniform camera.GPUCameraUniform
	s.cameraBuffer, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Camera Uniform Buffer",
		Size:  uint64(camUniform.Size()),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}
	s.cameraBindGroupLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Camera Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: uint64(camUniform.Size()),
				},
			},
		},
	})
	if err != nil {
		panic(err)
	}
	s.cameraBindGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Camera Bind Group",
		Layout: s.cameraBindGroupLayout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  s.cameraBuffer,
				Offset:  0,
				Size:    wgpu.WholeSize,
			},
		},
	})
	if err != nil {
		panic(err)
	}

	s.shaderModule, err = device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "Surface Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: surfaceShaderSource,
		},
	})
	if err != nil {
		panic(err)
	}
	s.pipelineLayout, err = device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Surface Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{s.cameraBindGroupLayout},
	})
	if err != nil {
		panic(err)
	}

	s.generator = grid.NewGenerator(device, s.queue)
	if s.evaluatorSource != "" {
		module, moduleErr := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
			Label: "Evaluator Shader",
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
				Code: s.evaluatorSource,
			},
		})
		if moduleErr != nil {
			panic(moduleErr)
		}
		evaluator, evalErr := s.generator.CreateEvaluator(module, s.evaluatorEntry)
		if evalErr != nil {
			panic(evalErr)
		}
		module.Release()
		s.evaluator = evaluator
	}

	buffers, err := s.generator.Generate(s.gridWidth, s.gridHeight, s.xRange, s.yRange)
	if err != nil {
		panic(err)
	}
	s.buffers = buffers
	if s.evaluator != nil {
		if err := s.evaluator.EvaluateBuffers(buffers); err != nil {
			panic(err)
		}
	}

	// Targets first: the render pipeline needs the surface format chosen here.
	s.configureTargets(uint32(win.Width()), uint32(win.Height()))
	s.buildRenderPipeline()

	s.cam.SetAspect(float32(win.Width()) / float32(win.Height()))
	s.uploadCameraUniform()

	return s
}

func (s *stateImpl) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Minimized windows report zero-area surfaces that cannot be configured.
	if width == 0 || height == 0 {
		return
	}

	s.configureTargets(uint32(width), uint32(height))
	s.cam.SetAspect(float32(width) / float32(height))
	s.uploadCameraUniform()
}

func (s *stateImpl) SetMultisampling(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if enabled == s.multisampling {
		return
	}
	s.multisampling = enabled

	// Targets and pipeline must agree on the sample count, so both are
	// rebuilt together. Disabling drops the MSAA color target entirely.
	s.configureTargets(s.width, s.height)
	s.buildRenderPipeline()
}

func (s *stateImpl) Multisampling() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.multisampling
}

func (s *stateImpl) SetGridResolution(width, height uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Old buffers go first so peak GPU memory stays at one grid.
	if s.buffers != nil {
		s.buffers.Release()
		s.buffers = nil
	}

	buffers, err := s.generator.Generate(width, height, s.xRange, s.yRange)
	if err != nil {
		return fmt.Errorf("failed to regenerate grid at %dx%d: %w", width, height, err)
	}
	if s.evaluator != nil {
		if err := s.evaluator.EvaluateBuffers(buffers); err != nil {
			buffers.Release()
			return fmt.Errorf("failed to evaluate regenerated grid: %w", err)
		}
	}

	s.buffers = buffers
	s.gridWidth = width
	s.gridHeight = height
	return nil
}

func (s *stateImpl) GridResolution() (width, height uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gridWidth, s.gridHeight
}

func (s *stateImpl) RotateZenith(delta float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam.RotateZenith(delta)
	s.uploadCameraUniform()
}

func (s *stateImpl) RotateAzimuth(delta float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam.RotateAzimuth(delta)
	s.uploadCameraUniform()
}

func (s *stateImpl) MoveDistance(delta float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam.MoveDistance(delta)
	s.uploadCameraUniform()
}

func (s *stateImpl) Camera() camera.Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cam
}

func (s *stateImpl) Generator() grid.Generator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generator
}

func (s *stateImpl) Buffers() *grid.GridBuffers {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffers
}

func (s *stateImpl) Render() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	surfaceTexture, err := s.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("failed to acquire surface texture: %w", err)
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return fmt.Errorf("failed to create surface view: %w", err)
	}

	encoder, err := s.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return fmt.Errorf("failed to create command encoder: %w", err)
	}

	// When MSAA is enabled, draw into the MSAA texture and resolve into the
	// swapchain view; the multisampled contents are not stored. When off,
	// draw into the swapchain view directly.
	colorAttachment := wgpu.RenderPassColorAttachment{
		LoadOp:     wgpu.LoadOpClear,
		StoreOp:    wgpu.StoreOpStore,
		ClearValue: s.clearColor,
	}
	if s.multisampling {
		colorAttachment.View = s.msaaTextureView
		colorAttachment.ResolveTarget = view
		colorAttachment.StoreOp = wgpu.StoreOpDiscard
	} else {
		colorAttachment.View = view
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{colorAttachment},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            s.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})
	if s.buffers != nil {
		pass.SetPipeline(s.renderPipeline)
		pass.SetBindGroup(0, s.cameraBindGroup, nil)
		pass.SetVertexBuffer(0, s.buffers.VertexBuffer, 0, wgpu.WholeSize)
		pass.SetIndexBuffer(s.buffers.IndexBuffer, s.buffers.IndexFormat, 0, wgpu.WholeSize)
		pass.DrawIndexed(s.buffers.IndexCount, 1, 0, 0, 0)
	}
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		view.Release()
		surfaceTexture.Release()
		return fmt.Errorf("failed to finish frame commands: %w", err)
	}
	s.queue.Submit(commandBuffer)
	commandBuffer.Release()
	encoder.Release()

	s.surface.Present()
	view.Release()
	surfaceTexture.Release()

	return nil
}

func (s *stateImpl) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buffers != nil {
		s.buffers.Release()
		s.buffers = nil
	}
	if s.evaluator != nil {
		s.evaluator.Release()
		s.evaluator = nil
	}
	if s.generator != nil {
		s.generator.Release()
		s.generator = nil
	}
	s.releaseMSAATarget()
	s.releaseDepthTarget()
	if s.renderPipeline != nil {
		s.renderPipeline.Release()
		s.renderPipeline = nil
	}
	if s.pipelineLayout != nil {
		s.pipelineLayout.Release()
		s.pipelineLayout = nil
	}
	if s.shaderModule != nil {
		s.shaderModule.Release()
		s.shaderModule = nil
	}
	if s.cameraBindGroup != nil {
		s.cameraBindGroup.Release()
		s.cameraBindGroup = nil
	}
	if s.cameraBindGroupLayout != nil {
		s.cameraBindGroupLayout.Release()
		s.cameraBindGroupLayout = nil
	}
	if s.cameraBuffer != nil {
		s.cameraBuffer.Release()
		s.cameraBuffer = nil
	}
}

// configureTargets reconfigures the surface for the given dimensions and
// recreates the MSAA and depth targets to match the active sample count,
// releasing the old ones first. Caller must hold the mutex.
func (s *stateImpl) configureTargets(width, height uint32) {
	capabilities := s.surface.GetCapabilities(s.adapter)
	s.surfaceFormat = &capabilities.Formats[0]

	s.surface.Configure(s.adapter, s.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *s.surfaceFormat,
		Width:       width,
		Height:      height,
		PresentMode: s.presentMode.toWGPU(),
		AlphaMode:   capabilities.AlphaModes[0],
	})
	s.width = width
	s.height = height

	count := activeSamples(s.multisampling, s.msaaSampleCount)

	s.releaseMSAATarget()
	if s.multisampling {
		msaaTexture, err := s.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "MSAA Texture",
			Size: wgpu.Extent3D{
				Width:              width,
				Height:             height,
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        *s.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			panic(err)
		}
		view, err := msaaTexture.CreateView(nil)
		if err != nil {
			panic(err)
		}
		s.msaaTexture = msaaTexture
		s.msaaTextureView = view
	}

	// Depth texture sample count must match the color attachment.
	s.releaseDepthTarget()
	depthTexture, err := s.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth32Float,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	depthView, err := depthTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}
	s.depthTexture = depthTexture
	s.depthTextureView = depthView
}

// buildRenderPipeline (re)creates the surface render pipeline at the active
// sample count, releasing the previous one first. Caller must hold the mutex.
func (s *stateImpl) buildRenderPipeline() {
	if s.renderPipeline != nil {
		s.renderPipeline.Release()
		s.renderPipeline = nil
	}

	pipeline, err := s.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Surface Render Pipeline",
		Layout: s.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     s.shaderModule,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{grid.VertexBufferLayout()},
		},
		Fragment: &wgpu.FragmentState{
			Module:     s.shaderModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    *s.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			// Evaluated surfaces are routinely viewed from below, so no culling.
			CullMode: wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: activeSamples(s.multisampling, s.msaaSampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth32Float,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		panic(err)
	}
	s.renderPipeline = pipeline
}

// uploadCameraUniform writes the camera's current view-projection matrix to
// the GPU. Caller must hold the mutex.
func (s *stateImpl) uploadCameraUniform() {
	uniform := camera.GPUCameraUniform{
		ViewProj: s.cam.ViewProjectionMatrix(),
	}
	s.queue.WriteBuffer(s.cameraBuffer, 0, uniform.Marshal())
}

func (s *stateImpl) releaseMSAATarget() {
	if s.msaaTextureView != nil {
		s.msaaTextureView.Release()
		s.msaaTextureView = nil
	}
	if s.msaaTexture != nil {
		s.msaaTexture.Release()
		s.msaaTexture = nil
	}
}

func (s *stateImpl) releaseDepthTarget() {
	if s.depthTextureView != nil {
		s.depthTextureView.Release()
		s.depthTextureView = nil
	}
	if s.depthTexture != nil {
		s.depthTexture.Release()
		s.depthTexture = nil
	}
}
