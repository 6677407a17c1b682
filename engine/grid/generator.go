package grid

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

type generatorImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue
	label  string

	// Generation resources, built once in NewGenerator and reused for every
	// Generate call: shared layout (storage target + grid uniform), one
	// compute pipeline per generated buffer, and the persistent uniform.
	generationLayout *wgpu.BindGroupLayout
	vertexPipeline   *wgpu.ComputePipeline
	indexPipeline    *wgpu.ComputePipeline
	uniformBuffer    *wgpu.Buffer

	// Evaluator resources: every evaluator pipeline is created over this
	// fixed single-storage-buffer layout so one bind group per grid serves
	// all evaluators.
	evaluatorLayout         *wgpu.BindGroupLayout
	evaluatorPipelineLayout *wgpu.PipelineLayout
}

// Generator owns the compute pipelines that build grid geometry on the GPU.
type Generator interface {
	// Generate allocates a fresh vertex and index buffer for a width x height
	// vertex grid spanning xRange x yRange in world space, fills both on the
	// GPU, and returns them with the evaluator bind group pre-built.
	//
	// Parameters:
	//   - width: vertex count along x (must be >= 2)
	//   - height: vertex count along y (must be >= 2)
	//   - xRange: world-space x extent as (min, max)
	//   - yRange: world-space y extent as (min, max)
	//
	// Returns:
	//   - *GridBuffers: the generated GPU geometry, owned by the caller
	//   - error: an error if the resolution is invalid or a GPU resource could not be created
	Generate(width, height uint32, xRange, yRange [2]float32) (*GridBuffers, error)

	// CreateEvaluator builds an Evaluator from a compute shader module. The
	// shader must declare a single read_write storage buffer at
	// @group(0) @binding(0) holding the flat vertex float array, with a
	// workgroup size of 256. Many evaluators may share one Generator.
	//
	// Parameters:
	//   - module: the compiled shader module containing the evaluation kernel
	//   - entryPoint: the kernel entry point name; empty selects the module's sole @compute entry
	//
	// Returns:
	//   - Evaluator: the evaluator bound to this generator's layout
	//   - error: an error if the compute pipeline could not be created
	CreateEvaluator(module *wgpu.ShaderModule, entryPoint string) (Evaluator, error)

	// ReadVertices copies a grid's vertex buffer back to the CPU and decodes
	// it. Blocks until the GPU copy and map complete; intended for debugging
	// and tooling, not the render loop.
	//
	// Parameters:
	//   - buffers: the grid whose vertex buffer to read
	//
	// Returns:
	//   - []Vertex: the decoded vertices, length buffers.VertexCount
	//   - error: an error if the copy or map failed
	ReadVertices(buffers *GridBuffers) ([]Vertex, error)

	// ReadIndices copies a grid's index buffer back to the CPU and decodes
	// it. Blocks until the GPU copy and map complete; intended for debugging
	// and tooling, not the render loop.
	//
	// Parameters:
	//   - buffers: the grid whose index buffer to read
	//
	// Returns:
	//   - []uint32: the decoded indices, length buffers.IndexCount
	//   - error: an error if the copy or map failed
	ReadIndices(buffers *GridBuffers) ([]uint32, error)

	// Release drops the generator's own GPU resources (pipelines, layouts,
	// uniform buffer). GridBuffers it produced are unaffected and remain
	// owned by their callers.
	Release()
}

var _ Generator = &generatorImpl{}

// NewGenerator builds the grid generation pipelines and the shared evaluator
// layout on the given device. Panics if any GPU resource cannot be created;
// generation setup failing means the device is unusable for this system.
//
// Parameters:
//   - device: the GPU device to create resources on
//   - queue: the queue generation work is submitted to
//   - options: optional configuration (see generator_builder.go)
//
// Returns:
//   - Generator: the ready-to-use generator
func NewGenerator(device *wgpu.Device, queue *wgpu.Queue, options ...GeneratorOption) Generator {
	g := &generatorImpl{
		mu:     &sync.Mutex{},
		device: device,
		queue:  queue,
		label:  "Grid",
	}
	for _, opt := range options {
		opt(g)
	}

	var uniform GPUGridUniform
	generationLayout, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: g.label + " Generation Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{
					Type: wgpu.BufferBindingTypeStorage,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: uint64(uniform.Size()),
				},
			},
		},
	})
	if err != nil {
		panic(err)
	}
	g.generationLayout = generationLayout

	generationPipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            g.label + " Generation Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{generationLayout},
	})
	if err != nil {
		panic(err)
	}

	vertexModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: g.label + " Vertex Generation Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: GridVertexSource,
		},
	})
	if err != nil {
		panic(err)
	}
	g.vertexPipeline, err = device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  g.label + " Vertex Generation Pipeline",
		Layout: generationPipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     vertexModule,
			EntryPoint: "generate_vertex_buffer",
		},
	})
	if err != nil {
		panic(err)
	}

	indexModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: g.label + " Index Generation Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: GridIndexSource,
		},
	})
	if err != nil {
		panic(err)
	}
	g.indexPipeline, err = device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  g.label + " Index Generation Pipeline",
		Layout: generationPipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     indexModule,
			EntryPoint: "generate_index_buffer",
		},
	})
	if err != nil {
		panic(err)
	}

	g.uniformBuffer, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: g.label + " Uniform Buffer",
		Size:  uint64(uniform.Size()),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}

	g.evaluatorLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: g.label + " Evaluator Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{
					Type: wgpu.BufferBindingTypeStorage,
				},
			},
		},
	})
	if err != nil {
		panic(err)
	}
	g.evaluatorPipelineLayout, err = device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            g.label + " Evaluator Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{g.evaluatorLayout},
	})
	if err != nil {
		panic(err)
	}

	vertexModule.Release()
	indexModule.Release()
	generationPipelineLayout.Release()

	return g
}

func (g *generatorImpl) Generate(width, height uint32, xRange, yRange [2]float32) (*GridBuffers, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if width < 2 || height < 2 {
		return nil, fmt.Errorf("grid resolution must be at least 2x2, got %dx%d", width, height)
	}

	vertexCount := gridVertexCount(width, height)
	indexCount := gridIndexCount(width, height)

	uniform := GPUGridUniform{
		Resolution: [2]uint32{width, height},
		XRange:     xRange,
		YRange:     yRange,
	}
	g.queue.WriteBuffer(g.uniformBuffer, 0, uniform.Marshal())

	vertexBuffer, err := g.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: g.label + " Vertex Buffer",
		Size:  uint64(vertexCount) * uint64(unsafe.Sizeof(Vertex{})),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex buffer: %w", err)
	}

	indexBuffer, err := g.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: g.label + " Index Buffer",
		Size:  uint64(indexCount) * 4,
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		vertexBuffer.Release()
		return nil, fmt.Errorf("failed to create index buffer: %w", err)
	}

	vertexBindGroup, err := g.createGenerationBindGroup(g.label+" Vertex Generation Bind Group", vertexBuffer)
	if err != nil {
		vertexBuffer.Release()
		indexBuffer.Release()
		return nil, err
	}
	indexBindGroup, err := g.createGenerationBindGroup(g.label+" Index Generation Bind Group", indexBuffer)
	if err != nil {
		vertexBindGroup.Release()
		vertexBuffer.Release()
		indexBuffer.Release()
		return nil, err
	}

	encoder, err := g.device.CreateCommandEncoder(nil)
	if err != nil {
		vertexBindGroup.Release()
		indexBindGroup.Release()
		vertexBuffer.Release()
		indexBuffer.Release()
		return nil, fmt.Errorf("failed to create command encoder: %w", err)
	}

	// Both fills in a single compute pass: the second dispatch covers the
	// cell grid, which the vertex-grid workgroup count always covers too.
	xChunks := dispatchChunks16(width)
	yChunks := dispatchChunks16(height)
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(g.vertexPipeline)
	pass.SetBindGroup(0, vertexBindGroup, nil)
	pass.DispatchWorkgroups(xChunks, yChunks, 1)
	pass.SetPipeline(g.indexPipeline)
	pass.SetBindGroup(0, indexBindGroup, nil)
	pass.DispatchWorkgroups(xChunks, yChunks, 1)
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		vertexBindGroup.Release()
		indexBindGroup.Release()
		vertexBuffer.Release()
		indexBuffer.Release()
		return nil, fmt.Errorf("failed to finish generation commands: %w", err)
	}
	g.queue.Submit(commandBuffer)
	commandBuffer.Release()
	encoder.Release()
	vertexBindGroup.Release()
	indexBindGroup.Release()

	evaluatorBindGroup, err := g.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  g.label + " Evaluator Bind Group",
		Layout: g.evaluatorLayout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  vertexBuffer,
				Offset:  0,
				Size:    wgpu.WholeSize,
			},
		},
	})
	if err != nil {
		vertexBuffer.Release()
		indexBuffer.Release()
		return nil, fmt.Errorf("failed to create evaluator bind group: %w", err)
	}

	return &GridBuffers{
		VertexBuffer:           vertexBuffer,
		IndexBuffer:            indexBuffer,
		VertexCount:            vertexCount,
		IndexCount:             indexCount,
		IndexFormat:            wgpu.IndexFormatUint32,
		evaluatorBindGroup:     evaluatorBindGroup,
		evaluatorDispatchCount: dispatchChunks256(vertexCount),
	}, nil
}

func (g *generatorImpl) CreateEvaluator(module *wgpu.ShaderModule, entryPoint string) (Evaluator, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	pipeline, err := g.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  g.label + " Evaluator Pipeline",
		Layout: g.evaluatorPipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: entryPoint,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create evaluator pipeline: %w", err)
	}

	return &evaluatorImpl{
		mu:       &sync.Mutex{},
		device:   g.device,
		queue:    g.queue,
		pipeline: pipeline,
	}, nil
}

func (g *generatorImpl) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.vertexPipeline != nil {
		g.vertexPipeline.Release()
		g.vertexPipeline = nil
	}
	if g.indexPipeline != nil {
		g.indexPipeline.Release()
		g.indexPipeline = nil
	}
	if g.uniformBuffer != nil {
		g.uniformBuffer.Release()
		g.uniformBuffer = nil
	}
	if g.evaluatorPipelineLayout != nil {
		g.evaluatorPipelineLayout.Release()
		g.evaluatorPipelineLayout = nil
	}
	if g.evaluatorLayout != nil {
		g.evaluatorLayout.Release()
		g.evaluatorLayout = nil
	}
	if g.generationLayout != nil {
		g.generationLayout.Release()
		g.generationLayout = nil
	}
}

// createGenerationBindGroup binds a generation target buffer and the grid
// uniform to the shared generation layout.
func (g *generatorImpl) createGenerationBindGroup(label string, target *wgpu.Buffer) (*wgpu.BindGroup, error) {
	bindGroup, err := g.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label,
		Layout: g.generationLayout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  target,
				Offset:  0,
				Size:    wgpu.WholeSize,
			},
			{
				Binding: 1,
				Buffer:  g.uniformBuffer,
				Offset:  0,
				Size:    wgpu.WholeSize,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bind group %q: %w", label, err)
	}
	return bindGroup, nil
}

// gridVertexCount returns the number of vertices in a width x height grid.
func gridVertexCount(width, height uint32) uint32 {
	return width * height
}

// gridIndexCount returns the number of indices for the grid's triangle list:
// two triangles per cell, (width-1)*(height-1) cells.
func gridIndexCount(width, height uint32) uint32 {
	return (width - 1) * (height - 1) * 6
}

// dispatchChunks16 returns the number of 16-wide workgroups covering n
// invocations along one generation dispatch axis.
func dispatchChunks16(n uint32) uint32 {
	chunks := n >> 4
	if n&0xf != 0 {
		chunks++
	}
	return chunks
}

// dispatchChunks256 returns the number of 256-wide workgroups covering n
// invocations of a 1-D evaluation dispatch.
func dispatchChunks256(n uint32) uint32 {
	chunks := n >> 8
	if n&0xff != 0 {
		chunks++
	}
	return chunks
}
