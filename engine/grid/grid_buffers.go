package grid

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// GridBuffers holds the GPU-resident geometry of one generated grid.
// Instances are produced by Generator.Generate and consumed by the render
// pass (vertex/index buffers) and by Evaluators (the cached bind group).
type GridBuffers struct {
	VertexBuffer *wgpu.Buffer
	IndexBuffer  *wgpu.Buffer
	VertexCount  uint32
	IndexCount   uint32
	IndexFormat  wgpu.IndexFormat

	// Cached evaluator state built at generation time so EvaluateBuffers
	// never allocates: the bind group over the vertex buffer and the number
	// of 256-wide workgroups covering VertexCount.
	evaluatorBindGroup     *wgpu.BindGroup
	evaluatorDispatchCount uint32
}

// Release drops all GPU handles held by this grid. The owner must call it
// before installing a replacement grid; every handle is invalid afterwards.
func (g *GridBuffers) Release() {
	if g.evaluatorBindGroup != nil {
		g.evaluatorBindGroup.Release()
		g.evaluatorBindGroup = nil
	}
	if g.VertexBuffer != nil {
		g.VertexBuffer.Release()
		g.VertexBuffer = nil
	}
	if g.IndexBuffer != nil {
		g.IndexBuffer.Release()
		g.IndexBuffer = nil
	}
	g.VertexCount = 0
	g.IndexCount = 0
	g.evaluatorDispatchCount = 0
}
