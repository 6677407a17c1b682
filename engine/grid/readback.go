package grid

import (
	"fmt"
	"unsafe"

	"github.com/gridforge/gridforge/common"

	"github.com/cogentcore/webgpu/wgpu"
)

func (g *generatorImpl) ReadVertices(buffers *GridBuffers) ([]Vertex, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	size := uint64(buffers.VertexCount) * uint64(unsafe.Sizeof(Vertex{}))
	data, err := g.readBuffer(buffers.VertexBuffer, size, g.label+" Vertex Staging Buffer")
	if err != nil {
		return nil, err
	}

	vertices := make([]Vertex, buffers.VertexCount)
	copy(vertices, common.BytesToSlice[Vertex](data))
	return vertices, nil
}

func (g *generatorImpl) ReadIndices(buffers *GridBuffers) ([]uint32, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	size := uint64(buffers.IndexCount) * 4
	data, err := g.readBuffer(buffers.IndexBuffer, size, g.label+" Index Staging Buffer")
	if err != nil {
		return nil, err
	}

	indices := make([]uint32, buffers.IndexCount)
	copy(indices, common.BytesToSlice[uint32](data))
	return indices, nil
}

// readBuffer copies src into a MapRead staging buffer, blocks until the map
// completes, and returns an owned copy of the bytes.
func (g *generatorImpl) readBuffer(src *wgpu.Buffer, size uint64, label string) ([]byte, error) {
	staging, err := g.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create staging buffer: %w", err)
	}
	defer staging.Release()

	encoder, err := g.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create command encoder: %w", err)
	}
	encoder.CopyBufferToBuffer(src, 0, staging, 0, size)
	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		return nil, fmt.Errorf("failed to finish readback commands: %w", err)
	}
	g.queue.Submit(commandBuffer)
	commandBuffer.Release()
	encoder.Release()

	var status wgpu.BufferMapAsyncStatus
	err = staging.MapAsync(wgpu.MapModeRead, 0, size, func(s wgpu.BufferMapAsyncStatus) {
		status = s
	})
	if err != nil {
		return nil, fmt.Errorf("failed to map staging buffer: %w", err)
	}

	// Blocking poll drives the map callback to completion.
	g.device.Poll(true, nil)
	if status != wgpu.BufferMapAsyncStatusSuccess {
		return nil, fmt.Errorf("staging buffer map failed with status %v", status)
	}

	mapped := staging.GetMappedRange(0, uint(size))
	data := make([]byte, len(mapped))
	copy(data, mapped)
	staging.Unmap()

	return data, nil
}
