package grid

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

type evaluatorImpl struct {
	mu       *sync.Mutex
	device   *wgpu.Device
	queue    *wgpu.Queue
	pipeline *wgpu.ComputePipeline
}

// Evaluator applies a per-vertex compute transform to generated grids
// in place. Evaluators are created by Generator.CreateEvaluator and share
// the generator's fixed single-storage-buffer layout.
type Evaluator interface {
	// EvaluateBuffers dispatches the evaluation kernel over every given
	// grid's vertex buffer, all encoded in one compute pass and submitted
	// as one command buffer. Index buffers are never touched. Re-running
	// with identical kernel state is idempotent.
	//
	// Parameters:
	//   - buffers: the grids to evaluate; a nil or empty call is a no-op
	//
	// Returns:
	//   - error: an error if command encoding or submission setup failed
	EvaluateBuffers(buffers ...*GridBuffers) error

	// Release drops the evaluator's compute pipeline.
	Release()
}

var _ Evaluator = &evaluatorImpl{}

func (e *evaluatorImpl) EvaluateBuffers(buffers ...*GridBuffers) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(buffers) == 0 {
		return nil
	}

	encoder, err := e.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("failed to create command encoder: %w", err)
	}

	pass := encoder.BeginComputePass(nil)
	for _, b := range buffers {
		pass.SetPipeline(e.pipeline)
		pass.SetBindGroup(0, b.evaluatorBindGroup, nil)
		pass.DispatchWorkgroups(b.evaluatorDispatchCount, 1, 1)
	}
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		return fmt.Errorf("failed to finish evaluation commands: %w", err)
	}
	e.queue.Submit(commandBuffer)
	commandBuffer.Release()
	encoder.Release()

	return nil
}

func (e *evaluatorImpl) Release() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pipeline != nil {
		e.pipeline.Release()
		e.pipeline = nil
	}
}
