package renderer

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/df07/fp-pathtracer/pkg/integrator"
)

// FrameFunc renders the frame for one seed and reports the work it did
type FrameFunc func(seed int64) (*SampleBuffer, integrator.Counters)

// FrameTask represents a frame rendering task for the worker pool
type FrameTask struct {
	Index int   // Position of the frame in the render, for ordered merging
	Seed  int64 // Seed for the frame's random generator
}

// FrameResult contains the result from rendering a frame
type FrameResult struct {
	Index    int
	Seed     int64
	Buffer   *SampleBuffer
	Counters integrator.Counters
	Duration time.Duration
	Err      error
}

// WorkerPool manages parallel frame rendering
type WorkerPool struct {
	taskQueue   chan FrameTask
	resultQueue chan FrameResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
}

// Worker handles individual frame rendering tasks
type Worker struct {
	ID          int
	render      FrameFunc
	taskQueue   chan FrameTask
	resultQueue chan FrameResult
}

// NewWorkerPool creates a worker pool with the specified number of workers
func NewWorkerPool(render FrameFunc, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	// At most one wave of numWorkers tasks is in flight
	wp := &WorkerPool{
		taskQueue:   make(chan FrameTask, numWorkers),
		resultQueue: make(chan FrameResult, numWorkers),
		numWorkers:  numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		worker := &Worker{
			ID:          i,
			render:      render,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		}
		wp.workers = append(wp.workers, worker)
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop gracefully shuts down all workers
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue) // No more tasks
	wp.wg.Wait()        // Wait for workers to finish
	close(wp.resultQueue)
}

// SubmitTask submits a frame task to the worker pool
func (wp *WorkerPool) SubmitTask(task FrameTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed frame result
func (wp *WorkerPool) GetResult() (FrameResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		w.resultQueue <- w.execute(task)
	}
}

// execute renders one frame, turning a panic into a task error
func (w *Worker) execute(task FrameTask) (result FrameResult) {
	result = FrameResult{Index: task.Index, Seed: task.Seed}
	start := time.Now()

	defer func() {
		result.Duration = time.Since(start)
		if r := recover(); r != nil {
			result.Buffer = nil
			result.Err = fmt.Errorf("%w: frame %d (seed %d) on worker %d: %v", ErrTaskFailed, task.Index, task.Seed, w.ID, r)
		}
	}()

	result.Buffer, result.Counters = w.render(task.Seed)
	return result
}
