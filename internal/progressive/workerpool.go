package progressive

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/qxsch/freerdp-web-sub001/internal/logging"
)

var log = logging.L("progressive")

// tileTask is a unit of work submitted to a workerPool: Session.PrewarmUpdated
// submits one task per updated tile, each rebuilding that tile's RGBA cache,
// so many updated tiles fan out across workers instead of rebuilding serially.
type tileTask func()

// workerPool is a bounded goroutine pool with a fixed-size task queue, used
// to fan tile RGBA rebuilds out across a configurable worker count
// (ProgressiveWorkerCount in the daemon config).
type workerPool struct {
	maxWorkers int
	queue      chan tileTask
	wg         sync.WaitGroup
	accepting  atomic.Bool
	stopOnce   sync.Once
	closeOnce  sync.Once
	stopChan   chan struct{}
	ctx        context.Context
	cancel     context.CancelFunc
}

// newWorkerPool creates a pool with maxWorkers goroutines and a task queue
// of queueSize.
func newWorkerPool(maxWorkers, queueSize int) *workerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &workerPool{
		maxWorkers: maxWorkers,
		queue:      make(chan tileTask, queueSize),
		stopChan:   make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}
	p.accepting.Store(true)

	for i := 0; i < maxWorkers; i++ {
		go p.worker()
	}

	log.Debug("tile decode worker pool started", "workers", maxWorkers, "queueSize", queueSize)
	return p
}

// Context returns a context cancelled once the pool has been shut down.
func (p *workerPool) Context() context.Context {
	return p.ctx
}

// Submit enqueues a task. Returns false if the pool is stopped or the queue
// is full, in which case the caller runs the work inline.
func (p *workerPool) Submit(task tileTask) bool {
	if !p.accepting.Load() {
		return false
	}

	p.wg.Add(1)
	select {
	case p.queue <- task:
		return true
	default:
		p.wg.Done()
		return false
	}
}

// StopAccepting prevents new tasks from being submitted.
func (p *workerPool) StopAccepting() {
	p.accepting.Store(false)
}

// Shutdown stops accepting new tasks and drains in-flight ones, respecting
// the context deadline.
func (p *workerPool) Shutdown(ctx context.Context) {
	p.StopAccepting()
	p.Drain(ctx)
	p.cancel()
}

// Drain waits for all in-flight and queued tasks to complete.
func (p *workerPool) Drain(ctx context.Context) {
	p.stopOnce.Do(func() {
		close(p.stopChan)
	})

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.Warn("tile decode worker pool drain timed out")
	}

	p.closeOnce.Do(func() {
		close(p.queue)
	})
}

func (p *workerPool) worker() {
	for {
		select {
		case task, ok := <-p.queue:
			if !ok {
				return
			}
			p.runTask(task)
		case <-p.stopChan:
			for {
				select {
				case task, ok := <-p.queue:
					if !ok {
						return
					}
					p.runTask(task)
				default:
					return
				}
			}
		}
	}
}

func (p *workerPool) runTask(task tileTask) {
	defer p.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Error("tile decode task panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	task()
}
