package usecases

import (
	"sync"

	"github.com/flowgraph/stategraph/internal/infrastructure/metrics"
)

// dispatcher runs step invocations on worker execution contexts. The
// executor is the only caller; dispatch is never invoked after stop.
type dispatcher interface {
	dispatch(fn func())
	stop()
}

// newDispatcher returns an unbounded dispatcher when size <= 0, otherwise a
// fixed-size worker pool.
func newDispatcher(size int) dispatcher {
	if size <= 0 {
		return &goDispatcher{}
	}
	return newWorkerPool(size)
}

// goDispatcher runs every task on its own goroutine.
type goDispatcher struct {
	wg sync.WaitGroup
}

func (d *goDispatcher) dispatch(fn func()) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		fn()
	}()
}

func (d *goDispatcher) stop() {
	d.wg.Wait()
}

// workerPool bounds concurrency with a fixed worker set fed from one queue.
type workerPool struct {
	tasks chan func()
	wg    sync.WaitGroup
}

func newWorkerPool(size int) *workerPool {
	p := &workerPool{
		tasks: make(chan func(), size),
	}
	metrics.SetPoolWorkers(size)
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *workerPool) worker() {
	defer p.wg.Done()
	for fn := range p.tasks {
		fn()
	}
}

func (p *workerPool) dispatch(fn func()) {
	metrics.AddTasksQueued(1)
	p.tasks <- fn
}

func (p *workerPool) stop() {
	close(p.tasks)
	p.wg.Wait()
}
