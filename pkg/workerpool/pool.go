// Package workerpool runs tasks on a fixed set of goroutines with a bounded
// queue.
//
//	pool := workerpool.New(4)
//	defer pool.Shutdown()
//
//	if err := pool.Submit(task); errors.Is(err, workerpool.ErrPoolFull) {
//	    task() // caller absorbs the overflow
//	}
package workerpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/shashiranjanraj/bazaar/pkg/logger"
)

var (
	// ErrPoolFull is returned by Submit when the queue is at capacity.
	ErrPoolFull = errors.New("workerpool: pool is full")
	// ErrPoolClosed is returned after Shutdown.
	ErrPoolClosed = errors.New("workerpool: pool is closed")
)

type Pool struct {
	tasks   chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	pending atomic.Int64
}

// New starts size workers. The queue holds twice as many tasks as there are
// workers.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{tasks: make(chan func(), size*2)}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit queues task without blocking.
func (p *Pool) Submit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	p.pending.Add(1)
	select {
	case p.tasks <- task:
		return nil
	default:
		p.pending.Add(-1)
		return ErrPoolFull
	}
}

// SubmitWait queues task, blocking until there is room, ctx is done or the
// pool is shut down.
func (p *Pool) SubmitWait(ctx context.Context, task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	p.pending.Add(1)
	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		p.pending.Add(-1)
		return ctx.Err()
	}
}

// Pending is the number of queued or running tasks.
func (p *Pool) Pending() int { return int(p.pending.Load()) }

// Shutdown stops accepting tasks and waits for queued ones to finish. Safe to
// call more than once.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.tasks)
		p.mu.Unlock()
		p.wg.Wait()
	})
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

func (p *Pool) run(task func()) {
	defer p.pending.Add(-1)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("workerpool: task panicked", "panic", r)
		}
	}()
	task()
}
