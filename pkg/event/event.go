// Package event provides a synchronous/async event dispatcher.
//
// Listeners are registered on a Dispatcher by event name and receive the
// context of the operation that fired the event:
//
//	d.Listen("order.placed", func(ctx context.Context, payload interface{}) { ... })
//	d.Fire(ctx, "order.placed", evt)
//
// Listeners registered with ListenAsync run on the dispatcher's worker pool
// instead of the caller's goroutine.
package event

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/workerpool"
)

// Handler receives an event payload.
type Handler func(ctx context.Context, payload interface{})

type listener struct {
	h     Handler
	async bool
}

type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[string][]listener
	pool      *workerpool.Pool
	poolWait  time.Duration
	wg        sync.WaitGroup
}

const defaultPoolWait = 100 * time.Millisecond

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithPool runs async listeners on p. Without it each async call gets its
// own goroutine.
func WithPool(p *workerpool.Pool) Option {
	return func(d *Dispatcher) { d.pool = p }
}

// WithPoolWait bounds how long Fire waits for room on a full pool before the
// listener is given its own goroutine.
func WithPoolWait(wait time.Duration) Option {
	return func(d *Dispatcher) { d.poolWait = wait }
}

func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{listeners: map[string][]listener{}, poolWait: defaultPoolWait}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Listen registers a handler for the given event name.
func (d *Dispatcher) Listen(event string, h Handler) {
	d.add(event, listener{h: h})
}

// ListenAsync registers a handler that never runs on the firing goroutine.
func (d *Dispatcher) ListenAsync(event string, h Handler) {
	d.add(event, listener{h: h, async: true})
}

func (d *Dispatcher) add(event string, l listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[event] = append(d.listeners[event], l)
}

func (d *Dispatcher) snapshot(event string) []listener {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ls := make([]listener, len(d.listeners[event]))
	copy(ls, d.listeners[event])
	return ls
}

// Fire runs synchronous listeners in registration order and hands async ones
// to the pool. A panicking listener is logged and does not stop the others.
func (d *Dispatcher) Fire(ctx context.Context, event string, payload interface{}) {
	for _, l := range d.snapshot(event) {
		if l.async {
			d.async(ctx, event, l.h, payload)
			continue
		}
		d.call(ctx, event, l.h, payload)
	}
}

// FireAsync dispatches the event to every listener off the caller's
// goroutine and returns immediately. Wait blocks until they finish.
func (d *Dispatcher) FireAsync(ctx context.Context, event string, payload interface{}) {
	for _, l := range d.snapshot(event) {
		d.async(ctx, event, l.h, payload)
	}
}

// Wait blocks until every async listener has returned.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// Flush removes all listeners.
func (d *Dispatcher) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = map[string][]listener{}
}

func (d *Dispatcher) async(ctx context.Context, event string, h Handler, payload interface{}) {
	ctx = context.WithoutCancel(ctx)
	d.wg.Add(1)
	task := func() {
		defer d.wg.Done()
		d.call(ctx, event, h, payload)
	}
	if d.pool == nil {
		go task()
		return
	}
	err := d.pool.Submit(task)
	if errors.Is(err, workerpool.ErrPoolFull) {
		logger.WithCtx(ctx).Debug("event: pool full, waiting for room",
			"event", event, "pending", d.pool.Pending())
		waitCtx, cancel := context.WithTimeout(ctx, d.poolWait)
		err = d.pool.SubmitWait(waitCtx, task)
		cancel()
	}
	if err != nil {
		logger.WithCtx(ctx).Warn("event: pool unavailable, running listener on its own goroutine",
			"event", event, "error", err)
		go task()
	}
}

func (d *Dispatcher) call(ctx context.Context, event string, h Handler, payload interface{}) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithCtx(ctx).Error("event: listener panicked", "event", event, "panic", r)
		}
	}()
	h(ctx, payload)
}
