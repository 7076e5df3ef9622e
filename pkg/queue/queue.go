// Package queue runs background jobs with retries.
//
// Jobs are registered by name with a factory, dispatched as JSON envelopes
// onto a Driver, and handled by workers or by Drain:
//
//	q := queue.New(queue.NewMemoryDriver())
//	q.Register("notify", func() queue.Job { return &NotifyJob{store: store} })
//	_ = q.Dispatch(ctx, "notify", &NotifyJob{UserID: 7})
//	q.Start(ctx, 2)
//	defer q.Stop()
//
// A job that still fails after MaxAttempts is recorded as a FailedJob.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/pkg/logger"
)

// Job is one unit of background work.
type Job interface {
	Handle(ctx context.Context) error
}

// Driver stores envelopes. Pop waits up to wait for one; a zero wait never
// blocks. An empty queue yields (nil, nil).
type Driver interface {
	Push(ctx context.Context, payload []byte) error
	Pop(ctx context.Context, wait time.Duration) ([]byte, error)
}

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type Manager struct {
	driver      Driver
	db          *gorm.DB
	maxAttempts int
	backoff     time.Duration

	mu       sync.RWMutex
	registry map[string]func() Job
	failed   []FailedJob

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type Option func(*Manager)

// WithFailedStore persists exhausted jobs to db in addition to memory.
func WithFailedStore(db *gorm.DB) Option { return func(m *Manager) { m.db = db } }

// WithRetry sets the attempt budget and the linear backoff step between
// attempts.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(m *Manager) {
		if attempts > 0 {
			m.maxAttempts = attempts
		}
		m.backoff = backoff
	}
}

func New(driver Driver, opts ...Option) *Manager {
	m := &Manager{
		driver:      driver,
		maxAttempts: 3,
		backoff:     time.Second,
		registry:    map[string]func() Job{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register makes a job type decodable by name.
func (m *Manager) Register(name string, factory func() Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registry[name] = factory
}

// Dispatch queues job under the registered name.
func (m *Manager) Dispatch(ctx context.Context, name string, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("queue: marshal %s: %w", name, err)
	}
	env, err := json.Marshal(envelope{Type: name, Payload: payload})
	if err != nil {
		return fmt.Errorf("queue: marshal envelope: %w", err)
	}
	return m.driver.Push(ctx, env)
}

// Start launches n workers that poll the driver until Stop.
func (m *Manager) Start(ctx context.Context, n int) {
	ctx, m.cancel = context.WithCancel(ctx)
	for i := 0; i < n; i++ {
		m.wg.Add(1)
		go m.work(ctx)
	}
	logger.WithCtx(ctx).Info("queue: workers started", "count", n)
}

// Stop cancels the workers and waits for in-flight jobs.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}

// Drain handles every queued job on the calling goroutine and returns how
// many it took off the queue.
func (m *Manager) Drain(ctx context.Context) (int, error) {
	n := 0
	for {
		raw, err := m.driver.Pop(ctx, 0)
		if err != nil {
			return n, err
		}
		if raw == nil {
			return n, nil
		}
		m.process(ctx, raw)
		n++
	}
}

func (m *Manager) work(ctx context.Context) {
	defer m.wg.Done()
	for ctx.Err() == nil {
		raw, err := m.driver.Pop(ctx, time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.WithCtx(ctx).Warn("queue: pop failed", "error", err)
			sleep(ctx, 500*time.Millisecond)
			continue
		}
		if raw != nil {
			m.process(context.WithoutCancel(ctx), raw)
		}
	}
}

func (m *Manager) process(ctx context.Context, raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.WithCtx(ctx).Error("queue: bad envelope", "error", err)
		return
	}

	m.mu.RLock()
	factory, ok := m.registry[env.Type]
	m.mu.RUnlock()
	if !ok {
		logger.WithCtx(ctx).Warn("queue: unregistered job type", "type", env.Type)
		return
	}

	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		logger.WithCtx(ctx).Error("queue: unmarshal payload", "type", env.Type, "error", err)
		return
	}
	m.runWithRetry(ctx, env, job)
}

func (m *Manager) runWithRetry(ctx context.Context, env envelope, job Job) {
	var lastErr error
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		lastErr = handle(ctx, job)
		if lastErr == nil {
			logger.WithCtx(ctx).Debug("queue: job processed", "type", env.Type, "attempt", attempt)
			return
		}
		logger.WithCtx(ctx).Warn("queue: job failed", "type", env.Type, "attempt", attempt, "error", lastErr)
		if attempt < m.maxAttempts {
			sleep(ctx, time.Duration(attempt)*m.backoff)
		}
	}
	m.recordFailure(ctx, env, lastErr)
}

func handle(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("queue: job panicked: %v", r)
		}
	}()
	return job.Handle(ctx)
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
