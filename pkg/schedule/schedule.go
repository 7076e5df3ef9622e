// Package schedule runs periodic tasks from a long-lived process.
//
//	s := schedule.New()
//	s.Every(time.Hour, "low-stock-report", report)
//	s.Cron("0 3 * * *", "nightly", nightly)
//	s.Run(ctx) // blocks until ctx is done
//
// A task never overlaps with its own previous run.
package schedule

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/bazaar/pkg/logger"
)

// Task is one scheduled unit of work.
type Task func(ctx context.Context) error

type entry struct {
	name     string
	interval time.Duration
	cron     string
	task     Task

	mu       sync.Mutex
	lastRun  time.Time
	lastCron time.Time
	running  bool
}

type Scheduler struct {
	mu      sync.Mutex
	entries []*entry
	tick    time.Duration
	wg      sync.WaitGroup
}

func New() *Scheduler {
	return &Scheduler{tick: time.Second}
}

// Every runs task every d, starting on the first tick.
func (s *Scheduler) Every(d time.Duration, name string, task Task) {
	s.add(&entry{name: name, interval: d, task: task})
}

// Cron runs task whenever the 5-field expression (min hour dom mon dow)
// matches the current minute. Fields accept *, n, */step and a-b.
func (s *Scheduler) Cron(expr, name string, task Task) error {
	if len(strings.Fields(expr)) != 5 {
		return fmt.Errorf("schedule: %q is not a 5-field cron expression", expr)
	}
	s.add(&entry{name: name, cron: expr, task: task})
	return nil
}

func (s *Scheduler) add(e *entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
}

// List describes the registered entries.
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		freq := e.cron
		if freq == "" {
			freq = e.interval.String()
		}
		out = append(out, fmt.Sprintf("%s [%s]", e.name, freq))
	}
	return out
}

// Run dispatches due tasks until ctx is done, then waits for running ones.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	defer s.wg.Wait()

	s.Tick(ctx, time.Now())
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Tick(ctx, now)
		}
	}
}

// Tick starts every task due at now.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	s.mu.Lock()
	current := make([]*entry, len(s.entries))
	copy(current, s.entries)
	s.mu.Unlock()

	for _, e := range current {
		if e.claim(now) {
			s.dispatch(ctx, e)
		}
	}
}

// Wait blocks until every started task has returned.
func (s *Scheduler) Wait() { s.wg.Wait() }

// claim marks e running when it is due at now.
func (e *entry) claim(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return false
	}
	if e.cron != "" {
		minute := now.Truncate(time.Minute)
		if minute.Equal(e.lastCron) || !matchCron(e.cron, now) {
			return false
		}
		e.lastCron = minute
	} else if !e.lastRun.IsZero() && now.Sub(e.lastRun) < e.interval {
		return false
	}
	e.running = true
	e.lastRun = now
	return true
}

func (s *Scheduler) dispatch(ctx context.Context, e *entry) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.WithCtx(ctx).Error("schedule: task panicked", "task", e.name, "panic", r)
			}
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
		}()

		logger.WithCtx(ctx).Debug("schedule: running task", "task", e.name)
		if err := e.task(ctx); err != nil {
			logger.WithCtx(ctx).Error("schedule: task failed", "task", e.name, "error", err)
		}
	}()
}

func matchCron(expr string, t time.Time) bool {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return false
	}
	values := []int{t.Minute(), t.Hour(), t.Day(), int(t.Month()), int(t.Weekday())}
	for i, f := range fields {
		if !matchField(f, values[i]) {
			return false
		}
	}
	return true
}

func matchField(field string, val int) bool {
	switch {
	case field == "*":
		return true
	case strings.HasPrefix(field, "*/"):
		step, err := strconv.Atoi(field[2:])
		return err == nil && step > 0 && val%step == 0
	case strings.Contains(field, "-"):
		lo, hi, _ := strings.Cut(field, "-")
		a, err1 := strconv.Atoi(lo)
		b, err2 := strconv.Atoi(hi)
		return err1 == nil && err2 == nil && val >= a && val <= b
	default:
		n, err := strconv.Atoi(field)
		return err == nil && n == val
	}
}
