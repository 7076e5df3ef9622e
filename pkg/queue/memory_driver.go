package queue

import (
	"context"
	"time"
)

// MemoryDriver is an in-process channel queue. Not durable.
type MemoryDriver struct {
	ch chan []byte
}

// NewMemoryDriver buffers up to 1000 jobs.
func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{ch: make(chan []byte, 1000)}
}

func (d *MemoryDriver) Push(ctx context.Context, payload []byte) error {
	select {
	case d.ch <- payload:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *MemoryDriver) Pop(ctx context.Context, wait time.Duration) ([]byte, error) {
	if wait <= 0 {
		select {
		case payload := <-d.ch:
			return payload, nil
		default:
			return nil, nil
		}
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case payload := <-d.ch:
		return payload, nil
	case <-t.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len is the number of queued jobs.
func (d *MemoryDriver) Len() int { return len(d.ch) }
