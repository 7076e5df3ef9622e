// Package audit keeps an append-only trail of aggregate lifecycle changes
// (order placed, status changed). Orders are never deleted, and the trail
// answers "how did this order get here".
//
// Two sinks are provided: MemoryTrail for tests and single-process tools,
// and MongoTrail which batches writes to a MongoDB collection off the
// caller's path.
package audit

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Entry is one recorded change.
type Entry struct {
	Time     time.Time         `bson:"time"`
	Entity   string            `bson:"entity"`
	EntityID uint              `bson:"entity_id"`
	Action   string            `bson:"action"`
	From     string            `bson:"from,omitempty"`
	To       string            `bson:"to,omitempty"`
	UserID   uint              `bson:"user_id,omitempty"`
	Attrs    map[string]string `bson:"attrs,omitempty"`
}

// Trail records and replays entries.
type Trail interface {
	Record(ctx context.Context, e Entry) error
	History(ctx context.Context, entity string, id uint) ([]Entry, error)
	Close(ctx context.Context) error
}

// MemoryTrail is an in-process Trail.
type MemoryTrail struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewMemoryTrail() *MemoryTrail { return &MemoryTrail{} }

func (m *MemoryTrail) Record(_ context.Context, e Entry) error {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	m.mu.Lock()
	m.entries = append(m.entries, e)
	m.mu.Unlock()
	return nil
}

// History returns the entries for one entity, oldest first.
func (m *MemoryTrail) History(_ context.Context, entity string, id uint) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Entry
	for _, e := range m.entries {
		if e.Entity == entity && e.EntityID == id {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

// Len returns the number of recorded entries.
func (m *MemoryTrail) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *MemoryTrail) Close(context.Context) error { return nil }

// Open returns a MongoTrail when uri is set and a MemoryTrail otherwise.
func Open(ctx context.Context, uri, db, collection string) (Trail, error) {
	if uri == "" {
		return NewMemoryTrail(), nil
	}
	return NewMongoTrail(ctx, uri, db, collection)
}
