// Package seeders fills a migrated database with demo data. Seeders
// register from init() and run in registration order:
//
//	func init() {
//	    seeders.Register("demo_catalog", seedDemoCatalog)
//	}
//
// `bazaar seed` runs them all, `bazaar seed --only demo_catalog` a subset.
package seeders

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/pkg/logger"
)

// Seeder writes demo rows through db, which is already a transaction.
type Seeder func(ctx context.Context, db *gorm.DB) error

type named struct {
	name string
	run  Seeder
}

var (
	mu       sync.Mutex
	registry []named
)

// Register appends a seeder. Names must be unique.
func Register(name string, s Seeder) {
	mu.Lock()
	defer mu.Unlock()
	for _, n := range registry {
		if n.name == name {
			panic(fmt.Sprintf("seeders: %q registered twice", name))
		}
	}
	registry = append(registry, named{name: name, run: s})
}

// Names lists the registered seeders in run order.
func Names() []string {
	mu.Lock()
	defer mu.Unlock()
	out := make([]string, len(registry))
	for i, n := range registry {
		out[i] = n.name
	}
	return out
}

// RunAll runs every registered seeder.
func RunAll(ctx context.Context, db *gorm.DB) error { return Run(ctx, db) }

// Run runs the named seeders, or all of them when names is empty, each in
// its own transaction. An unknown name fails before anything runs.
func Run(ctx context.Context, db *gorm.DB, names ...string) error {
	selected, err := pick(names)
	if err != nil {
		return err
	}
	for _, n := range selected {
		logger.WithCtx(ctx).Info("seed: running", "seeder", n.name)
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return n.run(ctx, tx)
		})
		if err != nil {
			return fmt.Errorf("seeder %q: %w", n.name, err)
		}
	}
	return nil
}

func pick(names []string) ([]named, error) {
	mu.Lock()
	defer mu.Unlock()
	if len(names) == 0 {
		return append([]named(nil), registry...), nil
	}
	want := make(map[string]bool, len(names))
	for _, name := range names {
		want[name] = true
	}
	var out []named
	for _, n := range registry {
		if want[n.name] {
			out = append(out, n)
			delete(want, n.name)
		}
	}
	for name := range want {
		return nil, fmt.Errorf("seeders: unknown seeder %q", name)
	}
	return out, nil
}
