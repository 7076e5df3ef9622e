// Package migration runs versioned schema migrations in batches.
//
// Migrations register themselves from init() in database/migrations:
//
//	func init() {
//	    migration.Register("20260301000000_create_products_table", &CreateProductsTable{})
//	}
//
// Each Run applies every pending migration as one batch; Rollback reverses
// the most recent batch in reverse order.
package migration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/pkg/logger"
)

// Migration is the interface every migration must implement.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

// record is one row of the tracking table.
type record struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (record) TableName() string { return "schema_migrations" }

type entry struct {
	name string
	m    Migration
}

var (
	mu       sync.Mutex
	registry = map[string]Migration{}
)

// Register adds a migration. Names must be unique; they are applied in
// lexical order, so prefix them with a timestamp.
func Register(name string, m Migration) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("migration: %q registered twice", name))
	}
	registry[name] = m
}

func registered() []entry {
	mu.Lock()
	defer mu.Unlock()
	out := make([]entry, 0, len(registry))
	for name, m := range registry {
		out = append(out, entry{name: name, m: m})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Status describes one registered migration.
type Status struct {
	Name  string
	Ran   bool
	Batch int
}

// Runner executes and tracks migrations against one database.
type Runner struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Runner {
	return &Runner{db: db}
}

func (r *Runner) ensureTable(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&record{}); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}
	return nil
}

func (r *Runner) ran(ctx context.Context) (map[string]record, error) {
	var rows []record
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("migration: read tracking table: %w", err)
	}
	out := make(map[string]record, len(rows))
	for _, rec := range rows {
		out[rec.Name] = rec
	}
	return out, nil
}

// Run applies all pending migrations as a new batch and returns their names.
func (r *Runner) Run(ctx context.Context) ([]string, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	done, err := r.ran(ctx)
	if err != nil {
		return nil, err
	}

	var pending []entry
	for _, e := range registered() {
		if _, ok := done[e.name]; !ok {
			pending = append(pending, e)
		}
	}
	if len(pending) == 0 {
		logger.WithCtx(ctx).Info("migration: nothing to migrate")
		return nil, nil
	}

	batch, err := r.lastBatch(ctx)
	if err != nil {
		return nil, err
	}
	batch++

	applied := make([]string, 0, len(pending))
	for _, e := range pending {
		logger.WithCtx(ctx).Info("migration: running", "name", e.name, "batch", batch)
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := e.m.Up(tx); err != nil {
				return fmt.Errorf("migration: %s up: %w", e.name, err)
			}
			return tx.Create(&record{Name: e.name, Batch: batch}).Error
		})
		if err != nil {
			return applied, err
		}
		applied = append(applied, e.name)
	}

	logger.WithCtx(ctx).Info("migration: done", "ran", len(applied), "batch", batch)
	return applied, nil
}

// Rollback reverses every migration of the most recent batch and returns
// their names in the order they were undone.
func (r *Runner) Rollback(ctx context.Context) ([]string, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	batch, err := r.lastBatch(ctx)
	if err != nil || batch == 0 {
		return nil, err
	}

	var rows []record
	if err := r.db.WithContext(ctx).Where("batch = ?", batch).Order("name desc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("migration: read batch %d: %w", batch, err)
	}

	mu.Lock()
	lookup := make(map[string]Migration, len(registry))
	for k, v := range registry {
		lookup[k] = v
	}
	mu.Unlock()

	undone := make([]string, 0, len(rows))
	for _, rec := range rows {
		m, ok := lookup[rec.Name]
		if !ok {
			return undone, fmt.Errorf("migration: cannot roll back %s: not registered", rec.Name)
		}
		logger.WithCtx(ctx).Info("migration: rolling back", "name", rec.Name)
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := m.Down(tx); err != nil {
				return fmt.Errorf("migration: %s down: %w", rec.Name, err)
			}
			return tx.Delete(&record{}, rec.ID).Error
		})
		if err != nil {
			return undone, err
		}
		undone = append(undone, rec.Name)
	}
	return undone, nil
}

// Status lists every registered migration with its run state.
func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	done, err := r.ran(ctx)
	if err != nil {
		return nil, err
	}
	all := registered()
	out := make([]Status, 0, len(all))
	for _, e := range all {
		rec, ok := done[e.name]
		out = append(out, Status{Name: e.name, Ran: ok, Batch: rec.Batch})
	}
	return out, nil
}

func (r *Runner) lastBatch(ctx context.Context) (int, error) {
	var last struct{ Batch int }
	err := r.db.WithContext(ctx).Model(&record{}).Select("COALESCE(MAX(batch), 0) AS batch").Scan(&last).Error
	if err != nil {
		return 0, fmt.Errorf("migration: read batch: %w", err)
	}
	return last.Batch, nil
}
