package queue

import (
	"context"
	"time"

	"github.com/shashiranjanraj/bazaar/pkg/logger"
)

// FailedJob is a job that exhausted its attempts.
type FailedJob struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	JobType  string    `gorm:"size:255;not null;index"  json:"job_type"`
	Payload  string    `gorm:"type:text;not null"       json:"payload"`
	Error    string    `gorm:"type:text"                json:"error"`
	Attempts int       `gorm:"not null;default:0"       json:"attempts"`
	FailedAt time.Time `gorm:"autoCreateTime"           json:"failed_at"`
}

func (FailedJob) TableName() string { return "failed_jobs" }

func (m *Manager) recordFailure(ctx context.Context, env envelope, cause error) {
	f := FailedJob{
		JobType:  env.Type,
		Payload:  string(env.Payload),
		Error:    cause.Error(),
		Attempts: m.maxAttempts,
		FailedAt: time.Now().UTC(),
	}
	logger.WithCtx(ctx).Error("queue: job exhausted retries", "type", env.Type, "error", cause)

	if m.db != nil {
		if err := m.db.WithContext(ctx).Create(&f).Error; err != nil {
			logger.WithCtx(ctx).Error("queue: persist failed job", "type", env.Type, "error", err)
		}
	}
	m.mu.Lock()
	m.failed = append(m.failed, f)
	m.mu.Unlock()
}

// Failed lists exhausted jobs, from the database when one is attached.
func (m *Manager) Failed(ctx context.Context) ([]FailedJob, error) {
	if m.db != nil {
		var rows []FailedJob
		err := m.db.WithContext(ctx).Order("id").Find(&rows).Error
		return rows, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]FailedJob, len(m.failed))
	copy(out, m.failed)
	return out, nil
}
