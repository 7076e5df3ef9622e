// Package jobs holds the background jobs run by pkg/queue.
package jobs

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/pkg/queue"
)

const SendNotificationJob = "notification.send"

// SendNotification stores an in-app notification for a user.
type SendNotification struct {
	UserID  uint   `json:"user_id"`
	OrderID *uint  `json:"order_id,omitempty"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`

	records *repositories.RecordRepository
}

func (j *SendNotification) Handle(ctx context.Context) error {
	if j.records == nil {
		return fmt.Errorf("jobs: %s has no record repository", SendNotificationJob)
	}
	return j.records.CreateNotification(ctx, &models.Notification{
		UserID:  j.UserID,
		OrderID: j.OrderID,
		Type:    j.Type,
		Title:   j.Title,
		Message: j.Message,
	})
}

// Register binds every job type to q.
func Register(q *queue.Manager, store *repositories.Store) {
	q.Register(SendNotificationJob, func() queue.Job {
		return &SendNotification{records: store.Records}
	})
}
