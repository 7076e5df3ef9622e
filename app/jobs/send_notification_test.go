package jobs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bazaar/app/jobs"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	_ "github.com/shashiranjanraj/bazaar/database/migrations"
	"github.com/shashiranjanraj/bazaar/pkg/database"
	"github.com/shashiranjanraj/bazaar/pkg/migration"
	"github.com/shashiranjanraj/bazaar/pkg/queue"
)

func setup(t *testing.T) (*repositories.Store, *queue.Manager) {
	t.Helper()
	db, err := database.Open("sqlite", database.MemoryDSN(t.Name()))
	require.NoError(t, err)
	_, err = migration.New(db).Run(context.Background())
	require.NoError(t, err)

	store := repositories.New(db)
	q := queue.New(queue.NewMemoryDriver(), queue.WithRetry(2, 0), queue.WithFailedStore(db))
	jobs.Register(q, store)
	return store, q
}

func TestSendNotification_Stores(t *testing.T) {
	ctx := context.Background()
	store, q := setup(t)

	orderID := uint(9)
	require.NoError(t, q.Dispatch(ctx, jobs.SendNotificationJob, &jobs.SendNotification{
		UserID: 3, OrderID: &orderID, Type: "order", Title: "Order #9 placed", Message: "thanks",
	}))
	_, err := q.Drain(ctx)
	require.NoError(t, err)

	notes, err := store.Records.Notifications(ctx, 3, true)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Order #9 placed", notes[0].Title)
	require.NotNil(t, notes[0].OrderID)
	assert.Equal(t, uint(9), *notes[0].OrderID)
}

func TestSendNotification_InvalidLandsInFailedJobs(t *testing.T) {
	ctx := context.Background()
	_, q := setup(t)

	// No title: the record fails validation on every attempt.
	require.NoError(t, q.Dispatch(ctx, jobs.SendNotificationJob, &jobs.SendNotification{UserID: 3, Type: "order"}))
	_, err := q.Drain(ctx)
	require.NoError(t, err)

	failed, err := q.Failed(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, jobs.SendNotificationJob, failed[0].JobType)
}
