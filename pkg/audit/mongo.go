package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/bazaar/pkg/logger"
)

const (
	mongoQueueSize = 4096
	mongoBatchSize = 50
	mongoDrainTick = 2 * time.Second
)

// MongoTrail writes entries to MongoDB asynchronously. Record never blocks:
// entries go to a buffered channel drained by one goroutine with
// InsertMany. When the buffer is full the entry is dropped and counted.
type MongoTrail struct {
	col     *mongo.Collection
	client  *mongo.Client
	queue   chan Entry
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once

	mu      sync.Mutex
	dropped int
}

// NewMongoTrail connects to uri and starts the drain loop. The caller must
// call Close.
func NewMongoTrail(ctx context.Context, uri, db, collection string) (*MongoTrail, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOpts := options.Client().ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("audit: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("audit: ping: %w", err)
	}

	col := client.Database(db).Collection(collection)
	_, err = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "entity", Value: 1}, {Key: "entity_id", Value: 1}, {Key: "time", Value: 1}},
	})
	if err != nil {
		logger.Warn("audit: index creation failed", "error", err)
	}

	t := &MongoTrail{
		col:     col,
		client:  client,
		queue:   make(chan Entry, mongoQueueSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go t.drainLoop()
	return t, nil
}

func (t *MongoTrail) Record(_ context.Context, e Entry) error {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	select {
	case <-t.done:
		return fmt.Errorf("audit: trail closed")
	default:
	}
	select {
	case t.queue <- e:
	default:
		t.mu.Lock()
		t.dropped++
		t.mu.Unlock()
	}
	return nil
}

// History reads an entity's entries back, oldest first. Entries still in
// the write buffer are not visible yet.
func (t *MongoTrail) History(ctx context.Context, entity string, id uint) ([]Entry, error) {
	cur, err := t.col.Find(ctx,
		historyFilter(entity, id),
		options.Find().SetSort(bson.D{{Key: "time", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("audit: find: %w", err)
	}
	var out []Entry
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("audit: decode: %w", err)
	}
	return out, nil
}

// Dropped returns how many entries were discarded because the buffer was full.
func (t *MongoTrail) Dropped() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped
}

// Close flushes buffered entries and disconnects. Safe to call twice.
func (t *MongoTrail) Close(ctx context.Context) error {
	t.once.Do(func() { close(t.done) })
	<-t.stopped
	return t.client.Disconnect(ctx)
}

func (t *MongoTrail) drainLoop() {
	defer close(t.stopped)

	ticker := time.NewTicker(mongoDrainTick)
	defer ticker.Stop()

	batch := make([]interface{}, 0, mongoBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := t.col.InsertMany(ctx, batch); err != nil {
			logger.Error("audit: insert failed", "entries", len(batch), "error", err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case e := <-t.queue:
			batch = append(batch, e)
			if len(batch) >= mongoBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-t.done:
			for len(t.queue) > 0 {
				batch = append(batch, <-t.queue)
				if len(batch) >= mongoBatchSize {
					flush()
				}
			}
			flush()
			return
		}
	}
}

func historyFilter(entity string, id uint) bson.D {
	return bson.D{{Key: "entity", Value: entity}, {Key: "entity_id", Value: id}}
}
