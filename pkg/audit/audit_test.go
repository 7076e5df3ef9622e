package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMemoryTrail_HistoryIsPerEntityAndOrdered(t *testing.T) {
	ctx := context.Background()
	trail := NewMemoryTrail()
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, trail.Record(ctx, Entry{Time: base.Add(time.Minute), Entity: "order", EntityID: 1, Action: "status_changed", From: "PENDING", To: "CONFIRMED"}))
	require.NoError(t, trail.Record(ctx, Entry{Time: base, Entity: "order", EntityID: 1, Action: "placed"}))
	require.NoError(t, trail.Record(ctx, Entry{Time: base, Entity: "order", EntityID: 2, Action: "placed"}))
	require.NoError(t, trail.Record(ctx, Entry{Entity: "shop", EntityID: 1, Action: "approved"}))

	h, err := trail.History(ctx, "order", 1)
	require.NoError(t, err)
	require.Len(t, h, 2)
	assert.Equal(t, "placed", h[0].Action)
	assert.Equal(t, "CONFIRMED", h[1].To)
	assert.Equal(t, 4, trail.Len())

	shop, _ := trail.History(ctx, "shop", 1)
	require.Len(t, shop, 1)
	assert.False(t, shop[0].Time.IsZero(), "time stamped on record")
}

func TestOpen_WithoutURIUsesMemory(t *testing.T) {
	trail, err := Open(context.Background(), "", "db", "coll")
	require.NoError(t, err)
	_, ok := trail.(*MemoryTrail)
	assert.True(t, ok)
	assert.NoError(t, trail.Close(context.Background()))
}

func TestEntry_BSONShape(t *testing.T) {
	raw, err := bson.Marshal(Entry{Entity: "order", EntityID: 9, Action: "placed", Attrs: map[string]string{"total": "10.00"}})
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, "order", doc["entity"])
	assert.Equal(t, "placed", doc["action"])
	assert.NotContains(t, doc, "from", "empty from omitted")
	assert.Contains(t, doc, "attrs")

	f := historyFilter("order", 9)
	assert.Equal(t, "entity", f[0].Key)
	assert.Equal(t, uint(9), f[1].Value)
}
