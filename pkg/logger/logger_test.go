package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bazaar/pkg/logger"
)

func TestWith_AccumulatesAttributes(t *testing.T) {
	var buf bytes.Buffer
	prev := logger.L
	logger.SetOutput(logger.New("production", &buf))
	t.Cleanup(func() { logger.SetOutput(prev) })

	ctx := logger.With(context.Background(), "user_id", 42)
	ctx = logger.With(ctx, "order_id", 7)
	logger.WithCtx(ctx).Info("order placed", "lines", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "order placed", rec["msg"])
	assert.EqualValues(t, 42, rec["user_id"])
	assert.EqualValues(t, 7, rec["order_id"])
	assert.EqualValues(t, 3, rec["lines"])
}

func TestWithCtx_FallsBackToBase(t *testing.T) {
	assert.Same(t, logger.L, logger.WithCtx(context.Background()))
}

func TestNew_ProductionDropsDebug(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New("prod", &buf)
	l.Debug("hidden")
	assert.Zero(t, buf.Len())

	dev := logger.New("local", &buf)
	dev.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}
