package seeders_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bazaar/app/models"
	_ "github.com/shashiranjanraj/bazaar/database/migrations"
	"github.com/shashiranjanraj/bazaar/database/seeders"
	"github.com/shashiranjanraj/bazaar/pkg/database"
	"github.com/shashiranjanraj/bazaar/pkg/migration"
)

func TestRunAll_DemoCatalogIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open("sqlite", database.MemoryDSN(t.Name()))
	require.NoError(t, err)
	_, err = migration.New(db).Run(ctx)
	require.NoError(t, err)

	require.NoError(t, seeders.RunAll(ctx, db))
	require.NoError(t, seeders.RunAll(ctx, db))

	var products []models.Product
	require.NoError(t, db.Order("id").Find(&products).Error)
	require.Len(t, products, 4)
	assert.True(t, products[0].Available)
	assert.False(t, products[3].Available, "zero stock is not available")

	var variants int64
	require.NoError(t, db.Model(&models.Variant{}).Count(&variants).Error)
	assert.EqualValues(t, 4, variants)
}

func TestRun_UnknownSeederRunsNothing(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open("sqlite", database.MemoryDSN(t.Name()))
	require.NoError(t, err)
	_, err = migration.New(db).Run(ctx)
	require.NoError(t, err)

	assert.Contains(t, seeders.Names(), "demo_catalog")
	assert.ErrorContains(t, seeders.Run(ctx, db, "demo_catalog", "nope"), `"nope"`)

	var n int64
	require.NoError(t, db.Model(&models.Product{}).Count(&n).Error)
	assert.Zero(t, n)

	require.NoError(t, seeders.Run(ctx, db, "demo_catalog"))
	require.NoError(t, db.Model(&models.Product{}).Count(&n).Error)
	assert.EqualValues(t, 4, n)
}
