//go:build integration

package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/petsupply/storefront/internal/domain/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
)

func newPostgresStore(t *testing.T) *GormSettingsStore {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("storefront_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("storefront"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	database, err := OpenDialector(postgres.Open(dsn), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	store, err := NewGormSettingsStore(database.DB)
	require.NoError(t, err)
	return store
}

func TestGormSettingsStore_PostgresIntegration(t *testing.T) {
	store := newPostgresStore(t)
	ctx := context.Background()

	for label, pct := range pricing.DefaultSurcharges() {
		require.NoError(t, store.Set(ctx, pricing.SurchargeKey(label), pct.String()))
	}
	require.NoError(t, store.Set(ctx, pricing.SurchargeKey("XL"), "35"))
	require.NoError(t, store.Set(ctx, "a_b:1", "literal underscore"))
	require.NoError(t, store.Set(ctx, "axb:1", "wildcard match"))

	surcharges, err := store.List(ctx, pricing.SurchargeKeyPrefix)
	require.NoError(t, err)
	assert.Len(t, surcharges, 4)
	assert.Equal(t, "35", surcharges["surcharge:XL"])

	literal, err := store.List(ctx, "a_b:")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a_b:1": "literal underscore"}, literal)

	require.NoError(t, store.Delete(ctx, pricing.SurchargeKey("S")))
	_, found, err := store.Get(ctx, pricing.SurchargeKey("S"))
	require.NoError(t, err)
	assert.False(t, found)
}
