package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/petsupply/storefront/internal/domain/pricing"
	"github.com/petsupply/storefront/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newRedisStore(t *testing.T) (*RedisKVStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisKVStoreWithClient(client, "")
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

// exerciseStore runs the same contract against every implementation
func exerciseStore(t *testing.T, store pricing.SettingsStore) {
	ctx := context.Background()

	_, found, err := store.Get(ctx, pricing.SurchargeKey("xl"))
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, pricing.SurchargeKey("xl"), "30"))
	require.NoError(t, store.Set(ctx, pricing.SurchargeKey("m"), "10"))
	require.NoError(t, store.Set(ctx, pricing.GainKey(7), "35.5"))
	require.NoError(t, store.Set(ctx, pricing.SurchargeKey("m"), "12"))

	v, found, err := store.Get(ctx, pricing.SurchargeKey("XL"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "30", v)

	surcharges, err := store.List(ctx, pricing.SurchargeKeyPrefix)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"surcharge:XL": "30", "surcharge:M": "12"}, surcharges)

	gains, err := store.List(ctx, pricing.GainKeyPrefix)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"product-gain-pct:7": "35.5"}, gains)

	require.NoError(t, store.Delete(ctx, pricing.SurchargeKey("XL")))
	require.NoError(t, store.Delete(ctx, "never-set"))
	surcharges, err = store.List(ctx, pricing.SurchargeKeyPrefix)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"surcharge:M": "12"}, surcharges)

	empty, err := store.List(ctx, pricing.OverrideKeyPrefix)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestInMemoryKVStore(t *testing.T) {
	exerciseStore(t, NewInMemoryKVStore())
}

func TestInMemoryKVStore_ConcurrentAccess(t *testing.T) {
	store := NewInMemoryKVStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := pricing.GainKey(int64(i))
			_ = store.Set(ctx, key, strconv.Itoa(i))
			_, _, _ = store.Get(ctx, key)
			_, _ = store.List(ctx, pricing.GainKeyPrefix)
		}(i)
	}
	wg.Wait()

	all, err := store.List(ctx, pricing.GainKeyPrefix)
	require.NoError(t, err)
	assert.Len(t, all, 50)
}

func TestRedisKVStore(t *testing.T) {
	store, mr := newRedisStore(t)
	exerciseStore(t, store)

	assert.True(t, mr.Exists("storefront:surcharge:M"), "keys carry the store prefix")
	assert.NoError(t, store.Ping(context.Background()))
}

func TestRedisKVStore_PrefixIsolation(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("other-app:surcharge:M", "99"))

	all, err := store.List(ctx, pricing.SurchargeKeyPrefix)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, `size-override:7:X\*`, escapeGlob("size-override:7:X*"))
	assert.Equal(t, `a\?\[b\]`, escapeGlob("a?[b]"))
}

func TestRedisKVStore_ConnectionErrors(t *testing.T) {
	store, mr := newRedisStore(t)
	mr.Close()

	ctx := context.Background()
	_, _, err := store.Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, store.Set(ctx, "k", "v"))
	_, err = store.List(ctx, "k")
	assert.Error(t, err)
}

func TestStoreFactory_CreateStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory driver", func(t *testing.T) {
		f := NewStoreFactory(config.StoreConfig{Driver: config.StoreDriverMemory}, config.RedisConfig{})
		store, err := f.CreateStore(ctx)
		require.NoError(t, err)
		assert.IsType(t, &InMemoryKVStore{}, store)
	})

	t.Run("redis driver", func(t *testing.T) {
		mr := miniredis.RunT(t)
		f := NewStoreFactory(
			config.StoreConfig{Driver: config.StoreDriverRedis, KeyPrefix: "test:"},
			config.RedisConfig{Host: mr.Host(), Port: mustPort(t, mr.Port())},
		)
		store, err := f.CreateStore(ctx)
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		require.NoError(t, store.Set(ctx, "surcharge:M", "10"))
		assert.True(t, mr.Exists("test:surcharge:M"))
	})

	t.Run("unreachable redis falls back to memory", func(t *testing.T) {
		core, recorded := observer.New(zapcore.WarnLevel)
		f := NewStoreFactory(
			config.StoreConfig{Driver: config.StoreDriverRedis, FallbackToMemory: true},
			config.RedisConfig{Host: "127.0.0.1", Port: 1},
			WithLogger(zap.New(core)),
		)
		store, err := f.CreateStore(ctx)
		require.NoError(t, err)
		assert.IsType(t, &InMemoryKVStore{}, store)
		assert.Equal(t, 1, recorded.Len())
	})

	t.Run("unreachable redis without fallback fails", func(t *testing.T) {
		f := NewStoreFactory(
			config.StoreConfig{Driver: config.StoreDriverRedis, FallbackToMemory: true},
			config.RedisConfig{Host: "127.0.0.1", Port: 1},
			WithInMemoryFallback(false),
		)
		_, err := f.CreateStore(ctx)
		assert.Error(t, err)
	})

	t.Run("sql driver uses opener", func(t *testing.T) {
		opened := NewInMemoryKVStore()
		f := NewStoreFactory(config.StoreConfig{Driver: config.StoreDriverSQLite},
			config.RedisConfig{},
			WithSQLStore(func(context.Context) (Store, error) { return opened, nil }),
		)
		store, err := f.CreateStore(ctx)
		require.NoError(t, err)
		assert.Same(t, opened, store)
	})

	t.Run("sql driver failure falls back", func(t *testing.T) {
		f := NewStoreFactory(config.StoreConfig{Driver: config.StoreDriverPostgres, FallbackToMemory: true},
			config.RedisConfig{},
			WithSQLStore(func(context.Context) (Store, error) { return nil, errors.New("connection refused") }),
		)
		store, err := f.CreateStore(ctx)
		require.NoError(t, err)
		assert.IsType(t, &InMemoryKVStore{}, store)
	})

	t.Run("unknown driver", func(t *testing.T) {
		f := NewStoreFactory(config.StoreConfig{Driver: "mongo", FallbackToMemory: true}, config.RedisConfig{})
		_, err := f.CreateStore(ctx)
		assert.Error(t, err)
	})
}

func mustPort(t *testing.T, port string) int {
	t.Helper()
	p, err := strconv.Atoi(port)
	require.NoError(t, err)
	return p
}
