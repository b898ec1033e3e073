package cache

import (
	"context"
	"fmt"

	"github.com/petsupply/storefront/internal/domain/pricing"
	"github.com/petsupply/storefront/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Store is a settings store that owns a connection
type Store interface {
	pricing.SettingsStore
	Close() error
}

// StoreOpener opens a SQL-backed store; persistence provides it so this package stays free of GORM
type StoreOpener func(ctx context.Context) (Store, error)

// StoreFactory creates the local settings store selected by configuration
type StoreFactory struct {
	storeConfig           config.StoreConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	sqlOpener             StoreOpener
}

// StoreFactoryOption is a functional option for configuring the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable store degrades to the in-memory one
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// WithSQLStore sets the opener used for the sqlite and postgres drivers
func WithSQLStore(opener StoreOpener) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.sqlOpener = opener
	}
}

// NewStoreFactory creates a new factory
func NewStoreFactory(storeCfg config.StoreConfig, redisCfg config.RedisConfig, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		storeConfig:           storeCfg,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: storeCfg.FallbackToMemory,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRedisStore creates a Redis-backed store
func (f *StoreFactory) CreateRedisStore() (Store, error) {
	store, err := NewRedisKVStore(RedisConfig{
		Addr:      f.redisConfig.Addr(),
		Password:  f.redisConfig.Password,
		DB:        f.redisConfig.DB,
		KeyPrefix: f.storeConfig.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis settings store: %w", err)
	}
	return store, nil
}

// CreateStore creates the configured store, falling back to in-memory when allowed
func (f *StoreFactory) CreateStore(ctx context.Context) (Store, error) {
	var (
		store Store
		err   error
	)

	switch f.storeConfig.Driver {
	case "", config.StoreDriverMemory:
		f.logger.Info("using in-memory settings store")
		return NewInMemoryKVStore(), nil
	case config.StoreDriverRedis:
		store, err = f.CreateRedisStore()
	case config.StoreDriverSQLite, config.StoreDriverPostgres:
		if f.sqlOpener == nil {
			err = fmt.Errorf("no SQL store opener configured for driver %q", f.storeConfig.Driver)
			break
		}
		store, err = f.sqlOpener(ctx)
	default:
		return nil, fmt.Errorf("unknown settings store driver %q", f.storeConfig.Driver)
	}

	if err == nil {
		f.logger.Info("using settings store", zap.String("driver", f.storeConfig.Driver))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("settings store %q unavailable: %w", f.storeConfig.Driver, err)
	}

	f.logger.Warn("settings store unavailable, falling back to in-memory store. "+
		"Surcharges, gain and override caches will not survive a restart.",
		zap.String("driver", f.storeConfig.Driver),
		zap.Error(err),
	)
	return NewInMemoryKVStore(), nil
}
