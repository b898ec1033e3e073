package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/petsupply/storefront/internal/domain/pricing"
	"github.com/petsupply/storefront/internal/infrastructure/cache"
	"github.com/petsupply/storefront/internal/infrastructure/config"
	"github.com/petsupply/storefront/internal/infrastructure/logger"
	"github.com/petsupply/storefront/internal/infrastructure/persistence/models"
	"github.com/petsupply/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// GormSettingsStore keeps pricing settings in a single SQL table
type GormSettingsStore struct {
	db     *gorm.DB
	closer func() error
}

// NewGormSettingsStore creates the store on an open connection and migrates its table
func NewGormSettingsStore(db *gorm.DB) (*GormSettingsStore, error) {
	if err := db.AutoMigrate(&models.SettingModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate settings table: %w", err)
	}
	return &GormSettingsStore{db: db}, nil
}

// Get returns the value stored under key
func (s *GormSettingsStore) Get(ctx context.Context, key string) (string, bool, error) {
	var m models.SettingModel
	err := s.db.WithContext(ctx).Where("setting_key = ?", key).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %q: %w", key, err)
	}
	return m.Value, true, nil
}

// Set upserts value under key
func (s *GormSettingsStore) Set(ctx context.Context, key, value string) error {
	m := models.SettingModel{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("failed to write setting %q: %w", key, err)
	}
	return nil
}

// Delete removes key
func (s *GormSettingsStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("setting_key = ?", key).Delete(&models.SettingModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete setting %q: %w", key, err)
	}
	return nil
}

// List returns every entry whose key starts with prefix
func (s *GormSettingsStore) List(ctx context.Context, prefix string) (map[string]string, error) {
	var rows []models.SettingModel
	err := s.db.WithContext(ctx).
		Where(`setting_key LIKE ? ESCAPE '\'`, likeEscaper.Replace(prefix)+"%").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list settings %q: %w", prefix, err)
	}

	out := make(map[string]string, len(rows))
	for _, r := range rows {
		// sqlite LIKE ignores ASCII case
		if strings.HasPrefix(r.Key, prefix) {
			out[r.Key] = r.Value
		}
	}
	return out, nil
}

// Close releases the connection when the store owns it
func (s *GormSettingsStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// NewStoreOpener returns the opener the cache factory uses for the sqlite and postgres drivers
func NewStoreOpener(cfg *config.Config, zapLogger *zap.Logger) cache.StoreOpener {
	return func(ctx context.Context) (cache.Store, error) {
		database, err := NewDatabase(cfg.Store, cfg.Database, Options{
			Logger:        zapLogger,
			LogLevel:      logger.MapGormLogLevel(cfg.Log.Level),
			SlowThreshold: cfg.Telemetry.DBSlowQueryThresh,
			Tracing: telemetry.DBTracingConfig{
				Enabled:         cfg.Telemetry.DBTraceEnabled,
				LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
				SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			},
		})
		if err != nil {
			return nil, err
		}
		store, err := NewGormSettingsStore(database.DB.WithContext(ctx))
		if err != nil {
			_ = database.Close()
			return nil, err
		}
		store.db = database.DB
		store.closer = database.Close
		return store, nil
	}
}

var (
	_ pricing.SettingsStore = (*GormSettingsStore)(nil)
	_ cache.Store           = (*GormSettingsStore)(nil)
)
