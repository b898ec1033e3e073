package persistence

import (
	"fmt"
	"time"

	"github.com/petsupply/storefront/internal/infrastructure/config"
	"github.com/petsupply/storefront/internal/infrastructure/logger"
	"github.com/petsupply/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database holds the connection of the local settings store
type Database struct {
	DB *gorm.DB
}

// Options tune the GORM session
type Options struct {
	Logger        *zap.Logger
	LogLevel      gormlogger.LogLevel
	SlowThreshold time.Duration
	Tracing       telemetry.DBTracingConfig
}

// NewDatabase opens the sqlite or postgres database selected by the store driver
func NewDatabase(storeCfg config.StoreConfig, dbCfg config.DatabaseConfig, opts Options) (*Database, error) {
	var dialector gorm.Dialector
	switch storeCfg.Driver {
	case config.StoreDriverSQLite:
		dialector = sqlite.Open(storeCfg.SQLitePath)
		opts.Tracing.DBSystem = "sqlite"
	case config.StoreDriverPostgres:
		dialector = postgres.Open(dbCfg.DSN())
		opts.Tracing.DBSystem = "postgresql"
	default:
		return nil, fmt.Errorf("store driver %q is not backed by a database", storeCfg.Driver)
	}

	d, err := OpenDialector(dialector, opts)
	if err != nil {
		return nil, err
	}

	sqlDB, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if storeCfg.Driver == config.StoreDriverSQLite {
		// sqlite serialises writers
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(dbCfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(dbCfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(dbCfg.ConnMaxLifetime) * time.Minute)
		sqlDB.SetConnMaxIdleTime(time.Duration(dbCfg.ConnMaxIdleTime) * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return d, nil
}

// OpenDialector opens a database on an explicit dialector
func OpenDialector(dialector gorm.Dialector, opts Options) (*Database, error) {
	zapLogger := opts.Logger
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	if opts.LogLevel == 0 {
		opts.LogLevel = gormlogger.Warn
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.NewGormLogger(zapLogger, opts.LogLevel, opts.SlowThreshold),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := telemetry.RegisterDBTracing(db, opts.Tracing, zapLogger); err != nil {
		return nil, fmt.Errorf("failed to register database tracing: %w", err)
	}
	return &Database{DB: db}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Ping()
}
