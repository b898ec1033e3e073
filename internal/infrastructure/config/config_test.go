package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when nothing is configured", func(t *testing.T) {
		cfg, err := LoadFrom(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, "storefront", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "http://localhost:3000/api", cfg.Backend.BaseURL)
		assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
		assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
		assert.True(t, cfg.Store.FallbackToMemory)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, 10, cfg.Database.MaxOpenConns)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
		assert.Equal(t, 30*time.Second, cfg.Telemetry.MetricsInterval)
		assert.False(t, cfg.Telemetry.DBTraceEnabled)
		assert.Equal(t, 200*time.Millisecond, cfg.Telemetry.DBSlowQueryThresh)
		assert.False(t, cfg.IsProduction())
	})

	t.Run("loads values from environment variables with STORE prefix", func(t *testing.T) {
		t.Setenv("STORE_APP_PORT", "9000")
		t.Setenv("STORE_BACKEND_BASE_URL", "https://api.petshop.co/v1/")
		t.Setenv("STORE_BACKEND_TIMEOUT", "3s")
		t.Setenv("STORE_STORE_DRIVER", "Redis")
		t.Setenv("STORE_REDIS_HOST", "cache.local")
		t.Setenv("STORE_DATABASE_MAX_OPEN_CONNS", "50")

		cfg, err := LoadFrom(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "https://api.petshop.co/v1", cfg.Backend.BaseURL)
		assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
		assert.Equal(t, StoreDriverRedis, cfg.Store.Driver)
		assert.Equal(t, "cache.local:6379", cfg.Redis.Addr())
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
	})

	t.Run("reads config.toml and lets env override it", func(t *testing.T) {
		dir := t.TempDir()
		toml := `
[app]
name = "storefront-test"

[store]
driver = "sqlite"
sqlite_path = "/tmp/settings.db"

[log]
level = "debug"
format = "json"
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0o600))
		t.Setenv("STORE_LOG_LEVEL", "warn")

		cfg, err := LoadFrom(dir)
		require.NoError(t, err)
		assert.Equal(t, "storefront-test", cfg.App.Name)
		assert.Equal(t, StoreDriverSQLite, cfg.Store.Driver)
		assert.Equal(t, "/tmp/settings.db", cfg.Store.SQLitePath)
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, "warn", cfg.Log.Level)
	})

	t.Run("malformed config file is an error", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[app\nname="), 0o600))

		_, err := LoadFrom(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error reading config file")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		t.Setenv("STORE_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("STORE_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := LoadFrom(t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects unknown store driver", func(t *testing.T) {
		t.Setenv("STORE_STORE_DRIVER", "mongo")

		_, err := LoadFrom(t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Driver")
	})

	t.Run("rejects sampling ratio above one", func(t *testing.T) {
		t.Setenv("STORE_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := LoadFrom(t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SamplingRatio")
	})
}

func TestValidate_Production(t *testing.T) {
	base := func() *Config {
		cfg, err := LoadFrom(t.TempDir())
		require.NoError(t, err)
		cfg.App.Env = "production"
		cfg.Store.Driver = StoreDriverRedis
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid production config", mutate: func(*Config) {}},
		{
			name:    "memory store rejected",
			mutate:  func(c *Config) { c.Store.Driver = StoreDriverMemory },
			wantErr: "store.driver",
		},
		{
			name: "postgres without tls rejected",
			mutate: func(c *Config) {
				c.Store.Driver = StoreDriverPostgres
				c.Database.SSLMode = "disable"
			},
			wantErr: "sslmode",
		},
		{
			name:    "wildcard cors rejected",
			mutate:  func(c *Config) { c.HTTP.CORSAllowOrigins = []string{"*"} },
			wantErr: "cors_allow_origins",
		},
		{
			name:    "full sql in spans rejected",
			mutate:  func(c *Config) { c.Telemetry.DBLogFullSQL = true },
			wantErr: "db_log_full_sql",
		},
		{
			name:    "missing backend url rejected",
			mutate:  func(c *Config) { c.Backend.BaseURL = "" },
			wantErr: "BaseURL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				assert.True(t, cfg.IsProduction())
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "user",
		Password: "pass@word#123",
		DBName:   "storefront",
		SSLMode:  "require",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "/storefront")
	assert.Contains(t, dsn, "sslmode=require")
	assert.Contains(t, dsn, "pass%40word%23123")
}
