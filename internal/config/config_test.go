package config_test

import (
	"testing"
	"time"

	"heroes/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, ":8080", cfg.App.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.Database.Seed)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.EqualValues(t, 10<<20, cfg.Storage.MaxBytes)
	assert.Equal(t, 5*time.Minute, cfg.Redis.StatsTTL)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.RabbitMQ.URL)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, "*", cfg.CORS.Origins)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", ":9090")
	t.Setenv("DATABASE_DRIVER", "MEMORY")
	t.Setenv("SEED_DATA", "false")
	t.Setenv("MAX_UPLOAD_BYTES", "2048")
	t.Setenv("STATS_CACHE_TTL", "30s")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.App.Port)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.False(t, cfg.Database.Seed)
	assert.EqualValues(t, 2048, cfg.Storage.MaxBytes)
	assert.Equal(t, 30*time.Second, cfg.Redis.StatsTTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
}

func TestFromViper_RejectsBadSettings(t *testing.T) {
	cases := map[string]map[string]interface{}{
		"unknown database driver": {"DATABASE_DRIVER": "mongo"},
		"missing dsn":             {"DATABASE_DRIVER": "postgres", "DATABASE_DSN": ""},
		"unknown storage driver":  {"STORAGE_DRIVER": "s3"},
		"non-positive upload cap": {"MAX_UPLOAD_BYTES": 0},
		"default secret in prod":  {"APP_ENV": "production", "AUTH_ENABLED": true},
	}
	for name, overrides := range cases {
		t.Run(name, func(t *testing.T) {
			v := viper.New()
			v.Set("DATABASE_DRIVER", "sqlite")
			v.Set("DATABASE_DSN", "x.db")
			v.Set("STORAGE_DRIVER", "local")
			v.Set("UPLOAD_DIR", "uploads")
			v.Set("MAX_UPLOAD_BYTES", 1024)
			v.Set("JWT_SECRET", "change-me-in-production")
			for k, val := range overrides {
				v.Set(k, val)
			}

			_, err := config.FromViper(v)
			assert.Error(t, err)
		})
	}
}
