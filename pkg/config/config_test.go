package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("marketplace")
	require.NoError(t, err)

	assert.Equal(t, "marketplace", cfg.ServiceName)
	assert.Equal(t, 24*7, cfg.JWT.ExpirationHours)
	assert.Equal(t, "local", cfg.Upload.Driver)
	assert.Equal(t, "marketplace:ratelimit", cfg.Redis.Prefix)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_MAX_OPEN_CONNS", "3")
	t.Setenv("DB_CONN_MAX_LIFETIME", "90s")
	t.Setenv("DB_LOG_LEVEL", "silent")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("JWT_EXPIRATION_HOURS", "not-a-number")

	cfg, err := Load("marketplace")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, 3, cfg.DB.MaxOpenConns)
	assert.Equal(t, 90*time.Second, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, logger.Silent, cfg.DB.LogLevel)
	assert.True(t, cfg.Upload.Minio.UseSSL)
	assert.Equal(t, 24*7, cfg.JWT.ExpirationHours, "unparsable values fall back to the default")
}

func TestGetDSN(t *testing.T) {
	c := DBConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", c.GetDSN())
}
