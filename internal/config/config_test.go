package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "eventdesk", cfg.Mongo.Database)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "eventdesk", cfg.Security.JWTIssuer)
	assert.Equal(t, 24*time.Hour, cfg.Security.TokenTTL)
	assert.Equal(t, 100, cfg.Worker.PoolSize)
}

func TestLoadAutoGeneratesJWTSecret(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	// 32 random bytes hex-encoded.
	assert.Len(t, cfg.Security.JWTSecret, 64)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("MONGO_DATABASE", "eventdesk_test")
	t.Setenv("SECURITY_JWT_SECRET", "0123456789abcdef0123456789abcdef")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "eventdesk_test", cfg.Mongo.Database)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", cfg.Security.JWTSecret)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Mongo:    MongoConfig{Database: "eventdesk"},
		Security: SecurityConfig{JWTSecret: "short"},
	}
	assert.Error(t, cfg.Validate())

	cfg.Security.JWTSecret = "0123456789abcdef0123456789abcdef"
	assert.NoError(t, cfg.Validate())

	cfg.Mongo.Database = ""
	assert.Error(t, cfg.Validate())
}
