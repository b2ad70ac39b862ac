// Package config provides configuration management for the events console.
//
// Configuration is loaded from:
// 1. config.yaml file (optional)
// 2. Environment variables (standard names: MONGO_URI, SERVER_PORT, ...)
// 3. Default values
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Log      LogConfig      `mapstructure:"log"`
	Security SecurityConfig `mapstructure:"security"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// MongoConfig contains MongoDB connection settings.
type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	QueryTimeout   time.Duration `mapstructure:"query_timeout"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// SecurityConfig contains security-related settings.
type SecurityConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	JWTIssuer string        `mapstructure:"jwt_issuer"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// WorkerConfig contains worker pool settings.
type WorkerConfig struct {
	PoolSize int `mapstructure:"pool_size"`
}

// CORSConfig contains allowed origins for the admin UI.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

var (
	bootstrapLoggerOnce sync.Once
	bootstrapLogger     *zap.Logger
)

// Load reads configuration from file and environment variables.
// Environment variables use standard names without prefix; nested keys map
// with underscores (security.jwt_secret → SECURITY_JWT_SECRET).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/eventdesk")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file is optional, use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.ensureSecrets(); err != nil {
		return nil, fmt.Errorf("ensure secrets: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Validate checks for critical configuration errors.
func (c *Config) Validate() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("security.jwt_secret must not be empty")
	}
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("security.jwt_secret must be at least 32 characters")
	}
	if c.Mongo.Database == "" {
		return fmt.Errorf("mongo.database must not be empty")
	}
	return nil
}

// ensureSecrets auto-generates a JWT secret on first boot when unset so a
// fresh install comes up without manual key material. Tokens do not survive
// restarts until SECURITY_JWT_SECRET is pinned.
func (c *Config) ensureSecrets() error {
	if c.Security.JWTSecret != "" {
		return nil
	}
	secret, err := generateSecureRandomHex(32)
	if err != nil {
		return fmt.Errorf("auto-generate jwt secret: %w", err)
	}
	c.Security.JWTSecret = secret
	logBootstrapWarn(
		"auto-generated jwt_secret; set SECURITY_JWT_SECRET env var for persistence",
		zap.Int("length", len(secret)),
	)
	return nil
}

func logBootstrapWarn(msg string, fields ...zap.Field) {
	bootstrapLoggerOnce.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)

		l, err := cfg.Build()
		if err != nil {
			bootstrapLogger = zap.NewNop()
			return
		}
		bootstrapLogger = l
	})

	bootstrapLogger.Warn(msg, fields...)
}

// generateSecureRandomHex produces a hex-encoded string of n random bytes.
func generateSecureRandomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("crypto/rand: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Mongo
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "eventdesk")
	v.SetDefault("mongo.connect_timeout", "10s")
	v.SetDefault("mongo.query_timeout", "30s")

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Security. The secret has no default on purpose, but viper only
	// resolves env vars for keys it knows about, so register it empty or
	// SECURITY_JWT_SECRET would be ignored.
	v.SetDefault("security.jwt_secret", "")
	v.SetDefault("security.jwt_issuer", "eventdesk")
	v.SetDefault("security.token_ttl", "24h")

	// Worker pool
	v.SetDefault("worker.pool_size", 100)

	// CORS
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
}
