package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Redemption RedemptionConfig
	Log        LogConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            string `envconfig:"SERVER_PORT" default:"8080"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"30"` // seconds
	CORSOrigins     string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
	ProxyHeader     string `envconfig:"PROXY_HEADER" default:""` // e.g. X-Forwarded-For when behind a trusted proxy
}

// DBConfig holds database-related configuration.
// WARNING: Default password is for local development only.
// In production, always set DB_PASSWORD via environment variable.
// In production, set DB_SSLMODE to "require" or "verify-full".
type DBConfig struct {
	Host         string `envconfig:"DB_HOST" default:"localhost"`
	Port         int    `envconfig:"DB_PORT" default:"5432"`
	User         string `envconfig:"DB_USER" default:"postgres"`
	Password     string `envconfig:"DB_PASSWORD" default:"postgres"` // CHANGE IN PRODUCTION
	Name         string `envconfig:"DB_NAME" default:"coupon_db"`
	SSLMode      string `envconfig:"DB_SSLMODE" default:"disable"` // Use "require" in production
	MaxConns     int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns     int    `envconfig:"DB_MIN_CONNS" default:"5"`
	QueryTimeout int    `envconfig:"DB_QUERY_TIMEOUT" default:"5"` // seconds, applied as statement_timeout
}

// DSN returns the PostgreSQL connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d&pool_min_conns=%d&options=-c%%20statement_timeout%%3D%d000",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode, c.MaxConns, c.MinConns, c.QueryTimeout)
}

// RedisConfig holds the optional shared cooldown store configuration.
// When Addr is empty the service falls back to a process-local tracker,
// which scopes the redemption cooldown to a single replica.
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:""`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// AuthConfig holds the admin account and token signing configuration.
// WARNING: Defaults are for local development only.
type AuthConfig struct {
	JWTSecret     string `envconfig:"JWT_SECRET" default:"dev-secret-change-me"` // CHANGE IN PRODUCTION
	TokenTTL      int    `envconfig:"TOKEN_TTL" default:"60"`                    // minutes
	AdminUsername string `envconfig:"ADMIN_USERNAME" default:"admin"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"admin"` // CHANGE IN PRODUCTION
}

// TokenDuration returns the admin token lifetime as a duration.
func (c AuthConfig) TokenDuration() time.Duration {
	return time.Duration(c.TokenTTL) * time.Minute
}

// RedemptionConfig holds the cooldown and sweep settings.
type RedemptionConfig struct {
	CooldownMinutes int `envconfig:"REDEEM_COOLDOWN" default:"10"` // minutes
	SweepMinutes    int `envconfig:"SWEEP_INTERVAL" default:"5"`   // minutes, 0 disables the sweep
}

// Cooldown returns the cooldown window as a duration.
func (c RedemptionConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownMinutes) * time.Minute
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// Load parses environment variables into the Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
