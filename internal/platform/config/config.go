// Package config builds runtime configuration from environment variables so
// main stays lean. Every knob has a development default; production deploys
// override through the environment (or a .env file loaded by main).
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything the server needs at startup.
type Config struct {
	Addr        string
	DatabaseURL string
	Redis       RedisConfig

	JWT    JWTConfig
	Tokens TokenConfig
	Audit  AuditConfig

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// RedisConfig holds connection settings for the refresh-token blacklist.
// An empty URL means Redis is not configured and the Postgres (or memory)
// blacklist is used instead.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// JWTConfig holds access-token signing settings.
type JWTConfig struct {
	SigningKey string
	Issuer     string
	Audience   string
}

// TokenConfig holds token lifetimes. Access tokens are short-lived and not
// individually revocable; refresh tokens live for days and can be
// blacklisted.
type TokenConfig struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// AuditConfig holds the Kafka settings for the compliance audit feed.
// Empty Brokers disables publishing; events are still logged locally.
type AuditConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Addr:        getEnv("TRAVELOGY_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		JWT: JWTConfig{
			// Development default; must be overridden in production.
			SigningKey: getEnv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			Issuer:     getEnv("JWT_ISSUER", "travelogy"),
			Audience:   getEnv("JWT_AUDIENCE", "travelogy-api"),
		},
		Tokens: TokenConfig{
			AccessTTL:  getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
			RefreshTTL: getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		},
		Audit: AuditConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("AUDIT_TOPIC", "travelogy.audit.compliance"),
		},
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
