package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr string

	// JWTSigningKey signs issued tokens and verifies inbound bearer tokens.
	JWTSigningKey string
	TokenLifetime time.Duration

	// MembershipURL is the base URL of the downstream membership authority.
	// Empty means the deterministic mock client is used (dev mode).
	MembershipURL             string
	MembershipTimeout         time.Duration
	MembershipBreakerCooldown time.Duration

	// RedisURL backs the event search index. Empty falls back to the in-memory index.
	RedisURL string

	// PostgresURL backs the durable event log. Empty disables the log.
	PostgresURL string

	// EventQueueSize bounds the accept-to-persist channel.
	EventQueueSize int
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("PROFILING_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:                      addr,
		JWTSigningKey:             jwtSigningKey,
		TokenLifetime:             durationEnv("TOKEN_LIFETIME", 30*time.Minute),
		MembershipURL:             os.Getenv("MEMBERSHIP_URL"),
		MembershipTimeout:         durationEnv("MEMBERSHIP_TIMEOUT", 5*time.Second),
		MembershipBreakerCooldown: durationEnv("MEMBERSHIP_BREAKER_COOLDOWN", 10*time.Second),
		RedisURL:                  os.Getenv("REDIS_URL"),
		PostgresURL:               os.Getenv("POSTGRES_URL"),
		EventQueueSize:            intEnv("EVENT_QUEUE_SIZE", 1024),
	}
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			return d
		}
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
