package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string

	PostgresURL string
	Redis       RedisConfig
	Kafka       KafkaConfig

	SweepInterval     time.Duration
	SweepInitialDelay time.Duration

	NotifyBuffer int
}

// RedisConfig holds connection settings for the enforcement cache.
// An empty URL disables Redis entirely.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds settings for the audit outbox publisher. Empty brokers
// disable publishing; audit events then live in Postgres only.
type KafkaConfig struct {
	Brokers      []string
	AuditTopic   string
	PollInterval time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("TRIBUNE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	kafkaBrokers := []string(nil)
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		kafkaBrokers = splitAndTrim(v)
	}
	auditTopic := os.Getenv("KAFKA_AUDIT_TOPIC")
	if auditTopic == "" {
		auditTopic = "tribune.audit"
	}

	return Server{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		PostgresURL:   os.Getenv("POSTGRES_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:      kafkaBrokers,
			AuditTopic:   auditTopic,
			PollInterval: envDuration("KAFKA_OUTBOX_POLL_INTERVAL", 5*time.Second),
		},
		SweepInterval:     envDuration("SANCTION_SWEEP_INTERVAL", 30*time.Minute),
		SweepInitialDelay: envDuration("SANCTION_SWEEP_INITIAL_DELAY", 10*time.Second),
		NotifyBuffer:      envInt("NOTIFY_BUFFER", 256),
	}
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
