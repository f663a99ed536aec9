package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Service  ServiceConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Worker   WorkerConfig
	Tracer   TracerConfig
	// SecretToken is the HMAC secret shared with the auth service that
	// issues the identity tokens this core consumes. Empty disables the
	// bearer check on /ws.
	SecretToken string `envconfig:"JWT_SECRET"`
}

type ServiceConfig struct {
	Name string `envconfig:"SERVICE_NAME" default:"nexus-chat"`
	Env  string `envconfig:"SERVICE_ENV" default:"development"`
	Addr string `envconfig:"SERVICE_ADDR" default:":8080"`
}

type PostgresConfig struct {
	DSN             string        `envconfig:"DATABASE_URL"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_LIFETIME" default:"15m"`
	ConnMaxIdleTime time.Duration `envconfig:"DB_CONN_IDLE_TIME" default:"5m"`
	PingTimeout     time.Duration `envconfig:"DB_PING_TIMEOUT" default:"5s"`
}

type RedisConfig struct {
	// URL empty means the in-process queue and cache are used instead.
	URL          string        `envconfig:"REDIS_URL"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
	PoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REDIS_MIN_IDLE" default:"2"`
	PingTimeout  time.Duration `envconfig:"REDIS_PING_TIMEOUT" default:"2s"`
	HistoryTTL   time.Duration `envconfig:"REDIS_HISTORY_TTL" default:"10m"`
}

type WorkerConfig struct {
	MessageGroup string `envconfig:"WORKER_MESSAGE_GROUP" default:"room-workers"`
}

type TracerConfig struct {
	// Addr empty disables the OTLP exporter.
	Addr string `envconfig:"OTEL_EXPORTER_ADDR"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
