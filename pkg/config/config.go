// Package config loads bugle configuration from BUGLE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/code-string/aegis-bugle/pkg/shared"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every variable name.
const EnvPrefix = "BUGLE_"

const (
	minTimeout        = time.Second
	minReportInterval = time.Second
)

// Config holds the whole bugle configuration.
type Config struct {
	// Enabled=false forces the no-op publisher regardless of BrokerType.
	Enabled     bool        `env:"ENABLED"      envDefault:"true"`
	ServiceName string      `env:"SERVICE_NAME"`
	BrokerType  BrokerType  `env:"BROKER_TYPE"`
	Environment Environment `env:"ENVIRONMENT"  envDefault:"dev"`
	LogLevel    string      `env:"LOG_LEVEL"    envDefault:"info"`

	Kafka    KafkaConfig    `envPrefix:"KAFKA_"`
	Pulsar   PulsarConfig   `envPrefix:"PULSAR_"`
	RabbitMQ RabbitMQConfig `envPrefix:"RABBITMQ_"`
	Failure  FailureConfig  `envPrefix:"FAILURE_"`
	Metrics  MetricsConfig  `envPrefix:"METRICS_"`
}

// KafkaConfig configures the Kafka writer.
type KafkaConfig struct {
	BootstrapServers string        `env:"BOOTSTRAP_SERVERS" envDefault:"localhost:9092"`
	Async            bool          `env:"ASYNC"             envDefault:"true"`
	WriteTimeout     time.Duration `env:"WRITE_TIMEOUT"     envDefault:"10s"`
	RequiredAcks     int           `env:"REQUIRED_ACKS"     envDefault:"1"`
	// EnsureTopics are created at startup if missing (best effort).
	EnsureTopics []string `env:"ENSURE_TOPICS"`
}

// PulsarConfig configures the Pulsar client.
type PulsarConfig struct {
	ServiceURL              string        `env:"SERVICE_URL"                 envDefault:"pulsar://localhost:6650"`
	OperationTimeout        time.Duration `env:"OPERATION_TIMEOUT"           envDefault:"10s"`
	ConnectionTimeout       time.Duration `env:"CONNECTION_TIMEOUT"          envDefault:"10s"`
	KeepAliveInterval       time.Duration `env:"KEEP_ALIVE_INTERVAL"         envDefault:"10s"`
	MaxConnectionsPerBroker int           `env:"MAX_CONNECTIONS_PER_BROKER"  envDefault:"1"`
}

// RabbitMQConfig configures the AMQP connection.
type RabbitMQConfig struct {
	Host              string        `env:"HOST"               envDefault:"localhost"`
	Port              int           `env:"PORT"               envDefault:"5672"`
	Username          string        `env:"USERNAME"           envDefault:"guest"`
	Password          string        `env:"PASSWORD"           envDefault:"guest"`
	VirtualHost       string        `env:"VIRTUAL_HOST"       envDefault:"/"`
	ConnectionTimeout time.Duration `env:"CONNECTION_TIMEOUT" envDefault:"10s"`
	DefaultExchange   string        `env:"DEFAULT_EXCHANGE"`
}

// FailureConfig configures the failure sideband.
type FailureConfig struct {
	Enabled     bool   `env:"ENABLED"     envDefault:"true"`
	Destination string `env:"DESTINATION" envDefault:"aegis-bugle-failures"`
	// MaxRetries is informational; no retry loop consumes it.
	MaxRetries int `env:"MAX_RETRIES" envDefault:"3"`
}

// MetricsConfig configures Redis metrics reporting. Empty RedisAddr disables it.
type MetricsConfig struct {
	RedisAddr      string        `env:"REDIS_ADDR"`
	ReportInterval time.Duration `env:"REPORT_INTERVAL" envDefault:"30s"`
}

// Load reads an optional .env file, then parses the process environment.
func Load() (Config, error) {
	// Load .env file if it exists (development)
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("load .env file: %w", err)
		}
	}
	return parse(env.Options{Prefix: EnvPrefix})
}

// FromMap parses configuration from vars instead of the process environment.
// Keys carry the BUGLE_ prefix.
func FromMap(vars map[string]string) (Config, error) {
	return parse(env.Options{Prefix: EnvPrefix, Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.Sanitize()
	return cfg, nil
}

// Sanitize applies guardrails to values loaded from env.
func (c *Config) Sanitize() {
	c.ServiceName = strings.TrimSpace(c.ServiceName)
	c.Kafka.EnsureTopics = trimEmpty(c.Kafka.EnsureTopics)
	if c.Kafka.WriteTimeout < minTimeout {
		c.Kafka.WriteTimeout = minTimeout
	}
	if c.Kafka.RequiredAcks < -1 || c.Kafka.RequiredAcks > 1 {
		c.Kafka.RequiredAcks = 1
	}
	for _, d := range []*time.Duration{&c.Pulsar.OperationTimeout, &c.Pulsar.ConnectionTimeout, &c.RabbitMQ.ConnectionTimeout} {
		if *d < minTimeout {
			*d = minTimeout
		}
	}
	if c.Pulsar.MaxConnectionsPerBroker < 1 {
		c.Pulsar.MaxConnectionsPerBroker = 1
	}
	if c.Failure.MaxRetries < 0 {
		c.Failure.MaxRetries = 0
	}
	if c.Metrics.ReportInterval < minReportInterval {
		c.Metrics.ReportInterval = minReportInterval
	}
}

// Validate checks that the active broker has everything it needs.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("%sSERVICE_NAME cannot be empty", EnvPrefix)
	}
	if !c.BrokerType.Valid() {
		return fmt.Errorf("unknown broker type %q", c.BrokerType)
	}
	if !c.Environment.Valid() {
		return fmt.Errorf("unknown environment %q", c.Environment)
	}
	if !c.Enabled {
		return nil
	}

	switch c.BrokerType {
	case BrokerKafka:
		if strings.TrimSpace(c.Kafka.BootstrapServers) == "" {
			return fmt.Errorf("kafka bootstrap servers cannot be empty")
		}
	case BrokerPulsar:
		if c.Pulsar.ServiceURL == "" {
			return fmt.Errorf("pulsar service url cannot be empty")
		}
	case BrokerRabbitMQ:
		if c.RabbitMQ.Host == "" {
			return fmt.Errorf("rabbitmq host cannot be empty")
		}
		if c.RabbitMQ.Port <= 0 || c.RabbitMQ.Port > 65535 {
			return fmt.Errorf("rabbitmq port must be 1-65535, got %d", c.RabbitMQ.Port)
		}
		if c.Failure.Enabled && c.Failure.Destination == "" {
			return fmt.Errorf("failure destination cannot be empty when failure handling is enabled")
		}
	}
	return nil
}

// ActiveBroker returns the broker the publisher should use, BrokerNone when
// bugle is disabled.
func (c *Config) ActiveBroker() BrokerType {
	if !c.Enabled {
		return BrokerNone
	}
	return c.BrokerType
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// LogValue renders the configuration for logs with secrets masked.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("enabled", c.Enabled),
		slog.String("service_name", c.ServiceName),
		slog.String("broker_type", string(c.BrokerType)),
		slog.String("environment", string(c.Environment)),
		slog.String("kafka_bootstrap_servers", c.Kafka.BootstrapServers),
		slog.String("pulsar_service_url", shared.MaskURL(c.Pulsar.ServiceURL)),
		slog.String("rabbitmq_host", c.RabbitMQ.Host),
		slog.Int("rabbitmq_port", c.RabbitMQ.Port),
		slog.String("rabbitmq_username", c.RabbitMQ.Username),
		slog.String("rabbitmq_password", shared.MaskSecret(c.RabbitMQ.Password)),
		slog.String("rabbitmq_default_exchange", c.RabbitMQ.DefaultExchange),
		slog.Bool("failure_enabled", c.Failure.Enabled),
		slog.String("failure_destination", c.Failure.Destination),
		slog.String("metrics_redis_addr", c.Metrics.RedisAddr),
	)
}

func trimEmpty(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
