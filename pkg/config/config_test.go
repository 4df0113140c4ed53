package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestFromMap_Defaults(t *testing.T) {
	cfg, err := FromMap(map[string]string{"BUGLE_SERVICE_NAME": "order-service"})
	if err != nil {
		t.Fatalf("FromMap failed: %v", err)
	}

	if !cfg.Enabled {
		t.Error("Enabled should default to true")
	}
	if cfg.BrokerType != BrokerNone {
		t.Errorf("BrokerType = %q, want none", cfg.BrokerType)
	}
	if cfg.Environment != EnvDev {
		t.Errorf("Environment = %q, want dev", cfg.Environment)
	}
	if cfg.Kafka.BootstrapServers != "localhost:9092" || !cfg.Kafka.Async || cfg.Kafka.WriteTimeout != 10*time.Second || cfg.Kafka.RequiredAcks != 1 {
		t.Errorf("unexpected kafka defaults: %+v", cfg.Kafka)
	}
	if cfg.Pulsar.ServiceURL != "pulsar://localhost:6650" || cfg.Pulsar.OperationTimeout != 10*time.Second || cfg.Pulsar.MaxConnectionsPerBroker != 1 {
		t.Errorf("unexpected pulsar defaults: %+v", cfg.Pulsar)
	}
	want := RabbitMQConfig{
		Host:              "localhost",
		Port:              5672,
		Username:          "guest",
		Password:          "guest",
		VirtualHost:       "/",
		ConnectionTimeout: 10 * time.Second,
	}
	if cfg.RabbitMQ != want {
		t.Errorf("RabbitMQ = %+v, want %+v", cfg.RabbitMQ, want)
	}
	if !cfg.Failure.Enabled || cfg.Failure.Destination != "aegis-bugle-failures" || cfg.Failure.MaxRetries != 3 {
		t.Errorf("unexpected failure defaults: %+v", cfg.Failure)
	}
	if cfg.Metrics.RedisAddr != "" || cfg.Metrics.ReportInterval != 30*time.Second {
		t.Errorf("unexpected metrics defaults: %+v", cfg.Metrics)
	}
}

func TestFromMap_Overrides(t *testing.T) {
	cfg, err := FromMap(map[string]string{
		"BUGLE_SERVICE_NAME":                " payment-service ",
		"BUGLE_BROKER_TYPE":                 "RabbitMQ",
		"BUGLE_ENVIRONMENT":                 "PROD",
		"BUGLE_KAFKA_ENSURE_TOPICS":         "alerts, ,audit",
		"BUGLE_RABBITMQ_HOST":               "rabbitmq",
		"BUGLE_RABBITMQ_PORT":               "5673",
		"BUGLE_RABBITMQ_DEFAULT_EXCHANGE":   "bugle",
		"BUGLE_RABBITMQ_CONNECTION_TIMEOUT": "3s",
		"BUGLE_FAILURE_ENABLED":             "false",
		"BUGLE_METRICS_REDIS_ADDR":          "redis:6379",
	})
	if err != nil {
		t.Fatalf("FromMap failed: %v", err)
	}

	if cfg.ServiceName != "payment-service" {
		t.Errorf("ServiceName = %q, want trimmed payment-service", cfg.ServiceName)
	}
	if cfg.BrokerType != BrokerRabbitMQ {
		t.Errorf("BrokerType = %q, want rabbitmq", cfg.BrokerType)
	}
	if cfg.Environment != EnvProd || cfg.Environment.String() != "PROD" {
		t.Errorf("Environment = %q (%s), want prod", cfg.Environment, cfg.Environment)
	}
	if strings.Join(cfg.Kafka.EnsureTopics, ",") != "alerts,audit" {
		t.Errorf("EnsureTopics = %v, want [alerts audit]", cfg.Kafka.EnsureTopics)
	}
	if cfg.RabbitMQ.Host != "rabbitmq" || cfg.RabbitMQ.Port != 5673 || cfg.RabbitMQ.DefaultExchange != "bugle" {
		t.Errorf("RabbitMQ = %+v", cfg.RabbitMQ)
	}
	if cfg.RabbitMQ.ConnectionTimeout != 3*time.Second {
		t.Errorf("ConnectionTimeout = %v, want 3s", cfg.RabbitMQ.ConnectionTimeout)
	}
	if cfg.Failure.Enabled {
		t.Error("Failure.Enabled should be false")
	}
	if cfg.Metrics.RedisAddr != "redis:6379" {
		t.Errorf("RedisAddr = %q", cfg.Metrics.RedisAddr)
	}
}

func TestFromMap_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"bad environment", map[string]string{"BUGLE_ENVIRONMENT": "qa"}},
		{"bad port", map[string]string{"BUGLE_RABBITMQ_PORT": "amqp"}},
		{"bad duration", map[string]string{"BUGLE_KAFKA_WRITE_TIMEOUT": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromMap(tt.vars); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestBrokerType_None(t *testing.T) {
	cfg, err := FromMap(map[string]string{"BUGLE_SERVICE_NAME": "svc", "BUGLE_BROKER_TYPE": "none"})
	if err != nil {
		t.Fatalf("FromMap failed: %v", err)
	}
	if cfg.BrokerType != BrokerNone {
		t.Errorf("BrokerType = %q, want none", cfg.BrokerType)
	}
}

func validConfig(broker BrokerType) Config {
	cfg, _ := FromMap(map[string]string{"BUGLE_SERVICE_NAME": "svc"})
	cfg.BrokerType = broker
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid none", func(*Config) {}, false},
		{"valid kafka", func(c *Config) { c.BrokerType = BrokerKafka }, false},
		{"valid pulsar", func(c *Config) { c.BrokerType = BrokerPulsar }, false},
		{"valid rabbitmq", func(c *Config) { c.BrokerType = BrokerRabbitMQ }, false},
		{"missing service name", func(c *Config) { c.ServiceName = "" }, true},
		{"unknown broker", func(c *Config) { c.BrokerType = "nats" }, true},
		{"unknown environment", func(c *Config) { c.Environment = "qa" }, true},
		{"kafka without servers", func(c *Config) { c.BrokerType = BrokerKafka; c.Kafka.BootstrapServers = " " }, true},
		{"pulsar without url", func(c *Config) { c.BrokerType = BrokerPulsar; c.Pulsar.ServiceURL = "" }, true},
		{"rabbitmq without host", func(c *Config) { c.BrokerType = BrokerRabbitMQ; c.RabbitMQ.Host = "" }, true},
		{"rabbitmq bad port", func(c *Config) { c.BrokerType = BrokerRabbitMQ; c.RabbitMQ.Port = 70000 }, true},
		{"rabbitmq failure without destination", func(c *Config) { c.BrokerType = BrokerRabbitMQ; c.Failure.Destination = "" }, true},
		{"rabbitmq failure disabled", func(c *Config) {
			c.BrokerType = BrokerRabbitMQ
			c.Failure.Enabled = false
			c.Failure.Destination = ""
		}, false},
		{"disabled skips broker checks", func(c *Config) {
			c.Enabled = false
			c.BrokerType = BrokerKafka
			c.Kafka.BootstrapServers = ""
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(BrokerNone)
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Sanitize(t *testing.T) {
	cfg := Config{
		Kafka:    KafkaConfig{WriteTimeout: 0, RequiredAcks: 5},
		Pulsar:   PulsarConfig{OperationTimeout: -time.Second, MaxConnectionsPerBroker: 0},
		RabbitMQ: RabbitMQConfig{ConnectionTimeout: time.Millisecond},
		Failure:  FailureConfig{MaxRetries: -2},
		Metrics:  MetricsConfig{ReportInterval: 0},
	}
	cfg.Sanitize()

	if cfg.Kafka.WriteTimeout != time.Second || cfg.Kafka.RequiredAcks != 1 {
		t.Errorf("Kafka = %+v", cfg.Kafka)
	}
	if cfg.Pulsar.OperationTimeout != time.Second || cfg.Pulsar.ConnectionTimeout != time.Second || cfg.Pulsar.MaxConnectionsPerBroker != 1 {
		t.Errorf("Pulsar = %+v", cfg.Pulsar)
	}
	if cfg.RabbitMQ.ConnectionTimeout != time.Second {
		t.Errorf("RabbitMQ.ConnectionTimeout = %v", cfg.RabbitMQ.ConnectionTimeout)
	}
	if cfg.Failure.MaxRetries != 0 {
		t.Errorf("MaxRetries = %d", cfg.Failure.MaxRetries)
	}
	if cfg.Metrics.ReportInterval != time.Second {
		t.Errorf("ReportInterval = %v", cfg.Metrics.ReportInterval)
	}
}

func TestConfig_ActiveBroker(t *testing.T) {
	cfg := validConfig(BrokerKafka)
	if cfg.ActiveBroker() != BrokerKafka {
		t.Errorf("ActiveBroker() = %q, want kafka", cfg.ActiveBroker())
	}
	cfg.Enabled = false
	if cfg.ActiveBroker() != BrokerNone {
		t.Errorf("ActiveBroker() = %q when disabled, want none", cfg.ActiveBroker())
	}
}

func TestConfig_SlogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		cfg := Config{LogLevel: tt.in}
		if got := cfg.SlogLevel(); got != tt.want {
			t.Errorf("SlogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConfig_LogValueMasksPassword(t *testing.T) {
	cfg := validConfig(BrokerRabbitMQ)
	cfg.RabbitMQ.Password = "hunter2-very-secret"

	rendered := cfg.LogValue().String()
	if strings.Contains(rendered, "hunter2-very-secret") {
		t.Errorf("password leaked into log value: %s", rendered)
	}
	if !strings.Contains(rendered, "svc") {
		t.Errorf("log value missing service name: %s", rendered)
	}
}
