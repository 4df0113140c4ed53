// Package bugle wires a ready-to-use alert service from configuration.
// The broker publisher is chosen once here; nothing downstream switches on
// the broker type.
package bugle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/code-string/aegis-bugle/pkg/alerting"
	"github.com/code-string/aegis-bugle/pkg/config"
	"github.com/code-string/aegis-bugle/pkg/events"
	"github.com/code-string/aegis-bugle/pkg/kafka"
	"github.com/code-string/aegis-bugle/pkg/metrics"
	"github.com/code-string/aegis-bugle/pkg/producer"
	"github.com/code-string/aegis-bugle/pkg/shared"
	"github.com/redis/go-redis/v9"
)

// Bugle owns the active publisher, its broker connection and the metrics
// reporter. Close releases all of them.
type Bugle struct {
	service   *alerting.Service
	publisher producer.BrokerPublisher
	collector *metrics.Collector
	redis     *redis.Client
}

// clients builds broker connections; tests replace them.
type clients struct {
	kafkaWriter  func(kafka.WriterConfig) (producer.MessageWriter, error)
	ensureTopics func(broker string, topics []string)
	pulsar       func(producer.PulsarOptions) (producer.PulsarClient, error)
	rabbitMQ     func(producer.RabbitMQDialOptions) (producer.AMQPChannel, error)
	redis        func(ctx context.Context, addr string) (*redis.Client, error)
}

func defaultClients() clients {
	return clients{
		kafkaWriter: func(cfg kafka.WriterConfig) (producer.MessageWriter, error) {
			return kafka.NewWriter(cfg)
		},
		ensureTopics: kafka.EnsureTopics,
		pulsar:       producer.NewPulsarClient,
		rabbitMQ: func(opts producer.RabbitMQDialOptions) (producer.AMQPChannel, error) {
			return producer.DialRabbitMQ(opts)
		},
		redis: shared.ConnectRedis,
	}
}

// New validates cfg and builds the publisher it selects.
func New(ctx context.Context, cfg config.Config) (*Bugle, error) {
	return newWithClients(ctx, cfg, defaultClients())
}

func newWithClients(ctx context.Context, cfg config.Config, c clients) (*Bugle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bugle configuration: %w", err)
	}
	slog.Info("Starting bugle", "config", cfg)

	publisher, err := newPublisher(cfg, c)
	if err != nil {
		return nil, err
	}

	b := &Bugle{publisher: publisher}
	b.collector = b.startMetrics(ctx, cfg, c)

	svc, err := alerting.NewService(alerting.Options{
		ServiceName:     cfg.ServiceName,
		Environment:     cfg.Environment.String(),
		Publisher:       publisher,
		DefaultExchange: cfg.RabbitMQ.DefaultExchange,
		Metrics:         alerting.NewMetricsAdapter(b.collector),
		Logger:          slog.Default().With("component", "bugle", "service", cfg.ServiceName),
	})
	if err != nil {
		b.Close()
		return nil, err
	}
	b.service = svc

	slog.Info("Bugle ready", "broker", publisher.Broker())
	return b, nil
}

func newPublisher(cfg config.Config, c clients) (producer.BrokerPublisher, error) {
	switch cfg.ActiveBroker() {
	case config.BrokerKafka:
		writer, err := c.kafkaWriter(kafka.WriterConfig{
			Brokers:      cfg.Kafka.BootstrapServers,
			Async:        cfg.Kafka.Async,
			WriteTimeout: cfg.Kafka.WriteTimeout,
			RequiredAcks: cfg.Kafka.RequiredAcks,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka writer: %w", err)
		}
		if brokers := kafka.ParseBrokers(cfg.Kafka.BootstrapServers); len(brokers) > 0 {
			c.ensureTopics(brokers[0], cfg.Kafka.EnsureTopics)
		}
		return producer.NewKafkaPublisher(writer), nil

	case config.BrokerPulsar:
		client, err := c.pulsar(producer.PulsarOptions{
			ServiceURL:              cfg.Pulsar.ServiceURL,
			ConnectionTimeout:       cfg.Pulsar.ConnectionTimeout,
			OperationTimeout:        cfg.Pulsar.OperationTimeout,
			KeepAliveInterval:       cfg.Pulsar.KeepAliveInterval,
			MaxConnectionsPerBroker: cfg.Pulsar.MaxConnectionsPerBroker,
		})
		if err != nil {
			return nil, err
		}
		return producer.NewPulsarPublisher(client), nil

	case config.BrokerRabbitMQ:
		ch, err := c.rabbitMQ(producer.RabbitMQDialOptions{
			Host:              cfg.RabbitMQ.Host,
			Port:              cfg.RabbitMQ.Port,
			Username:          cfg.RabbitMQ.Username,
			Password:          cfg.RabbitMQ.Password,
			VirtualHost:       cfg.RabbitMQ.VirtualHost,
			ConnectionTimeout: cfg.RabbitMQ.ConnectionTimeout,
		})
		if err != nil {
			return nil, err
		}
		return producer.NewRabbitMQPublisher(ch, producer.RabbitMQOptions{
			DefaultExchange: cfg.RabbitMQ.DefaultExchange,
			AppID:           cfg.ServiceName,
			Failure: producer.FailureOptions{
				Enabled:     cfg.Failure.Enabled,
				Destination: cfg.Failure.Destination,
				MaxRetries:  cfg.Failure.MaxRetries,
			},
		}), nil

	default:
		if !cfg.Enabled {
			slog.Info("Bugle disabled, alerts will be discarded")
		}
		return producer.NewNoOp(), nil
	}
}

// startMetrics returns a collector that always keeps in-process counters and
// reports to Redis when an address is configured and reachable.
func (b *Bugle) startMetrics(ctx context.Context, cfg config.Config, c clients) *metrics.Collector {
	if cfg.Metrics.RedisAddr == "" {
		return metrics.NewCollector(cfg.ServiceName, b.publisher.Broker(), nil)
	}

	client, err := c.redis(ctx, cfg.Metrics.RedisAddr)
	if err != nil {
		slog.Warn("Failed to connect to Redis for metrics, continuing without reporting",
			"redis_addr", cfg.Metrics.RedisAddr,
			"error", err,
		)
		return metrics.NewCollector(cfg.ServiceName, b.publisher.Broker(), nil)
	}
	b.redis = client

	collector := metrics.NewCollector(cfg.ServiceName, b.publisher.Broker(), client)
	collector.SetReportInterval(cfg.Metrics.ReportInterval)
	collector.Start(context.WithoutCancel(ctx))
	slog.Info("Metrics reporting enabled",
		"redis_addr", cfg.Metrics.RedisAddr,
		"interval", cfg.Metrics.ReportInterval,
	)
	return collector
}

// RaiseFailureAlert validates, enriches and publishes event.
// See alerting.Service.RaiseFailureAlert.
func (b *Bugle) RaiseFailureAlert(ctx context.Context, event events.BugleEvent) error {
	return b.service.RaiseFailureAlert(ctx, event)
}

// Service returns the underlying alert service.
func (b *Bugle) Service() *alerting.Service {
	return b.service
}

// Publisher returns the active publisher, for the enrichment-free path
// (producer.Publish).
func (b *Bugle) Publisher() producer.BrokerPublisher {
	return b.publisher
}

// Metrics returns the metrics collector. It is never nil.
func (b *Bugle) Metrics() *metrics.Collector {
	return b.collector
}

// Close stops metrics reporting and closes the publisher and Redis client.
func (b *Bugle) Close() error {
	var errs []error
	if b.collector != nil {
		b.collector.Stop()
	}
	if b.publisher != nil {
		if err := b.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}
