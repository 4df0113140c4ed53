// Package alerting turns raw failure events into published alerts.
// It validates the caller's event, enriches it with the service identity and
// hands it to the configured broker publisher.
package alerting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/code-string/aegis-bugle/pkg/events"
	"github.com/code-string/aegis-bugle/pkg/producer"
)

// Options configures a Service.
type Options struct {
	ServiceName string
	Environment string
	Publisher   producer.BrokerPublisher
	// DefaultExchange is the RabbitMQ exchange used when an event names none.
	DefaultExchange string
	// Metrics defaults to NoopMetrics.
	Metrics MetricsRecorder
	// Logger defaults to slog.Default with a component attribute.
	Logger *slog.Logger
}

// Service raises failure alerts through one broker publisher.
// It is safe for concurrent use when the publisher is.
type Service struct {
	serviceName string
	environment string
	publisher   producer.BrokerPublisher
	failures    producer.FailureReporter
	mapper      events.Mapper
	addressing  addressing
	metrics     MetricsRecorder
	logger      *slog.Logger
	now         func() time.Time
}

// NewService creates a Service. The publisher's broker decides, once, which
// addressing fields events must carry and whether failures are reported.
func NewService(opts Options) (*Service, error) {
	if opts.ServiceName == "" {
		return nil, errors.New("service name is required")
	}
	if opts.Publisher == nil {
		return nil, errors.New("publisher is required")
	}
	if opts.Metrics == nil {
		opts.Metrics = NoopMetrics()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default().With("component", "bugle")
	}

	failures, _ := opts.Publisher.(producer.FailureReporter)
	return &Service{
		serviceName: opts.ServiceName,
		environment: opts.Environment,
		publisher:   opts.Publisher,
		failures:    failures,
		mapper:      events.NewMapper(),
		addressing: addressing{
			exchangeRouting: opts.Publisher.Broker() == producer.BrokerRabbitMQ,
			defaultExchange: opts.DefaultExchange,
		},
		metrics: opts.Metrics,
		logger:  opts.Logger,
		now:     time.Now,
	}, nil
}

// RaiseFailureAlert validates event, enriches it and publishes it to the
// event's topic. event is never modified.
//
// Errors: *ValidationError (errors.Is ErrValidation) before any publish,
// events.ErrAlertGeneration on misconfiguration, and the publisher's error
// (typically *producer.PublishError) wrapped.
func (s *Service) RaiseFailureAlert(ctx context.Context, event events.BugleEvent) error {
	s.metrics.RecordReceived()

	if err := validate(event, s.addressing); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			s.metrics.IncrementCustom("validation_error." + ve.Field)
		}
		s.logger.Warn("Rejected alert event", "error", err)
		return err
	}

	alert := s.mapper.ToAlertEvent(event)
	alert.ServiceName = s.serviceName
	if err := alert.SetAlertID(); err != nil {
		s.logger.Error("Failed to generate alert id", "error", err)
		return fmt.Errorf("failed to generate alert id: %w", err)
	}
	alert.Environment = s.environment
	if alert.Timestamp.IsZero() {
		alert.Timestamp = s.now().UTC()
	}

	start := s.now()
	if err := s.publisher.SendAlert(ctx, alert, event.Topic); err != nil {
		s.metrics.RecordError()
		s.logger.Error("Failed to publish alert",
			"alert_id", alert.AlertID,
			"broker", s.publisher.Broker(),
			"destination", event.Topic,
			"error", err,
		)
		if s.failures != nil {
			s.failures.PublishFailure(ctx, event.Topic, alert, err)
		}
		return fmt.Errorf("failed to publish alert %s: %w", alert.AlertID, err)
	}
	s.metrics.RecordPublished(s.now().Sub(start))

	s.logger.Debug("Alert published",
		"alert_id", alert.AlertID,
		"broker", s.publisher.Broker(),
		"severity", alert.Severity,
	)
	return nil
}

// Broker returns the name of the active publisher's broker.
func (s *Service) Broker() string {
	return s.publisher.Broker()
}
