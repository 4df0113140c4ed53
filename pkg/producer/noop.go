package producer

import (
	"context"
	"log/slog"

	"github.com/code-string/aegis-bugle/pkg/events"
)

// NoOpPublisher logs alerts instead of publishing them.
// Used when no broker is configured; it never fails.
type NoOpPublisher struct{}

// Ensure NoOpPublisher implements BrokerPublisher interface
var _ BrokerPublisher = (*NoOpPublisher)(nil)

// NewNoOp creates a publisher that discards everything it is given.
func NewNoOp() *NoOpPublisher {
	slog.Info("Using no-op publisher (no broker connection)",
		"note", "Alerts will be logged but not published",
	)
	return &NoOpPublisher{}
}

// SendAlert logs the alert and discards it.
func (p *NoOpPublisher) SendAlert(ctx context.Context, event *events.AlertEvent, destination string) error {
	slog.Warn("No broker configured, alert not published", "destination", destination)
	if event == nil {
		return nil
	}
	slog.Info("No-op publish (alert logged, not sent)",
		"destination", destination,
		"alert_id", event.AlertID,
		"severity", event.Severity,
		"alert", event.String(),
	)
	return nil
}

// SendPayload logs the payload and discards it.
func (p *NoOpPublisher) SendPayload(ctx context.Context, payload Payload, destination string) error {
	slog.Warn("No broker configured, payload not published", "destination", destination)
	if payload == nil {
		return nil
	}
	slog.Info("No-op publish (payload logged, not sent)",
		"destination", destination,
		"payload", safeString(payload),
	)
	return nil
}

// Broker returns BrokerNoOp.
func (p *NoOpPublisher) Broker() string {
	return BrokerNoOp
}

// Close is a no-op.
func (p *NoOpPublisher) Close() error {
	slog.Info("No-op publisher closed")
	return nil
}

// safeString renders payload, tolerating typed nil pointers whose String panics.
func safeString(payload Payload) (s string) {
	defer func() {
		if recover() != nil {
			s = "<nil>"
		}
	}()
	return payload.String()
}
