// Package producer provides the broker publishers used to deliver alerts.
// Each broker (Kafka, Pulsar, RabbitMQ) has its own addressing and wire format;
// NoOp stands in when no broker is configured.
package producer

import (
	"context"
	"errors"
	"fmt"

	"github.com/code-string/aegis-bugle/pkg/events"
)

// Broker names reported by BrokerPublisher.Broker.
const (
	BrokerKafka    = "kafka"
	BrokerPulsar   = "pulsar"
	BrokerRabbitMQ = "rabbitmq"
	BrokerNoOp     = "noop"
)

var (
	// ErrNilEvent is returned when a nil alert is handed to a real broker.
	ErrNilEvent = errors.New("alert event is nil")
	// ErrMissingRoutingKey is returned when a RabbitMQ publish has no routing key.
	ErrMissingRoutingKey = errors.New("routing key is required")
	// ErrMissingTopic is returned when a topic-addressed publish has no topic.
	ErrMissingTopic = errors.New("topic is required")
)

// Payload is anything a publisher can put on the wire without alert
// enrichment. Kafka sends the String form; Pulsar and RabbitMQ send JSON.
type Payload interface {
	fmt.Stringer
}

// BrokerPublisher sends alerts to one message broker.
// Success means the broker client accepted the message for delivery.
type BrokerPublisher interface {
	// SendAlert publishes an enriched alert to destination. The meaning of
	// destination depends on the broker (topic or exchange override).
	SendAlert(ctx context.Context, event *events.AlertEvent, destination string) error
	// SendPayload publishes payload without alert ID or environment handling.
	SendPayload(ctx context.Context, payload Payload, destination string) error
	// Broker returns the broker name, one of the Broker* constants.
	Broker() string
	Close() error
}

// FailureReporter is implemented by publishers that support the failure
// sideband. PublishFailure never returns an error and never panics.
type FailureReporter interface {
	PublishFailure(ctx context.Context, originalDestination string, message any, cause error)
}

// Publish sends payload through p on the enrichment-free path.
func Publish[T Payload](ctx context.Context, p BrokerPublisher, payload T, destination string) error {
	return p.SendPayload(ctx, payload, destination)
}

// Op identifies the stage of a publish that failed.
type Op string

const (
	OpSerialize Op = "serialize"
	OpConnect   Op = "connect"
	OpSend      Op = "send"
)

// PublishError is a broker client failure on the primary send path.
type PublishError struct {
	Broker      string
	Destination string
	Op          Op
	Err         error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("%s %s to %q failed: %v", e.Broker, e.Op, e.Destination, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

func newPublishError(broker, destination string, op Op, err error) *PublishError {
	return &PublishError{Broker: broker, Destination: destination, Op: op, Err: err}
}

func alertIDError(broker string, err error) error {
	return fmt.Errorf("%s: %w", broker, err)
}
