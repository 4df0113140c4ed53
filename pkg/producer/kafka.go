package producer

import (
	"context"
	"log/slog"

	"github.com/code-string/aegis-bugle/pkg/events"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the Kafka publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes alerts to Kafka topics as their text form.
// Delivery semantics (async, acks) belong to the writer.
type KafkaPublisher struct {
	writer MessageWriter
}

// Ensure KafkaPublisher implements BrokerPublisher interface
var _ BrokerPublisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a publisher on top of writer. The writer must not
// have a fixed topic, since every message names its own.
func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// SendAlert generates the alert ID if absent and writes the event to topic.
func (p *KafkaPublisher) SendAlert(ctx context.Context, event *events.AlertEvent, topic string) error {
	if event == nil {
		return ErrNilEvent
	}
	if err := event.EnsureAlertID(); err != nil {
		return alertIDError(BrokerKafka, err)
	}
	if err := p.write(ctx, topic, []byte(event.String()), event.Severity); err != nil {
		slog.Error("Failed to write alert to Kafka",
			"alert_id", event.AlertID,
			"topic", topic,
			"error", err,
		)
		return err
	}
	slog.Debug("Alert handed to Kafka writer", "alert_id", event.AlertID, "topic", topic)
	return nil
}

// SendPayload writes payload's text form to topic.
func (p *KafkaPublisher) SendPayload(ctx context.Context, payload Payload, topic string) error {
	return p.write(ctx, topic, []byte(payload.String()), events.SeverityUnset)
}

func (p *KafkaPublisher) write(ctx context.Context, topic string, value []byte, severity events.Severity) error {
	if topic == "" {
		return newPublishError(BrokerKafka, topic, OpSend, ErrMissingTopic)
	}
	msg := buildKafkaMessage(topic, value, severity)
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return newPublishError(BrokerKafka, topic, OpSend, err)
	}
	return nil
}

// Broker returns BrokerKafka.
func (p *KafkaPublisher) Broker() string {
	return BrokerKafka
}

// Close flushes pending messages and closes the writer.
func (p *KafkaPublisher) Close() error {
	slog.Info("Closing Kafka producer")
	if err := p.writer.Close(); err != nil {
		slog.Error("Error closing Kafka producer", "error", err)
		return err
	}
	slog.Info("Kafka producer closed successfully")
	return nil
}
