package producer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/code-string/aegis-bugle/pkg/events"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
)

const (
	contentTypeText = "text/plain"
	contentTypeJSON = "application/json"
)

// encodeJSON serializes v to UTF-8 JSON bytes.
func encodeJSON(v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return payload, nil
}

// buildKafkaMessage creates a Kafka message for topic. The key is left nil so
// the writer's balancer picks the partition.
func buildKafkaMessage(topic string, value []byte, severity events.Severity) kafka.Message {
	headers := []kafka.Header{
		{Key: "content-type", Value: []byte(contentTypeText)},
		{Key: "message_id", Value: []byte(uuid.NewString())},
	}
	if severity != events.SeverityUnset {
		headers = append(headers, kafka.Header{Key: "severity", Value: []byte(severity)})
	}
	return kafka.Message{
		Topic:   topic,
		Value:   value,
		Headers: headers,
	}
}

// buildPublishing wraps a JSON body in a persistent AMQP message.
func buildPublishing(body []byte, appID string, now time.Time) amqp.Publishing {
	return amqp.Publishing{
		ContentType:  contentTypeJSON,
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    now,
		AppId:        appID,
		Body:         body,
	}
}
