package producer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/code-string/aegis-bugle/pkg/events"
)

// PulsarSender is a producer bound to one topic.
type PulsarSender interface {
	Send(ctx context.Context, payload []byte) error
	Close()
}

// PulsarClient creates topic producers and owns the broker connection.
type PulsarClient interface {
	CreateProducer(topic string) (PulsarSender, error)
	Close()
}

// PulsarOptions configures the Pulsar client connection.
type PulsarOptions struct {
	ServiceURL              string
	ConnectionTimeout       time.Duration
	OperationTimeout        time.Duration
	KeepAliveInterval       time.Duration
	MaxConnectionsPerBroker int
}

// NewPulsarClient connects a Pulsar client. Producers it creates use a byte schema.
func NewPulsarClient(opts PulsarOptions) (PulsarClient, error) {
	if opts.ServiceURL == "" {
		return nil, fmt.Errorf("pulsar service url cannot be empty")
	}
	client, err := pulsar.NewClient(pulsar.ClientOptions{
		URL:                     opts.ServiceURL,
		ConnectionTimeout:       opts.ConnectionTimeout,
		OperationTimeout:        opts.OperationTimeout,
		KeepAliveInterval:       opts.KeepAliveInterval,
		MaxConnectionsPerBroker: opts.MaxConnectionsPerBroker,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pulsar client: %w", err)
	}
	slog.Info("Pulsar client configured",
		"service_url", opts.ServiceURL,
		"operation_timeout", opts.OperationTimeout,
		"connection_timeout", opts.ConnectionTimeout,
	)
	return &pulsarClient{client: client}, nil
}

type pulsarClient struct {
	client pulsar.Client
}

func (c *pulsarClient) CreateProducer(topic string) (PulsarSender, error) {
	p, err := c.client.CreateProducer(pulsar.ProducerOptions{
		Topic:  topic,
		Schema: pulsar.NewBytesSchema(nil),
	})
	if err != nil {
		return nil, err
	}
	return &pulsarSender{producer: p}, nil
}

func (c *pulsarClient) Close() {
	c.client.Close()
}

type pulsarSender struct {
	producer pulsar.Producer
}

func (s *pulsarSender) Send(ctx context.Context, payload []byte) error {
	_, err := s.producer.Send(ctx, &pulsar.ProducerMessage{Payload: payload})
	return err
}

func (s *pulsarSender) Close() {
	s.producer.Close()
}

// PulsarPublisher publishes alerts to Pulsar topics as JSON.
// Each send creates its own producer and closes it before returning.
type PulsarPublisher struct {
	client PulsarClient
}

// Ensure PulsarPublisher implements BrokerPublisher interface
var _ BrokerPublisher = (*PulsarPublisher)(nil)

// NewPulsarPublisher creates a publisher on top of client.
func NewPulsarPublisher(client PulsarClient) *PulsarPublisher {
	return &PulsarPublisher{client: client}
}

// SendAlert assigns a fresh alert ID and sends the full event as JSON to topic.
func (p *PulsarPublisher) SendAlert(ctx context.Context, event *events.AlertEvent, topic string) error {
	if event == nil {
		return ErrNilEvent
	}
	if err := event.SetAlertID(); err != nil {
		return alertIDError(BrokerPulsar, err)
	}
	body, err := encodeJSON(event)
	if err != nil {
		return newPublishError(BrokerPulsar, topic, OpSerialize, err)
	}
	if err := p.send(ctx, topic, body); err != nil {
		slog.Error("Failed to publish alert to Pulsar",
			"alert_id", event.AlertID,
			"topic", topic,
			"error", err,
		)
		return err
	}
	slog.Debug("Alert published to Pulsar", "alert_id", event.AlertID, "topic", topic)
	return nil
}

// SendPayload sends payload as JSON to topic.
func (p *PulsarPublisher) SendPayload(ctx context.Context, payload Payload, topic string) error {
	body, err := encodeJSON(payload)
	if err != nil {
		return newPublishError(BrokerPulsar, topic, OpSerialize, err)
	}
	return p.send(ctx, topic, body)
}

func (p *PulsarPublisher) send(ctx context.Context, topic string, body []byte) error {
	if topic == "" {
		return newPublishError(BrokerPulsar, topic, OpSend, ErrMissingTopic)
	}
	sender, err := p.client.CreateProducer(topic)
	if err != nil {
		return newPublishError(BrokerPulsar, topic, OpConnect, err)
	}
	defer sender.Close()

	if err := sender.Send(ctx, body); err != nil {
		return newPublishError(BrokerPulsar, topic, OpSend, err)
	}
	return nil
}

// Broker returns BrokerPulsar.
func (p *PulsarPublisher) Broker() string {
	return BrokerPulsar
}

// Close closes the underlying client.
func (p *PulsarPublisher) Close() error {
	slog.Info("Closing Pulsar client")
	p.client.Close()
	return nil
}
