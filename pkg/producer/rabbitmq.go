package producer

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/code-string/aegis-bugle/pkg/events"
	"github.com/code-string/aegis-bugle/pkg/shared"
	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPChannel is the part of *amqp.Channel the RabbitMQ publisher uses.
type AMQPChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQDialOptions holds the connection parameters for DialRabbitMQ.
type RabbitMQDialOptions struct {
	Host              string
	Port              int
	Username          string
	Password          string
	VirtualHost       string
	ConnectionTimeout time.Duration
}

// URL returns the AMQP URL for the options. The virtual host is carried
// separately in the dial config.
func (o RabbitMQDialOptions) URL() string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(o.Username, o.Password),
		Host:   net.JoinHostPort(o.Host, strconv.Itoa(o.Port)),
	}
	return u.String()
}

// RabbitMQConnection is a connection with one channel opened on it.
// It satisfies AMQPChannel; Close closes both.
type RabbitMQConnection struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// DialRabbitMQ connects to RabbitMQ and opens a channel.
func DialRabbitMQ(opts RabbitMQDialOptions) (*RabbitMQConnection, error) {
	addr := opts.URL()
	slog.Info("Connecting to RabbitMQ",
		"url", shared.MaskURL(addr),
		"vhost", opts.VirtualHost,
		"connection_timeout", opts.ConnectionTimeout,
	)

	conn, err := amqp.DialConfig(addr, amqp.Config{
		Vhost: opts.VirtualHost,
		Dial:  amqp.DefaultDial(opts.ConnectionTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ at %s: %w", shared.MaskURL(addr), err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}
	return &RabbitMQConnection{conn: conn, channel: ch}, nil
}

func (c *RabbitMQConnection) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return c.channel.PublishWithContext(ctx, exchange, key, mandatory, immediate, msg)
}

func (c *RabbitMQConnection) Close() error {
	chErr := c.channel.Close()
	if err := c.conn.Close(); err != nil {
		return err
	}
	return chErr
}

// FailureOptions configures the failure sideband.
type FailureOptions struct {
	Enabled bool
	// Destination is the routing key failure reports are published with.
	Destination string
	// MaxRetries is informational; the sideband makes exactly one attempt.
	MaxRetries int
}

// RabbitMQOptions configures a RabbitMQPublisher.
type RabbitMQOptions struct {
	DefaultExchange string
	// AppID is set on every published message, normally the service name.
	AppID   string
	Failure FailureOptions
}

// RabbitMQPublisher publishes alerts as JSON to an exchange with the event's
// routing key. Addressing travels out of band and is left out of the body.
type RabbitMQPublisher struct {
	channel AMQPChannel
	opts    RabbitMQOptions
	now     func() time.Time
}

// Ensure RabbitMQPublisher implements BrokerPublisher and FailureReporter
var (
	_ BrokerPublisher = (*RabbitMQPublisher)(nil)
	_ FailureReporter = (*RabbitMQPublisher)(nil)
)

// NewRabbitMQPublisher creates a publisher on top of channel.
func NewRabbitMQPublisher(channel AMQPChannel, opts RabbitMQOptions) *RabbitMQPublisher {
	return &RabbitMQPublisher{channel: channel, opts: opts, now: time.Now}
}

// SendAlert publishes event to the resolved exchange using the event's routing
// key. The event itself is not modified apart from alert ID assignment.
func (p *RabbitMQPublisher) SendAlert(ctx context.Context, event *events.AlertEvent, destination string) error {
	if event == nil {
		return ErrNilEvent
	}
	routingKey := event.RoutingKey
	exchange := p.ResolveExchange(event, destination)
	if routingKey == "" {
		return newPublishError(BrokerRabbitMQ, exchange, OpSend, ErrMissingRoutingKey)
	}
	if err := event.EnsureAlertID(); err != nil {
		return alertIDError(BrokerRabbitMQ, err)
	}

	body, err := encodeJSON(event.WithoutAddressing())
	if err != nil {
		slog.Error("Error serializing alert for RabbitMQ", "alert_id", event.AlertID, "error", err)
		return newPublishError(BrokerRabbitMQ, exchange, OpSerialize, err)
	}

	slog.Debug("Publishing alert to RabbitMQ", "exchange", exchange, "routing_key", routingKey)
	if err := p.publish(ctx, exchange, routingKey, body); err != nil {
		slog.Error("Failed to publish alert to RabbitMQ",
			"alert_id", event.AlertID,
			"exchange", exchange,
			"routing_key", routingKey,
			"error", err,
		)
		return newPublishError(BrokerRabbitMQ, exchange, OpSend, err)
	}
	slog.Info("Published alert to RabbitMQ",
		"alert_id", event.AlertID,
		"exchange", exchange,
		"routing_key", routingKey,
	)
	return nil
}

// SendPayload publishes payload as JSON with destination as routing key, to
// destination as exchange when set, else the default exchange.
func (p *RabbitMQPublisher) SendPayload(ctx context.Context, payload Payload, destination string) error {
	exchange := p.ResolveExchange(nil, destination)
	if destination == "" {
		return newPublishError(BrokerRabbitMQ, exchange, OpSend, ErrMissingRoutingKey)
	}
	body, err := encodeJSON(payload)
	if err != nil {
		return newPublishError(BrokerRabbitMQ, exchange, OpSerialize, err)
	}
	if err := p.publish(ctx, exchange, destination, body); err != nil {
		return newPublishError(BrokerRabbitMQ, exchange, OpSend, err)
	}
	return nil
}

// ResolveExchange returns the event's own exchange if set, else destination if
// non-blank, else the configured default exchange. event may be nil.
func (p *RabbitMQPublisher) ResolveExchange(event *events.AlertEvent, destination string) string {
	if event != nil && strings.TrimSpace(event.Exchange) != "" {
		return event.Exchange
	}
	if strings.TrimSpace(destination) != "" {
		return destination
	}
	return p.opts.DefaultExchange
}

// PublishFailure reports a failed publish on the failure sideband. It makes a
// single attempt and never returns an error or panics.
func (p *RabbitMQPublisher) PublishFailure(ctx context.Context, originalDestination string, message any, cause error) {
	if !p.opts.Failure.Enabled {
		slog.Warn("Failure handling is disabled, skipping failure message publication",
			"original_destination", originalDestination,
		)
		return
	}

	bestEffort("publish failure message", func() error {
		alert, _ := message.(*events.AlertEvent)
		if alert != nil {
			message = alert.WithoutAddressing()
		}
		fm := events.NewFailureMessage(originalDestination, message, cause, p.now())
		body, err := encodeJSON(fm)
		if err != nil {
			return err
		}

		exchange := p.ResolveExchange(alert, originalDestination)
		if err := p.publish(ctx, exchange, p.opts.Failure.Destination, body); err != nil {
			return fmt.Errorf("exchange %q routing key %q: %w", exchange, p.opts.Failure.Destination, err)
		}
		slog.Info("Published failure message to RabbitMQ",
			"exchange", exchange,
			"failure_destination", p.opts.Failure.Destination,
		)
		return nil
	})
}

func (p *RabbitMQPublisher) publish(ctx context.Context, exchange, routingKey string, body []byte) error {
	return p.channel.PublishWithContext(ctx, exchange, routingKey, false, false,
		buildPublishing(body, p.opts.AppID, p.now()))
}

// Broker returns BrokerRabbitMQ.
func (p *RabbitMQPublisher) Broker() string {
	return BrokerRabbitMQ
}

// Close closes the channel.
func (p *RabbitMQPublisher) Close() error {
	slog.Info("Closing RabbitMQ publisher")
	return p.channel.Close()
}

// bestEffort runs fn and contains every failure it produces. Errors are logged
// and panics are recovered; nothing propagates to the caller.
func bestEffort(op string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Recovered panic in best-effort operation", "op", op, "panic", r)
		}
	}()
	if err := fn(); err != nil {
		slog.Error("Best-effort operation failed", "op", op, "error", err)
	}
}
