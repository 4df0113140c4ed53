// Package events defines the alert payloads exchanged between application code
// and the broker publishers, and the mapping between them.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// ErrAlertGeneration is returned when an alert ID cannot be generated.
// It indicates a misconfiguration (empty service name), not bad input.
var ErrAlertGeneration = errors.New("alert id generation failed")

// BugleEvent is the raw failure event raised by application code.
// Topic, RoutingKey and Exchange carry broker-specific addressing; which of them
// are required depends on the active broker.
type BugleEvent struct {
	ErrorCode     string         `json:"error_code"`
	ErrorMessage  string         `json:"error_message"`
	ExceptionType string         `json:"exception_type"`
	StackTrace    string         `json:"stack_trace,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
	Severity      Severity       `json:"severity"`
	Topic         string         `json:"topic,omitempty"`
	RoutingKey    string         `json:"routing_key,omitempty"`
	Exchange      string         `json:"exchange,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// AlertEvent is the canonical outbound alert payload.
type AlertEvent struct {
	AlertID       string         `json:"alert_id,omitempty"`
	ServiceName   string         `json:"service_name,omitempty"`
	ErrorCode     string         `json:"error_code,omitempty"`
	ErrorMessage  string         `json:"error_message,omitempty"`
	ExceptionType string         `json:"exception_type,omitempty"`
	StackTrace    string         `json:"stack_trace,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
	Severity      Severity       `json:"severity,omitempty"`
	Environment   string         `json:"environment,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	RoutingKey    string         `json:"routing_key,omitempty"`
	Exchange      string         `json:"exchange,omitempty"`
}

// MarshalJSON omits an unset timestamp and renders a set one as RFC 3339 in UTC.
func (e AlertEvent) MarshalJSON() ([]byte, error) {
	type alias AlertEvent
	var ts *time.Time
	if !e.Timestamp.IsZero() {
		utc := e.Timestamp.UTC()
		ts = &utc
	}
	return json.Marshal(struct {
		alias
		Timestamp *time.Time `json:"timestamp,omitempty"`
	}{alias: alias(e), Timestamp: ts})
}

// SetAlertID generates a fresh alert ID from the event's service name.
func (e *AlertEvent) SetAlertID() error {
	id, err := GenerateAlertID(e.ServiceName)
	if err != nil {
		return err
	}
	e.AlertID = id
	return nil
}

// EnsureAlertID generates an alert ID only when none is set.
func (e *AlertEvent) EnsureAlertID() error {
	if e.AlertID != "" {
		return nil
	}
	return e.SetAlertID()
}

// WithoutAddressing returns a copy of the event with the transport-only
// routing key and exchange cleared. The receiver is not modified.
func (e AlertEvent) WithoutAddressing() AlertEvent {
	e.RoutingKey = ""
	e.Exchange = ""
	return e
}

// String renders the event as space separated key=value pairs in a fixed
// order. Metadata entries follow as metadata.<key>=<value>, sorted by key.
func (e AlertEvent) String() string {
	var b strings.Builder
	writePair(&b, "alert_id", e.AlertID)
	writePair(&b, "service_name", e.ServiceName)
	writePair(&b, "error_code", e.ErrorCode)
	writePair(&b, "error_message", e.ErrorMessage)
	writePair(&b, "exception_type", e.ExceptionType)
	if e.StackTrace != "" {
		writePair(&b, "stack_trace", e.StackTrace)
	}
	if !e.Timestamp.IsZero() {
		writePair(&b, "timestamp", e.Timestamp.UTC().Format(time.RFC3339Nano))
	}
	writePair(&b, "severity", string(e.Severity))
	writePair(&b, "environment", e.Environment)

	keys := make([]string, 0, len(e.Metadata))
	for k := range e.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writePair(&b, "metadata."+k, fmt.Sprint(e.Metadata[k]))
	}
	return b.String()
}

func writePair(b *strings.Builder, key, value string) {
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(key)
	b.WriteByte('=')
	if value == "" || strings.ContainsAny(value, " \t\n\"=") {
		b.WriteString(strconv.Quote(value))
		return
	}
	b.WriteString(value)
}

// lastNanos backs the strictly increasing nanosecond component of alert IDs.
var lastNanos atomic.Int64

// GenerateAlertID returns an ID of the form alert-<serviceName>-<epochMillis>-<nanos>.
// The nanos component never repeats within a process.
func GenerateAlertID(serviceName string) (string, error) {
	return generateAlertID(serviceName, time.Now())
}

func generateAlertID(serviceName string, now time.Time) (string, error) {
	if serviceName == "" {
		return "", fmt.Errorf("%w: service name is empty", ErrAlertGeneration)
	}
	return fmt.Sprintf("alert-%s-%d-%d", serviceName, now.UnixMilli(), nextNanos(now)), nil
}

func nextNanos(now time.Time) int64 {
	for {
		last := lastNanos.Load()
		n := now.UnixNano()
		if n <= last {
			n = last + 1
		}
		if lastNanos.CompareAndSwap(last, n) {
			return n
		}
	}
}

// FailureMessage reports a publish that could not be completed.
type FailureMessage struct {
	OriginalDestination string `json:"original_destination"`
	Message             any    `json:"message"`
	ErrorMessage        string `json:"error_message"`
	ErrorClass          string `json:"error_class"`
	Timestamp           int64  `json:"timestamp"`
}

// NewFailureMessage builds a FailureMessage for message, which failed to reach
// originalDestination with cause.
func NewFailureMessage(originalDestination string, message any, cause error, now time.Time) FailureMessage {
	fm := FailureMessage{
		OriginalDestination: originalDestination,
		Message:             message,
		Timestamp:           now.UnixMilli(),
	}
	if cause != nil {
		fm.ErrorMessage = cause.Error()
		fm.ErrorClass = fmt.Sprintf("%T", cause)
	}
	return fm
}
