package alerting

import (
	"errors"
	"testing"

	"github.com/code-string/aegis-bugle/pkg/events"
)

func validKafkaEvent() events.BugleEvent {
	return events.BugleEvent{
		ErrorCode:     "ERR_001",
		ErrorMessage:  "database unreachable",
		ExceptionType: "ConnectionError",
		Severity:      events.SeverityHigh,
		Topic:         "alerts",
	}
}

func TestValidate_TopicAddressed(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*events.BugleEvent)
		wantField string
	}{
		{"valid", func(*events.BugleEvent) {}, ""},
		{"empty topic", func(e *events.BugleEvent) { e.Topic = "" }, "topic"},
		{"blank topic", func(e *events.BugleEvent) { e.Topic = "   " }, "topic"},
		{"empty error code", func(e *events.BugleEvent) { e.ErrorCode = "" }, "error_code"},
		{"blank error message", func(e *events.BugleEvent) { e.ErrorMessage = "\t" }, "error_message"},
		{"empty exception type", func(e *events.BugleEvent) { e.ExceptionType = "" }, "exception_type"},
		{"unset severity", func(e *events.BugleEvent) { e.Severity = events.SeverityUnset }, "severity"},
		{"unknown severity", func(e *events.BugleEvent) { e.Severity = "FATAL" }, "severity"},
		{"rabbit fields not required", func(e *events.BugleEvent) { e.RoutingKey, e.Exchange = "", "" }, ""},
		{"topic checked first", func(e *events.BugleEvent) { e.Topic, e.ErrorCode = "", "" }, "topic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := validKafkaEvent()
			tt.mutate(&event)

			err := validate(event, addressing{})
			checkValidation(t, err, tt.wantField)
		})
	}
}

func TestValidate_ExchangeRouting(t *testing.T) {
	rabbitEvent := func() events.BugleEvent {
		e := validKafkaEvent()
		e.Topic = ""
		e.RoutingKey = "alerts.high"
		e.Exchange = "alerts-ex"
		return e
	}

	tests := []struct {
		name      string
		addr      addressing
		mutate    func(*events.BugleEvent)
		wantField string
	}{
		{"valid without topic", addressing{exchangeRouting: true}, func(*events.BugleEvent) {}, ""},
		{"missing routing key", addressing{exchangeRouting: true}, func(e *events.BugleEvent) { e.RoutingKey = " " }, "routing_key"},
		{"missing exchange", addressing{exchangeRouting: true}, func(e *events.BugleEvent) { e.Exchange = "" }, "exchange"},
		{"topic names the exchange", addressing{exchangeRouting: true}, func(e *events.BugleEvent) { e.Exchange, e.Topic = "", "alerts-ex" }, ""},
		{"default exchange configured", addressing{exchangeRouting: true, defaultExchange: "bugle"}, func(e *events.BugleEvent) { e.Exchange = "" }, ""},
		{"payload fields still required", addressing{exchangeRouting: true}, func(e *events.BugleEvent) { e.ErrorCode = "" }, "error_code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := rabbitEvent()
			tt.mutate(&event)

			err := validate(event, tt.addr)
			checkValidation(t, err, tt.wantField)
		})
	}
}

func checkValidation(t *testing.T, err error, wantField string) {
	t.Helper()
	if wantField == "" {
		if err != nil {
			t.Fatalf("validate() = %v, want nil", err)
		}
		return
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("validate() = %v, want *ValidationError", err)
	}
	if ve.Field != wantField {
		t.Errorf("Field = %q, want %q", ve.Field, wantField)
	}
	if !errors.Is(err, ErrValidation) {
		t.Error("validation errors should match ErrValidation")
	}
}
