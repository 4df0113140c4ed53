package alerting

import (
	"errors"
	"fmt"
	"strings"

	"github.com/code-string/aegis-bugle/pkg/events"
)

// ErrValidation is matched by every *ValidationError via errors.Is.
var ErrValidation = errors.New("invalid alert event")

// ValidationError reports the first mandatory BugleEvent field that is missing.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// addressing describes which destination fields the active broker needs.
type addressing struct {
	// exchangeRouting is set for brokers addressed by exchange and routing key.
	exchangeRouting bool
	// defaultExchange satisfies the exchange requirement when set.
	defaultExchange string
}

// validate checks event in order and returns the first problem found.
func validate(event events.BugleEvent, addr addressing) error {
	if addr.exchangeRouting {
		if blank(event.RoutingKey) {
			return &ValidationError{Field: "routing_key", Message: "Invalid routing key provided"}
		}
		if blank(event.Exchange) && blank(event.Topic) && blank(addr.defaultExchange) {
			return &ValidationError{Field: "exchange", Message: "Invalid exchange provided"}
		}
	} else if blank(event.Topic) {
		return &ValidationError{Field: "topic", Message: "Invalid topic provided"}
	}

	switch {
	case blank(event.ErrorCode):
		return &ValidationError{Field: "error_code", Message: "Invalid error code provided"}
	case blank(event.ErrorMessage):
		return &ValidationError{Field: "error_message", Message: "Invalid error message provided"}
	case blank(event.ExceptionType):
		return &ValidationError{Field: "exception_type", Message: "Invalid exception type provided"}
	case !event.Severity.Valid():
		return &ValidationError{Field: "severity", Message: "Invalid severity provided"}
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
