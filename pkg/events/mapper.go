package events

import "maps"

// Mapper converts raw BugleEvents into AlertEvents.
// It only copies fields; validation and enrichment happen elsewhere.
type Mapper struct{}

// NewMapper returns a Mapper.
func NewMapper() Mapper {
	return Mapper{}
}

// ToAlertEvent maps src onto a new AlertEvent.
func (m Mapper) ToAlertEvent(src BugleEvent) *AlertEvent {
	dst := &AlertEvent{}
	m.MapInto(dst, src)
	return dst
}

// MapInto copies every set field of src onto dst. Zero-valued source fields
// leave the corresponding dst field untouched. Metadata is cloned.
func (Mapper) MapInto(dst *AlertEvent, src BugleEvent) {
	if src.ErrorCode != "" {
		dst.ErrorCode = src.ErrorCode
	}
	if src.ErrorMessage != "" {
		dst.ErrorMessage = src.ErrorMessage
	}
	if src.ExceptionType != "" {
		dst.ExceptionType = src.ExceptionType
	}
	if src.StackTrace != "" {
		dst.StackTrace = src.StackTrace
	}
	if !src.Timestamp.IsZero() {
		dst.Timestamp = src.Timestamp
	}
	if src.Severity != SeverityUnset {
		dst.Severity = src.Severity
	}
	if src.RoutingKey != "" {
		dst.RoutingKey = src.RoutingKey
	}
	if src.Exchange != "" {
		dst.Exchange = src.Exchange
	}
	if src.Metadata != nil {
		dst.Metadata = maps.Clone(src.Metadata)
	}
}
