package events

import "strings"

// Severity is the urgency level attached to an alert.
type Severity string

const (
	SeverityUnset    Severity = ""
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Valid reports whether s is one of the known levels.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	default:
		return false
	}
}

func (s Severity) String() string {
	return string(s)
}

// ParseSeverity converts a severity string to a Severity.
// Matching is case-insensitive; unknown values return SeverityUnset and false.
func ParseSeverity(s string) (Severity, bool) {
	sev := Severity(strings.ToUpper(strings.TrimSpace(s)))
	if !sev.Valid() {
		return SeverityUnset, false
	}
	return sev, true
}
