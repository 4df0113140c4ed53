package events

import "testing"

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   Severity
		wantOK bool
	}{
		{"LOW", "LOW", SeverityLow, true},
		{"MEDIUM", "MEDIUM", SeverityMedium, true},
		{"HIGH", "HIGH", SeverityHigh, true},
		{"CRITICAL", "CRITICAL", SeverityCritical, true},
		{"lowercase", "critical", SeverityCritical, true},
		{"mixed case", "HiGh", SeverityHigh, true},
		{"padded", "  low ", SeverityLow, true},
		{"empty string", "", SeverityUnset, false},
		{"unknown value", "UNKNOWN", SeverityUnset, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseSeverity(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseSeverity(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestSeverityValid(t *testing.T) {
	for _, sev := range []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical} {
		if !sev.Valid() {
			t.Errorf("%q should be valid", sev)
		}
	}
	for _, sev := range []Severity{SeverityUnset, "low", "FATAL"} {
		if sev.Valid() {
			t.Errorf("%q should not be valid", sev)
		}
	}
}
