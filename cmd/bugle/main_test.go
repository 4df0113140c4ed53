package main

import (
	"reflect"
	"testing"
)

func TestParseMetadata(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]any
		wantErr bool
	}{
		{"empty", "", nil, false},
		{"blank", "   ", nil, false},
		{"single", "order_id=o-1", map[string]any{"order_id": "o-1"}, false},
		{"multiple with spaces", " a = 1 , b=two ", map[string]any{"a": "1", "b": "two"}, false},
		{"trailing comma", "a=1,", map[string]any{"a": "1"}, false},
		{"empty value", "a=", map[string]any{"a": ""}, false},
		{"missing separator", "a", nil, true},
		{"missing key", "=1", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseMetadata(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseMetadata(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseMetadata(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
