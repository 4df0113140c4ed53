package alerting

import (
	"time"

	"github.com/code-string/aegis-bugle/pkg/metrics"
)

// MetricsRecorder receives the outcome of every RaiseFailureAlert call.
type MetricsRecorder interface {
	RecordReceived()
	RecordPublished(latency time.Duration)
	RecordError()
	IncrementCustom(name string)
}

// NoopMetrics returns a recorder that discards everything.
func NoopMetrics() MetricsRecorder {
	return noopMetrics{}
}

type noopMetrics struct{}

func (noopMetrics) RecordReceived()               {}
func (noopMetrics) RecordPublished(time.Duration) {}
func (noopMetrics) RecordError()                  {}
func (noopMetrics) IncrementCustom(string)        {}

// NewMetricsAdapter adapts a Redis-backed collector to MetricsRecorder.
// A nil collector yields NoopMetrics.
func NewMetricsAdapter(c *metrics.Collector) MetricsRecorder {
	if c == nil {
		return NoopMetrics()
	}
	return c
}
