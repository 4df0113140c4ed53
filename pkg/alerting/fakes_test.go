package alerting

import (
	"context"
	"sync"
	"time"

	"github.com/code-string/aegis-bugle/pkg/events"
	"github.com/code-string/aegis-bugle/pkg/producer"
)

type sentAlert struct {
	event       events.AlertEvent
	destination string
}

// fakePublisher records SendAlert calls and optionally fails them.
type fakePublisher struct {
	mu     sync.Mutex
	broker string
	err    error
	sent   []sentAlert
}

func (p *fakePublisher) SendAlert(_ context.Context, event *events.AlertEvent, destination string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, sentAlert{event: *event, destination: destination})
	return nil
}

func (p *fakePublisher) SendPayload(context.Context, producer.Payload, string) error {
	return p.err
}

func (p *fakePublisher) Broker() string {
	if p.broker == "" {
		return producer.BrokerKafka
	}
	return p.broker
}

func (p *fakePublisher) Close() error { return nil }

type failureReport struct {
	originalDestination string
	message             any
	cause               error
}

// fakeReportingPublisher also implements producer.FailureReporter.
type fakeReportingPublisher struct {
	fakePublisher
	reports []failureReport
}

func (p *fakeReportingPublisher) PublishFailure(_ context.Context, originalDestination string, message any, cause error) {
	p.reports = append(p.reports, failureReport{originalDestination, message, cause})
}

// fakeMetrics counts recorder calls.
type fakeMetrics struct {
	mu        sync.Mutex
	received  int
	published int
	errors    int
	custom    map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{custom: make(map[string]int)}
}

func (m *fakeMetrics) RecordReceived() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.received++
}

func (m *fakeMetrics) RecordPublished(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published++
}

func (m *fakeMetrics) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors++
}

func (m *fakeMetrics) IncrementCustom(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.custom[name]++
}
