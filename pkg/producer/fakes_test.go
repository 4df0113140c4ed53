package producer

import (
	"context"
	"sync"

	"github.com/segmentio/kafka-go"
)

// fakeWriter records every message written to it.
type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	calls    int
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

// fakePulsarClient hands out fakeSenders and records their lifecycle.
type fakePulsarClient struct {
	createErr error
	sendErr   error
	topics    []string
	senders   []*fakeSender
	closed    bool
}

func (c *fakePulsarClient) CreateProducer(topic string) (PulsarSender, error) {
	c.topics = append(c.topics, topic)
	if c.createErr != nil {
		return nil, c.createErr
	}
	s := &fakeSender{err: c.sendErr}
	c.senders = append(c.senders, s)
	return s, nil
}

func (c *fakePulsarClient) Close() {
	c.closed = true
}

type fakeSender struct {
	err      error
	payloads [][]byte
	closed   bool
}

func (s *fakeSender) Send(_ context.Context, payload []byte) error {
	if s.err != nil {
		return s.err
	}
	s.payloads = append(s.payloads, payload)
	return nil
}

func (s *fakeSender) Close() {
	s.closed = true
}

// textPayload is a minimal Payload for the generic path.
type textPayload struct {
	Kind  string `json:"kind"`
	Value int    `json:"value"`
}

func (p textPayload) String() string {
	return p.Kind
}
