// Package kafka provides shared Kafka utilities for the bugle publishers.
package kafka

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// ParseBrokers parses a comma-separated broker list and trims whitespace.
// Empty entries are dropped.
func ParseBrokers(brokers string) []string {
	if brokers == "" {
		return nil
	}
	brokerList := make([]string, 0, strings.Count(brokers, ",")+1)
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokerList = append(brokerList, b)
		}
	}
	return brokerList
}

// ValidateProducerParams validates common producer parameters.
func ValidateProducerParams(brokers string) error {
	if len(ParseBrokers(brokers)) == 0 {
		return fmt.Errorf("brokers cannot be empty")
	}
	return nil
}

// WriterConfig holds the knobs used to build a Writer.
type WriterConfig struct {
	Brokers      string
	Async        bool
	WriteTimeout time.Duration
	RequiredAcks int
}

// NewWriter creates a topic-less Kafka writer; every message names its own topic.
// In async mode delivery failures are only visible through the Completion hook,
// which logs them.
func NewWriter(cfg WriterConfig) (*kafka.Writer, error) {
	if err := ValidateProducerParams(cfg.Brokers); err != nil {
		return nil, err
	}
	brokerList := ParseBrokers(cfg.Brokers)

	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokerList...),
		Balancer:               &kafka.LeastBytes{},
		WriteTimeout:           cfg.WriteTimeout,
		RequiredAcks:           kafka.RequiredAcks(cfg.RequiredAcks),
		Async:                  cfg.Async,
		AllowAutoTopicCreation: true,
	}
	if cfg.Async {
		w.Completion = logCompletion
	}

	slog.Info("Kafka writer configured",
		"brokers", brokerList,
		"write_timeout", cfg.WriteTimeout,
		"required_acks", cfg.RequiredAcks,
		"async", cfg.Async,
	)
	return w, nil
}

func logCompletion(messages []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, m := range messages {
		slog.Error("Async Kafka delivery failed",
			"topic", m.Topic,
			"error", err,
		)
	}
}
