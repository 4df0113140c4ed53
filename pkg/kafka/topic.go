package kafka

import (
	"log/slog"
	"net"
	"strconv"

	"github.com/segmentio/kafka-go"
)

// EnsureTopics attempts to create any of topics that do not exist yet.
// This is a best-effort operation: failures are logged and never returned, the
// writer will still auto-create topics on first write when the cluster allows it.
func EnsureTopics(broker string, topics []string) {
	if broker == "" || len(topics) == 0 {
		return
	}

	conn, err := kafka.Dial("tcp", broker)
	if err != nil {
		slog.Warn("Could not connect to Kafka to check/create topics",
			"broker", broker,
			"topics", topics,
			"error", err,
		)
		return
	}
	defer conn.Close()

	var missing []kafka.TopicConfig
	for _, topic := range topics {
		partitions, err := conn.ReadPartitions(topic)
		if err == nil && len(partitions) > 0 {
			slog.Info("Topic already exists", "topic", topic, "partitions", len(partitions))
			continue
		}
		missing = append(missing, kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
	}
	if len(missing) == 0 {
		return
	}

	// Topic creation must go through the controller broker.
	controller, err := conn.Controller()
	if err != nil {
		slog.Warn("Could not resolve Kafka controller", "broker", broker, "error", err)
		return
	}
	controllerAddr := net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port))
	ctrlConn, err := kafka.Dial("tcp", controllerAddr)
	if err != nil {
		slog.Warn("Could not connect to Kafka controller", "controller", controllerAddr, "error", err)
		return
	}
	defer ctrlConn.Close()

	if err := ctrlConn.CreateTopics(missing...); err != nil {
		slog.Warn("Could not create topics (may need to be created manually)",
			"topics", topicNames(missing),
			"error", err,
		)
		return
	}
	slog.Info("Created topics", "topics", topicNames(missing))
}

func topicNames(cfgs []kafka.TopicConfig) []string {
	names := make([]string, len(cfgs))
	for i, c := range cfgs {
		names[i] = c.Topic
	}
	return names
}
