// Package main provides a CLI that raises a single failure alert through the
// configured broker. Configuration comes from BUGLE_* environment variables
// (and an optional .env file); flags describe the alert.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/code-string/aegis-bugle/pkg/bugle"
	"github.com/code-string/aegis-bugle/pkg/config"
	"github.com/code-string/aegis-bugle/pkg/events"
	"github.com/code-string/aegis-bugle/pkg/metrics"
	"github.com/code-string/aegis-bugle/pkg/shared"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize structured logger with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	var (
		event       events.BugleEvent
		severity    string
		metadata    string
		showMetrics bool
	)
	flag.StringVar(&event.ErrorCode, "error-code", "", "Application error code (required)")
	flag.StringVar(&event.ErrorMessage, "error-message", "", "Human readable error message (required)")
	flag.StringVar(&event.ExceptionType, "exception-type", "", "Exception or error type name (required)")
	flag.StringVar(&event.StackTrace, "stack-trace", "", "Optional stack trace")
	flag.StringVar(&severity, "severity", "HIGH", "Severity: LOW, MEDIUM, HIGH or CRITICAL")
	flag.StringVar(&event.Topic, "topic", shared.GetEnvOrDefault("BUGLE_TOPIC", ""), "Destination topic (Kafka/Pulsar) or exchange override (RabbitMQ)")
	flag.StringVar(&event.RoutingKey, "routing-key", "", "RabbitMQ routing key")
	flag.StringVar(&event.Exchange, "exchange", "", "RabbitMQ exchange")
	flag.StringVar(&metadata, "metadata", "", "Metadata as comma-separated key=value pairs")
	flag.BoolVar(&showMetrics, "show-metrics", false, "Print publisher metrics stored in Redis and exit")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	if showMetrics {
		if err := printMetrics(ctx, cfg.Metrics.RedisAddr); err != nil {
			slog.Error("Failed to read metrics", "error", err)
			os.Exit(1)
		}
		return
	}

	sev, ok := events.ParseSeverity(severity)
	if !ok {
		slog.Error("Invalid severity", "severity", severity)
		os.Exit(1)
	}
	event.Severity = sev
	event.Timestamp = time.Now().UTC()
	if event.Metadata, err = parseMetadata(metadata); err != nil {
		slog.Error("Invalid metadata", "error", err)
		os.Exit(1)
	}

	b, err := bugle.New(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize bugle", "error", err)
		os.Exit(1)
	}

	raiseErr := b.RaiseFailureAlert(ctx, event)
	if err := b.Close(); err != nil {
		slog.Warn("Error during shutdown", "error", err)
	}
	if raiseErr != nil {
		slog.Error("Failed to raise alert",
			"error_code", event.ErrorCode,
			"broker", string(cfg.ActiveBroker()),
			"error", raiseErr,
		)
		os.Exit(1)
	}

	slog.Info("Alert raised successfully",
		"error_code", event.ErrorCode,
		"severity", event.Severity,
		"broker", string(cfg.ActiveBroker()),
	)
}

// parseMetadata parses "k1=v1,k2=v2" into a map. Empty input yields nil.
func parseMetadata(s string) (map[string]any, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	result := make(map[string]any)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, found := strings.Cut(part, "=")
		k = strings.TrimSpace(k)
		if !found || k == "" {
			return nil, fmt.Errorf("invalid metadata entry %q (expected key=value)", part)
		}
		result[k] = strings.TrimSpace(v)
	}
	return result, nil
}

func printMetrics(ctx context.Context, redisAddr string) error {
	if redisAddr == "" {
		return fmt.Errorf("%sMETRICS_REDIS_ADDR is not set", config.EnvPrefix)
	}
	client, err := shared.ConnectRedis(ctx, redisAddr)
	if err != nil {
		return err
	}
	defer client.Close()

	all, err := metrics.NewReader(client).GetAllServiceMetrics(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(all)
}
