// Package metrics collects publish counters for a bugle instance and reports
// them to Redis, where other processes can read them.
package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// KeyPrefix is the Redis key prefix for publisher metrics.
	KeyPrefix = "bugle:metrics:"
	// TTL is how long metrics stay in Redis if not refreshed.
	TTL = 2 * time.Minute
	// DefaultReportInterval is the default interval for writing metrics to Redis.
	DefaultReportInterval = 30 * time.Second
)

// PublisherMetrics holds the metrics of one service's alert publisher.
type PublisherMetrics struct {
	ServiceName string    `json:"service_name"`
	Broker      string    `json:"broker"`
	StartedAt   time.Time `json:"started_at"`
	LastUpdated time.Time `json:"last_updated"`
	Status      string    `json:"status"` // "healthy" or "stale"

	// Counters (monotonically increasing since start)
	AlertsReceived  uint64 `json:"alerts_received"`
	AlertsPublished uint64 `json:"alerts_published"`
	PublishErrors   uint64 `json:"publish_errors"`

	// Rate of published alerts over the last report interval
	AlertsPerSecond float64 `json:"alerts_per_second"`

	AvgPublishLatencyNs float64 `json:"avg_publish_latency_ns"`

	// Breakdown counters, e.g. validation failures per field
	CustomCounters map[string]uint64 `json:"custom_counters,omitempty"`
}

// Collector collects and reports publisher metrics.
type Collector struct {
	serviceName    string
	broker         string
	redis          *redis.Client
	startedAt      time.Time
	reportInterval time.Duration

	alertsReceived  atomic.Uint64
	alertsPublished atomic.Uint64
	publishErrors   atomic.Uint64

	// For rate calculation, guarded by reportMu
	reportMu           sync.Mutex
	lastReportTime     time.Time
	lastPublishedCount uint64

	totalLatencyNs atomic.Uint64
	latencyCount   atomic.Uint64

	customMu       sync.RWMutex
	customCounters map[string]*atomic.Uint64

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewCollector creates a new metrics collector. redisClient may be nil, in
// which case metrics are only available through Snapshot.
func NewCollector(serviceName, broker string, redisClient *redis.Client) *Collector {
	now := time.Now().UTC()
	return &Collector{
		serviceName:    serviceName,
		broker:         broker,
		redis:          redisClient,
		startedAt:      now,
		reportInterval: DefaultReportInterval,
		lastReportTime: now,
		customCounters: make(map[string]*atomic.Uint64),
		stopCh:         make(chan struct{}),
	}
}

// SetReportInterval sets the interval for writing metrics to Redis.
// Call it before Start.
func (c *Collector) SetReportInterval(interval time.Duration) {
	if interval > 0 {
		c.reportInterval = interval
	}
}

// Start begins the periodic metrics reporting to Redis.
func (c *Collector) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.reportInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				c.writeMetrics(context.Background()) // Final write
				return
			case <-c.stopCh:
				c.writeMetrics(context.Background()) // Final write
				return
			case <-ticker.C:
				c.writeMetrics(ctx)
			}
		}
	}()
}

// Stop stops the metrics reporting and waits for the final write.
// It is safe to call more than once.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	c.wg.Wait()
}

// RecordReceived counts an alert handed to the service.
func (c *Collector) RecordReceived() {
	c.alertsReceived.Add(1)
}

// RecordPublished counts an alert accepted by the broker client, with the
// time the publish took.
func (c *Collector) RecordPublished(latency time.Duration) {
	c.alertsPublished.Add(1)
	c.totalLatencyNs.Add(uint64(latency.Nanoseconds()))
	c.latencyCount.Add(1)
}

// RecordError counts a failed publish.
func (c *Collector) RecordError() {
	c.publishErrors.Add(1)
}

// IncrementCustom increments a custom counter by name.
func (c *Collector) IncrementCustom(name string) {
	c.customMu.RLock()
	counter, exists := c.customCounters[name]
	c.customMu.RUnlock()

	if !exists {
		c.customMu.Lock()
		// Double-check after acquiring write lock
		if counter, exists = c.customCounters[name]; !exists {
			counter = &atomic.Uint64{}
			c.customCounters[name] = counter
		}
		c.customMu.Unlock()
	}
	counter.Add(1)
}

// Snapshot returns current metrics without writing to Redis.
func (c *Collector) Snapshot() *PublisherMetrics {
	c.reportMu.Lock()
	lastReport, lastPublished := c.lastReportTime, c.lastPublishedCount
	c.reportMu.Unlock()
	return c.snapshot(time.Now().UTC(), lastReport, lastPublished)
}

func (c *Collector) snapshot(now, lastReport time.Time, lastPublished uint64) *PublisherMetrics {
	published := c.alertsPublished.Load()

	var rate float64
	if elapsed := now.Sub(lastReport).Seconds(); elapsed > 0 {
		rate = float64(published-lastPublished) / elapsed
	}

	var avgLatencyNs float64
	if n := c.latencyCount.Load(); n > 0 {
		avgLatencyNs = float64(c.totalLatencyNs.Load()) / float64(n)
	}

	c.customMu.RLock()
	customCounters := make(map[string]uint64, len(c.customCounters))
	for name, counter := range c.customCounters {
		customCounters[name] = counter.Load()
	}
	c.customMu.RUnlock()

	return &PublisherMetrics{
		ServiceName:         c.serviceName,
		Broker:              c.broker,
		StartedAt:           c.startedAt,
		LastUpdated:         now,
		Status:              "healthy",
		AlertsReceived:      c.alertsReceived.Load(),
		AlertsPublished:     published,
		PublishErrors:       c.publishErrors.Load(),
		AlertsPerSecond:     rate,
		AvgPublishLatencyNs: avgLatencyNs,
		CustomCounters:      customCounters,
	}
}

// writeMetrics writes current metrics to Redis.
func (c *Collector) writeMetrics(ctx context.Context) {
	if c.redis == nil {
		return
	}

	c.reportMu.Lock()
	m := c.snapshot(time.Now().UTC(), c.lastReportTime, c.lastPublishedCount)
	c.lastReportTime = m.LastUpdated
	c.lastPublishedCount = m.AlertsPublished
	c.reportMu.Unlock()

	data, err := json.Marshal(m)
	if err != nil {
		slog.Error("Failed to marshal metrics", "service", c.serviceName, "error", err)
		return
	}

	key := KeyPrefix + c.serviceName
	if err := c.redis.Set(ctx, key, data, TTL).Err(); err != nil {
		slog.Error("Failed to write metrics to Redis", "service", c.serviceName, "error", err)
		return
	}

	slog.Debug("Metrics written to Redis", "service", c.serviceName, "key", key)
}

// Reader reads publisher metrics from Redis.
type Reader struct {
	redis *redis.Client
}

// NewReader creates a new metrics reader.
func NewReader(redisClient *redis.Client) *Reader {
	return &Reader{redis: redisClient}
}

// GetServiceMetrics retrieves metrics for a specific service.
func (r *Reader) GetServiceMetrics(ctx context.Context, serviceName string) (*PublisherMetrics, error) {
	key := KeyPrefix + serviceName
	data, err := r.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("no metrics found for service: %s", serviceName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metrics: %w", err)
	}

	return decodeMetrics(data, time.Now())
}

// GetAllServiceMetrics retrieves metrics for every service that reported.
func (r *Reader) GetAllServiceMetrics(ctx context.Context) (map[string]*PublisherMetrics, error) {
	result := make(map[string]*PublisherMetrics)
	iter := r.redis.Scan(ctx, 0, KeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		serviceName := strings.TrimPrefix(iter.Val(), KeyPrefix)
		m, err := r.GetServiceMetrics(ctx, serviceName)
		if err != nil {
			slog.Warn("Failed to read metrics for service", "service", serviceName, "error", err)
			continue
		}
		result[serviceName] = m
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list metrics keys: %w", err)
	}
	return result, nil
}

func decodeMetrics(data []byte, now time.Time) (*PublisherMetrics, error) {
	var m PublisherMetrics
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metrics: %w", err)
	}
	if now.Sub(m.LastUpdated) > TTL {
		m.Status = "stale"
	}
	return &m, nil
}
