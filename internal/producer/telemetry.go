package producer

import (
	"context"
	"math/rand"
	"time"

	"github.com/nerrad567/gray-logic-agent/internal/telemetry"
)

// Simulated sensor ranges. No physical sensors are attached; the values
// stand in for a real temperature/humidity probe.
const (
	simTempBase  = 15.0
	simTempSpan  = 15.0
	simHumBase   = 30.0
	simHumSpan   = 40.0
	spoolPublish = byte(1)
)

// Spooler persists records that cannot be delivered right now.
// Implemented by *spool.Store.
type Spooler interface {
	Enqueue(ctx context.Context, topic string, payload []byte, qos byte) error
}

// TelemetryConfig holds configuration for the telemetry producer.
type TelemetryConfig struct {
	// Interval is how often to produce a sample. Default: 10 seconds.
	Interval time.Duration

	// Publisher is the broker session to publish through.
	Publisher Publisher

	// Spool receives records produced while disconnected. Optional; without
	// it the cycle is skipped and the sample dropped.
	Spool Spooler

	// SpoolTopic is the destination topic recorded with spooled samples.
	SpoolTopic string

	// Logger is optional.
	Logger Logger
}

// Telemetry produces periodic temperature/humidity samples.
//
// Each sample carries a monotonic counter so receivers can detect gaps.
// While the session is disconnected, samples go to the spool (when one is
// configured) and are delivered by the session's reconnect flush instead.
type Telemetry struct {
	publisher  Publisher
	spool      Spooler
	spoolTopic string
	logger     Logger

	count uint32

	run runner
}

// NewTelemetry creates the telemetry producer.
func NewTelemetry(cfg TelemetryConfig) *Telemetry {
	interval := cfg.Interval
	if interval == 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = nopLogger{}
	}

	return &Telemetry{
		publisher:  cfg.Publisher,
		spool:      cfg.Spool,
		spoolTopic: cfg.SpoolTopic,
		logger:     logger,
		run:        newRunner(interval),
	}
}

// Start begins periodic production. Call Stop to shut down.
func (t *Telemetry) Start(ctx context.Context) {
	t.run.start(ctx, func(ctx context.Context) {
		t.PublishNow(ctx)
	})
}

// Stop gracefully stops production. Safe to call multiple times.
func (t *Telemetry) Stop() {
	t.run.stop()
}

// PublishNow produces and delivers one sample immediately.
//
// Connected: the record is published. Disconnected with a spool: the record
// is queued for the reconnect flush. Disconnected without one: the cycle is
// skipped.
func (t *Telemetry) PublishNow(ctx context.Context) {
	t.count++
	rec := telemetry.Record{
		Temperature: simTempBase + rand.Float64()*simTempSpan,
		Humidity:    simHumBase + rand.Float64()*simHumSpan,
		Count:       t.count,
		Timestamp:   time.Now().UTC(),
	}

	if t.publisher.IsConnected() {
		if _, err := t.publisher.PublishTelemetry(rec); err != nil {
			t.logger.Warn("telemetry publish failed", "count", rec.Count, "error", err)
		}
		return
	}

	if t.spool == nil {
		t.logger.Debug("disconnected and no spool, dropping sample", "count", rec.Count)
		return
	}

	if err := t.spool.Enqueue(ctx, t.spoolTopic, rec.Encode(), spoolPublish); err != nil {
		t.logger.Error("telemetry spool failed", "count", rec.Count, "error", err)
		return
	}
	t.logger.Debug("telemetry spooled", "count", rec.Count)
}
