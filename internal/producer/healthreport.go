package producer

import (
	"context"
	"time"

	"github.com/nerrad567/gray-logic-agent/internal/health"
)

// HealthReporterConfig holds configuration for the health reporter.
type HealthReporterConfig struct {
	// Interval is how often to publish health. Default: 60 seconds.
	Interval time.Duration

	// Publisher is the broker session to publish through.
	Publisher Publisher

	// Prober collects the host snapshot.
	Prober *health.Prober

	// Logger is optional.
	Logger Logger
}

// HealthReporter publishes periodic host health snapshots.
type HealthReporter struct {
	publisher Publisher
	prober    *health.Prober
	logger    Logger

	run runner
}

// NewHealthReporter creates the health reporter.
func NewHealthReporter(cfg HealthReporterConfig) *HealthReporter {
	interval := cfg.Interval
	if interval == 0 {
		interval = 60 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = nopLogger{}
	}

	return &HealthReporter{
		publisher: cfg.Publisher,
		prober:    cfg.Prober,
		logger:    logger,
		run:       newRunner(interval),
	}
}

// Start begins periodic reporting. Call Stop to shut down.
func (h *HealthReporter) Start(ctx context.Context) {
	h.run.start(ctx, func(ctx context.Context) {
		h.PublishNow(ctx)
	})
}

// Stop gracefully stops reporting. Safe to call multiple times.
func (h *HealthReporter) Stop() {
	h.run.stop()
}

// PublishNow probes the host and publishes one snapshot immediately.
// Skipped while disconnected; health history has no spool.
func (h *HealthReporter) PublishNow(ctx context.Context) {
	if !h.publisher.IsConnected() {
		return
	}

	snap, err := h.prober.Snapshot(ctx, true)
	if err != nil {
		h.logger.Error("health probe failed", "error", err)
		return
	}

	if _, err := h.publisher.PublishHealth(snap); err != nil {
		h.logger.Warn("health publish failed", "error", err)
	}
}
