package producer

import (
	"context"
	"math/rand"
	"strconv"
	"time"

	"github.com/nerrad567/gray-logic-agent/internal/mqtt"
)

// Simulated flat-topic sensor ranges: luminosity 0 to 10, temperature -3 to
// 45, published as plain integer text.
const (
	simLuminosityMax = 10
	simFlatTempMin   = -3
	simFlatTempMax   = 45
)

// SensorSimConfig holds configuration for the sensor simulator.
type SensorSimConfig struct {
	// Interval is how often to publish readings. Default: 1 second.
	Interval time.Duration

	// Publisher is the broker session to publish through.
	Publisher Publisher

	// Logger is optional.
	Logger Logger
}

// SensorSim publishes simulated site sensor readings on the flat topics
// outside the agent's base namespace.
//
// Unlike the telemetry producer it never spools: these readings exist to
// exercise downstream consumers, and a stale simulated reading has no
// value.
type SensorSim struct {
	publisher Publisher
	logger    Logger

	run runner
}

// NewSensorSim creates the sensor simulator.
func NewSensorSim(cfg SensorSimConfig) *SensorSim {
	interval := cfg.Interval
	if interval == 0 {
		interval = time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = nopLogger{}
	}

	return &SensorSim{
		publisher: cfg.Publisher,
		logger:    logger,
		run:       newRunner(interval),
	}
}

// Start begins periodic publishing. Call Stop to shut down.
func (s *SensorSim) Start(ctx context.Context) {
	s.run.start(ctx, func(context.Context) {
		s.PublishNow()
	})
}

// Stop gracefully stops the simulator. Safe to call multiple times.
func (s *SensorSim) Stop() {
	s.run.stop()
}

// PublishNow publishes one pair of readings immediately.
// Skipped entirely while disconnected.
func (s *SensorSim) PublishNow() {
	if !s.publisher.IsConnected() {
		return
	}

	luminosity := rand.Intn(simLuminosityMax + 1)
	temperature := simFlatTempMin + rand.Intn(simFlatTempMax-simFlatTempMin+1)

	if _, err := s.publisher.Publish(mqtt.TopicSensorLuminosity,
		[]byte(strconv.Itoa(luminosity)), 1, false); err != nil {
		s.logger.Warn("luminosity publish failed", "error", err)
	}

	if _, err := s.publisher.Publish(mqtt.TopicSensorTemperature,
		[]byte(strconv.Itoa(temperature)), 1, false); err != nil {
		s.logger.Warn("temperature publish failed", "error", err)
	}
}
