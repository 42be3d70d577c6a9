package mqtt

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-agent/internal/health"
	"github.com/nerrad567/gray-logic-agent/internal/telemetry"
)

// maxPayloadSize bounds outbound payloads (256KiB).
// This prevents resource exhaustion and aligns with typical broker limits.
const maxPayloadSize = 256 << 10

// Publish sends a message to the specified MQTT topic.
//
// Publishing while disconnected fails fast with ErrNotConnected and does not
// count as a publish failure in the statistics; only transport rejections of
// an attempted delivery do.
//
// Parameters:
//   - topic: The topic to publish to (e.g. "demo/central/telemetry")
//   - payload: The message payload (max 256KiB)
//   - qos: Quality of Service level (0, 1, or 2)
//   - retained: Whether the broker should retain the message for new subscribers
//
// Returns:
//   - MessageID: Process-local identifier for correlating this publish in logs
//   - error: nil on success, or wrapped error describing the failure
//
// Example:
//
//	id, err := session.Publish(topics.Command("bomba"), []byte("LIGAR"), 1, false)
func (s *Session) Publish(topic string, payload []byte, qos byte, retained bool) (MessageID, error) {
	if topic == "" {
		return 0, ErrInvalidTopic
	}
	if qos > maxQoS {
		return 0, ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return 0, fmt.Errorf("%w: payload size %d exceeds maximum %d bytes",
			ErrPublishRejected, len(payload), maxPayloadSize)
	}

	switch s.State() {
	case StateShutDown:
		return 0, ErrShutDown
	case StateConnected:
	default:
		return 0, ErrNotConnected
	}

	id := s.nextMessageID()

	if err := s.transport.Publish(topic, payload, qos, retained); err != nil {
		s.tracker.RecordPublish(false)
		s.logger.Warn("publish failed",
			"message_id", uint64(id),
			"topic", topic,
			"error", err,
		)
		return id, fmt.Errorf("%w: %w", ErrPublishRejected, err)
	}

	s.tracker.RecordPublish(true)
	return id, nil
}

// PublishTelemetry publishes a telemetry record to the telemetry topic.
//
// QoS 1, non-retained: every sample should arrive at least once, but a stale
// sample has no value for late subscribers.
func (s *Session) PublishTelemetry(rec telemetry.Record) (MessageID, error) {
	return s.Publish(s.topics.Telemetry(), rec.Encode(), 1, false)
}

// PublishHealth publishes a health snapshot to the health topic.
func (s *Session) PublishHealth(snap health.Snapshot) (MessageID, error) {
	return s.Publish(s.topics.Health(), snap.Encode(), 1, false)
}

// BootInfo identifies one agent process lifetime.
//
// BootID is unique per process start, so operators can tell a reconnect from
// a restart even when the retained boot message is the only evidence.
type BootInfo struct {
	DeviceID string
	Version  string
	BootID   string
	BootTime time.Time
}

// NewBootInfo creates the boot announcement for this process.
func NewBootInfo(deviceID, version string) BootInfo {
	return BootInfo{
		DeviceID: deviceID,
		Version:  version,
		BootID:   uuid.NewString(),
		BootTime: time.Now().UTC(),
	}
}

// encode renders the boot payload in the agent's key=value wire style.
func (b BootInfo) encode() []byte {
	return fmt.Appendf(nil, "device=%s,version=%s,boot_id=%s,ts=%d",
		b.DeviceID, b.Version, b.BootID, b.BootTime.UnixMilli())
}

// PublishBoot publishes the retained boot announcement.
//
// Retained so that tooling subscribing later still sees when and as what the
// agent last started.
func (s *Session) PublishBoot(info BootInfo) (MessageID, error) {
	return s.Publish(s.topics.Boot(), info.encode(), 1, true)
}
