package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Device segments under the command topic root.
const (
	// PumpDevice is the irrigation pump's command segment.
	PumpDevice = "bomba"

	// ValveDevice is the valve command segment; the valve index follows it
	// as one more topic level.
	ValveDevice = "valvula"
)

// Domain-specific errors for command parsing.
var (
	// ErrUnknownToken is returned for payloads that are not a recognised
	// on/off command.
	ErrUnknownToken = errors.New("command: unknown token")

	// ErrBadValveTopic is returned when the valve index cannot be parsed
	// from the topic.
	ErrBadValveTopic = errors.New("command: malformed valve topic")
)

// ParseToken interprets an on/off command payload.
//
// Both the English and the legacy Portuguese tokens are accepted, case
// insensitively: ON/LIGAR switch on, OFF/DESLIGAR switch off.
//
// Returns:
//   - bool: true for on, false for off
//   - error: ErrUnknownToken for anything else
func ParseToken(payload []byte) (bool, error) {
	switch strings.ToUpper(strings.TrimSpace(string(payload))) {
	case "ON", "LIGAR":
		return true, nil
	case "OFF", "DESLIGAR":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownToken, payload)
	}
}

// Actuator switches the devices the agent controls.
//
// Implementations talk to real outputs (GPIO, relay boards); tests use a
// recording fake.
type Actuator interface {
	// SetPump switches the irrigation pump.
	SetPump(on bool) error

	// SetValve switches one valve by index.
	SetValve(index int, on bool) error
}

// LogActuator is an Actuator for hosts without physical outputs attached.
// Switch operations are recorded in the log only; wiring real GPIO or a
// relay board means replacing this with a hardware-backed implementation.
type LogActuator struct {
	Logger Logger
}

// SetPump logs the pump switch operation.
func (a LogActuator) SetPump(on bool) error {
	a.Logger.Info("pump output", "on", on)
	return nil
}

// SetValve logs the valve switch operation.
func (a LogActuator) SetValve(index int, on bool) error {
	a.Logger.Info("valve output", "valve", index, "on", on)
	return nil
}

// Logger is the logging interface the handlers require.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Handlers routes inbound command payloads to an Actuator.
//
// Both handlers match the router.Handler signature so they can be
// registered directly as subscriptions. Malformed commands are logged and
// ignored: a bad inbound message must never take the session down.
type Handlers struct {
	actuator Actuator
	logger   Logger
}

// NewHandlers creates command handlers over the given actuator.
func NewHandlers(actuator Actuator, logger Logger) *Handlers {
	return &Handlers{actuator: actuator, logger: logger}
}

// Pump handles `<cmd-base>/bomba` messages.
func (h *Handlers) Pump(topic string, payload []byte) {
	on, err := ParseToken(payload)
	if err != nil {
		h.logger.Warn("ignoring pump command", "topic", topic, "error", err)
		return
	}

	if err := h.actuator.SetPump(on); err != nil {
		h.logger.Error("pump actuation failed", "on", on, "error", err)
		return
	}
	h.logger.Info("pump switched", "on", on)
}

// Valve handles `<cmd-base>/valvula/<n>` messages, taking the valve index
// from the final topic level.
func (h *Handlers) Valve(topic string, payload []byte) {
	index, err := valveIndex(topic)
	if err != nil {
		h.logger.Warn("ignoring valve command", "topic", topic, "error", err)
		return
	}

	on, err := ParseToken(payload)
	if err != nil {
		h.logger.Warn("ignoring valve command", "topic", topic, "valve", index, "error", err)
		return
	}

	if err := h.actuator.SetValve(index, on); err != nil {
		h.logger.Error("valve actuation failed", "valve", index, "on", on, "error", err)
		return
	}
	h.logger.Info("valve switched", "valve", index, "on", on)
}

// HighTemperatureCelsius is the garden reading above which the irrigation
// response kicks in.
const HighTemperatureCelsius = 35.0

// Temperature handles garden temperature monitoring readings.
//
// Payloads are plain decimal Celsius values. Readings above
// HighTemperatureCelsius switch the irrigation pump on; cooler readings are
// logged and otherwise ignored.
func (h *Handlers) Temperature(topic string, payload []byte) {
	reading, err := strconv.ParseFloat(strings.TrimSpace(string(payload)), 64)
	if err != nil {
		h.logger.Warn("ignoring temperature reading", "topic", topic, "payload", string(payload))
		return
	}

	h.logger.Info("temperature reading", "topic", topic, "celsius", reading)

	if reading <= HighTemperatureCelsius {
		return
	}

	h.logger.Warn("high temperature, increasing irrigation", "topic", topic, "celsius", reading)
	if err := h.actuator.SetPump(true); err != nil {
		h.logger.Error("irrigation actuation failed", "celsius", reading, "error", err)
	}
}

// valveIndex extracts the valve number from the topic's final level.
func valveIndex(topic string) (int, error) {
	segs := strings.Split(topic, "/")
	if len(segs) < 2 || segs[len(segs)-2] != ValveDevice {
		return 0, fmt.Errorf("%w: %q", ErrBadValveTopic, topic)
	}

	index, err := strconv.Atoi(segs[len(segs)-1])
	if err != nil || index < 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadValveTopic, topic)
	}
	return index, nil
}
