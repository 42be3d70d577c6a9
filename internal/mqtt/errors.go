package mqtt

import "errors"

// Domain-specific errors for session operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrInvalidConfig is returned when the session configuration is unusable.
	// This is an initialisation failure, not a connection failure.
	ErrInvalidConfig = errors.New("mqtt: invalid configuration")

	// ErrTransportUnavailable is returned when the transport cannot be built.
	ErrTransportUnavailable = errors.New("mqtt: transport unavailable")

	// ErrNotConnected is returned when an operation needs a live broker link
	// and the session is disconnected or still connecting.
	ErrNotConnected = errors.New("mqtt: session not connected")

	// ErrConnectionFailed is returned when the connect retry budget is spent.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrPublishRejected is returned when a publish is refused locally or by
	// the transport.
	ErrPublishRejected = errors.New("mqtt: publish rejected")

	// ErrSubscribeFailed is returned when the broker refuses a subscription.
	// The local registration survives and is re-asserted on reconnect.
	ErrSubscribeFailed = errors.New("mqtt: subscribe failed")

	// ErrUnsubscribeFailed is returned when an unsubscribe operation fails.
	ErrUnsubscribeFailed = errors.New("mqtt: unsubscribe failed")

	// ErrInvalidQoS is returned when an invalid QoS level is specified.
	// Valid QoS levels are 0, 1, or 2.
	ErrInvalidQoS = errors.New("mqtt: invalid QoS level (must be 0, 1, or 2)")

	// ErrInvalidTopic is returned when an empty topic is provided.
	ErrInvalidTopic = errors.New("mqtt: topic cannot be empty")

	// ErrShutDown is returned for operations on a closed session.
	ErrShutDown = errors.New("mqtt: session shut down")
)
