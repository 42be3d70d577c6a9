package mqtt

import "time"

// Events carries the callbacks a Transport delivers to its owning session.
//
// Both callbacks may be invoked from transport-internal goroutines and must
// not block for extended periods.
type Events struct {
	// OnConnectionLost is invoked when an established connection drops.
	OnConnectionLost func(err error)

	// OnMessage is invoked for every inbound message on a subscribed topic.
	OnMessage func(topic string, payload []byte)
}

// Transport is the broker link the session drives.
//
// The production implementation wraps paho (see paho.go); tests substitute
// an in-process fake. A Transport performs single connection attempts only -
// retry policy, backoff, and re-subscription belong to the Session.
type Transport interface {
	// Connect performs one blocking connection attempt.
	Connect() error

	// Disconnect closes the connection, waiting up to quiesce for pending
	// operations to complete. Safe to call when not connected.
	Disconnect(quiesce time.Duration)

	// Publish sends one message. The transport reports delivery failure;
	// it does not queue across disconnects.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// Subscribe registers a topic pattern with the broker.
	Subscribe(pattern string, qos byte) error

	// Unsubscribe removes a topic pattern from the broker.
	Unsubscribe(pattern string) error

	// IsConnected reports whether the broker link is currently up.
	IsConnected() bool
}

// TransportFactory builds a Transport wired to the given event callbacks.
//
// The factory indirection breaks the construction cycle between the session
// (which owns the callbacks) and the transport (which needs them at build
// time).
type TransportFactory func(events Events) (Transport, error)
