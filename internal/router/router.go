package router

import (
	"sync"
)

// DefaultMaxPayload bounds the payload passed to handlers (256KiB).
// Larger payloads are truncated, never buffered unbounded.
const DefaultMaxPayload = 256 << 10

// Handler is the callback signature for routed messages.
//
// Handlers receive the full topic the message arrived on (wildcards
// expanded) and a length-bounded payload slice. The slice is only valid
// for the duration of the call; handlers must copy it if they retain it.
//
// Multiple patterns may match one topic and all matching handlers run;
// invocation order between patterns is not guaranteed, so handlers must
// be independent of each other.
type Handler func(topic string, payload []byte)

// Subscription is a registered (pattern, QoS) pair.
//
// The router owns the subscription set; the session re-asserts it to the
// broker, in insertion order, on every successful (re)connect.
type Subscription struct {
	Pattern string
	QoS     byte
}

// Logger is the optional logging interface used for dispatch tracing.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// entry pairs a subscription with its handler.
type entry struct {
	sub     Subscription
	handler Handler
}

// Table routes inbound messages to handlers by MQTT topic pattern.
//
// The table is mutated rarely (registration time) and read on every
// inbound message and every reconnect, so it uses a reader-writer lock
// and dispatches on a snapshot taken under the read lock - handlers run
// without any table lock held.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Table struct {
	mu      sync.RWMutex
	entries []entry

	maxPayload int

	logger   Logger
	loggerMu sync.RWMutex
}

// NewTable creates an empty routing table.
//
// Parameters:
//   - maxPayload: Payload bound in bytes; <= 0 selects DefaultMaxPayload
func NewTable(maxPayload int) *Table {
	if maxPayload <= 0 {
		maxPayload = DefaultMaxPayload
	}
	return &Table{maxPayload: maxPayload}
}

// SetLogger sets a logger for dispatch tracing and handler error logging.
func (t *Table) SetLogger(logger Logger) {
	t.loggerMu.Lock()
	t.logger = logger
	t.loggerMu.Unlock()
}

// getLogger returns the current logger (may be nil).
func (t *Table) getLogger() Logger {
	t.loggerMu.RLock()
	defer t.loggerMu.RUnlock()
	return t.logger
}

// Register stores a pattern with its handler and QoS.
//
// Registering an already-registered pattern replaces its handler and QoS
// in place, preserving the original insertion position.
//
// Parameters:
//   - pattern: Topic pattern (may contain + and # wildcards)
//   - qos: QoS to request when the pattern is asserted to the broker
//   - handler: Callback invoked for each matching message
//
// Returns:
//   - error: ErrEmptyPattern/ErrInvalidPattern if the pattern is malformed
func (t *Table) Register(pattern string, qos byte, handler Handler) error {
	if err := ValidatePattern(pattern); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.entries {
		if t.entries[i].sub.Pattern == pattern {
			t.entries[i].sub.QoS = qos
			t.entries[i].handler = handler
			return nil
		}
	}

	t.entries = append(t.entries, entry{
		sub:     Subscription{Pattern: pattern, QoS: qos},
		handler: handler,
	})
	return nil
}

// Remove deletes a pattern from the table.
//
// Returns:
//   - bool: true if the pattern was registered
func (t *Table) Remove(pattern string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.entries {
		if t.entries[i].sub.Pattern == pattern {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Subscriptions returns the registered (pattern, QoS) pairs in insertion
// order. The returned slice is a copy.
func (t *Table) Subscriptions() []Subscription {
	t.mu.RLock()
	defer t.mu.RUnlock()

	subs := make([]Subscription, len(t.entries))
	for i, e := range t.entries {
		subs[i] = e.sub
	}
	return subs
}

// Len returns the number of registered patterns.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Dispatch routes a message to every handler whose pattern matches.
//
// The payload is truncated to the table's configured bound before any
// handler runs; the truncation is determined by the local bound, never
// by payload content. Topics that match no pattern are dropped with a
// debug trace - an unmatched topic is not an error.
//
// Handler panics are recovered and logged so one bad handler cannot take
// down the dispatch path.
//
// Parameters:
//   - topic: Full topic the message arrived on
//   - payload: Raw message payload (length-bounded slice)
//
// Returns:
//   - int: Number of handlers invoked
func (t *Table) Dispatch(topic string, payload []byte) int {
	if len(payload) > t.maxPayload {
		payload = payload[:t.maxPayload]
	}

	// Snapshot matching handlers under the read lock, invoke outside it.
	t.mu.RLock()
	var matched []Handler
	for _, e := range t.entries {
		if Match(e.sub.Pattern, topic) {
			matched = append(matched, e.handler)
		}
	}
	t.mu.RUnlock()

	if len(matched) == 0 {
		if logger := t.getLogger(); logger != nil {
			logger.Debug("no handler for topic", "topic", topic)
		}
		return 0
	}

	for _, h := range matched {
		t.invoke(h, topic, payload)
	}
	return len(matched)
}

// invoke runs a single handler with panic recovery.
func (t *Table) invoke(h Handler, topic string, payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			if logger := t.getLogger(); logger != nil {
				logger.Error("message handler panic recovered",
					"topic", topic,
					"panic", r,
				)
			}
		}
	}()

	h(topic, payload)
}
