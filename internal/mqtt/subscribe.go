package mqtt

import (
	"fmt"

	"github.com/nerrad567/gray-logic-agent/internal/router"
)

// Subscribe registers a handler for a topic pattern.
//
// The registration lands in the routing table first, so it always succeeds
// locally even while disconnected and survives every reconnect (the session
// re-asserts the table on each new connection). The broker is only told
// about the pattern when the link is currently up.
//
// If the broker refuses the subscription, the local registration is kept
// (it will be re-asserted on the next reconnect) and the error is returned
// so the caller knows delivery has not started yet.
//
// Parameters:
//   - pattern: Topic pattern, may contain + and # wildcards
//   - qos: Quality of Service level to request (0, 1, or 2)
//   - handler: Callback invoked for each matching message
//
// Returns:
//   - MessageID: Process-local identifier for correlating this subscribe in logs
//   - error: nil on success, or wrapped error describing the failure
func (s *Session) Subscribe(pattern string, qos byte, handler router.Handler) (MessageID, error) {
	if qos > maxQoS {
		return 0, ErrInvalidQoS
	}
	if s.State() == StateShutDown {
		return 0, ErrShutDown
	}

	if err := s.routes.Register(pattern, qos, handler); err != nil {
		return 0, err
	}

	id := s.nextMessageID()

	if s.State() == StateConnected {
		if err := s.transport.Subscribe(pattern, qos); err != nil {
			s.logger.Warn("broker subscribe failed, registration kept for reconnect",
				"message_id", uint64(id),
				"pattern", pattern,
				"error", err,
			)
			return id, fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
		}
	}

	s.logger.Debug("subscribed", "message_id", uint64(id), "pattern", pattern, "qos", qos)
	return id, nil
}

// Unsubscribe removes a pattern from the routing table and, when connected,
// from the broker.
//
// Removing a pattern that was never registered is a no-op.
func (s *Session) Unsubscribe(pattern string) error {
	if s.State() == StateShutDown {
		return ErrShutDown
	}

	if !s.routes.Remove(pattern) {
		return nil
	}

	if s.State() == StateConnected {
		if err := s.transport.Unsubscribe(pattern); err != nil {
			return fmt.Errorf("%w: %w", ErrUnsubscribeFailed, err)
		}
	}

	return nil
}
