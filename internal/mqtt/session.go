package mqtt

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-logic-agent/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-agent/internal/router"
	"github.com/nerrad567/gray-logic-agent/internal/stats"
)

// defaultDisconnectQuiesce is the time to wait for pending operations when
// closing the transport.
const defaultDisconnectQuiesce = time.Second

// State is the session lifecycle state.
type State int32

// Session lifecycle states.
const (
	// StateDisconnected means no broker link and no attempt in flight.
	StateDisconnected State = iota

	// StateConnecting means the retry loop is attempting to connect.
	StateConnecting

	// StateConnected means the broker link is up and subscriptions are
	// asserted.
	StateConnected

	// StateShutDown means Close() ran; the session cannot be reused.
	StateShutDown
)

// String returns a human-readable state name for logs.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateShutDown:
		return "shut_down"
	default:
		return "unknown"
	}
}

// MessageID is an opaque process-local identifier assigned to each publish
// and subscribe operation, for correlating QoS 1/2 operations in logs. It is
// not the MQTT packet identifier.
type MessageID uint64

// Logger is the logging interface the session requires.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Deps carries the session's collaborators.
type Deps struct {
	MQTT    config.MQTTConfig
	Topics  Topics
	Routes  *router.Table
	Tracker *stats.Tracker
	Logger  Logger
}

// Session maintains one persistent broker connection for the agent.
//
// The session owns the reconnect policy: the transport performs single
// connection attempts, and the session's retry loop drives them with capped
// exponential backoff. On every successful (re)connect it re-asserts the
// router's subscriptions in registration order, publishes the retained
// ONLINE presence message, and accumulates the disconnected duration into
// the statistics tracker.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - State reads are lock-free atomic loads.
type Session struct {
	cfg     config.MQTTConfig
	topics  Topics
	routes  *router.Table
	tracker *stats.Tracker
	logger  Logger

	transport Transport

	state  atomic.Int32
	nextID atomic.Uint64

	// downSince marks when the link was lost, consumed at reconnect to
	// accumulate downtime. Guarded by mu together with onConnect.
	mu        sync.Mutex
	downSince time.Time
	onConnect func()

	lostCh    chan error
	done      chan struct{}
	wg        sync.WaitGroup
	started   atomic.Bool
	closeOnce sync.Once
}

// NewSession builds a session over the given transport factory.
//
// No connection attempt is made here; call Start to launch the connect loop.
// A failed first connection is recoverable (the loop keeps retrying), so the
// only fatal outcomes at this stage are bad configuration and a transport
// that cannot be constructed.
//
// Parameters:
//   - deps: Configuration and collaborators (Routes and Tracker required)
//   - factory: Builds the broker transport wired to this session's callbacks
//
// Returns:
//   - *Session: Session in the Disconnected state
//   - error: ErrInvalidConfig or ErrTransportUnavailable (wrapped)
func NewSession(deps Deps, factory TransportFactory) (*Session, error) {
	if deps.Routes == nil {
		return nil, fmt.Errorf("%w: routing table is required", ErrInvalidConfig)
	}
	if deps.Tracker == nil {
		return nil, fmt.Errorf("%w: statistics tracker is required", ErrInvalidConfig)
	}
	if deps.MQTT.Broker.Host == "" {
		return nil, fmt.Errorf("%w: broker host is required", ErrInvalidConfig)
	}
	if factory == nil {
		return nil, fmt.Errorf("%w: transport factory is required", ErrInvalidConfig)
	}
	if deps.Logger == nil {
		deps.Logger = nopLogger{}
	}

	s := &Session{
		cfg:     deps.MQTT,
		topics:  deps.Topics,
		routes:  deps.Routes,
		tracker: deps.Tracker,
		logger:  deps.Logger,
		lostCh:  make(chan error, 1),
		done:    make(chan struct{}),
	}

	transport, err := factory(Events{
		OnConnectionLost: s.handleConnectionLost,
		OnMessage:        s.handleMessage,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransportUnavailable, err)
	}
	s.transport = transport

	return s, nil
}

// SetOnConnect registers a callback invoked after every successful
// (re)connect, once subscriptions are re-asserted and presence is published.
// Used by the telemetry spool to flush queued records.
func (s *Session) SetOnConnect(callback func()) {
	s.mu.Lock()
	s.onConnect = callback
	s.mu.Unlock()
}

// Start launches the connect loop in a background goroutine.
//
// Only the first call launches the loop; subsequent calls are no-ops, the
// same discipline Close follows.
//
// Returns:
//   - error: ErrShutDown if the session was already closed
func (s *Session) Start() error {
	if s.State() == StateShutDown {
		return ErrShutDown
	}
	if !s.started.CompareAndSwap(false, true) {
		return nil
	}

	s.wg.Add(1)
	go s.run()
	return nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// IsConnected reports whether the broker link is up.
func (s *Session) IsConnected() bool {
	return s.State() == StateConnected
}

// Close shuts the session down.
//
// If the link is up, the graceful OFFLINE presence message is published
// before disconnecting so the broker never has to fire the Last Will.
// Idempotent; subsequent calls are no-ops.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		prev := State(s.state.Swap(int32(StateShutDown)))
		s.logger.Info("mqtt session closing", "previous_state", prev.String())

		close(s.done)

		if prev == StateConnected {
			if err := s.transport.Publish(s.topics.Status(), []byte(StatusOffline), 1, true); err != nil {
				s.logger.Warn("graceful offline publish failed", "error", err)
			}
		}

		s.transport.Disconnect(defaultDisconnectQuiesce)
		s.wg.Wait()
	})
	return nil
}

// run is the connect loop: attempt, serve, wait for loss, repeat.
func (s *Session) run() {
	defer s.wg.Done()

	for {
		select {
		case <-s.done:
			return
		default:
		}

		s.state.CompareAndSwap(int32(StateDisconnected), int32(StateConnecting))

		if err := s.connectWithRetry(); err != nil {
			if s.State() != StateShutDown {
				s.state.Store(int32(StateDisconnected))
				s.logger.Error("giving up on broker connection", "error", err)
			}
			return
		}

		s.handleConnected()

		select {
		case <-s.done:
			return
		case err := <-s.lostCh:
			s.logger.Warn("broker connection lost", "error", err)
			if !s.cfg.Reconnect.Enabled {
				s.logger.Info("reconnect disabled, session staying down")
				return
			}
			// A loss reported mid-handshake leaves the state at Connected;
			// normalise it before the next connect round.
			s.state.CompareAndSwap(int32(StateConnected), int32(StateDisconnected))
		}
	}
}

// connectWithRetry drives single transport attempts with capped exponential
// backoff until one succeeds, the attempt budget is spent, or the session
// shuts down.
func (s *Session) connectWithRetry() error {
	curve := newBackoff(s.cfg.Reconnect)

	for attempt := 1; ; attempt++ {
		err := s.transport.Connect()
		if err == nil {
			return nil
		}

		s.logger.Warn("broker connection attempt failed",
			"attempt", attempt,
			"error", err,
		)

		if max := s.cfg.Reconnect.MaxAttempts; max > 0 && attempt >= max {
			return fmt.Errorf("%w: after %d attempts", ErrConnectionFailed, attempt)
		}

		delay := curve.Next()
		select {
		case <-s.done:
			return ErrShutDown
		case <-time.After(delay):
		}
	}
}

// handleConnected brings the session into the Connected state.
//
// Subscriptions are re-asserted BEFORE the state flips so that no caller
// observes Connected while the broker still lacks the agent's subscription
// set.
func (s *Session) handleConnected() {
	subs := s.routes.Subscriptions()
	for _, sub := range subs {
		if err := s.transport.Subscribe(sub.Pattern, sub.QoS); err != nil {
			s.logger.Error("subscription re-assert failed",
				"pattern", sub.Pattern,
				"error", err,
			)
		}
	}

	s.mu.Lock()
	if !s.downSince.IsZero() {
		s.tracker.RecordDowntime(time.Since(s.downSince))
		s.downSince = time.Time{}
	}
	callback := s.onConnect
	s.mu.Unlock()

	// Close may have raced the connect; leave ShutDown alone.
	if !s.state.CompareAndSwap(int32(StateConnecting), int32(StateConnected)) {
		return
	}

	s.logger.Info("broker connected",
		"broker", fmt.Sprintf("%s:%d", s.cfg.Broker.Host, s.cfg.Broker.Port),
		"subscriptions", len(subs),
	)

	if err := s.transport.Publish(s.topics.Status(), []byte(StatusOnline), 1, true); err != nil {
		s.logger.Warn("online presence publish failed", "error", err)
	}

	if callback != nil {
		callback()
	}
}

// handleConnectionLost is the transport's lost-link callback.
//
// The disconnect counter moves only on the Connected to Disconnected edge,
// so repeated failures while already down are not double-counted. A loss
// that lands while still Connecting (the link died during the subscription
// round-trips in handleConnected) must still reach the connect loop, or the
// session would sit on a dead transport forever.
func (s *Session) handleConnectionLost(err error) {
	switch {
	case s.state.CompareAndSwap(int32(StateConnected), int32(StateDisconnected)):
		s.tracker.RecordDisconnect()
		s.mu.Lock()
		s.downSince = time.Now()
		s.mu.Unlock()

	case s.State() == StateConnecting || s.State() == StateConnected:
		// Lost mid-handshake, or raced the flip to Connected. Either way
		// this is not a new outage; the downtime clock keeps running from
		// the original loss if one is open.
		s.mu.Lock()
		if s.downSince.IsZero() {
			s.downSince = time.Now()
		}
		s.mu.Unlock()

	default:
		return
	}

	select {
	case s.lostCh <- err:
	default:
	}
}

// handleMessage is the transport's inbound message callback.
func (s *Session) handleMessage(topic string, payload []byte) {
	s.tracker.RecordReceive()
	s.routes.Dispatch(topic, payload)
}

// nextMessageID allocates the next operation identifier.
func (s *Session) nextMessageID() MessageID {
	return MessageID(s.nextID.Add(1))
}

// nopLogger discards all log output.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
