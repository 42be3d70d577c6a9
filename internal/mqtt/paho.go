package mqtt

import (
	"crypto/tls"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/gray-logic-agent/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultConnectTimeout is the maximum time to wait for one connection attempt.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout is the maximum time to wait for publish acknowledgment.
	defaultPublishTimeout = 5 * time.Second

	// defaultOpTimeout is the maximum time to wait for subscribe/unsubscribe acks.
	defaultOpTimeout = 5 * time.Second

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls.VersionTLS12
)

// PahoTransport adapts paho.mqtt.golang to the Transport interface.
//
// Paho's own auto-reconnect and connect-retry are disabled: the session owns
// the reconnect policy, so the adapter must report a lost connection exactly
// once and then stay down until the session asks for another attempt.
type PahoTransport struct {
	client pahomqtt.Client
}

// NewPahoTransport builds the production broker transport.
//
// Parameters:
//   - cfg: MQTT configuration from config.yaml
//   - will: Last Will registered with the broker (retained OFFLINE presence)
//   - events: Session callbacks for inbound messages and lost connections
//
// Returns:
//   - *PahoTransport: Transport ready for Connect (no I/O performed yet)
func NewPahoTransport(cfg config.MQTTConfig, clientID string, will Will, events Events) *PahoTransport {
	opts := buildClientOptions(cfg, clientID)

	opts.SetWill(will.Topic, will.Payload, will.QoS, will.Retained)

	// All inbound traffic funnels through the default handler; routing by
	// topic happens in the session's router, not in per-subscription
	// callbacks.
	opts.SetDefaultPublishHandler(func(_ pahomqtt.Client, msg pahomqtt.Message) {
		events.OnMessage(msg.Topic(), msg.Payload())
	})

	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		events.OnConnectionLost(err)
	})

	return &PahoTransport{client: pahomqtt.NewClient(opts)}
}

// Will describes the Last Will and Testament registered at connect time.
type Will struct {
	Topic    string
	Payload  string
	QoS      byte
	Retained bool
}

// buildClientOptions creates paho MQTT options from agent config.
//
// This configures:
//   - Broker URL (tcp:// or ssl:// based on TLS setting)
//   - Client ID and authentication credentials (if provided)
//   - Clean session mode
//   - TLS configuration (if enabled)
//
// Auto-reconnect stays OFF here; reconnection is session policy.
func buildClientOptions(cfg config.MQTTConfig, clientID string) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port))

	opts.SetClientID(clientID)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	// Clean session - subscriptions are re-asserted from the router on every
	// reconnect, so no broker-side session state is needed.
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)

	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(time.Duration(cfg.KeepAlive) * time.Second)

	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tlsMinVersion})
	}

	return opts
}

// Connect performs one blocking connection attempt.
func (p *PahoTransport) Connect() error {
	token := p.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return nil
}

// Disconnect closes the broker connection.
func (p *PahoTransport) Disconnect(quiesce time.Duration) {
	p.client.Disconnect(uint(quiesce.Milliseconds()))
}

// Publish sends one message and waits for the delivery token.
func (p *PahoTransport) Publish(topic string, payload []byte, qos byte, retained bool) error {
	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishRejected, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishRejected, err)
	}
	return nil
}

// Subscribe registers a topic pattern with the broker.
//
// No per-subscription callback is passed: messages arrive through the
// default publish handler so the session's router stays the single dispatch
// point.
func (p *PahoTransport) Subscribe(pattern string, qos byte) error {
	token := p.client.Subscribe(pattern, qos, nil)
	if !token.WaitTimeout(defaultOpTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, defaultOpTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}
	return nil
}

// Unsubscribe removes a topic pattern from the broker.
func (p *PahoTransport) Unsubscribe(pattern string) error {
	token := p.client.Unsubscribe(pattern)
	if !token.WaitTimeout(defaultOpTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrUnsubscribeFailed, defaultOpTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnsubscribeFailed, err)
	}
	return nil
}

// IsConnected reports whether the broker link is up.
func (p *PahoTransport) IsConnected() bool {
	return p.client.IsConnected()
}
