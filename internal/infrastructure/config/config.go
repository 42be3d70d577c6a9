package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Gray Logic Agent.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Agent     AgentConfig     `yaml:"agent"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Spool     SpoolConfig     `yaml:"spool"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	API       APIConfig       `yaml:"api"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// AgentConfig contains device identity and topic namespace settings.
type AgentConfig struct {
	// DeviceID identifies this agent on the site. It doubles as the default
	// MQTT client ID, which must be unique per broker - colliding IDs cause
	// the broker to evict the prior holder.
	DeviceID string `yaml:"device_id"`

	// BaseTopic is the root of the agent's topic namespace
	// (status, telemetry, health, boot are published beneath it).
	BaseTopic string `yaml:"base_topic"`

	// CommandTopic is the root for inbound command topics.
	// Defaults to "<base_topic>/commands" when empty.
	CommandTopic string `yaml:"command_topic"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	KeepAlive int                 `yaml:"keep_alive"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains the session reconnect policy.
//
// The session retries with capped exponential backoff: the delay starts at
// InitialDelay seconds, doubles per attempt up to MaxDelay seconds, and each
// delay is randomised by +/-Jitter (a fraction of the delay) to avoid
// thundering-herd reconnection when many agents lose the broker at once.
type MQTTReconnectConfig struct {
	Enabled      bool    `yaml:"enabled"`
	InitialDelay int     `yaml:"initial_delay"`
	MaxDelay     int     `yaml:"max_delay"`
	MaxAttempts  int     `yaml:"max_attempts"`
	Jitter       float64 `yaml:"jitter"`
}

// SpoolConfig contains the store-and-forward telemetry spool settings.
type SpoolConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// MaxMessages caps the spool size; oldest entries are evicted first.
	MaxMessages int `yaml:"max_messages"`
}

// TelemetryConfig contains producer intervals (seconds).
type TelemetryConfig struct {
	Interval       int `yaml:"interval"`
	SensorInterval int `yaml:"sensor_interval"`
	HealthInterval int `yaml:"health_interval"`
}

// APIConfig contains the operational HTTP API settings.
type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: GRAYLOGIC_AGENT_SECTION_KEY
// For example: GRAYLOGIC_AGENT_MQTT_HOST, GRAYLOGIC_AGENT_DEVICE_ID
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with sensible defaults for a field agent.
func Default() *Config {
	return &Config{
		Agent: AgentConfig{
			DeviceID:  "graylogic-agent-001",
			BaseTopic: "graylogic/agent/agent-001",
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host: "localhost",
				Port: 1883,
			},
			QoS:       1,
			KeepAlive: 60,
			Reconnect: MQTTReconnectConfig{
				Enabled:      true,
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
				Jitter:       0.2,
			},
		},
		Spool: SpoolConfig{
			Enabled:     true,
			Path:        "./data/agent-spool.db",
			WALMode:     true,
			BusyTimeout: 5,
			MaxMessages: 10000,
		},
		Telemetry: TelemetryConfig{
			Interval:       10,
			SensorInterval: 1,
			HealthInterval: 60,
		},
		API: APIConfig{
			Enabled: false,
			Host:    "127.0.0.1",
			Port:    8091,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: GRAYLOGIC_AGENT_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Agent identity
	if v := os.Getenv("GRAYLOGIC_AGENT_DEVICE_ID"); v != "" {
		cfg.Agent.DeviceID = v
	}
	if v := os.Getenv("GRAYLOGIC_AGENT_BASE_TOPIC"); v != "" {
		cfg.Agent.BaseTopic = v
	}

	// MQTT
	if v := os.Getenv("GRAYLOGIC_AGENT_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("GRAYLOGIC_AGENT_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("GRAYLOGIC_AGENT_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("GRAYLOGIC_AGENT_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Spool
	if v := os.Getenv("GRAYLOGIC_AGENT_SPOOL_PATH"); v != "" {
		cfg.Spool.Path = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Agent identity validation
	if c.Agent.DeviceID == "" {
		errs = append(errs, "agent.device_id is required")
	}
	if c.Agent.BaseTopic == "" {
		errs = append(errs, "agent.base_topic is required")
	}
	if strings.ContainsAny(c.Agent.BaseTopic, "+#") {
		errs = append(errs, "agent.base_topic must not contain wildcards")
	}

	// MQTT validation
	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Reconnect.InitialDelay < 1 {
		errs = append(errs, "mqtt.reconnect.initial_delay must be at least 1 second")
	}
	if c.MQTT.Reconnect.MaxDelay < c.MQTT.Reconnect.InitialDelay {
		errs = append(errs, "mqtt.reconnect.max_delay must be >= initial_delay")
	}
	if c.MQTT.Reconnect.Jitter < 0 || c.MQTT.Reconnect.Jitter > 1 {
		errs = append(errs, "mqtt.reconnect.jitter must be between 0 and 1")
	}

	// Spool validation
	if c.Spool.Enabled && c.Spool.Path == "" {
		errs = append(errs, "spool.path is required when spool is enabled")
	}

	// Producer intervals
	if c.Telemetry.Interval < 1 {
		errs = append(errs, "telemetry.interval must be at least 1 second")
	}

	// API validation
	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// ClientID returns the MQTT client ID, falling back to the device ID.
func (c *Config) ClientID() string {
	if c.MQTT.Broker.ClientID != "" {
		return c.MQTT.Broker.ClientID
	}
	return c.Agent.DeviceID
}

// CommandTopic returns the inbound command topic root.
func (c *Config) CommandTopic() string {
	if c.Agent.CommandTopic != "" {
		return c.Agent.CommandTopic
	}
	return c.Agent.BaseTopic + "/commands"
}

// GetKeepAlive returns the MQTT keep-alive interval as a Duration.
func (c *Config) GetKeepAlive() time.Duration {
	return time.Duration(c.MQTT.KeepAlive) * time.Second
}

// GetTelemetryInterval returns the telemetry publish interval as a Duration.
func (c *Config) GetTelemetryInterval() time.Duration {
	return time.Duration(c.Telemetry.Interval) * time.Second
}

// GetSensorInterval returns the sensor simulation interval as a Duration.
func (c *Config) GetSensorInterval() time.Duration {
	return time.Duration(c.Telemetry.SensorInterval) * time.Second
}

// GetHealthInterval returns the health publish interval as a Duration.
func (c *Config) GetHealthInterval() time.Duration {
	return time.Duration(c.Telemetry.HealthInterval) * time.Second
}
