package mqtt

// Presence payloads published to the status topic.
//
// ONLINE is published retained after every successful (re)connect; OFFLINE
// is both the broker-side Last Will (unexpected drop) and the graceful
// shutdown payload, so subscribers see a consistent presence signal either
// way the session ends.
const (
	StatusOnline  = "ONLINE"
	StatusOffline = "OFFLINE"
)

// Flat sensor-simulation topics, outside the agent's base namespace.
// These mirror the site-wide sensor hierarchy the simulated readings stand
// in for.
const (
	TopicSensorLuminosity  = "casa/externo/luminosidade"
	TopicSensorTemperature = "casa/sala/temperatura"
)

// TopicPatternGardenTemperature matches temperature readings from every
// garden zone. The agent subscribes to it at QoS 0 so high readings can
// drive the irrigation response.
const TopicPatternGardenTemperature = "jardim/+/temperatura"

// Topics provides builders for the agent's MQTT topics, rooted at the
// configured base and command topics. Using these helpers keeps topic
// naming consistent across the codebase.
//
//	topics := mqtt.NewTopics("demo/central", "demo/central/comandos")
//	topics.Telemetry() // "demo/central/telemetry"
type Topics struct {
	base     string
	commands string
}

// NewTopics creates a topic builder.
//
// Parameters:
//   - base: Root of the agent's topic namespace (e.g. "demo/central")
//   - commands: Root for inbound command topics
func NewTopics(base, commands string) Topics {
	return Topics{base: base, commands: commands}
}

// Status returns the retained presence topic.
//
// Example: demo/central/status
func (t Topics) Status() string {
	return t.base + "/status"
}

// Telemetry returns the periodic telemetry topic.
//
// Example: demo/central/telemetry
func (t Topics) Telemetry() string {
	return t.base + "/telemetry"
}

// Health returns the periodic health report topic.
//
// Example: demo/central/health
func (t Topics) Health() string {
	return t.base + "/health"
}

// Boot returns the retained boot announcement topic.
//
// Example: demo/central/boot
func (t Topics) Boot() string {
	return t.base + "/boot"
}

// Commands returns the root of the inbound command namespace.
func (t Topics) Commands() string {
	return t.commands
}

// Command returns the command topic for a named device.
//
// Example: demo/central/comandos/bomba
func (t Topics) Command(device string) string {
	return t.commands + "/" + device
}

// CommandPattern returns the wildcard pattern covering every command topic.
//
// Example: demo/central/comandos/#
func (t Topics) CommandPattern() string {
	return t.commands + "/#"
}
