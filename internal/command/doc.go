// Package command interprets inbound device commands and monitoring
// readings.
//
// Command payloads are plain text tokens (ON/OFF plus the legacy
// LIGAR/DESLIGAR) addressed by topic: the pump on its own command topic,
// valves addressed by an index carried as the final topic level. Garden
// temperature readings are decimal Celsius values; readings above the high
// threshold trigger the irrigation response. Parsing failures are local
// events; they are logged and the message is dropped.
package command
