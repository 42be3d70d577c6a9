// Package logging provides structured logging for Gray Logic Agent.
//
// It wraps the standard library's log/slog with agent-specific defaults:
// a service name attribute, a version attribute, and level/format/output
// selection from configuration.
//
// Usage:
//
//	log := logging.New(cfg.Logging, version)
//	log.Info("session connected", "broker", brokerURL)
//
// Component loggers are derived with With:
//
//	mqttLog := log.With("component", "mqtt")
package logging
