// Package health probes host vitals for the agent's periodic health report.
//
// Snapshots combine available memory (with a tracked historical minimum),
// host uptime, optional link signal strength, and the broker connection
// flag, encoded as the same compact key=value text the telemetry channel
// uses.
package health
