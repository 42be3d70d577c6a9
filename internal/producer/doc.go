// Package producer runs the agent's periodic publishers.
//
// Three producers share one ticker-loop runner: telemetry samples (spooled
// while disconnected), simulated flat-topic sensor readings, and host
// health reports. Each exposes PublishNow for a single immediate cycle,
// which is also what the tests drive.
package producer
