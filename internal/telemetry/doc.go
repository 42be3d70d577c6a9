// Package telemetry defines the agent's telemetry sample value object and
// its wire encoding.
//
// Samples are encoded as compact key=value text rather than JSON to keep
// payloads small and trivially parseable on constrained receivers. The
// encoding is symmetric: Decode(rec.Encode()) reconstructs the numeric
// fields exactly at two-decimal precision.
package telemetry
