// Package stats tracks runtime statistics for the agent's MQTT session.
//
// One Tracker instance is shared between the publish/subscribe facade
// (publish and receive counters) and the session's connection event
// handling (disconnect count, cumulative downtime). Counters are
// monotonic; Reset clears throughput counters but preserves link history.
package stats
