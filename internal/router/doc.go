// Package router dispatches inbound MQTT messages to registered handlers.
//
// This package manages:
//   - The agent's subscription set (pattern + QoS, insertion ordered)
//   - MQTT wildcard matching (+ single level, # trailing multi level)
//   - Bounded-payload dispatch with panic recovery
//
// The routing table is the authority on what the agent is subscribed to.
// The session re-asserts the table's subscriptions to the broker on every
// reconnect, so a registration made while disconnected still takes effect
// once the link comes back.
//
// Topic and payload arguments are treated as length-bounded byte
// sequences end to end - nothing here assumes terminated strings, and
// payloads above the configured bound are truncated deterministically
// before handlers run.
package router
