// Package mqtt maintains the agent's persistent broker session.
//
// This package manages:
//   - Connection lifecycle with session-owned reconnect (capped exponential
//     backoff with jitter; paho's auto-reconnect is disabled)
//   - Retained presence on the status topic (ONLINE on connect, OFFLINE as
//     both Last Will and graceful shutdown payload)
//   - Publishing with validation, statistics accounting, and opaque
//     per-operation message identifiers
//   - Subscription registration that survives disconnects: patterns live in
//     the routing table and are re-asserted to the broker, in registration
//     order, on every reconnect
//
// The broker link itself sits behind the Transport interface. Production
// wires paho.mqtt.golang (paho.go); tests drive the session with an
// in-process fake, which keeps the lifecycle tests deterministic.
//
// Typical wiring:
//
//	routes := router.NewTable(0)
//	tracker := stats.NewTracker()
//	topics := mqtt.NewTopics(cfg.Agent.BaseTopic, cfg.CommandTopic())
//
//	session, err := mqtt.NewSession(mqtt.Deps{
//		MQTT:    cfg.MQTT,
//		Topics:  topics,
//		Routes:  routes,
//		Tracker: tracker,
//		Logger:  logger,
//	}, func(events mqtt.Events) (mqtt.Transport, error) {
//		will := mqtt.Will{Topic: topics.Status(), Payload: mqtt.StatusOffline, QoS: 1, Retained: true}
//		return mqtt.NewPahoTransport(cfg.MQTT, cfg.ClientID(), will, events), nil
//	})
package mqtt
