// Package spool provides SQLite-backed store-and-forward for telemetry.
//
// Records produced while the broker link is down are queued on disk and
// delivered oldest-first when the session reconnects. The spool is bounded
// with oldest-first eviction so an extended outage cannot grow the database
// without limit.
package spool
