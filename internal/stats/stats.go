package stats

import (
	"sync"
	"time"
)

// Statistics is a point-in-time copy of the agent's message counters.
//
// Published, Received and PublishFailures reflect message throughput since
// the last Reset. Disconnects and Downtime reflect link history and survive
// Reset - they describe the connection, not the traffic.
type Statistics struct {
	Published       uint64        `json:"published"`
	Received        uint64        `json:"received"`
	PublishFailures uint64        `json:"publish_failures"`
	Disconnects     uint64        `json:"disconnects"`
	Downtime        time.Duration `json:"downtime"`
	LastActivity    time.Time     `json:"last_activity"`
}

// Tracker accumulates session statistics.
//
// It is mutated from at least two concurrent contexts - producer-driven
// publishes and the session's asynchronous connect/disconnect events - so
// all counters live behind one mutex. Snapshot reads every field under the
// same lock, giving callers a consistent view.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Tracker struct {
	mu sync.Mutex

	published       uint64
	received        uint64
	publishFailures uint64
	disconnects     uint64
	downtime        time.Duration
	lastActivity    time.Time
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// RecordPublish records the outcome of a publish attempt.
// Successful publishes increment the published counter and refresh the
// last-activity timestamp; failures increment the failure counter only.
func (t *Tracker) RecordPublish(ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ok {
		t.published++
		t.lastActivity = time.Now()
	} else {
		t.publishFailures++
	}
}

// RecordReceive records one inbound message and refreshes last-activity.
func (t *Tracker) RecordReceive() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.received++
	t.lastActivity = time.Now()
}

// RecordDisconnect increments the disconnect counter.
//
// The session calls this only on transitions out of Connected - failed
// connect attempts (Connecting -> Disconnected) are not disconnects.
func (t *Tracker) RecordDisconnect() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disconnects++
}

// RecordDowntime adds an elapsed disconnected duration to the cumulative
// downtime. The session calls this on reconnect, once the outage length
// is known.
func (t *Tracker) RecordDowntime(d time.Duration) {
	if d < 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.downtime += d
}

// Snapshot returns a consistent copy of all counters.
func (t *Tracker) Snapshot() Statistics {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Statistics{
		Published:       t.published,
		Received:        t.received,
		PublishFailures: t.publishFailures,
		Disconnects:     t.disconnects,
		Downtime:        t.downtime,
		LastActivity:    t.lastActivity,
	}
}

// Reset zeroes the throughput counters and the last-activity timestamp.
//
// Disconnect count and cumulative downtime are preserved: they describe
// link history, not message throughput.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.published = 0
	t.received = 0
	t.publishFailures = 0
	t.lastActivity = time.Time{}
}
