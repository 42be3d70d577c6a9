package mqtt

import (
	"math/rand"
	"time"

	"github.com/nerrad567/gray-logic-agent/internal/infrastructure/config"
)

// backoffMultiplier doubles the delay on every failed attempt.
const backoffMultiplier = 2

// backoff produces the delay sequence for connect retries: capped
// exponential growth with symmetric jitter.
//
// Each call to Next() returns the current delay (randomised by the jitter
// fraction) and advances the curve. Reset() restarts the curve after a
// successful connection.
//
// Not safe for concurrent use; the retry loop owns one instance.
type backoff struct {
	initial time.Duration
	max     time.Duration
	jitter  float64

	current time.Duration
}

// newBackoff builds a backoff curve from the reconnect config.
func newBackoff(cfg config.MQTTReconnectConfig) *backoff {
	b := &backoff{
		initial: time.Duration(cfg.InitialDelay) * time.Second,
		max:     time.Duration(cfg.MaxDelay) * time.Second,
		jitter:  cfg.Jitter,
	}
	b.Reset()
	return b
}

// Next returns the delay before the next attempt and advances the curve.
func (b *backoff) Next() time.Duration {
	d := b.current

	b.current *= backoffMultiplier
	if b.current > b.max {
		b.current = b.max
	}

	if b.jitter > 0 {
		// Spread delays across [d*(1-j), d*(1+j)] so a fleet of agents does
		// not hammer a recovering broker in lockstep.
		spread := 1 + b.jitter*(2*rand.Float64()-1)
		d = time.Duration(float64(d) * spread)
	}

	if d < 0 {
		d = 0
	}
	return d
}

// Reset restarts the curve at the initial delay.
func (b *backoff) Reset() {
	b.current = b.initial
}
