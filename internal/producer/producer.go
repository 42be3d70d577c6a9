package producer

import (
	"context"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-agent/internal/health"
	"github.com/nerrad567/gray-logic-agent/internal/mqtt"
	"github.com/nerrad567/gray-logic-agent/internal/telemetry"
)

// Publisher is the session surface the producers need.
// Implemented by *mqtt.Session.
type Publisher interface {
	// Publish sends a message to an arbitrary topic.
	Publish(topic string, payload []byte, qos byte, retained bool) (mqtt.MessageID, error)

	// PublishTelemetry sends one telemetry record to the telemetry topic.
	PublishTelemetry(rec telemetry.Record) (mqtt.MessageID, error)

	// PublishHealth sends one health snapshot to the health topic.
	PublishHealth(snap health.Snapshot) (mqtt.MessageID, error)

	// IsConnected reports whether the broker link is up.
	IsConnected() bool
}

// Logger is the logging interface the producers require.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// nopLogger discards all log output.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// runner owns the ticker loop plumbing shared by every producer.
// stopOnce prevents double-close panics when Stop is called twice.
type runner struct {
	interval time.Duration
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func newRunner(interval time.Duration) runner {
	return runner{interval: interval, done: make(chan struct{})}
}

// start launches the loop, invoking tick once per interval until the
// context is cancelled or stop is called.
func (r *runner) start(ctx context.Context, tick func(ctx context.Context)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-r.done:
				return
			case <-ticker.C:
				tick(ctx)
			}
		}
	}()
}

// stop shuts the loop down and waits for it to finish. Safe to call
// multiple times.
func (r *runner) stop() {
	r.stopOnce.Do(func() {
		close(r.done)
		r.wg.Wait()
	})
}
