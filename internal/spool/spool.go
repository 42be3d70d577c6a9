package spool

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-agent/internal/infrastructure/database"
)

// Domain-specific errors for spool operations.
var (
	// ErrStoreUnavailable is returned when the store is built without a database.
	ErrStoreUnavailable = errors.New("spool: database is required")

	// ErrEnqueueFailed is returned when a record cannot be persisted.
	ErrEnqueueFailed = errors.New("spool: enqueue failed")

	// ErrDrainFailed is returned when draining stops on a storage error.
	// Publish failures during a drain are not storage errors; they end the
	// drain early with the undelivered records kept.
	ErrDrainFailed = errors.New("spool: drain failed")
)

// defaultMaxMessages caps the spool when no limit is configured.
const defaultMaxMessages = 10000

// schema holds the spool's own table. The database wrapper deliberately
// knows nothing about it.
const schema = `
CREATE TABLE IF NOT EXISTS spool (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	topic     TEXT    NOT NULL,
	payload   BLOB    NOT NULL,
	qos       INTEGER NOT NULL,
	queued_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_spool_queued_at ON spool(queued_at);
`

// Message is one spooled publish awaiting delivery.
type Message struct {
	ID       int64
	Topic    string
	Payload  []byte
	QoS      byte
	QueuedAt time.Time
}

// PublishFunc delivers one spooled message. Returning an error stops the
// drain; the message and everything after it stay queued.
type PublishFunc func(msg Message) error

// Store is the SQLite-backed telemetry spool.
//
// While the broker link is down, producers enqueue records here instead of
// dropping them; the session's OnConnect callback drains the store once the
// link returns. The store is bounded: when full, the oldest records are
// evicted first, on the grounds that fresher telemetry is worth more.
//
// Thread Safety:
//   - All methods are safe for concurrent use (single-writer SQLite
//     serialises access underneath).
type Store struct {
	db  *database.DB
	max int
}

// NewStore opens the spool over an existing database connection and ensures
// its schema.
//
// Parameters:
//   - db: Open database wrapper (spool owns its table, nothing else)
//   - maxMessages: Capacity cap; <= 0 selects defaultMaxMessages
//
// Returns:
//   - *Store: Ready spool
//   - error: If the schema cannot be ensured
func NewStore(db *database.DB, maxMessages int) (*Store, error) {
	if db == nil {
		return nil, ErrStoreUnavailable
	}
	if maxMessages <= 0 {
		maxMessages = defaultMaxMessages
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("spool: ensure schema: %w", err)
	}

	return &Store{db: db, max: maxMessages}, nil
}

// Enqueue persists one record for later delivery.
//
// If the store is at capacity the oldest records are evicted to make room.
//
// Parameters:
//   - ctx: Cancellation context
//   - topic: Destination topic
//   - payload: Encoded record payload
//   - qos: QoS to publish with on delivery
//
// Returns:
//   - error: ErrEnqueueFailed (wrapped) on storage failure
func (s *Store) Enqueue(ctx context.Context, topic string, payload []byte, qos byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO spool (topic, payload, qos, queued_at) VALUES (?, ?, ?, ?)`,
		topic, payload, qos, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEnqueueFailed, err)
	}

	// Evict oldest-first down to the cap.
	_, err = s.db.ExecContext(ctx,
		`DELETE FROM spool WHERE id NOT IN (SELECT id FROM spool ORDER BY id DESC LIMIT ?)`,
		s.max,
	)
	if err != nil {
		return fmt.Errorf("%w: evict: %w", ErrEnqueueFailed, err)
	}

	return nil
}

// Drain delivers queued records oldest-first.
//
// Each record is removed only after publish succeeds, so a crash or publish
// failure mid-drain never loses records; at-least-once delivery may
// duplicate the record that was in flight.
//
// Parameters:
//   - ctx: Cancellation context, checked between records
//   - publish: Delivery callback; an error stops the drain
//
// Returns:
//   - int: Number of records delivered and removed
//   - error: ErrDrainFailed (wrapped) on storage failure; nil when the drain
//     ends early on a publish failure
func (s *Store) Drain(ctx context.Context, publish PublishFunc) (int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, topic, payload, qos, queued_at FROM spool ORDER BY id`,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDrainFailed, err)
	}

	var pending []Message
	for rows.Next() {
		var msg Message
		var queuedAt int64
		if err := rows.Scan(&msg.ID, &msg.Topic, &msg.Payload, &msg.QoS, &queuedAt); err != nil {
			rows.Close()
			return 0, fmt.Errorf("%w: scan: %w", ErrDrainFailed, err)
		}
		msg.QueuedAt = time.UnixMilli(queuedAt).UTC()
		pending = append(pending, msg)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("%w: %w", ErrDrainFailed, err)
	}
	rows.Close()

	delivered := 0
	for _, msg := range pending {
		select {
		case <-ctx.Done():
			return delivered, fmt.Errorf("%w: %w", ErrDrainFailed, ctx.Err())
		default:
		}

		if err := publish(msg); err != nil {
			// Link probably dropped again; keep the rest for next time.
			return delivered, nil
		}

		if _, err := s.db.ExecContext(ctx, `DELETE FROM spool WHERE id = ?`, msg.ID); err != nil {
			return delivered, fmt.Errorf("%w: remove delivered record: %w", ErrDrainFailed, err)
		}
		delivered++
	}

	return delivered, nil
}

// Len returns the number of queued records.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM spool`).Scan(&n)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("spool: count: %w", err)
	}
	return n, nil
}
