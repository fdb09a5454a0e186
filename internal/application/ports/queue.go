package ports

import (
	"context"
	"time"

	"github.com/avolkov/seckill-service/internal/domain/order"
)

// QueueEntry is a delivered order intent plus the queue-assigned entry id
// needed for acknowledgement.
type QueueEntry struct {
	ID     string
	Intent order.Intent
}

// IntentQueue is an at-least-once, consumer-group work queue for order
// intents. Entries read but never acknowledged stay in the pending range for
// the consumer that read them.
type IntentQueue interface {
	// Append adds an intent to the stream. The admission gate normally
	// appends inside its atomic step; this method exists for operational
	// replay and tests.
	Append(ctx context.Context, intent order.Intent) (string, error)

	// ReadNext returns the next never-delivered entry for this consumer, or
	// nil if blockTimeout elapsed with nothing to read.
	ReadNext(ctx context.Context, blockTimeout time.Duration) (*QueueEntry, error)

	// ReadPending returns the oldest entry delivered to this consumer but not
	// yet acknowledged, or nil if the pending range is empty.
	ReadPending(ctx context.Context) (*QueueEntry, error)

	// Acknowledge marks an entry done. Idempotent.
	Acknowledge(ctx context.Context, entryID string) error
}
