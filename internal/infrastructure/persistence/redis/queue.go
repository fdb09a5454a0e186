package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avolkov/seckill-service/internal/application/ports"
	"github.com/avolkov/seckill-service/internal/domain/order"
	"github.com/avolkov/seckill-service/internal/infrastructure/monitoring"
)

// IntentQueue is a Redis Stream consumed through a named group. Entries are
// delivered at least once: anything read but not acknowledged stays in the
// consumer's pending range and is re-read via ReadPending.
type IntentQueue struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string
}

func NewIntentQueue(conn *Connection, stream, group, consumer string) *IntentQueue {
	return &IntentQueue{
		client:   conn.GetClient(),
		stream:   stream,
		group:    group,
		consumer: consumer,
	}
}

// EnsureGroup creates the stream and consumer group if they do not exist yet.
// Safe to call on every startup.
func (q *IntentQueue) EnsureGroup(ctx context.Context) error {
	err := q.client.XGroupCreateMkStream(ctx, q.stream, q.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group %s on %s: %w", q.group, q.stream, err)
	}
	return nil
}

func (q *IntentQueue) Append(ctx context.Context, intent order.Intent) (string, error) {
	id, err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]interface{}{
			"user_id":    strconv.FormatUint(intent.UserID, 10),
			"voucher_id": strconv.FormatUint(intent.VoucherID, 10),
			"order_id":   strconv.FormatUint(intent.OrderID, 10),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to append order intent: %w", err)
	}
	return id, nil
}

func (q *IntentQueue) ReadNext(ctx context.Context, blockTimeout time.Duration) (*ports.QueueEntry, error) {
	return q.read(ctx, ">", blockTimeout)
}

func (q *IntentQueue) ReadPending(ctx context.Context) (*ports.QueueEntry, error) {
	// Offset "0" scans this consumer's pending range from its start instead
	// of delivering new entries.
	return q.read(ctx, "0", 0)
}

func (q *IntentQueue) read(ctx context.Context, offset string, blockTimeout time.Duration) (*ports.QueueEntry, error) {
	args := &redis.XReadGroupArgs{
		Group:    q.group,
		Consumer: q.consumer,
		Streams:  []string{q.stream, offset},
		Count:    1,
	}
	if blockTimeout > 0 {
		args.Block = blockTimeout
	} else {
		args.Block = -1
	}

	streams, err := q.client.XReadGroup(ctx, args).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read from stream %s: %w", q.stream, err)
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return nil, nil
	}

	msg := streams[0].Messages[0]
	intent, err := parseIntent(msg.Values)
	if err != nil {
		return nil, fmt.Errorf("malformed entry %s: %w", msg.ID, err)
	}

	return &ports.QueueEntry{
		ID:     msg.ID,
		Intent: intent,
	}, nil
}

func (q *IntentQueue) Acknowledge(ctx context.Context, entryID string) error {
	if err := q.client.XAck(ctx, q.stream, q.group, entryID).Err(); err != nil {
		return fmt.Errorf("failed to acknowledge entry %s: %w", entryID, err)
	}
	return nil
}

// ObservePendingDepth exports the group's pending count, used by the metrics
// collector.
func (q *IntentQueue) ObservePendingDepth(ctx context.Context) error {
	pending, err := q.client.XPending(ctx, q.stream, q.group).Result()
	if err != nil {
		return err
	}
	monitoring.QueuePendingEntries.Set(float64(pending.Count))
	return nil
}

func parseIntent(values map[string]interface{}) (order.Intent, error) {
	userID, err := parseUint(values, "user_id")
	if err != nil {
		return order.Intent{}, err
	}
	voucherID, err := parseUint(values, "voucher_id")
	if err != nil {
		return order.Intent{}, err
	}
	orderID, err := parseUint(values, "order_id")
	if err != nil {
		return order.Intent{}, err
	}

	return order.Intent{
		OrderID:   orderID,
		UserID:    userID,
		VoucherID: voucherID,
	}, nil
}

func parseUint(values map[string]interface{}, field string) (uint64, error) {
	raw, ok := values[field]
	if !ok {
		return 0, fmt.Errorf("missing field %s", field)
	}
	s, ok := raw.(string)
	if !ok {
		return 0, fmt.Errorf("field %s is not a string", field)
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("field %s: %w", field, err)
	}
	return v, nil
}
