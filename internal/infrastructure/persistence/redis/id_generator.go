package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// idEpoch is 2024-10-30T00:00:00Z. Seconds since this epoch fill the high
	// bits of every generated id.
	idEpoch = 1730246400

	// sequenceBits is the width of the low-order per-day sequence. 32 bits
	// leaves room for ~4 billion ids per day, far above any realistic peak.
	sequenceBits = 32
)

// IDGenerator composes order ids from a second-resolution timestamp and a
// shared per-day Redis counter. Ids are unique across processes and increase
// within a day bucket. When Redis is unreachable the call fails; an id is
// never fabricated locally.
type IDGenerator struct {
	client *redis.Client
}

func NewIDGenerator(conn *Connection) *IDGenerator {
	return &IDGenerator{
		client: conn.GetClient(),
	}
}

func (g *IDGenerator) NextID(ctx context.Context, tag string) (uint64, error) {
	now := time.Now().UTC()
	timestamp := uint64(now.Unix() - idEpoch)

	// The counter key carries the date, so the sequence space resets daily
	// and the stored value stays small.
	key := fmt.Sprintf("icr:%s:%s", tag, now.Format("2006:01:02"))
	seq, err := g.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("id sequence increment failed: %w", err)
	}

	return timestamp<<sequenceBits | uint64(seq), nil
}
