package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/avolkov/seckill-service/internal/infrastructure/monitoring"
)

// unlockLuaScript deletes the lock key only when it still holds the caller's
// token. Without the check a holder whose lease expired could delete a lock
// that has since been re-acquired by someone else.
const unlockLuaScript = `
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`

// Lock is a non-blocking distributed lock with a lease. Each acquisition is
// tagged with a unique holder token; Unlock is a compare-and-delete on that
// token.
type Lock struct {
	client       *redis.Client
	keyPrefix    string
	unlockScript *redis.Script
}

func NewLock(conn *Connection, keyPrefix string) *Lock {
	return &Lock{
		client:       conn.GetClient(),
		keyPrefix:    keyPrefix,
		unlockScript: redis.NewScript(unlockLuaScript),
	}
}

func (l *Lock) TryLock(ctx context.Context, key string, lease time.Duration) (string, bool, error) {
	token := uuid.NewString()

	monitoring.RedisLockAttemptsTotal.WithLabelValues(l.keyPrefix).Inc()

	ok, err := l.client.SetNX(ctx, l.keyPrefix+key, token, lease).Result()
	if err != nil {
		monitoring.RedisLockFailureTotal.WithLabelValues(l.keyPrefix, "redis_error").Inc()
		return "", false, fmt.Errorf("lock acquisition failed: %w", err)
	}
	if !ok {
		monitoring.RedisLockFailureTotal.WithLabelValues(l.keyPrefix, "already_locked").Inc()
		return "", false, nil
	}

	monitoring.RedisLockSuccessTotal.WithLabelValues(l.keyPrefix).Inc()
	return token, true, nil
}

func (l *Lock) Unlock(ctx context.Context, key, token string) error {
	err := l.unlockScript.Run(ctx, l.client, []string{l.keyPrefix + key}, token).Err()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("lock release failed: %w", err)
	}
	return nil
}
