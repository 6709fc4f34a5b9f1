package locker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Client is the subset of *redis.Client the locker uses.
type Client interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// Deletes the key only while it still holds the caller's token.
const unlockScript = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`

// RedisLocker is a single-instance redis lock with owner tokens. Locks
// expire after ttl so a crashed holder cannot wedge a slot.
type RedisLocker struct {
	client Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisLocker(client Client, ttl time.Duration, logger *zap.Logger) *RedisLocker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLocker{client: client, ttl: ttl, logger: logger}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string) (string, bool, error) {
	token := uuid.NewString()
	acquired, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("setnx %s: %w", key, err)
	}
	if !acquired {
		l.logger.Debug("slot lock held elsewhere", zap.String("key", key))
		return "", false, nil
	}
	l.logger.Debug("slot lock acquired", zap.String("key", key), zap.Duration("ttl", l.ttl))
	return token, true, nil
}

func (l *RedisLocker) Unlock(ctx context.Context, key, token string) error {
	released, err := l.client.Eval(ctx, unlockScript, []string{key}, token).Int64()
	if err != nil {
		return fmt.Errorf("release %s: %w", key, err)
	}
	if released == 0 {
		l.logger.Warn("slot lock expired or taken over before release", zap.String("key", key))
	}
	return nil
}
