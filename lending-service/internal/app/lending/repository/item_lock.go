package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prestado/pkg/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const itemLockPrefix = "lock:item:"

// releaseScript удаляет ключ только если он принадлежит владельцу токена
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisItemLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewItemLocker создает блокировку вещей в Redis с заданным TTL
func NewItemLocker(client *redis.Client, ttl time.Duration) ItemLocker {
	return &redisItemLocker{client: client, ttl: ttl}
}

// Acquire захватывает блокировку вещи на ttl. Если блокировка занята,
// возвращает ErrItemLocked без ожидания.
func (l *redisItemLocker) Acquire(ctx context.Context, itemID string) (string, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpSetNX)
	defer timer.ObserveDuration()

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, itemLockPrefix+itemID, token, l.ttl).Result()
	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpSetNX)
		metrics.RecordLockAcquire(serviceName, "error")
		return "", fmt.Errorf("failed to acquire item lock: %w", err)
	}
	if !ok {
		metrics.RecordLockAcquire(serviceName, "busy")
		return "", ErrItemLocked
	}

	metrics.RecordLockAcquire(serviceName, "acquired")
	return token, nil
}

// Release снимает блокировку, только если она всё ещё принадлежит token
func (l *redisItemLocker) Release(ctx context.Context, itemID, token string) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpEval)
	defer timer.ObserveDuration()

	err := releaseScript.Run(ctx, l.client, []string{itemLockPrefix + itemID}, token).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		metrics.RecordRedisError(serviceName, metrics.RedisOpEval)
		return fmt.Errorf("failed to release item lock: %w", err)
	}
	return nil
}
