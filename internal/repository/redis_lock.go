package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storybook-server/internal/illustration"
	"storybook-server/internal/models"
)

// Снимаем блокировку, только если она все еще наша.
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisChapterLock блокировка генерации главы между экземплярами сервиса и воркером.
type RedisChapterLock struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

var _ illustration.Guard = (*RedisChapterLock)(nil)

func NewRedisChapterLock(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisChapterLock {
	if ttl <= 0 {
		ttl = 3 * time.Minute
	}
	return &RedisChapterLock{client: client, ttl: ttl, logger: logger.Named("RedisChapterLock")}
}

func (l *RedisChapterLock) Acquire(ctx context.Context, storyID int64, chapterIndex int) (func(), error) {
	key := illustration.ChapterKey(storyID, chapterIndex)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: story %d chapter %d", models.ErrIllustrationInProgress, storyID, chapterIndex)
	}

	return func() {
		// контекст запроса к этому моменту может быть уже отменен
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseLockScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn("Failed to release chapter lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}
