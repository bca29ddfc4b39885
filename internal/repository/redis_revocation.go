package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisRevocationStore отозванные токены. Запись живет до истечения токена.
type RedisRevocationStore struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisRevocationStore(client *redis.Client, logger *zap.Logger) *RedisRevocationStore {
	return &RedisRevocationStore{client: client, logger: logger.Named("RedisRevocationStore")}
}

func revokedKey(tokenID string) string {
	return fmt.Sprintf("storybook:revoked:%s", tokenID)
}

// Revoke помечает токен отозванным на ttl.
func (s *RedisRevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" {
		return errors.New("empty token id")
	}
	if ttl <= 0 {
		// уже истек, хранить нечего
		return nil
	}
	if err := s.client.Set(ctx, revokedKey(tokenID), "1", ttl).Err(); err != nil {
		s.logger.Error("Failed to revoke token", zap.String("tokenID", tokenID), zap.Error(err))
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.logger.Debug("Token revoked", zap.String("tokenID", tokenID), zap.Duration("ttl", ttl))
	return nil
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}
