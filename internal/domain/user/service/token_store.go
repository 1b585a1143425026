package service

import (
	"context"
	"errors"
	"fmt"

	"shop_api/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// ErrRefreshTokenMismatch 刷新 Token 与存储不一致 (已轮换或已登出)
var ErrRefreshTokenMismatch = errors.New("refresh token mismatch")

// TokenStore 刷新 Token 存储，登出即失效
type TokenStore interface {
	Save(ctx context.Context, userID, token string) error
	Verify(ctx context.Context, userID, token string) error
	Delete(ctx context.Context, userID string) error
}

type redisTokenStore struct {
	client *redis.Client
}

// NewTokenStore 创建基于 Redis 的刷新 Token 存储
func NewTokenStore(client *redis.Client) TokenStore {
	return &redisTokenStore{client: client}
}

func refreshKey(userID string) string {
	return fmt.Sprintf("refresh_token:%s", userID)
}

// Save 保存刷新 Token，过期时间与 Token 本身一致
func (s *redisTokenStore) Save(ctx context.Context, userID, token string) error {
	return s.client.Set(ctx, refreshKey(userID), token, utils.RefreshTokenExpiry).Err()
}

// Verify 校验刷新 Token 是否为当前有效的那一个
func (s *redisTokenStore) Verify(ctx context.Context, userID, token string) error {
	stored, err := s.client.Get(ctx, refreshKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrRefreshTokenMismatch
		}
		return err
	}

	if stored != token {
		return ErrRefreshTokenMismatch
	}
	return nil
}

// Delete 删除刷新 Token (登出)
func (s *redisTokenStore) Delete(ctx context.Context, userID string) error {
	return s.client.Del(ctx, refreshKey(userID)).Err()
}
