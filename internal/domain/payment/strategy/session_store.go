package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "payment:session:"
	sessionTTL       = 24 * time.Hour
	// 元数据上限，防止把整个购物车明细塞爆 Redis
	maxSessionBytes = 4096
)

// ErrSessionNotFound 会话不存在或已过期
var ErrSessionNotFound = errors.New("checkout session not found")

// ErrSessionTooLarge 会话数据超限
var ErrSessionTooLarge = errors.New("checkout session metadata too large")

// SessionItem 会话中锁定的商品行
type SessionItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// SessionData 结账会话元数据
// 渠道查单接口不会回传业务字段，所以创建会话时整体落 Redis
type SessionData struct {
	SessionID  string        `json:"sessionId"`
	UserID     string        `json:"userId"`
	Channel    string        `json:"channel"`
	Items      []SessionItem `json:"items"`
	CouponCode string        `json:"couponCode,omitempty"`
	Subtotal   float64       `json:"subtotal"`
	Discount   float64       `json:"discount"`
	Tax        float64       `json:"tax"`
	Total      float64       `json:"total"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// SessionStore 结账会话存储
type SessionStore interface {
	Save(ctx context.Context, data *SessionData) error
	Get(ctx context.Context, sessionID string) (*SessionData, error)
	Delete(ctx context.Context, sessionID string) error
}

type redisSessionStore struct {
	client *redis.Client
}

// NewSessionStore 创建基于 Redis 的会话存储，24小时过期
func NewSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func (s *redisSessionStore) Save(ctx context.Context, data *SessionData) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if len(payload) > maxSessionBytes {
		return ErrSessionTooLarge
	}
	return s.client.Set(ctx, sessionKey(data.SessionID), payload, sessionTTL).Err()
}

func (s *redisSessionStore) Get(ctx context.Context, sessionID string) (*SessionData, error) {
	payload, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var data SessionData
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("corrupt session data: %w", err)
	}
	return &data, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKey(sessionID)).Err()
}
