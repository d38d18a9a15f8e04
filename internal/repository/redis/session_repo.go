package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrTokenNotFound    = errors.New("token not found")
	ErrRedisUnavailable = errors.New("redis unavailable")
	ErrExtendFailed     = errors.New("token extend failed")
	ErrTokenDeleted     = errors.New("token delete failed")
)

const UserTokenPrefix = "login:user:token"

// SessionRepository 每个用户一个有效 access token，登录由认证服务写入，这里校验并续期
type SessionRepository struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionRepository{Client: client, TTL: ttl}
}

func tokenKey(userID uint64) string {
	return fmt.Sprintf("%s:%d", UserTokenPrefix, userID)
}

func (r *SessionRepository) AddUserToken(ctx context.Context, userID uint64, token string) error {
	if err := r.Client.Set(ctx, tokenKey(userID), token, r.TTL).Err(); err != nil {
		return ErrRedisUnavailable
	}
	return nil
}

func (r *SessionRepository) GetUserToken(ctx context.Context, userID uint64) (string, error) {
	token, err := r.Client.Get(ctx, tokenKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", ErrRedisUnavailable
	}
	return token, nil
}

func (r *SessionRepository) ExtendUserToken(ctx context.Context, userID uint64) error {
	if err := r.Client.Expire(ctx, tokenKey(userID), r.TTL).Err(); err != nil {
		return ErrExtendFailed
	}
	return nil
}

func (r *SessionRepository) DeleteUserToken(ctx context.Context, userID uint64) error {
	if err := r.Client.Del(ctx, tokenKey(userID)).Err(); err != nil {
		return ErrTokenDeleted
	}
	return nil
}
