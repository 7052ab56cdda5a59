package repository

import (
	"context"
	"errors"
	"time"

	redisapp "blogforge/internal/storage/redis"

	"github.com/redis/go-redis/v9"
)

type RedisSessionRepo struct {
	Client *redisapp.Client
}

func NewRedisSessionRepo(client *redisapp.Client) *RedisSessionRepo {
	return &RedisSessionRepo{Client: client}
}

func (r *RedisSessionRepo) SaveSession(ctx context.Context, userID, token string, exp time.Duration) error {
	return r.Client.Set(ctx, sessionKey(userID, token), "1", exp).Err()
}

func (r *RedisSessionRepo) SessionActive(ctx context.Context, userID, token string) (bool, error) {
	val, err := r.Client.Get(ctx, sessionKey(userID, token)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	return val == "1", err
}

func (r *RedisSessionRepo) DeleteSession(ctx context.Context, userID, token string) error {
	return r.Client.Del(ctx, sessionKey(userID, token)).Err()
}

func (r *RedisSessionRepo) DeleteAllUserSessions(ctx context.Context, userID string) error {
	keys, err := r.Client.Keys(ctx, sessionKey(userID, "*")).Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.Client.Del(ctx, keys...).Err()
}

func sessionKey(userID, token string) string {
	return "session:" + userID + ":" + token
}
