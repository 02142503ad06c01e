package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implémente Store sur un client Redis
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Client() *redis.Client { return s.client }

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// TTL retourne la durée restante ; 0 si la clé n'expire pas
func (s *RedisStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	switch {
	case ttl == -2:
		return 0, ErrNotFound
	case ttl < 0:
		return 0, nil
	}
	return ttl, nil
}

func (s *RedisStore) HGet(ctx context.Context, key, field string) (string, error) {
	v, err := s.client.HGet(ctx, key, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

func (s *RedisStore) HSetNX(ctx context.Context, key, field, value string) (bool, error) {
	return s.client.HSetNX(ctx, key, field, value).Result()
}

func (s *RedisStore) HDel(ctx context.Context, key, field string) error {
	return s.client.HDel(ctx, key, field).Err()
}

// Incr : fenêtre fixe, l'expiration est posée à la création du compteur
func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := s.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	// TTL négatif : compteur sans expiration (création, ou EXPIRE perdu)
	if window > 0 && (incr.Val() == 1 || ttl.Val() < 0) {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, err
		}
	}
	return incr.Val(), nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
