package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/vytor/timestrainer/internal/logger"
	"github.com/vytor/timestrainer/internal/repository"
)

// SettingsRepo keeps remembered preferences in Redis.
type SettingsRepo struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewSettingsRepo wraps client. A zero ttl keeps keys forever.
func NewSettingsRepo(client redis.UniversalClient, ttl time.Duration) (*SettingsRepo, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil for SettingsRepo")
	}
	return &SettingsRepo{client: client, ttl: ttl}, nil
}

var _ repository.SettingsRepository = (*SettingsRepo)(nil)

func (r *SettingsRepo) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", repository.ErrNotFound
		}
		logger.FromContext(ctx).WithPrefix("redis").Error("failed to get %s: %v", key, err)
		return "", err
	}
	return val, nil
}

func (r *SettingsRepo) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, r.ttl).Err()
}

func (r *SettingsRepo) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// Options for NewClient.
type Options struct {
	Addrs    []string
	Password string
	DB       int
}

// NewClient builds a universal client and checks the connection.
func NewClient(ctx context.Context, opts Options) (redis.UniversalClient, error) {
	if len(opts.Addrs) == 0 {
		return nil, fmt.Errorf("redis configuration error: at least one address is required")
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    opts.Addrs,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis %v: %w", opts.Addrs, err)
	}
	return client, nil
}
