package tokenstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vishnukanth5457/joinup/internal/config"
)

// Open builds the store selected by cfg.Store. The returned close func
// releases any connection the backend holds.
func Open(ctx context.Context, cfg config.Config) (Store, func(), error) {
	switch cfg.Store {
	case "", "file":
		return NewFileStore(cfg.StorePath), func() {}, nil
	case "memory":
		return NewMemoryStore(), func() {}, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping failed: %w", err)
		}
		return NewRedisStore(client, cfg.RedisPrefix), func() { _ = client.Close() }, nil
	case "postgres":
		pool, err := NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		store := NewPostgresStore(pool, "default")
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("session schema: %w", err)
		}
		return store, pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}
}
