package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/vishnukanth5457/joinup/internal/model"
)

// RedisStore keeps both entries under a key prefix and writes them in one MULTI/EXEC.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) key(name string) string {
	return r.prefix + name
}

func (r *RedisStore) Load(ctx context.Context) (Record, error) {
	values, err := r.client.MGet(ctx, r.key(KeyToken), r.key(KeyUser)).Result()
	if err != nil {
		return Record{}, fmt.Errorf("redis load: %w", err)
	}
	token, _ := values[0].(string)
	rawUser, _ := values[1].(string)
	if token == "" || rawUser == "" {
		return Record{}, ErrNotFound
	}
	var user model.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return Record{}, ErrCorrupt
	}
	rec := Record{Token: token, User: user}
	if !rec.complete() {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (r *RedisStore) Save(ctx context.Context, rec Record) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	user, err := json.Marshal(rec.User)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key(KeyToken), rec.Token, 0)
		pipe.Set(ctx, r.key(KeyUser), string(user), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key(KeyToken), r.key(KeyUser)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis clear: %w", err)
	}
	return nil
}
