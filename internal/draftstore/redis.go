package draftstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis keeps the snapshot as a string with a TTL, so abandoned drafts
// expire on their own. Every save refreshes the TTL.
type Redis struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	owned  bool
}

// RedisOptions selects the server and expiry.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedis connects to Redis and checks the connection.
func NewRedis(ctx context.Context, opts RedisOptions, profile string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	r := NewRedisWithClient(client, opts.TTL, profile)
	r.owned = true
	return r, nil
}

// NewRedisWithClient uses an existing client, which the caller keeps
// ownership of.
func NewRedisWithClient(client *redis.Client, ttl time.Duration, profile string) *Redis {
	return &Redis{
		client: client,
		key:    "recruitdash:" + ProfileSlug(profile) + ":" + KeyBase,
		ttl:    ttl,
	}
}

func (r *Redis) Name() string { return "redis" }

func (r *Redis) prevKey() string { return r.key + ":prev" }

func (r *Redis) Load(ctx context.Context) ([]byte, error) {
	return r.get(ctx, r.key)
}

func (r *Redis) Save(ctx context.Context, data []byte) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Rename(ctx, r.key, r.prevKey())
		pipe.Set(ctx, r.key, data, r.ttl)
		return nil
	})
	// RENAME fails when there is no current revision yet; the SET in the
	// same MULTI still runs.
	if err != nil && !isNoSuchKey(err) {
		return fmt.Errorf("redis save %s: %w", r.key, err)
	}
	if r.ttl > 0 {
		r.client.Expire(ctx, r.prevKey(), r.ttl)
	}
	return nil
}

func (r *Redis) Previous(ctx context.Context) ([]byte, error) {
	data, err := r.get(ctx, r.prevKey())
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrNoPrevious
	}
	return data, nil
}

func (r *Redis) Delete(ctx context.Context) error {
	return r.client.Del(ctx, r.key, r.prevKey()).Err()
}

func (r *Redis) Close() error {
	if r.owned {
		return r.client.Close()
	}
	return nil
}

func (r *Redis) get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func isNoSuchKey(err error) bool {
	return err != nil && err.Error() == "ERR no such key"
}
