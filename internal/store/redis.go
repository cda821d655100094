// SPDX-License-Identifier: MPL-2.0

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/forgecad/forge/pkg/params"
)

// DefaultRedisPrefix namespaces override keys.
const DefaultRedisPrefix = "forge:params:"

type (
	// Redis is a Store that keeps each script's overrides as one JSON string.
	Redis struct {
		client *backend.Client
		prefix string
		ttl    time.Duration
	}

	// RedisOption configures a Redis store.
	RedisOption func(*Redis)
)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) { r.prefix = prefix }
}

// WithTTL expires overrides after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) { r.ttl = ttl }
}

// NewRedis connects to the server at addr.
func NewRedis(addr, password string, db int, opts ...RedisOption) *Redis {
	client := backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisFromClient(client, opts...)
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *backend.Client, opts ...RedisOption) *Redis {
	r := &Redis{client: client, prefix: DefaultRedisPrefix}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) key(script string) string {
	return r.prefix + script
}

// Get implements Store.
func (r *Redis) Get(ctx context.Context, key string) (params.Values, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read overrides from redis: %w", err)
	}

	var values params.Values
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to decode overrides for %s: %w", key, err)
	}
	return values, nil
}

// Set implements Store.
func (r *Redis) Set(ctx context.Context, key string, values params.Values) error {
	if values == nil {
		values = params.Values{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode overrides: %w", err)
	}
	if err := r.client.Set(ctx, r.key(key), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write overrides to redis: %w", err)
	}
	return nil
}

// Clear implements Store.
func (r *Redis) Clear(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to clear overrides in redis: %w", err)
	}
	return nil
}

// Close releases the client connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
