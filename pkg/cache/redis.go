package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// RedisCache stores entries as plain Redis strings under a key prefix.
type RedisCache struct {
	client   *backend.Client
	prefix   string
	attempts int
	backoff  time.Duration
}

// RedisOption configures a [RedisCache].
type RedisOption func(*RedisCache)

// WithPrefix sets the prefix prepended to every key. The default is
// "rsolver:".
func WithPrefix(prefix string) RedisOption {
	return func(c *RedisCache) { c.prefix = prefix }
}

// WithRetry sets how often writes are attempted when the connection fails,
// and the initial delay between attempts.
func WithRetry(attempts int, backoff time.Duration) RedisOption {
	return func(c *RedisCache) {
		if attempts > 0 {
			c.attempts = attempts
		}
		c.backoff = backoff
	}
}

// NewRedisCache connects to the Redis server at addr.
func NewRedisCache(addr string, opts ...RedisOption) *RedisCache {
	return NewRedisCacheFromClient(backend.NewClient(&backend.Options{Addr: addr}), opts...)
}

// NewRedisCacheFromClient wraps an existing client. Close closes it.
func NewRedisCacheFromClient(client *backend.Client, opts ...RedisOption) *RedisCache {
	c := &RedisCache{
		client:   client,
		prefix:   "rsolver:",
		attempts: 3,
		backoff:  100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ping checks connectivity.
func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

// Get retrieves a value.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", classify(err))
	}
	return data, true, nil
}

// Set stores a value, retrying on connection failures.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return retryUnavailable(ctx, c.attempts, c.backoff, func() error {
		if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
			return fmt.Errorf("redis set: %w", classify(err))
		}
		return nil
	})
}

// Delete removes a value.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", classify(err))
	}
	return nil
}

// Close closes the client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// classify marks connection-level failures with [ErrUnavailable].
func classify(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, backend.ErrClosed) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

var _ Cache = (*RedisCache)(nil)
