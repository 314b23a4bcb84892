package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hngo-dev/meshmart-backend/pkg/config"
)

const keyNamespace = "mm"

var errNotInitialized = errors.New("redis client not initialized")

// Client wraps the redis connection for the three concerns the platform
// needs it for: idempotency replay storage, cron run locks and fixed-window
// auth rate limiting.
type Client struct {
	raw *redis.Client
}

// IdempotencyStore is the surface the idempotency middleware consumes.
type IdempotencyStore interface {
	Get(context.Context, string) (string, error)
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
}

// New connects and verifies connectivity before returning.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	opts, err := buildOptions(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Client{raw: raw}, nil
}

func buildOptions(cfg config.RedisConfig) (*redis.Options, error) {
	var opts *redis.Options
	switch {
	case cfg.URL != "":
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	case cfg.Address != "":
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	default:
		return nil, errors.New("redis url or address is required")
	}

	// Config values only fill in what the URL did not already set.
	if opts.PoolSize == 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if opts.MinIdleConns == 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

// Get returns the value at key, or redis.Nil when absent.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	if c.raw == nil {
		return "", errNotInitialized
	}
	return c.raw.Get(ctx, key).Result()
}

// Set writes a value with the provided TTL.
func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c.raw == nil {
		return errNotInitialized
	}
	return c.raw.Set(ctx, key, value, ttl).Err()
}

// SetNX sets a value only if the key does not exist yet.
func (c *Client) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if c.raw == nil {
		return false, errNotInitialized
	}
	return c.raw.SetNX(ctx, key, value, ttl).Result()
}

// IncrWithTTL increments a counter, starting its expiry window on the first
// increment. Backs the fixed-window rate limiter.
func (c *Client) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if c.raw == nil {
		return 0, errNotInitialized
	}
	count, err := c.raw.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 && ttl > 0 {
		if err := c.raw.Expire(ctx, key, ttl).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

// Del removes the provided keys.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	if c.raw == nil {
		return errNotInitialized
	}
	return c.raw.Del(ctx, keys...).Err()
}

// Ping verifies the connection, used by the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	if c.raw == nil {
		return errNotInitialized
	}
	return c.raw.Ping(ctx).Err()
}

func (c *Client) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

// IdempotencyKey namespaces an idempotency record key.
func (c *Client) IdempotencyKey(scope, id string) string {
	parts := []string{keyNamespace, "idempotency"}
	if scope = strings.TrimSpace(scope); scope != "" {
		parts = append(parts, scope)
	}
	if id = strings.TrimSpace(id); id != "" {
		parts = append(parts, id)
	}
	return strings.Join(parts, ":")
}
