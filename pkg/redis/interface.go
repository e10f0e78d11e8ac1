package redis

import (
	"context"
	"time"
)

// Client defines the interface for a Redis client.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=redis_mock
type Client interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Ping(ctx context.Context) error

	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) (bool, error)

	HGet(ctx context.Context, key, field string) (string, error)

	// Eval runs a Lua script atomically and returns its integer result.
	Eval(ctx context.Context, script string, keys []string, args ...any) (int64, error)

	// Key prefixes key with the configured namespace.
	Key(parts ...string) string
}
