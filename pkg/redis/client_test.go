package redis

import (
	"context"
	"testing"

	"github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func TestClient_ConnectValidation(t *testing.T) {
	testCases := []struct {
		name   string
		config func() *Config
	}{
		{name: "nil config", config: func() *Config { return nil }},
		{name: "no addresses", config: func() *Config {
			cfg := DefaultConfig()
			return cfg
		}},
		{name: "bad mode", config: func() *Config {
			cfg := DefaultConfig()
			cfg.Addrs = []string{"localhost:6379"}
			cfg.Mode = "sentinel"
			return cfg
		}},
		{name: "bad pool size", config: func() *Config {
			cfg := DefaultConfig()
			cfg.Addrs = []string{"localhost:6379"}
			cfg.PoolSize = 0
			return cfg
		}},
		{name: "negative retries", config: func() *Config {
			cfg := DefaultConfig()
			cfg.Addrs = []string{"localhost:6379"}
			cfg.MaxRetries = -1
			return cfg
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewClient(logger.NewNopLogger(), tc.config())
			err := c.Connect(context.Background())

			assert.Error(t, err)
			assert.True(t, errors.ErrorCodeEquals(err, string(errors.RedisConfigError)))
		})
	}
}

func TestClient_Key(t *testing.T) {
	cfg := DefaultConfig()
	c := NewClient(logger.NewNopLogger(), cfg)

	assert.Equal(t, "exchange:lease:m1", c.Key("lease", "m1"))
}
