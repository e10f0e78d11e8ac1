package config

import (
	"testing"
	"time"

	pkgconfig "github.com/muhammadchandra19/exchange/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Load(t *testing.T) {
	t.Setenv("APP_MARKETS", "m1,m2")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SEQUENCER_BATCH_MAX_MESSAGES", "25")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("REDIS_ADDRS", "cache:6379")

	cfg := &Config{}
	require.NoError(t, pkgconfig.Load(cfg))

	assert.Equal(t, []string{"m1", "m2"}, cfg.Markets)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaConfig.Brokers)
	assert.Equal(t, "clob.market.", cfg.TopicPrefix)
	assert.Equal(t, time.Second, cfg.PollTimeout)
	assert.Equal(t, int64(25), cfg.BatchMaxMessages)
	assert.Equal(t, "db", cfg.Postgres.Host)
	assert.Equal(t, []string{"cache:6379"}, cfg.Redis.Addrs)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, cfg.KafkaConfig.Brokers, cfg.SettlementBrokers())
}

func TestConfig_Load_MissingMarkets(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092")

	cfg := &Config{}
	assert.Error(t, pkgconfig.Load(cfg))
}
