package config

import (
	"time"

	"github.com/muhammadchandra19/exchange/pkg/postgresql"
	"github.com/muhammadchandra19/exchange/pkg/redis"
)

// Config holds the configuration for the sequencer, intake and settlement processes.
type Config struct {
	AppConfig        `envPrefix:"APP_"`
	KafkaConfig      `envPrefix:"KAFKA_"`
	SequencerConfig  `envPrefix:"SEQUENCER_"`
	SettlementConfig `envPrefix:"SETTLEMENT_"`
	PebbleConfig     `envPrefix:"PEBBLE_"`

	Postgres postgresql.Config `envPrefix:"POSTGRES_"`
	Redis    redis.Config      `envPrefix:"REDIS_"`
}

// AppConfig holds process level settings.
type AppConfig struct {
	Name          string        `env:"NAME" envDefault:"clob-sequencer"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	Markets       []string      `env:"MARKETS,required"`
	MetricsAddr   string        `env:"METRICS_ADDR" envDefault:":9100"`
	IntakeAddr    string        `env:"INTAKE_ADDR" envDefault:":8080"`
	InstanceID    string        `env:"INSTANCE_ID"`
	ShutdownGrace time.Duration `env:"SHUTDOWN_GRACE" envDefault:"30s"`
}

// KafkaConfig holds the consensus log settings.
type KafkaConfig struct {
	Brokers     []string      `env:"BROKERS,required"`
	TopicPrefix string        `env:"TOPIC_PREFIX" envDefault:"clob.market."`
	PollTimeout time.Duration `env:"POLL_TIMEOUT" envDefault:"1s"`
	MinBytes    int           `env:"MIN_BYTES" envDefault:"1"`
	MaxBytes    int           `env:"MAX_BYTES" envDefault:"10485760"`
	ChunkSize   int           `env:"CHUNK_SIZE" envDefault:"1024"`
	RetryMax    time.Duration `env:"RETRY_MAX_ELAPSED" envDefault:"30s"`
}

// SequencerConfig holds the per-market loop settings.
type SequencerConfig struct {
	BatchMaxMessages   int64         `env:"BATCH_MAX_MESSAGES" envDefault:"100"`
	LeaseTTL           time.Duration `env:"LEASE_TTL" envDefault:"15s"`
	LeaseRenewInterval time.Duration `env:"LEASE_RENEW_INTERVAL" envDefault:"5s"`
	SnapshotDepth      int           `env:"SNAPSHOT_DEPTH" envDefault:"50"`
	MaxPriceTicks      int64         `env:"MAX_PRICE_TICKS" envDefault:"0"`
	SignatureSecret    string        `env:"SIGNATURE_SECRET"`
	PersistRetryMax    time.Duration `env:"PERSIST_RETRY_MAX_ELAPSED" envDefault:"1m"`
}

// SettlementConfig holds the settlement worker settings.
type SettlementConfig struct {
	Brokers         []string      `env:"BROKERS"`
	RequestTopic    string        `env:"REQUEST_TOPIC" envDefault:"clob.settlement.requests"`
	ConfirmationKey string        `env:"CONFIRMATION_KEY" envDefault:"settlement:confirmations"`
	MaxAttempts     int           `env:"MAX_ATTEMPTS" envDefault:"5"`
	BaseBackoff     time.Duration `env:"BASE_BACKOFF" envDefault:"1s"`
	MaxBackoff      time.Duration `env:"MAX_BACKOFF" envDefault:"1m"`
	PollInterval    time.Duration `env:"POLL_INTERVAL" envDefault:"2s"`
	BatchLimit      int           `env:"BATCH_LIMIT" envDefault:"100"`
}

// PebbleConfig holds the local outbox settings.
type PebbleConfig struct {
	Dir string `env:"DIR" envDefault:"./data/outbox"`
}

// SettlementBrokers falls back to the consensus brokers when none are set.
func (c *Config) SettlementBrokers() []string {
	if len(c.SettlementConfig.Brokers) > 0 {
		return c.SettlementConfig.Brokers
	}
	return c.KafkaConfig.Brokers
}
