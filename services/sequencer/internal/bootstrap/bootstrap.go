package bootstrap

import (
	"context"

	"github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	pkgpostgresql "github.com/muhammadchandra19/exchange/pkg/postgresql"
	pkgredis "github.com/muhammadchandra19/exchange/pkg/redis"
	"github.com/muhammadchandra19/exchange/services/sequencer/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Bootstrap holds the wired components of the sequencer processes.
type Bootstrap struct {
	Config     *config.Config
	Logger     logger.Interface
	Registry   *prometheus.Registry
	Repository Repository
	Sequencer  Sequencer
	Settlement Settlement
	Intake     Intake

	Postgres pkgpostgresql.PostgreSQLClient
	Redis    pkgredis.Client

	closers []func() error
}

// BootstrapConfig is the config for the bootstrap.
type BootstrapConfig struct {
	Config   *config.Config
	Logger   logger.Interface
	Postgres pkgpostgresql.PostgreSQLClient
	Redis    pkgredis.Client
}

// Init stores the shared clients and registers the repositories every
// process needs. Process specific parts are registered separately.
func (b *Bootstrap) Init(cfg BootstrapConfig) *Bootstrap {
	b.Config = cfg.Config
	b.Logger = cfg.Logger
	b.Postgres = cfg.Postgres
	b.Redis = cfg.Redis

	b.Registry = prometheus.NewRegistry()
	b.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	b.registerRepository()
	return b
}

// Connect opens the PostgreSQL and Redis clients described by cfg.
func Connect(ctx context.Context, cfg *config.Config, log logger.Interface) (pkgpostgresql.PostgreSQLClient, pkgredis.Client, error) {
	db, err := pkgpostgresql.NewClient(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, errors.NewTracer("connect postgres").Wrap(err)
	}

	redisCfg := cfg.Redis
	client := pkgredis.NewClient(log, &redisCfg)
	if err := client.Connect(ctx); err != nil {
		db.Close()
		return nil, nil, errors.NewTracer("connect redis").Wrap(err)
	}

	return db, client, nil
}

// NewLogger builds the process logger. Debug level also switches to the console encoder.
func NewLogger(app config.AppConfig) (*logger.Logger, error) {
	level := logger.ParseLevel(app.LogLevel)
	opts := []logger.Option{logger.WithLoggingLevel(level), logger.WithService(app.Name)}
	if level == logger.DebugLevel {
		opts = append(opts, logger.WithConsole())
	}
	return logger.NewLogger(opts...)
}

func (b *Bootstrap) onClose(fn func() error) {
	b.closers = append(b.closers, fn)
}

// Close releases everything registered, newest first, then the shared clients.
func (b *Bootstrap) Close(ctx context.Context) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			b.Logger.Error(err, logger.Field{Key: "action", Value: "close"})
		}
	}
	b.closers = nil

	if b.Redis != nil {
		if err := b.Redis.Disconnect(ctx); err != nil {
			b.Logger.Error(err, logger.Field{Key: "action", Value: "close_redis_client"})
		}
	}
	if b.Postgres != nil {
		b.Postgres.Close()
	}
}
