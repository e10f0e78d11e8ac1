package bootstrap

import (
	"time"

	"github.com/IBM/sarama"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/muhammadchandra19/exchange/pkg/httplib/healthcheck"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	"github.com/muhammadchandra19/exchange/services/sequencer/internal/app/intake"
	"github.com/muhammadchandra19/exchange/services/sequencer/internal/app/sequencer"
	"github.com/muhammadchandra19/exchange/services/sequencer/internal/app/settlement"
	"github.com/muhammadchandra19/exchange/services/sequencer/internal/infrastructure/kafka"
	"github.com/muhammadchandra19/exchange/services/sequencer/internal/infrastructure/outbox"
	"github.com/muhammadchandra19/exchange/services/sequencer/internal/infrastructure/redis"
	settlementInfra "github.com/muhammadchandra19/exchange/services/sequencer/internal/infrastructure/settlement"
	"github.com/muhammadchandra19/exchange/services/sequencer/internal/usecase/validator"
)

const healthTimeout = 2 * time.Second

// Sequencer is the per-market loop supervisor.
type Sequencer struct {
	Manager *sequencer.Manager
	Owner   string
}

// Settlement is the batch delivery worker.
type Settlement struct {
	Worker *settlement.Worker
}

// Intake is the HTTP entry point.
type Intake struct {
	Router *gin.Engine
}

// RegisterSequencer wires one loop per configured market under a shared lease owner.
func (b *Bootstrap) RegisterSequencer() {
	cfg := b.Config

	owner := cfg.InstanceID
	if owner == "" {
		owner = uuid.NewString()
	}
	lease := redis.NewLease(b.Redis, owner, cfg.LeaseTTL, b.Logger)
	verifier := validator.NewVerifier(cfg.SignatureSecret)
	metrics := sequencer.NewMetrics(b.Registry)

	markets := make(map[string]sequencer.Runner, len(cfg.Markets))
	for _, id := range cfg.Markets {
		reader := kafka.NewConsensusReader(cfg.KafkaConfig, id, b.Logger)
		b.onClose(reader.Close)

		markets[id] = sequencer.NewMarket(sequencer.Options{
			MarketID:           id,
			BatchMaxMessages:   cfg.BatchMaxMessages,
			MaxPriceTicks:      cfg.MaxPriceTicks,
			SnapshotDepth:      cfg.SnapshotDepth,
			LeaseRenewInterval: cfg.LeaseRenewInterval,
			PersistRetryMax:    cfg.PersistRetryMax,
		}, reader, b.Repository.Store, lease, b.Repository.Books, verifier, metrics, b.Logger)
	}

	b.Sequencer.Owner = owner
	b.Sequencer.Manager = sequencer.NewManager(markets, b.Logger)
	b.Logger.Info("Sequencer registered",
		logger.Field{Key: "owner", Value: owner},
		logger.Field{Key: "markets", Value: cfg.Markets},
	)
}

// RegisterSettlement opens the local outbox and the settlement producer.
func (b *Bootstrap) RegisterSettlement() error {
	cfg := b.Config

	box, err := outbox.Open(cfg.PebbleConfig.Dir)
	if err != nil {
		return errors.NewTracer("open settlement outbox").Wrap(err)
	}
	b.onClose(box.Close)

	producer, err := sarama.NewSyncProducer(cfg.SettlementBrokers(), settlementInfra.NewProducerConfig())
	if err != nil {
		return errors.NewTracer("create settlement producer").Wrap(err)
	}
	b.onClose(producer.Close)

	settler := settlementInfra.NewSettler(producer, cfg.RequestTopic, b.Redis, cfg.ConfirmationKey, b.Logger)
	b.Settlement.Worker = settlement.NewWorker(b.Repository.Batches, settler, box, settlement.Options{
		MaxAttempts:  cfg.MaxAttempts,
		BaseBackoff:  cfg.BaseBackoff,
		MaxBackoff:   cfg.MaxBackoff,
		PollInterval: cfg.PollInterval,
		BatchLimit:   cfg.BatchLimit,
	}, b.Registry, b.Logger)
	return nil
}

// RegisterIntake wires the HTTP API onto the consensus publisher.
func (b *Bootstrap) RegisterIntake() error {
	cfg := b.Config

	publisher, err := kafka.NewConsensusPublisher(cfg.KafkaConfig, b.Logger)
	if err != nil {
		return errors.NewTracer("create consensus publisher").Wrap(err)
	}
	b.onClose(publisher.Close)

	checker := validator.NewValidator(validator.Rules{MaxPriceTicks: cfg.MaxPriceTicks}, validator.NewVerifier(cfg.SignatureSecret))
	handler := intake.NewHandler(publisher, b.Repository.Books, b.Repository.Positions, checker, cfg.Markets, b.Logger)

	b.Intake.Router = intake.NewRouter(handler, b.HealthCheck(), b.Logger)
	return nil
}

// HealthCheck reports on the shared PostgreSQL and Redis clients.
func (b *Bootstrap) HealthCheck() healthcheck.HealthCheck {
	return healthcheck.New(healthTimeout, map[string]healthcheck.Checker{
		"postgres": b.Postgres.Ping,
		"redis":    b.Redis.Ping,
	})
}
