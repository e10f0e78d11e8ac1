package settlement

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	"github.com/muhammadchandra19/exchange/pkg/redis"
	settlementv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/settlement/v1"
)

// Outcomes written by the settlement collaborator into the confirmation hash.
const (
	OutcomeConfirmed = "confirmed"
	OutcomeFailed    = "failed"
)

// Settler hands batches to the settlement collaborator over a Kafka topic and
// reads outcomes from a Redis hash keyed by settlement reference.
type Settler struct {
	producer        sarama.SyncProducer
	topic           string
	redis           redis.Client
	confirmationKey string
	logger          logger.Interface
}

var _ settlementv1.Settler = (*Settler)(nil)

// NewProducerConfig returns the sarama settings used for settlement requests.
func NewProducerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_8_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Return.Successes = true
	cfg.Producer.Retry.Max = 5
	return cfg
}

// NewSettler creates a new Settler.
func NewSettler(producer sarama.SyncProducer, topic string, client redis.Client, confirmationKey string, logger logger.Interface) *Settler {
	return &Settler{
		producer:        producer,
		topic:           topic,
		redis:           client,
		confirmationKey: confirmationKey,
		logger:          logger,
	}
}

// Submit publishes the batch with its trades. The reference is the batch key,
// so a resubmission after a crash is recognisable downstream.
func (s *Settler) Submit(ctx context.Context, req *settlementv1.Request) (string, error) {
	ref := req.Batch.Key()

	value, err := json.Marshal(req)
	if err != nil {
		return "", errors.TracerFromError(err)
	}

	partition, offset, err := s.producer.SendMessage(&sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(ref),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, err,
			logger.Field{Key: "action", Value: "submit batch"},
			logger.Field{Key: "reference", Value: ref},
		)
		return "", errors.NewErrorDetails(err.Error(), string(errors.SettlementFailure), ref)
	}

	s.logger.InfoContext(ctx, "Batch submitted",
		logger.Field{Key: "reference", Value: ref},
		logger.Field{Key: "trades", Value: len(req.Trades)},
		logger.Field{Key: "partition", Value: partition},
		logger.Field{Key: "offset", Value: offset},
	)
	return ref, nil
}

// Poll maps the recorded outcome of reference onto a batch status.
func (s *Settler) Poll(ctx context.Context, reference string) (settlementv1.Status, error) {
	outcome, err := s.redis.HGet(ctx, s.redis.Key(s.confirmationKey), reference)
	if err != nil {
		return "", errors.TracerFromError(err)
	}

	switch outcome {
	case OutcomeConfirmed:
		return settlementv1.StatusConfirmed, nil
	case OutcomeFailed:
		return settlementv1.StatusFailed, nil
	case "":
		return settlementv1.StatusSubmitted, nil
	default:
		s.logger.WarnContext(ctx, "Unknown settlement outcome",
			logger.Field{Key: "reference", Value: reference},
			logger.Field{Key: "outcome", Value: outcome},
		)
		return settlementv1.StatusSubmitted, nil
	}
}
