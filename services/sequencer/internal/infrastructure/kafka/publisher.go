package kafka

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	consensusv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/consensus/v1"
	"github.com/muhammadchandra19/exchange/services/sequencer/pkg/config"
	"github.com/oklog/ulid/v2"
)

// ConsensusPublisher submits payloads to market topics, splitting large ones
// into chunk envelopes.
type ConsensusPublisher struct {
	producer  sarama.SyncProducer
	prefix    string
	chunkSize int
	logger    logger.Interface
}

// NewProducerConfig returns the sarama settings used for consensus submission.
func NewProducerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_8_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Return.Successes = true
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Idempotent = true
	cfg.Producer.Partitioner = sarama.NewManualPartitioner
	cfg.Net.MaxOpenRequests = 1
	return cfg
}

// NewConsensusPublisher connects a sync producer to the consensus brokers.
func NewConsensusPublisher(cfg config.KafkaConfig, log logger.Interface) (*ConsensusPublisher, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, NewProducerConfig())
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	return NewConsensusPublisherWithProducer(producer, cfg.TopicPrefix, cfg.ChunkSize, log), nil
}

// NewConsensusPublisherWithProducer wraps an existing producer.
func NewConsensusPublisherWithProducer(producer sarama.SyncProducer, prefix string, chunkSize int, log logger.Interface) *ConsensusPublisher {
	return &ConsensusPublisher{producer: producer, prefix: prefix, chunkSize: chunkSize, logger: log}
}

// Publish writes every chunk of payload to partition 0 of its market topic and
// returns the sequence of the final chunk, which is the message's sequence.
func (p *ConsensusPublisher) Publish(ctx context.Context, payload *consensusv1.Payload) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return 0, errors.TracerFromError(err)
	}

	messages, err := Encode(p.prefix, payload.MarketID, ulid.Make().String(), data, p.chunkSize)
	if err != nil {
		return 0, err
	}

	producerMessages := make([]*sarama.ProducerMessage, len(messages))
	for i, m := range messages {
		producerMessages[i] = &sarama.ProducerMessage{
			Topic:     m.Topic,
			Partition: 0,
			Key:       sarama.StringEncoder(m.Key),
			Value:     sarama.ByteEncoder(m.Value),
		}
	}

	if err := p.producer.SendMessages(producerMessages); err != nil {
		p.logger.ErrorContext(ctx, err,
			logger.Field{Key: "action", Value: "publish"},
			logger.Field{Key: "market_id", Value: payload.MarketID},
			logger.Field{Key: "type", Value: payload.Type},
		)
		return 0, errors.TracerFromError(err)
	}

	var last int64
	for _, m := range producerMessages {
		if m.Offset > last {
			last = m.Offset
		}
	}
	return last + 1, nil
}

// Close flushes and closes the producer.
func (p *ConsensusPublisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return errors.TracerFromError(err)
	}
	return nil
}

// Record is one encoded envelope ready for a log writer.
type Record struct {
	Topic string
	Key   string
	Value []byte
}

// Encode splits data into envelope records for marketID's topic.
func Encode(prefix, marketID, messageID string, data []byte, chunkSize int) ([]Record, error) {
	envelopes := consensusv1.Split(messageID, data, chunkSize)
	records := make([]Record, len(envelopes))
	for i, env := range envelopes {
		value, err := json.Marshal(env)
		if err != nil {
			return nil, errors.TracerFromError(err)
		}
		records[i] = Record{Topic: consensusv1.Topic(prefix, marketID), Key: marketID, Value: value}
	}
	return records, nil
}
