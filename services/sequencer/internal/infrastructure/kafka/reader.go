package kafka

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	consensusv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/consensus/v1"
	"github.com/muhammadchandra19/exchange/services/sequencer/internal/usecase/reassembly"
	"github.com/muhammadchandra19/exchange/services/sequencer/pkg/config"
	goerrors "github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

// fetcher is the subset of *kafka.Reader the consensus reader drives.
type fetcher interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	SetOffset(offset int64) error
	Close() error
}

// ConsensusReader reads one market topic as a consensus log. Record offset o
// carries sequence o+1, and the record time is the consensus timestamp.
type ConsensusReader struct {
	marketID    string
	topic       string
	fetcher     fetcher
	reassembler *reassembly.Reassembler
	expected    int64
	pollTimeout time.Duration
	retryMax    time.Duration
	logger      logger.Interface
}

// NewConsensusReader creates a partition reader for marketID's topic.
func NewConsensusReader(cfg config.KafkaConfig, marketID string, log logger.Interface) *ConsensusReader {
	topic := consensusv1.Topic(cfg.TopicPrefix, marketID)
	kafkaReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       topic,
		Partition:   0,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		MaxWait:     cfg.PollTimeout,
		StartOffset: kafka.FirstOffset,
	})

	return newConsensusReader(kafkaReader, marketID, topic, cfg.PollTimeout, cfg.RetryMax, log)
}

func newConsensusReader(f fetcher, marketID, topic string, pollTimeout, retryMax time.Duration, log logger.Interface) *ConsensusReader {
	return &ConsensusReader{
		marketID:    marketID,
		topic:       topic,
		fetcher:     f,
		reassembler: reassembly.NewReassembler(),
		expected:    1,
		pollTimeout: pollTimeout,
		retryMax:    retryMax,
		logger:      log,
	}
}

// Seek positions the reader at fromSequence and forgets partial chunk sets.
func (r *ConsensusReader) Seek(ctx context.Context, fromSequence int64) error {
	if fromSequence < 1 {
		fromSequence = 1
	}
	if err := r.fetcher.SetOffset(fromSequence - 1); err != nil {
		r.logger.ErrorContext(ctx, err, logger.Field{Key: "action", Value: "seek"}, logger.Field{Key: "from", Value: fromSequence})
		return errors.TracerFromError(err)
	}
	r.expected = fromSequence
	r.reassembler.Reset()
	return nil
}

// Next returns the next complete logical message. It returns
// consensusv1.ErrNoMessage when nothing arrives within the poll timeout and a
// sequence gap error when the log skips a number.
func (r *ConsensusReader) Next(ctx context.Context) (*consensusv1.Message, error) {
	for {
		record, err := r.read(ctx)
		if err != nil {
			return nil, err
		}

		seq := record.Offset + 1
		if seq < r.expected {
			continue
		}
		if seq > r.expected {
			return nil, errors.NewSequenceGap(r.marketID, r.expected, seq)
		}
		r.expected++

		if msg := r.decode(ctx, seq, record); msg != nil {
			return msg, nil
		}
	}
}

// PendingFrom returns the lowest raw sequence of an incomplete chunk set, or 0.
func (r *ConsensusReader) PendingFrom() int64 {
	return r.reassembler.PendingFrom()
}

// Close closes the underlying kafka reader.
func (r *ConsensusReader) Close() error {
	if err := r.fetcher.Close(); err != nil {
		return errors.TracerFromError(err)
	}
	return nil
}

func (r *ConsensusReader) read(ctx context.Context) (kafka.Message, error) {
	var record kafka.Message

	op := func() error {
		readCtx, cancel := context.WithTimeout(ctx, r.pollTimeout)
		defer cancel()

		m, err := r.fetcher.ReadMessage(readCtx)
		switch {
		case err == nil:
			record = m
			return nil
		case ctx.Err() != nil:
			return backoff.Permanent(ctx.Err())
		case goerrors.Is(err, context.DeadlineExceeded):
			return backoff.Permanent(consensusv1.ErrNoMessage)
		case goerrors.Is(err, io.EOF):
			return backoff.Permanent(err)
		}

		r.logger.WarnContext(ctx, "consensus read failed, retrying",
			logger.Field{Key: "topic", Value: r.topic},
			logger.Field{Key: "error", Value: err.Error()},
		)
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = r.retryMax

	err := backoff.Retry(op, backoff.WithContext(b, ctx))
	switch {
	case err == nil:
		return record, nil
	case goerrors.Is(err, consensusv1.ErrNoMessage), ctx.Err() != nil:
		return kafka.Message{}, err
	}
	return kafka.Message{}, errors.NewErrorDetailsWithObject(err.Error(), string(errors.TransientReadFailure), r.topic, r.expected)
}

// decode turns a record into a message. It returns nil while a chunk set is
// still incomplete, and a discarded message when the records cannot be used.
func (r *ConsensusReader) decode(ctx context.Context, seq int64, record kafka.Message) *consensusv1.Message {
	msg := &consensusv1.Message{
		TopicID:            r.topic,
		Sequence:           seq,
		ConsensusTimestamp: record.Time.UTC(),
	}

	var env consensusv1.Envelope
	if err := json.Unmarshal(record.Value, &env); err != nil {
		return r.discard(ctx, msg, err)
	}
	msg.MessageID = env.MessageID

	payload, complete, err := r.reassembler.Add(seq, env)
	if err != nil {
		return r.discard(ctx, msg, err)
	}
	if !complete {
		return nil
	}

	p, err := consensusv1.DecodePayload(payload)
	if err != nil {
		return r.discard(ctx, msg, err)
	}
	if p.MarketID != r.marketID {
		return r.discard(ctx, msg, errors.NewErrorDetails("payload for market "+p.MarketID, string(errors.MalformedMessage), "marketId"))
	}

	msg.Payload = p
	return msg
}

func (r *ConsensusReader) discard(ctx context.Context, msg *consensusv1.Message, err error) *consensusv1.Message {
	r.logger.WarnContext(ctx, "discarding undecodable consensus record",
		logger.Field{Key: "topic", Value: r.topic},
		logger.Field{Key: "sequence", Value: msg.Sequence},
		logger.Field{Key: "message_id", Value: msg.MessageID},
		logger.Field{Key: "error", Value: err.Error()},
	)
	msg.Discarded = err.Error()
	return msg
}
