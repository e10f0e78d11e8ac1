package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/golang/mock/gomock"
	pkgerrors "github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	redis_mock "github.com/muhammadchandra19/exchange/pkg/redis/mock"
	matchingv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/matching/v1"
	settlementv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/settlement/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettler_Submit(t *testing.T) {
	ctx := context.Background()
	producer := mocks.NewSyncProducer(t, NewProducerConfig())
	defer func() { _ = producer.Close() }()

	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
		var req settlementv1.Request
		if err := json.Unmarshal(value, &req); err != nil {
			return err
		}
		if req.Batch.ID != 7 || len(req.Trades) != 1 {
			return errors.New("unexpected request")
		}
		return nil
	})

	s := NewSettler(producer, "clob.settlement.requests", nil, "settlement:confirmations", logger.NewNopLogger())
	ref, err := s.Submit(ctx, &settlementv1.Request{
		Batch:  &settlementv1.Batch{ID: 7, MarketID: "m1", Status: settlementv1.StatusClosed},
		Trades: []matchingv1.Trade{{ID: "t1", MarketID: "m1", BatchID: 7}},
	})

	require.NoError(t, err)
	assert.Equal(t, "m1:7", ref)
}

func TestSettler_SubmitFails(t *testing.T) {
	producer := mocks.NewSyncProducer(t, NewProducerConfig())
	defer func() { _ = producer.Close() }()
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	s := NewSettler(producer, "clob.settlement.requests", nil, "settlement:confirmations", logger.NewNopLogger())
	_, err := s.Submit(context.Background(), &settlementv1.Request{Batch: &settlementv1.Batch{ID: 1, MarketID: "m1"}})

	assert.True(t, pkgerrors.ErrorCodeEquals(err, string(pkgerrors.SettlementFailure)))
}

func TestSettler_Poll(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name     string
		outcome  string
		err      error
		expected settlementv1.Status
		wantErr  bool
	}{
		{name: "confirmed", outcome: OutcomeConfirmed, expected: settlementv1.StatusConfirmed},
		{name: "failed", outcome: OutcomeFailed, expected: settlementv1.StatusFailed},
		{name: "unknown yet", outcome: "", expected: settlementv1.StatusSubmitted},
		{name: "unrecognised", outcome: "maybe", expected: settlementv1.StatusSubmitted},
		{name: "redis error", err: errors.New("timeout"), wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			client := redis_mock.NewMockClient(ctrl)
			client.EXPECT().Key("settlement:confirmations").Return("exchange:settlement:confirmations")
			client.EXPECT().HGet(ctx, "exchange:settlement:confirmations", "m1:7").Return(tc.outcome, tc.err)

			s := NewSettler(nil, "clob.settlement.requests", client, "settlement:confirmations", logger.NewNopLogger())
			status, err := s.Poll(ctx, "m1:7")
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, status)
		})
	}
}
