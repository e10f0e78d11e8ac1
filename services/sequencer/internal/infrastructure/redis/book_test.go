package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	redis_mock "github.com/muhammadchandra19/exchange/pkg/redis/mock"
	orderbookv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/orderbook/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookCache_PublishLoad(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := redis_mock.NewMockClient(ctrl)
	client.EXPECT().Key("book", "m1").Return("exchange:book:m1").AnyTimes()

	snap := &orderbookv1.Snapshot{
		MarketID:  "m1",
		Sequence:  9,
		Bids:      []orderbookv1.Level{{PriceTicks: 50, Quantity: 10, OrderCount: 2}},
		UpdatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	var stored []byte
	client.EXPECT().Set(ctx, "exchange:book:m1", gomock.Any(), time.Duration(0)).
		DoAndReturn(func(_ context.Context, _ string, value any, _ time.Duration) error {
			stored = value.([]byte)
			return nil
		})
	client.EXPECT().Get(ctx, "exchange:book:m1").DoAndReturn(func(context.Context, string) (string, error) {
		return string(stored), nil
	})

	cache := NewBookCache(client, logger.NewNopLogger())
	require.NoError(t, cache.Publish(ctx, snap))

	loaded, err := cache.Load(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, snap, loaded)
	assert.Equal(t, int64(50), loaded.BestBid())
	assert.Equal(t, int64(0), loaded.BestAsk())
}

func TestBookCache_Load(t *testing.T) {
	ctx := context.Background()
	valid, _ := json.Marshal(&orderbookv1.Snapshot{MarketID: "m1", Sequence: 3})

	testCases := []struct {
		name     string
		data     string
		err      error
		assertFn func(t *testing.T, snap *orderbookv1.Snapshot, err error)
	}{
		{
			name: "found",
			data: string(valid),
			assertFn: func(t *testing.T, snap *orderbookv1.Snapshot, err error) {
				require.NoError(t, err)
				assert.Equal(t, int64(3), snap.Sequence)
			},
		},
		{
			name: "missing",
			assertFn: func(t *testing.T, snap *orderbookv1.Snapshot, err error) {
				assert.NoError(t, err)
				assert.Nil(t, snap)
			},
		},
		{
			name: "corrupt",
			data: "{",
			assertFn: func(t *testing.T, snap *orderbookv1.Snapshot, err error) {
				assert.Error(t, err)
			},
		},
		{
			name: "redis down",
			err:  errors.New("connection refused"),
			assertFn: func(t *testing.T, snap *orderbookv1.Snapshot, err error) {
				assert.Error(t, err)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			client := redis_mock.NewMockClient(ctrl)
			client.EXPECT().Key("book", "m1").Return("exchange:book:m1")
			client.EXPECT().Get(ctx, "exchange:book:m1").Return(tc.data, tc.err)

			snap, err := NewBookCache(client, logger.NewNopLogger()).Load(ctx, "m1")
			tc.assertFn(t, snap, err)
		})
	}
}
