package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	redis_mock "github.com/muhammadchandra19/exchange/pkg/redis/mock"
	"github.com/stretchr/testify/assert"
)

func TestLease_Acquire(t *testing.T) {
	ctx := context.Background()
	const key = "exchange:lease:m1"
	ttl := 15 * time.Second

	testCases := []struct {
		name     string
		mockFn   func(client *redis_mock.MockClient)
		expected bool
		wantErr  bool
	}{
		{
			name: "free",
			mockFn: func(client *redis_mock.MockClient) {
				client.EXPECT().SetNX(ctx, key, "node-a", ttl).Return(true, nil)
			},
			expected: true,
		},
		{
			name: "held by another instance",
			mockFn: func(client *redis_mock.MockClient) {
				client.EXPECT().SetNX(ctx, key, "node-a", ttl).Return(false, nil)
				client.EXPECT().Get(ctx, key).Return("node-b", nil)
			},
			expected: false,
		},
		{
			name: "already ours",
			mockFn: func(client *redis_mock.MockClient) {
				client.EXPECT().SetNX(ctx, key, "node-a", ttl).Return(false, nil)
				client.EXPECT().Get(ctx, key).Return("node-a", nil)
				client.EXPECT().Eval(ctx, renewScript, []string{key}, "node-a", ttl.Milliseconds()).Return(int64(1), nil)
			},
			expected: true,
		},
		{
			name: "redis error",
			mockFn: func(client *redis_mock.MockClient) {
				client.EXPECT().SetNX(ctx, key, "node-a", ttl).Return(false, errors.New("timeout"))
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			client := redis_mock.NewMockClient(ctrl)
			client.EXPECT().Key("lease", "m1").Return(key).AnyTimes()
			tc.mockFn(client)

			ok, err := NewLease(client, "node-a", ttl, logger.NewNopLogger()).Acquire(ctx, "m1")
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, ok)
		})
	}
}

func TestLease_RenewAndRelease(t *testing.T) {
	ctx := context.Background()
	const key = "exchange:lease:m1"
	ttl := 10 * time.Second

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := redis_mock.NewMockClient(ctrl)
	client.EXPECT().Key("lease", "m1").Return(key).AnyTimes()
	gomock.InOrder(
		client.EXPECT().Eval(ctx, renewScript, []string{key}, "node-a", int64(10000)).Return(int64(1), nil),
		client.EXPECT().Eval(ctx, renewScript, []string{key}, "node-a", int64(10000)).Return(int64(0), nil),
		client.EXPECT().Eval(ctx, releaseScript, []string{key}, "node-a").Return(int64(0), nil),
	)

	lease := NewLease(client, "node-a", ttl, logger.NewNopLogger())

	ok, err := lease.Renew(ctx, "m1")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = lease.Renew(ctx, "m1")
	assert.NoError(t, err)
	assert.False(t, ok, "lease lost to expiry")

	assert.NoError(t, lease.Release(ctx, "m1"))
}
