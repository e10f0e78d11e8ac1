package orderv1

import (
	"testing"
	"time"

	"github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_CanTransition(t *testing.T) {
	testCases := []struct {
		from     Status
		to       Status
		expected bool
	}{
		{from: StatusPending, to: StatusPublished, expected: true},
		{from: StatusPublished, to: StatusPartialFill, expected: true},
		{from: StatusPartialFill, to: StatusPartialFill, expected: true},
		{from: StatusPartialFill, to: StatusFilled, expected: true},
		{from: StatusPartialFill, to: StatusPublished, expected: false},
		{from: StatusFilled, to: StatusCancelled, expected: false},
		{from: StatusCancelled, to: StatusPublished, expected: false},
		{from: StatusRejected, to: StatusPublished, expected: false},
	}

	for _, tc := range testCases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.from.CanTransition(tc.to))
		})
	}
}

func TestOrder_Fill(t *testing.T) {
	o := &Order{ID: "o1", MarketID: "m1", Qty: 10, Status: StatusPublished}

	require.NoError(t, o.Fill(4, 2))
	assert.Equal(t, StatusPartialFill, o.Status)
	assert.Equal(t, int64(6), o.Remaining())

	require.NoError(t, o.Fill(6, 3))
	assert.Equal(t, StatusFilled, o.Status)
	assert.Equal(t, int64(3), o.LastSequence)

	err := o.Fill(1, 4)
	assert.True(t, errors.IsFatal(err))
}

func TestOrder_ExpiredAt(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	future := now.Add(time.Second)

	assert.False(t, (&Order{}).ExpiredAt(now))
	assert.True(t, (&Order{Expiry: &past}).ExpiredAt(now))
	assert.True(t, (&Order{Expiry: &now}).ExpiredAt(now))
	assert.False(t, (&Order{Expiry: &future}).ExpiredAt(now))
}

func TestOrder_Clone(t *testing.T) {
	expiry := time.Now()
	o := &Order{ID: "o1", Expiry: &expiry, Qty: 5}

	c := o.Clone()
	c.FilledQty = 3
	*c.Expiry = expiry.Add(time.Hour)

	assert.Equal(t, int64(0), o.FilledQty)
	assert.Equal(t, expiry, *o.Expiry)
}

func TestIntent_ToOrder(t *testing.T) {
	intent := &Intent{OrderID: "o1", MarketID: "m1", Maker: "alice", Side: SideBuy, PriceTicks: 40, Qty: 3, TimeInForce: GTC, Nonce: 7}

	o := intent.ToOrder(12)

	assert.Equal(t, StatusPublished, o.Status)
	assert.Equal(t, int64(12), o.ArrivalSequence)
	assert.Equal(t, int64(12), o.LastSequence)
	assert.Equal(t, SideSell, o.Side.Opposite())
}
