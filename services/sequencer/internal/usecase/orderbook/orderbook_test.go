package orderbook

import (
	"fmt"
	"testing"
	"time"

	"github.com/muhammadchandra19/exchange/pkg/errors"
	orderv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/order/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/orderbook/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func restingOrder(id string, side orderv1.Side, price, qty, seq int64) *orderv1.Order {
	return &orderv1.Order{
		ID:              id,
		MarketID:        "m1",
		Maker:           "maker-" + id,
		Side:            side,
		PriceTicks:      price,
		Qty:             qty,
		TimeInForce:     orderv1.GTC,
		Status:          orderv1.StatusPublished,
		ArrivalSequence: seq,
		LastSequence:    seq,
	}
}

func TestOrderbook_Insert(t *testing.T) {
	testCases := []struct {
		name     string
		order    *orderv1.Order
		existing []*orderv1.Order
		wantErr  bool
	}{
		{
			name:  "rests a bid",
			order: restingOrder("b1", orderv1.SideBuy, 40, 5, 1),
		},
		{
			name:    "rejects a zero price",
			order:   restingOrder("b1", orderv1.SideBuy, 0, 5, 1),
			wantErr: true,
		},
		{
			name: "rejects a filled order",
			order: func() *orderv1.Order {
				o := restingOrder("b1", orderv1.SideBuy, 40, 5, 1)
				o.FilledQty = 5
				return o
			}(),
			wantErr: true,
		},
		{
			name: "rejects a terminal status",
			order: func() *orderv1.Order {
				o := restingOrder("b1", orderv1.SideBuy, 40, 5, 1)
				o.Status = orderv1.StatusCancelled
				return o
			}(),
			wantErr: true,
		},
		{
			name:     "rejects a duplicate id",
			existing: []*orderv1.Order{restingOrder("b1", orderv1.SideBuy, 41, 2, 1)},
			order:    restingOrder("b1", orderv1.SideBuy, 40, 5, 2),
			wantErr:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ob := NewOrderbook("m1")
			for _, o := range tc.existing {
				require.NoError(t, ob.Insert(o))
			}

			err := ob.Insert(tc.order)
			if tc.wantErr {
				assert.True(t, errors.IsFatal(err))
				return
			}
			require.NoError(t, err)
			got, ok := ob.Get(tc.order.ID)
			assert.True(t, ok)
			assert.Same(t, tc.order, got)
		})
	}
}

func TestOrderbook_PriceTimePriority(t *testing.T) {
	ob := NewOrderbook("m1")

	require.NoError(t, ob.Insert(restingOrder("b1", orderv1.SideBuy, 40, 5, 1)))
	require.NoError(t, ob.Insert(restingOrder("b2", orderv1.SideBuy, 42, 5, 2)))
	require.NoError(t, ob.Insert(restingOrder("b3", orderv1.SideBuy, 42, 5, 3)))
	require.NoError(t, ob.Insert(restingOrder("a1", orderv1.SideSell, 50, 1, 4)))
	require.NoError(t, ob.Insert(restingOrder("a2", orderv1.SideSell, 45, 1, 5)))

	best, ok := ob.Best(orderv1.SideBuy)
	require.True(t, ok)
	assert.Equal(t, "b2", best.ID)

	best, ok = ob.Best(orderv1.SideSell)
	require.True(t, ok)
	assert.Equal(t, "a2", best.ID)

	var ids []string
	for _, o := range ob.Orders() {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []string{"b2", "b3", "b1", "a2", "a1"}, ids)

	assert.Equal(t, orderbookv1.Depth{
		Bids: []orderbookv1.Level{{PriceTicks: 42, Quantity: 10, OrderCount: 2}, {PriceTicks: 40, Quantity: 5, OrderCount: 1}},
		Asks: []orderbookv1.Level{{PriceTicks: 45, Quantity: 1, OrderCount: 1}, {PriceTicks: 50, Quantity: 1, OrderCount: 1}},
	}, ob.Levels(0))

	depth := ob.Levels(1)
	assert.Len(t, depth.Bids, 1)
	assert.Len(t, depth.Asks, 1)
}

func TestOrderbook_Fill(t *testing.T) {
	ob := NewOrderbook("m1")
	require.NoError(t, ob.Insert(restingOrder("a1", orderv1.SideSell, 45, 10, 1)))
	require.NoError(t, ob.Insert(restingOrder("a2", orderv1.SideSell, 45, 4, 2)))

	o, err := ob.Fill("a1", 6, 3)
	require.NoError(t, err)
	assert.Equal(t, orderv1.StatusPartialFill, o.Status)
	assert.Equal(t, []orderbookv1.Level{{PriceTicks: 45, Quantity: 8, OrderCount: 2}}, ob.Levels(0).Asks)

	o, err = ob.Fill("a1", 4, 4)
	require.NoError(t, err)
	assert.Equal(t, orderv1.StatusFilled, o.Status)
	_, ok := ob.Get("a1")
	assert.False(t, ok)
	assert.Equal(t, []orderbookv1.Level{{PriceTicks: 45, Quantity: 4, OrderCount: 1}}, ob.Levels(0).Asks)

	_, err = ob.Fill("a2", 5, 5)
	assert.True(t, errors.IsFatal(err))

	_, err = ob.Fill("missing", 1, 6)
	assert.True(t, errors.IsFatal(err))
	require.NoError(t, ob.CheckInvariants())
}

func TestOrderbook_Remove(t *testing.T) {
	ob := NewOrderbook("m1")
	require.NoError(t, ob.Insert(restingOrder("b1", orderv1.SideBuy, 40, 5, 1)))

	o, err := ob.Remove("b1")
	require.NoError(t, err)
	assert.Equal(t, "b1", o.ID)
	assert.Equal(t, 0, ob.Len())
	assert.Empty(t, ob.Levels(0).Bids)

	_, err = ob.Remove("b1")
	assert.True(t, errors.ErrorCodeEquals(err, string(errors.GeneralNotFoundError)))
}

func TestOrderbook_Walk(t *testing.T) {
	ob := NewOrderbook("m1")
	require.NoError(t, ob.Insert(restingOrder("a1", orderv1.SideSell, 47, 1, 1)))
	require.NoError(t, ob.Insert(restingOrder("a2", orderv1.SideSell, 45, 1, 2)))
	require.NoError(t, ob.Insert(restingOrder("a3", orderv1.SideSell, 46, 1, 3)))

	var seen []string
	ob.Walk(orderv1.SideSell, func(o *orderv1.Order) bool {
		seen = append(seen, o.ID)
		return len(seen) < 2
	})
	assert.Equal(t, []string{"a2", "a3"}, seen)
}

func TestOrderbook_LiveLevels(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	expired := at.Add(-time.Second)
	later := at.Add(time.Hour)

	ob := NewOrderbook("m1")
	stale := restingOrder("a1", orderv1.SideSell, 45, 4, 1)
	stale.Expiry = &expired
	live := restingOrder("a2", orderv1.SideSell, 45, 2, 2)
	live.Expiry = &later
	staleTop := restingOrder("b1", orderv1.SideBuy, 44, 7, 3)
	staleTop.Expiry = &expired
	for _, o := range []*orderv1.Order{
		stale, live, staleTop,
		restingOrder("a3", orderv1.SideSell, 46, 1, 4),
		restingOrder("a4", orderv1.SideSell, 47, 1, 5),
		restingOrder("b2", orderv1.SideBuy, 40, 3, 6),
	} {
		require.NoError(t, ob.Insert(o))
	}

	assert.Equal(t, orderbookv1.Depth{
		Bids: []orderbookv1.Level{{PriceTicks: 40, Quantity: 3, OrderCount: 1}},
		Asks: []orderbookv1.Level{{PriceTicks: 45, Quantity: 2, OrderCount: 1}, {PriceTicks: 46, Quantity: 1, OrderCount: 1}},
	}, ob.LiveLevels(2, at))

	// before expiry both views agree
	assert.Equal(t, ob.Levels(0), ob.LiveLevels(0, expired.Add(-time.Second)))
	// the book itself keeps expired orders until a taker reaches them
	assert.Equal(t, 6, ob.Len())
}

func TestOrderbook_CheckInvariants_Crossed(t *testing.T) {
	ob := NewOrderbook("m1")
	require.NoError(t, ob.Insert(restingOrder("b1", orderv1.SideBuy, 45, 1, 1)))
	require.NoError(t, ob.Insert(restingOrder("a1", orderv1.SideSell, 45, 1, 2)))

	assert.True(t, errors.IsFatal(ob.CheckInvariants()))
}

// Random insert, fill and remove sequences keep every level equal to the sum
// of its orders and keep each side sorted by priority.
func TestOrderbook_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ob := NewOrderbook("m1")
		steps := rapid.IntRange(1, 200).Draw(t, "steps")

		for i := 0; i < steps; i++ {
			seq := int64(i + 1)
			switch rapid.IntRange(0, 2).Draw(t, fmt.Sprintf("op-%d", i)) {
			case 0:
				// bids below 50, asks from 50, so the book never crosses
				side := orderv1.SideBuy
				price := rapid.Int64Range(1, 49).Draw(t, fmt.Sprintf("price-%d", i))
				if rapid.Bool().Draw(t, fmt.Sprintf("ask-%d", i)) {
					side = orderv1.SideSell
					price += 49
				}
				qty := rapid.Int64Range(1, 100).Draw(t, fmt.Sprintf("qty-%d", i))
				if err := ob.Insert(restingOrder(fmt.Sprintf("o%d", i), side, price, qty, seq)); err != nil {
					t.Fatalf("insert: %v", err)
				}
			case 1:
				orders := ob.Orders()
				if len(orders) == 0 {
					continue
				}
				o := orders[rapid.IntRange(0, len(orders)-1).Draw(t, fmt.Sprintf("fill-%d", i))]
				qty := rapid.Int64Range(1, o.Remaining()).Draw(t, fmt.Sprintf("fillQty-%d", i))
				if _, err := ob.Fill(o.ID, qty, seq); err != nil {
					t.Fatalf("fill: %v", err)
				}
			case 2:
				orders := ob.Orders()
				if len(orders) == 0 {
					continue
				}
				o := orders[rapid.IntRange(0, len(orders)-1).Draw(t, fmt.Sprintf("remove-%d", i))]
				if _, err := ob.Remove(o.ID); err != nil {
					t.Fatalf("remove: %v", err)
				}
			}

			if err := ob.CheckInvariants(); err != nil {
				t.Fatalf("step %d: %v", i, err)
			}
		}

		for _, s := range []orderv1.Side{orderv1.SideBuy, orderv1.SideSell} {
			var prev *orderv1.Order
			ob.Walk(s, func(o *orderv1.Order) bool {
				if prev != nil {
					worse := o.PriceTicks < prev.PriceTicks
					if s == orderv1.SideSell {
						worse = o.PriceTicks > prev.PriceTicks
					}
					if !worse && (o.PriceTicks != prev.PriceTicks || o.ArrivalSequence < prev.ArrivalSequence) {
						t.Fatalf("%s out of priority: %s after %s", s, o, prev)
					}
				}
				prev = o
				return true
			})
		}
	})
}
