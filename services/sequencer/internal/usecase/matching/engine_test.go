package matching

import (
	"fmt"
	"testing"
	"time"

	"github.com/muhammadchandra19/exchange/pkg/errors"
	matchingv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/matching/v1"
	orderv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/order/v1"
	"github.com/muhammadchandra19/exchange/services/sequencer/internal/usecase/orderbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var consensusTime = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

type testFixture struct {
	engine *Engine
	book   *orderbook.Orderbook
}

func setupTestFixture(t *testing.T, resting ...*orderv1.Order) *testFixture {
	book := orderbook.NewOrderbook("M")
	engine := NewEngine("M", book)
	require.NoError(t, engine.Restore(resting))
	return &testFixture{engine: engine, book: book}
}

func newOrder(id string, side orderv1.Side, qty, price, seq int64, tif orderv1.TimeInForce) *orderv1.Order {
	return &orderv1.Order{
		ID:              id,
		MarketID:        "M",
		Maker:           "acct-" + id,
		Side:            side,
		PriceTicks:      price,
		Qty:             qty,
		TimeInForce:     tif,
		Status:          orderv1.StatusPublished,
		ArrivalSequence: seq,
		LastSequence:    seq,
	}
}

func TestEngine_SellSweepsBestBidsFirst(t *testing.T) {
	f := setupTestFixture(t,
		newOrder("b100", orderv1.SideBuy, 10, 100, 1, orderv1.GTC),
		newOrder("b101", orderv1.SideBuy, 5, 101, 2, orderv1.GTC),
	)

	sell := newOrder("s1", orderv1.SideSell, 12, 99, 3, orderv1.GTC)
	res, err := f.engine.Place(sell, 3, consensusTime)
	require.NoError(t, err)

	require.Len(t, res.Trades, 2)
	assert.Equal(t, int64(101), res.Trades[0].PriceTicks)
	assert.Equal(t, int64(5), res.Trades[0].Qty)
	assert.Equal(t, "b101", res.Trades[0].BuyOrderID)
	assert.Equal(t, int64(100), res.Trades[1].PriceTicks)
	assert.Equal(t, int64(7), res.Trades[1].Qty)
	assert.Equal(t, "b100", res.Trades[1].BuyOrderID)
	assert.Equal(t, orderv1.SideSell, res.Trades[0].TakerSide)
	assert.Equal(t, "acct-s1", res.Trades[0].SellerAccountID)

	assert.Equal(t, orderv1.StatusFilled, sell.Status)

	rest, ok := f.book.Get("b100")
	require.True(t, ok)
	assert.Equal(t, int64(3), rest.Remaining())
	assert.Equal(t, orderv1.StatusPartialFill, rest.Status)
	_, ok = f.book.Get("b101")
	assert.False(t, ok)

	statuses := map[string]orderv1.Status{}
	for _, o := range res.Orders {
		statuses[o.ID] = o.Status
	}
	assert.Equal(t, map[string]orderv1.Status{
		"b101": orderv1.StatusFilled,
		"b100": orderv1.StatusPartialFill,
		"s1":   orderv1.StatusFilled,
	}, statuses)
	require.NoError(t, f.book.CheckInvariants())
}

func TestEngine_FOKWithoutLiquidityLeavesBookUntouched(t *testing.T) {
	f := setupTestFixture(t,
		newOrder("a1", orderv1.SideSell, 10, 50, 1, orderv1.GTC),
		newOrder("a2", orderv1.SideSell, 5, 50, 2, orderv1.GTC),
	)
	before := f.book.Levels(0)

	buy := newOrder("b1", orderv1.SideBuy, 20, 50, 3, orderv1.FOK)
	res, err := f.engine.Place(buy, 3, consensusTime)
	require.NoError(t, err)

	assert.Empty(t, res.Trades)
	assert.Equal(t, orderv1.StatusCancelled, buy.Status)
	assert.Equal(t, before, f.book.Levels(0))
	for _, id := range []string{"a1", "a2"} {
		o, ok := f.book.Get(id)
		require.True(t, ok)
		assert.Equal(t, int64(0), o.FilledQty)
	}
}

func TestEngine_FOKFillsWhenLiquiditySuffices(t *testing.T) {
	f := setupTestFixture(t,
		newOrder("a1", orderv1.SideSell, 10, 49, 1, orderv1.GTC),
		newOrder("a2", orderv1.SideSell, 10, 50, 2, orderv1.GTC),
	)

	buy := newOrder("b1", orderv1.SideBuy, 15, 50, 3, orderv1.FOK)
	res, err := f.engine.Place(buy, 3, consensusTime)
	require.NoError(t, err)

	assert.Len(t, res.Trades, 2)
	assert.Equal(t, int64(15), res.Volume())
	assert.Equal(t, orderv1.StatusFilled, buy.Status)
}

func TestEngine_TimeInForce(t *testing.T) {
	testCases := []struct {
		name       string
		tif        orderv1.TimeInForce
		wantStatus orderv1.Status
		wantRest   bool
	}{
		{name: "GTC rests remainder", tif: orderv1.GTC, wantStatus: orderv1.StatusPartialFill, wantRest: true},
		{name: "IOC cancels remainder", tif: orderv1.IOC, wantStatus: orderv1.StatusCancelled, wantRest: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := setupTestFixture(t, newOrder("a1", orderv1.SideSell, 4, 60, 1, orderv1.GTC))

			buy := newOrder("b1", orderv1.SideBuy, 10, 60, 2, tc.tif)
			res, err := f.engine.Place(buy, 2, consensusTime)
			require.NoError(t, err)

			require.Len(t, res.Trades, 1)
			assert.Equal(t, int64(4), buy.FilledQty)
			assert.Equal(t, tc.wantStatus, buy.Status)
			_, resting := f.book.Get("b1")
			assert.Equal(t, tc.wantRest, resting)
		})
	}
}

func TestEngine_NoCrossRestsAtPublished(t *testing.T) {
	f := setupTestFixture(t, newOrder("a1", orderv1.SideSell, 4, 61, 1, orderv1.GTC))

	buy := newOrder("b1", orderv1.SideBuy, 10, 60, 2, orderv1.GTC)
	res, err := f.engine.Place(buy, 2, consensusTime)
	require.NoError(t, err)

	assert.Empty(t, res.Trades)
	assert.Equal(t, orderv1.StatusPublished, buy.Status)
	assert.Equal(t, 2, f.book.Len())
}

func TestEngine_ExpiredIncoming(t *testing.T) {
	f := setupTestFixture(t, newOrder("a1", orderv1.SideSell, 4, 60, 1, orderv1.GTC))

	expiry := consensusTime.Add(-time.Second)
	buy := newOrder("b1", orderv1.SideBuy, 4, 60, 2, orderv1.GTC)
	buy.Expiry = &expiry

	res, err := f.engine.Place(buy, 2, consensusTime)
	require.NoError(t, err)

	assert.Empty(t, res.Trades)
	assert.Equal(t, orderv1.StatusExpired, buy.Status)
	assert.Equal(t, 1, f.book.Len())
}

func TestEngine_ExpiredMakerIsSkipped(t *testing.T) {
	expiry := consensusTime.Add(-time.Second)
	stale := newOrder("a1", orderv1.SideSell, 4, 59, 1, orderv1.GTC)
	stale.Expiry = &expiry

	f := setupTestFixture(t, stale, newOrder("a2", orderv1.SideSell, 4, 60, 2, orderv1.GTC))

	buy := newOrder("b1", orderv1.SideBuy, 4, 60, 3, orderv1.GTC)
	res, err := f.engine.Place(buy, 3, consensusTime)
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	assert.Equal(t, "a2", res.Trades[0].SellOrderID)
	assert.Equal(t, orderv1.StatusExpired, stale.Status)
	assert.Equal(t, 0, f.book.Len())
}

func TestEngine_DuplicateRestingOrder(t *testing.T) {
	f := setupTestFixture(t, newOrder("a1", orderv1.SideSell, 4, 60, 1, orderv1.GTC))

	_, err := f.engine.Place(newOrder("a1", orderv1.SideSell, 4, 60, 2, orderv1.GTC), 2, consensusTime)
	assert.True(t, errors.ErrorCodeEquals(err, string(errors.RejectDuplicateOrder)))
}

func TestEngine_Cancel(t *testing.T) {
	testCases := []struct {
		name     string
		cancel   *orderv1.Cancel
		wantErr  errors.ErrorCode
		touched  int
		wantRest bool
	}{
		{
			name:    "cancels resting order",
			cancel:  &orderv1.Cancel{OrderID: "a1", MarketID: "M", Maker: "acct-a1"},
			touched: 1,
		},
		{
			name:     "unknown order is a no-op",
			cancel:   &orderv1.Cancel{OrderID: "zz", MarketID: "M", Maker: "acct-a1"},
			wantRest: true,
		},
		{
			name:     "other maker is rejected",
			cancel:   &orderv1.Cancel{OrderID: "a1", MarketID: "M", Maker: "mallory"},
			wantErr:  errors.RejectUnauthorizedCancel,
			wantRest: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := setupTestFixture(t, newOrder("a1", orderv1.SideSell, 4, 60, 1, orderv1.GTC))

			res, err := f.engine.Cancel(tc.cancel, 2)
			if tc.wantErr != "" {
				assert.True(t, errors.ErrorCodeEquals(err, string(tc.wantErr)))
			} else {
				require.NoError(t, err)
				assert.Len(t, res.Orders, tc.touched)
			}
			_, resting := f.book.Get("a1")
			assert.Equal(t, tc.wantRest, resting)
		})
	}
}

func TestEngine_CancelTwiceIsNoop(t *testing.T) {
	f := setupTestFixture(t, newOrder("a1", orderv1.SideSell, 4, 60, 1, orderv1.GTC))
	c := &orderv1.Cancel{OrderID: "a1", MarketID: "M", Maker: "acct-a1"}

	_, err := f.engine.Cancel(c, 2)
	require.NoError(t, err)

	res, err := f.engine.Cancel(c, 3)
	require.NoError(t, err)
	assert.Empty(t, res.Orders)
}

func TestTradeID_Deterministic(t *testing.T) {
	a, err := TradeID("M", 7, 1, consensusTime)
	require.NoError(t, err)
	b, err := TradeID("M", 7, 1, consensusTime)
	require.NoError(t, err)
	c, err := TradeID("M", 7, 2, consensusTime)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 26)
}

type step struct {
	order  *orderv1.Order
	cancel *orderv1.Cancel
}

func drawSteps(t *rapid.T) []step {
	n := rapid.IntRange(1, 60).Draw(t, "steps")
	steps := make([]step, 0, n)
	for i := 0; i < n; i++ {
		seq := int64(i + 1)
		if i > 0 && rapid.IntRange(0, 4).Draw(t, fmt.Sprintf("kind-%d", i)) == 0 {
			target := rapid.IntRange(0, i-1).Draw(t, fmt.Sprintf("target-%d", i))
			id := fmt.Sprintf("o%d", target)
			steps = append(steps, step{cancel: &orderv1.Cancel{OrderID: id, MarketID: "M", Maker: "acct-" + id}})
			continue
		}
		side := orderv1.SideBuy
		if rapid.Bool().Draw(t, fmt.Sprintf("sell-%d", i)) {
			side = orderv1.SideSell
		}
		tif := rapid.SampledFrom([]orderv1.TimeInForce{orderv1.GTC, orderv1.GTC, orderv1.IOC, orderv1.FOK}).Draw(t, fmt.Sprintf("tif-%d", i))
		price := rapid.Int64Range(90, 110).Draw(t, fmt.Sprintf("price-%d", i))
		qty := rapid.Int64Range(1, 30).Draw(t, fmt.Sprintf("qty-%d", i))
		steps = append(steps, step{order: newOrder(fmt.Sprintf("o%d", i), side, qty, price, seq, tif)})
	}
	return steps
}

func replay(t *rapid.T, steps []step) ([]matchingv1.Trade, *orderbook.Orderbook) {
	book := orderbook.NewOrderbook("M")
	engine := NewEngine("M", book)
	var trades []matchingv1.Trade

	for i, s := range steps {
		seq := int64(i + 1)
		var (
			res *matchingv1.Result
			err error
		)
		if s.cancel != nil {
			res, err = engine.Cancel(s.cancel, seq)
		} else {
			o := s.order.Clone()
			res, err = engine.Place(o, seq, consensusTime)
			if err == nil {
				if o.FilledQty != res.Volume() {
					t.Fatalf("taker %s filled %d but trades sum to %d", o.ID, o.FilledQty, res.Volume())
				}
				if o.TimeInForce == orderv1.FOK && o.FilledQty != 0 && o.FilledQty != o.Qty {
					t.Fatalf("FOK %s partially filled", o.ID)
				}
			}
		}
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		for _, tr := range res.Trades {
			if tr.Qty <= 0 {
				t.Fatalf("non-positive trade %+v", tr)
			}
		}
		trades = append(trades, res.Trades...)
		if err := book.CheckInvariants(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	return trades, book
}

// Matching conserves quantity, never leaves a crossed book and is a pure
// function of the message sequence.
func TestEngine_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		steps := drawSteps(t)

		first, book := replay(t, steps)
		second, _ := replay(t, steps)

		if len(first) != len(second) {
			t.Fatalf("replay produced %d trades, first run %d", len(second), len(first))
		}
		for i := range first {
			if first[i] != second[i] {
				t.Fatalf("trade %d differs on replay: %+v vs %+v", i, first[i], second[i])
			}
			if i > 0 && !first[i-1].Before(&first[i]) {
				t.Fatalf("trades out of consensus order at %d", i)
			}
		}

		filled := map[string]int64{}
		for _, tr := range first {
			filled[tr.BuyOrderID] += tr.Qty
			filled[tr.SellOrderID] += tr.Qty
		}
		for _, o := range book.Orders() {
			if o.FilledQty != filled[o.ID] {
				t.Fatalf("resting %s filled %d, trades say %d", o.ID, o.FilledQty, filled[o.ID])
			}
			if o.FilledQty > o.Qty {
				t.Fatalf("resting %s overfilled", o.ID)
			}
		}
	})
}
