package orderbookv1

import (
	"context"
	"time"

	orderv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/order/v1"
)

// Level is the aggregate of all resting orders at one price on one side.
type Level struct {
	PriceTicks int64 `json:"priceTicks"`
	Quantity   int64 `json:"quantity"`
	OrderCount int   `json:"orderCount"`
}

// Depth holds the top levels of both sides, best first.
type Depth struct {
	Bids []Level `json:"bids"`
	Asks []Level `json:"asks"`
}

// Snapshot is the committed view of a market published for readers.
// Sequence is the watermark the view reflects.
type Snapshot struct {
	MarketID         string    `json:"marketId"`
	Sequence         int64     `json:"sequence"`
	Bids             []Level   `json:"bids"`
	Asks             []Level   `json:"asks"`
	LastMatchedPrice int64     `json:"lastMatchedPrice"`
	TotalVolume24h   int64     `json:"totalVolume24h"`
	Halted           bool      `json:"halted"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// BestBid returns the top bid price, or 0 when the bid side is empty.
func (s *Snapshot) BestBid() int64 {
	if len(s.Bids) == 0 {
		return 0
	}
	return s.Bids[0].PriceTicks
}

// BestAsk returns the top ask price, or 0 when the ask side is empty.
func (s *Snapshot) BestAsk() int64 {
	if len(s.Asks) == 0 {
		return 0
	}
	return s.Asks[0].PriceTicks
}

// Book is a price-time priority limit order book for a single market.
//
//go:generate mockgen -source orderbook.go -destination=mock/orderbook_mock.go -package=orderbookv1_mock
type Book interface {
	// Insert rests o at the tail of its price level.
	Insert(o *orderv1.Order) error
	// Remove takes a resting order out of the book.
	Remove(orderID string) (*orderv1.Order, error)
	// Get returns a resting order.
	Get(orderID string) (*orderv1.Order, bool)
	// Best returns the highest priority order on side.
	Best(side orderv1.Side) (*orderv1.Order, bool)
	// Fill executes qty against a resting order, removing it once fully filled.
	Fill(orderID string, qty, seq int64) (*orderv1.Order, error)
	// Levels returns up to depth aggregated levels per side, best first.
	Levels(depth int) Depth
	// Walk visits the resting orders of side in priority order until fn returns false.
	Walk(side orderv1.Side, fn func(o *orderv1.Order) bool)
	// Orders returns every resting order in priority order, bids first.
	Orders() []*orderv1.Order
	Len() int
}

// SnapshotStore publishes and serves committed book snapshots.
type SnapshotStore interface {
	Publish(ctx context.Context, snapshot *Snapshot) error
	Load(ctx context.Context, marketID string) (*Snapshot, error)
}
