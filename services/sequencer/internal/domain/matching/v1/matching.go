package matchingv1

import (
	"time"

	orderv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/order/v1"
)

// Trade is one execution between a resting maker and an incoming taker.
// Trades are ordered by (ConsensusSequence, Index) within a market.
type Trade struct {
	ID                string       `json:"tradeId"`
	MarketID          string       `json:"marketId"`
	BatchID           int64        `json:"batchId"`
	BuyOrderID        string       `json:"buyOrderId"`
	SellOrderID       string       `json:"sellOrderId"`
	MakerOrderID      string       `json:"makerOrderId"`
	TakerSide         orderv1.Side `json:"takerSide"`
	PriceTicks        int64        `json:"priceTicks"`
	Qty               int64        `json:"qty"`
	BuyerAccountID    string       `json:"buyerAccountId"`
	SellerAccountID   string       `json:"sellerAccountId"`
	ConsensusSequence int64        `json:"consensusSequence"`
	Index             int          `json:"index"`
	Timestamp         time.Time    `json:"timestamp"`
}

// Before reports whether t was created before other in consensus order.
func (t *Trade) Before(other *Trade) bool {
	if t.ConsensusSequence != other.ConsensusSequence {
		return t.ConsensusSequence < other.ConsensusSequence
	}
	return t.Index < other.Index
}

// Notional returns price times quantity.
func (t *Trade) Notional() int64 {
	return t.PriceTicks * t.Qty
}

// Result is everything one message changed in a market's book.
type Result struct {
	Sequence int64
	// Orders holds a copy of every order whose state changed, in change order.
	Orders []*orderv1.Order
	Trades []Trade
}

// Touch records the current state of o, replacing an earlier entry for the same order.
func (r *Result) Touch(o *orderv1.Order) {
	for i, existing := range r.Orders {
		if existing.ID == o.ID {
			r.Orders[i] = o.Clone()
			return
		}
	}
	r.Orders = append(r.Orders, o.Clone())
}

// Volume returns the summed quantity of all trades.
func (r *Result) Volume() int64 {
	var total int64
	for _, t := range r.Trades {
		total += t.Qty
	}
	return total
}

// LastPrice returns the price of the final trade, or 0 when nothing traded.
func (r *Result) LastPrice() int64 {
	if len(r.Trades) == 0 {
		return 0
	}
	return r.Trades[len(r.Trades)-1].PriceTicks
}

// Engine applies order and cancel messages to a market's book.
//
//go:generate mockgen -source matching.go -destination=mock/matching_mock.go -package=matchingv1_mock
type Engine interface {
	Place(o *orderv1.Order, seq int64, consensusTime time.Time) (*Result, error)
	Cancel(c *orderv1.Cancel, seq int64) (*Result, error)
}
