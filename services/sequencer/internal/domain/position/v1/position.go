package positionv1

import (
	"context"
	"time"
)

// Type is the outcome a position is exposed to.
type Type string

const (
	// TypeYes is a long position, built by buying.
	TypeYes Type = "YES"
	// TypeNo is a short position, built by selling.
	TypeNo Type = "NO"
)

// Position is an account's net exposure in one market.
// CostBasis is the summed entry notional of the open quantity, in ticks times units,
// so the weighted average entry price is CostBasis / Quantity.
type Position struct {
	MarketID         string    `json:"marketId"`
	AccountID        string    `json:"accountId"`
	Type             Type      `json:"positionType"`
	Quantity         int64     `json:"quantity"`
	CostBasis        int64     `json:"costBasis"`
	RealizedPnl      int64     `json:"realizedPnl"`
	CollateralLocked int64     `json:"collateralLocked"`
	LastTradeID      string    `json:"lastTradeId,omitempty"`
	LastSequence     int64     `json:"lastSequence"`
	LastTradeIndex   int       `json:"lastTradeIndex"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// IsFlat reports whether there is no open quantity.
func (p *Position) IsFlat() bool {
	return p.Quantity == 0
}

// AvgEntryPrice returns the weighted average entry price in ticks.
func (p *Position) AvgEntryPrice() float64 {
	if p.Quantity == 0 {
		return 0
	}
	return float64(p.CostBasis) / float64(p.Quantity)
}

// Signed returns the quantity as a signed exposure, negative for NO.
func (p *Position) Signed() int64 {
	if p.Type == TypeNo {
		return -p.Quantity
	}
	return p.Quantity
}

// Unrealized projects PnL against the book: longs mark at the best bid,
// shorts at the best ask. A missing side projects zero.
func (p *Position) Unrealized(bestBid, bestAsk int64) int64 {
	if p.Quantity == 0 {
		return 0
	}
	if p.Type == TypeYes {
		if bestBid <= 0 {
			return 0
		}
		return bestBid*p.Quantity - p.CostBasis
	}
	if bestAsk <= 0 {
		return 0
	}
	return p.CostBasis - bestAsk*p.Quantity
}

// AppliedThrough reports whether the trade at (seq, index) is already reflected.
func (p *Position) AppliedThrough(seq int64, index int) bool {
	if seq != p.LastSequence {
		return seq < p.LastSequence
	}
	return index <= p.LastTradeIndex
}

// Clone returns a copy of the position.
func (p *Position) Clone() *Position {
	c := *p
	return &c
}

// Repository serves committed positions to readers.
//
//go:generate mockgen -source position.go -destination=mock/position_mock.go -package=positionv1_mock
type Repository interface {
	ListByAccount(ctx context.Context, accountID string) ([]*Position, error)
}
