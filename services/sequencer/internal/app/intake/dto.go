package intake

import (
	orderbookv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/orderbook/v1"
	positionv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/position/v1"
)

// AcceptedResponse is the receipt for an intent forwarded to the consensus log.
// It does not mean the order is in the book.
type AcceptedResponse struct {
	OrderID  string `json:"orderId,omitempty"`
	MarketID string `json:"marketId"`
	Sequence int64  `json:"sequence"`
}

// BoundaryRequest is the optional body of a batch boundary request.
type BoundaryRequest struct {
	Reason string `json:"reason" binding:"max=128"`
}

// BookQuery selects how many levels per side to return.
type BookQuery struct {
	Depth int `form:"depth" binding:"omitempty,min=1,max=500"`
}

// BookResponse is the committed book view of a market.
type BookResponse struct {
	*orderbookv1.Snapshot
	BestBid int64 `json:"bestBid"`
	BestAsk int64 `json:"bestAsk"`
}

// PositionResponse is a committed position with its read-time projection.
type PositionResponse struct {
	*positionv1.Position
	AvgEntryPrice float64 `json:"avgEntryPrice"`
	UnrealizedPnl int64   `json:"unrealizedPnl"`
	MarkSequence  int64   `json:"markSequence"`
}

// ErrorResponse carries a reject code or an API error.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}
