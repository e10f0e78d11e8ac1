package orderv1

import (
	"fmt"
	"time"

	"github.com/muhammadchandra19/exchange/pkg/errors"
)

// Side is the direction of an order.
type Side string

const (
	// SideBuy bids for the outcome.
	SideBuy Side = "BUY"
	// SideSell offers the outcome.
	SideSell Side = "SELL"
)

// Valid reports whether s is BUY or SELL.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Opposite returns the side an order of this side matches against.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// TimeInForce controls what happens to the unfilled remainder of an order.
type TimeInForce string

const (
	// GTC rests the remainder in the book until filled or cancelled.
	GTC TimeInForce = "GTC"
	// IOC discards the remainder after the crossing loop.
	IOC TimeInForce = "IOC"
	// FOK fills completely or produces no trades at all.
	FOK TimeInForce = "FOK"
)

// Valid reports whether t is one of GTC, IOC, FOK.
func (t TimeInForce) Valid() bool {
	return t == GTC || t == IOC || t == FOK
}

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending     Status = "PENDING"
	StatusPublished   Status = "PUBLISHED"
	StatusPartialFill Status = "PARTIAL_FILL"
	StatusFilled      Status = "FILLED"
	StatusCancelled   Status = "CANCELLED"
	StatusExpired     Status = "EXPIRED"
	StatusRejected    Status = "REJECTED"
)

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusFilled, StatusCancelled, StatusExpired, StatusRejected:
		return true
	}
	return false
}

// IsResting reports whether an order in this state may sit in the book.
func (s Status) IsResting() bool {
	return s == StatusPublished || s == StatusPartialFill
}

var transitions = map[Status][]Status{
	StatusPending:     {StatusPublished, StatusRejected, StatusExpired},
	StatusPublished:   {StatusPartialFill, StatusFilled, StatusCancelled, StatusExpired, StatusRejected},
	StatusPartialFill: {StatusPartialFill, StatusFilled, StatusCancelled, StatusExpired},
}

// CanTransition reports whether moving from s to next keeps the lifecycle forward-only.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is a limit order as seen by the matching engine.
// Prices are integer ticks and quantities integer base units.
type Order struct {
	ID              string      `json:"orderId"`
	MarketID        string      `json:"marketId"`
	Maker           string      `json:"maker"`
	Side            Side        `json:"side"`
	PriceTicks      int64       `json:"priceTicks"`
	Qty             int64       `json:"qty"`
	FilledQty       int64       `json:"filledQty"`
	TimeInForce     TimeInForce `json:"timeInForce"`
	Expiry          *time.Time  `json:"expiry,omitempty"`
	Nonce           int64       `json:"nonce"`
	MaxCollateral   int64       `json:"maxCollateral"`
	Signature       string      `json:"signature"`
	Status          Status      `json:"status"`
	RejectReason    string      `json:"rejectReason,omitempty"`
	ArrivalSequence int64       `json:"arrivalSequence"`
	LastSequence    int64       `json:"lastSequence"`
}

// Remaining returns the unfilled quantity.
func (o *Order) Remaining() int64 {
	return o.Qty - o.FilledQty
}

// IsBid reports whether the order is on the buy side.
func (o *Order) IsBid() bool {
	return o.Side == SideBuy
}

// ExpiredAt reports whether the order has expired relative to consensus time t.
func (o *Order) ExpiredAt(t time.Time) bool {
	return o.Expiry != nil && !o.Expiry.After(t)
}

// Transition moves the order to next, failing with an invariant violation on a backward move.
func (o *Order) Transition(next Status, seq int64) error {
	if !o.Status.CanTransition(next) {
		return errors.NewInvariantViolation(o.MarketID, "order %s cannot move from %s to %s", o.ID, o.Status, next)
	}
	o.Status = next
	o.LastSequence = seq
	return nil
}

// Fill records qty as executed and moves the order to PARTIAL_FILL or FILLED.
func (o *Order) Fill(qty, seq int64) error {
	if qty <= 0 || qty > o.Remaining() {
		return errors.NewInvariantViolation(o.MarketID, "order %s fill of %d exceeds remaining %d", o.ID, qty, o.Remaining())
	}
	o.FilledQty += qty
	if o.Remaining() == 0 {
		return o.Transition(StatusFilled, seq)
	}
	return o.Transition(StatusPartialFill, seq)
}

// Clone returns a copy safe to hand to persistence while the engine keeps mutating o.
func (o *Order) Clone() *Order {
	c := *o
	if o.Expiry != nil {
		expiry := *o.Expiry
		c.Expiry = &expiry
	}
	return &c
}

func (o *Order) String() string {
	return fmt.Sprintf("%s %s %d@%d (%s, filled %d)", o.ID, o.Side, o.Qty, o.PriceTicks, o.TimeInForce, o.FilledQty)
}
