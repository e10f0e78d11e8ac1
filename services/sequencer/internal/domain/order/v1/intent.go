package orderv1

import "time"

// Intent is the signed order message carried on the consensus log.
type Intent struct {
	OrderID       string      `json:"orderId" binding:"omitempty,max=64"`
	MarketID      string      `json:"marketId" binding:"required"`
	Maker         string      `json:"maker" binding:"required"`
	Side          Side        `json:"side" binding:"required,oneof=BUY SELL"`
	PriceTicks    int64       `json:"priceTicks" binding:"required,gt=0"`
	Qty           int64       `json:"qty" binding:"required,gt=0"`
	TimeInForce   TimeInForce `json:"timeInForce" binding:"required,oneof=GTC IOC FOK"`
	Expiry        *time.Time  `json:"expiry,omitempty"`
	Nonce         int64       `json:"nonce" binding:"required,gt=0"`
	MaxCollateral int64       `json:"maxCollateral" binding:"gte=0"`
	Signature     string      `json:"signature" binding:"required"`
}

// ToOrder builds the PUBLISHED order the intent becomes once it is sequenced.
func (i *Intent) ToOrder(seq int64) *Order {
	return &Order{
		ID:              i.OrderID,
		MarketID:        i.MarketID,
		Maker:           i.Maker,
		Side:            i.Side,
		PriceTicks:      i.PriceTicks,
		Qty:             i.Qty,
		TimeInForce:     i.TimeInForce,
		Expiry:          i.Expiry,
		Nonce:           i.Nonce,
		MaxCollateral:   i.MaxCollateral,
		Signature:       i.Signature,
		Status:          StatusPublished,
		ArrivalSequence: seq,
		LastSequence:    seq,
	}
}

// Cancel asks for a resting order to be removed from the book. It is signed
// by the maker that placed the order.
type Cancel struct {
	OrderID   string `json:"orderId" binding:"required"`
	MarketID  string `json:"marketId" binding:"required"`
	Maker     string `json:"maker" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}
