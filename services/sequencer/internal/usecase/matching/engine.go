package matching

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/muhammadchandra19/exchange/pkg/errors"
	matchingv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/matching/v1"
	orderv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/order/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/orderbook/v1"
	"github.com/oklog/ulid/v2"
)

// Engine matches incoming orders against a single market's book.
// Execution is always at the resting order's price, and a bid crosses an
// ask whenever bid >= ask.
type Engine struct {
	marketID string
	book     orderbookv1.Book
}

// NewEngine creates an engine over book.
func NewEngine(marketID string, book orderbookv1.Book) *Engine {
	return &Engine{marketID: marketID, book: book}
}

// Book returns the book the engine mutates.
func (e *Engine) Book() orderbookv1.Book {
	return e.book
}

// Restore rests previously committed orders in their original priority.
func (e *Engine) Restore(orders []*orderv1.Order) error {
	for _, o := range orders {
		if err := e.book.Insert(o); err != nil {
			return err
		}
	}
	return nil
}

// Place runs the crossing loop for o at consensus sequence seq.
func (e *Engine) Place(o *orderv1.Order, seq int64, consensusTime time.Time) (*matchingv1.Result, error) {
	res := &matchingv1.Result{Sequence: seq}

	if _, exists := e.book.Get(o.ID); exists {
		return nil, errors.NewRejectReason(errors.RejectDuplicateOrder, "orderId", "order %s is already resting", o.ID)
	}

	if o.ExpiredAt(consensusTime) {
		if err := o.Transition(orderv1.StatusExpired, seq); err != nil {
			return nil, err
		}
		res.Touch(o)
		return res, nil
	}

	if o.TimeInForce == orderv1.FOK && e.available(o, consensusTime) < o.Remaining() {
		if err := o.Transition(orderv1.StatusCancelled, seq); err != nil {
			return nil, err
		}
		res.Touch(o)
		return res, nil
	}

	for o.Remaining() > 0 {
		maker, ok := e.book.Best(o.Side.Opposite())
		if !ok || !crosses(o, maker) {
			break
		}

		if maker.ExpiredAt(consensusTime) {
			if _, err := e.book.Remove(maker.ID); err != nil {
				return nil, err
			}
			if err := maker.Transition(orderv1.StatusExpired, seq); err != nil {
				return nil, err
			}
			res.Touch(maker)
			continue
		}

		qty := min(o.Remaining(), maker.Remaining())
		if _, err := e.book.Fill(maker.ID, qty, seq); err != nil {
			return nil, err
		}
		if err := o.Fill(qty, seq); err != nil {
			return nil, err
		}

		trade, err := e.newTrade(o, maker, qty, seq, len(res.Trades), consensusTime)
		if err != nil {
			return nil, err
		}
		res.Trades = append(res.Trades, trade)
		res.Touch(maker)
	}

	if o.Remaining() > 0 {
		switch o.TimeInForce {
		case orderv1.GTC:
			if err := e.book.Insert(o); err != nil {
				return nil, err
			}
		case orderv1.IOC:
			if err := o.Transition(orderv1.StatusCancelled, seq); err != nil {
				return nil, err
			}
		case orderv1.FOK:
			return nil, errors.NewInvariantViolation(e.marketID, "FOK order %s left %d unfilled after liquidity check", o.ID, o.Remaining())
		}
	}
	res.Touch(o)

	if err := e.checkUncrossed(); err != nil {
		return nil, err
	}
	return res, nil
}

// Cancel removes a resting order. Cancelling an order that is not resting is a no-op.
func (e *Engine) Cancel(c *orderv1.Cancel, seq int64) (*matchingv1.Result, error) {
	res := &matchingv1.Result{Sequence: seq}

	o, ok := e.book.Get(c.OrderID)
	if !ok {
		return res, nil
	}
	if c.Maker != o.Maker {
		return nil, errors.NewRejectReason(errors.RejectUnauthorizedCancel, "maker", "%s cannot cancel order %s", c.Maker, c.OrderID)
	}

	if _, err := e.book.Remove(o.ID); err != nil {
		return nil, err
	}
	if err := o.Transition(orderv1.StatusCancelled, seq); err != nil {
		return nil, err
	}
	res.Touch(o)
	return res, nil
}

// available sums the live opposite quantity o could execute against, stopping once it suffices.
func (e *Engine) available(o *orderv1.Order, consensusTime time.Time) int64 {
	var total int64
	e.book.Walk(o.Side.Opposite(), func(maker *orderv1.Order) bool {
		if !crosses(o, maker) {
			return false
		}
		if !maker.ExpiredAt(consensusTime) {
			total += maker.Remaining()
		}
		return total < o.Remaining()
	})
	return total
}

func (e *Engine) checkUncrossed() error {
	bid, hasBid := e.book.Best(orderv1.SideBuy)
	ask, hasAsk := e.book.Best(orderv1.SideSell)
	if hasBid && hasAsk && bid.PriceTicks >= ask.PriceTicks {
		return errors.NewInvariantViolation(e.marketID, "book crossed after match: bid %d >= ask %d", bid.PriceTicks, ask.PriceTicks)
	}
	return nil
}

func crosses(taker, maker *orderv1.Order) bool {
	if taker.Side == orderv1.SideBuy {
		return taker.PriceTicks >= maker.PriceTicks
	}
	return taker.PriceTicks <= maker.PriceTicks
}

func (e *Engine) newTrade(taker, maker *orderv1.Order, qty, seq int64, index int, consensusTime time.Time) (matchingv1.Trade, error) {
	id, err := TradeID(e.marketID, seq, index, consensusTime)
	if err != nil {
		return matchingv1.Trade{}, err
	}

	buy, sell := taker, maker
	if taker.Side == orderv1.SideSell {
		buy, sell = maker, taker
	}

	return matchingv1.Trade{
		ID:                id,
		MarketID:          e.marketID,
		BuyOrderID:        buy.ID,
		SellOrderID:       sell.ID,
		MakerOrderID:      maker.ID,
		TakerSide:         taker.Side,
		PriceTicks:        maker.PriceTicks,
		Qty:               qty,
		BuyerAccountID:    buy.Maker,
		SellerAccountID:   sell.Maker,
		ConsensusSequence: seq,
		Index:             index,
		Timestamp:         consensusTime,
	}, nil
}

// TradeID derives a ULID from consensus time and the trade's position in the
// log, so every replica assigns the same id.
func TradeID(marketID string, seq int64, index int, consensusTime time.Time) (string, error) {
	entropy := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%d", marketID, seq, index)))
	id, err := ulid.New(ulid.Timestamp(consensusTime), bytes.NewReader(entropy[:]))
	if err != nil {
		return "", errors.NewTracer("trade_id").Wrap(err)
	}
	return id.String(), nil
}
