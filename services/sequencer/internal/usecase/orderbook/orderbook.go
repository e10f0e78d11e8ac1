package orderbook

import (
	"time"

	"github.com/google/btree"
	"github.com/muhammadchandra19/exchange/pkg/errors"
	orderv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/order/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/orderbook/v1"
)

const degree = 32

type entry struct {
	price int64
	seq   int64
	id    string
	order *orderv1.Order
}

type level struct {
	price    int64
	quantity int64
	count    int
}

type side struct {
	orders *btree.BTreeG[*entry]
	levels *btree.BTreeG[*level]
}

// Bids sort by (-price, seq) and asks by (price, seq). The order id breaks
// ties so two entries never compare equal.
func newSide(bid bool) *side {
	better := func(a, b int64) bool { return a < b }
	if bid {
		better = func(a, b int64) bool { return a > b }
	}

	return &side{
		orders: btree.NewG(degree, func(a, b *entry) bool {
			if a.price != b.price {
				return better(a.price, b.price)
			}
			if a.seq != b.seq {
				return a.seq < b.seq
			}
			return a.id < b.id
		}),
		levels: btree.NewG(degree, func(a, b *level) bool {
			return better(a.price, b.price)
		}),
	}
}

// Orderbook is a price-time priority book over integer ticks.
// It is owned by a single market loop and is not safe for concurrent use.
type Orderbook struct {
	marketID string
	bids     *side
	asks     *side
	index    map[string]*entry
}

// NewOrderbook creates an empty book for marketID.
func NewOrderbook(marketID string) *Orderbook {
	return &Orderbook{
		marketID: marketID,
		bids:     newSide(true),
		asks:     newSide(false),
		index:    make(map[string]*entry),
	}
}

func (ob *Orderbook) side(s orderv1.Side) *side {
	if s == orderv1.SideBuy {
		return ob.bids
	}
	return ob.asks
}

// Insert rests o at the tail of its price level.
func (ob *Orderbook) Insert(o *orderv1.Order) error {
	switch {
	case o == nil || o.ID == "":
		return errors.NewInvariantViolation(ob.marketID, "cannot rest an order without id")
	case o.PriceTicks <= 0 || o.Remaining() <= 0:
		return errors.NewInvariantViolation(ob.marketID, "cannot rest order %s with price %d and remaining %d", o.ID, o.PriceTicks, o.Remaining())
	case !o.Status.IsResting():
		return errors.NewInvariantViolation(ob.marketID, "cannot rest order %s in status %s", o.ID, o.Status)
	case !o.Side.Valid():
		return errors.NewInvariantViolation(ob.marketID, "cannot rest order %s with side %q", o.ID, o.Side)
	}

	if _, exists := ob.index[o.ID]; exists {
		return errors.NewInvariantViolation(ob.marketID, "order %s is already resting", o.ID)
	}

	e := &entry{price: o.PriceTicks, seq: o.ArrivalSequence, id: o.ID, order: o}
	s := ob.side(o.Side)
	s.orders.ReplaceOrInsert(e)

	lvl, ok := s.levels.Get(&level{price: o.PriceTicks})
	if !ok {
		lvl = &level{price: o.PriceTicks}
		s.levels.ReplaceOrInsert(lvl)
	}
	lvl.quantity += o.Remaining()
	lvl.count++

	ob.index[o.ID] = e
	return nil
}

// Remove takes a resting order out of the book.
func (ob *Orderbook) Remove(orderID string) (*orderv1.Order, error) {
	e, ok := ob.index[orderID]
	if !ok {
		return nil, errors.NewErrorDetails("order is not resting", string(errors.GeneralNotFoundError), orderID)
	}
	if err := ob.detach(e, e.order.Remaining()); err != nil {
		return nil, err
	}
	return e.order, nil
}

// Get returns a resting order.
func (ob *Orderbook) Get(orderID string) (*orderv1.Order, bool) {
	e, ok := ob.index[orderID]
	if !ok {
		return nil, false
	}
	return e.order, true
}

// Best returns the highest priority order on side.
func (ob *Orderbook) Best(s orderv1.Side) (*orderv1.Order, bool) {
	e, ok := ob.side(s).orders.Min()
	if !ok {
		return nil, false
	}
	return e.order, true
}

// Fill executes qty against a resting order and removes it once nothing remains.
func (ob *Orderbook) Fill(orderID string, qty, seq int64) (*orderv1.Order, error) {
	e, ok := ob.index[orderID]
	if !ok {
		return nil, errors.NewInvariantViolation(ob.marketID, "fill against order %s that is not resting", orderID)
	}

	if err := e.order.Fill(qty, seq); err != nil {
		return nil, err
	}

	s := ob.side(e.order.Side)
	lvl, ok := s.levels.Get(&level{price: e.price})
	if !ok {
		return nil, errors.NewInvariantViolation(ob.marketID, "no level at %d for order %s", e.price, orderID)
	}
	lvl.quantity -= qty

	if e.order.Remaining() == 0 {
		if err := ob.detach(e, 0); err != nil {
			return nil, err
		}
	}
	return e.order, nil
}

// detach removes e from its side, taking remaining off the level aggregate.
func (ob *Orderbook) detach(e *entry, remaining int64) error {
	s := ob.side(e.order.Side)
	if _, ok := s.orders.Delete(e); !ok {
		return errors.NewInvariantViolation(ob.marketID, "order %s missing from priority queue", e.id)
	}
	delete(ob.index, e.id)

	lvl, ok := s.levels.Get(&level{price: e.price})
	if !ok {
		return errors.NewInvariantViolation(ob.marketID, "no level at %d for order %s", e.price, e.id)
	}
	lvl.quantity -= remaining
	lvl.count--
	if lvl.count == 0 {
		if lvl.quantity != 0 {
			return errors.NewInvariantViolation(ob.marketID, "empty level %d holds quantity %d", lvl.price, lvl.quantity)
		}
		s.levels.Delete(lvl)
	}
	return nil
}

// Walk visits resting orders of side in priority order until fn returns false.
func (ob *Orderbook) Walk(s orderv1.Side, fn func(o *orderv1.Order) bool) {
	ob.side(s).orders.Ascend(func(e *entry) bool {
		return fn(e.order)
	})
}

// Levels returns up to depth aggregated levels per side. A depth of 0 returns all.
func (ob *Orderbook) Levels(depth int) orderbookv1.Depth {
	return orderbookv1.Depth{
		Bids: collect(ob.bids, depth),
		Asks: collect(ob.asks, depth),
	}
}

func collect(s *side, depth int) []orderbookv1.Level {
	levels := make([]orderbookv1.Level, 0)
	s.levels.Ascend(func(l *level) bool {
		levels = append(levels, orderbookv1.Level{PriceTicks: l.price, Quantity: l.quantity, OrderCount: l.count})
		return depth <= 0 || len(levels) < depth
	})
	return levels
}

// LiveLevels is Levels without the orders already expired at consensus time
// at. Expired orders leave the book only when a taker reaches them, so this
// is the view readers get.
func (ob *Orderbook) LiveLevels(depth int, at time.Time) orderbookv1.Depth {
	return orderbookv1.Depth{
		Bids: ob.collectLive(orderv1.SideBuy, depth, at),
		Asks: ob.collectLive(orderv1.SideSell, depth, at),
	}
}

func (ob *Orderbook) collectLive(s orderv1.Side, depth int, at time.Time) []orderbookv1.Level {
	levels := make([]orderbookv1.Level, 0)
	ob.Walk(s, func(o *orderv1.Order) bool {
		if o.ExpiredAt(at) {
			return true
		}
		if n := len(levels); n > 0 && levels[n-1].PriceTicks == o.PriceTicks {
			levels[n-1].Quantity += o.Remaining()
			levels[n-1].OrderCount++
			return true
		}
		if depth > 0 && len(levels) == depth {
			return false
		}
		levels = append(levels, orderbookv1.Level{PriceTicks: o.PriceTicks, Quantity: o.Remaining(), OrderCount: 1})
		return true
	})
	return levels
}

// Orders returns every resting order in priority order, bids first.
func (ob *Orderbook) Orders() []*orderv1.Order {
	orders := make([]*orderv1.Order, 0, len(ob.index))
	visit := func(e *entry) bool {
		orders = append(orders, e.order)
		return true
	}
	ob.bids.orders.Ascend(visit)
	ob.asks.orders.Ascend(visit)
	return orders
}

// Len returns the number of resting orders.
func (ob *Orderbook) Len() int {
	return len(ob.index)
}

// CheckInvariants recomputes every level from the resting orders and checks
// the book is not crossed.
func (ob *Orderbook) CheckInvariants() error {
	for _, s := range []*side{ob.bids, ob.asks} {
		sums := make(map[int64]*level)
		var err error
		s.orders.Ascend(func(e *entry) bool {
			if e.order.Remaining() <= 0 {
				err = errors.NewInvariantViolation(ob.marketID, "resting order %s has nothing remaining", e.id)
				return false
			}
			l, ok := sums[e.price]
			if !ok {
				l = &level{price: e.price}
				sums[e.price] = l
			}
			l.quantity += e.order.Remaining()
			l.count++
			return true
		})
		if err != nil {
			return err
		}

		if s.levels.Len() != len(sums) {
			return errors.NewInvariantViolation(ob.marketID, "book has %d levels but orders span %d prices", s.levels.Len(), len(sums))
		}
		s.levels.Ascend(func(l *level) bool {
			want, ok := sums[l.price]
			if !ok || want.quantity != l.quantity || want.count != l.count {
				err = errors.NewInvariantViolation(ob.marketID, "level %d does not match its orders", l.price)
				return false
			}
			return true
		})
		if err != nil {
			return err
		}
	}

	bid, hasBid := ob.Best(orderv1.SideBuy)
	ask, hasAsk := ob.Best(orderv1.SideSell)
	if hasBid && hasAsk && bid.PriceTicks >= ask.PriceTicks {
		return errors.NewInvariantViolation(ob.marketID, "book crossed: bid %d >= ask %d", bid.PriceTicks, ask.PriceTicks)
	}
	return nil
}
