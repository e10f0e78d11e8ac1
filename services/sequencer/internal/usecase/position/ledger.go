package position

import (
	"sort"

	matchingv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/matching/v1"
	positionv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/position/v1"
)

// Ledger keeps every account's net position in one market.
// Trades apply in consensus order; a trade at or below an account's last
// applied (sequence, index) is ignored, which makes replays harmless.
type Ledger struct {
	marketID      string
	maxPriceTicks int64
	positions     map[string]*positionv1.Position
}

// NewLedger creates an empty ledger. maxPriceTicks prices short collateral; zero falls back to cost basis.
func NewLedger(marketID string, maxPriceTicks int64) *Ledger {
	return &Ledger{
		marketID:      marketID,
		maxPriceTicks: maxPriceTicks,
		positions:     make(map[string]*positionv1.Position),
	}
}

// Restore replaces the ledger contents.
func (l *Ledger) Restore(positions []*positionv1.Position) {
	l.positions = make(map[string]*positionv1.Position, len(positions))
	for _, p := range positions {
		l.positions[p.AccountID] = p.Clone()
	}
}

// Get returns the position of accountID.
func (l *Ledger) Get(accountID string) (*positionv1.Position, bool) {
	p, ok := l.positions[accountID]
	return p, ok
}

// Apply books both legs of every trade and returns copies of the changed
// positions ordered by account.
func (l *Ledger) Apply(trades []matchingv1.Trade) []*positionv1.Position {
	changed := make(map[string]*positionv1.Position)

	for i := range trades {
		t := &trades[i]
		if t.BuyerAccountID == t.SellerAccountID {
			if p := l.stamp(t.BuyerAccountID, t); p != nil {
				changed[p.AccountID] = p
			}
			continue
		}
		if p := l.fill(t.BuyerAccountID, t.Qty, t); p != nil {
			changed[p.AccountID] = p
		}
		if p := l.fill(t.SellerAccountID, -t.Qty, t); p != nil {
			changed[p.AccountID] = p
		}
	}

	out := make([]*positionv1.Position, 0, len(changed))
	for _, p := range changed {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out
}

func (l *Ledger) position(accountID string) *positionv1.Position {
	p, ok := l.positions[accountID]
	if !ok {
		p = &positionv1.Position{MarketID: l.marketID, AccountID: accountID, Type: positionv1.TypeYes}
		l.positions[accountID] = p
	}
	return p
}

// stamp records a self-trade, which leaves exposure unchanged.
func (l *Ledger) stamp(accountID string, t *matchingv1.Trade) *positionv1.Position {
	p := l.position(accountID)
	if p.AppliedThrough(t.ConsensusSequence, t.Index) {
		return nil
	}
	l.mark(p, t)
	return p
}

// fill applies a signed quantity: positive buys, negative sells.
func (l *Ledger) fill(accountID string, delta int64, t *matchingv1.Trade) *positionv1.Position {
	p := l.position(accountID)
	if p.AppliedThrough(t.ConsensusSequence, t.Index) {
		return nil
	}

	qty := delta
	incoming := positionv1.TypeYes
	if delta < 0 {
		qty = -delta
		incoming = positionv1.TypeNo
	}

	switch {
	case p.Quantity == 0:
		p.Type = incoming
		p.Quantity = qty
		p.CostBasis = t.PriceTicks * qty
	case p.Type == incoming:
		p.Quantity += qty
		p.CostBasis += t.PriceTicks * qty
	default:
		closing := min(qty, p.Quantity)
		removed := p.CostBasis
		if closing < p.Quantity {
			removed = p.CostBasis * closing / p.Quantity
		}

		if p.Type == positionv1.TypeYes {
			p.RealizedPnl += t.PriceTicks*closing - removed
		} else {
			p.RealizedPnl += removed - t.PriceTicks*closing
		}
		p.Quantity -= closing
		p.CostBasis -= removed

		if rest := qty - closing; rest > 0 {
			p.Type = incoming
			p.Quantity = rest
			p.CostBasis = t.PriceTicks * rest
		}
	}

	p.CollateralLocked = l.collateral(p)
	l.mark(p, t)
	return p
}

func (l *Ledger) collateral(p *positionv1.Position) int64 {
	if p.Quantity == 0 {
		return 0
	}
	if p.Type == positionv1.TypeNo && l.maxPriceTicks > 0 {
		return l.maxPriceTicks*p.Quantity - p.CostBasis
	}
	return p.CostBasis
}

func (l *Ledger) mark(p *positionv1.Position, t *matchingv1.Trade) {
	p.LastTradeID = t.ID
	p.LastSequence = t.ConsensusSequence
	p.LastTradeIndex = t.Index
	p.UpdatedAt = t.Timestamp
}
