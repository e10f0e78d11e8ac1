package settlement

import (
	"time"

	matchingv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/matching/v1"
	settlementv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/settlement/v1"
)

// Batcher groups a market's trades into settlement batches.
//
// A batch opens with the first trade after the previous close. It closes on a
// batch boundary message, or on the message that brings the count of messages
// seen since opening to maxMessages. A boundary with no open batch does nothing.
type Batcher struct {
	marketID    string
	maxMessages int64
	nextID      int64
	open        *settlementv1.Batch
}

// NewBatcher creates a batcher whose first batch gets id nextID.
func NewBatcher(marketID string, maxMessages, nextID int64) *Batcher {
	if nextID < 1 {
		nextID = 1
	}
	return &Batcher{marketID: marketID, maxMessages: maxMessages, nextID: nextID}
}

// Restore resumes from committed state.
func (b *Batcher) Restore(open *settlementv1.Batch, nextID int64) {
	b.open = nil
	if open != nil && open.Status == settlementv1.StatusOpen {
		b.open = open.Clone()
	}
	if nextID > b.nextID {
		b.nextID = nextID
	}
}

// NextID returns the id the next opened batch will get.
func (b *Batcher) NextID() int64 {
	return b.nextID
}

// Open returns the batch currently collecting trades, if any.
func (b *Batcher) Open() *settlementv1.Batch {
	return b.open
}

// Apply stamps trades with their batch and returns copies of every batch the
// message changed.
func (b *Batcher) Apply(seq int64, trades []matchingv1.Trade, boundary bool, consensusTime time.Time) []*settlementv1.Batch {
	if len(trades) > 0 && b.open == nil {
		b.open = &settlementv1.Batch{
			ID:          b.nextID,
			MarketID:    b.marketID,
			WindowStart: seq,
			Status:      settlementv1.StatusOpen,
		}
		b.nextID++
	}

	if b.open == nil {
		return nil
	}

	for i := range trades {
		trades[i].BatchID = b.open.ID
	}
	b.open.TradesCount += len(trades)
	b.open.WindowEnd = seq
	b.open.MessagesSinceOpen++
	b.open.UpdatedAt = consensusTime

	switch {
	case boundary:
		return []*settlementv1.Batch{b.close(settlementv1.ClosedByBoundary)}
	case b.maxMessages > 0 && b.open.MessagesSinceOpen >= b.maxMessages:
		return []*settlementv1.Batch{b.close(settlementv1.ClosedByCount)}
	}
	return []*settlementv1.Batch{b.open.Clone()}
}

func (b *Batcher) close(reason string) *settlementv1.Batch {
	closed := b.open
	closed.Status = settlementv1.StatusClosed
	closed.ClosedReason = reason
	b.open = nil
	return closed.Clone()
}
