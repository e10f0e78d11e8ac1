package sequencerv1

import (
	"context"
	"time"

	matchingv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/matching/v1"
	orderv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/order/v1"
	positionv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/position/v1"
	settlementv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/settlement/v1"
)

// State is the durable progress record of one market.
type State struct {
	MarketID            string    `json:"marketId"`
	LastAppliedSequence int64     `json:"lastAppliedSequence"`
	ReplayFrom          int64     `json:"replayFrom"`
	LastMatchedPrice    int64     `json:"lastMatchedPrice"`
	TotalVolume24h      int64     `json:"totalVolume24h"`
	BestBid             int64     `json:"bestBid"`
	BestAsk             int64     `json:"bestAsk"`
	NextBatchID         int64     `json:"nextBatchId"`
	Halted              bool      `json:"halted"`
	HaltReason          string    `json:"haltReason,omitempty"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// ResumeFrom returns the first raw sequence to read after a restart.
func (s *State) ResumeFrom() int64 {
	if s.ReplayFrom > 0 {
		return s.ReplayFrom
	}
	return s.LastAppliedSequence + 1
}

// VolumeSample is one trade's contribution to the rolling volume.
type VolumeSample struct {
	Timestamp time.Time
	Qty       int64
}

// Snapshot is everything needed to rebuild a market's in-memory state.
type Snapshot struct {
	State         State
	RestingOrders []*orderv1.Order
	Positions     []*positionv1.Position
	Nonces        map[string]int64
	OpenBatch     *settlementv1.Batch
	RecentVolume  []VolumeSample
}

// Delta is the full set of effects of one message, committed atomically.
type Delta struct {
	State     State
	Orders    []*orderv1.Order
	Trades    []matchingv1.Trade
	Positions []*positionv1.Position
	Batches   []*settlementv1.Batch
	// Nonces holds the accounts whose highest accepted nonce moved.
	Nonces map[string]int64
}

// Store persists market state. Apply commits a delta and its watermark in one
// transaction. OrderExists sees every committed order of the market, terminal
// ones included.
//
//go:generate mockgen -source sequencer.go -destination=mock/sequencer_mock.go -package=sequencerv1_mock
type Store interface {
	Load(ctx context.Context, marketID string) (*Snapshot, error)
	Apply(ctx context.Context, delta *Delta) error
	Halt(ctx context.Context, marketID, reason string) error
	OrderExists(ctx context.Context, marketID, orderID string) (bool, error)
}

// Lease guarantees a single writer per market across instances.
type Lease interface {
	Acquire(ctx context.Context, marketID string) (bool, error)
	Renew(ctx context.Context, marketID string) (bool, error)
	Release(ctx context.Context, marketID string) error
}
