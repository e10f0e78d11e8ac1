package settlementv1

import (
	"context"
	"fmt"
	"time"

	"github.com/muhammadchandra19/exchange/pkg/errors"
	matchingv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/matching/v1"
)

// Status is the settlement lifecycle of a batch.
// OPEN and CLOSED together are the pending phase.
type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusClosed    Status = "CLOSED"
	StatusSubmitted Status = "SUBMITTED"
	StatusConfirmed Status = "CONFIRMED"
	StatusFailed    Status = "FAILED"
)

// A CLOSED batch fails directly once its submission retries are exhausted.
var transitions = map[Status][]Status{
	StatusOpen:      {StatusClosed},
	StatusClosed:    {StatusSubmitted, StatusFailed},
	StatusSubmitted: {StatusConfirmed, StatusFailed},
}

// CanTransition reports whether next follows s in the batch lifecycle.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the batch is done.
func (s Status) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusFailed
}

// Closing reasons recorded on a batch.
const (
	ClosedByBoundary = "boundary"
	ClosedByCount    = "message_count"
)

// Batch groups the trades of a contiguous sequence window for settlement.
type Batch struct {
	ID                int64     `json:"batchId"`
	MarketID          string    `json:"marketId"`
	WindowStart       int64     `json:"windowStart"`
	WindowEnd         int64     `json:"windowEnd"`
	TradesCount       int       `json:"tradesCount"`
	MessagesSinceOpen int64     `json:"messagesSinceOpen"`
	Status            Status    `json:"status"`
	ClosedReason      string    `json:"closedReason,omitempty"`
	SettlementRef     string    `json:"settlementRef,omitempty"`
	FailureReason     string    `json:"failureReason,omitempty"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Key identifies the batch across markets.
func (b *Batch) Key() string {
	return Key(b.MarketID, b.ID)
}

// Key builds the cross-market identifier of a batch.
func Key(marketID string, batchID int64) string {
	return fmt.Sprintf("%s:%d", marketID, batchID)
}

// Transition moves the batch forward or fails with an invariant violation.
func (b *Batch) Transition(next Status) error {
	if !b.Status.CanTransition(next) {
		return errors.NewInvariantViolation(b.MarketID, "batch %d cannot move from %s to %s", b.ID, b.Status, next)
	}
	b.Status = next
	return nil
}

// Clone returns a copy of the batch.
func (b *Batch) Clone() *Batch {
	c := *b
	return &c
}

// Request is what gets submitted to the settlement collaborator.
type Request struct {
	Batch  *Batch             `json:"batch"`
	Trades []matchingv1.Trade `json:"trades"`
}

// OutboxState tracks delivery of a batch to the settlement collaborator.
type OutboxState string

const (
	OutboxPending OutboxState = "PENDING"
	OutboxSent    OutboxState = "SENT"
	OutboxFailed  OutboxState = "FAILED"
)

// OutboxEntry is the local delivery record for one closed batch.
type OutboxEntry struct {
	MarketID    string      `json:"marketId"`
	BatchID     int64       `json:"batchId"`
	State       OutboxState `json:"state"`
	Attempts    int         `json:"attempts"`
	NextAttempt time.Time   `json:"nextAttempt"`
	Reference   string      `json:"reference,omitempty"`
	LastError   string      `json:"lastError,omitempty"`
	Batch       *Batch      `json:"batch,omitempty"`
}

// Key identifies the entry.
func (e *OutboxEntry) Key() string {
	return Key(e.MarketID, e.BatchID)
}

// Settler submits batches and reports their outcome.
//
//go:generate mockgen -source settlement.go -destination=mock/settlement_mock.go -package=settlementv1_mock
type Settler interface {
	// Submit hands the batch to the collaborator and returns its reference.
	Submit(ctx context.Context, req *Request) (string, error)
	// Poll returns SUBMITTED while the outcome is unknown, otherwise CONFIRMED or FAILED.
	Poll(ctx context.Context, reference string) (Status, error)
}

// Repository reads and advances batches after they are closed by the sequencer.
// Mark methods report false when the batch was not in the expected state.
type Repository interface {
	ListByStatus(ctx context.Context, status Status, limit int) ([]*Batch, error)
	Trades(ctx context.Context, marketID string, batchID int64) ([]matchingv1.Trade, error)
	MarkSubmitted(ctx context.Context, marketID string, batchID int64, reference string) (bool, error)
	MarkConfirmed(ctx context.Context, marketID string, batchID int64) (bool, error)
	MarkFailed(ctx context.Context, marketID string, batchID int64, reason string) (bool, error)
}

// Outbox is durable local bookkeeping of submission attempts.
type Outbox interface {
	Get(marketID string, batchID int64) (*OutboxEntry, bool, error)
	Put(entry *OutboxEntry) error
	Delete(marketID string, batchID int64) error
	// Due returns entries in state whose NextAttempt is not after now.
	Due(state OutboxState, now time.Time, limit int) ([]*OutboxEntry, error)
	Close() error
}
