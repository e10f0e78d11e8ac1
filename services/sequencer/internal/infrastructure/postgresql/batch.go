package postgresql

import (
	"context"

	"github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	"github.com/muhammadchandra19/exchange/pkg/postgresql"
	matchingv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/matching/v1"
	settlementv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/settlement/v1"
)

const (
	listBatchesQuery = `SELECT ` + batchColumns + ` FROM batches WHERE status = $1 ORDER BY updated_at, market_id, batch_id LIMIT $2`

	batchTradesQuery = `SELECT ` + tradeColumns + ` FROM trades
	WHERE market_id = $1 AND batch_id = $2 ORDER BY consensus_sequence, trade_index`

	markSubmittedQuery = `UPDATE batches SET status = 'SUBMITTED', settlement_ref = $1, updated_at = NOW()
	WHERE market_id = $2 AND batch_id = $3 AND status = 'CLOSED'`

	markOutcomeQuery = `UPDATE batches SET status = $1, failure_reason = $2, updated_at = NOW()
	WHERE market_id = $3 AND batch_id = $4 AND status = ANY($5)`
)

// BatchRepository advances closed batches through settlement.
type BatchRepository struct {
	db     postgresql.PostgreSQLClient
	logger logger.Interface
}

var _ settlementv1.Repository = (*BatchRepository)(nil)

// NewBatchRepository creates a new BatchRepository.
func NewBatchRepository(db postgresql.PostgreSQLClient, logger logger.Interface) *BatchRepository {
	return &BatchRepository{
		db:     db,
		logger: logger,
	}
}

// ListByStatus returns up to limit batches in status, oldest first.
func (r *BatchRepository) ListByStatus(ctx context.Context, status settlementv1.Status, limit int) ([]*settlementv1.Batch, error) {
	rows, err := r.db.Query(ctx, listBatchesQuery, string(status), limit)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	defer rows.Close()

	var batches []*settlementv1.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, errors.TracerFromError(err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.TracerFromError(err)
	}
	return batches, nil
}

// Trades returns the trades of a batch in consensus order.
func (r *BatchRepository) Trades(ctx context.Context, marketID string, batchID int64) ([]matchingv1.Trade, error) {
	rows, err := r.db.Query(ctx, batchTradesQuery, marketID, batchID)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	defer rows.Close()

	var trades []matchingv1.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, errors.TracerFromError(err)
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.TracerFromError(err)
	}
	return trades, nil
}

// MarkSubmitted moves a CLOSED batch to SUBMITTED and records the settlement reference.
func (r *BatchRepository) MarkSubmitted(ctx context.Context, marketID string, batchID int64, reference string) (bool, error) {
	cmd, err := r.db.Exec(ctx, markSubmittedQuery, reference, marketID, batchID)
	if err != nil {
		return false, errors.TracerFromError(err)
	}
	return r.changed(marketID, batchID, settlementv1.StatusSubmitted, cmd.RowsAffected()), nil
}

// MarkConfirmed moves a SUBMITTED batch to CONFIRMED.
func (r *BatchRepository) MarkConfirmed(ctx context.Context, marketID string, batchID int64) (bool, error) {
	return r.markOutcome(ctx, marketID, batchID, settlementv1.StatusConfirmed, "")
}

// MarkFailed moves a CLOSED or SUBMITTED batch to FAILED.
func (r *BatchRepository) MarkFailed(ctx context.Context, marketID string, batchID int64, reason string) (bool, error) {
	return r.markOutcome(ctx, marketID, batchID, settlementv1.StatusFailed, reason)
}

func (r *BatchRepository) markOutcome(ctx context.Context, marketID string, batchID int64, next settlementv1.Status, reason string) (bool, error) {
	var from []string
	for _, s := range []settlementv1.Status{settlementv1.StatusClosed, settlementv1.StatusSubmitted} {
		if s.CanTransition(next) {
			from = append(from, string(s))
		}
	}

	cmd, err := r.db.Exec(ctx, markOutcomeQuery, string(next), reason, marketID, batchID, from)
	if err != nil {
		return false, errors.TracerFromError(err)
	}
	return r.changed(marketID, batchID, next, cmd.RowsAffected()), nil
}

func (r *BatchRepository) changed(marketID string, batchID int64, next settlementv1.Status, affected int64) bool {
	r.logger.Info("Updated batch status",
		logger.Field{Key: "market_id", Value: marketID},
		logger.Field{Key: "batch_id", Value: batchID},
		logger.Field{Key: "status", Value: next},
		logger.Field{Key: "changed", Value: affected > 0},
	)
	return affected > 0
}
