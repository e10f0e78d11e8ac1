package postgresql

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	"github.com/muhammadchandra19/exchange/pkg/postgresql"
	orderv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/order/v1"
	positionv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/position/v1"
	sequencerv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/sequencer/v1"
	settlementv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/settlement/v1"
	goerrors "github.com/pkg/errors"
)

const volumeWindow = 24 * time.Hour

const (
	selectStateQuery = `SELECT last_applied_sequence, replay_from, last_matched_price, total_volume_24h, best_bid, best_ask,
	next_batch_id, halted, halt_reason, updated_at FROM sequencer_state WHERE market_id = $1`

	selectRestingQuery = `SELECT ` + orderColumns + ` FROM orders
	WHERE market_id = $1 AND status IN ('PUBLISHED', 'PARTIAL_FILL') ORDER BY arrival_sequence`

	selectPositionsQuery = `SELECT ` + positionColumns + ` FROM positions WHERE market_id = $1`

	selectNoncesQuery = `SELECT account_id, nonce FROM account_nonces WHERE market_id = $1`

	selectOpenBatchQuery = `SELECT ` + batchColumns + ` FROM batches WHERE market_id = $1 AND status = 'OPEN'`

	selectVolumeQuery = `SELECT executed_at, qty FROM trades
	WHERE market_id = $1 AND executed_at > $2 ORDER BY consensus_sequence, trade_index`

	orderExistsQuery = `SELECT EXISTS (SELECT 1 FROM orders WHERE market_id = $1 AND order_id = $2)`

	upsertOrderQuery = `INSERT INTO orders (` + orderColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	ON CONFLICT (market_id, order_id) DO UPDATE SET
		filled_qty = EXCLUDED.filled_qty,
		status = EXCLUDED.status,
		reject_reason = EXCLUDED.reject_reason,
		last_sequence = EXCLUDED.last_sequence
	WHERE orders.arrival_sequence = EXCLUDED.arrival_sequence AND orders.last_sequence <= EXCLUDED.last_sequence`

	insertTradeQuery = `INSERT INTO trades (` + tradeColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	ON CONFLICT DO NOTHING`

	upsertPositionQuery = `INSERT INTO positions (market_id, account_id, position_type, quantity, cost_basis, avg_entry_price,
		realized_pnl, collateral_locked, last_trade_id, last_sequence, last_trade_index, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (market_id, account_id) DO UPDATE SET
		position_type = EXCLUDED.position_type,
		quantity = EXCLUDED.quantity,
		cost_basis = EXCLUDED.cost_basis,
		avg_entry_price = EXCLUDED.avg_entry_price,
		realized_pnl = EXCLUDED.realized_pnl,
		collateral_locked = EXCLUDED.collateral_locked,
		last_trade_id = EXCLUDED.last_trade_id,
		last_sequence = EXCLUDED.last_sequence,
		last_trade_index = EXCLUDED.last_trade_index,
		updated_at = EXCLUDED.updated_at
	WHERE (positions.last_sequence, positions.last_trade_index) <= (EXCLUDED.last_sequence, EXCLUDED.last_trade_index)`

	upsertBatchQuery = `INSERT INTO batches (` + batchColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (market_id, batch_id) DO UPDATE SET
		window_end = EXCLUDED.window_end,
		trades_count = EXCLUDED.trades_count,
		messages_since_open = EXCLUDED.messages_since_open,
		status = EXCLUDED.status,
		closed_reason = EXCLUDED.closed_reason,
		updated_at = EXCLUDED.updated_at
	WHERE batches.status = 'OPEN'`

	upsertNonceQuery = `INSERT INTO account_nonces (market_id, account_id, nonce) VALUES ($1, $2, $3)
	ON CONFLICT (market_id, account_id) DO UPDATE SET nonce = GREATEST(account_nonces.nonce, EXCLUDED.nonce)`

	upsertStateQuery = `INSERT INTO sequencer_state (market_id, last_applied_sequence, replay_from, last_matched_price,
		total_volume_24h, best_bid, best_ask, next_batch_id, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (market_id) DO UPDATE SET
		last_applied_sequence = EXCLUDED.last_applied_sequence,
		replay_from = EXCLUDED.replay_from,
		last_matched_price = EXCLUDED.last_matched_price,
		total_volume_24h = EXCLUDED.total_volume_24h,
		best_bid = EXCLUDED.best_bid,
		best_ask = EXCLUDED.best_ask,
		next_batch_id = EXCLUDED.next_batch_id,
		updated_at = EXCLUDED.updated_at
	WHERE sequencer_state.last_applied_sequence <= EXCLUDED.last_applied_sequence`

	haltQuery = `INSERT INTO sequencer_state (market_id, halted, halt_reason, updated_at) VALUES ($1, TRUE, $2, $3)
	ON CONFLICT (market_id) DO UPDATE SET halted = TRUE, halt_reason = EXCLUDED.halt_reason, updated_at = EXCLUDED.updated_at`
)

// Store keeps market state in PostgreSQL. Every write is an idempotent upsert
// guarded by sequence, so replaying an already committed delta changes nothing.
type Store struct {
	db     postgresql.PostgreSQLClient
	tx     postgresql.Transactor
	logger logger.Interface
	now    func() time.Time
}

var _ sequencerv1.Store = (*Store)(nil)

// NewStore creates a new Store.
func NewStore(db postgresql.PostgreSQLClient, tx postgresql.Transactor, logger logger.Interface) *Store {
	return &Store{
		db:     db,
		tx:     tx,
		logger: logger,
		now:    time.Now,
	}
}

// Load reads the committed snapshot of a market. A market never seen before
// yields an empty snapshot starting at sequence 1.
func (s *Store) Load(ctx context.Context, marketID string) (*sequencerv1.Snapshot, error) {
	snap := &sequencerv1.Snapshot{
		State:  sequencerv1.State{MarketID: marketID, NextBatchID: 1},
		Nonces: make(map[string]int64),
	}

	state := &snap.State
	err := s.db.QueryRow(ctx, selectStateQuery, marketID).Scan(
		&state.LastAppliedSequence,
		&state.ReplayFrom,
		&state.LastMatchedPrice,
		&state.TotalVolume24h,
		&state.BestBid,
		&state.BestAsk,
		&state.NextBatchID,
		&state.Halted,
		&state.HaltReason,
		&state.UpdatedAt,
	)
	switch {
	case goerrors.Is(err, pgx.ErrNoRows):
		s.logger.Info("No committed state, starting fresh", logger.Field{Key: "market_id", Value: marketID})
		return snap, nil
	case err != nil:
		return nil, errors.TracerFromError(err)
	}
	state.UpdatedAt = state.UpdatedAt.UTC()

	if snap.RestingOrders, err = s.restingOrders(ctx, marketID); err != nil {
		return nil, err
	}
	if snap.Positions, err = s.positions(ctx, marketID); err != nil {
		return nil, err
	}
	if err = s.nonces(ctx, marketID, snap.Nonces); err != nil {
		return nil, err
	}
	if snap.OpenBatch, err = s.openBatch(ctx, marketID); err != nil {
		return nil, err
	}
	if snap.RecentVolume, err = s.recentVolume(ctx, marketID, state.UpdatedAt.Add(-volumeWindow)); err != nil {
		return nil, err
	}

	s.logger.Info("Loaded market snapshot",
		logger.Field{Key: "market_id", Value: marketID},
		logger.Field{Key: "last_applied_sequence", Value: state.LastAppliedSequence},
		logger.Field{Key: "resting_orders", Value: len(snap.RestingOrders)},
		logger.Field{Key: "positions", Value: len(snap.Positions)},
	)

	return snap, nil
}

func (s *Store) restingOrders(ctx context.Context, marketID string) ([]*orderv1.Order, error) {
	rows, err := s.db.Query(ctx, selectRestingQuery, marketID)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	defer rows.Close()

	var orders []*orderv1.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, errors.TracerFromError(err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.TracerFromError(err)
	}
	return orders, nil
}

func (s *Store) positions(ctx context.Context, marketID string) ([]*positionv1.Position, error) {
	rows, err := s.db.Query(ctx, selectPositionsQuery, marketID)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	defer rows.Close()

	var positions []*positionv1.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, errors.TracerFromError(err)
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.TracerFromError(err)
	}
	return positions, nil
}

func (s *Store) nonces(ctx context.Context, marketID string, into map[string]int64) error {
	rows, err := s.db.Query(ctx, selectNoncesQuery, marketID)
	if err != nil {
		return errors.TracerFromError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			account string
			nonce   int64
		)
		if err := rows.Scan(&account, &nonce); err != nil {
			return errors.TracerFromError(err)
		}
		into[account] = nonce
	}
	if err := rows.Err(); err != nil {
		return errors.TracerFromError(err)
	}
	return nil
}

func (s *Store) openBatch(ctx context.Context, marketID string) (*settlementv1.Batch, error) {
	b, err := scanBatch(s.db.QueryRow(ctx, selectOpenBatchQuery, marketID))
	if goerrors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	return b, nil
}

func (s *Store) recentVolume(ctx context.Context, marketID string, since time.Time) ([]sequencerv1.VolumeSample, error) {
	rows, err := s.db.Query(ctx, selectVolumeQuery, marketID, since)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	defer rows.Close()

	var samples []sequencerv1.VolumeSample
	for rows.Next() {
		var v sequencerv1.VolumeSample
		if err := rows.Scan(&v.Timestamp, &v.Qty); err != nil {
			return nil, errors.TracerFromError(err)
		}
		v.Timestamp = v.Timestamp.UTC()
		samples = append(samples, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.TracerFromError(err)
	}
	return samples, nil
}

// Apply commits every effect of one message together with the new watermark.
func (s *Store) Apply(ctx context.Context, delta *sequencerv1.Delta) error {
	batch := &pgx.Batch{}
	for _, o := range delta.Orders {
		batch.Queue(upsertOrderQuery, orderArgs(o)...)
	}
	for i := range delta.Trades {
		batch.Queue(insertTradeQuery, tradeArgs(&delta.Trades[i])...)
	}
	for _, p := range delta.Positions {
		batch.Queue(upsertPositionQuery, positionArgs(p)...)
	}
	for _, b := range delta.Batches {
		batch.Queue(upsertBatchQuery, batchArgs(b)...)
	}
	for account, nonce := range delta.Nonces {
		batch.Queue(upsertNonceQuery, delta.State.MarketID, account, nonce)
	}

	st := delta.State
	batch.Queue(upsertStateQuery,
		st.MarketID,
		st.LastAppliedSequence,
		st.ReplayFrom,
		st.LastMatchedPrice,
		st.TotalVolume24h,
		st.BestBid,
		st.BestAsk,
		st.NextBatchID,
		st.UpdatedAt,
	)

	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		results := s.db.SendBatch(txCtx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return err
			}
		}
		return results.Close()
	})
	if err != nil {
		s.logger.ErrorContext(ctx, err,
			logger.Field{Key: "action", Value: "apply_delta"},
			logger.Field{Key: "market_id", Value: st.MarketID},
			logger.Field{Key: "sequence", Value: st.LastAppliedSequence},
		)
		return errors.TracerFromError(err)
	}

	return nil
}

// OrderExists reports whether orderID was ever committed in marketID.
func (s *Store) OrderExists(ctx context.Context, marketID, orderID string) (bool, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, orderExistsQuery, marketID, orderID).Scan(&exists); err != nil {
		return false, errors.TracerFromError(err)
	}
	return exists, nil
}

// Halt marks the market as halted so no instance resumes it without an operator.
func (s *Store) Halt(ctx context.Context, marketID, reason string) error {
	if _, err := s.db.Exec(ctx, haltQuery, marketID, reason, s.now().UTC()); err != nil {
		return errors.TracerFromError(err)
	}
	s.logger.Warn("Market halted",
		logger.Field{Key: "market_id", Value: marketID},
		logger.Field{Key: "reason", Value: reason},
	)
	return nil
}
