package postgresql

import (
	"time"

	matchingv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/matching/v1"
	orderv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/order/v1"
	positionv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/position/v1"
	settlementv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/settlement/v1"
)

// scanner is satisfied by pgx.Row and postgresql.RowsInterface.
type scanner interface {
	Scan(dest ...any) error
}

const orderColumns = `order_id, market_id, maker, side, price_ticks, qty, filled_qty, time_in_force, expiry,
	nonce, max_collateral, signature, status, reject_reason, arrival_sequence, last_sequence`

func scanOrder(row scanner) (*orderv1.Order, error) {
	var (
		o                 orderv1.Order
		side, tif, status string
		expiry            *time.Time
	)
	err := row.Scan(
		&o.ID,
		&o.MarketID,
		&o.Maker,
		&side,
		&o.PriceTicks,
		&o.Qty,
		&o.FilledQty,
		&tif,
		&expiry,
		&o.Nonce,
		&o.MaxCollateral,
		&o.Signature,
		&status,
		&o.RejectReason,
		&o.ArrivalSequence,
		&o.LastSequence,
	)
	if err != nil {
		return nil, err
	}
	o.Side = orderv1.Side(side)
	o.TimeInForce = orderv1.TimeInForce(tif)
	o.Status = orderv1.Status(status)
	if expiry != nil {
		t := expiry.UTC()
		o.Expiry = &t
	}
	return &o, nil
}

func orderArgs(o *orderv1.Order) []any {
	return []any{
		o.ID,
		o.MarketID,
		o.Maker,
		string(o.Side),
		o.PriceTicks,
		o.Qty,
		o.FilledQty,
		string(o.TimeInForce),
		o.Expiry,
		o.Nonce,
		o.MaxCollateral,
		o.Signature,
		string(o.Status),
		o.RejectReason,
		o.ArrivalSequence,
		o.LastSequence,
	}
}

const tradeColumns = `trade_id, market_id, batch_id, buy_order_id, sell_order_id, maker_order_id, taker_side,
	price_ticks, qty, buyer_account_id, seller_account_id, consensus_sequence, trade_index, executed_at`

func scanTrade(row scanner) (matchingv1.Trade, error) {
	var (
		t         matchingv1.Trade
		takerSide string
	)
	err := row.Scan(
		&t.ID,
		&t.MarketID,
		&t.BatchID,
		&t.BuyOrderID,
		&t.SellOrderID,
		&t.MakerOrderID,
		&takerSide,
		&t.PriceTicks,
		&t.Qty,
		&t.BuyerAccountID,
		&t.SellerAccountID,
		&t.ConsensusSequence,
		&t.Index,
		&t.Timestamp,
	)
	t.TakerSide = orderv1.Side(takerSide)
	t.Timestamp = t.Timestamp.UTC()
	return t, err
}

func tradeArgs(t *matchingv1.Trade) []any {
	return []any{
		t.ID,
		t.MarketID,
		t.BatchID,
		t.BuyOrderID,
		t.SellOrderID,
		t.MakerOrderID,
		string(t.TakerSide),
		t.PriceTicks,
		t.Qty,
		t.BuyerAccountID,
		t.SellerAccountID,
		t.ConsensusSequence,
		t.Index,
		t.Timestamp,
	}
}

const positionColumns = `market_id, account_id, position_type, quantity, cost_basis, realized_pnl,
	collateral_locked, last_trade_id, last_sequence, last_trade_index, updated_at`

func scanPosition(row scanner) (*positionv1.Position, error) {
	var (
		p   positionv1.Position
		typ string
	)
	err := row.Scan(
		&p.MarketID,
		&p.AccountID,
		&typ,
		&p.Quantity,
		&p.CostBasis,
		&p.RealizedPnl,
		&p.CollateralLocked,
		&p.LastTradeID,
		&p.LastSequence,
		&p.LastTradeIndex,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Type = positionv1.Type(typ)
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

func positionArgs(p *positionv1.Position) []any {
	return []any{
		p.MarketID,
		p.AccountID,
		string(p.Type),
		p.Quantity,
		p.CostBasis,
		p.AvgEntryPrice(),
		p.RealizedPnl,
		p.CollateralLocked,
		p.LastTradeID,
		p.LastSequence,
		p.LastTradeIndex,
		p.UpdatedAt,
	}
}

const batchColumns = `market_id, batch_id, window_start, window_end, trades_count, messages_since_open,
	status, closed_reason, settlement_ref, failure_reason, updated_at`

func scanBatch(row scanner) (*settlementv1.Batch, error) {
	var (
		b      settlementv1.Batch
		status string
	)
	err := row.Scan(
		&b.MarketID,
		&b.ID,
		&b.WindowStart,
		&b.WindowEnd,
		&b.TradesCount,
		&b.MessagesSinceOpen,
		&status,
		&b.ClosedReason,
		&b.SettlementRef,
		&b.FailureReason,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Status = settlementv1.Status(status)
	b.UpdatedAt = b.UpdatedAt.UTC()
	return &b, nil
}

func batchArgs(b *settlementv1.Batch) []any {
	return []any{
		b.MarketID,
		b.ID,
		b.WindowStart,
		b.WindowEnd,
		b.TradesCount,
		b.MessagesSinceOpen,
		string(b.Status),
		b.ClosedReason,
		b.SettlementRef,
		b.FailureReason,
		b.UpdatedAt,
	}
}
