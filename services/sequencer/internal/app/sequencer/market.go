package sequencer

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	"github.com/muhammadchandra19/exchange/pkg/util"
	consensusv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/consensus/v1"
	matchingv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/matching/v1"
	orderv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/order/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/orderbook/v1"
	sequencerv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/sequencer/v1"
	"github.com/muhammadchandra19/exchange/services/sequencer/internal/usecase/matching"
	"github.com/muhammadchandra19/exchange/services/sequencer/internal/usecase/orderbook"
	"github.com/muhammadchandra19/exchange/services/sequencer/internal/usecase/position"
	"github.com/muhammadchandra19/exchange/services/sequencer/internal/usecase/settlement"
	"github.com/muhammadchandra19/exchange/services/sequencer/internal/usecase/validator"
	goerrors "github.com/pkg/errors"
)

const volumeSpan = 24 * time.Hour

// Options tune one market loop.
type Options struct {
	MarketID           string
	BatchMaxMessages   int64
	MaxPriceTicks      int64
	SnapshotDepth      int
	LeaseRenewInterval time.Duration
	PersistRetryMax    time.Duration
}

// Market is the single-threaded sequencing loop of one market. It owns the
// market's book, nonces, ledger and open batch; nothing else mutates them.
type Market struct {
	opts     Options
	reader   consensusv1.Reader
	store    sequencerv1.Store
	lease    sequencerv1.Lease
	books    orderbookv1.SnapshotStore
	verifier orderv1.SignatureVerifier
	metrics  *Metrics
	logger   logger.Interface

	book      *orderbook.Orderbook
	engine    *matching.Engine
	validator *validator.Validator
	ledger    *position.Ledger
	batcher   *settlement.Batcher
	volume    *VolumeWindow
	state     sequencerv1.State

	lastRenew time.Time
	now       func() time.Time
}

// NewMarket creates the loop for opts.MarketID.
func NewMarket(
	opts Options,
	reader consensusv1.Reader,
	store sequencerv1.Store,
	lease sequencerv1.Lease,
	books orderbookv1.SnapshotStore,
	verifier orderv1.SignatureVerifier,
	metrics *Metrics,
	log logger.Interface,
) *Market {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Market{
		opts:     opts,
		reader:   reader,
		store:    store,
		lease:    lease,
		books:    books,
		verifier: verifier,
		metrics:  metrics,
		logger:   log.WithFields(logger.Field{Key: "market_id", Value: opts.MarketID}),
		now:      time.Now,
	}
}

// State returns the last committed state.
func (m *Market) State() sequencerv1.State {
	return m.state
}

// Book returns the live book. Only the loop goroutine may touch it.
func (m *Market) Book() orderbookv1.Book {
	return m.book
}

// Run holds the market lease and sequences messages until ctx is cancelled
// or a fatal condition halts the market. Cancellation is honoured only
// between messages.
func (m *Market) Run(ctx context.Context) error {
	ctx = util.WithMarketID(ctx, m.opts.MarketID)

	if err := m.acquire(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	defer func() {
		if err := m.lease.Release(context.Background(), m.opts.MarketID); err != nil {
			m.logger.Error(err, logger.Field{Key: "action", Value: "release_lease"})
		}
	}()

	if err := m.Restore(ctx); err != nil {
		return err
	}
	if err := m.reader.Seek(ctx, m.state.ResumeFrom()); err != nil {
		return err
	}

	m.logger.Info("Market loop started",
		logger.Field{Key: "last_applied", Value: m.state.LastAppliedSequence},
		logger.Field{Key: "resume_from", Value: m.state.ResumeFrom()},
		logger.Field{Key: "resting", Value: m.book.Len()},
	)

	for {
		if ctx.Err() != nil {
			m.logger.Info("Market loop stopped", logger.Field{Key: "last_applied", Value: m.state.LastAppliedSequence})
			return nil
		}
		if err := m.renew(ctx); err != nil {
			return err
		}

		msg, err := m.reader.Next(ctx)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			continue
		case goerrors.Is(err, consensusv1.ErrNoMessage):
			continue
		case errors.IsFatal(err):
			return m.halt(ctx, err)
		default:
			m.logger.WarnContext(ctx, "consensus read failed", logger.Field{Key: "error", Value: err.Error()})
			continue
		}

		if err := m.Step(ctx, msg); err != nil {
			if errors.IsFatal(err) {
				return m.halt(ctx, err)
			}
			return err
		}
	}
}

// Restore rebuilds the in-memory market from the last committed snapshot.
// A halted market refuses to restore.
func (m *Market) Restore(ctx context.Context) error {
	snap, err := m.store.Load(ctx, m.opts.MarketID)
	if err != nil {
		return err
	}
	if snap.State.Halted {
		return errors.NewErrorDetails("market halted: "+snap.State.HaltReason, string(errors.MarketHalted), m.opts.MarketID)
	}

	m.book = orderbook.NewOrderbook(m.opts.MarketID)
	m.engine = matching.NewEngine(m.opts.MarketID, m.book)
	if err := m.engine.Restore(snap.RestingOrders); err != nil {
		return err
	}

	m.validator = validator.NewValidator(validator.Rules{
		MarketID:      m.opts.MarketID,
		MaxPriceTicks: m.opts.MaxPriceTicks,
	}, m.verifier)
	m.validator.Restore(snap.Nonces)

	m.ledger = position.NewLedger(m.opts.MarketID, m.opts.MaxPriceTicks)
	m.ledger.Restore(snap.Positions)

	m.batcher = settlement.NewBatcher(m.opts.MarketID, m.opts.BatchMaxMessages, snap.State.NextBatchID)
	m.batcher.Restore(snap.OpenBatch, snap.State.NextBatchID)

	m.volume = NewVolumeWindow(volumeSpan)
	m.volume.Restore(snap.RecentVolume)

	m.state = snap.State
	m.state.MarketID = m.opts.MarketID
	m.metrics.AppliedSequence.WithLabelValues(m.opts.MarketID).Set(float64(m.state.LastAppliedSequence))
	m.metrics.RestingOrders.WithLabelValues(m.opts.MarketID).Set(float64(m.book.Len()))
	return nil
}

// Step applies one message and commits its effects together with the new
// watermark. Messages at or below the watermark are skipped.
func (m *Market) Step(ctx context.Context, msg *consensusv1.Message) error {
	start := m.now()
	seq := msg.Sequence
	ctx = util.WithSequence(ctx, seq)

	if seq <= m.state.LastAppliedSequence {
		m.metrics.Messages.WithLabelValues(m.opts.MarketID, "skipped").Inc()
		return nil
	}

	res, boundary, outcome, err := m.dispatch(ctx, msg)
	if err != nil {
		return err
	}

	ts := msg.ConsensusTimestamp
	batches := m.batcher.Apply(seq, res.Trades, boundary, ts)
	positions := m.ledger.Apply(res.Trades)
	m.volume.Add(ts, res.Trades)

	next := m.state
	next.LastAppliedSequence = seq
	next.ReplayFrom = seq + 1
	if pending := m.reader.PendingFrom(); pending > 0 && pending < next.ReplayFrom {
		next.ReplayFrom = pending
	}
	if price := res.LastPrice(); price > 0 {
		next.LastMatchedPrice = price
	}
	next.TotalVolume24h = m.volume.Total(ts)
	next.BestBid, next.BestAsk = m.best(ts)
	next.NextBatchID = m.batcher.NextID()
	next.UpdatedAt = ts

	delta := &sequencerv1.Delta{
		State:     next,
		Orders:    res.Orders,
		Trades:    res.Trades,
		Positions: positions,
		Batches:   batches,
		Nonces:    m.validator.Drain(),
	}
	if err := m.persist(ctx, delta); err != nil {
		return err
	}
	m.state = next

	m.publish(ctx)
	m.observe(res, outcome, m.now().Sub(start))
	return nil
}

// dispatch routes a message to the validator, engine or batcher. Rejections
// are results, not errors; only fatal conditions come back as errors.
func (m *Market) dispatch(ctx context.Context, msg *consensusv1.Message) (*matchingv1.Result, bool, string, error) {
	seq := msg.Sequence
	empty := &matchingv1.Result{Sequence: seq}

	if msg.Discarded != "" {
		return empty, false, "discarded", nil
	}

	switch msg.Payload.Type {
	case consensusv1.PayloadOrder:
		return m.place(ctx, msg.Payload.Order, seq, msg.ConsensusTimestamp)
	case consensusv1.PayloadCancel:
		cancel := msg.Payload.Cancel
		if err := m.validator.CheckCancel(cancel); err != nil {
			m.reject(ctx, cancel.OrderID, err)
			return empty, false, "rejected", nil
		}
		res, err := m.engine.Cancel(cancel, seq)
		if err != nil {
			if errors.IsReject(err) {
				m.reject(ctx, cancel.OrderID, err)
				return empty, false, "rejected", nil
			}
			return nil, false, "", err
		}
		return res, false, "cancel", nil
	case consensusv1.PayloadBatchBoundary:
		return empty, true, "boundary", nil
	}
	return empty, false, "discarded", nil
}

func (m *Market) place(ctx context.Context, intent *orderv1.Intent, seq int64, ts time.Time) (*matchingv1.Result, bool, string, error) {
	o := intent.ToOrder(seq)

	// a reused id leaves no trace: no row, no nonce, no match
	seen, err := m.sequenced(ctx, o.ID)
	if err != nil {
		return nil, false, "", err
	}
	if seen {
		m.reject(ctx, o.ID, errors.NewRejectReason(errors.RejectDuplicateOrder, "orderId", "order %s was already sequenced", o.ID))
		return &matchingv1.Result{Sequence: seq}, false, "rejected", nil
	}

	if err := m.validator.Validate(o, ts); err != nil {
		if !errors.IsReject(err) {
			return nil, false, "", err
		}
		return m.rejected(ctx, o, seq, err)
	}

	res, err := m.engine.Place(o, seq, ts)
	if err == nil {
		return res, false, "order", nil
	}
	if errors.IsReject(err) {
		return m.rejected(ctx, o, seq, err)
	}
	return nil, false, "", err
}

// sequenced reports whether an order with id was already committed in this
// market, whatever its status. Only committed orders count, so a restarted
// loop answers exactly as the live one did.
func (m *Market) sequenced(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	if _, resting := m.book.Get(id); resting {
		return true, nil
	}
	exists, err := m.store.OrderExists(ctx, m.opts.MarketID, id)
	if err != nil {
		return false, errors.NewErrorDetailsWithObject(err.Error(), string(errors.TransientReadFailure), m.opts.MarketID, id)
	}
	return exists, nil
}

// rejected records the order as terminal. An order that expired before it
// was sequenced is EXPIRED rather than REJECTED.
func (m *Market) rejected(ctx context.Context, o *orderv1.Order, seq int64, cause error) (*matchingv1.Result, bool, string, error) {
	res := &matchingv1.Result{Sequence: seq}
	m.reject(ctx, o.ID, cause)

	details := errors.AsDetails(cause)
	status := orderv1.StatusRejected
	if details.Code == string(errors.RejectOrderExpired) {
		status = orderv1.StatusExpired
	}
	if err := o.Transition(status, seq); err != nil {
		return nil, false, "", err
	}
	o.RejectReason = details.Code

	if o.ID != "" {
		res.Touch(o)
	}
	return res, false, "rejected", nil
}

func (m *Market) reject(ctx context.Context, orderID string, cause error) {
	code := errors.AsDetails(cause).Code
	m.metrics.Rejects.WithLabelValues(m.opts.MarketID, code).Inc()
	m.logger.InfoContext(ctx, "Order rejected",
		logger.Field{Key: "order_id", Value: orderID},
		logger.Field{Key: "reason", Value: code},
		logger.Field{Key: "detail", Value: cause.Error()},
	)
}

// persist commits delta, retrying transient store failures with exponential
// backoff. A stop request does not abort an attempt in flight; it only ends
// the retries. Giving up leaves the in-memory state ahead of the store, so
// the caller must rebuild from Restore before continuing.
func (m *Market) persist(ctx context.Context, delta *sequencerv1.Delta) error {
	commitCtx := context.WithoutCancel(ctx)
	attempt := 0
	op := func() error {
		attempt++
		if attempt > 1 {
			m.metrics.PersistRetries.WithLabelValues(m.opts.MarketID).Inc()
		}
		return m.store.Apply(commitCtx, delta)
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = m.opts.PersistRetryMax

	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return errors.NewErrorDetailsWithObject(err.Error(), string(errors.TransientReadFailure), m.opts.MarketID, delta.State.LastAppliedSequence)
	}
	return nil
}

// publish pushes the committed view to readers. Failure only delays readers.
func (m *Market) publish(ctx context.Context) {
	if m.books == nil {
		return
	}
	depth := m.book.LiveLevels(m.opts.SnapshotDepth, m.state.UpdatedAt)
	snap := &orderbookv1.Snapshot{
		MarketID:         m.opts.MarketID,
		Sequence:         m.state.LastAppliedSequence,
		Bids:             depth.Bids,
		Asks:             depth.Asks,
		LastMatchedPrice: m.state.LastMatchedPrice,
		TotalVolume24h:   m.state.TotalVolume24h,
		UpdatedAt:        m.state.UpdatedAt,
	}
	if err := m.books.Publish(ctx, snap); err != nil {
		m.logger.WarnContext(ctx, "book snapshot publish failed", logger.Field{Key: "error", Value: err.Error()})
	}
}

func (m *Market) observe(res *matchingv1.Result, outcome string, took time.Duration) {
	market := m.opts.MarketID
	m.metrics.Messages.WithLabelValues(market, outcome).Inc()
	m.metrics.AppliedSequence.WithLabelValues(market).Set(float64(m.state.LastAppliedSequence))
	m.metrics.RestingOrders.WithLabelValues(market).Set(float64(m.book.Len()))
	m.metrics.StepSeconds.WithLabelValues(market).Observe(took.Seconds())
	if n := len(res.Trades); n > 0 {
		m.metrics.Trades.WithLabelValues(market).Add(float64(n))
		m.metrics.Volume.WithLabelValues(market).Add(float64(res.Volume()))
	}
}

// best returns the top live prices at consensus time ts, 0 for an empty side.
func (m *Market) best(ts time.Time) (int64, int64) {
	top := m.book.LiveLevels(1, ts)
	snap := orderbookv1.Snapshot{Bids: top.Bids, Asks: top.Asks}
	return snap.BestBid(), snap.BestAsk()
}

// halt stops forward progress of the market until an operator intervenes.
func (m *Market) halt(ctx context.Context, cause error) error {
	code := string(errors.InvariantViolation)
	if details := errors.AsDetails(cause); details != nil {
		code = details.Code
	}

	m.metrics.Halts.WithLabelValues(m.opts.MarketID, code).Inc()
	m.logger.ErrorContext(ctx, cause,
		logger.Field{Key: "action", Value: "halt_market"},
		logger.Field{Key: "last_applied", Value: m.state.LastAppliedSequence},
		logger.Field{Key: "severity", Value: errors.SeverityOf(errors.ErrorCode(code))},
	)

	if err := m.store.Halt(context.WithoutCancel(ctx), m.opts.MarketID, cause.Error()); err != nil {
		m.logger.ErrorContext(ctx, err, logger.Field{Key: "action", Value: "persist_halt"})
	}
	return cause
}

// acquire waits until this instance holds the market lease.
func (m *Market) acquire(ctx context.Context) error {
	interval := m.opts.LeaseRenewInterval
	if interval <= 0 {
		interval = time.Second
	}

	for {
		ok, err := m.lease.Acquire(ctx, m.opts.MarketID)
		if err != nil {
			m.logger.WarnContext(ctx, "lease acquire failed", logger.Field{Key: "error", Value: err.Error()})
		}
		if ok {
			m.lastRenew = m.now()
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// renew extends the lease once the renew interval has passed. Losing the
// lease stops the loop before another message is applied.
func (m *Market) renew(ctx context.Context) error {
	if m.opts.LeaseRenewInterval <= 0 || m.now().Sub(m.lastRenew) < m.opts.LeaseRenewInterval {
		return nil
	}

	ok, err := m.lease.Renew(ctx, m.opts.MarketID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.NewErrorDetails("lease lost to another instance", string(errors.LeaseNotHeld), m.opts.MarketID)
	}
	m.lastRenew = m.now()
	return nil
}
