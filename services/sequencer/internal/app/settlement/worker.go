package settlement

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	settlementv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/settlement/v1"
	"github.com/prometheus/client_golang/prometheus"
)

// Options tune the settlement worker.
type Options struct {
	MaxAttempts  int
	BaseBackoff  time.Duration
	MaxBackoff   time.Duration
	PollInterval time.Duration
	BatchLimit   int
}

// Worker moves closed batches through submission and confirmation.
//
// Delivery state lives in the local outbox: a CLOSED batch becomes a PENDING
// entry, a successful submit turns it SENT, and a recorded outcome removes it.
// The batch row only ever moves forward, so each batch is confirmed at most once.
type Worker struct {
	repo    settlementv1.Repository
	settler settlementv1.Settler
	outbox  settlementv1.Outbox
	opts    Options
	logger  logger.Interface
	now     func() time.Time

	submissions *prometheus.CounterVec
	outcomes    *prometheus.CounterVec
}

// NewWorker creates a worker and registers its metrics on reg.
func NewWorker(
	repo settlementv1.Repository,
	settler settlementv1.Settler,
	outbox settlementv1.Outbox,
	opts Options,
	reg prometheus.Registerer,
	log logger.Interface,
) *Worker {
	w := &Worker{
		repo:    repo,
		settler: settler,
		outbox:  outbox,
		opts:    opts,
		logger:  log,
		now:     time.Now,
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clob",
			Name:      "settlement_submissions_total",
			Help:      "Settlement submission attempts, by result.",
		}, []string{"result"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clob",
			Name:      "settlement_outcomes_total",
			Help:      "Batches that reached a terminal settlement status.",
		}, []string{"status"}),
	}
	if reg != nil {
		reg.MustRegister(w.submissions, w.outcomes)
	}
	return w
}

// Run ticks every PollInterval until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	w.logger.Info("Settlement worker started", logger.Field{Key: "poll_interval", Value: w.opts.PollInterval.String()})

	for {
		if err := w.Tick(ctx); err != nil && ctx.Err() == nil {
			w.logger.ErrorContext(ctx, err, logger.Field{Key: "action", Value: "settlement_tick"})
		}

		select {
		case <-ctx.Done():
			w.logger.Info("Settlement worker stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Tick runs one pass: enqueue new batches, submit due ones, poll sent ones.
func (w *Worker) Tick(ctx context.Context) error {
	if err := w.enqueue(ctx); err != nil {
		return err
	}
	if err := w.submitDue(ctx); err != nil {
		return err
	}
	return w.pollSent(ctx)
}

// enqueue records every CLOSED batch without an outbox entry. SUBMITTED
// batches missing an entry are adopted so their outcome is still collected.
func (w *Worker) enqueue(ctx context.Context) error {
	now := w.now()

	for _, status := range []settlementv1.Status{settlementv1.StatusClosed, settlementv1.StatusSubmitted} {
		batches, err := w.repo.ListByStatus(ctx, status, w.opts.BatchLimit)
		if err != nil {
			return err
		}

		for _, b := range batches {
			_, found, err := w.outbox.Get(b.MarketID, b.ID)
			if err != nil {
				return err
			}
			if found {
				continue
			}

			entry := &settlementv1.OutboxEntry{
				MarketID:    b.MarketID,
				BatchID:     b.ID,
				State:       settlementv1.OutboxPending,
				NextAttempt: now,
				Batch:       b,
			}
			if status == settlementv1.StatusSubmitted {
				entry.State = settlementv1.OutboxSent
				entry.Reference = b.SettlementRef
			}
			if err := w.outbox.Put(entry); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Worker) submitDue(ctx context.Context) error {
	entries, err := w.outbox.Due(settlementv1.OutboxPending, w.now(), w.opts.BatchLimit)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := w.submit(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

// submit sends one batch. Collaborator failures are retried with exponential
// backoff across ticks until MaxAttempts, then the batch is marked FAILED.
func (w *Worker) submit(ctx context.Context, entry *settlementv1.OutboxEntry) error {
	trades, err := w.repo.Trades(ctx, entry.MarketID, entry.BatchID)
	if err != nil {
		return err
	}

	batch := entry.Batch
	if batch == nil {
		batch = &settlementv1.Batch{ID: entry.BatchID, MarketID: entry.MarketID, Status: settlementv1.StatusClosed}
	}

	entry.Attempts++
	ref, err := w.settler.Submit(ctx, &settlementv1.Request{Batch: batch, Trades: trades})
	if err != nil {
		if !errors.ErrorCodeEquals(err, string(errors.SettlementFailure)) {
			return err
		}
		return w.retryLater(ctx, entry, err)
	}
	w.submissions.WithLabelValues("ok").Inc()

	if _, err := w.repo.MarkSubmitted(ctx, entry.MarketID, entry.BatchID, ref); err != nil {
		return err
	}

	entry.State = settlementv1.OutboxSent
	entry.Reference = ref
	entry.LastError = ""
	entry.NextAttempt = w.now().Add(w.opts.PollInterval)
	return w.outbox.Put(entry)
}

func (w *Worker) retryLater(ctx context.Context, entry *settlementv1.OutboxEntry, cause error) error {
	w.submissions.WithLabelValues("error").Inc()
	entry.LastError = cause.Error()

	if entry.Attempts >= w.opts.MaxAttempts {
		w.logger.ErrorContext(ctx, cause,
			logger.Field{Key: "action", Value: "settlement_gave_up"},
			logger.Field{Key: "batch", Value: entry.Key()},
			logger.Field{Key: "attempts", Value: entry.Attempts},
		)
		return w.fail(ctx, entry, "submission failed after retries: "+cause.Error())
	}

	delay := w.delay(entry.Attempts)
	entry.NextAttempt = w.now().Add(delay)
	w.logger.WarnContext(ctx, "settlement submit failed, will retry",
		logger.Field{Key: "batch", Value: entry.Key()},
		logger.Field{Key: "attempts", Value: entry.Attempts},
		logger.Field{Key: "retry_in", Value: delay.String()},
	)
	return w.outbox.Put(entry)
}

// delay is the wait after the given attempt: BaseBackoff doubling up to MaxBackoff.
func (w *Worker) delay(attempts int) time.Duration {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = w.opts.BaseBackoff
	b.MaxInterval = w.opts.MaxBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()

	var d time.Duration
	for i := 0; i < attempts; i++ {
		d = b.NextBackOff()
	}
	return d
}

func (w *Worker) pollSent(ctx context.Context) error {
	entries, err := w.outbox.Due(settlementv1.OutboxSent, w.now(), w.opts.BatchLimit)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		status, err := w.settler.Poll(ctx, entry.Reference)
		if err != nil {
			return err
		}

		switch status {
		case settlementv1.StatusConfirmed:
			if _, err := w.repo.MarkConfirmed(ctx, entry.MarketID, entry.BatchID); err != nil {
				return err
			}
			w.outcomes.WithLabelValues(string(status)).Inc()
			if err := w.outbox.Delete(entry.MarketID, entry.BatchID); err != nil {
				return err
			}
		case settlementv1.StatusFailed:
			if err := w.fail(ctx, entry, "rejected by settlement"); err != nil {
				return err
			}
		default:
			entry.NextAttempt = w.now().Add(w.opts.PollInterval)
			if err := w.outbox.Put(entry); err != nil {
				return err
			}
		}
	}
	return nil
}

// fail marks the batch FAILED and parks the entry for an operator.
func (w *Worker) fail(ctx context.Context, entry *settlementv1.OutboxEntry, reason string) error {
	if _, err := w.repo.MarkFailed(ctx, entry.MarketID, entry.BatchID, reason); err != nil {
		return err
	}
	w.outcomes.WithLabelValues(string(settlementv1.StatusFailed)).Inc()

	entry.State = settlementv1.OutboxFailed
	entry.LastError = reason
	return w.outbox.Put(entry)
}
