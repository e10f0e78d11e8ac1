package sequencer

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Runner is one market loop as seen by the Manager.
type Runner interface {
	Run(ctx context.Context) error
}

// Manager runs one loop per market. Markets share no state: a halted market
// stops alone and the others keep sequencing.
type Manager struct {
	markets map[string]Runner
	logger  logger.Interface

	restartBackoff func() backoff.BackOff
}

// NewManager creates a manager over markets keyed by market id.
func NewManager(markets map[string]Runner, log logger.Interface) *Manager {
	return &Manager{
		markets: markets,
		logger:  log,
		restartBackoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 30 * time.Second
			b.MaxElapsedTime = 0
			return b
		},
	}
}

// Run blocks until ctx is cancelled and every loop has returned.
func (m *Manager) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for id, market := range m.markets {
		g.Go(func() error {
			m.supervise(gctx, id, market)
			return nil
		})
	}

	m.logger.Info("Sequencer started", logger.Field{Key: "markets", Value: len(m.markets)})
	err := g.Wait()
	m.logger.Info("Sequencer stopped")
	return err
}

// supervise restarts a loop after recoverable failures. Fatal conditions and
// halted markets end supervision for that market only.
func (m *Manager) supervise(ctx context.Context, id string, market Runner) {
	log := m.logger.WithFields(logger.Field{Key: "market_id", Value: id})
	b := backoff.WithContext(m.restartBackoff(), ctx)

	for {
		err := market.Run(ctx)
		switch {
		case ctx.Err() != nil:
			return
		case err == nil:
			return
		case errors.IsFatal(err):
			log.Error(err, logger.Field{Key: "action", Value: "market_halted"})
			return
		case errors.ErrorCodeEquals(err, string(errors.MarketHalted)):
			log.Warn("Market is halted, not starting", logger.Field{Key: "reason", Value: err.Error()})
			return
		}

		wait := b.NextBackOff()
		if wait == backoff.Stop {
			return
		}
		log.Warn("Market loop failed, restarting",
			logger.Field{Key: "error", Value: err.Error()},
			logger.Field{Key: "retry_in", Value: wait.String()},
		)

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}
