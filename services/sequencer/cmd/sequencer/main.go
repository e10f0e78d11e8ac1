package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/muhammadchandra19/exchange/pkg/config"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	"github.com/muhammadchandra19/exchange/services/sequencer/internal/bootstrap"
	seqconfig "github.com/muhammadchandra19/exchange/services/sequencer/pkg/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := &seqconfig.Config{}
	config.MustLoad(cfg)

	log, err := bootstrap.NewLogger(cfg.AppConfig)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	db, rclient, err := bootstrap.Connect(ctx, cfg, log)
	if err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "connect"})
		return
	}

	b := (&bootstrap.Bootstrap{}).Init(bootstrap.BootstrapConfig{
		Config:   cfg,
		Logger:   log,
		Postgres: db,
		Redis:    rclient,
	})
	b.RegisterSequencer()
	if err := b.RegisterSettlement(); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "register_settlement"})
		b.Close(context.Background())
		return
	}

	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           b.HealthCheck().Handler(promhttp.HandlerFor(b.Registry, promhttp.HandlerOpts{})),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return b.Sequencer.Manager.Run(gctx)
	})
	g.Go(func() error {
		return b.Settlement.Worker.Run(gctx)
	})
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, logger.Field{Key: "action", Value: "serve_metrics"})
		}
	}()

	log.Info("Sequencer started",
		logger.Field{Key: "markets", Value: cfg.Markets},
		logger.Field{Key: "owner", Value: b.Sequencer.Owner},
		logger.Field{Key: "metrics_addr", Value: cfg.MetricsAddr},
	)

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	stopped := false
	select {
	case sig := <-sigChan:
		log.Info("Received shutdown signal", logger.Field{Key: "signal", Value: sig.String()})
	case err := <-done:
		stopped = true
		if err != nil {
			log.Error(err, logger.Field{Key: "action", Value: "run"})
		}
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer shutdownCancel()

	if !stopped {
		select {
		case <-done:
		case <-shutdownCtx.Done():
			log.Warn("Shutdown grace period elapsed before loops stopped")
		}
	}

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "stop_metrics"})
	}
	b.Close(shutdownCtx)

	log.Info("Sequencer shutdown complete")
}
