package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/muhammadchandra19/exchange/pkg/config"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	"github.com/muhammadchandra19/exchange/services/sequencer/internal/bootstrap"
	seqconfig "github.com/muhammadchandra19/exchange/services/sequencer/pkg/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := &seqconfig.Config{}
	config.MustLoad(cfg)

	log, err := bootstrap.NewLogger(cfg.AppConfig)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	gin.SetMode(gin.ReleaseMode)

	ctx := context.Background()
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
	if err := b.RegisterIntake(); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "register_intake"})
		b.Close(ctx)
		return
	}
	b.Intake.Router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(b.Registry, promhttp.HandlerOpts{})))

	server := &http.Server{
		Addr:              cfg.IntakeAddr,
		Handler:           b.Intake.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, logger.Field{Key: "action", Value: "serve_intake"})
			sigChan <- syscall.SIGTERM
		}
	}()

	log.Info("Intake started",
		logger.Field{Key: "addr", Value: cfg.IntakeAddr},
		logger.Field{Key: "markets", Value: cfg.Markets},
	)

	sig := <-sigChan
	log.Info("Received shutdown signal", logger.Field{Key: "signal", Value: sig.String()})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "stop_intake"})
	}
	b.Close(shutdownCtx)

	log.Info("Intake shutdown complete")
}
