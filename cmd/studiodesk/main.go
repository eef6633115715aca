package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"studiodesk/internal/amqp"
	"studiodesk/internal/backup"
	"studiodesk/internal/cache"
	"studiodesk/internal/cli"
	"studiodesk/internal/core"
	apphttp "studiodesk/internal/http"
	"studiodesk/internal/log"
	"studiodesk/internal/services"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentApp)

	repo := cli.InitSQLite(logger, cfg.DBPath)

	// The broker is optional; without it transactions stay local-only and
	// the mirror worker catches up from sync_status later.
	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without sync events", log.FieldError, err)
			amqpClient = nil
		} else {
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	backups := backup.NewManager(cfg.DBPath, cfg.BackupDir)

	summaries := cache.NewLRUCache[core.Summary](100, 30*time.Second)
	caches := cache.NewManager()
	caches.Register(summaries)
	caches.StartCleanup(10 * time.Minute)
	defer caches.Stop()

	ledger := services.NewLedgerService(repo, amqpClient, backups, summaries)
	defer ledger.Close()
	messages := services.NewMessageService(repo)

	srv := apphttp.NewServer(":"+cfg.Port, logger, ledger, messages)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting studiodesk server", "port", cfg.Port, "db", cfg.DBPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return backups.Run(gctx, cfg.BackupInitialDelay, cfg.BackupInterval)
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}
