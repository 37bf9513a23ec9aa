package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/dmlopes/processamento/internal/config"
	"github.com/dmlopes/processamento/internal/repository/mongodb"
	"github.com/dmlopes/processamento/internal/scheduler"
	"github.com/dmlopes/processamento/internal/server/handlers"
	"github.com/dmlopes/processamento/internal/server/router"
	metassvc "github.com/dmlopes/processamento/internal/service/metas"
	processamentosvc "github.com/dmlopes/processamento/internal/service/processamento"
	"github.com/dmlopes/processamento/pkg/clients/notify"
	"github.com/dmlopes/processamento/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	repo, err := mongodb.NewRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := repo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	processingSvc := processamentosvc.NewService(repo, baseLogger.Named("svc.processamento"))
	metasSvc := metassvc.NewService(repo, baseLogger.Named("svc.metas"))

	// The notifier is optional; without a webhook URL consolidations are only logged.
	var notifier notify.Client
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewClient(cfg.Notify)
		baseLogger.Info("webhook notifier enabled")
	} else {
		baseLogger.Warn("notify webhook url missing, consolidation notifications disabled")
	}

	location, err := time.LoadLocation(cfg.Processing.Timezone)
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.Error(err))
	}

	processamentoHandler := handlers.NewProcessamentoHandler(processingSvc, notifier, location, baseLogger.Named("handlers.processamento"))
	producaoHandler := handlers.NewProducaoHandler(repo, baseLogger.Named("handlers.producao"))
	metasHandler := handlers.NewMetasHandler(metasSvc, location, baseLogger.Named("handlers.metas"))
	engine := router.New(processamentoHandler, producaoHandler, metasHandler, baseLogger.Named("router"))

	// The cron entry drives the same consolidation path as the manual action.
	sched, err := scheduler.NewScheduler(cfg.Processing, processingSvc, notifier, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
