package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fitquest/internal/config"
	"github.com/fitquest/internal/db"
	"github.com/fitquest/internal/handler"
	"github.com/fitquest/internal/jobs"
	"github.com/fitquest/internal/logging"
	"github.com/fitquest/internal/router"
	"github.com/fitquest/internal/service"
	"github.com/fitquest/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("server stopped with error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 初始化存储
	st, err := store.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize %s store: %w", cfg.StoreBackend, err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("failed to close store", zap.Error(err))
		}
	}()

	healthDB, closeHealthDB, err := openHealthDB(cfg, st)
	if err != nil {
		return fmt.Errorf("open health database: %w", err)
	}
	defer closeHealthDB()

	tracker := service.NewTracker(st, logger, cfg.Location())
	tracker.Init(ctx)

	if cfg.SettlementEnabled {
		scheduler := jobs.NewScheduler(tracker, cfg.SettlementCron, cfg.Location(), logger)
		if err := scheduler.Start(ctx); err != nil {
			return fmt.Errorf("start settlement scheduler: %w", err)
		}
		defer scheduler.Stop()
	}

	api := handler.NewAPI(tracker, service.NewHealthService(healthDB), logger)
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router.SetupRouter(cfg, api, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.ListenAddr), zap.String("store", cfg.StoreBackend))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// openHealthDB 健康记录始终存放在 SQLite；sqlite 后端时复用同一个连接
func openHealthDB(cfg config.AppConfig, st store.Store) (*gorm.DB, func(), error) {
	if gs, ok := st.(*store.GormStore); ok {
		return gs.DB(), func() {}, nil
	}

	gdb, err := db.Open(cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	return gdb, func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}, nil
}
