package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/qseq/internal/config"
	"github.com/kailas-cloud/qseq/internal/db"
	dbRedis "github.com/kailas-cloud/qseq/internal/db/redis"
	logpkg "github.com/kailas-cloud/qseq/internal/logger"
	"github.com/kailas-cloud/qseq/internal/metrics"
	"github.com/kailas-cloud/qseq/internal/repository/resultcache"
	chiTransport "github.com/kailas-cloud/qseq/internal/transport/chi"
	"github.com/kailas-cloud/qseq/internal/version"
	healthuc "github.com/kailas-cloud/qseq/internal/usecase/health"
	searchuc "github.com/kailas-cloud/qseq/internal/usecase/search"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting qseq API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Int("max_size", cfg.Search.MaxSize),
	)

	// Keep the interface nil when caching is off: a typed nil *Store wrapped
	// in db.Store would pass the nil checks downstream.
	store, err := openStore(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	if store != nil {
		defer store.Close()

		ctx := context.Background()
		timeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, timeout); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database")
	} else {
		logger.Info("Result cache disabled")
	}

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	var cache searchuc.ResultCache
	if store != nil {
		cache = resultcache.New(store, cfg.Storage.ResultTTL(), metrics.ResultCacheTotal, logger)
	}

	searchSvc := searchuc.New(searchuc.NewEngine(), cache, logger).
		WithMaxSize(cfg.Search.MaxSize)

	var pinger healthuc.DBPinger
	if store != nil {
		pinger = store
	}
	healthSvc := healthuc.New(pinger, searchSvc)

	server := chiTransport.NewServer(searchSvc, healthSvc, chiTransport.Limits{
		DefaultWorkers: cfg.Search.DefaultWorkers,
		MaxLeaves:      cfg.Search.MaxLeaves,
		Timeout:        cfg.Search.Timeout(),
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, cfg.Auth.APIKeys, logger),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// openStore connects the result cache backend. Redis and Valkey speak the
// same protocol and share one client.
func openStore(cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverRedis, config.DriverValkey:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
			RESP2:    cfg.RESP2,
		})
		if err != nil {
			return nil, fmt.Errorf("%s store: %w", cfg.Driver, err)
		}
		return s, nil
	case config.DriverNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
