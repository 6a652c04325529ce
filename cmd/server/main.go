package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/spendfree/spendfree/internal/api"
	"github.com/spendfree/spendfree/internal/clients/cache"
	"github.com/spendfree/spendfree/internal/clients/kafka"
	"github.com/spendfree/spendfree/internal/config"
	"github.com/spendfree/spendfree/internal/logger"
	"github.com/spendfree/spendfree/internal/model/budgets"
	"github.com/spendfree/spendfree/internal/model/ledger"
	"github.com/spendfree/spendfree/internal/model/statements"
	"github.com/spendfree/spendfree/internal/model/taxonomy"
	"github.com/spendfree/spendfree/internal/storage"
	"github.com/spendfree/spendfree/internal/tracing"
)

func main() {
	logger.Info("Server init - start")

	conf, err := config.New()
	if err != nil {
		logger.Fatal("failed to init config:", zap.Error(err))
	}

	closer, err := tracing.Init(conf.App().Name())
	if err != nil {
		logger.Fatal("failed to init tracing:", zap.Error(err))
	}
	defer func() {
		if closeErr := closer.Close(); closeErr != nil {
			logger.Error("failed to close tracer", zap.Error(closeErr))
		}
	}()

	db, err := newStorage(conf)
	if err != nil {
		logger.Fatal("failed to init storage:", zap.Error(err))
	}

	mc, err := cache.NewMemcache(conf.Memcached())
	if err != nil {
		logger.Fatal("failed to init memcache:", zap.Error(err))
	}

	producer, err := kafka.NewProducer(conf.Kafka())
	if err != nil {
		logger.Fatal("failed to init kafka producer:", zap.Error(err))
	}
	defer producer.Close()

	taxonomySvc := taxonomy.NewService(db)
	ledgerSvc := ledger.NewService(db, mc)
	budgetsSvc := budgets.NewService(db, mc)
	statementsSvc := statements.NewService(statements.NewGenerator(db), mc)

	server := api.NewServer(taxonomySvc, ledgerSvc, budgetsSvc, statementsSvc, producer)

	srv := &http.Server{
		Addr:         conf.Server().Addr(),
		Handler:      server.Routes(),
		ReadTimeout:  time.Duration(conf.Server().ReadTimeout()) * time.Second,
		WriteTimeout: time.Duration(conf.Server().WriteTimeout()) * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("Server init - end")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newStorage(conf *config.Service) (storage.Storage, error) {
	if conf.App().MemoryBackend() {
		return storage.NewInMemStorage(), nil
	}
	return storage.NewPostgresStorage(conf.Postgres())
}
