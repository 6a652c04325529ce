package main

import (
	"context"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/spendfree/spendfree/internal/clients/cache"
	"github.com/spendfree/spendfree/internal/clients/kafka"
	"github.com/spendfree/spendfree/internal/config"
	"github.com/spendfree/spendfree/internal/logger"
	"github.com/spendfree/spendfree/internal/model/statements"
	"github.com/spendfree/spendfree/internal/storage"
)

func main() {
	logger.Info("Statementd init - start")

	conf, err := config.New()
	if err != nil {
		logger.Fatal("failed to init config:", zap.Error(err))
	}

	db, err := storage.NewPostgresStorage(conf.Postgres())
	if err != nil {
		logger.Fatal("failed to init postgres:", zap.Error(err))
	}

	mc, err := cache.NewMemcache(conf.Memcached())
	if err != nil {
		logger.Fatal("failed to init memcache:", zap.Error(err))
	}

	statementsSvc := statements.NewService(statements.NewGenerator(db), mc)

	consumer, err := kafka.NewConsumer(conf.Kafka(), statementsSvc)
	if err != nil {
		logger.Fatal("failed to init kafka consumer", zap.Error(err))
	}

	logger.Info("Statementd init - end")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err = consumer.StartConsuming(ctx); err != nil {
		logger.Fatal("failed to start consuming")
	}
}
