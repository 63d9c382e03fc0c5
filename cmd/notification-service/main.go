package main

import (
	"context"
	"errors"
	"os"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/shopfabric/orderflow/internal/config"
	"github.com/shopfabric/orderflow/internal/notification"
	"github.com/shopfabric/orderflow/pkg/idempotency"
	"github.com/shopfabric/orderflow/pkg/logging"
	"github.com/shopfabric/orderflow/pkg/shutdown"
	"github.com/shopfabric/orderflow/pkg/tracing"
)

func main() {
	log := logging.New("notification-service")
	cfg := config.Load()

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, "notification-service", cfg.OTLPEndpoint)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	idem := idempotency.NewStore(rdb, cfg.IdempotencyTTL)
	consumer := notification.NewConsumer(log, cfg.KafkaBrokers, cfg.OrderEventsTopic, cfg.ConsumerGroup, idem)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("consuming order events", "topic", cfg.OrderEventsTopic, "group", cfg.ConsumerGroup)
		return consumer.Run(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("notification-service stopped with error", "err", err)
		os.Exit(1)
	}
	log.Info("notification-service shutdown complete")
}
