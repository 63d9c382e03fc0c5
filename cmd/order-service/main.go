package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/shopfabric/orderflow/internal/config"
	"github.com/shopfabric/orderflow/internal/order/application"
	orderhttp "github.com/shopfabric/orderflow/internal/order/infrastructure/http"
	orderkafka "github.com/shopfabric/orderflow/internal/order/infrastructure/kafka"
	orderpg "github.com/shopfabric/orderflow/internal/order/infrastructure/postgres"
	"github.com/shopfabric/orderflow/pkg/logging"
	"github.com/shopfabric/orderflow/pkg/metrics"
	"github.com/shopfabric/orderflow/pkg/shutdown"
	"github.com/shopfabric/orderflow/pkg/tracing"

	catalogpg "github.com/shopfabric/orderflow/internal/catalog/postgres"
	inventorypg "github.com/shopfabric/orderflow/internal/inventory/postgres"
	userpg "github.com/shopfabric/orderflow/internal/user/postgres"
)

func main() {
	log := logging.New("order-service")
	cfg := config.Load()

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, "order-service", cfg.OTLPEndpoint)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	poolCfg, err := pgxpool.ParseConfig(cfg.PGURL)
	if err != nil {
		log.Error("pg config invalid", "err", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = int32(cfg.PGMaxConns)
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	writer := orderkafka.NewWriter(cfg.KafkaBrokers, cfg.OrderEventsTopic)
	defer writer.Close()

	repo := orderpg.NewRepository(log, pool)
	cat := catalogpg.NewRepository(log, pool)
	users := userpg.NewDirectory(log, pool)
	ledger := inventorypg.NewLedger(log, pool)
	publisher := orderkafka.NewPublisher(log, writer)

	svc := application.NewService(log, repo, users, cat, ledger, publisher)
	m := metrics.NewServiceMetrics("order_service")
	handler := orderhttp.NewHandler(log, svc, m)

	r := chi.NewRouter()
	r.Mount("/", handler.Routes())
	r.Handle("/metrics", metrics.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("order-service stopped with error", "err", err)
		os.Exit(1)
	}
	log.Info("order-service shutdown complete")
}
