// Package integration spins up throwaway Postgres and Kafka containers for
// integration tests.
package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

type Env struct {
	PG       *postgres.PostgresContainer
	Kafka    *kafka.KafkaContainer
	PGURL    string
	Brokers  []string
	cancelFn context.CancelFunc
}

// Setup starts the containers. Callers must Teardown regardless of error.
func Setup(ctx context.Context) (*Env, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)

	pgC, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("orderflow"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("start postgres: %w", err)
	}

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		cancel()
		return nil, fmt.Errorf("postgres connection string: %w", err)
	}

	kafkaC, err := kafka.Run(ctx,
		"confluentinc/confluent-local:7.5.0",
		kafka.WithClusterID("orderflow-test"),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("start kafka: %w", err)
	}

	brokers, err := kafkaC.Brokers(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("kafka brokers: %w", err)
	}

	return &Env{
		PG:       pgC,
		Kafka:    kafkaC,
		PGURL:    pgURL,
		Brokers:  brokers,
		cancelFn: cancel,
	}, nil
}

func (e *Env) Teardown(ctx context.Context) {
	e.cancelFn()
	if e.Kafka != nil {
		_ = e.Kafka.Terminate(ctx)
	}
	if e.PG != nil {
		_ = e.PG.Terminate(ctx)
	}
}
