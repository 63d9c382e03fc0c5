package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/shopfabric/orderflow/internal/order/domain"
	"github.com/shopfabric/orderflow/pkg/tracing"
)

// NewWriter builds a producer for the order-events topic. The hash balancer
// partitions by message key, which is always the order id, so all events for
// one order land on one partition and stay ordered for any single consumer
// group.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
}

type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publisher emits order lifecycle events. One attempt per event, no retry
// queue; the application layer decides what to do with a failure.
type Publisher struct {
	log    *slog.Logger
	writer Producer
}

func NewPublisher(log *slog.Logger, writer Producer) *Publisher {
	return &Publisher{log: log, writer: writer}
}

func (p *Publisher) Publish(ctx context.Context, ev domain.OrderEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}
	headers := tracing.InjectKafkaHeaders(ctx, []kafka.Header{
		{Key: "event_type", Value: []byte("OrderEvent")},
	})
	msg := kafka.Message{
		Key:     []byte(ev.OrderID),
		Value:   payload,
		Headers: headers,
		Time:    time.Now().UTC(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write order event: %w", err)
	}
	p.log.Debug("order event written", "order_id", ev.OrderID, "status", ev.Status)
	return nil
}
