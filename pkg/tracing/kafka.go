package tracing

import (
	"context"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// InjectKafkaHeaders appends the current trace context to a message's headers
// so consumers can continue the trace.
func InjectKafkaHeaders(ctx context.Context, headers []kafka.Header) []kafka.Header {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return headers
}

// ExtractKafkaHeaders restores the trace context carried in a consumed
// message's headers. Only headers the configured propagator declares as its
// own (traceparent, tracestate, baggage) are handed to it; application
// headers such as event_type stay out of the carrier.
func ExtractKafkaHeaders(ctx context.Context, headers []kafka.Header) context.Context {
	prop := otel.GetTextMapPropagator()

	owned := make(map[string]struct{})
	for _, f := range prop.Fields() {
		owned[f] = struct{}{}
	}

	carrier := propagation.MapCarrier{}
	for _, h := range headers {
		if _, ok := owned[h.Key]; ok {
			carrier[h.Key] = string(h.Value)
		}
	}
	return prop.Extract(ctx, carrier)
}
