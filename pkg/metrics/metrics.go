package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServiceMetrics struct {
	Requests             *prometheus.CounterVec
	LatencyMS            *prometheus.HistogramVec
	OrdersCreated        prometheus.Counter
	ReservationConflicts prometheus.Counter
}

func NewServiceMetrics(service string) *ServiceMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orderflow",
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "orderflow",
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "orderflow",
		Subsystem: service,
		Name:      "orders_created_total",
		Help:      "Orders successfully created.",
	})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "orderflow",
		Subsystem: service,
		Name:      "reservation_conflicts_total",
		Help:      "Order requests rejected for insufficient stock.",
	})

	prometheus.MustRegister(requests, latency, created, conflicts)
	return &ServiceMetrics{
		Requests:             requests,
		LatencyMS:            latency,
		OrdersCreated:        created,
		ReservationConflicts: conflicts,
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
