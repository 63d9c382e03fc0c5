package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopfabric/orderflow/internal/catalog"
	"github.com/shopfabric/orderflow/internal/inventory"
	"github.com/shopfabric/orderflow/internal/inventory/memory"
	"github.com/shopfabric/orderflow/internal/order/application"
	"github.com/shopfabric/orderflow/internal/order/domain"
	"github.com/shopfabric/orderflow/pkg/metrics"
)

// Registered once; prometheus rejects duplicate collectors.
var testMetrics = metrics.NewServiceMetrics("order_service_test")

type stubCatalog map[string]catalog.Product

func (s stubCatalog) FindByIDs(_ context.Context, ids []string) (map[string]catalog.Product, error) {
	out := make(map[string]catalog.Product, len(ids))
	for _, id := range ids {
		if p, ok := s[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type stubUsers map[string]bool

func (s stubUsers) Exists(_ context.Context, id string) (bool, error) {
	return s[id], nil
}

type stubRepo struct {
	seq    int
	orders map[string]domain.Order
}

func (s *stubRepo) Save(_ context.Context, o *domain.Order) error {
	if o.ID == "" {
		s.seq++
		o.ID = fmt.Sprintf("o-%d", s.seq)
	}
	s.orders[o.ID] = *o
	return nil
}

func (s *stubRepo) FindByID(_ context.Context, id string) (domain.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return domain.Order{}, domain.OrderNotFoundError{OrderID: id}
	}
	return o, nil
}

func (s *stubRepo) FindByUserID(_ context.Context, userID string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

type stubPublisher struct{}

func (stubPublisher) Publish(context.Context, domain.OrderEvent) error { return nil }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := application.NewService(
		slog.New(slog.DiscardHandler),
		&stubRepo{orders: make(map[string]domain.Order)},
		stubUsers{"u-1": true},
		stubCatalog{"p-1": {ID: "p-1", Name: "widget", UnitPrice: decimal.RequireFromString("10.00"), StockQuantity: 5}},
		memory.NewLedger(map[string]int{"p-1": 5}),
		stubPublisher{},
	)
	h := NewHandler(slog.New(slog.DiscardHandler), svc, testMetrics)
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func TestCreateOrderEndpoint(t *testing.T) {
	srv := newTestServer(t)

	body := bytes.NewBufferString(`{"userId":"u-1","items":[{"productId":"p-1","quantity":2}]}`)
	resp, err := http.Post(srv.URL+"/orders", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var got orderResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "NEW", got.Status)
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("20.00")))
	require.Len(t, got.Items, 1)
	assert.Equal(t, "p-1", got.Items[0].ProductID)
}

func TestCreateOrderEndpointUnknownProduct(t *testing.T) {
	srv := newTestServer(t)

	body := bytes.NewBufferString(`{"userId":"u-1","items":[{"productId":"nope","quantity":1}]}`)
	resp, err := http.Post(srv.URL+"/orders", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateOrderEndpointInsufficientStock(t *testing.T) {
	srv := newTestServer(t)

	body := bytes.NewBufferString(`{"userId":"u-1","items":[{"productId":"p-1","quantity":9}]}`)
	resp, err := http.Post(srv.URL+"/orders", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestUpdateStatusEndpointIllegalTransition(t *testing.T) {
	srv := newTestServer(t)

	body := bytes.NewBufferString(`{"userId":"u-1","items":[{"productId":"p-1","quantity":1}]}`)
	resp, err := http.Post(srv.URL+"/orders", "application/json", body)
	require.NoError(t, err)
	var created orderResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()

	req, err := http.NewRequest(http.MethodPatch, srv.URL+"/orders/"+created.ID+"/status",
		bytes.NewBufferString(`{"status":"DELIVERED"}`))
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"empty order", domain.ErrEmptyOrder, http.StatusBadRequest},
		{"invalid quantity", domain.InvalidQuantityError{ProductID: "p-1"}, http.StatusBadRequest},
		{"ledger contract violation", fmt.Errorf("reserve: %w", inventory.ErrInvalidQuantity), http.StatusBadRequest},
		{"user not found", domain.UserNotFoundError{UserID: "u"}, http.StatusNotFound},
		{"order not found", domain.OrderNotFoundError{OrderID: "o"}, http.StatusNotFound},
		{"products not found", domain.ProductNotFoundError{Missing: []string{"p"}}, http.StatusNotFound},
		{"insufficient stock", inventory.InsufficientStockError{ProductID: "p"}, http.StatusConflict},
		{"illegal transition", domain.IllegalTransitionError{From: domain.StatusNew, To: domain.StatusDelivered}, http.StatusConflict},
		{"infrastructure", errors.New("connection refused"), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorStatus(tt.err))
		})
	}
}
