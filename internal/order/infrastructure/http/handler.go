package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/shopfabric/orderflow/internal/inventory"
	"github.com/shopfabric/orderflow/internal/order/application"
	"github.com/shopfabric/orderflow/internal/order/domain"
	"github.com/shopfabric/orderflow/pkg/metrics"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	metrics *metrics.ServiceMetrics
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service, m *metrics.ServiceMetrics) *Handler {
	return &Handler{
		log:     log,
		service: service,
		metrics: m,
		tracer:  otel.Tracer("order-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Patch("/orders/{id}/status", h.updateStatus)
	r.Get("/users/{userID}/orders", h.listUserOrders)
	return r
}

type createOrderRequest struct {
	UserID string        `json:"userId"`
	Items  []itemRequest `json:"items"`
}

type itemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

type orderResponse struct {
	ID          string             `json:"id"`
	UserID      string             `json:"userId"`
	Items       []lineItemResponse `json:"items"`
	TotalAmount decimal.Decimal    `json:"totalAmount"`
	Status      string             `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

type lineItemResponse struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "createOrder", start, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]application.ItemRequest, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, application.ItemRequest{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	order, err := h.service.CreateOrder(ctx, req.UserID, items)
	if err != nil {
		var stockErr inventory.InsufficientStockError
		if errors.As(err, &stockErr) {
			h.metrics.ReservationConflicts.Inc()
		}
		h.writeError(w, "createOrder", start, errorStatus(err), err.Error())
		return
	}

	h.metrics.OrdersCreated.Inc()
	h.writeJSON(w, "createOrder", start, http.StatusCreated, toOrderResponse(order))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, span := h.tracer.Start(r.Context(), "GetOrder")
	defer span.End()

	order, err := h.service.GetOrder(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, "getOrder", start, errorStatus(err), err.Error())
		return
	}
	h.writeJSON(w, "getOrder", start, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, span := h.tracer.Start(r.Context(), "UpdateOrderStatus")
	defer span.End()

	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "updateStatus", start, http.StatusBadRequest, "invalid request body")
		return
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		h.writeError(w, "updateStatus", start, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.service.UpdateStatus(ctx, chi.URLParam(r, "id"), status)
	if err != nil {
		h.writeError(w, "updateStatus", start, errorStatus(err), err.Error())
		return
	}
	h.writeJSON(w, "updateStatus", start, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) listUserOrders(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, span := h.tracer.Start(r.Context(), "ListUserOrders")
	defer span.End()

	orders, err := h.service.ListUserOrders(ctx, chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, "listUserOrders", start, errorStatus(err), err.Error())
		return
	}
	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}
	h.writeJSON(w, "listUserOrders", start, http.StatusOK, resp)
}

// errorStatus separates business-rule rejections (4xx) from infrastructure
// failures (503), so clients can tell "your request is invalid" from "try
// again later".
func errorStatus(err error) int {
	var (
		userErr       domain.UserNotFoundError
		orderErr      domain.OrderNotFoundError
		productErr    domain.ProductNotFoundError
		quantityErr   domain.InvalidQuantityError
		stockErr      inventory.InsufficientStockError
		transitionErr domain.IllegalTransitionError
	)
	switch {
	case errors.Is(err, domain.ErrEmptyOrder),
		errors.Is(err, inventory.ErrInvalidQuantity),
		errors.As(err, &quantityErr):
		return http.StatusBadRequest
	case errors.As(err, &userErr),
		errors.As(err, &orderErr),
		errors.As(err, &productErr):
		return http.StatusNotFound
	case errors.As(err, &stockErr),
		errors.As(err, &transitionErr):
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}

func toOrderResponse(o domain.Order) orderResponse {
	items := make([]lineItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, lineItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}
	return orderResponse{
		ID:          o.ID,
		UserID:      o.UserID,
		Items:       items,
		TotalAmount: o.TotalAmount,
		Status:      o.Status.String(),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, handler string, start time.Time, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("write response failed", "handler", handler, "err", err)
	}
	h.observe(handler, code, start)
}

func (h *Handler) writeError(w http.ResponseWriter, handler string, start time.Time, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
	h.observe(handler, code, start)
}

func (h *Handler) observe(handler string, code int, start time.Time) {
	h.metrics.Requests.WithLabelValues(handler, strconv.Itoa(code)).Inc()
	h.metrics.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Milliseconds()))
}
