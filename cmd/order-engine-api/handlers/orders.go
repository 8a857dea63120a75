// Package handlers provides HTTP handlers for the order engine API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/despensa-ai/order-engine/internal/observability"
	"github.com/despensa-ai/order-engine/internal/pipeline"
	"github.com/despensa-ai/order-engine/internal/storage"
)

// OrderHandler handles order processing and history requests.
type OrderHandler struct {
	logger   *observability.Logger
	pipeline *pipeline.Pipeline
	orders   *storage.OrderRepository
}

// NewOrderHandler creates a new order handler. The repository may be nil when
// history is disabled.
func NewOrderHandler(logger *observability.Logger, p *pipeline.Pipeline, orders *storage.OrderRepository) *OrderHandler {
	return &OrderHandler{
		logger:   logger,
		pipeline: p,
		orders:   orders,
	}
}

// CreateOrderRequest represents the API request for processing an utterance.
type CreateOrderRequest struct {
	Utterance string `json:"utterance"`
}

// OrderSummaryDTO is the compact history representation of an order.
type OrderSummaryDTO struct {
	ID            string  `json:"id"`
	Utterance     string  `json:"utterance"`
	Intent        string  `json:"intent"`
	Total         float64 `json:"total"`
	DistinctItems int     `json:"distinctItems"`
	TotalUnits    float64 `json:"totalUnits"`
	CreatedAt     string  `json:"createdAt"`
}

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if strings.TrimSpace(req.Utterance) == "" {
		writeError(w, http.StatusBadRequest, "utterance is required", "")
		return
	}

	result, err := h.pipeline.Process(r.Context(), req.Utterance)
	if err != nil {
		h.logger.WithContext(r.Context()).Error().Err(err).Msg("Order processing failed")
		writeError(w, http.StatusBadGateway, "order processing failed", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// List handles GET /orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.orders == nil {
		writeError(w, http.StatusNotImplemented, "order history is disabled", "")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit", "")
			return
		}
		limit = n
	}

	orders, err := h.orders.List(r.Context(), limit)
	if err != nil {
		h.logger.WithContext(r.Context()).Error().Err(err).Msg("Order history query failed")
		writeError(w, http.StatusInternalServerError, "order history query failed", err.Error())
		return
	}

	dtos := make([]OrderSummaryDTO, 0, len(orders))
	for _, order := range orders {
		dtos = append(dtos, toSummaryDTO(order))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"orders": dtos})
}

// Get handles GET /orders/{orderId}. The full ticket record is returned
// alongside the summary.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.orders == nil {
		writeError(w, http.StatusNotImplemented, "order history is disabled", "")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id", err.Error())
		return
	}

	order, err := h.orders.GetByID(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "order not found", "")
		return
	}
	if err != nil {
		h.logger.WithContext(r.Context()).Error().Err(err).Msg("Order lookup failed")
		writeError(w, http.StatusInternalServerError, "order lookup failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"order":  toSummaryDTO(order),
		"ticket": json.RawMessage(order.Ticket),
	})
}

func toSummaryDTO(order *storage.Order) OrderSummaryDTO {
	return OrderSummaryDTO{
		ID:            order.ID.String(),
		Utterance:     order.Utterance,
		Intent:        order.Intent,
		Total:         order.Total,
		DistinctItems: order.DistinctItems,
		TotalUnits:    order.TotalUnits,
		CreatedAt:     order.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, detail string) {
	resp := map[string]string{"error": message}
	if detail != "" {
		resp["detail"] = detail
	}
	writeJSON(w, status, resp)
}
