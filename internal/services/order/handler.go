package order

import (
	"net/http"

	"restaurant-ordering/internal/adapter/web"
	"restaurant-ordering/internal/logger"
	"restaurant-ordering/internal/models"
)

// Handler handles HTTP requests for the order service
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new order handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// Register mounts the order routes on mux under /orders and /pedidos
func (h *Handler) Register(mux *http.ServeMux) {
	for _, base := range []string{"/orders", "/pedidos"} {
		mux.HandleFunc("POST "+base, h.CreateOrder)
		mux.HandleFunc("GET "+base+"/{id}", h.GetOrder)
		mux.HandleFunc("PUT "+base+"/{id}/status", h.UpdateStatus)
		mux.HandleFunc("GET "+base+"/{id}/history", h.GetHistory)
	}
}

// CreateOrder handles POST /orders requests
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestID(r.Context())

	h.logger.Debug("order_received", "Received order creation request", requestID, map[string]interface{}{
		"content_length": r.ContentLength,
		"remote_addr":    r.RemoteAddr,
	})

	var req models.CreateOrderRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("validation_failed", "Failed to parse request body", requestID, map[string]interface{}{
			"error": err.Error(),
		})
		web.WriteError(w, h.logger, requestID, err)
		return
	}

	order, err := h.service.CreateOrder(r.Context(), &req)
	if err != nil {
		web.WriteError(w, h.logger, requestID, err)
		return
	}

	web.WriteJSON(w, h.logger, requestID, http.StatusCreated, order)
}

// GetOrder handles GET /orders/{id} requests
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestID(r.Context())

	id, err := web.PathID(r, "id", models.EntityOrder)
	if err != nil {
		web.WriteError(w, h.logger, requestID, err)
		return
	}

	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		web.WriteError(w, h.logger, requestID, err)
		return
	}

	web.WriteJSON(w, h.logger, requestID, http.StatusOK, order)
}

// UpdateStatus handles PUT /orders/{id}/status requests
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestID(r.Context())

	id, err := web.PathID(r, "id", models.EntityOrder)
	if err != nil {
		web.WriteError(w, h.logger, requestID, err)
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, requestID, err)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), id, &req)
	if err != nil {
		web.WriteError(w, h.logger, requestID, err)
		return
	}

	web.WriteJSON(w, h.logger, requestID, http.StatusOK, order)
}

// GetHistory handles GET /orders/{id}/history requests
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestID(r.Context())

	id, err := web.PathID(r, "id", models.EntityOrder)
	if err != nil {
		web.WriteError(w, h.logger, requestID, err)
		return
	}

	history, err := h.service.GetHistory(r.Context(), id)
	if err != nil {
		web.WriteError(w, h.logger, requestID, err)
		return
	}

	h.logger.Debug("history_retrieved", "Order history retrieved", requestID, map[string]interface{}{
		"order_id":      id,
		"history_count": len(history),
	})

	web.WriteJSON(w, h.logger, requestID, http.StatusOK, history)
}
