package payment

import (
	"net/http"

	"restaurant-ordering/internal/adapter/web"
	"restaurant-ordering/internal/logger"
	"restaurant-ordering/internal/models"
)

// Handler handles HTTP requests for payments
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new payment handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// Register mounts the payment routes on mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /payments", h.CreatePayment)
	mux.HandleFunc("GET /payments/{id}", h.GetPayment)
	mux.HandleFunc("PUT /payments/{id}/approve", h.ApprovePayment)
	mux.HandleFunc("GET /orders/{id}/payments", h.ListByOrder)

	mux.HandleFunc("POST /pagamentos", h.CreatePayment)
	mux.HandleFunc("GET /pagamentos/{id}", h.GetPayment)
	mux.HandleFunc("PUT /pagamentos/{id}/aprovar", h.ApprovePayment)
	mux.HandleFunc("GET /pedidos/{id}/pagamentos", h.ListByOrder)
}

// CreatePayment handles POST /payments requests
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestID(r.Context())

	var req models.CreatePaymentRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("validation_failed", "Failed to parse request body", requestID, map[string]interface{}{
			"error": err.Error(),
		})
		web.WriteError(w, h.logger, requestID, err)
		return
	}

	payment, err := h.service.CreatePayment(r.Context(), &req)
	if err != nil {
		web.WriteError(w, h.logger, requestID, err)
		return
	}

	web.WriteJSON(w, h.logger, requestID, http.StatusCreated, payment)
}

// GetPayment handles GET /payments/{id} requests
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestID(r.Context())

	id, err := web.PathID(r, "id", models.EntityPayment)
	if err != nil {
		web.WriteError(w, h.logger, requestID, err)
		return
	}

	payment, err := h.service.GetPayment(r.Context(), id)
	if err != nil {
		web.WriteError(w, h.logger, requestID, err)
		return
	}

	web.WriteJSON(w, h.logger, requestID, http.StatusOK, payment)
}

// ApprovePayment handles PUT /payments/{id}/approve requests
func (h *Handler) ApprovePayment(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestID(r.Context())

	id, err := web.PathID(r, "id", models.EntityPayment)
	if err != nil {
		web.WriteError(w, h.logger, requestID, err)
		return
	}

	payment, err := h.service.ApprovePayment(r.Context(), id)
	if err != nil {
		web.WriteError(w, h.logger, requestID, err)
		return
	}

	web.WriteJSON(w, h.logger, requestID, http.StatusOK, payment)
}

// ListByOrder handles GET /orders/{id}/payments requests
func (h *Handler) ListByOrder(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestID(r.Context())

	orderID, err := web.PathID(r, "id", models.EntityOrder)
	if err != nil {
		web.WriteError(w, h.logger, requestID, err)
		return
	}

	payments, err := h.service.ListByOrder(r.Context(), orderID)
	if err != nil {
		web.WriteError(w, h.logger, requestID, err)
		return
	}

	web.WriteJSON(w, h.logger, requestID, http.StatusOK, payments)
}
