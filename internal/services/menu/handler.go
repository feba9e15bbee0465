package menu

import (
	"net/http"

	"restaurant-ordering/internal/adapter/web"
	"restaurant-ordering/internal/logger"
	"restaurant-ordering/internal/models"
)

// Handler handles HTTP requests for the menu catalog
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new menu handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// Register mounts the catalog on mux under /menu-items and /cardapio/itens
func (h *Handler) Register(mux *http.ServeMux) {
	for _, base := range []string{"/menu-items", "/cardapio/itens"} {
		mux.HandleFunc("POST "+base, h.CreateItem)
		mux.HandleFunc("GET "+base, h.ListItems)
		mux.HandleFunc("GET "+base+"/{id}", h.GetItem)
		mux.HandleFunc("PUT "+base+"/{id}", h.UpdateItem)
		mux.HandleFunc("DELETE "+base+"/{id}", h.DeleteItem)
	}
}

// CreateItem handles POST /menu-items requests
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestID(r.Context())

	var req models.MenuItemRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("validation_failed", "Failed to parse request body", requestID, map[string]interface{}{
			"error": err.Error(),
		})
		web.WriteError(w, h.logger, requestID, err)
		return
	}

	item, err := h.service.Create(r.Context(), &req)
	if err != nil {
		web.WriteError(w, h.logger, requestID, err)
		return
	}

	web.WriteJSON(w, h.logger, requestID, http.StatusCreated, item)
}

// GetItem handles GET /menu-items/{id} requests
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestID(r.Context())

	id, err := web.PathID(r, "id", models.EntityMenuItem)
	if err != nil {
		web.WriteError(w, h.logger, requestID, err)
		return
	}

	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		web.WriteError(w, h.logger, requestID, err)
		return
	}

	web.WriteJSON(w, h.logger, requestID, http.StatusOK, item)
}

// ListItems handles GET /menu-items?page=&size= requests
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestID(r.Context())

	query := r.URL.Query()
	pageReq, err := models.ParsePageRequest(query.Get("page"), query.Get("size"))
	if err != nil {
		web.WriteError(w, h.logger, requestID, err)
		return
	}

	page, err := h.service.List(r.Context(), pageReq)
	if err != nil {
		web.WriteError(w, h.logger, requestID, err)
		return
	}

	web.WriteJSON(w, h.logger, requestID, http.StatusOK, page)
}

// UpdateItem handles PUT /menu-items/{id} requests
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestID(r.Context())

	id, err := web.PathID(r, "id", models.EntityMenuItem)
	if err != nil {
		web.WriteError(w, h.logger, requestID, err)
		return
	}

	var req models.MenuItemRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, requestID, err)
		return
	}

	item, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		web.WriteError(w, h.logger, requestID, err)
		return
	}

	web.WriteJSON(w, h.logger, requestID, http.StatusOK, item)
}

// DeleteItem handles DELETE /menu-items/{id} requests
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestID(r.Context())

	id, err := web.PathID(r, "id", models.EntityMenuItem)
	if err != nil {
		web.WriteError(w, h.logger, requestID, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		web.WriteError(w, h.logger, requestID, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
