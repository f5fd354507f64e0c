package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// ShippingAddressHandler serves the caller's address book.
type ShippingAddressHandler struct {
	service service.AddressBookService
	logger  zerolog.Logger
}

// NewShippingAddressHandler creates a new shipping address handler.
func NewShippingAddressHandler(service service.AddressBookService, logger zerolog.Logger) *ShippingAddressHandler {
	return &ShippingAddressHandler{
		service: service,
		logger:  logger.With().Str("handler", "shipping_address").Logger(),
	}
}

// Create handles POST /api/shipping-addresses.
func (h *ShippingAddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	var req model.ShippingAddressRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	addr, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, addr)
}

// List handles GET /api/shipping-addresses.
func (h *ShippingAddressHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	list, err := h.service.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /api/shipping-addresses/{id}.
func (h *ShippingAddressHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	addr, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, addr)
}

// Update handles PATCH /api/shipping-addresses/{id}.
func (h *ShippingAddressHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.UpdateShippingAddressRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	addr, err := h.service.Update(r.Context(), userID, id, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, addr)
}

// Delete handles DELETE /api/shipping-addresses/{id}.
func (h *ShippingAddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
