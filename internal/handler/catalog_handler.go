package handler

import (
	"context"
	"net/http"
	"strconv"

	"storefront/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// CategoryReader is the category hierarchy as seen by the HTTP layer.
type CategoryReader interface {
	List(ctx context.Context) ([]model.Category, error)
	Get(ctx context.Context, id int64) (*model.Category, error)
	Tree(ctx context.Context) ([]*model.CategoryNode, error)
	Descendants(ctx context.Context, id int64) ([]int64, error)
}

// AddressReader is the address hierarchy as seen by the HTTP layer.
type AddressReader interface {
	Cities(ctx context.Context) ([]model.AddressNode, error)
	ListChildren(ctx context.Context, parentLevel model.AddressLevel, parentCode int) ([]model.AddressNode, error)
}

// CatalogHandler serves the category and address reference data.
type CatalogHandler struct {
	categories CategoryReader
	addresses  AddressReader
	logger     zerolog.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(categories CategoryReader, addresses AddressReader, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		categories: categories,
		addresses:  addresses,
		logger:     logger.With().Str("handler", "catalog").Logger(),
	}
}

// ListCategories handles GET /api/categories.
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

// CategoryTree handles GET /api/categories/tree.
func (h *CatalogHandler) CategoryTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.categories.Tree(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

// GetCategory handles GET /api/categories/{id}.
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	cat, err := h.categories.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// CategoryDescendants handles GET /api/categories/{id}/descendants.
func (h *CatalogHandler) CategoryDescendants(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	ids, err := h.categories.Descendants(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categoryId": id, "ids": ids})
}

// Cities handles GET /api/addresses/cities.
func (h *CatalogHandler) Cities(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.addresses.Cities(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, nodes)
}

// Districts handles GET /api/addresses/cities/{code}/districts.
func (h *CatalogHandler) Districts(w http.ResponseWriter, r *http.Request) {
	h.children(w, r, model.LevelCity)
}

// Wards handles GET /api/addresses/districts/{code}/wards.
func (h *CatalogHandler) Wards(w http.ResponseWriter, r *http.Request) {
	h.children(w, r, model.LevelDistrict)
}

func (h *CatalogHandler) children(w http.ResponseWriter, r *http.Request, parent model.AddressLevel) {
	code, err := strconv.Atoi(chi.URLParam(r, "code"))
	if err != nil {
		writeServiceError(w, r, model.NewFieldError("Invalid address code", "code"), h.logger)
		return
	}

	nodes, err := h.addresses.ListChildren(r.Context(), parent, code)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, nodes)
}
