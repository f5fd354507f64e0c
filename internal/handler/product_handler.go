package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseProductQuery(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	page, err := h.service.List(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// ListByCategory handles GET /api/products/category/{name}.
func (h *ProductHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	q, err := parseProductQuery(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	page, err := h.service.ListByCategoryName(r.Context(), chi.URLParam(r, "name"), q)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// GetByID handles GET /api/products/{id}.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	product, err := h.service.GetByID(r.Context(), productID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// parseProductQuery reads listing filters from the query string and
// reports every malformed parameter at once.
func parseProductQuery(v url.Values) (model.ProductQuery, error) {
	var (
		q       model.ProductQuery
		invalid []string
		err     error
	)

	if s := v.Get("limit"); s != "" {
		if q.Limit, err = strconv.Atoi(s); err != nil {
			invalid = append(invalid, "limit")
		}
	}
	if s := v.Get("offset"); s != "" {
		if q.Offset, err = strconv.Atoi(s); err != nil {
			invalid = append(invalid, "offset")
		}
	}
	if s := v.Get("minPrice"); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil {
			invalid = append(invalid, "minPrice")
		}
		q.MinPrice = decimal.NewNullDecimal(d)
	}
	if s := v.Get("maxPrice"); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil {
			invalid = append(invalid, "maxPrice")
		}
		q.MaxPrice = decimal.NewNullDecimal(d)
	}
	if s := v.Get("inStock"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			invalid = append(invalid, "inStock")
		}
		q.InStock = &b
	}
	q.Colors = splitList(v.Get("colors"))
	q.Sizes = splitList(v.Get("sizes"))
	q.SortBy = v.Get("sortBy")

	if len(invalid) > 0 {
		return q, model.NewFieldError("Invalid product query", invalid...)
	}
	return q, nil
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
