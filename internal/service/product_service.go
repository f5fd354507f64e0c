package service

import (
	"context"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/go-faster/errors"
	"github.com/rs/zerolog"
)

const (
	defaultPageSize = 40
	maxPageSize     = 100
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	categories  CategoryExpander
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, categories CategoryExpander, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		categories:  categories,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// List returns one page of products matching q.
func (s *productService) List(ctx context.Context, q model.ProductQuery) (*model.ProductPage, error) {
	q, err := normalizeQuery(q)
	if err != nil {
		return nil, err
	}

	page, err := s.productRepo.List(ctx, q)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", q.Limit).
			Int("offset", q.Offset).
			Msg("failed to list products")
		return nil, errors.Wrap(err, "list products")
	}
	if page.Products == nil {
		page.Products = []model.Product{}
	}

	s.logger.Debug().
		Int("count", len(page.Products)).
		Int("total", page.TotalProducts).
		Msg("retrieved products")
	return page, nil
}

// GetByID returns a product with its variants.
func (s *productService) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to get product by ID")
		return nil, errors.Wrap(err, "get product")
	}
	if product == nil {
		s.logger.Debug().Int64("product_id", id).Msg("product not found")
		return nil, model.NewNotFoundError("Product", id)
	}
	return product, nil
}

// ListByCategoryName expands the category to its descendants and lists
// products in any of them.
func (s *productService) ListByCategoryName(ctx context.Context, name string, q model.ProductQuery) (*model.ProductPage, error) {
	cat, ids, err := s.categories.DescendantsByName(ctx, name)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int64("category_id", cat.ID).
		Int("expanded", len(ids)).
		Msg("category expanded")

	q.CategoryIDs = ids
	return s.List(ctx, q)
}

// normalizeQuery applies paging defaults and rejects contradictory filters.
func normalizeQuery(q model.ProductQuery) (model.ProductQuery, error) {
	var invalid []string
	if q.Limit < 0 {
		invalid = append(invalid, "limit")
	}
	if q.Offset < 0 {
		invalid = append(invalid, "offset")
	}
	if q.MinPrice.Valid && q.MinPrice.Decimal.IsNegative() {
		invalid = append(invalid, "minPrice")
	}
	if q.MaxPrice.Valid && q.MaxPrice.Decimal.IsNegative() {
		invalid = append(invalid, "maxPrice")
	}
	if q.MinPrice.Valid && q.MaxPrice.Valid && q.MinPrice.Decimal.GreaterThan(q.MaxPrice.Decimal) {
		invalid = append(invalid, "minPrice", "maxPrice")
	}
	switch q.SortBy {
	case "", model.SortPriceAsc, model.SortPriceDesc, model.SortNewest:
	default:
		invalid = append(invalid, "sortBy")
	}
	if len(invalid) > 0 {
		return q, model.NewFieldError("Invalid product query", invalid...)
	}

	if q.Limit == 0 {
		q.Limit = defaultPageSize
	}
	if q.Limit > maxPageSize {
		q.Limit = maxPageSize
	}
	return q, nil
}
