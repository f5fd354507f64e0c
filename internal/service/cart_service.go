package service

import (
	"context"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// cartService implements CartService.
type cartService struct {
	tx       repository.TxManager
	carts    repository.CartRepository
	products repository.ProductRepository
	logger   zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(tx repository.TxManager, carts repository.CartRepository, products repository.ProductRepository, logger zerolog.Logger) CartService {
	return &cartService{
		tx:       tx,
		carts:    carts,
		products: products,
		logger:   logger.With().Str("service", "cart").Logger(),
	}
}

// Get returns the user's cart; users without one get an empty cart.
func (s *cartService) Get(ctx context.Context, userID int64) (*model.CartView, error) {
	items, err := s.carts.ListItems(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to load cart")
		return nil, errors.Wrap(err, "list cart items")
	}

	cart := &model.CartView{UserID: userID, Items: make([]model.CartItemView, 0, len(items)), TotalPrice: decimal.Zero}
	for _, it := range items {
		it.TotalPrice = it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		cart.TotalPrice = cart.TotalPrice.Add(it.TotalPrice)
		cart.Items = append(cart.Items, it)
	}
	return cart, nil
}

// AddItem adds units of a variant, merging with an existing line. The
// merged quantity may not exceed the variant's stock.
func (s *cartService) AddItem(ctx context.Context, userID int64, req *model.AddCartItemRequest) (*model.CartView, error) {
	if req == nil || req.ProductDetailID <= 0 || req.Quantity <= 0 {
		return nil, model.NewFieldError("Invalid cart item", "productDetailId", "quantity")
	}
	if err := s.requireVariant(ctx, req.ProductDetailID, req.Quantity); err != nil {
		return nil, err
	}

	err := repository.WithTx(ctx, s.tx, s.logger, func(tx pgx.Tx) error {
		cartID, err := s.carts.EnsureCart(ctx, tx, userID)
		if err != nil {
			return err
		}
		return s.add(ctx, tx, cartID, req.ProductDetailID, req.Quantity)
	})
	if err != nil {
		return nil, errors.Wrap(err, "add cart item")
	}

	s.logger.Debug().
		Int64("user_id", userID).
		Int64("product_detail_id", req.ProductDetailID).
		Int("quantity", req.Quantity).
		Msg("cart item added")
	return s.Get(ctx, userID)
}

// UpdateItem sets a line's quantity, removing it at zero. With
// NewProductDetailID the line moves to that variant, merging with any
// line already holding it.
func (s *cartService) UpdateItem(ctx context.Context, userID, itemID int64, req *model.UpdateCartItemRequest) (*model.CartView, error) {
	if req == nil || req.Quantity < 0 {
		return nil, model.NewFieldError("Invalid cart item", "quantity")
	}
	item, err := s.owned(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	swap := req.NewProductDetailID != nil && *req.NewProductDetailID != item.ProductDetailID
	if swap && req.Quantity > 0 {
		if err := s.requireVariant(ctx, *req.NewProductDetailID, req.Quantity); err != nil {
			return nil, err
		}
	}

	err = repository.WithTx(ctx, s.tx, s.logger, func(tx pgx.Tx) error {
		switch {
		case req.Quantity == 0:
			return s.carts.DeleteItem(ctx, tx, itemID)
		case swap:
			if err := s.carts.DeleteItem(ctx, tx, itemID); err != nil {
				return err
			}
			return s.add(ctx, tx, item.CartID, *req.NewProductDetailID, req.Quantity)
		}

		updated, err := s.carts.SetQuantity(ctx, tx, itemID, req.Quantity)
		if err != nil {
			return err
		}
		if updated == nil {
			return model.ErrInsufficientStock
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "update cart item")
	}
	return s.Get(ctx, userID)
}

// RemoveItem deletes one line of the user's cart.
func (s *cartService) RemoveItem(ctx context.Context, userID, itemID int64) error {
	if _, err := s.owned(ctx, userID, itemID); err != nil {
		return err
	}
	err := repository.WithTx(ctx, s.tx, s.logger, func(tx pgx.Tx) error {
		return s.carts.DeleteItem(ctx, tx, itemID)
	})
	if err != nil {
		return errors.Wrap(err, "remove cart item")
	}
	return nil
}

func (s *cartService) add(ctx context.Context, tx pgx.Tx, cartID, productDetailID int64, quantity int) error {
	item, err := s.carts.AddItem(ctx, tx, cartID, productDetailID, quantity)
	if err != nil {
		return err
	}
	if item == nil {
		return model.ErrInsufficientStock
	}
	return nil
}

// owned loads a line of userID's cart. Lines of other carts are reported
// as missing.
func (s *cartService) owned(ctx context.Context, userID, itemID int64) (*model.CartItem, error) {
	item, err := s.carts.GetItem(ctx, itemID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart item")
	}
	if item == nil || item.UserID != userID {
		return nil, model.NewNotFoundError("Cart item", itemID)
	}
	return item, nil
}

func (s *cartService) requireVariant(ctx context.Context, id int64, quantity int) error {
	found, err := s.products.GetVariantsByIDs(ctx, []int64{id})
	if err != nil {
		return errors.Wrap(err, "load product variant")
	}
	if len(found) == 0 {
		return model.NewUnknownProductsError([]int64{id})
	}
	if quantity > found[0].Stock {
		return model.ErrInsufficientStock
	}
	return nil
}
