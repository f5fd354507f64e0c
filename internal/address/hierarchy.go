// Package address resolves shipping addresses against the
// city → district → ward hierarchy and imports that hierarchy from
// gzipped JSON datasets.
package address

import (
	"context"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/go-faster/errors"
	"github.com/rs/zerolog"
)

var levelEntities = map[model.AddressLevel]string{
	model.LevelCity:     "City",
	model.LevelDistrict: "District",
	model.LevelWard:     "Ward",
}

// Hierarchy provides read access to the address tree.
type Hierarchy struct {
	repo   repository.AddressRepository
	logger zerolog.Logger
}

// NewHierarchy creates a Hierarchy over repo.
func NewHierarchy(repo repository.AddressRepository, logger zerolog.Logger) *Hierarchy {
	return &Hierarchy{
		repo:   repo,
		logger: logger.With().Str("component", "address").Logger(),
	}
}

// Cities lists the top level of the tree.
func (h *Hierarchy) Cities(ctx context.Context) ([]model.AddressNode, error) {
	nodes, err := h.repo.ListCities(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list cities")
	}
	return nonNil(nodes), nil
}

// ListChildren lists the nodes directly below parentCode. The parent must
// exist; wards have no children.
func (h *Hierarchy) ListChildren(ctx context.Context, parentLevel model.AddressLevel, parentCode int) ([]model.AddressNode, error) {
	if _, ok := parentLevel.Child(); !ok {
		return nil, model.NewFieldError("Address level has no children", "level")
	}
	if _, err := h.Get(ctx, parentLevel, parentCode); err != nil {
		return nil, err
	}

	nodes, err := h.repo.ListChildren(ctx, parentLevel, parentCode)
	if err != nil {
		return nil, errors.Wrapf(err, "list children of %s %d", parentLevel, parentCode)
	}
	return nonNil(nodes), nil
}

// Get returns one node or a NotFoundError.
func (h *Hierarchy) Get(ctx context.Context, level model.AddressLevel, code int) (*model.AddressNode, error) {
	node, err := h.repo.GetNode(ctx, level, code)
	if err != nil {
		return nil, errors.Wrapf(err, "get %s %d", level, code)
	}
	if node == nil {
		return nil, model.NewNotFoundError(levelEntities[level], code)
	}
	return node, nil
}

// Resolve loads a shipping address with its ward, district and city.
func (h *Hierarchy) Resolve(ctx context.Context, shippingAddressID int64) (*model.ShippingAddressView, error) {
	addr, err := h.repo.GetShippingAddress(ctx, shippingAddressID)
	if err != nil {
		return nil, errors.Wrap(err, "get shipping address")
	}
	if addr == nil {
		return nil, model.NewNotFoundError("Shipping address", shippingAddressID)
	}

	return h.Expand(ctx, *addr)
}

// Expand attaches the ward, district and city of addr. On failure the
// returned view carries whatever levels were found.
func (h *Hierarchy) Expand(ctx context.Context, addr model.ShippingAddress) (*model.ShippingAddressView, error) {
	view := &model.ShippingAddressView{ShippingAddress: addr}
	if addr.WardCode == nil {
		return view, model.NewNotFoundError("Ward of shipping address", addr.ID)
	}

	var err error
	view.Ward, err = h.Get(ctx, model.LevelWard, *addr.WardCode)
	if err != nil {
		return view, err
	}
	view.District, err = h.parent(ctx, view.Ward)
	if err != nil {
		return view, err
	}
	view.City, err = h.parent(ctx, view.District)
	if err != nil {
		return view, err
	}
	return view, nil
}

// ResolveRegion returns the name of the city containing the shipping address.
func (h *Hierarchy) ResolveRegion(ctx context.Context, shippingAddressID int64) (string, error) {
	view, err := h.Resolve(ctx, shippingAddressID)
	if err != nil {
		return "", err
	}
	return view.City.Name, nil
}

func (h *Hierarchy) parent(ctx context.Context, child *model.AddressNode) (*model.AddressNode, error) {
	if child.ParentCode == nil {
		return nil, model.NewNotFoundError("Parent of "+child.Level.String(), child.Code)
	}
	return h.Get(ctx, child.Level-1, *child.ParentCode)
}

func nonNil(nodes []model.AddressNode) []model.AddressNode {
	if nodes == nil {
		return []model.AddressNode{}
	}
	return nodes
}
