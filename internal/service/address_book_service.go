package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const (
	maxRecipientNameLen = 100
	maxMoreDetailLen    = 200
	minPhoneLen         = 10
	maxPhoneLen         = 15
)

// AddressTree looks up hierarchy nodes and expands shipping addresses.
type AddressTree interface {
	Get(ctx context.Context, level model.AddressLevel, code int) (*model.AddressNode, error)
	Expand(ctx context.Context, addr model.ShippingAddress) (*model.ShippingAddressView, error)
}

// AddressBookDependencies groups the collaborators of the address book.
type AddressBookDependencies struct {
	Tx        repository.TxManager
	Addresses repository.AddressRepository
	Book      repository.ShippingAddressRepository
	Tree      AddressTree
}

// addressBookService implements AddressBookService.
type addressBookService struct {
	deps   AddressBookDependencies
	logger zerolog.Logger
}

// NewAddressBookService creates a new address book service.
func NewAddressBookService(deps AddressBookDependencies, logger zerolog.Logger) AddressBookService {
	return &addressBookService{
		deps:   deps,
		logger: logger.With().Str("service", "address_book").Logger(),
	}
}

// Create stores a new address. A user's first address is always default.
func (s *addressBookService) Create(ctx context.Context, userID int64, req *model.ShippingAddressRequest) (*model.ShippingAddressView, error) {
	if req == nil {
		return nil, model.NewFieldError("Invalid shipping address", "recipientName", "phone", "wardCode")
	}

	wardCode := req.WardCode
	addr := &model.ShippingAddress{
		UserID:        userID,
		RecipientName: strings.TrimSpace(req.RecipientName),
		Phone:         strings.TrimSpace(req.Phone),
		WardCode:      &wardCode,
		MoreDetail:    strings.TrimSpace(req.MoreDetail),
		IsDefault:     req.IsDefault,
	}
	if err := s.validate(ctx, addr); err != nil {
		return nil, err
	}

	err := repository.WithTx(ctx, s.deps.Tx, s.logger, func(tx pgx.Tx) error {
		n, err := s.deps.Book.CountByUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		if n == 0 {
			addr.IsDefault = true
		}
		if err := s.deps.Book.Create(ctx, tx, addr); err != nil {
			return err
		}
		if addr.IsDefault {
			return s.deps.Book.ClearDefault(ctx, tx, userID, addr.ID)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "create shipping address")
	}

	s.logger.Info().
		Int64("shipping_address_id", addr.ID).
		Int64("user_id", userID).
		Bool("default", addr.IsDefault).
		Msg("shipping address created")
	return s.expand(ctx, *addr)
}

// List returns the user's addresses, the default first.
func (s *addressBookService) List(ctx context.Context, userID int64) ([]model.ShippingAddressView, error) {
	list, err := s.deps.Book.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list shipping addresses")
	}

	views := make([]model.ShippingAddressView, 0, len(list))
	for _, a := range list {
		view, err := s.expand(ctx, a)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// Get returns one of the user's addresses.
func (s *addressBookService) Get(ctx context.Context, userID, id int64) (*model.ShippingAddressView, error) {
	addr, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, *addr)
}

// Update applies the fields present in req. Marking an address default
// clears the flag elsewhere; unmarking the only default hands it to the
// oldest address.
func (s *addressBookService) Update(ctx context.Context, userID, id int64, req *model.UpdateShippingAddressRequest) (*model.ShippingAddressView, error) {
	addr, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return s.expand(ctx, *addr)
	}

	if req.RecipientName != nil {
		addr.RecipientName = strings.TrimSpace(*req.RecipientName)
	}
	if req.Phone != nil {
		addr.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.WardCode != nil {
		wardCode := *req.WardCode
		addr.WardCode = &wardCode
	}
	if req.MoreDetail != nil {
		addr.MoreDetail = strings.TrimSpace(*req.MoreDetail)
	}
	if req.IsDefault != nil {
		addr.IsDefault = *req.IsDefault
	}
	if err := s.validate(ctx, addr); err != nil {
		return nil, err
	}

	err = repository.WithTx(ctx, s.deps.Tx, s.logger, func(tx pgx.Tx) error {
		if err := s.deps.Book.Update(ctx, tx, addr); err != nil {
			return err
		}
		if addr.IsDefault {
			return s.deps.Book.ClearDefault(ctx, tx, userID, addr.ID)
		}
		return s.deps.Book.PromoteDefault(ctx, tx, userID)
	})
	if err != nil {
		return nil, errors.Wrap(err, "update shipping address")
	}

	return s.Get(ctx, userID, id)
}

// Delete removes an address. Deleting the default promotes the oldest
// remaining address; addresses used by an order cannot be deleted.
func (s *addressBookService) Delete(ctx context.Context, userID, id int64) error {
	addr, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}

	err = repository.WithTx(ctx, s.deps.Tx, s.logger, func(tx pgx.Tx) error {
		if err := s.deps.Book.Delete(ctx, tx, id); err != nil {
			return err
		}
		if addr.IsDefault {
			return s.deps.Book.PromoteDefault(ctx, tx, userID)
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "delete shipping address")
	}

	s.logger.Info().Int64("shipping_address_id", id).Int64("user_id", userID).Msg("shipping address deleted")
	return nil
}

func (s *addressBookService) owned(ctx context.Context, userID, id int64) (*model.ShippingAddress, error) {
	addr, err := s.deps.Addresses.GetShippingAddress(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get shipping address")
	}
	if addr == nil {
		return nil, model.NewNotFoundError("Shipping address", id)
	}
	if addr.UserID != userID {
		s.logger.Warn().
			Int64("user_id", userID).
			Int64("shipping_address_id", id).
			Msg("shipping address belongs to another user")
		return nil, model.ErrForbidden
	}
	return addr, nil
}

// expand attaches the hierarchy. An address whose ward was pruned is
// returned without it.
func (s *addressBookService) expand(ctx context.Context, addr model.ShippingAddress) (*model.ShippingAddressView, error) {
	view, err := s.deps.Tree.Expand(ctx, addr)
	if err != nil {
		var nf *model.NotFoundError
		if view != nil && errors.As(err, &nf) {
			s.logger.Debug().Err(err).Int64("shipping_address_id", addr.ID).Msg("shipping address only partly resolved")
			return view, nil
		}
		return nil, errors.Wrap(err, "expand shipping address")
	}
	return view, nil
}

func (s *addressBookService) validate(ctx context.Context, addr *model.ShippingAddress) error {
	var bad []string
	if n := utf8.RuneCountInString(addr.RecipientName); n == 0 || n > maxRecipientNameLen {
		bad = append(bad, "recipientName")
	}
	if n := len(addr.Phone); n < minPhoneLen || n > maxPhoneLen {
		bad = append(bad, "phone")
	}
	if utf8.RuneCountInString(addr.MoreDetail) > maxMoreDetailLen {
		bad = append(bad, "moreDetail")
	}
	if addr.WardCode == nil || *addr.WardCode <= 0 {
		bad = append(bad, "wardCode")
	} else if _, err := s.deps.Tree.Get(ctx, model.LevelWard, *addr.WardCode); err != nil {
		var nf *model.NotFoundError
		if !errors.As(err, &nf) {
			return errors.Wrap(err, "look up ward")
		}
		bad = append(bad, "wardCode")
	}
	if len(bad) > 0 {
		return model.NewFieldError("Invalid shipping address", bad...)
	}
	return nil
}
