package voucher

import (
	"context"
	"strings"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/go-faster/errors"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Admin manages the voucher catalogue.
type Admin struct {
	repo   repository.VoucherRepository
	now    func() time.Time
	logger zerolog.Logger
}

// NewAdmin creates an Admin.
func NewAdmin(repo repository.VoucherRepository, logger zerolog.Logger, opts ...Option) *Admin {
	o := buildOptions(opts)
	return &Admin{
		repo:   repo,
		now:    o.now,
		logger: logger.With().Str("service", "voucher").Logger(),
	}
}

// Create validates req and stores a new voucher. New vouchers are active
// unless req says otherwise.
func (a *Admin) Create(ctx context.Context, req *model.CreateVoucherRequest) (*model.Voucher, error) {
	v := &model.Voucher{
		Code:              strings.TrimSpace(req.Code),
		Name:              strings.TrimSpace(req.Name),
		Description:       req.Description,
		Type:              req.Type,
		DiscountType:      req.DiscountType,
		DiscountValue:     req.DiscountValue,
		MaxDiscountAmount: req.MaxDiscountAmount,
		MinOrderAmount:    req.MinOrderAmount,
		MaxUsageCount:     req.MaxUsageCount,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		IsActive:          true,
	}
	if req.IsActive != nil {
		v.IsActive = *req.IsActive
	}

	if err := validateVoucher(v); err != nil {
		return nil, err
	}
	if !v.EndDate.After(a.now()) {
		return nil, model.NewFieldError("End date must be in the future", "endDate")
	}

	taken, err := a.repo.CodeExists(ctx, v.Code, 0)
	if err != nil {
		return nil, errors.Wrap(err, "check voucher code")
	}
	if taken {
		return nil, model.ErrVoucherCodeTaken
	}

	if err := a.repo.Create(ctx, v); err != nil {
		return nil, errors.Wrap(err, "create voucher")
	}

	a.logger.Info().Int64("voucher_id", v.ID).Str("code", v.Code).Msg("voucher created")
	return v, nil
}

// List returns every voucher, newest first.
func (a *Admin) List(ctx context.Context) ([]model.Voucher, error) {
	vs, err := a.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list vouchers")
	}
	return nonNil(vs), nil
}

// ListActive returns active vouchers whose window contains now.
func (a *Admin) ListActive(ctx context.Context) ([]model.Voucher, error) {
	vs, err := a.repo.ListActive(ctx, a.now())
	if err != nil {
		return nil, errors.Wrap(err, "list active vouchers")
	}
	return nonNil(vs), nil
}

// Get returns one voucher or a NotFoundError.
func (a *Admin) Get(ctx context.Context, id int64) (*model.Voucher, error) {
	v, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get voucher")
	}
	if v == nil {
		return nil, model.NewNotFoundError("Voucher", id)
	}
	return v, nil
}

// Update applies the non-nil fields of req.
func (a *Admin) Update(ctx context.Context, id int64, req *model.UpdateVoucherRequest) (*model.Voucher, error) {
	v, err := a.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Code != nil {
		code := strings.TrimSpace(*req.Code)
		if code != v.Code {
			taken, err := a.repo.CodeExists(ctx, code, id)
			if err != nil {
				return nil, errors.Wrap(err, "check voucher code")
			}
			if taken {
				return nil, model.ErrVoucherCodeTaken
			}
		}
		v.Code = code
	}
	if req.Name != nil {
		v.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		v.Description = req.Description
	}
	if req.Type != nil {
		v.Type = *req.Type
	}
	if req.DiscountType != nil {
		v.DiscountType = *req.DiscountType
	}
	if req.DiscountValue.Valid {
		v.DiscountValue = req.DiscountValue.Decimal
	}
	if req.MaxDiscountAmount.Valid {
		v.MaxDiscountAmount = req.MaxDiscountAmount
	}
	if req.MinOrderAmount.Valid {
		v.MinOrderAmount = req.MinOrderAmount
	}
	if req.MaxUsageCount != nil {
		v.MaxUsageCount = req.MaxUsageCount
	}
	if req.StartDate != nil {
		v.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		v.EndDate = *req.EndDate
	}
	if req.IsActive != nil {
		v.IsActive = *req.IsActive
	}

	if err := validateVoucher(v); err != nil {
		return nil, err
	}

	if err := a.repo.Update(ctx, v); err != nil {
		if errors.Is(err, model.ErrVoucherCodeTaken) {
			return nil, err
		}
		return nil, errors.Wrap(err, "update voucher")
	}

	a.logger.Info().Int64("voucher_id", v.ID).Msg("voucher updated")
	return v, nil
}

// Delete removes a voucher that nobody has redeemed.
func (a *Admin) Delete(ctx context.Context, id int64) error {
	if _, err := a.Get(ctx, id); err != nil {
		return err
	}

	n, err := a.repo.CountUsages(ctx, id)
	if err != nil {
		return errors.Wrap(err, "count voucher usages")
	}
	if n > 0 {
		return model.ErrVoucherInUse
	}

	if err := a.repo.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "delete voucher")
	}

	a.logger.Info().Int64("voucher_id", id).Msg("voucher deleted")
	return nil
}

// validateVoucher checks the field rules shared by create and update.
func validateVoucher(v *model.Voucher) error {
	var missing []string
	if v.Code == "" {
		missing = append(missing, "code")
	}
	if v.Name == "" {
		missing = append(missing, "name")
	}
	if !v.Type.Valid() {
		missing = append(missing, "type")
	}
	if !v.DiscountType.Valid() {
		missing = append(missing, "discountType")
	}
	if v.StartDate.IsZero() {
		missing = append(missing, "startDate")
	}
	if v.EndDate.IsZero() {
		missing = append(missing, "endDate")
	}
	if len(missing) > 0 {
		return model.NewFieldError("Missing or invalid voucher fields", missing...)
	}

	if !v.StartDate.Before(v.EndDate) {
		return model.NewFieldError("Start date must be before end date", "startDate", "endDate")
	}

	switch v.DiscountType {
	case model.DiscountTypePercentage:
		if !v.DiscountValue.IsPositive() || v.DiscountValue.GreaterThan(hundred) {
			return model.NewFieldError("Percentage discount must be between 1 and 100", "discountValue")
		}
	case model.DiscountTypeFixedAmount:
		if !v.DiscountValue.IsPositive() {
			return model.NewFieldError("Fixed amount discount must be greater than 0", "discountValue")
		}
	}

	if v.MaxDiscountAmount.Valid && v.MaxDiscountAmount.Decimal.IsNegative() {
		return model.NewFieldError("Maximum discount cannot be negative", "maxDiscountAmount")
	}
	if v.MinOrderAmount.Valid && v.MinOrderAmount.Decimal.IsNegative() {
		return model.NewFieldError("Minimum order amount cannot be negative", "minOrderAmount")
	}
	if v.MaxUsageCount != nil && *v.MaxUsageCount <= 0 {
		return model.NewFieldError("Usage limit must be greater than 0", "maxUsageCount")
	}
	if v.MaxUsageCount != nil && *v.MaxUsageCount < v.CurrentUsageCount {
		return model.NewFieldError("Usage limit is below the current usage count", "maxUsageCount")
	}
	return nil
}

func nonNil(vs []model.Voucher) []model.Voucher {
	if vs == nil {
		return []model.Voucher{}
	}
	return vs
}
