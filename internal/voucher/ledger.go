// Package voucher validates and redeems vouchers and administers them.
package voucher

import (
	"context"
	"time"

	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/repository"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Rejection codes, used as metric labels.
const (
	RejectNotFound     = "not_found"
	RejectInactive     = "inactive"
	RejectNotStarted   = "not_started"
	RejectExpired      = "expired"
	RejectExhausted    = "exhausted"
	RejectAlreadyUsed  = "already_used"
	RejectBelowMinimum = "below_minimum"
)

var reasons = map[string]string{
	RejectNotFound:    "Voucher not found",
	RejectInactive:    "Voucher is not active",
	RejectNotStarted:  "Voucher is not yet valid",
	RejectExpired:     "Voucher has expired",
	RejectExhausted:   "Voucher usage limit reached",
	RejectAlreadyUsed: "You have already used this voucher",
}

const validMessage = "Voucher is valid"

// ValidationResult is the outcome of a voucher check. A rejected voucher
// is a result, not an error.
type ValidationResult struct {
	Valid          bool
	Code           string
	Reason         string
	DiscountAmount decimal.Decimal
	Voucher        *model.Voucher
}

// Response renders r for the API.
func (r ValidationResult) Response() model.VoucherValidationResponse {
	resp := model.VoucherValidationResponse{IsValid: r.Valid, Message: r.Reason}
	if r.Valid {
		resp.DiscountAmount = decimal.NewNullDecimal(r.DiscountAmount)
	}
	return resp
}

// Ledger checks vouchers against an order and records redemptions.
type Ledger struct {
	repo    repository.VoucherRepository
	tx      repository.TxManager
	metrics *metrics.Metrics
	now     func() time.Time
	logger  zerolog.Logger
}

// Option configures a Ledger or Admin.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewLedger creates a Ledger.
func NewLedger(repo repository.VoucherRepository, tx repository.TxManager, m *metrics.Metrics, logger zerolog.Logger, opts ...Option) *Ledger {
	o := buildOptions(opts)
	return &Ledger{
		repo:    repo,
		tx:      tx,
		metrics: m,
		now:     o.now,
		logger:  logger.With().Str("component", "voucher-ledger").Logger(),
	}
}

// Validate runs the voucher checks in order and stops at the first failure.
// orderAmount includes shippingFee; the product part is orderAmount minus
// shippingFee. On success the result carries the discount the voucher
// would grant.
func (l *Ledger) Validate(ctx context.Context, code string, userID int64, orderAmount, shippingFee decimal.Decimal) (ValidationResult, error) {
	v, err := l.repo.GetByCode(ctx, code)
	if err != nil {
		return ValidationResult{}, errors.Wrap(err, "get voucher")
	}
	if v == nil {
		return l.reject(code, userID, RejectNotFound, nil), nil
	}

	now := l.now()
	switch {
	case !v.IsActive:
		return l.reject(code, userID, RejectInactive, v), nil
	case now.Before(v.StartDate):
		return l.reject(code, userID, RejectNotStarted, v), nil
	case now.After(v.EndDate):
		return l.reject(code, userID, RejectExpired, v), nil
	case v.MaxUsageCount != nil && v.CurrentUsageCount >= *v.MaxUsageCount:
		return l.reject(code, userID, RejectExhausted, v), nil
	}

	used, err := l.repo.HasUsage(ctx, userID, v.ID)
	if err != nil {
		return ValidationResult{}, errors.Wrap(err, "check voucher usage")
	}
	if used {
		return l.reject(code, userID, RejectAlreadyUsed, v), nil
	}

	if v.MinOrderAmount.Valid && orderAmount.LessThan(v.MinOrderAmount.Decimal) {
		res := l.reject(code, userID, RejectBelowMinimum, v)
		res.Reason = "Minimum order amount is " + v.MinOrderAmount.Decimal.String()
		return res, nil
	}

	productAmount := orderAmount.Sub(shippingFee)
	if productAmount.IsNegative() {
		productAmount = decimal.Zero
	}
	discount := pricing.Discount(pricing.SnapshotOf(v), productAmount, shippingFee)

	l.logger.Debug().
		Str("code", code).
		Int64("user_id", userID).
		Str("discount", discount.String()).
		Msg("voucher valid")
	return ValidationResult{
		Valid:          true,
		Reason:         validMessage,
		DiscountAmount: discount,
		Voucher:        v,
	}, nil
}

func (l *Ledger) reject(code string, userID int64, rejection string, v *model.Voucher) ValidationResult {
	l.metrics.VoucherRejections.WithLabelValues(rejection).Inc()
	l.logger.Debug().
		Str("code", code).
		Int64("user_id", userID).
		Str("rejection", rejection).
		Msg("voucher rejected")
	return ValidationResult{Code: rejection, Reason: reasons[rejection], Voucher: v}
}

// Apply redeems the voucher for userID. The usage row and the counter
// increment commit together; a second redemption by the same user returns
// model.ErrVoucherAlreadyUsed and a full voucher model.ErrVoucherExhausted.
func (l *Ledger) Apply(ctx context.Context, code string, userID int64, orderID *int64) (*model.VoucherUsage, error) {
	v, err := l.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, "get voucher")
	}
	if v == nil {
		return nil, model.NewNotFoundError("Voucher", code)
	}

	usage := &model.VoucherUsage{UserID: userID, VoucherID: v.ID, OrderID: orderID}
	err = repository.WithTx(ctx, l.tx, l.logger, func(tx pgx.Tx) error {
		return l.repo.Redeem(ctx, tx, usage)
	})
	if err != nil {
		var derr *model.DomainError
		if errors.As(err, &derr) {
			l.logger.Warn().
				Str("code", code).
				Int64("user_id", userID).
				Str("reason", derr.Code).
				Msg("voucher redemption refused")
			return nil, err
		}
		return nil, errors.Wrap(err, "redeem voucher")
	}

	l.logger.Info().
		Str("code", code).
		Int64("user_id", userID).
		Int64("usage_id", usage.ID).
		Msg("voucher applied")
	return usage, nil
}
