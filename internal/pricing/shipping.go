package pricing

import (
	"context"

	"storefront/internal/config"
	"storefront/internal/model"

	"github.com/go-faster/errors"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// FeeTable holds the shipping fee amounts.
type FeeTable struct {
	CapitalFee           decimal.Decimal
	ProvinceFee          decimal.Decimal
	NearCapitalSurcharge decimal.Decimal
	CentralSurcharge     decimal.Decimal
	SouthernSurcharge    decimal.Decimal
	DefaultSurcharge     decimal.Decimal
	FallbackFee          decimal.Decimal
}

// DefaultFeeTable returns the stock fee table.
func DefaultFeeTable() FeeTable {
	return FeeTableFromConfig(config.ShippingConfig{
		CapitalFee:           30000,
		ProvinceFee:          35000,
		NearCapitalSurcharge: 5000,
		CentralSurcharge:     10000,
		SouthernSurcharge:    20000,
		DefaultSurcharge:     15000,
		FallbackFee:          30000,
	})
}

// FeeTableFromConfig converts configured fees into a FeeTable.
func FeeTableFromConfig(cfg config.ShippingConfig) FeeTable {
	return FeeTable{
		CapitalFee:           decimal.NewFromInt(cfg.CapitalFee),
		ProvinceFee:          decimal.NewFromInt(cfg.ProvinceFee),
		NearCapitalSurcharge: decimal.NewFromInt(cfg.NearCapitalSurcharge),
		CentralSurcharge:     decimal.NewFromInt(cfg.CentralSurcharge),
		SouthernSurcharge:    decimal.NewFromInt(cfg.SouthernSurcharge),
		DefaultSurcharge:     decimal.NewFromInt(cfg.DefaultSurcharge),
		FallbackFee:          decimal.NewFromInt(cfg.FallbackFee),
	}
}

// FeeForRegion computes the fee for a resolved top-level region name.
// The capital pays the capital fee with no surcharge; every other region
// pays the province fee plus its bucket surcharge.
func (t FeeTable) FeeForRegion(region string) decimal.Decimal {
	switch Classify(region) {
	case BucketCapital:
		return t.CapitalFee
	case BucketNearCapital:
		return t.ProvinceFee.Add(t.NearCapitalSurcharge)
	case BucketCentral:
		return t.ProvinceFee.Add(t.CentralSurcharge)
	case BucketSouthernHub:
		return t.ProvinceFee.Add(t.SouthernSurcharge)
	default:
		return t.ProvinceFee.Add(t.DefaultSurcharge)
	}
}

// RegionResolver resolves a shipping address to the name of its top-level region.
type RegionResolver interface {
	ResolveRegion(ctx context.Context, shippingAddressID int64) (string, error)
}

// Estimate is a shipping fee estimate. When the address could not be
// resolved Fallback is set, Fee holds the fallback fee and Err says why.
type Estimate struct {
	Fee      decimal.Decimal
	Region   string
	Fallback bool
	Err      error
}

// Engine estimates shipping fees.
type Engine struct {
	fees     FeeTable
	resolver RegionResolver
	logger   zerolog.Logger
}

// NewEngine creates a pricing engine.
func NewEngine(fees FeeTable, resolver RegionResolver, logger zerolog.Logger) *Engine {
	return &Engine{
		fees:     fees,
		resolver: resolver,
		logger:   logger.With().Str("component", "pricing").Logger(),
	}
}

// EstimateShippingFee never fails: resolution errors yield the fallback fee.
func (e *Engine) EstimateShippingFee(ctx context.Context, shippingAddressID int64) Estimate {
	region, err := e.resolver.ResolveRegion(ctx, shippingAddressID)
	return e.estimate(shippingAddressID, region, err)
}

// EstimateForAddress prices an address that was already resolved.
// resolveErr is the error Resolve returned alongside view, if any.
func (e *Engine) EstimateForAddress(view *model.ShippingAddressView, resolveErr error) Estimate {
	var id int64
	if view != nil {
		id = view.ID
	}
	if resolveErr == nil && (view == nil || view.City == nil) {
		resolveErr = model.NewNotFoundError("City of shipping address", id)
	}
	if resolveErr != nil {
		return e.estimate(id, "", resolveErr)
	}
	return e.estimate(id, view.City.Name, nil)
}

func (e *Engine) estimate(shippingAddressID int64, region string, err error) Estimate {
	if err != nil {
		e.logger.Warn().
			Err(err).
			Int64("shipping_address_id", shippingAddressID).
			Msg("shipping address unresolved, using fallback fee")
		return Estimate{
			Fee:      e.fees.FallbackFee,
			Fallback: true,
			Err:      errors.Wrap(err, "resolve region"),
		}
	}

	fee := e.fees.FeeForRegion(region)
	e.logger.Debug().
		Int64("shipping_address_id", shippingAddressID).
		Str("region", region).
		Str("fee", fee.String()).
		Msg("shipping fee estimated")
	return Estimate{Fee: fee, Region: region}
}
