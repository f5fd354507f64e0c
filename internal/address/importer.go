package address

import (
	"context"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Importer loads the three dataset files and writes them in one transaction.
type Importer struct {
	loader Loader
	repo   repository.AddressRepository
	tx     repository.TxManager
	logger zerolog.Logger
}

// NewImporter creates an Importer.
func NewImporter(loader Loader, repo repository.AddressRepository, tx repository.TxManager, logger zerolog.Logger) *Importer {
	return &Importer{
		loader: loader,
		repo:   repo,
		tx:     tx,
		logger: logger.With().Str("component", "address-importer").Logger(),
	}
}

// LoadDataset reads all levels concurrently.
func (i *Importer) LoadDataset(ctx context.Context) (*Dataset, error) {
	var ds Dataset
	targets := map[model.AddressLevel]*[]model.AddressNode{
		model.LevelCity:     &ds.Cities,
		model.LevelDistrict: &ds.Districts,
		model.LevelWard:     &ds.Wards,
	}

	g, ctx := errgroup.WithContext(ctx)
	for level, dst := range targets {
		g.Go(func() error {
			nodes, err := i.loader.Load(ctx, level, LevelFiles[level])
			if err != nil {
				return errors.Wrapf(err, "load %s", level)
			}
			*dst = nodes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Import loads, validates and upserts the dataset. Nothing is written
// when validation fails.
func (i *Importer) Import(ctx context.Context) (*Dataset, error) {
	start := time.Now()

	ds, err := i.LoadDataset(ctx)
	if err != nil {
		i.logger.Error().Err(err).Msg("failed to load address dataset")
		return nil, err
	}

	if err := ds.Validate(); err != nil {
		i.logger.Error().Err(err).Msg("address dataset rejected")
		return nil, err
	}

	err = repository.WithTx(ctx, i.tx, i.logger, func(tx pgx.Tx) error {
		return i.repo.UpsertAll(ctx, tx, ds.Cities, ds.Districts, ds.Wards)
	})
	if err != nil {
		i.logger.Error().Err(err).Msg("failed to import address dataset")
		return nil, errors.Wrap(err, "import address dataset")
	}

	i.logger.Info().
		Int("cities", len(ds.Cities)).
		Int("districts", len(ds.Districts)).
		Int("wards", len(ds.Wards)).
		Dur("duration", time.Since(start)).
		Msg("address dataset imported")
	return ds, nil
}
