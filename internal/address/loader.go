package address

import (
	"context"
	"os"
	"path/filepath"

	"storefront/internal/model"

	"github.com/go-faster/errors"
	"github.com/rs/zerolog"
)

// Dataset file names, one per level.
const (
	CityFile     = "city.json.gz"
	DistrictFile = "district.json.gz"
	WardFile     = "ward.json.gz"
)

// LevelFiles maps each hierarchy level to its dataset file.
var LevelFiles = map[model.AddressLevel]string{
	model.LevelCity:     CityFile,
	model.LevelDistrict: DistrictFile,
	model.LevelWard:     WardFile,
}

// Loader reads the nodes of one level from a named dataset file.
type Loader interface {
	Load(ctx context.Context, level model.AddressLevel, name string) ([]model.AddressNode, error)
}

// fileLoader reads gzipped datasets from a local directory.
type fileLoader struct {
	dir    string
	logger zerolog.Logger
}

// NewFileLoader creates a Loader rooted at dir.
func NewFileLoader(dir string, logger zerolog.Logger) Loader {
	return &fileLoader{
		dir:    dir,
		logger: logger.With().Str("component", "address-file-loader").Logger(),
	}
}

func (l *fileLoader) Load(ctx context.Context, level model.AddressLevel, name string) ([]model.AddressNode, error) {
	path := filepath.Join(l.dir, name)
	l.logger.Info().Str("file", path).Stringer("level", level).Msg("loading address dataset")

	f, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open address dataset")
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	nodes, err := Decode(ctx, f, level)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to decode address dataset")
		return nil, errors.Wrapf(err, "decode %s", path)
	}

	l.logger.Info().
		Str("file", path).
		Int("nodes", len(nodes)).
		Msg("address dataset loaded")
	return nodes, nil
}
