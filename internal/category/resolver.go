// Package category expands categories into their descendants and builds
// the category tree.
package category

import (
	"context"

	"storefront/internal/repository"

	"github.com/go-faster/errors"
	"github.com/rs/zerolog"
)

// Resolver expands a category into itself plus every descendant.
type Resolver interface {
	// ResolveDescendants returns rootID followed by its descendants in
	// breadth-first order, without duplicates.
	ResolveDescendants(ctx context.Context, rootID int64) ([]int64, error)
}

// bfsResolver walks the tree one level per query.
type bfsResolver struct {
	repo   repository.CategoryRepository
	logger zerolog.Logger
}

// NewResolver creates a Resolver that queries the store level by level.
func NewResolver(repo repository.CategoryRepository, logger zerolog.Logger) Resolver {
	return &bfsResolver{
		repo:   repo,
		logger: logger.With().Str("component", "category-resolver").Logger(),
	}
}

func (r *bfsResolver) ResolveDescendants(ctx context.Context, rootID int64) ([]int64, error) {
	visited := map[int64]struct{}{rootID: {}}
	result := []int64{rootID}
	frontier := []int64{rootID}

	for len(frontier) > 0 {
		children, err := r.repo.ListChildren(ctx, frontier)
		if err != nil {
			return nil, errors.Wrapf(err, "expand category %d", rootID)
		}

		next := frontier[:0:0]
		for _, c := range children {
			if _, seen := visited[c.ID]; seen {
				r.logger.Warn().
					Int64("root_id", rootID).
					Int64("category_id", c.ID).
					Msg("category reached twice, tree contains a cycle")
				continue
			}
			visited[c.ID] = struct{}{}
			result = append(result, c.ID)
			next = append(next, c.ID)
		}
		frontier = next
	}

	r.logger.Debug().
		Int64("root_id", rootID).
		Int("count", len(result)).
		Msg("category descendants resolved")
	return result, nil
}
