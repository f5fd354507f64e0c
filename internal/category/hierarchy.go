package category

import (
	"context"
	"sort"
	"strings"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/go-faster/errors"
	"github.com/rs/zerolog"
)

// Hierarchy serves category reads.
type Hierarchy struct {
	repo     repository.CategoryRepository
	resolver Resolver
	logger   zerolog.Logger
}

// NewHierarchy creates a Hierarchy. resolver expands descendants and may be cached.
func NewHierarchy(repo repository.CategoryRepository, resolver Resolver, logger zerolog.Logger) *Hierarchy {
	return &Hierarchy{
		repo:     repo,
		resolver: resolver,
		logger:   logger.With().Str("component", "category").Logger(),
	}
}

// NormalizeName maps a URL slug such as "Men-Shoes" to the stored form "men shoes".
func NormalizeName(name string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ToLower(name), "-", " "))
}

// List returns every category ordered by id.
func (h *Hierarchy) List(ctx context.Context) ([]model.Category, error) {
	cats, err := h.repo.ListAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	if cats == nil {
		cats = []model.Category{}
	}
	return cats, nil
}

// Get returns one category or a NotFoundError.
func (h *Hierarchy) Get(ctx context.Context, id int64) (*model.Category, error) {
	cat, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get category")
	}
	if cat == nil {
		return nil, model.NewNotFoundError("Category", id)
	}
	return cat, nil
}

// Descendants returns id plus all descendant ids.
func (h *Hierarchy) Descendants(ctx context.Context, id int64) ([]int64, error) {
	if _, err := h.Get(ctx, id); err != nil {
		return nil, err
	}
	return h.resolver.ResolveDescendants(ctx, id)
}

// DescendantsByName looks a category up by its slug and expands it.
func (h *Hierarchy) DescendantsByName(ctx context.Context, name string) (*model.Category, []int64, error) {
	normalized := NormalizeName(name)
	if normalized == "" {
		return nil, nil, model.NewFieldError("Category name is required", "categoryName")
	}

	cat, err := h.repo.GetByName(ctx, normalized)
	if err != nil {
		return nil, nil, errors.Wrap(err, "get category by name")
	}
	if cat == nil {
		return nil, nil, model.NewNotFoundError("Category", normalized)
	}

	ids, err := h.resolver.ResolveDescendants(ctx, cat.ID)
	if err != nil {
		return nil, nil, err
	}
	return cat, ids, nil
}

// Tree returns the categories as a forest. Nodes whose parent is missing
// become roots. Nodes caught in a cycle are attached under the lowest id
// of the cycle, which is promoted to a root.
func (h *Hierarchy) Tree(ctx context.Context) ([]*model.CategoryNode, error) {
	cats, err := h.List(ctx)
	if err != nil {
		return nil, err
	}
	return BuildTree(cats), nil
}

// BuildTree assembles cats into a forest ordered by id. Every category
// appears exactly once.
func BuildTree(cats []model.Category) []*model.CategoryNode {
	sorted := make([]model.Category, len(cats))
	copy(sorted, cats)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	byID := make(map[int64]*model.CategoryNode, len(sorted))
	for _, c := range sorted {
		byID[c.ID] = &model.CategoryNode{Category: c}
	}
	children := make(map[int64][]*model.CategoryNode, len(sorted))
	var roots []*model.CategoryNode
	for _, c := range sorted {
		node := byID[c.ID]
		if c.ParentID == nil || byID[*c.ParentID] == nil || *c.ParentID == c.ID {
			roots = append(roots, node)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], node)
	}

	placed := make(map[int64]struct{}, len(sorted))
	var attach func(n *model.CategoryNode)
	attach = func(n *model.CategoryNode) {
		placed[n.ID] = struct{}{}
		for _, child := range children[n.ID] {
			if _, ok := placed[child.ID]; ok {
				continue
			}
			n.Children = append(n.Children, child)
			attach(child)
		}
	}

	forest := make([]*model.CategoryNode, 0, len(roots))
	for _, root := range roots {
		attach(root)
		forest = append(forest, root)
	}
	for _, c := range sorted {
		if _, ok := placed[c.ID]; ok {
			continue
		}
		root := byID[cycleRoot(c.ID, byID)]
		attach(root)
		forest = append(forest, root)
	}

	sort.Slice(forest, func(i, j int) bool { return forest[i].ID < forest[j].ID })
	for _, n := range byID {
		if n.Children == nil {
			n.Children = []*model.CategoryNode{}
		}
	}
	return forest
}

// cycleRoot follows parent links from id until a category repeats and
// returns the lowest id on that cycle.
func cycleRoot(id int64, byID map[int64]*model.CategoryNode) int64 {
	pos := make(map[int64]int)
	var path []int64
	for {
		if i, ok := pos[id]; ok {
			lowest := path[i]
			for _, v := range path[i:] {
				lowest = min(lowest, v)
			}
			return lowest
		}
		pos[id] = len(path)
		path = append(path, id)

		parent := byID[id].ParentID
		if parent == nil || byID[*parent] == nil {
			return id
		}
		id = *parent
	}
}
