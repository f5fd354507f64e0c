package category

import (
	"context"
	"testing"

	"storefront/internal/model"
	"storefront/internal/repository/mocks"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "men shoes", NormalizeName("Men-Shoes"))
	assert.Equal(t, "t shirt", NormalizeName(" T-Shirt "))
	assert.Equal(t, "", NormalizeName("  "))
}

func TestHierarchy_DescendantsByName(t *testing.T) {
	ctx := context.Background()
	cats := []model.Category{
		{ID: 1, Name: "men shoes"},
		{ID: 2, Name: "sneakers", ParentID: ptr(1)},
	}
	repo := treeRepo(cats...)
	repo.On("GetByName", ctx, "men shoes").Return(&cats[0], nil)
	repo.On("GetByName", ctx, "unknown").Return(nil, nil)

	h := NewHierarchy(repo, NewResolver(repo, zerolog.Nop()), zerolog.Nop())

	cat, ids, err := h.DescendantsByName(ctx, "Men-Shoes")
	require.NoError(t, err)
	assert.Equal(t, int64(1), cat.ID)
	assert.Equal(t, []int64{1, 2}, ids)

	_, _, err = h.DescendantsByName(ctx, "unknown")
	var nf *model.NotFoundError
	assert.ErrorAs(t, err, &nf)

	_, _, err = h.DescendantsByName(ctx, "-")
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestHierarchy_Descendants_UnknownID(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.CategoryRepository)
	repo.On("GetByID", ctx, int64(42)).Return(nil, nil)

	_, err := NewHierarchy(repo, NewResolver(repo, zerolog.Nop()), zerolog.Nop()).Descendants(ctx, 42)

	var nf *model.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "42", nf.ID)
}

func collectIDs(nodes []*model.CategoryNode, out map[int64]int) {
	for _, n := range nodes {
		out[n.ID]++
		collectIDs(n.Children, out)
	}
}

func TestBuildTree(t *testing.T) {
	cats := []model.Category{
		{ID: 4, Name: "sneakers", ParentID: ptr(2)},
		{ID: 1, Name: "men"},
		{ID: 2, Name: "men shoes", ParentID: ptr(1)},
		{ID: 3, Name: "orphan", ParentID: ptr(99)},
		{ID: 5, Name: "women"},
	}

	forest := BuildTree(cats)

	require.Len(t, forest, 3)
	assert.Equal(t, []int64{1, 3, 5}, []int64{forest[0].ID, forest[1].ID, forest[2].ID})
	require.Len(t, forest[0].Children, 1)
	assert.Equal(t, int64(2), forest[0].Children[0].ID)
	assert.Equal(t, int64(4), forest[0].Children[0].Children[0].ID)
	assert.NotNil(t, forest[2].Children)
}

func TestBuildTree_Cycles(t *testing.T) {
	cats := []model.Category{
		{ID: 3, Name: "tail", ParentID: ptr(5)},
		{ID: 5, Name: "a", ParentID: ptr(6)},
		{ID: 6, Name: "b", ParentID: ptr(5)},
		{ID: 7, Name: "self", ParentID: ptr(7)},
	}

	forest := BuildTree(cats)

	require.Len(t, forest, 2)
	assert.Equal(t, int64(5), forest[0].ID)
	assert.Equal(t, int64(7), forest[1].ID)

	seen := map[int64]int{}
	collectIDs(forest, seen)
	assert.Equal(t, map[int64]int{3: 1, 5: 1, 6: 1, 7: 1}, seen)
}

func TestHierarchy_ListEmpty(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.CategoryRepository)
	repo.On("ListAll", ctx).Return(nil, nil)

	h := NewHierarchy(repo, NewResolver(repo, zerolog.Nop()), zerolog.Nop())
	cats, err := h.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, cats)

	tree, err := h.Tree(ctx)
	require.NoError(t, err)
	assert.Empty(t, tree)
}
