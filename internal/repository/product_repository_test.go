package repository

import (
	"context"
	"testing"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepository(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewProductRepository(pool, zerolog.Nop())
	f := newFixture(t, pool)

	shirts := f.category("shirts", nil)
	shoes := f.category("shoes", nil)

	tee := f.product("Tee", shirts)
	teeS := f.variant(tee, "150000", 5, "S", "white")
	f.variant(tee, "170000", 0, "M", "black")

	polo := f.product("Polo", shirts)
	f.variant(polo, "350000", 2, "L", "navy")

	sneaker := f.product("Sneaker", shoes)
	f.variant(sneaker, "900000", 0, "42", "white")

	t.Run("List by category sorted by price", func(t *testing.T) {
		page, err := repo.List(ctx, model.ProductQuery{
			CategoryIDs: []int64{shirts},
			SortBy:      model.SortPriceDesc,
			Limit:       10,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, page.TotalProducts)
		require.Len(t, page.Products, 2)
		assert.Equal(t, "Polo", page.Products[0].Name)
		assert.Equal(t, "Tee", page.Products[1].Name)
		assert.Len(t, page.Products[1].Variants, 2)
		assert.True(t, decimal.RequireFromString("150000").Equal(page.Products[1].MinPrice))
		assert.Equal(t, 5, page.Products[1].TotalStock)
	})

	t.Run("List with price range, colour and stock filters", func(t *testing.T) {
		inStock := false
		page, err := repo.List(ctx, model.ProductQuery{
			MinPrice: decimal.NewNullDecimal(decimal.RequireFromString("500000")),
			Colors:   []string{"white"},
			InStock:  &inStock,
			Limit:    10,
		})
		require.NoError(t, err)
		require.Len(t, page.Products, 1)
		assert.Equal(t, sneaker, page.Products[0].ID)
	})

	t.Run("List paginates but counts everything", func(t *testing.T) {
		page, err := repo.List(ctx, model.ProductQuery{Limit: 1, Offset: 1})
		require.NoError(t, err)
		assert.Equal(t, 3, page.TotalProducts)
		assert.Len(t, page.Products, 1)
	})

	t.Run("List rejects unknown sort", func(t *testing.T) {
		_, err := repo.List(ctx, model.ProductQuery{SortBy: "random", Limit: 1})
		require.Error(t, err)
		var verr *model.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("GetByID", func(t *testing.T) {
		p, err := repo.GetByID(ctx, polo)
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "Polo", p.Name)
		require.Len(t, p.Variants, 1)
		assert.Equal(t, "navy", *p.Variants[0].Color)

		missing, err := repo.GetByID(ctx, sneaker+1000)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("GetVariantsByIDs omits unknown ids", func(t *testing.T) {
		variants, err := repo.GetVariantsByIDs(ctx, []int64{teeS, 999999})
		require.NoError(t, err)
		require.Len(t, variants, 1)
		assert.Equal(t, "Tee", variants[0].ProductName)
		assert.True(t, decimal.RequireFromString("150000").Equal(variants[0].Price))
	})
}
