package address

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/model"
	"storefront/internal/repository/mocks"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededRepo() *mocks.AddressRepository {
	ctx := context.Background()
	repo := new(mocks.AddressRepository)

	repo.On("GetShippingAddress", ctx, int64(10)).
		Return(&model.ShippingAddress{ID: 10, UserID: 1, WardCode: intPtr(1)}, nil)
	repo.On("GetNode", ctx, model.LevelWard, 1).
		Return(&model.AddressNode{Level: model.LevelWard, Code: 1, Name: "Phường Phúc Xá", ParentCode: intPtr(1)}, nil)
	repo.On("GetNode", ctx, model.LevelDistrict, 1).
		Return(&model.AddressNode{Level: model.LevelDistrict, Code: 1, Name: "Quận Ba Đình", ParentCode: intPtr(1)}, nil)
	repo.On("GetNode", ctx, model.LevelCity, 1).
		Return(&model.AddressNode{Level: model.LevelCity, Code: 1, Name: "Thành phố Hà Nội"}, nil)
	return repo
}

func TestHierarchy_Resolve(t *testing.T) {
	h := NewHierarchy(seededRepo(), zerolog.Nop())

	view, err := h.Resolve(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, "Phường Phúc Xá", view.Ward.Name)
	assert.Equal(t, "Quận Ba Đình", view.District.Name)
	assert.Equal(t, "Thành phố Hà Nội", view.City.Name)

	region, err := h.ResolveRegion(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, "Thành phố Hà Nội", region)
}

func TestHierarchy_Expand(t *testing.T) {
	repo := seededRepo()
	h := NewHierarchy(repo, zerolog.Nop())

	view, err := h.Expand(context.Background(), model.ShippingAddress{ID: 11, UserID: 1, WardCode: intPtr(1)})

	require.NoError(t, err)
	assert.Equal(t, int64(11), view.ID)
	assert.Equal(t, "Thành phố Hà Nội", view.City.Name)
	repo.AssertNotCalled(t, "GetShippingAddress", context.Background(), int64(11))

	partial, err := h.Expand(context.Background(), model.ShippingAddress{ID: 12})
	var nf *model.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, int64(12), partial.ID)
	assert.Nil(t, partial.Ward)
}

func TestHierarchy_Resolve_Failures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		setup      func(repo *mocks.AddressRepository)
		wantEntity string
		wantErr    string
	}{
		{
			name: "unknown shipping address",
			setup: func(repo *mocks.AddressRepository) {
				repo.On("GetShippingAddress", ctx, int64(10)).Return(nil, nil)
			},
			wantEntity: "Shipping address",
		},
		{
			name: "address without ward",
			setup: func(repo *mocks.AddressRepository) {
				repo.On("GetShippingAddress", ctx, int64(10)).Return(&model.ShippingAddress{ID: 10}, nil)
			},
			wantEntity: "Ward of shipping address",
		},
		{
			name: "missing district",
			setup: func(repo *mocks.AddressRepository) {
				repo.On("GetShippingAddress", ctx, int64(10)).Return(&model.ShippingAddress{ID: 10, WardCode: intPtr(7)}, nil)
				repo.On("GetNode", ctx, model.LevelWard, 7).
					Return(&model.AddressNode{Level: model.LevelWard, Code: 7, ParentCode: intPtr(3)}, nil)
				repo.On("GetNode", ctx, model.LevelDistrict, 3).Return(nil, nil)
			},
			wantEntity: "District",
		},
		{
			name: "district without city",
			setup: func(repo *mocks.AddressRepository) {
				repo.On("GetShippingAddress", ctx, int64(10)).Return(&model.ShippingAddress{ID: 10, WardCode: intPtr(7)}, nil)
				repo.On("GetNode", ctx, model.LevelWard, 7).
					Return(&model.AddressNode{Level: model.LevelWard, Code: 7, ParentCode: intPtr(3)}, nil)
				repo.On("GetNode", ctx, model.LevelDistrict, 3).
					Return(&model.AddressNode{Level: model.LevelDistrict, Code: 3}, nil)
			},
			wantEntity: "Parent of district",
		},
		{
			name: "store failure",
			setup: func(repo *mocks.AddressRepository) {
				repo.On("GetShippingAddress", ctx, int64(10)).Return(nil, errors.New("connection reset"))
			},
			wantErr: "connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.AddressRepository)
			tt.setup(repo)
			h := NewHierarchy(repo, zerolog.Nop())

			_, err := h.ResolveRegion(ctx, 10)
			require.Error(t, err)

			if tt.wantErr != "" {
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			var nf *model.NotFoundError
			require.True(t, errors.As(err, &nf), "expected NotFoundError, got %v", err)
			assert.Equal(t, tt.wantEntity, nf.Entity)
		})
	}
}

func TestHierarchy_ListChildren(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo()
	repo.On("ListChildren", ctx, model.LevelCity, 1).
		Return([]model.AddressNode{{Level: model.LevelDistrict, Code: 1, Name: "Quận Ba Đình"}}, nil)
	repo.On("ListChildren", ctx, model.LevelDistrict, 1).Return(nil, nil)
	repo.On("GetNode", ctx, model.LevelCity, 99).Return(nil, nil)

	h := NewHierarchy(repo, zerolog.Nop())

	districts, err := h.ListChildren(ctx, model.LevelCity, 1)
	require.NoError(t, err)
	assert.Len(t, districts, 1)

	wards, err := h.ListChildren(ctx, model.LevelDistrict, 1)
	require.NoError(t, err)
	assert.NotNil(t, wards)
	assert.Empty(t, wards)

	_, err = h.ListChildren(ctx, model.LevelCity, 99)
	var nf *model.NotFoundError
	assert.ErrorAs(t, err, &nf)

	_, err = h.ListChildren(ctx, model.LevelWard, 1)
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestHierarchy_Cities(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.AddressRepository)
	repo.On("ListCities", ctx).Return([]model.AddressNode{{Code: 1}, {Code: 79}}, nil)

	cities, err := NewHierarchy(repo, zerolog.Nop()).Cities(ctx)

	require.NoError(t, err)
	assert.Len(t, cities, 2)
}
