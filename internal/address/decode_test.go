package address

import (
	"bytes"
	"context"
	"testing"

	"storefront/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Cities(t *testing.T) {
	nodes, err := Decode(context.Background(), bytes.NewReader(gzipBytes(t, citiesJSON)), model.LevelCity)
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	assert.Equal(t, model.AddressNode{Level: model.LevelCity, Code: 1, Name: "Thành phố Hà Nội"}, nodes[0])
	assert.Equal(t, 79, nodes[1].Code)
	assert.Nil(t, nodes[1].ParentCode)
}

func TestDecode_NumericCodesAndMissingName(t *testing.T) {
	nodes, err := Decode(context.Background(), bytes.NewReader(gzipBytes(t, districtsJSON)), model.LevelDistrict)
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	assert.Equal(t, "Quận Ba Đình", nodes[0].Name)
	assert.Equal(t, intPtr(1), nodes[0].ParentCode)

	assert.Equal(t, 760, nodes[1].Code)
	assert.Equal(t, "District 760", nodes[1].Name)
	assert.Equal(t, intPtr(79), nodes[1].ParentCode)
}

func TestDecode_PlainNameUsedWhenNoTypedName(t *testing.T) {
	payload := `{"5": {"name": "Short", "parent_code": ""}}`
	nodes, err := Decode(context.Background(), bytes.NewReader(gzipBytes(t, payload)), model.LevelWard)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "Short", nodes[0].Name)
	assert.Nil(t, nodes[0].ParentCode)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{name: "not gzip", payload: []byte(`{"01": {}}`)},
		{name: "bad key", payload: gzipBytes(t, `{"abc": {"name": "x"}}`)},
		{name: "bad parent", payload: gzipBytes(t, `{"1": {"parent_code": "x1"}}`)},
		{name: "parent is object", payload: gzipBytes(t, `{"1": {"parent_code": {}}}`)},
		{name: "not an object", payload: gzipBytes(t, `[1, 2]`)},
		{name: "truncated", payload: gzipBytes(t, `{"1": {"name": "a"`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(context.Background(), bytes.NewReader(tt.payload), model.LevelCity)
			assert.Error(t, err)
		})
	}
}

func TestDecode_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Decode(ctx, bytes.NewReader(gzipBytes(t, citiesJSON)), model.LevelCity)
	assert.ErrorIs(t, err, context.Canceled)
}
