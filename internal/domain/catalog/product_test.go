package catalog

import (
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestNewProduct(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates tracked product", func(t *testing.T) {
		p, err := NewProduct(tenantID, NewProductParams{
			Code:            " CAF-01 ",
			Name:            "Café molido",
			SalePrice:       decimal.RequireFromString("50"),
			CostPrice:       decimal.RequireFromString("30"),
			TracksInventory: true,
			QuantityOnHand:  int64Ptr(5),
		})
		require.NoError(t, err)
		assert.Equal(t, tenantID, p.TenantID)
		assert.Equal(t, "CAF-01", p.Code)
		assert.Equal(t, int64(5), p.OnHand())
		assert.Equal(t, 1, p.GetVersion())
		assert.True(t, p.CanSupply(5))
		assert.False(t, p.CanSupply(6))
	})

	t.Run("untracked product ignores quantity", func(t *testing.T) {
		p, err := NewProduct(tenantID, NewProductParams{
			Code:           "SRV-01",
			Name:           "Servicio",
			SalePrice:      decimal.RequireFromString("10"),
			QuantityOnHand: int64Ptr(3),
		})
		require.NoError(t, err)
		assert.Nil(t, p.QuantityOnHand)
		assert.True(t, p.CanSupply(1000))
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		tests := []struct {
			name   string
			params NewProductParams
			want   error
		}{
			{"empty code", NewProductParams{Name: "X"}, ErrInvalidCode},
			{"empty name", NewProductParams{Code: "X"}, ErrInvalidName},
			{"negative sale price", NewProductParams{Code: "X", Name: "X", SalePrice: decimal.NewFromInt(-1)}, ErrInvalidPrice},
			{"negative cost price", NewProductParams{Code: "X", Name: "X", CostPrice: decimal.NewFromInt(-1)}, ErrInvalidPrice},
			{"sale price too large", NewProductParams{Code: "X", Name: "X", SalePrice: decimal.RequireFromString("1000000000000")}, ErrInvalidPrice},
			{"tracked without quantity", NewProductParams{Code: "X", Name: "X", TracksInventory: true}, ErrInvalidStockLevel},
			{"negative quantity", NewProductParams{Code: "X", Name: "X", TracksInventory: true, QuantityOnHand: int64Ptr(-1)}, ErrInvalidStockLevel},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := NewProduct(tenantID, tt.params)
				assert.True(t, errors.Is(err, tt.want), "got %v", err)
			})
		}
	})
}

func TestAggregateDemand(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b := uuid.MustParse("00000000-0000-0000-0000-00000000000b")

	merged, err := AggregateDemand([]StockDemand{
		{ProductID: b, Quantity: 1},
		{ProductID: a, Quantity: 3},
		{ProductID: b, Quantity: 2},
	})

	require.NoError(t, err)
	require.Len(t, merged, 2)
	assert.Equal(t, StockDemand{ProductID: a, Quantity: 3}, merged[0])
	assert.Equal(t, StockDemand{ProductID: b, Quantity: 3}, merged[1])
}

func TestAggregateDemand_RejectsBadQuantities(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b := uuid.MustParse("00000000-0000-0000-0000-00000000000b")

	tests := []struct {
		name    string
		demands []StockDemand
	}{
		{"zero", []StockDemand{{ProductID: a, Quantity: 0}}},
		{"negative", []StockDemand{{ProductID: a, Quantity: 2}, {ProductID: a, Quantity: -1}}},
		{"sum overflows", []StockDemand{{ProductID: a, Quantity: math.MaxInt64}, {ProductID: a, Quantity: math.MaxInt64}}},
		{"sum overflows by one", []StockDemand{{ProductID: a, Quantity: math.MaxInt64 - 1}, {ProductID: b, Quantity: 5}, {ProductID: a, Quantity: 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, err := AggregateDemand(tt.demands)
			assert.ErrorIs(t, err, ErrInvalidQuantity)
			assert.Nil(t, merged)
		})
	}

	merged, err := AggregateDemand([]StockDemand{{ProductID: a, Quantity: math.MaxInt64 - 1}, {ProductID: a, Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), merged[0].Quantity)
}
