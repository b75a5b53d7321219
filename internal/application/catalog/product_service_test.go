package catalog

import (
	"context"
	"testing"

	"github.com/facturar/backend/internal/domain/catalog"
	"github.com/facturar/backend/internal/domain/shared"
	"github.com/facturar/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

func TestProductService_Create(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo)
	tenantID := testutil.TestTenantID()
	qty := int64(12)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil)

	resp, err := svc.Create(context.Background(), tenantID, CreateProductRequest{
		Code:            " SKU-1 ",
		Name:            "Cuaderno",
		SalePrice:       decimal.RequireFromString("3.456"),
		CostPrice:       decimal.RequireFromString("1.20"),
		TracksInventory: true,
		QuantityOnHand:  &qty,
	})

	require.NoError(t, err)
	assert.Equal(t, "SKU-1", resp.Code)
	assert.True(t, resp.SalePrice.Equal(decimal.RequireFromString("3.46")))
	require.NotNil(t, resp.QuantityOnHand)
	assert.Equal(t, int64(12), *resp.QuantityOnHand)
	stored := repo.Calls[0].Arguments.Get(1).(*catalog.Product)
	assert.Equal(t, tenantID, stored.TenantID)
}

func TestProductService_Create_Errors(t *testing.T) {
	t.Run("tracked product needs a quantity", func(t *testing.T) {
		repo := new(MockProductRepository)
		_, err := NewProductService(repo).Create(context.Background(), testutil.TestTenantID(), CreateProductRequest{
			Code: "A", Name: "B", TracksInventory: true,
		})
		assert.ErrorIs(t, err, catalog.ErrInvalidStockLevel)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate code", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("Create", mock.Anything, mock.Anything).Return(catalog.ErrDuplicateCode)
		_, err := NewProductService(repo).Create(context.Background(), testutil.TestTenantID(), CreateProductRequest{
			Code: "A", Name: "B",
		})
		assert.ErrorIs(t, err, catalog.ErrDuplicateCode)
	})
}

func TestProductService_GetByID(t *testing.T) {
	repo := new(MockProductRepository)
	tenantID := testutil.TestTenantID()
	p := testutil.NewFixtures(3).Product(tenantID)
	repo.On("FindByID", mock.Anything, tenantID, p.ID).Return(p, nil)
	missing := uuid.New()
	repo.On("FindByID", mock.Anything, tenantID, missing).Return(nil, catalog.ErrProductNotFound)
	svc := NewProductService(repo)

	resp, err := svc.GetByID(context.Background(), tenantID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Code, resp.Code)
	assert.Nil(t, resp.QuantityOnHand)

	_, err = svc.GetByID(context.Background(), tenantID, missing)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestProductService_List_NormalizesPaging(t *testing.T) {
	repo := new(MockProductRepository)
	tenantID := testutil.TestTenantID()
	repo.On("FindAll", mock.Anything, tenantID, shared.Filter{Page: 1, PageSize: shared.MaxPageSize, Search: "lap"}).
		Return([]catalog.Product{}, int64(0), nil)

	page, err := NewProductService(repo).List(context.Background(), tenantID, ListProductsQuery{PageSize: 500, Search: "lap"})

	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, shared.MaxPageSize, page.PageSize)
	repo.AssertExpectations(t)
}
