package catalog

import (
	"context"

	"github.com/facturar/backend/internal/domain/catalog"
	"github.com/facturar/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductService registers products so invoice lines have something to reference
type ProductService struct {
	productRepo catalog.ProductRepository
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// Create registers a product. A code already used by the tenant fails with
// DUPLICATE_CODE.
func (s *ProductService) Create(ctx context.Context, tenantID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(tenantID, catalog.NewProductParams{
		Code:            req.Code,
		Name:            req.Name,
		Reference:       req.Reference,
		Unit:            req.Unit,
		SalePrice:       req.SalePrice,
		CostPrice:       req.CostPrice,
		TracksInventory: req.TracksInventory,
		QuantityOnHand:  req.QuantityOnHand,
	})
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	resp := ToProductResponse(product)
	return &resp, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List returns products ordered by code
func (s *ProductService) List(ctx context.Context, tenantID uuid.UUID, query ListProductsQuery) (shared.Paginated[ProductResponse], error) {
	filter := shared.Filter{Page: query.Page, PageSize: query.PageSize, Search: query.Search}.Normalize()
	products, total, err := s.productRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}
	return shared.NewPaginated(ToProductResponses(products), total, filter.Page, filter.PageSize), nil
}
