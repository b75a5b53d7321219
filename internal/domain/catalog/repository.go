package catalog

import (
	"context"

	"github.com/facturar/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository defines persistence for products
type ProductRepository interface {
	// FindByID returns ErrProductNotFound when the product does not belong to the tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)
	// FindByIDs returns the products that exist; missing ids are simply absent
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Product, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Product, int64, error)
	// Create returns ErrDuplicateCode when the code is already used by the tenant
	Create(ctx context.Context, product *Product) error
}

// StockRepository applies stock movements
type StockRepository interface {
	// DecrementStock subtracts quantity from a tracked product only when at
	// least quantity units are on hand. It returns false when nothing changed.
	DecrementStock(ctx context.Context, tenantID, productID uuid.UUID, quantity int64) (bool, error)
}
