package partner

import (
	"context"

	"github.com/facturar/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerRepository defines persistence for customers
type CustomerRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Customer, int64, error)
	Exists(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
	Create(ctx context.Context, customer *Customer) error
}
