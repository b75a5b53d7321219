package invoicing

import (
	"context"
	"fmt"

	"github.com/facturar/backend/internal/domain/catalog"
	"github.com/facturar/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InventoryAdjuster takes the stock a sale needs out of tracked products.
// It must run inside the transaction that inserts the invoice: when any
// decrement fails the caller returns the error and the rollback restores
// every decrement already applied.
type InventoryAdjuster struct{}

// NewInventoryAdjuster creates a new InventoryAdjuster
func NewInventoryAdjuster() *InventoryAdjuster {
	return &InventoryAdjuster{}
}

// Adjust checks and decrements stock for demands. products must hold every
// product referenced by demands, as read inside the current transaction.
// Untracked products are skipped.
func (a *InventoryAdjuster) Adjust(
	ctx context.Context,
	stock catalog.StockRepository,
	tenantID uuid.UUID,
	products map[uuid.UUID]*catalog.Product,
	demands []catalog.StockDemand,
) error {
	merged, err := catalog.AggregateDemand(demands)
	if err != nil {
		return err
	}

	tracked := make([]catalog.StockDemand, 0, len(merged))
	for _, d := range merged {
		product, ok := products[d.ProductID]
		if !ok {
			return catalog.ErrProductNotFound.WithMessage(fmt.Sprintf("Product %s not found", d.ProductID))
		}
		if !product.TracksInventory {
			continue
		}
		if !product.CanSupply(d.Quantity) {
			return insufficientStock(product, d.Quantity)
		}
		tracked = append(tracked, d)
	}

	for _, d := range tracked {
		ok, err := stock.DecrementStock(ctx, tenantID, d.ProductID, d.Quantity)
		if err != nil {
			return fmt.Errorf("decrement stock of product %s: %w", d.ProductID, err)
		}
		if !ok {
			// another sale took the stock after our read
			return insufficientStock(products[d.ProductID], d.Quantity)
		}
	}
	return nil
}

func insufficientStock(p *catalog.Product, requested int64) *shared.DomainError {
	return shared.ErrInsufficientStock.WithMessage(fmt.Sprintf(
		"Insufficient stock for product %s: requested %d, available %d", p.Code, requested, p.OnHand()))
}
