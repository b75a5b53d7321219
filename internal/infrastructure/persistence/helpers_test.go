package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/facturar/backend/internal/domain/catalog"
	"github.com/facturar/backend/internal/domain/invoicing"
	"github.com/facturar/backend/internal/infrastructure/config"
	"github.com/facturar/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, nil)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })
	return db.DB
}

func seedProduct(t *testing.T, db *gorm.DB, p *catalog.Product) *catalog.Product {
	t.Helper()
	require.NoError(t, NewGormProductRepository(db).Create(context.Background(), p))
	return p
}

// seedInvoice stores an invoice for one unit of each product, created at createdAt
func seedInvoice(t *testing.T, db *gorm.DB, tenantID uuid.UUID, terms invoicing.PaymentTerms, createdAt time.Time, products ...*catalog.Product) *invoicing.Invoice {
	t.Helper()

	items := make([]invoicing.LineItem, len(products))
	for i, p := range products {
		items[i] = invoicing.LineItem{
			Product: invoicing.ProductSnapshot{
				ProductID: p.ID,
				Code:      p.Code,
				Name:      p.Name,
				SalePrice: p.SalePrice,
				CostPrice: p.CostPrice,
			},
			Quantity: 1,
		}
	}
	inv, err := invoicing.NewInvoice(tenantID, nil, terms, items)
	require.NoError(t, err)

	createdAt = createdAt.UTC()
	inv.CreatedAt, inv.UpdatedAt = createdAt, createdAt
	for i := range inv.Lines {
		inv.Lines[i].CreatedAt = createdAt
	}
	require.NoError(t, NewGormInvoiceRepository(db).Create(context.Background(), inv))
	return inv
}

var fixtures = testutil.NewFixtures(7)
