package invoicing

import (
	"context"

	"github.com/facturar/backend/internal/domain/catalog"
	"github.com/facturar/backend/internal/domain/invoicing"
	"github.com/facturar/backend/internal/domain/partner"
)

// TransactionScope provides transactional access to the ledger repositories.
// All repository operations made through fn share one database transaction,
// which is committed when fn returns nil and rolled back otherwise.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the repositories bound to the current transaction
type TransactionalRepositories interface {
	ProductRepo() catalog.ProductRepository
	StockRepo() catalog.StockRepository
	CustomerRepo() partner.CustomerRepository
	InvoiceRepo() invoicing.InvoiceRepository
}
