package invoicing

import (
	"context"

	"github.com/facturar/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceFilter narrows invoice listings
type InvoiceFilter struct {
	shared.Filter
	Status       Status
	PaymentTerms PaymentTerms
	CustomerID   *uuid.UUID
	// OutstandingOnly keeps credit and installment invoices that still have a pending balance
	OutstandingOnly bool
}

// InvoiceRepository defines persistence for invoices and their payments.
// There is no delete: invoices are financial records.
type InvoiceRepository interface {
	// FindByID loads the invoice header without lines or payments
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	// FindWithDetails loads lines by position and payments newest first
	FindWithDetails(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) ([]Invoice, int64, error)
	// Create inserts the invoice header and all of its lines
	Create(ctx context.Context, invoice *Invoice) error
	// SaveSettlement writes TotalPaid, Pending and Status only if the stored
	// version is still invoice.Version-1. Otherwise it returns
	// shared.ErrConcurrencyConflict.
	SaveSettlement(ctx context.Context, invoice *Invoice) error
	AddPayment(ctx context.Context, payment *Payment) error
	ListPayments(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]Payment, error)
}
