package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is an append-only settlement against an invoice
type Payment struct {
	ID        uuid.UUID
	InvoiceID uuid.UUID
	TenantID  uuid.UUID
	Amount    decimal.Decimal
	CreatedAt time.Time
}
