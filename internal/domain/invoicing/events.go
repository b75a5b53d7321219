package invoicing

import (
	"github.com/facturar/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventTypeInvoiceCreated = "InvoiceCreated"
	EventTypePaymentApplied = "PaymentApplied"
)

// InvoiceCreatedEvent is raised once an invoice has been built
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID    uuid.UUID       `json:"invoice_id"`
	CustomerID   *uuid.UUID      `json:"customer_id,omitempty"`
	PaymentTerms PaymentTerms    `json:"payment_terms"`
	Total        decimal.Decimal `json:"total"`
	TotalProfit  decimal.Decimal `json:"total_profit"`
	LineCount    int             `json:"line_count"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, AggregateTypeInvoice, inv.ID, inv.TenantID),
		InvoiceID:       inv.ID,
		CustomerID:      inv.CustomerID,
		PaymentTerms:    inv.PaymentTerms,
		Total:           inv.Total,
		TotalProfit:     inv.TotalProfit,
		LineCount:       len(inv.Lines),
	}
}

// PaymentAppliedEvent is raised when a payment has been applied to an invoice
type PaymentAppliedEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID       `json:"invoice_id"`
	PaymentID uuid.UUID       `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
	TotalPaid decimal.Decimal `json:"total_paid"`
	Pending   decimal.Decimal `json:"pending"`
	Status    Status          `json:"status"`
}

// NewPaymentAppliedEvent creates a new PaymentAppliedEvent
func NewPaymentAppliedEvent(inv *Invoice, p *Payment) *PaymentAppliedEvent {
	return &PaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentApplied, AggregateTypeInvoice, inv.ID, inv.TenantID),
		InvoiceID:       inv.ID,
		PaymentID:       p.ID,
		Amount:          p.Amount,
		TotalPaid:       inv.TotalPaid,
		Pending:         inv.Pending,
		Status:          inv.Status,
	}
}
