package invoicing

import (
	"time"

	"github.com/facturar/backend/internal/domain/invoicing"
	"github.com/facturar/backend/internal/domain/partner"
	"github.com/facturar/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest represents a checkout of the cart.
// Quantities and payment terms are checked by the domain so the caller gets
// INVALID_QUANTITY and INVALID_PAYMENT_TERMS instead of a generic binding error.
type CreateInvoiceRequest struct {
	CustomerID   *uuid.UUID        `json:"customer_id"`
	PaymentTerms string            `json:"payment_terms"`
	Items        []CartItemRequest `json:"items"`
	// IdempotencyKey comes from the Idempotency-Key header
	IdempotencyKey string `json:"-"`
}

// CartItemRequest is one cart line
type CartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int64     `json:"quantity"`
}

// InvoiceCreatedResponse is returned by CreateInvoice
type InvoiceCreatedResponse struct {
	ID uuid.UUID `json:"id"`
	// Replayed is set when the id comes from an earlier request with the same idempotency key
	Replayed bool `json:"-"`
}

// AddPaymentRequest represents a payment against an invoice.
// Amount accepts a JSON number or a decimal string.
type AddPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// PaymentAppliedResponse is the invoice settlement after a payment
type PaymentAppliedResponse struct {
	InvoiceID uuid.UUID       `json:"invoice_id"`
	PaymentID uuid.UUID       `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
	TotalPaid decimal.Decimal `json:"total_paid"`
	Pending   decimal.Decimal `json:"pending"`
	Status    string          `json:"status"`
}

// ListInvoicesQuery represents invoice list query parameters
type ListInvoicesQuery struct {
	Page         int    `form:"page" binding:"omitempty,min=1"`
	PageSize     int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Status       string `form:"status" binding:"omitempty,invoice_status"`
	PaymentTerms string `form:"payment_terms" binding:"omitempty,payment_terms"`
	CustomerID   string `form:"customer_id" binding:"omitempty,uuid"`
	Outstanding  bool   `form:"outstanding"`
}

// ToFilter converts the query into a repository filter. Terms aliases are
// normalized here; the binding validators have already rejected bad values.
func (q ListInvoicesQuery) ToFilter() invoicing.InvoiceFilter {
	filter := invoicing.InvoiceFilter{
		Filter: shared.Filter{
			Page:     q.Page,
			PageSize: q.PageSize,
		}.Normalize(),
		Status:          invoicing.Status(q.Status),
		OutstandingOnly: q.Outstanding,
	}
	if terms, err := invoicing.ParsePaymentTerms(q.PaymentTerms); err == nil {
		filter.PaymentTerms = terms
	}
	if id, err := uuid.Parse(q.CustomerID); err == nil {
		filter.CustomerID = &id
	}
	return filter
}

// CustomerSummary is the customer shown on an invoice
type CustomerSummary struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
	Phone    string    `json:"phone,omitempty"`
	Email    string    `json:"email,omitempty"`
}

// InvoiceLineResponse represents one invoice line
type InvoiceLineResponse struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     *uuid.UUID      `json:"product_id"`
	ProductCode   string          `json:"product_code"`
	ProductName   string          `json:"product_name"`
	Quantity      int64           `json:"quantity"`
	UnitSalePrice decimal.Decimal `json:"unit_sale_price"`
	UnitCostPrice decimal.Decimal `json:"unit_cost_price"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	CostSubtotal  decimal.Decimal `json:"cost_subtotal"`
	Position      int             `json:"position"`
}

// PaymentResponse represents a recorded payment
type PaymentResponse struct {
	ID        uuid.UUID       `json:"id"`
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// InvoiceListItemResponse represents an invoice in list responses
type InvoiceListItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	CustomerID   *uuid.UUID      `json:"customer_id"`
	PaymentTerms string          `json:"payment_terms"`
	Total        decimal.Decimal `json:"total"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	Pending      decimal.Decimal `json:"pending"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

// InvoiceResponse represents an invoice with its lines and payments
type InvoiceResponse struct {
	ID           uuid.UUID             `json:"id"`
	TenantID     uuid.UUID             `json:"tenant_id"`
	CustomerID   *uuid.UUID            `json:"customer_id"`
	Customer     *CustomerSummary      `json:"customer,omitempty"`
	PaymentTerms string                `json:"payment_terms"`
	Total        decimal.Decimal       `json:"total"`
	TotalCost    decimal.Decimal       `json:"total_cost"`
	TotalProfit  decimal.Decimal       `json:"total_profit"`
	TotalPaid    decimal.Decimal       `json:"total_paid"`
	Pending      decimal.Decimal       `json:"pending"`
	Status       string                `json:"status"`
	Lines        []InvoiceLineResponse `json:"lines"`
	Payments     []PaymentResponse     `json:"payments"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	Version      int                   `json:"version"`
}

// ToInvoiceResponse converts a fully loaded invoice. customer may be nil.
func ToInvoiceResponse(inv *invoicing.Invoice, customer *partner.Customer) InvoiceResponse {
	resp := InvoiceResponse{
		ID:           inv.ID,
		TenantID:     inv.TenantID,
		CustomerID:   inv.CustomerID,
		PaymentTerms: string(inv.PaymentTerms),
		Total:        inv.Total,
		TotalCost:    inv.TotalCost,
		TotalProfit:  inv.TotalProfit,
		TotalPaid:    inv.TotalPaid,
		Pending:      inv.Pending,
		Status:       string(inv.Status),
		Lines:        make([]InvoiceLineResponse, 0, len(inv.Lines)),
		Payments:     ToPaymentResponses(inv.Payments),
		CreatedAt:    inv.CreatedAt,
		UpdatedAt:    inv.UpdatedAt,
		Version:      inv.Version,
	}
	if customer != nil {
		resp.Customer = &CustomerSummary{
			ID:       customer.ID,
			FullName: customer.FullName(),
			Phone:    customer.Phone,
			Email:    customer.Email,
		}
	}
	for _, l := range inv.Lines {
		resp.Lines = append(resp.Lines, InvoiceLineResponse{
			ID:            l.ID,
			ProductID:     l.ProductID,
			ProductCode:   l.ProductCode,
			ProductName:   l.ProductName,
			Quantity:      l.Quantity,
			UnitSalePrice: l.UnitSalePrice,
			UnitCostPrice: l.UnitCostPrice,
			Subtotal:      l.Subtotal,
			CostSubtotal:  l.CostSubtotal,
			Position:      l.Position,
		})
	}
	return resp
}

// ToInvoiceListItemResponses converts invoice headers for list responses
func ToInvoiceListItemResponses(invoices []invoicing.Invoice) []InvoiceListItemResponse {
	items := make([]InvoiceListItemResponse, 0, len(invoices))
	for _, inv := range invoices {
		items = append(items, InvoiceListItemResponse{
			ID:           inv.ID,
			CustomerID:   inv.CustomerID,
			PaymentTerms: string(inv.PaymentTerms),
			Total:        inv.Total,
			TotalPaid:    inv.TotalPaid,
			Pending:      inv.Pending,
			Status:       string(inv.Status),
			CreatedAt:    inv.CreatedAt,
		})
	}
	return items
}

// ToPaymentResponses converts payments, keeping their order
func ToPaymentResponses(payments []invoicing.Payment) []PaymentResponse {
	items := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		items = append(items, PaymentResponse{
			ID:        p.ID,
			InvoiceID: p.InvoiceID,
			Amount:    p.Amount,
			CreatedAt: p.CreatedAt,
		})
	}
	return items
}
