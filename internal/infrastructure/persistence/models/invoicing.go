package models

import (
	"time"

	"github.com/facturar/backend/internal/domain/invoicing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate.
type InvoiceModel struct {
	TenantAggregateModel
	TenantID     uuid.UUID              `gorm:"type:uuid;not null;index:idx_invoice_tenant_status,priority:1"`
	CustomerID   *uuid.UUID             `gorm:"type:uuid;index"`
	PaymentTerms invoicing.PaymentTerms `gorm:"type:varchar(20);not null"`
	Total        decimal.Decimal        `gorm:"type:numeric(14,2);not null"`
	TotalCost    decimal.Decimal        `gorm:"type:numeric(14,2);not null"`
	TotalProfit  decimal.Decimal        `gorm:"type:numeric(14,2);not null"`
	TotalPaid    decimal.Decimal        `gorm:"type:numeric(14,2);not null;default:0"`
	Pending      decimal.Decimal        `gorm:"type:numeric(14,2);not null"`
	Status       invoicing.Status       `gorm:"type:varchar(20);not null;index:idx_invoice_tenant_status,priority:2"`
	Lines        []InvoiceLineModel     `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice. Lines are
// included when they were preloaded; payments are loaded separately.
func (m *InvoiceModel) ToDomain() *invoicing.Invoice {
	inv := &invoicing.Invoice{
		TenantAggregateRoot: m.toTenantAggregateRoot(m.TenantID),
		CustomerID:          m.CustomerID,
		PaymentTerms:        m.PaymentTerms,
		Total:               m.Total,
		TotalCost:           m.TotalCost,
		TotalProfit:         m.TotalProfit,
		TotalPaid:           m.TotalPaid,
		Pending:             m.Pending,
		Status:              m.Status,
	}
	if m.Lines != nil {
		inv.Lines = make([]invoicing.InvoiceLine, len(m.Lines))
		for i := range m.Lines {
			inv.Lines[i] = *m.Lines[i].ToDomain()
		}
	}
	return inv
}

// FromDomain populates the persistence model, lines included.
func (m *InvoiceModel) FromDomain(inv *invoicing.Invoice) {
	m.FromDomainTenantAggregateRoot(inv.TenantAggregateRoot)
	m.TenantID = inv.TenantID
	m.CustomerID = inv.CustomerID
	m.PaymentTerms = inv.PaymentTerms
	m.Total = inv.Total
	m.TotalCost = inv.TotalCost
	m.TotalProfit = inv.TotalProfit
	m.TotalPaid = inv.TotalPaid
	m.Pending = inv.Pending
	m.Status = inv.Status
	m.Lines = make([]InvoiceLineModel, len(inv.Lines))
	for i := range inv.Lines {
		m.Lines[i].FromDomain(&inv.Lines[i])
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *invoicing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// InvoiceLineModel is the persistence model for an invoice line
type InvoiceLineModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_invoice_line_position,priority:1"`
	ProductID     *uuid.UUID      `gorm:"type:uuid;index"`
	Product       *ProductModel   `gorm:"foreignKey:ProductID;references:ID;constraint:OnDelete:SET NULL"`
	ProductName   string          `gorm:"type:varchar(200);not null"`
	ProductCode   string          `gorm:"type:varchar(50);not null"`
	Quantity      int64           `gorm:"not null"`
	UnitSalePrice decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	UnitCostPrice decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CostSubtotal  decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Position      int             `gorm:"not null;index:idx_invoice_line_position,priority:2"`
	CreatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceLineModel) TableName() string {
	return "invoice_lines"
}

// ToDomain converts the persistence model to a domain InvoiceLine.
func (m *InvoiceLineModel) ToDomain() *invoicing.InvoiceLine {
	return &invoicing.InvoiceLine{
		ID:            m.ID,
		InvoiceID:     m.InvoiceID,
		ProductID:     m.ProductID,
		ProductName:   m.ProductName,
		ProductCode:   m.ProductCode,
		Quantity:      m.Quantity,
		UnitSalePrice: m.UnitSalePrice,
		UnitCostPrice: m.UnitCostPrice,
		Subtotal:      m.Subtotal,
		CostSubtotal:  m.CostSubtotal,
		Position:      m.Position,
		CreatedAt:     m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain InvoiceLine.
func (m *InvoiceLineModel) FromDomain(l *invoicing.InvoiceLine) {
	m.ID = l.ID
	m.InvoiceID = l.InvoiceID
	m.ProductID = l.ProductID
	m.ProductName = l.ProductName
	m.ProductCode = l.ProductCode
	m.Quantity = l.Quantity
	m.UnitSalePrice = l.UnitSalePrice
	m.UnitCostPrice = l.UnitCostPrice
	m.Subtotal = l.Subtotal
	m.CostSubtotal = l.CostSubtotal
	m.Position = l.Position
	m.CreatedAt = l.CreatedAt
}

// PaymentModel is the persistence model for a payment
type PaymentModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_payment_tenant_created,priority:1"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CreatedAt time.Time       `gorm:"not null;index:idx_payment_tenant_created,priority:2"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment.
func (m *PaymentModel) ToDomain() *invoicing.Payment {
	return &invoicing.Payment{
		ID:        m.ID,
		InvoiceID: m.InvoiceID,
		TenantID:  m.TenantID,
		Amount:    m.Amount,
		CreatedAt: m.CreatedAt,
	}
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *invoicing.Payment) *PaymentModel {
	return &PaymentModel{
		ID:        p.ID,
		TenantID:  p.TenantID,
		InvoiceID: p.InvoiceID,
		Amount:    p.Amount,
		CreatedAt: p.CreatedAt,
	}
}
