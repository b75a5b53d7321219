package models

import (
	"github.com/facturar/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	TenantAggregateModel
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_product_tenant_code,priority:1"`
	Code            string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_tenant_code,priority:2"`
	Name            string          `gorm:"type:varchar(200);not null"`
	Reference       string          `gorm:"type:varchar(100)"`
	Unit            string          `gorm:"type:varchar(20)"`
	SalePrice       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	CostPrice       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	TracksInventory bool            `gorm:"not null;default:false"`
	QuantityOnHand  *int64
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	var qty *int64
	if m.QuantityOnHand != nil {
		q := *m.QuantityOnHand
		qty = &q
	}
	return &catalog.Product{
		TenantAggregateRoot: m.toTenantAggregateRoot(m.TenantID),
		Code:                m.Code,
		Name:                m.Name,
		Reference:           m.Reference,
		Unit:                m.Unit,
		SalePrice:           m.SalePrice,
		CostPrice:           m.CostPrice,
		TracksInventory:     m.TracksInventory,
		QuantityOnHand:      qty,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.TenantID = p.TenantID
	m.Code = p.Code
	m.Name = p.Name
	m.Reference = p.Reference
	m.Unit = p.Unit
	m.SalePrice = p.SalePrice
	m.CostPrice = p.CostPrice
	m.TracksInventory = p.TracksInventory
	m.QuantityOnHand = p.QuantityOnHand
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
