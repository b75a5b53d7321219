package catalog

import (
	"strings"

	"github.com/facturar/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable item. Invoices copy its name, code and prices at the
// moment of sale, so later edits never reach historical invoices.
type Product struct {
	shared.TenantAggregateRoot
	Code            string
	Name            string
	Reference       string
	Unit            string
	SalePrice       decimal.Decimal
	CostPrice       decimal.Decimal
	TracksInventory bool
	// QuantityOnHand is nil unless TracksInventory is set
	QuantityOnHand *int64
}

// NewProductParams holds the fields accepted when registering a product
type NewProductParams struct {
	Code            string
	Name            string
	Reference       string
	Unit            string
	SalePrice       decimal.Decimal
	CostPrice       decimal.Decimal
	TracksInventory bool
	QuantityOnHand  *int64
}

// NewProduct creates a new product
func NewProduct(tenantID uuid.UUID, p NewProductParams) (*Product, error) {
	code := strings.TrimSpace(p.Code)
	name := strings.TrimSpace(p.Name)

	if err := validateProductCode(code); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if p.SalePrice.IsNegative() {
		return nil, ErrInvalidPrice.WithMessage("Sale price cannot be negative")
	}
	if p.CostPrice.IsNegative() {
		return nil, ErrInvalidPrice.WithMessage("Cost price cannot be negative")
	}
	if !shared.MoneyInRange(p.SalePrice) || !shared.MoneyInRange(p.CostPrice) {
		return nil, ErrInvalidPrice.WithMessage("Price cannot exceed 999999999999.99")
	}

	var qty *int64
	if p.TracksInventory {
		if p.QuantityOnHand == nil {
			return nil, ErrInvalidStockLevel.WithMessage("A quantity is required when inventory is tracked")
		}
		if *p.QuantityOnHand < 0 {
			return nil, ErrInvalidStockLevel
		}
		q := *p.QuantityOnHand
		qty = &q
	}

	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		Reference:           strings.TrimSpace(p.Reference),
		Unit:                strings.TrimSpace(p.Unit),
		SalePrice:           shared.RoundMoney(p.SalePrice),
		CostPrice:           shared.RoundMoney(p.CostPrice),
		TracksInventory:     p.TracksInventory,
		QuantityOnHand:      qty,
	}, nil
}

// OnHand returns the stock level, zero for untracked products
func (p *Product) OnHand() int64 {
	if p.QuantityOnHand == nil {
		return 0
	}
	return *p.QuantityOnHand
}

// CanSupply reports whether quantity units can be sold right now.
// Untracked products can always be sold.
func (p *Product) CanSupply(quantity int64) bool {
	if !p.TracksInventory {
		return true
	}
	return quantity <= p.OnHand()
}

func validateProductCode(code string) error {
	if code == "" {
		return ErrInvalidCode
	}
	if len(code) > 50 {
		return ErrInvalidCode.WithMessage("Product code cannot exceed 50 characters")
	}
	return nil
}

func validateProductName(name string) error {
	if name == "" {
		return ErrInvalidName
	}
	if len(name) > 200 {
		return ErrInvalidName.WithMessage("Product name cannot exceed 200 characters")
	}
	return nil
}
