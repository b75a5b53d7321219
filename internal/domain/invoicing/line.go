package invoicing

import (
	"fmt"
	"time"

	"github.com/facturar/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductSnapshot is the product data copied into a line at the time of sale
type ProductSnapshot struct {
	ProductID uuid.UUID
	Code      string
	Name      string
	SalePrice decimal.Decimal
	CostPrice decimal.Decimal
}

// InvoiceLine is an immutable record of one product sold on an invoice
type InvoiceLine struct {
	ID            uuid.UUID
	InvoiceID     uuid.UUID
	ProductID     *uuid.UUID // nil once the product has been removed
	ProductName   string
	ProductCode   string
	Quantity      int64
	UnitSalePrice decimal.Decimal
	UnitCostPrice decimal.Decimal
	Subtotal      decimal.Decimal
	CostSubtotal  decimal.Decimal
	Position      int
	CreatedAt     time.Time
}

// NewInvoiceLine snapshots product into a line of the given invoice
func NewInvoiceLine(invoiceID uuid.UUID, position int, product ProductSnapshot, quantity int64) (*InvoiceLine, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if product.ProductID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("Product ID cannot be empty")
	}

	productID := product.ProductID
	qty := decimal.NewFromInt(quantity)
	subtotal := shared.RoundMoney(qty.Mul(product.SalePrice))
	costSubtotal := shared.RoundMoney(qty.Mul(product.CostPrice))
	if !shared.MoneyInRange(subtotal) || !shared.MoneyInRange(costSubtotal) {
		return nil, ErrInvalidTotal.WithMessage(fmt.Sprintf(
			"Line for product %s exceeds the largest invoice amount", product.Code))
	}
	return &InvoiceLine{
		ID:            uuid.New(),
		InvoiceID:     invoiceID,
		ProductID:     &productID,
		ProductName:   product.Name,
		ProductCode:   product.Code,
		Quantity:      quantity,
		UnitSalePrice: shared.RoundMoney(product.SalePrice),
		UnitCostPrice: shared.RoundMoney(product.CostPrice),
		Subtotal:      subtotal,
		CostSubtotal:  costSubtotal,
		Position:      position,
		CreatedAt:     time.Now().UTC(),
	}, nil
}
