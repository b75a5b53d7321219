package invoicing

import (
	"fmt"

	"github.com/facturar/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeInvoice is the aggregate type for Invoice
const AggregateTypeInvoice = "Invoice"

// LineItem is one cart entry resolved against the product it refers to
type LineItem struct {
	Product  ProductSnapshot
	Quantity int64
}

// Invoice is the central ledger record. Lines and the billed totals are
// fixed at creation; only TotalPaid, Pending and Status change afterwards,
// and only through ApplyPayment.
type Invoice struct {
	shared.TenantAggregateRoot
	CustomerID   *uuid.UUID
	PaymentTerms PaymentTerms
	Total        decimal.Decimal
	TotalCost    decimal.Decimal
	TotalProfit  decimal.Decimal
	TotalPaid    decimal.Decimal
	Pending      decimal.Decimal
	Status       Status
	Lines        []InvoiceLine
	Payments     []Payment
}

// NewInvoice builds an invoice from resolved cart items, in cart order
func NewInvoice(tenantID uuid.UUID, customerID *uuid.UUID, terms PaymentTerms, items []LineItem) (*Invoice, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	if !terms.IsValid() {
		return nil, ErrInvalidPaymentTerms
	}

	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CustomerID:          customerID,
		PaymentTerms:        terms,
		TotalPaid:           decimal.Zero,
		Lines:               make([]InvoiceLine, 0, len(items)),
	}

	for i, item := range items {
		line, err := NewInvoiceLine(inv.ID, i+1, item.Product, item.Quantity)
		if err != nil {
			return nil, err
		}
		line.CreatedAt = inv.CreatedAt
		inv.Lines = append(inv.Lines, *line)
	}

	inv.calculateTotals()
	if !shared.MoneyInRange(inv.Total) || !shared.MoneyInRange(inv.TotalCost) || !shared.MoneyInRange(inv.TotalProfit) {
		return nil, ErrInvalidTotal
	}
	inv.settle()
	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// ValidatePaymentAmount checks that amount is positive with at most two
// fraction digits.
func ValidatePaymentAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !shared.MoneyInRange(amount) {
		return ErrInvalidAmount.WithMessage("Payment amount is too large")
	}
	if !amount.Equal(shared.RoundMoney(amount)) {
		return ErrInvalidAmount.WithMessage("Payment amount cannot have more than 2 decimal places")
	}
	return nil
}

// ApplyPayment records a payment and re-derives the settlement status.
// The returned payment must be persisted together with the new totals.
func (inv *Invoice) ApplyPayment(amount decimal.Decimal) (*Payment, error) {
	if err := ValidatePaymentAmount(amount); err != nil {
		return nil, err
	}
	if amount.GreaterThan(inv.Pending) {
		return nil, ErrOverpayment.WithMessage(fmt.Sprintf(
			"Payment amount %s exceeds the pending balance %s", amount.StringFixed(2), inv.Pending.StringFixed(2)))
	}

	inv.Touch()
	payment := &Payment{
		ID:        uuid.New(),
		InvoiceID: inv.ID,
		TenantID:  inv.TenantID,
		Amount:    amount,
		CreatedAt: inv.UpdatedAt,
	}

	inv.TotalPaid = shared.RoundMoney(inv.TotalPaid.Add(amount))
	inv.settle()
	inv.Payments = append(inv.Payments, *payment)
	inv.IncrementVersion()
	inv.AddDomainEvent(NewPaymentAppliedEvent(inv, payment))

	return payment, nil
}

// CheckInvariants verifies that the stored totals agree with lines and payments.
// Payments are only checked when they have been loaded.
func (inv *Invoice) CheckInvariants() error {
	total, cost := decimal.Zero, decimal.Zero
	for _, l := range inv.Lines {
		total = total.Add(l.Subtotal)
		cost = cost.Add(l.CostSubtotal)
	}
	if !total.Equal(inv.Total) {
		return fmt.Errorf("total %s does not match line subtotals %s", inv.Total, total)
	}
	if !cost.Equal(inv.TotalCost) {
		return fmt.Errorf("total cost %s does not match line cost subtotals %s", inv.TotalCost, cost)
	}
	if !inv.TotalProfit.Equal(inv.Total.Sub(inv.TotalCost)) {
		return fmt.Errorf("total profit %s is not total minus cost", inv.TotalProfit)
	}
	if inv.TotalPaid.IsNegative() || inv.TotalPaid.GreaterThan(inv.Total) {
		return fmt.Errorf("total paid %s outside [0, %s]", inv.TotalPaid, inv.Total)
	}
	if !inv.Pending.Equal(inv.Total.Sub(inv.TotalPaid)) {
		return fmt.Errorf("pending %s is not total minus paid", inv.Pending)
	}
	if status, _ := DeriveStatus(inv.Total, inv.TotalPaid); status != inv.Status {
		return fmt.Errorf("status %s should be %s", inv.Status, status)
	}
	if inv.Payments != nil {
		paid := decimal.Zero
		for _, p := range inv.Payments {
			paid = paid.Add(p.Amount)
		}
		if !paid.Equal(inv.TotalPaid) {
			return fmt.Errorf("total paid %s does not match payments %s", inv.TotalPaid, paid)
		}
	}
	return nil
}

func (inv *Invoice) calculateTotals() {
	total, cost := decimal.Zero, decimal.Zero
	for _, l := range inv.Lines {
		total = total.Add(l.Subtotal)
		cost = cost.Add(l.CostSubtotal)
	}
	inv.Total = shared.RoundMoney(total)
	inv.TotalCost = shared.RoundMoney(cost)
	inv.TotalProfit = inv.Total.Sub(inv.TotalCost)
}

func (inv *Invoice) settle() {
	inv.Status, inv.Pending = DeriveStatus(inv.Total, inv.TotalPaid)
}
