package invoicing

import "github.com/facturar/backend/internal/domain/shared"

var (
	ErrEmptyCart           = shared.NewDomainError("EMPTY_CART", "An invoice needs at least one product")
	ErrInvalidQuantity     = shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	ErrInvalidPaymentTerms = shared.NewDomainError("INVALID_PAYMENT_TERMS", "Payment terms must be cash, credit or installment")
	ErrInvoiceNotFound     = shared.NewDomainError("INVOICE_NOT_FOUND", "Invoice not found")
	ErrInvalidAmount       = shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be a positive number")
	ErrInvalidTotal        = shared.NewDomainError("INVALID_TOTAL", "Invoice amounts cannot exceed 999999999999.99")
	ErrOverpayment         = shared.NewDomainError("OVERPAYMENT", "Payment amount exceeds the pending balance")
)
