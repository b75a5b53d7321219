package invoicing

import "strings"

// PaymentTerms describes how the customer agreed to pay
type PaymentTerms string

const (
	PaymentTermsCash        PaymentTerms = "cash"
	PaymentTermsCredit      PaymentTerms = "credit"
	PaymentTermsInstallment PaymentTerms = "installment"
)

var paymentTermsAliases = map[string]PaymentTerms{
	"cash":        PaymentTermsCash,
	"contado":     PaymentTermsCash,
	"credit":      PaymentTermsCredit,
	"credito":     PaymentTermsCredit,
	"crédito":     PaymentTermsCredit,
	"installment": PaymentTermsInstallment,
	"plazo":       PaymentTermsInstallment,
}

// ParsePaymentTerms normalizes user input, accepting the Spanish labels used
// by existing clients.
func ParsePaymentTerms(s string) (PaymentTerms, error) {
	terms, ok := paymentTermsAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", ErrInvalidPaymentTerms
	}
	return terms, nil
}

// IsValid checks if the terms are a canonical value
func (t PaymentTerms) IsValid() bool {
	switch t {
	case PaymentTermsCash, PaymentTermsCredit, PaymentTermsInstallment:
		return true
	}
	return false
}

// IsReceivable reports whether invoices with these terms are expected to be
// settled later through payments.
func (t PaymentTerms) IsReceivable() bool {
	return t == PaymentTermsCredit || t == PaymentTermsInstallment
}

// ReceivableTerms lists the terms that produce receivables
func ReceivableTerms() []PaymentTerms {
	return []PaymentTerms{PaymentTermsCredit, PaymentTermsInstallment}
}
