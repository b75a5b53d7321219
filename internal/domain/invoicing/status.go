package invoicing

import "github.com/shopspring/decimal"

// Status is the settlement state of an invoice. It is always derived from
// the invoice totals and is never set on its own.
type Status string

const (
	StatusPending Status = "pending"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
)

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPartial, StatusPaid:
		return true
	}
	return false
}

// IsTerminal reports whether no further payment can move the status
func (s Status) IsTerminal() bool {
	return s == StatusPaid
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// DeriveStatus computes the settlement status and the pending balance of an
// invoice from its total and the amount paid so far.
//
//	paid     totalPaid >= total (pending clamped to zero; also covers total = 0)
//	pending  totalPaid = 0
//	partial  otherwise
func DeriveStatus(total, totalPaid decimal.Decimal) (Status, decimal.Decimal) {
	if totalPaid.GreaterThanOrEqual(total) {
		return StatusPaid, decimal.Zero
	}
	pending := total.Sub(totalPaid)
	if !totalPaid.IsPositive() {
		return StatusPending, pending
	}
	return StatusPartial, pending
}
