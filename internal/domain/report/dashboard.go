package report

import (
	"context"
	"strings"
	"time"

	"github.com/facturar/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CollectedScope chooses which payments count as collected in a period
type CollectedScope string

const (
	// CollectedByInvoiceDate sums total_paid of invoices created in the period
	CollectedByInvoiceDate CollectedScope = "invoice_created"
	// CollectedByPaymentDate sums payments dated in the period, whatever the invoice date
	CollectedByPaymentDate CollectedScope = "payment_date"
)

// ParseCollectedScope parses a configured scope, defaulting to invoice date scoping
func ParseCollectedScope(s string) (CollectedScope, error) {
	switch CollectedScope(strings.ToLower(strings.TrimSpace(s))) {
	case "", CollectedByInvoiceDate:
		return CollectedByInvoiceDate, nil
	case CollectedByPaymentDate:
		return CollectedByPaymentDate, nil
	}
	return "", shared.ErrInvalidInput.WithMessage("collected scope must be invoice_created or payment_date")
}

// DashboardSummary is the financial summary of invoices created in [From, To)
type DashboardSummary struct {
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	Billed       decimal.Decimal `json:"billed"`
	Collected    decimal.Decimal `json:"collected"`
	Pending      decimal.Decimal `json:"pending"`
	Cost         decimal.Decimal `json:"cost"`
	Profit       decimal.Decimal `json:"profit"`
	InvoiceCount int64           `json:"invoice_count"`
}

// EmptySummary returns an all-zero summary for the range
func EmptySummary(from, to time.Time) *DashboardSummary {
	return &DashboardSummary{
		From:      from,
		To:        to,
		Billed:    decimal.Zero,
		Collected: decimal.Zero,
		Pending:   decimal.Zero,
		Cost:      decimal.Zero,
		Profit:    decimal.Zero,
	}
}

// DashboardFilter selects the invoices a summary covers
type DashboardFilter struct {
	TenantID       uuid.UUID
	From           time.Time
	To             time.Time
	CollectedScope CollectedScope
}

// DashboardRepository computes summaries in one consistent read
type DashboardRepository interface {
	Summarize(ctx context.Context, filter DashboardFilter) (*DashboardSummary, error)
}
