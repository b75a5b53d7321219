package persistence

import (
	"context"
	"fmt"

	"github.com/facturar/backend/internal/domain/report"
	"github.com/facturar/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const summarySelect = `SELECT
	COUNT(*) AS invoice_count,
	COALESCE(SUM(total), 0) AS billed,
	%s AS collected,
	COALESCE(SUM(pending), 0) AS pending,
	COALESCE(SUM(total_cost), 0) AS cost,
	COALESCE(SUM(total_profit), 0) AS profit
FROM invoices
WHERE tenant_id = ? AND created_at >= ? AND created_at < ?`

const collectedByInvoice = `COALESCE(SUM(total_paid), 0)`

const collectedByPayment = `(SELECT COALESCE(SUM(amount), 0) FROM payments
		WHERE tenant_id = ? AND created_at >= ? AND created_at < ?)`

// GormDashboardRepository implements report.DashboardRepository with a
// single aggregate statement, so every figure comes from the same snapshot.
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewGormDashboardRepository creates a new GormDashboardRepository
func NewGormDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

type summaryRow struct {
	InvoiceCount int64
	Billed       decimal.Decimal
	Collected    decimal.Decimal
	Pending      decimal.Decimal
	Cost         decimal.Decimal
	Profit       decimal.Decimal
}

// Summarize aggregates invoices created in [filter.From, filter.To)
func (r *GormDashboardRepository) Summarize(ctx context.Context, filter report.DashboardFilter) (*report.DashboardSummary, error) {
	from, to := filter.From.UTC(), filter.To.UTC()
	if !to.After(from) {
		return report.EmptySummary(filter.From, filter.To), nil
	}

	var (
		query string
		args  []any
	)
	if filter.CollectedScope == report.CollectedByPaymentDate {
		query = fmt.Sprintf(summarySelect, collectedByPayment)
		args = []any{filter.TenantID, from, to, filter.TenantID, from, to}
	} else {
		query = fmt.Sprintf(summarySelect, collectedByInvoice)
		args = []any{filter.TenantID, from, to}
	}

	var row summaryRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&row).Error; err != nil {
		return nil, err
	}

	return &report.DashboardSummary{
		From:         filter.From,
		To:           filter.To,
		Billed:       shared.RoundMoney(row.Billed),
		Collected:    shared.RoundMoney(row.Collected),
		Pending:      shared.RoundMoney(row.Pending),
		Cost:         shared.RoundMoney(row.Cost),
		Profit:       shared.RoundMoney(row.Profit),
		InvoiceCount: row.InvoiceCount,
	}, nil
}

var _ report.DashboardRepository = (*GormDashboardRepository)(nil)
