package report

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/facturar/backend/internal/domain/report"
	"github.com/facturar/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDashboardRepository struct {
	mock.Mock
}

func (m *MockDashboardRepository) Summarize(ctx context.Context, filter report.DashboardFilter) (*report.DashboardSummary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.DashboardSummary), args.Error(1)
}

func newDashboardService(t *testing.T, repo report.DashboardRepository, scope report.CollectedScope, zone string) *DashboardService {
	t.Helper()
	loc, err := time.LoadLocation(zone)
	require.NoError(t, err)
	svc := NewDashboardService(repo, scope, loc, nil)
	// Wednesday
	svc.now = func() time.Time { return time.Date(2024, 5, 15, 14, 30, 0, 0, time.UTC) }
	return svc
}

func summaryFor(f report.DashboardFilter) *report.DashboardSummary {
	s := report.EmptySummary(f.From, f.To)
	s.Billed = decimal.RequireFromString("200.00")
	s.InvoiceCount = 2
	return s
}

func TestDashboardService_ExplicitRange(t *testing.T) {
	repo := new(MockDashboardRepository)
	tenantID := testutil.TestTenantID()
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	filter := report.DashboardFilter{TenantID: tenantID, From: from, To: to, CollectedScope: report.CollectedByPaymentDate}
	repo.On("Summarize", mock.Anything, mock.MatchedBy(func(f report.DashboardFilter) bool {
		return f.TenantID == tenantID && f.From.Equal(from) && f.To.Equal(to) && f.CollectedScope == report.CollectedByPaymentDate
	})).Return(summaryFor(filter), nil)

	svc := newDashboardService(t, repo, report.CollectedByPaymentDate, "UTC")
	got, err := svc.Summary(context.Background(), tenantID, DashboardQuery{
		From: "2024-05-01T00:00:00Z",
		To:   "2024-06-01",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(2), got.InvoiceCount)
	assert.True(t, got.Billed.Equal(decimal.RequireFromString("200")))
	repo.AssertExpectations(t)
}

func TestDashboardService_PresetsUseConfiguredZone(t *testing.T) {
	tests := []struct {
		name     string
		query    DashboardQuery
		wantFrom string
		wantTo   string
	}{
		{"today", DashboardQuery{Period: "today"}, "2024-05-15T00:00:00-05:00", "2024-05-16T00:00:00-05:00"},
		{"week starts monday", DashboardQuery{Period: "week"}, "2024-05-13T00:00:00-05:00", "2024-05-20T00:00:00-05:00"},
		{"month", DashboardQuery{Period: "month"}, "2024-05-01T00:00:00-05:00", "2024-06-01T00:00:00-05:00"},
		{"default is month", DashboardQuery{}, "2024-05-01T00:00:00-05:00", "2024-06-01T00:00:00-05:00"},
		{"inclusive range", DashboardQuery{Period: "range", Start: "2024-04-01", End: "2024-04-30"}, "2024-04-01T00:00:00-05:00", "2024-05-01T00:00:00-05:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockDashboardRepository)
			wantFrom, _ := time.Parse(time.RFC3339, tt.wantFrom)
			wantTo, _ := time.Parse(time.RFC3339, tt.wantTo)
			repo.On("Summarize", mock.Anything, mock.MatchedBy(func(f report.DashboardFilter) bool {
				return f.From.Equal(wantFrom) && f.To.Equal(wantTo) && f.CollectedScope == report.CollectedByInvoiceDate
			})).Return(report.EmptySummary(wantFrom, wantTo), nil)

			svc := newDashboardService(t, repo, "", "America/Bogota")
			got, err := svc.Summary(context.Background(), testutil.TestTenantID(), tt.query)

			require.NoError(t, err)
			assert.True(t, got.From.Equal(wantFrom))
			assert.True(t, got.To.Equal(wantTo))
			repo.AssertExpectations(t)
		})
	}
}

func TestDashboardService_BadRangesAreZero(t *testing.T) {
	tests := []struct {
		name  string
		query DashboardQuery
	}{
		{"unparseable from", DashboardQuery{From: "yesterday", To: "2024-05-01"}},
		{"missing to", DashboardQuery{From: "2024-05-01"}},
		{"unknown preset", DashboardQuery{Period: "decade"}},
		{"bad range date", DashboardQuery{Period: "range", Start: "2024-13-01", End: "2024-12-31"}},
		{"inverted", DashboardQuery{From: "2024-06-01", To: "2024-05-01"}},
		{"empty", DashboardQuery{From: "2024-06-01", To: "2024-06-01"}},
		{"range ending before start", DashboardQuery{Period: "range", Start: "2024-05-10", End: "2024-05-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockDashboardRepository)
			svc := newDashboardService(t, repo, "", "UTC")

			got, err := svc.Summary(context.Background(), testutil.TestTenantID(), tt.query)

			require.NoError(t, err)
			assert.True(t, got.Billed.IsZero())
			assert.True(t, got.Collected.IsZero())
			assert.True(t, got.Pending.IsZero())
			assert.True(t, got.Cost.IsZero())
			assert.True(t, got.Profit.IsZero())
			assert.Zero(t, got.InvoiceCount)
			repo.AssertNotCalled(t, "Summarize", mock.Anything, mock.Anything)
		})
	}
}

func TestDashboardService_StorageErrorSurfaces(t *testing.T) {
	repo := new(MockDashboardRepository)
	dbErr := errors.New("connection refused")
	repo.On("Summarize", mock.Anything, mock.Anything).Return(nil, dbErr)
	svc := newDashboardService(t, repo, "", "UTC")

	_, err := svc.Summary(context.Background(), testutil.TestTenantID(), DashboardQuery{Period: "today"})

	assert.ErrorIs(t, err, dbErr)
}
