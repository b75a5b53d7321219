package report

import (
	"context"
	"strings"
	"time"

	"github.com/facturar/backend/internal/domain/report"
	"github.com/facturar/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DashboardQuery selects the dashboard range. Explicit From/To win over a
// preset. From and To take RFC 3339 timestamps or YYYY-MM-DD dates.
type DashboardQuery struct {
	From   string `form:"from"`
	To     string `form:"to"`
	Period string `form:"period"`
	Start  string `form:"start"`
	End    string `form:"end"`
}

// DashboardService answers the financial summary of a period
type DashboardService struct {
	repo   report.DashboardRepository
	scope  report.CollectedScope
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewDashboardService creates a new DashboardService. Presets are resolved
// in loc; a nil loc means UTC.
func NewDashboardService(repo report.DashboardRepository, scope report.CollectedScope, loc *time.Location, logger *zap.Logger) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if scope == "" {
		scope = report.CollectedByInvoiceDate
	}
	return &DashboardService{
		repo:   repo,
		scope:  scope,
		loc:    loc,
		now:    time.Now,
		logger: logger,
	}
}

// Summary resolves q and summarizes the range. A range that cannot be
// parsed yields an all-zero summary rather than an error.
func (s *DashboardService) Summary(ctx context.Context, tenantID uuid.UUID, q DashboardQuery) (*report.DashboardSummary, error) {
	from, to, ok := s.resolve(q)
	if !ok {
		return report.EmptySummary(from, to), nil
	}
	return s.Summarize(ctx, tenantID, from, to)
}

// Summarize returns billed, collected, pending, cost and profit for invoices
// created in [from, to). An empty or inverted range is all zeros.
func (s *DashboardService) Summarize(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*report.DashboardSummary, error) {
	if !to.After(from) {
		return report.EmptySummary(from, to), nil
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "dashboard", "summary",
		telemetry.SpanAttrTenantID, tenantID.String(),
		"collected_scope", string(s.scope),
	)
	defer span.End()

	summary, err := s.repo.Summarize(ctx, report.DashboardFilter{
		TenantID:       tenantID,
		From:           from,
		To:             to,
		CollectedScope: s.scope,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	// report the range in the caller's zone
	summary.From, summary.To = from, to
	return summary, nil
}

func (s *DashboardService) resolve(q DashboardQuery) (time.Time, time.Time, bool) {
	if q.From != "" || q.To != "" {
		from, errFrom := s.parseInstant(q.From)
		to, errTo := s.parseInstant(q.To)
		if errFrom != nil || errTo != nil {
			s.logger.Debug("Ignoring unparseable dashboard range",
				zap.String("from", q.From), zap.String("to", q.To))
			return time.Time{}, time.Time{}, false
		}
		return from, to, true
	}

	from, to, err := report.ResolvePeriod(report.Period(q.Period), s.now(), s.loc, q.Start, q.End)
	if err != nil {
		s.logger.Debug("Ignoring invalid dashboard period",
			zap.String("period", q.Period), zap.Error(err))
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func (s *DashboardService) parseInstant(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t, nil
	}
	return time.ParseInLocation(report.DateLayout, v, s.loc)
}
