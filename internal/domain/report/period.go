package report

import (
	"strings"
	"time"

	"github.com/facturar/backend/internal/domain/shared"
)

// Period names a dashboard preset
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodRange Period = "range"
)

// DateLayout is the calendar date format accepted for custom ranges
const DateLayout = "2006-01-02"

// ErrInvalidPeriod is returned for unknown presets and malformed dates
var ErrInvalidPeriod = shared.NewDomainError("INVALID_PERIOD", "Invalid dashboard period")

// ResolvePeriod turns a preset into a half-open [from, to) range in loc.
// Weeks start on Monday. For PeriodRange, start and end are inclusive
// calendar dates and the end is pushed to the following midnight.
func ResolvePeriod(period Period, now time.Time, loc *time.Location, start, end string) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	switch Period(strings.ToLower(string(period))) {
	case PeriodToday:
		return today, today.AddDate(0, 0, 1), nil
	case PeriodWeek:
		offset := (int(today.Weekday()) + 6) % 7
		monday := today.AddDate(0, 0, -offset)
		return monday, monday.AddDate(0, 0, 7), nil
	case PeriodMonth, "":
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
		return first, first.AddDate(0, 1, 0), nil
	case PeriodRange:
		from, err := time.ParseInLocation(DateLayout, strings.TrimSpace(start), loc)
		if err != nil {
			return time.Time{}, time.Time{}, ErrInvalidPeriod.WithMessage("start must be a YYYY-MM-DD date")
		}
		last, err := time.ParseInLocation(DateLayout, strings.TrimSpace(end), loc)
		if err != nil {
			return time.Time{}, time.Time{}, ErrInvalidPeriod.WithMessage("end must be a YYYY-MM-DD date")
		}
		return from, last.AddDate(0, 0, 1), nil
	}
	return time.Time{}, time.Time{}, ErrInvalidPeriod
}
