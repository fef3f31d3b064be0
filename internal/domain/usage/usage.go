// Package usage describes embedding token consumption against the configured budget.
package usage

import "time"

// Period is the aggregation granularity.
type Period string

// Aggregation period constants.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// ParsePeriod maps an API value to a Period. Empty means day.
func ParsePeriod(s string) (Period, bool) {
	switch Period(s) {
	case "", PeriodDay:
		return PeriodDay, true
	case PeriodMonth:
		return PeriodMonth, true
	default:
		return "", false
	}
}

// Bounds returns the UTC start and end of the period containing now.
func (p Period) Bounds(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	if p == PeriodMonth {
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	}
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// Budget is a token budget snapshot. A zero limit means unlimited.
type Budget struct {
	tokensLimit     int64
	tokensRemaining int64
	isExhausted     bool
	resetsAt        time.Time
}

// NewBudget creates a Budget snapshot. remaining < 0 means unlimited.
func NewBudget(limit, remaining int64, resetsAt time.Time) Budget {
	return Budget{
		tokensLimit:     limit,
		tokensRemaining: remaining,
		isExhausted:     limit > 0 && remaining <= 0,
		resetsAt:        resetsAt,
	}
}

// TokensLimit returns the token cap, 0 when unlimited.
func (b Budget) TokensLimit() int64 { return b.tokensLimit }

// TokensRemaining returns tokens left, -1 when unlimited.
func (b Budget) TokensRemaining() int64 { return b.tokensRemaining }

// IsExhausted reports whether the budget is spent.
func (b Budget) IsExhausted() bool { return b.isExhausted }

// ResetsAt returns when the counter rolls over.
func (b Budget) ResetsAt() time.Time { return b.resetsAt }

// Report is the embedding usage of one provider for a period.
type Report struct {
	period      Period
	periodStart time.Time
	periodEnd   time.Time
	provider    string
	tokensUsed  int64
	budget      Budget
}

// NewReport creates a usage report.
func NewReport(period Period, start, end time.Time, provider string, used int64, b Budget) Report {
	return Report{
		period:      period,
		periodStart: start,
		periodEnd:   end,
		provider:    provider,
		tokensUsed:  used,
		budget:      b,
	}
}

// Period returns the aggregation granularity.
func (r *Report) Period() Period { return r.period }

// PeriodStart returns the period start.
func (r *Report) PeriodStart() time.Time { return r.periodStart }

// PeriodEnd returns the period end.
func (r *Report) PeriodEnd() time.Time { return r.periodEnd }

// Provider returns the embedding provider name.
func (r *Report) Provider() string { return r.provider }

// TokensUsed returns the tokens consumed in the period.
func (r *Report) TokensUsed() int64 { return r.tokensUsed }

// Budget returns the budget status.
func (r *Report) Budget() Budget { return r.budget }
