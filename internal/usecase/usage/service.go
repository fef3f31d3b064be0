package usage

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/realitycheck/internal/domain/usage"
)

// Service reports embedding token usage against the budget.
type Service struct {
	br       BudgetReader
	provider string
	now      func() time.Time
}

// New creates a Service. br can be nil when no budget is configured.
func New(br BudgetReader, provider string) *Service {
	return &Service{br: br, provider: provider, now: time.Now}
}

// GetReport builds the report for the period containing now.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	start, end := period.Bounds(s.now())

	var limit, used int64
	if s.br != nil {
		limit, used = s.br.Window(period)
	}

	return domusage.NewReport(period, start, end, s.provider, used, domusage.NewBudget(limit, remaining(limit, used), end))
}

func remaining(limit, used int64) int64 {
	if limit <= 0 {
		return -1
	}
	return max(0, limit-used)
}
