package usage

import domusage "github.com/kailas-cloud/realitycheck/internal/domain/usage"

// BudgetReader exposes the current window of each budget period.
// A zero limit means the period is unlimited.
type BudgetReader interface {
	Window(period domusage.Period) (limit, used int64)
}
