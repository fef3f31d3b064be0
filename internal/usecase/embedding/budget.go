package embedding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/realitycheck/internal/domain"
	"github.com/kailas-cloud/realitycheck/internal/domain/usage"
)

// BudgetAction defines behavior when token budget is exceeded.
type BudgetAction string

const (
	// BudgetActionWarn logs a warning but allows the request.
	BudgetActionWarn BudgetAction = "warn"
	// BudgetActionReject blocks the request.
	BudgetActionReject BudgetAction = "reject"
)

const (
	// budgetRetention keeps a closed period readable for a day after it ends.
	budgetRetention = 24 * time.Hour
	persistTimeout  = 2 * time.Second
)

// BudgetStore persists per-period token counters.
// ttl is applied once, on the first Add of a key.
type BudgetStore interface {
	Add(ctx context.Context, key string, tokens int64, ttl time.Duration) error
	Load(ctx context.Context, key string) (int64, error)
}

// window is the running total of one budget period.
type window struct {
	period usage.Period
	limit  int64
	used   int64
	start  time.Time
	end    time.Time
}

// roll moves the window to the period containing now, zeroing the count.
func (w *window) roll(now time.Time) {
	if now.Before(w.end) {
		return
	}
	w.start, w.end = w.period.Bounds(now)
	w.used = 0
}

func (w *window) exceeded() bool { return w.limit > 0 && w.used >= w.limit }

func (w *window) remaining() int64 {
	if w.limit == 0 {
		return -1
	}
	return max(0, w.limit-w.used)
}

func (w *window) stamp() string {
	if w.period == usage.PeriodMonth {
		return w.start.Format("2006-01")
	}
	return w.start.Format("2006-01-02")
}

// BudgetTracker counts embedding tokens per day and per month against optional limits.
// Check is answered from memory. Record updates memory and then writes the
// increment through to the store, if one is attached.
type BudgetTracker struct {
	mu       sync.Mutex
	day      window
	month    window
	action   BudgetAction
	provider string
	store    BudgetStore
	now      func() time.Time
	logger   *zap.Logger
}

// NewBudgetTracker creates a tracker. A zero limit disables that period.
func NewBudgetTracker(
	provider string, dailyLimit, monthlyLimit int64,
	action BudgetAction, logger *zap.Logger,
) *BudgetTracker {
	return &BudgetTracker{
		day:      window{period: usage.PeriodDay, limit: dailyLimit},
		month:    window{period: usage.PeriodMonth, limit: monthlyLimit},
		action:   action,
		provider: provider,
		now:      time.Now,
		logger:   logger,
	}
}

// WithStore attaches persistence and seeds the current periods from it.
// Load failures are logged and leave the counters at zero.
func (b *BudgetTracker) WithStore(ctx context.Context, store BudgetStore) *BudgetTracker {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.store = store
	b.rollLocked()
	for _, w := range b.windows() {
		key := b.key(w)
		used, err := store.Load(ctx, key)
		if err != nil {
			b.logger.Warn("Budget counter not restored", zap.String("key", key), zap.Error(err))
			continue
		}
		w.used = used
	}

	b.logger.Info("Budget restored",
		zap.String("provider", b.provider),
		zap.Int64("day_used", b.day.used),
		zap.Int64("month_used", b.month.used),
	)
	return b
}

// Check reports whether another provider call is allowed.
func (b *BudgetTracker) Check(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rollLocked()
	for _, w := range b.windows() {
		if !w.exceeded() {
			continue
		}
		if b.action == BudgetActionReject {
			return fmt.Errorf("%s %s token budget exhausted: %w", b.provider, w.period, domain.ErrProviderQuota)
		}
		b.logger.Warn("Token budget exceeded",
			zap.String("provider", b.provider),
			zap.String("period", string(w.period)),
			zap.Int64("used", w.used),
			zap.Int64("limit", w.limit),
		)
		return nil
	}
	return nil
}

// Record charges tokens to both periods. Store write failures are logged only.
func (b *BudgetTracker) Record(ctx context.Context, tokens int64) {
	if tokens <= 0 {
		return
	}

	type write struct {
		key string
		ttl time.Duration
	}

	b.mu.Lock()
	now := b.rollLocked()
	var writes []write
	for _, w := range b.windows() {
		w.used += tokens
		if b.store != nil {
			writes = append(writes, write{key: b.key(w), ttl: w.end.Sub(now) + budgetRetention})
		}
	}
	store := b.store
	b.mu.Unlock()

	if store == nil {
		return
	}

	// The request may already be finished; the write must still land.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	for _, wr := range writes {
		if err := store.Add(ctx, wr.key, tokens, wr.ttl); err != nil {
			b.logger.Warn("Budget counter not persisted", zap.String("key", wr.key), zap.Error(err))
		}
	}
}

// Window returns the limit and consumption of the current period.
func (b *BudgetTracker) Window(period usage.Period) (limit, used int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rollLocked()
	w := b.window(period)
	return w.limit, w.used
}

// Remaining returns tokens left in the current period, or -1 when unlimited.
func (b *BudgetTracker) Remaining(period usage.Period) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rollLocked()
	return b.window(period).remaining()
}

func (b *BudgetTracker) windows() []*window { return []*window{&b.day, &b.month} }

func (b *BudgetTracker) window(period usage.Period) *window {
	if period == usage.PeriodMonth {
		return &b.month
	}
	return &b.day
}

func (b *BudgetTracker) rollLocked() time.Time {
	now := b.now().UTC()
	b.day.roll(now)
	b.month.roll(now)
	return now
}

// key is budget:{provider}:{period}:{start}. The KV store adds its own prefix.
func (b *BudgetTracker) key(w *window) string {
	return fmt.Sprintf("budget:%s:%s:%s", b.provider, w.period, w.stamp())
}
