package embedding

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/realitycheck/internal/domain"
	"github.com/kailas-cloud/realitycheck/internal/domain/usage"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTracker(daily, monthly int64, action BudgetAction) (*BudgetTracker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 10, 15, 13, 0, 0, 0, time.UTC)}
	bt := NewBudgetTracker("huggingface", daily, monthly, action, zap.NewNop())
	bt.now = clock.now
	return bt, clock
}

func TestBudgetTracker_Check(t *testing.T) {
	tests := []struct {
		name    string
		daily   int64
		monthly int64
		action  BudgetAction
		used    int64
		wantErr bool
	}{
		{"daily reject", 100, 0, BudgetActionReject, 100, true},
		{"monthly reject", 0, 500, BudgetActionReject, 500, true},
		{"warn lets through", 100, 0, BudgetActionWarn, 200, false},
		{"unlimited", 0, 0, BudgetActionReject, 999999999, false},
		{"below limit", 1000, 10000, BudgetActionReject, 500, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bt, _ := newTestTracker(tc.daily, tc.monthly, tc.action)
			bt.Record(context.Background(), tc.used)

			err := bt.Check(context.Background())
			if tc.wantErr && !errors.Is(err, domain.ErrProviderQuota) {
				t.Fatalf("expected ErrProviderQuota, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestBudgetTracker_Remaining(t *testing.T) {
	bt, _ := newTestTracker(1000, 10000, BudgetActionWarn)
	bt.Record(context.Background(), 300)

	if got := bt.Remaining(usage.PeriodDay); got != 700 {
		t.Errorf("day remaining = %d, want 700", got)
	}
	if got := bt.Remaining(usage.PeriodMonth); got != 9700 {
		t.Errorf("month remaining = %d, want 9700", got)
	}

	bt.Record(context.Background(), 5000)
	if got := bt.Remaining(usage.PeriodDay); got != 0 {
		t.Errorf("overspent day remaining = %d, want 0", got)
	}

	unlimited, _ := newTestTracker(0, 0, BudgetActionWarn)
	if unlimited.Remaining(usage.PeriodDay) != -1 || unlimited.Remaining(usage.PeriodMonth) != -1 {
		t.Error("expected -1 for unlimited budgets")
	}
}

func TestBudgetTracker_Rollover(t *testing.T) {
	bt, clock := newTestTracker(100, 1000, BudgetActionReject)
	bt.Record(context.Background(), 100)
	if err := bt.Check(context.Background()); err == nil {
		t.Fatal("expected day budget to be exhausted")
	}

	clock.advance(12 * time.Hour)
	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("new day should reset the day window: %v", err)
	}
	if limit, used := bt.Window(usage.PeriodDay); limit != 100 || used != 0 {
		t.Errorf("day window = %d/%d, want 100/0", used, limit)
	}
	if _, used := bt.Window(usage.PeriodMonth); used != 100 {
		t.Errorf("month used = %d, want 100 within the same month", used)
	}

	clock.advance(17 * 24 * time.Hour)
	if _, used := bt.Window(usage.PeriodMonth); used != 0 {
		t.Errorf("month used = %d after rollover, want 0", used)
	}
}

type mockBudgetStore struct {
	mu      sync.Mutex
	data    map[string]int64
	ttls    map[string]time.Duration
	loadErr error
	addErr  error
}

func newMockBudgetStore() *mockBudgetStore {
	return &mockBudgetStore{data: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (m *mockBudgetStore) Add(_ context.Context, key string, tokens int64, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	m.data[key] += tokens
	m.ttls[key] = ttl
	return nil
}

func (m *mockBudgetStore) Load(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return 0, m.loadErr
	}
	return m.data[key], nil
}

func TestBudgetTracker_WithStore_Restores(t *testing.T) {
	store := newMockBudgetStore()
	store.data["budget:huggingface:day:2026-10-15"] = 300
	store.data["budget:huggingface:month:2026-10"] = 5000
	store.data["budget:huggingface:day:2026-10-14"] = 999

	bt, _ := newTestTracker(1000, 10000, BudgetActionReject)
	bt.WithStore(context.Background(), store)

	if _, used := bt.Window(usage.PeriodDay); used != 300 {
		t.Errorf("day used = %d, want 300", used)
	}
	if _, used := bt.Window(usage.PeriodMonth); used != 5000 {
		t.Errorf("month used = %d, want 5000", used)
	}
}

func TestBudgetTracker_Record_Persists(t *testing.T) {
	store := newMockBudgetStore()
	bt, _ := newTestTracker(10000, 100000, BudgetActionWarn)
	bt.WithStore(context.Background(), store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bt.Record(ctx, 100)
	bt.Record(context.Background(), 200)
	bt.Record(context.Background(), 0)

	if got := store.data["budget:huggingface:day:2026-10-15"]; got != 300 {
		t.Errorf("stored day = %d, want 300", got)
	}
	if got := store.data["budget:huggingface:month:2026-10"]; got != 300 {
		t.Errorf("stored month = %d, want 300", got)
	}
	// 11h left in the day plus a day of retention
	if got := store.ttls["budget:huggingface:day:2026-10-15"]; got != 35*time.Hour {
		t.Errorf("day ttl = %v, want 35h", got)
	}
}

func TestBudgetTracker_StoreErrorsAreNotFatal(t *testing.T) {
	store := newMockBudgetStore()
	store.loadErr = errors.New("connection refused")

	bt, _ := newTestTracker(1000, 10000, BudgetActionReject)
	bt.WithStore(context.Background(), store)
	if _, used := bt.Window(usage.PeriodDay); used != 0 {
		t.Errorf("day used = %d after load error, want 0", used)
	}

	store.mu.Lock()
	store.addErr = errors.New("write timeout")
	store.mu.Unlock()

	bt.Record(context.Background(), 50)
	if _, used := bt.Window(usage.PeriodDay); used != 50 {
		t.Errorf("day used = %d after write error, want 50", used)
	}
}
