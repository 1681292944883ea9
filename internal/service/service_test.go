package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/greenqash/internal/domain"
	"github.com/set-night/greenqash/internal/repository/memory"
)

var testRetry = RetryPolicy{Initial: time.Millisecond, Max: 2 * time.Millisecond, Attempts: 3}

// faultyStore wraps the memory store with injectable failures.
type faultyStore struct {
	*memory.Store
	incrementErr error
	listFailures atomic.Int32
	listCalls    atomic.Int32
	afterInsert  func()
}

func (f *faultyStore) IncrementEarnings(ctx context.Context, userID uuid.UUID, category domain.Category, amount int64) (*domain.EarningsAccount, error) {
	if f.incrementErr != nil {
		return nil, f.incrementErr
	}
	return f.Store.IncrementEarnings(ctx, userID, category, amount)
}

func (f *faultyStore) ListActiveTasks(ctx context.Context, platform *domain.Platform) ([]domain.Task, error) {
	f.listCalls.Add(1)
	if f.listFailures.Load() > 0 {
		f.listFailures.Add(-1)
		return nil, domain.ErrStoreUnavailable
	}
	return f.Store.ListActiveTasks(ctx, platform)
}

func (f *faultyStore) InsertCompletion(ctx context.Context, rec domain.CompletionRecord) (*domain.CompletionRecord, error) {
	out, err := f.Store.InsertCompletion(ctx, rec)
	if err == nil && f.afterInsert != nil {
		f.afterInsert()
	}
	return out, err
}

type testServices struct {
	store     *faultyStore
	catalog   *CatalogService
	ledger    *LedgerService
	earnings  *EarningsService
	claims    *ClaimService
	credits   *CreditService
	referrals *ReferralService
	users     *UserService
}

func newTestServices(t *testing.T, cache CatalogCache) *testServices {
	t.Helper()
	store := &faultyStore{Store: memory.New()}
	catalog := NewCatalogService(store, cache, testRetry)
	ledger := NewLedgerService(store, testRetry)
	earnings := NewEarningsService(store, testRetry)
	credits := NewCreditService(store, earnings)
	referrals := NewReferralService(store, credits, 100)
	return &testServices{
		store:     store,
		catalog:   catalog,
		ledger:    ledger,
		earnings:  earnings,
		claims:    NewClaimService(catalog, ledger, earnings, time.Second),
		credits:   credits,
		referrals: referrals,
		users:     NewUserService(store, referrals, credits, 0),
	}
}

func (s *testServices) addTask(platform domain.Platform, reward int64, active bool) domain.Task {
	task := domain.Task{
		ID:           uuid.New(),
		Title:        string(platform) + " task",
		Platform:     platform,
		RewardAmount: reward,
		IsActive:     active,
	}
	s.store.PutTask(task)
	return task
}
