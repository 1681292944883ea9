package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/set-night/greenqash/internal/domain"
	"github.com/set-night/greenqash/internal/metrics"
)

// EarningsService maintains per-user running totals.
type EarningsService struct {
	store EarningsStore
	retry RetryPolicy
}

func NewEarningsService(store EarningsStore, retry RetryPolicy) *EarningsService {
	return &EarningsService{store: store, retry: retry}
}

// Credit adds amount to the category and the all-time total in one atomic
// store update. amount must be positive.
func (s *EarningsService) Credit(ctx context.Context, userID uuid.UUID, category domain.Category, amount int64) (*domain.EarningsAccount, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if !category.Valid() {
		return nil, domain.ErrInvalidCategory
	}

	acc, err := s.store.IncrementEarnings(ctx, userID, category, amount)
	if err != nil {
		return nil, fmt.Errorf("credit %s: %w", category, err)
	}
	metrics.CreditedAmount.WithLabelValues(string(category)).Add(float64(amount))
	return acc, nil
}

func (s *EarningsService) Account(ctx context.Context, userID uuid.UUID) (*domain.EarningsAccount, error) {
	acc, err := retryRead(ctx, s.retry, func() (*domain.EarningsAccount, error) {
		return s.store.GetEarnings(ctx, userID)
	})
	if err != nil {
		return nil, fmt.Errorf("get earnings: %w", err)
	}
	return acc, nil
}
