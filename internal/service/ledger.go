package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/set-night/greenqash/internal/domain"
)

// LedgerService records which (user, task) pairs have been paid.
type LedgerService struct {
	store CompletionStore
	retry RetryPolicy
}

func NewLedgerService(store CompletionStore, retry RetryPolicy) *LedgerService {
	return &LedgerService{store: store, retry: retry}
}

func (s *LedgerService) HasClaimed(ctx context.Context, userID, taskID uuid.UUID) (bool, error) {
	return retryRead(ctx, s.retry, func() (bool, error) {
		return s.store.HasCompletion(ctx, userID, taskID)
	})
}

// RecordCompletion writes the ledger entry for (userID, taskID). The store's
// uniqueness constraint decides races; the loser gets domain.ErrAlreadyClaimed.
// The entry starts as completed and is promoted by MarkClaimed once paid.
func (s *LedgerService) RecordCompletion(ctx context.Context, userID, taskID uuid.UUID, rewardAmount int64) (*domain.CompletionRecord, error) {
	if rewardAmount < 0 {
		return nil, domain.ErrInvalidAmount
	}
	rec, err := s.store.InsertCompletion(ctx, domain.CompletionRecord{
		UserID:       userID,
		TaskID:       taskID,
		Status:       domain.CompletionStatusCompleted,
		RewardEarned: rewardAmount,
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *LedgerService) MarkClaimed(ctx context.Context, userID, taskID uuid.UUID) error {
	return s.store.MarkCompletionClaimed(ctx, userID, taskID)
}

// History lists a user's ledger entries, newest first.
func (s *LedgerService) History(ctx context.Context, userID uuid.UUID) ([]domain.CompletionRecord, error) {
	recs, err := retryRead(ctx, s.retry, func() ([]domain.CompletionRecord, error) {
		return s.store.ListCompletions(ctx, userID)
	})
	if err != nil {
		return nil, fmt.Errorf("completion history: %w", err)
	}
	return recs, nil
}
