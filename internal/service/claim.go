package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/greenqash/internal/domain"
	"github.com/set-night/greenqash/internal/metrics"
)

// ClaimService turns a completed task into a one-time payout. Every surface
// (REST, Telegram) claims through it.
type ClaimService struct {
	catalog  *CatalogService
	ledger   *LedgerService
	earnings *EarningsService
	// settleTimeout bounds the steps that run after the ledger write, which
	// are detached from the caller's cancellation.
	settleTimeout time.Duration
}

func NewClaimService(catalog *CatalogService, ledger *LedgerService, earnings *EarningsService, settleTimeout time.Duration) *ClaimService {
	return &ClaimService{
		catalog:       catalog,
		ledger:        ledger,
		earnings:      earnings,
		settleTimeout: settleTimeout,
	}
}

// ClaimReward pays userID for taskID at most once.
//
// The ledger entry is written before earnings are credited, so a failure in
// between can under-pay but never over-pay. In that case the returned error
// wraps domain.ErrCreditPending and the entry stays in the completed state.
func (s *ClaimService) ClaimReward(ctx context.Context, userID, taskID uuid.UUID) (result *domain.ClaimResult, err error) {
	defer func() {
		metrics.ClaimsTotal.WithLabelValues(metrics.Outcome(err)).Inc()
	}()

	task, err := s.catalog.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsActive {
		return nil, domain.ErrTaskInactive
	}

	rec, err := s.ledger.RecordCompletion(ctx, userID, taskID, task.RewardAmount)
	if err != nil {
		return nil, err
	}

	// The payout is owed from here on; a client hanging up must not stop it.
	settleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.settleTimeout)
	defer cancel()

	category := domain.CategoryOf(task.Platform)
	var acc *domain.EarningsAccount
	if rec.RewardEarned > 0 {
		acc, err = s.earnings.Credit(settleCtx, userID, category, rec.RewardEarned)
	} else {
		acc, err = s.earnings.Account(settleCtx, userID)
	}
	if err != nil {
		slog.Error("claim credit failed after ledger write",
			"user_id", userID,
			"task_id", taskID,
			"amount", rec.RewardEarned,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %w", domain.ErrCreditPending, err)
	}

	if err := s.ledger.MarkClaimed(settleCtx, userID, taskID); err != nil {
		// Earnings are already credited; only the status marker is stale.
		slog.Warn("mark completion claimed failed", "user_id", userID, "task_id", taskID, "error", err)
	}

	slog.Info("reward claimed",
		"user_id", userID,
		"task_id", taskID,
		"category", category,
		"amount", rec.RewardEarned,
		"all_time_total", acc.AllTimeTotal,
	)

	return &domain.ClaimResult{
		TaskID:           taskID,
		Category:         category,
		RewardAmount:     rec.RewardEarned,
		NewCategoryTotal: acc.ByCategory[category],
		NewAllTimeTotal:  acc.AllTimeTotal,
	}, nil
}

// IsExpected reports whether err is a normal, user-facing claim outcome
// rather than a fault.
func IsExpected(err error) bool {
	return errors.Is(err, domain.ErrAlreadyClaimed) ||
		errors.Is(err, domain.ErrTaskNotFound) ||
		errors.Is(err, domain.ErrTaskInactive)
}
