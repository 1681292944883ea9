package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/set-night/greenqash/internal/domain"
)

// CreditService pays non-task credits (referral and bonus). Each credit is
// keyed by (user, kind, ref) in its own ledger and then credited through the
// earnings accumulator, the same two steps a task claim takes.
type CreditService struct {
	credits  CreditStore
	earnings *EarningsService
}

func NewCreditService(credits CreditStore, earnings *EarningsService) *CreditService {
	return &CreditService{credits: credits, earnings: earnings}
}

// Grant pays amount once per (userID, kind, ref). A repeat fails with
// domain.ErrCreditExists and changes nothing.
func (s *CreditService) Grant(ctx context.Context, userID uuid.UUID, kind domain.CreditKind, ref string, amount int64) (*domain.EarningsAccount, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	if _, err := s.credits.InsertCredit(ctx, domain.Credit{
		UserID: userID,
		Kind:   kind,
		Ref:    ref,
		Amount: amount,
	}); err != nil {
		return nil, err
	}

	acc, err := s.earnings.Credit(ctx, userID, kind.Category(), amount)
	if err != nil {
		slog.Error("credit failed after credit ledger write",
			"user_id", userID,
			"kind", kind,
			"ref", ref,
			"amount", amount,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %w", domain.ErrCreditPending, err)
	}
	return acc, nil
}
