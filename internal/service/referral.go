package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/set-night/greenqash/internal/domain"
)

const (
	referralCodeLength  = 6
	referralCodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

func generateReferralCode() (string, error) {
	code := make([]byte, referralCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referralCodeCharset))))
		if err != nil {
			return "", fmt.Errorf("random int: %w", err)
		}
		code[i] = referralCodeCharset[n.Int64()]
	}
	return string(code), nil
}

func generateUniqueReferralCode(ctx context.Context, users UserStore) (string, error) {
	for i := 0; i < 10; i++ {
		code, err := generateReferralCode()
		if err != nil {
			return "", err
		}
		_, err = users.GetUserByReferralCode(ctx, code)
		if errors.Is(err, domain.ErrUserNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("check referral code: %w", err)
		}
	}
	return "", fmt.Errorf("failed to generate unique referral code after 10 attempts")
}

// NormalizeReferralCode upper-cases and trims a user-entered code.
func NormalizeReferralCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ReferralService links a user to the user who referred them and pays the
// referrer once per referee.
type ReferralService struct {
	users   UserStore
	credits *CreditService
	bonus   int64
}

func NewReferralService(users UserStore, credits *CreditService, bonus int64) *ReferralService {
	return &ReferralService{users: users, credits: credits, bonus: bonus}
}

// Apply records code's owner as user's referrer and credits the referrer.
// A user can be referred only once and never by themselves.
func (s *ReferralService) Apply(ctx context.Context, user *domain.User, code string) (*domain.User, error) {
	code = NormalizeReferralCode(code)
	if code == "" {
		return nil, domain.ErrReferralInvalid
	}

	referrer, err := s.users.GetUserByReferralCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrReferralInvalid
		}
		return nil, fmt.Errorf("find referrer: %w", err)
	}
	if referrer.ID == user.ID {
		return nil, domain.ErrReferralInvalid
	}

	if err := s.users.SetReferrer(ctx, user.ID, referrer.ID); err != nil {
		return nil, err
	}

	if s.bonus > 0 {
		_, err := s.credits.Grant(ctx, referrer.ID, domain.CreditKindReferral, user.ID.String(), s.bonus)
		if err != nil && !errors.Is(err, domain.ErrCreditExists) {
			return referrer, fmt.Errorf("referral bonus: %w", err)
		}
	}
	return referrer, nil
}
