package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/set-night/greenqash/internal/domain"
)

const signupCreditRef = "signup"

type UserService struct {
	users       UserStore
	referrals   *ReferralService
	credits     *CreditService
	signupBonus int64
}

func NewUserService(users UserStore, referrals *ReferralService, credits *CreditService, signupBonus int64) *UserService {
	return &UserService{users: users, referrals: referrals, credits: credits, signupBonus: signupBonus}
}

// FindOrCreateTelegram loads the user for a Telegram account, creating it on
// first contact. referredByCode is applied only to newly created users.
func (s *UserService) FindOrCreateTelegram(ctx context.Context, telegramID int64, firstName, username, referredByCode string) (*domain.User, bool, error) {
	user, err := s.users.GetUserByTelegramID(ctx, telegramID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, false, fmt.Errorf("get user: %w", err)
	}

	user, created, err := s.create(ctx, domain.User{
		ID:         uuid.New(),
		TelegramID: &telegramID,
		FirstName:  firstName,
		Username:   username,
	}, func(ctx context.Context) (*domain.User, error) {
		return s.users.GetUserByTelegramID(ctx, telegramID)
	})
	if err != nil || !created {
		return user, created, err
	}

	s.onboard(ctx, user, referredByCode)
	return user, true, nil
}

// EnsureUser loads a dashboard user by auth subject, creating the row on
// first sight.
func (s *UserService) EnsureUser(ctx context.Context, id uuid.UUID) (*domain.User, bool, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, false, fmt.Errorf("get user: %w", err)
	}

	user, created, err := s.create(ctx, domain.User{ID: id}, func(ctx context.Context) (*domain.User, error) {
		return s.users.GetUserByID(ctx, id)
	})
	if err != nil || !created {
		return user, created, err
	}

	s.onboard(ctx, user, "")
	return user, true, nil
}

// create inserts u with a fresh referral code. If a concurrent request
// created the same identity first, reload returns that user instead.
func (s *UserService) create(ctx context.Context, u domain.User, reload func(context.Context) (*domain.User, error)) (*domain.User, bool, error) {
	for attempt := 0; attempt < 3; attempt++ {
		code, err := generateUniqueReferralCode(ctx, s.users)
		if err != nil {
			return nil, false, fmt.Errorf("generate referral code: %w", err)
		}
		u.ReferralCode = code

		created, err := s.users.CreateUser(ctx, u)
		if err == nil {
			return created, true, nil
		}
		if !errors.Is(err, domain.ErrUserExists) {
			return nil, false, fmt.Errorf("create user: %w", err)
		}

		existing, err := reload(ctx)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, false, fmt.Errorf("reload user: %w", err)
		}
		// referral code collision; try another code
	}
	return nil, false, fmt.Errorf("create user: %w", domain.ErrUserExists)
}

// onboard applies the referral and signup bonus for a new user. Failures are
// logged and do not fail registration.
func (s *UserService) onboard(ctx context.Context, user *domain.User, referredByCode string) {
	if referredByCode != "" {
		if _, err := s.referrals.Apply(ctx, user, referredByCode); err != nil {
			slog.Warn("apply referral on signup", "user_id", user.ID, "code", referredByCode, "error", err)
		} else if fresh, err := s.users.GetUserByID(ctx, user.ID); err == nil {
			*user = *fresh
		}
	}

	if s.signupBonus > 0 {
		_, err := s.credits.Grant(ctx, user.ID, domain.CreditKindBonus, signupCreditRef, s.signupBonus)
		if err != nil && !errors.Is(err, domain.ErrCreditExists) {
			slog.Error("grant signup bonus", "user_id", user.ID, "error", err)
		}
	}
}

func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	return s.users.GetUserByTelegramID(ctx, telegramID)
}

func (s *UserService) UpdateInfo(ctx context.Context, userID uuid.UUID, firstName, username string) error {
	return s.users.UpdateUserInfo(ctx, userID, firstName, username)
}
