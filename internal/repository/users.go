package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/set-night/greenqash/internal/domain"
)

const userColumns = `id, telegram_id, first_name, username, referral_code, referred_by_id, created_at, updated_at`

const createUser = `INSERT INTO users (id, telegram_id, first_name, username, referral_code, referred_by_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + userColumns

// CreateUser reports any uniqueness conflict (id, telegram_id or
// referral_code) as domain.ErrUserExists.
func (q *Queries) CreateUser(ctx context.Context, u domain.User) (*domain.User, error) {
	out, err := scanUser(q.db.QueryRow(ctx, createUser, u.ID, u.TelegramID, u.FirstName, u.Username, u.ReferralCode, u.ReferredByID))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create user: %w", domain.ErrUserExists)
		}
		return nil, fmt.Errorf("create user: %w", mapError(err))
	}
	return out, nil
}

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return q.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (q *Queries) GetUserByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	return q.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, telegramID)
}

func (q *Queries) GetUserByReferralCode(ctx context.Context, code string) (*domain.User, error) {
	return q.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE referral_code = $1`, code)
}

func (q *Queries) getUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	u, err := scanUser(q.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", mapError(err))
	}
	return u, nil
}

const setReferrer = `UPDATE users SET referred_by_id = $2, updated_at = now()
WHERE id = $1 AND referred_by_id IS NULL`

// SetReferrer sets the referrer once; a second call fails with ErrReferralAlreadySet.
func (q *Queries) SetReferrer(ctx context.Context, userID, referrerID uuid.UUID) error {
	tag, err := q.db.Exec(ctx, setReferrer, userID, referrerID)
	if err != nil {
		return fmt.Errorf("set referrer: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		if _, err := q.GetUserByID(ctx, userID); err != nil {
			return err
		}
		return domain.ErrReferralAlreadySet
	}
	return nil
}

const updateUserInfo = `UPDATE users SET first_name = $2, username = $3, updated_at = now() WHERE id = $1`

func (q *Queries) UpdateUserInfo(ctx context.Context, id uuid.UUID, firstName, username string) error {
	if _, err := q.db.Exec(ctx, updateUserInfo, id, firstName, username); err != nil {
		return fmt.Errorf("update user info: %w", mapError(err))
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.TelegramID, &u.FirstName, &u.Username, &u.ReferralCode, &u.ReferredByID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
