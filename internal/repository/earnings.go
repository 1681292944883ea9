package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/set-night/greenqash/internal/domain"
)

// categoryColumns maps the closed category set to earnings_accounts columns.
// Column names are only ever taken from this map.
var categoryColumns = map[domain.Category]string{
	domain.CategoryYouTube:  "youtube",
	domain.CategoryTikTok:   "tiktok",
	domain.CategoryTrivia:   "trivia",
	domain.CategoryReferral: "referral",
	domain.CategoryBonus:    "bonus",
}

const earningsColumns = `user_id, youtube, tiktok, trivia, referral, bonus, all_time_total, updated_at`

var incrementEarnings = buildIncrementQueries()

// buildIncrementQueries prepares one upsert per category. Each increments the
// category column and all_time_total in a single statement evaluated by the
// server, so concurrent credits cannot lose updates.
func buildIncrementQueries() map[domain.Category]string {
	out := make(map[domain.Category]string, len(categoryColumns))
	for cat, col := range categoryColumns {
		out[cat] = fmt.Sprintf(`INSERT INTO earnings_accounts (user_id, %[1]s, all_time_total)
VALUES ($1, $2, $2)
ON CONFLICT (user_id) DO UPDATE SET
    %[1]s = earnings_accounts.%[1]s + EXCLUDED.%[1]s,
    all_time_total = earnings_accounts.all_time_total + EXCLUDED.all_time_total,
    updated_at = now()
RETURNING %[2]s`, col, earningsColumns)
	}
	return out
}

func (q *Queries) IncrementEarnings(ctx context.Context, userID uuid.UUID, category domain.Category, amount int64) (*domain.EarningsAccount, error) {
	query, ok := incrementEarnings[category]
	if !ok {
		return nil, domain.ErrInvalidCategory
	}
	acc, err := scanEarnings(q.db.QueryRow(ctx, query, userID, amount))
	if err != nil {
		return nil, fmt.Errorf("increment earnings: %w", mapError(err))
	}
	return acc, nil
}

const getEarnings = `SELECT ` + earningsColumns + ` FROM earnings_accounts WHERE user_id = $1`

// GetEarnings returns a zeroed account for users who never earned anything.
func (q *Queries) GetEarnings(ctx context.Context, userID uuid.UUID) (*domain.EarningsAccount, error) {
	acc, err := scanEarnings(q.db.QueryRow(ctx, getEarnings, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NewEarningsAccount(userID), nil
		}
		return nil, fmt.Errorf("get earnings: %w", mapError(err))
	}
	return acc, nil
}

func scanEarnings(row pgx.Row) (*domain.EarningsAccount, error) {
	var (
		userID                                   uuid.UUID
		youtube, tiktok, trivia, referral, bonus int64
	)
	acc := &domain.EarningsAccount{}
	if err := row.Scan(&userID, &youtube, &tiktok, &trivia, &referral, &bonus, &acc.AllTimeTotal, &acc.UpdatedAt); err != nil {
		return nil, err
	}
	acc.UserID = userID
	acc.ByCategory = map[domain.Category]int64{
		domain.CategoryYouTube:  youtube,
		domain.CategoryTikTok:   tiktok,
		domain.CategoryTrivia:   trivia,
		domain.CategoryReferral: referral,
		domain.CategoryBonus:    bonus,
	}
	return acc, nil
}
