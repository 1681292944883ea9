package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/set-night/greenqash/internal/domain"
)

const insertCredit = `INSERT INTO credits (user_id, kind, ref, amount)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, kind, ref) DO NOTHING
RETURNING id, user_id, kind, ref, amount, created_at`

func (q *Queries) InsertCredit(ctx context.Context, c domain.Credit) (*domain.Credit, error) {
	var (
		out  domain.Credit
		kind string
	)
	err := q.db.QueryRow(ctx, insertCredit, c.UserID, string(c.Kind), c.Ref, c.Amount).
		Scan(&out.ID, &out.UserID, &kind, &out.Ref, &out.Amount, &out.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err) {
			return nil, domain.ErrCreditExists
		}
		return nil, fmt.Errorf("insert credit: %w", mapError(err))
	}
	out.Kind = domain.CreditKind(kind)
	return &out, nil
}
