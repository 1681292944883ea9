package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/set-night/greenqash/internal/domain"
)

const hasCompletion = `SELECT EXISTS (SELECT 1 FROM completion_records WHERE user_id = $1 AND task_id = $2)`

func (q *Queries) HasCompletion(ctx context.Context, userID, taskID uuid.UUID) (bool, error) {
	var exists bool
	if err := q.db.QueryRow(ctx, hasCompletion, userID, taskID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check completion: %w", mapError(err))
	}
	return exists, nil
}

// The primary key on (user_id, task_id) arbitrates concurrent inserts: the
// loser gets no row back and is reported as already claimed.
const insertCompletion = `INSERT INTO completion_records (user_id, task_id, status, reward_earned)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, task_id) DO NOTHING
RETURNING user_id, task_id, status, reward_earned, completed_at`

func (q *Queries) InsertCompletion(ctx context.Context, rec domain.CompletionRecord) (*domain.CompletionRecord, error) {
	out, err := scanCompletion(q.db.QueryRow(ctx, insertCompletion, rec.UserID, rec.TaskID, string(rec.Status), rec.RewardEarned))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err) {
			return nil, domain.ErrAlreadyClaimed
		}
		return nil, fmt.Errorf("insert completion: %w", mapError(err))
	}
	return &out, nil
}

const markCompletionClaimed = `UPDATE completion_records SET status = 'claimed'
WHERE user_id = $1 AND task_id = $2`

func (q *Queries) MarkCompletionClaimed(ctx context.Context, userID, taskID uuid.UUID) error {
	tag, err := q.db.Exec(ctx, markCompletionClaimed, userID, taskID)
	if err != nil {
		return fmt.Errorf("mark completion claimed: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark completion claimed: no record for user %s task %s", userID, taskID)
	}
	return nil
}

const listCompletions = `SELECT user_id, task_id, status, reward_earned, completed_at
FROM completion_records
WHERE user_id = $1
ORDER BY completed_at DESC`

func (q *Queries) ListCompletions(ctx context.Context, userID uuid.UUID) ([]domain.CompletionRecord, error) {
	rows, err := q.db.Query(ctx, listCompletions, userID)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", mapError(err))
	}
	defer rows.Close()

	var out []domain.CompletionRecord
	for rows.Next() {
		rec, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan completion: %w", mapError(err))
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list completions: %w", mapError(err))
	}
	return out, nil
}

func scanCompletion(row pgx.Row) (domain.CompletionRecord, error) {
	var (
		rec    domain.CompletionRecord
		status string
	)
	err := row.Scan(&rec.UserID, &rec.TaskID, &status, &rec.RewardEarned, &rec.CompletedAt)
	rec.Status = domain.CompletionStatus(status)
	return rec, err
}
