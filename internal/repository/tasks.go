package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/set-night/greenqash/internal/domain"
)

const taskColumns = `id, title, url, platform, reward_amount, is_active, created_at`

const listActiveTasks = `SELECT ` + taskColumns + `
FROM tasks
WHERE is_active AND ($1::text IS NULL OR platform = $1)
ORDER BY created_at DESC, id`

// ListActiveTasks returns active tasks newest-first, optionally for one platform.
func (q *Queries) ListActiveTasks(ctx context.Context, platform *domain.Platform) ([]domain.Task, error) {
	var filter *string
	if platform != nil {
		s := string(*platform)
		filter = &s
	}

	rows, err := q.db.Query(ctx, listActiveTasks, filter)
	if err != nil {
		return nil, fmt.Errorf("list active tasks: %w", mapError(err))
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", mapError(err))
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list active tasks: %w", mapError(err))
	}
	return tasks, nil
}

const getTask = `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

func (q *Queries) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	t, err := scanTask(q.db.QueryRow(ctx, getTask, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", mapError(err))
	}
	return &t, nil
}

func scanTask(row pgx.Row) (domain.Task, error) {
	var (
		t        domain.Task
		platform string
	)
	err := row.Scan(&t.ID, &t.Title, &t.URL, &platform, &t.RewardAmount, &t.IsActive, &t.CreatedAt)
	t.Platform = domain.Platform(platform)
	return t, err
}
