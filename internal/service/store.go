package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/set-night/greenqash/internal/domain"
)

// TaskStore reads the task catalog.
type TaskStore interface {
	ListActiveTasks(ctx context.Context, platform *domain.Platform) ([]domain.Task, error)
	GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)
}

// CompletionStore must reject a second InsertCompletion for the same
// (user, task) pair with domain.ErrAlreadyClaimed, atomically.
type CompletionStore interface {
	HasCompletion(ctx context.Context, userID, taskID uuid.UUID) (bool, error)
	InsertCompletion(ctx context.Context, rec domain.CompletionRecord) (*domain.CompletionRecord, error)
	MarkCompletionClaimed(ctx context.Context, userID, taskID uuid.UUID) error
	ListCompletions(ctx context.Context, userID uuid.UUID) ([]domain.CompletionRecord, error)
}

// EarningsStore must apply IncrementEarnings as one atomic update.
type EarningsStore interface {
	IncrementEarnings(ctx context.Context, userID uuid.UUID, category domain.Category, amount int64) (*domain.EarningsAccount, error)
	GetEarnings(ctx context.Context, userID uuid.UUID) (*domain.EarningsAccount, error)
}

// CreditStore must reject a duplicate (user, kind, ref) with domain.ErrCreditExists.
type CreditStore interface {
	InsertCredit(ctx context.Context, c domain.Credit) (*domain.Credit, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, u domain.User) (*domain.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	GetUserByReferralCode(ctx context.Context, code string) (*domain.User, error)
	SetReferrer(ctx context.Context, userID, referrerID uuid.UUID) error
	UpdateUserInfo(ctx context.Context, id uuid.UUID, firstName, username string) error
}

// Store is everything the services need from persistence. Both
// repository.Queries and memory.Store implement it.
type Store interface {
	TaskStore
	CompletionStore
	EarningsStore
	CreditStore
	UserStore
}

// CatalogCache is a best-effort cache of catalog listings. LoadStale returns
// the last listing stored under key regardless of freshness.
type CatalogCache interface {
	Load(ctx context.Context, key string) ([]domain.Task, bool, error)
	LoadStale(ctx context.Context, key string) ([]domain.Task, bool, error)
	Save(ctx context.Context, key string, tasks []domain.Task) error
}
