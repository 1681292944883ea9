// Package memory is an in-process store used for local development and
// tests. A single mutex stands in for the database: it provides the same
// per-pair uniqueness and atomic increments the Postgres schema enforces.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/greenqash/internal/domain"
)

type completionKey struct {
	userID uuid.UUID
	taskID uuid.UUID
}

type creditKey struct {
	userID uuid.UUID
	kind   domain.CreditKind
	ref    string
}

type Store struct {
	mu          sync.Mutex
	now         func() time.Time
	tasks       map[uuid.UUID]domain.Task
	completions map[completionKey]domain.CompletionRecord
	accounts    map[uuid.UUID]*domain.EarningsAccount
	credits     map[creditKey]domain.Credit
	users       map[uuid.UUID]domain.User
	nextCredit  int64
}

func New() *Store {
	return &Store{
		now:         time.Now,
		tasks:       make(map[uuid.UUID]domain.Task),
		completions: make(map[completionKey]domain.CompletionRecord),
		accounts:    make(map[uuid.UUID]*domain.EarningsAccount),
		credits:     make(map[creditKey]domain.Credit),
		users:       make(map[uuid.UUID]domain.User),
	}
}

// alive fails the same way a dead connection would when ctx is done.
func alive(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// PutTask inserts or replaces a task. Tasks are authored elsewhere; this is
// how dev seeding and tests populate the catalog.
func (s *Store) PutTask(t domain.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}
	s.tasks[t.ID] = t
}

func (s *Store) ListActiveTasks(ctx context.Context, platform *domain.Platform) ([]domain.Task, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Task
	for _, t := range s.tasks {
		if !t.IsActive {
			continue
		}
		if platform != nil && t.Platform != *platform {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &t, nil
}

func (s *Store) HasCompletion(ctx context.Context, userID, taskID uuid.UUID) (bool, error) {
	if err := alive(ctx); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.completions[completionKey{userID, taskID}]
	return ok, nil
}

func (s *Store) InsertCompletion(ctx context.Context, rec domain.CompletionRecord) (*domain.CompletionRecord, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := completionKey{rec.UserID, rec.TaskID}
	if _, ok := s.completions[key]; ok {
		return nil, domain.ErrAlreadyClaimed
	}
	rec.CompletedAt = s.now()
	s.completions[key] = rec
	return &rec, nil
}

func (s *Store) MarkCompletionClaimed(ctx context.Context, userID, taskID uuid.UUID) error {
	if err := alive(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := completionKey{userID, taskID}
	rec, ok := s.completions[key]
	if !ok {
		return fmt.Errorf("mark completion claimed: no record for user %s task %s", userID, taskID)
	}
	rec.Status = domain.CompletionStatusClaimed
	s.completions[key] = rec
	return nil
}

func (s *Store) ListCompletions(ctx context.Context, userID uuid.UUID) ([]domain.CompletionRecord, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.CompletionRecord
	for key, rec := range s.completions {
		if key.userID == userID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.After(out[j].CompletedAt) })
	return out, nil
}

func (s *Store) IncrementEarnings(ctx context.Context, userID uuid.UUID, category domain.Category, amount int64) (*domain.EarningsAccount, error) {
	if !category.Valid() {
		return nil, domain.ErrInvalidCategory
	}
	if err := alive(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[userID]
	if !ok {
		acc = domain.NewEarningsAccount(userID)
		s.accounts[userID] = acc
	}
	acc.ByCategory[category] += amount
	acc.AllTimeTotal += amount
	acc.UpdatedAt = s.now()
	return acc.Clone(), nil
}

func (s *Store) GetEarnings(ctx context.Context, userID uuid.UUID) (*domain.EarningsAccount, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if acc, ok := s.accounts[userID]; ok {
		return acc.Clone(), nil
	}
	return domain.NewEarningsAccount(userID), nil
}

func (s *Store) InsertCredit(ctx context.Context, c domain.Credit) (*domain.Credit, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := creditKey{c.UserID, c.Kind, c.Ref}
	if _, ok := s.credits[key]; ok {
		return nil, domain.ErrCreditExists
	}
	s.nextCredit++
	c.ID = s.nextCredit
	c.CreatedAt = s.now()
	s.credits[key] = c
	return &c, nil
}

func (s *Store) CreateUser(ctx context.Context, u domain.User) (*domain.User, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.ID == u.ID || existing.ReferralCode == u.ReferralCode ||
			(u.TelegramID != nil && existing.TelegramID != nil && *existing.TelegramID == *u.TelegramID) {
			return nil, fmt.Errorf("create user: %w", domain.ErrUserExists)
		}
	}
	u.CreatedAt = s.now()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = u
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.findUser(ctx, func(u domain.User) bool { return u.ID == id })
}

func (s *Store) GetUserByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	return s.findUser(ctx, func(u domain.User) bool { return u.TelegramID != nil && *u.TelegramID == telegramID })
}

func (s *Store) GetUserByReferralCode(ctx context.Context, code string) (*domain.User, error) {
	return s.findUser(ctx, func(u domain.User) bool { return u.ReferralCode == code })
}

func (s *Store) findUser(ctx context.Context, match func(domain.User) bool) (*domain.User, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *Store) SetReferrer(ctx context.Context, userID, referrerID uuid.UUID) error {
	if err := alive(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if u.ReferredByID != nil {
		return domain.ErrReferralAlreadySet
	}
	u.ReferredByID = &referrerID
	u.UpdatedAt = s.now()
	s.users[userID] = u
	return nil
}

func (s *Store) UpdateUserInfo(ctx context.Context, id uuid.UUID, firstName, username string) error {
	if err := alive(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.FirstName = firstName
	u.Username = username
	u.UpdatedAt = s.now()
	s.users[id] = u
	return nil
}
