package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/greenqash/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListActiveTasks(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	older := domain.Task{ID: uuid.New(), Platform: domain.PlatformYouTube, IsActive: true, CreatedAt: base}
	newer := domain.Task{ID: uuid.New(), Platform: domain.PlatformTikTok, IsActive: true, CreatedAt: base.Add(time.Hour)}
	hidden := domain.Task{ID: uuid.New(), Platform: domain.PlatformYouTube, IsActive: false, CreatedAt: base.Add(2 * time.Hour)}
	s.PutTask(older)
	s.PutTask(newer)
	s.PutTask(hidden)

	tasks, err := s.ListActiveTasks(ctx, nil)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, newer.ID, tasks[0].ID)
	assert.Equal(t, older.ID, tasks[1].ID)

	yt := domain.PlatformYouTube
	tasks, err = s.ListActiveTasks(ctx, &yt)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, older.ID, tasks[0].ID)

	_, err = s.GetTask(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestInsertCompletionIsUniquePerPair(t *testing.T) {
	s := New()
	ctx := context.Background()
	rec := domain.CompletionRecord{UserID: uuid.New(), TaskID: uuid.New(), Status: domain.CompletionStatusCompleted, RewardEarned: 10}

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.InsertCompletion(ctx, rec); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, domain.ErrAlreadyClaimed)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)

	require.NoError(t, s.MarkCompletionClaimed(ctx, rec.UserID, rec.TaskID))
	history, err := s.ListCompletions(ctx, rec.UserID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.CompletionStatusClaimed, history[0].Status)

	assert.Error(t, s.MarkCompletionClaimed(ctx, rec.UserID, uuid.New()))
}

func TestIncrementEarningsKeepsTotal(t *testing.T) {
	s := New()
	ctx := context.Background()
	userID := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.IncrementEarnings(ctx, userID, domain.Categories[i%len(domain.Categories)], 3)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	acc, err := s.GetEarnings(ctx, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 150, acc.AllTimeTotal)
	assert.True(t, acc.Consistent())

	_, err = s.IncrementEarnings(ctx, userID, domain.Category("gambling"), 1)
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)
}

func TestReturnedAccountIsACopy(t *testing.T) {
	s := New()
	ctx := context.Background()
	userID := uuid.New()

	acc, err := s.IncrementEarnings(ctx, userID, domain.CategoryTrivia, 5)
	require.NoError(t, err)
	acc.ByCategory[domain.CategoryTrivia] = 1000

	again, err := s.GetEarnings(ctx, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, again.ByCategory[domain.CategoryTrivia])
}

func TestInsertCreditIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()
	c := domain.Credit{UserID: uuid.New(), Kind: domain.CreditKindReferral, Ref: "u1", Amount: 100}

	first, err := s.InsertCredit(ctx, c)
	require.NoError(t, err)
	assert.NotZero(t, first.ID)

	_, err = s.InsertCredit(ctx, c)
	assert.ErrorIs(t, err, domain.ErrCreditExists)

	c.Ref = "u2"
	_, err = s.InsertCredit(ctx, c)
	assert.NoError(t, err)
}

func TestUsers(t *testing.T) {
	s := New()
	ctx := context.Background()
	tgID := int64(42)

	u, err := s.CreateUser(ctx, domain.User{ID: uuid.New(), TelegramID: &tgID, ReferralCode: "ABC234"})
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, domain.User{ID: uuid.New(), ReferralCode: "ABC234"})
	assert.ErrorIs(t, err, domain.ErrUserExists)

	got, err := s.GetUserByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	referrer, err := s.CreateUser(ctx, domain.User{ID: uuid.New(), ReferralCode: "XYZ789"})
	require.NoError(t, err)

	require.NoError(t, s.SetReferrer(ctx, u.ID, referrer.ID))
	assert.ErrorIs(t, s.SetReferrer(ctx, u.ID, referrer.ID), domain.ErrReferralAlreadySet)
	assert.ErrorIs(t, s.SetReferrer(ctx, uuid.New(), referrer.ID), domain.ErrUserNotFound)

	require.NoError(t, s.UpdateUserInfo(ctx, u.ID, "Ann", "ann"))
	got, err = s.GetUserByReferralCode(ctx, "ABC234")
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.FirstName)
	require.NotNil(t, got.ReferredByID)
	assert.Equal(t, referrer.ID, *got.ReferredByID)
}

func TestCancelledContextLooksUnavailable(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ListActiveTasks(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
}
