package handler

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/greenqash/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTasks(n int) []domain.Task {
	tasks := make([]domain.Task, n)
	for i := range tasks {
		tasks[i] = domain.Task{
			ID:           uuid.New(),
			Title:        fmt.Sprintf("Video_%d", i),
			URL:          "https://youtube.com/watch?v=" + fmt.Sprint(i),
			Platform:     domain.PlatformYouTube,
			RewardAmount: 250,
			IsActive:     true,
		}
	}
	return tasks
}

func TestRenderTaskPage(t *testing.T) {
	tasks := makeTasks(7)

	text, kb := renderTaskPage(tasks, 0)
	assert.Contains(t, text, `Video\_0`)
	assert.Contains(t, text, "2.50")
	assert.NotContains(t, text, "Video\\_5")
	// five task rows plus pagination
	require.Len(t, kb.InlineKeyboard, 6)
	assert.Equal(t, "claim_"+tasks[0].ID.String(), kb.InlineKeyboard[0][1].CallbackData)
	assert.Equal(t, tasks[0].URL, kb.InlineKeyboard[0][0].URL)

	text, kb = renderTaskPage(tasks, 1)
	assert.Contains(t, text, `Video\_5`)
	require.Len(t, kb.InlineKeyboard, 3)

	// clamped
	text2, _ := renderTaskPage(tasks, 99)
	assert.Equal(t, text, text2)
}

func TestRenderTaskPageSinglePage(t *testing.T) {
	_, kb := renderTaskPage(makeTasks(2), 0)
	assert.Len(t, kb.InlineKeyboard, 2)
}

func TestWithoutClaimed(t *testing.T) {
	tasks := makeTasks(3)
	history := []domain.CompletionRecord{{TaskID: tasks[1].ID}}

	open := withoutClaimed(tasks, history)
	require.Len(t, open, 2)
	assert.Equal(t, tasks[0].ID, open[0].ID)
	assert.Equal(t, tasks[2].ID, open[1].ID)
}

func TestClaimErrorText(t *testing.T) {
	pending := fmt.Errorf("%w: %w", domain.ErrCreditPending, domain.ErrStoreUnavailable)
	assert.Contains(t, claimErrorText(pending), "recorded")
	assert.Contains(t, claimErrorText(domain.ErrAlreadyClaimed), "already claimed")
	assert.Contains(t, claimErrorText(domain.ErrTaskInactive), "no longer")
	assert.Contains(t, claimErrorText(errors.New("boom")), "Something went wrong")
}

func TestRenderBalance(t *testing.T) {
	acc := domain.NewEarningsAccount(uuid.New())
	acc.ByCategory[domain.CategoryYouTube] = 250
	acc.ByCategory[domain.CategoryBonus] = 15
	acc.AllTimeTotal = 265

	text := renderBalance(acc)
	assert.Contains(t, text, "YouTube: 2.50")
	assert.Contains(t, text, "Bonus: 0.15")
	assert.Contains(t, text, "All-time total: *2.65*")
}

func TestRenderHistory(t *testing.T) {
	assert.Contains(t, renderHistory(nil, nil), "not claimed")

	claimed := domain.CompletionRecord{TaskID: uuid.New(), Status: domain.CompletionStatusClaimed, RewardEarned: 100, CompletedAt: time.Now()}
	pending := domain.CompletionRecord{TaskID: uuid.New(), Status: domain.CompletionStatusCompleted, RewardEarned: 50, CompletedAt: time.Now()}

	text := renderHistory([]domain.CompletionRecord{claimed, pending}, map[uuid.UUID]string{claimed.TaskID: "Quiz"})
	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[2], "✅ Quiz — 1.00")
	assert.Contains(t, lines[3], "⏳ Task "+pending.TaskID.String()[:8])
}

func TestClaimSuccessText(t *testing.T) {
	task := &domain.Task{Title: "Watch *this*"}
	result := &domain.ClaimResult{Category: domain.CategoryTikTok, RewardAmount: 100, NewCategoryTotal: 300, NewAllTimeTotal: 550}

	text := claimSuccessText(task, result)
	assert.Contains(t, text, `Watch \*this\*`)
	assert.Contains(t, text, "TikTok total: 3.00")
	assert.Contains(t, text, "*5.50*")
}
