package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/set-night/greenqash/internal/config"
	"github.com/set-night/greenqash/internal/domain"
	"github.com/set-night/greenqash/internal/middleware"
	tg "github.com/set-night/greenqash/internal/telegram"
)

var platformIcons = map[domain.Platform]string{
	domain.PlatformYouTube: "▶️",
	domain.PlatformTikTok:  "🎵",
	domain.PlatformTrivia:  "❓",
	domain.PlatformText:    "📝",
}

var categoryLabels = map[domain.Category]string{
	domain.CategoryYouTube:  "YouTube",
	domain.CategoryTikTok:   "TikTok",
	domain.CategoryTrivia:   "Trivia",
	domain.CategoryReferral: "Referrals",
	domain.CategoryBonus:    "Bonus",
}

func withoutClaimed(tasks []domain.Task, history []domain.CompletionRecord) []domain.Task {
	claimed := make(map[uuid.UUID]bool, len(history))
	for _, rec := range history {
		claimed[rec.TaskID] = true
	}

	open := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if !claimed[t.ID] {
			open = append(open, t)
		}
	}
	return open
}

// renderTaskPage renders one page of tasks with a claim button per task.
// Out-of-range pages are clamped.
func renderTaskPage(tasks []domain.Task, page int) (string, *models.InlineKeyboardMarkup) {
	totalPages := tg.PageCount(len(tasks), config.TasksPerPage)
	if page < 0 {
		page = 0
	}
	if page >= totalPages {
		page = totalPages - 1
	}

	start := page * config.TasksPerPage
	end := min(start+config.TasksPerPage, len(tasks))

	var sb strings.Builder
	sb.WriteString("📋 *Available tasks:*\n\n")

	var rows [][]models.InlineKeyboardButton
	for _, t := range tasks[start:end] {
		reward := domain.FormatAmount(t.RewardAmount)
		sb.WriteString(fmt.Sprintf("%s *%s* — %s\n", platformIcons[t.Platform], tg.EscapeMarkdown(t.Title), reward))

		row := tg.ButtonRow()
		if t.URL != "" {
			row = append(row, tg.URLButton("🔗 Open", t.URL))
		}
		row = append(row, tg.InlineButton("✅ Claim "+reward, middleware.ClaimCallbackPrefix+t.ID.String()))
		rows = append(rows, row)
	}

	if nav := tg.PaginationRow(page, totalPages, tasksPagePrefix); nav != nil {
		rows = append(rows, nav)
	}

	return sb.String(), tg.InlineKeyboard(rows...)
}

func claimSuccessText(task *domain.Task, result *domain.ClaimResult) string {
	return fmt.Sprintf(
		"✅ *%s* completed!\n\n"+
			"Reward: *%s*\n"+
			"%s total: %s\n"+
			"All-time earnings: *%s*",
		tg.EscapeMarkdown(task.Title),
		domain.FormatAmount(result.RewardAmount),
		categoryLabels[result.Category], domain.FormatAmount(result.NewCategoryTotal),
		domain.FormatAmount(result.NewAllTimeTotal),
	)
}

// claimErrorText is shown in the callback alert when a claim fails.
func claimErrorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrCreditPending):
		return "⏳ Your reward is recorded and will appear in your balance shortly."
	case errors.Is(err, domain.ErrAlreadyClaimed):
		return "You have already claimed this reward."
	case errors.Is(err, domain.ErrTaskNotFound):
		return "Task not found."
	case errors.Is(err, domain.ErrTaskInactive):
		return "This task is no longer available."
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "⚠️ Service is busy, please try again in a moment."
	default:
		return "❌ Something went wrong, please try again."
	}
}

func renderBalance(acc *domain.EarningsAccount) string {
	var sb strings.Builder
	sb.WriteString("💰 *Your earnings*\n\n")
	for _, c := range domain.Categories {
		sb.WriteString(fmt.Sprintf("%s: %s\n", categoryLabels[c], domain.FormatAmount(acc.ByCategory[c])))
	}
	sb.WriteString(fmt.Sprintf("\nAll-time total: *%s*", domain.FormatAmount(acc.AllTimeTotal)))
	return sb.String()
}

func renderHistory(history []domain.CompletionRecord, titles map[uuid.UUID]string) string {
	if len(history) == 0 {
		return "📜 You have not claimed any rewards yet. Try /tasks!"
	}

	var sb strings.Builder
	sb.WriteString("📜 *Claimed rewards*\n\n")
	for _, rec := range history {
		title, ok := titles[rec.TaskID]
		if !ok {
			title = "Task " + rec.TaskID.String()[:8]
		}
		mark := "✅"
		if rec.Status == domain.CompletionStatusCompleted {
			mark = "⏳"
		}
		sb.WriteString(fmt.Sprintf("%s %s — %s (%s)\n",
			mark, tg.EscapeMarkdown(title), domain.FormatAmount(rec.RewardEarned), rec.CompletedAt.Format("2006-01-02")))
	}
	return sb.String()
}
