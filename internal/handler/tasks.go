package handler

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/set-night/greenqash/internal/domain"
	"github.com/set-night/greenqash/internal/middleware"
	"github.com/set-night/greenqash/internal/service"
	tg "github.com/set-night/greenqash/internal/telegram"
)

// openTasks lists active tasks the user has not claimed yet.
func (h *Handler) openTasks(ctx context.Context, user *domain.User) ([]domain.Task, error) {
	tasks, err := h.catalog.ListActiveTasks(ctx, nil)
	if err != nil {
		return nil, err
	}

	history, err := h.ledger.History(ctx, user.ID)
	if err != nil {
		slog.Warn("completion history unavailable", "error", err, "user_id", user.ID)
		return tasks, nil
	}
	return withoutClaimed(tasks, history), nil
}

func (h *Handler) handleTasks(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	chatID := update.Message.Chat.ID

	tasks, err := h.openTasks(ctx, user)
	if err != nil {
		slog.Error("list tasks", "error", err)
		tg.ReplyMarkdown(ctx, b, chatID, "⚠️ Tasks are temporarily unavailable. Please try again later.", nil)
		return
	}

	if len(tasks) == 0 {
		tg.ReplyMarkdown(ctx, b, chatID, "📋 No tasks available right now.", nil)
		return
	}

	text, keyboard := renderTaskPage(tasks, 0)
	tg.ReplyMarkdown(ctx, b, chatID, text, keyboard)
}

func (h *Handler) handleTasksPage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: update.CallbackQuery.ID})

	user := middleware.GetUser(ctx)
	msg := update.CallbackQuery.Message.Message
	if user == nil || msg == nil {
		return
	}

	page, err := strconv.Atoi(strings.TrimPrefix(update.CallbackQuery.Data, tasksPagePrefix))
	if err != nil {
		return
	}

	tasks, err := h.openTasks(ctx, user)
	if err != nil || len(tasks) == 0 {
		return
	}

	text, keyboard := renderTaskPage(tasks, page)
	_, err = b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.ID,
		Text:        text,
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: keyboard,
	})
	if err != nil {
		slog.Warn("edit tasks page", "error", err)
	}
}

func (h *Handler) handleClaim(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	taskID, err := uuid.Parse(strings.TrimPrefix(update.CallbackQuery.Data, middleware.ClaimCallbackPrefix))
	if err != nil {
		return
	}

	result, err := h.claims.ClaimReward(ctx, user.ID, taskID)
	if err != nil {
		if !service.IsExpected(err) {
			slog.Error("claim reward", "error", err, "user_id", user.ID, "task_id", taskID)
			if !errors.Is(err, domain.ErrCreditPending) {
				h.tgLogger.LogError(err, "claim "+taskID.String())
			}
		}
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
			Text:            claimErrorText(err),
			ShowAlert:       true,
		})
		return
	}

	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: update.CallbackQuery.ID})

	task, err := h.catalog.GetTask(ctx, taskID)
	if err != nil {
		task = &domain.Task{ID: taskID, Title: "task"}
	}

	if chatID := tg.ChatIDOf(update); chatID != 0 {
		tg.ReplyMarkdown(ctx, b, chatID, claimSuccessText(task, result), nil)
	}
	h.tgLogger.LogClaim(user, task, result)
}
