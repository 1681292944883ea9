package handler

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/set-night/greenqash/internal/middleware"
	tg "github.com/set-night/greenqash/internal/telegram"
)

func (h *Handler) handleBalance(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	chatID := update.Message.Chat.ID

	acc, err := h.earnings.Account(ctx, user.ID)
	if err != nil {
		slog.Error("get earnings", "error", err, "user_id", user.ID)
		tg.ReplyMarkdown(ctx, b, chatID, "⚠️ Balance is temporarily unavailable.", nil)
		return
	}

	tg.ReplyMarkdown(ctx, b, chatID, renderBalance(acc), nil)
}

func (h *Handler) handleHistory(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	chatID := update.Message.Chat.ID

	history, err := h.ledger.History(ctx, user.ID)
	if err != nil {
		slog.Error("get history", "error", err, "user_id", user.ID)
		tg.ReplyMarkdown(ctx, b, chatID, "⚠️ History is temporarily unavailable.", nil)
		return
	}

	titles := make(map[uuid.UUID]string, len(history))
	for _, rec := range history {
		if task, err := h.catalog.GetTask(ctx, rec.TaskID); err == nil {
			titles[rec.TaskID] = task.Title
		}
	}

	if err := tg.SendLongMessage(ctx, b, chatID, renderHistory(history, titles)); err != nil {
		slog.Error("send history", "error", err)
	}
}
