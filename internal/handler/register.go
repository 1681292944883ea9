package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/greenqash/internal/middleware"
)

const tasksPagePrefix = "tasks_page_"

// Register registers all command and callback handlers on the bot.
func (h *Handler) Register() {
	// Commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/tasks", bot.MatchTypePrefix, h.handleTasks)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/balance", bot.MatchTypePrefix, h.handleBalance)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/history", bot.MatchTypePrefix, h.handleHistory)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/referral", bot.MatchTypePrefix, h.handleReferral)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/code", bot.MatchTypePrefix, h.handleCode)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/whois", bot.MatchTypePrefix, h.handleWhois)

	// Task callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, middleware.ClaimCallbackPrefix, bot.MatchTypePrefix, h.handleClaim)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, tasksPagePrefix, bot.MatchTypePrefix, h.handleTasksPage)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "cur", bot.MatchTypeExact, h.handleNoop)
}

func (h *Handler) handleNoop(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery != nil {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: update.CallbackQuery.ID})
	}
}
