package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/greenqash/internal/domain"
	tg "github.com/set-night/greenqash/internal/telegram"
)

// handleWhois shows a user's earnings to admins: /whois <telegram_id>.
func (h *Handler) handleWhois(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	if !h.cfg.IsAdmin(update.Message.From.ID) {
		return
	}

	chatID := update.Message.Chat.ID

	parts := strings.Fields(update.Message.Text)
	if len(parts) < 2 {
		tg.ReplyMarkdown(ctx, b, chatID, "Usage: /whois <telegram\\_id>", nil)
		return
	}

	telegramID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		tg.ReplyMarkdown(ctx, b, chatID, "❌ Invalid Telegram ID.", nil)
		return
	}

	user, err := h.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			tg.ReplyMarkdown(ctx, b, chatID, "❌ User not found.", nil)
			return
		}
		slog.Error("whois lookup", "error", err)
		return
	}

	acc, err := h.earnings.Account(ctx, user.ID)
	if err != nil {
		slog.Error("whois earnings", "error", err)
		return
	}

	text := fmt.Sprintf("👤 *%s* (`%s`)\nCode: `%s`\n\n%s",
		tg.EscapeMarkdown(user.FirstName), user.ID, user.ReferralCode, renderBalance(acc))
	tg.ReplyMarkdown(ctx, b, chatID, text, nil)
}
