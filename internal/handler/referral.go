package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/greenqash/internal/domain"
	"github.com/set-night/greenqash/internal/middleware"
	tg "github.com/set-night/greenqash/internal/telegram"
)

func (h *Handler) referralLink(code string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s%s", h.botUsername, middleware.ReferralPayloadPrefix, code)
}

func (h *Handler) handleReferral(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	chatID := update.Message.Chat.ID

	referralEarned := "0.00"
	if acc, err := h.earnings.Account(ctx, user.ID); err == nil {
		referralEarned = domain.FormatAmount(acc.ByCategory[domain.CategoryReferral])
	} else {
		slog.Warn("get earnings for referral", "error", err, "user_id", user.ID)
	}

	text := fmt.Sprintf(
		"👥 *Referral program*\n\n"+
			"Your referral link:\n`%s`\n\n"+
			"Your code: `%s`\n"+
			"💰 Earned from referrals: *%s*\n\n"+
			"You get a bonus for every friend who joins with your link!",
		h.referralLink(user.ReferralCode),
		user.ReferralCode,
		referralEarned,
	)

	tg.ReplyMarkdown(ctx, b, chatID, text, nil)
}

// handleCode applies a referral code typed by hand: /code ABC234.
func (h *Handler) handleCode(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	chatID := update.Message.Chat.ID

	parts := strings.Fields(update.Message.Text)
	if len(parts) < 2 {
		tg.ReplyMarkdown(ctx, b, chatID, "Usage: /code CODE", nil)
		return
	}

	referrer, err := h.referrals.Apply(ctx, user, parts[1])
	switch {
	case err == nil:
		tg.ReplyMarkdown(ctx, b, chatID, "✅ Referral code applied!", nil)
		h.tgLogger.LogReferral(user, referrer)
	case errors.Is(err, domain.ErrReferralInvalid):
		tg.ReplyMarkdown(ctx, b, chatID, "❌ This referral code is not valid.", nil)
	case errors.Is(err, domain.ErrReferralAlreadySet):
		tg.ReplyMarkdown(ctx, b, chatID, "ℹ️ You have already used a referral code.", nil)
	default:
		slog.Error("apply referral", "error", err, "user_id", user.ID)
		tg.ReplyMarkdown(ctx, b, chatID, "⚠️ Could not apply the code, please try again later.", nil)
	}
}
