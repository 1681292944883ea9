package middleware

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Limiter counts hits per key within a window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// ClaimCallbackPrefix marks inline-button callbacks that claim a reward.
const ClaimCallbackPrefix = "claim_"

// RateLimit returns middleware that throttles claim button presses per
// Telegram user. Other updates pass through untouched.
func RateLimit(limiter Limiter) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			cq := update.CallbackQuery
			if limiter == nil || cq == nil || !strings.HasPrefix(cq.Data, ClaimCallbackPrefix) {
				next(ctx, b, update)
				return
			}

			ok, err := limiter.Allow(ctx, "claim:tg:"+strconv.FormatInt(cq.From.ID, 10))
			if err != nil {
				slog.Warn("rate limit check failed", "error", err, "telegram_id", cq.From.ID)
				next(ctx, b, update)
				return
			}

			if !ok {
				slog.Debug("rate limited", "telegram_id", cq.From.ID)
				b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
					CallbackQueryID: cq.ID,
					Text:            "⏳ Too many attempts. Please wait a moment.",
					ShowAlert:       true,
				})
				return
			}

			next(ctx, b, update)
		}
	}
}
