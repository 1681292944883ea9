package middleware

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/greenqash/internal/config"
)

// Logging returns middleware that logs every update with its processing
// time. Slow updates are logged at warn level.
func Logging() bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			start := time.Now()
			next(ctx, b, update)
			elapsed := time.Since(start)

			kind, action, telegramID := describeUpdate(update)
			level := slog.LevelDebug
			if elapsed > config.SlowUpdateThreshold {
				level = slog.LevelWarn
			}
			slog.Log(ctx, level, "update processed",
				"update_id", update.ID,
				"kind", kind,
				"action", action,
				"telegram_id", telegramID,
				"duration", elapsed,
			)
		}
	}
}

// describeUpdate returns the update kind, the command or callback action
// without its arguments, and the sender.
func describeUpdate(update *models.Update) (kind, action string, telegramID int64) {
	switch {
	case update.Message != nil:
		if update.Message.From != nil {
			telegramID = update.Message.From.ID
		}
		text := update.Message.Text
		if !strings.HasPrefix(text, "/") {
			return "message", "", telegramID
		}
		cmd, _, _ := strings.Cut(text, " ")
		cmd, _, _ = strings.Cut(cmd, "@")
		return "command", cmd, telegramID
	case update.CallbackQuery != nil:
		action, _, _ := strings.Cut(update.CallbackQuery.Data, "_")
		return "callback", action, update.CallbackQuery.From.ID
	default:
		return "other", "", 0
	}
}
