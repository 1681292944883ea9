package middleware

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/greenqash/internal/domain"
	"github.com/set-night/greenqash/internal/service"
	"github.com/set-night/greenqash/internal/telegram"
)

type ctxKey string

const UserKey ctxKey = "user"

// ReferralPayloadPrefix prefixes the referral code in /start deep links.
const ReferralPayloadPrefix = "r_"

// GetUser extracts user from context.
func GetUser(ctx context.Context) *domain.User {
	u, ok := ctx.Value(UserKey).(*domain.User)
	if !ok {
		return nil
	}
	return u
}

// WithUser stores user in ctx.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// ReferralCodeFromStart returns the referral code carried by a
// "/start r_CODE" deep link, or "".
func ReferralCodeFromStart(text string) string {
	parts := strings.SplitN(text, " ", 2)
	if len(parts) < 2 || parts[0] != "/start" && !strings.HasPrefix(parts[0], "/start@") {
		return ""
	}
	payload := strings.TrimSpace(parts[1])
	if !strings.HasPrefix(payload, ReferralPayloadPrefix) {
		return ""
	}
	return strings.TrimPrefix(payload, ReferralPayloadPrefix)
}

// UserLoader returns middleware that loads (or registers) the sender into
// context. Only private chats are served.
func UserLoader(userService *service.UserService, tgLogger *telegram.TelegramLogger) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			var from *models.User
			var referralCode string

			if update.Message != nil {
				if update.Message.Chat.Type != "private" {
					return
				}
				from = update.Message.From
				referralCode = ReferralCodeFromStart(update.Message.Text)
			} else if update.CallbackQuery != nil {
				from = &update.CallbackQuery.From
			}

			if from == nil {
				next(ctx, b, update)
				return
			}

			user, created, err := userService.FindOrCreateTelegram(ctx, from.ID, from.FirstName, from.Username, referralCode)
			if err != nil {
				slog.Error("load telegram user", "error", err, "telegram_id", from.ID)
				next(ctx, b, update)
				return
			}

			if created {
				tgLogger.LogRegistration(from.ID, from.FirstName, from.Username, user.ReferredByID != nil)
			} else if user.FirstName != from.FirstName || user.Username != from.Username {
				if err := userService.UpdateInfo(ctx, user.ID, from.FirstName, from.Username); err != nil {
					slog.Warn("update user info", "error", err, "user_id", user.ID)
				}
			}

			next(WithUser(ctx, user), b, update)
		}
	}
}
