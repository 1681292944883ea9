package handler

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/greenqash/internal/middleware"
	tg "github.com/set-night/greenqash/internal/telegram"
)

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	// A referral deep link is applied by UserLoader when the user is created.
	welcome := fmt.Sprintf(
		"👋 Hi, *%s*!\n\n"+
			"Watch videos, answer trivia and invite friends to earn rewards.\n\n"+
			"📋 *Commands:*\n"+
			"/tasks — Available tasks\n"+
			"/balance — Your earnings\n"+
			"/history — Claimed rewards\n"+
			"/referral — Invite friends\n"+
			"/code — Enter a friend's referral code",
		tg.EscapeMarkdown(user.FirstName),
	)

	tg.ReplyMarkdown(ctx, b, update.Message.Chat.ID, welcome, nil)
}
