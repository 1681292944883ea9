package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/set-night/greenqash/internal/config"
	"github.com/set-night/greenqash/internal/domain"
)

// TelegramLogger mirrors notable events into forum topics of an admin chat.
// A nil logger or an unset chat disables it.
type TelegramLogger struct {
	bot *bot.Bot
	cfg *config.Config
}

func NewTelegramLogger(b *bot.Bot, cfg *config.Config) *TelegramLogger {
	return &TelegramLogger{bot: b, cfg: cfg}
}

type LogType string

const (
	LogTypeError        LogType = "error"
	LogTypeRegistration LogType = "registration"
	LogTypeClaim        LogType = "claim"
	LogTypeReferral     LogType = "referral"
)

func (l *TelegramLogger) Log(logType LogType, message string) {
	if l == nil || l.bot == nil || l.cfg.LogTelegramChatID == 0 {
		return
	}

	topicID := l.topicID(logType)
	if topicID == 0 {
		return
	}

	if len([]rune(message)) > config.MaxTelegramMessageLen {
		message = string([]rune(message)[:config.MaxTelegramMessageLen-20]) + "\n\n... (truncated)"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := l.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          l.cfg.LogTelegramChatID,
		Text:            message,
		ParseMode:       "Markdown",
		MessageThreadID: topicID,
	})
	if err != nil {
		slog.Error("failed to send telegram log", "type", logType, "error", err)
	}
}

func (l *TelegramLogger) LogError(err error, context string) {
	msg := fmt.Sprintf("❌ *Error*\n\n*Context:* %s\n*Error:* `%s`\n*Time:* %s",
		context, err.Error(), time.Now().Format("2006-01-02 15:04:05"))
	l.Log(LogTypeError, msg)
}

func (l *TelegramLogger) LogRegistration(telegramID int64, name, username string, referred bool) {
	msg := fmt.Sprintf("👤 *New Registration*\n\n*ID:* `%d`\n*Name:* %s\n*Username:* @%s",
		telegramID, EscapeMarkdown(name), EscapeMarkdown(username))
	if referred {
		msg += "\n*Referred:* yes"
	}
	l.Log(LogTypeRegistration, msg)
}

func (l *TelegramLogger) LogClaim(user *domain.User, task *domain.Task, result *domain.ClaimResult) {
	msg := fmt.Sprintf("💰 *Reward Claimed*\n\n*User:* `%s`\n*Task:* %s\n*Category:* %s\n*Reward:* %s\n*All-time:* %s",
		user.ID, EscapeMarkdown(task.Title), result.Category,
		domain.FormatAmount(result.RewardAmount), domain.FormatAmount(result.NewAllTimeTotal))
	l.Log(LogTypeClaim, msg)
}

func (l *TelegramLogger) LogReferral(referee, referrer *domain.User) {
	msg := fmt.Sprintf("👥 *Referral*\n\n*User:* `%s`\n*Referrer:* `%s` (%s)",
		referee.ID, referrer.ID, referrer.ReferralCode)
	l.Log(LogTypeReferral, msg)
}

func (l *TelegramLogger) topicID(logType LogType) int {
	switch logType {
	case LogTypeError:
		return l.cfg.LogTopicError
	case LogTypeRegistration:
		return l.cfg.LogTopicRegistration
	case LogTypeClaim:
		return l.cfg.LogTopicClaim
	case LogTypeReferral:
		return l.cfg.LogTopicReferral
	default:
		return 0
	}
}
