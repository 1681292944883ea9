package handler

import (
	"github.com/go-telegram/bot"
	"github.com/set-night/greenqash/internal/config"
	"github.com/set-night/greenqash/internal/service"
	"github.com/set-night/greenqash/internal/telegram"
)

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot         *bot.Bot
	cfg         *config.Config
	users       *service.UserService
	catalog     *service.CatalogService
	ledger      *service.LedgerService
	earnings    *service.EarningsService
	claims      *service.ClaimService
	referrals   *service.ReferralService
	tgLogger    *telegram.TelegramLogger
	botUsername string
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot         *bot.Bot
	Cfg         *config.Config
	Users       *service.UserService
	Catalog     *service.CatalogService
	Ledger      *service.LedgerService
	Earnings    *service.EarningsService
	Claims      *service.ClaimService
	Referrals   *service.ReferralService
	TgLogger    *telegram.TelegramLogger
	BotUsername string
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:         deps.Bot,
		cfg:         deps.Cfg,
		users:       deps.Users,
		catalog:     deps.Catalog,
		ledger:      deps.Ledger,
		earnings:    deps.Earnings,
		claims:      deps.Claims,
		referrals:   deps.Referrals,
		tgLogger:    deps.TgLogger,
		botUsername: deps.BotUsername,
	}
}
