package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	// Storage
	StoreDriver  string        `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL  string        `env:"DATABASE_URL"`
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`

	// Redis is optional; without it the catalog is not cached and claims are not rate limited.
	RedisURL        string        `env:"REDIS_URL"`
	CatalogCacheTTL time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"30s"`
	CatalogStaleTTL time.Duration `env:"CATALOG_STALE_TTL" envDefault:"24h"`

	// HTTP API
	HTTPAddr  string `env:"HTTP_ADDR" envDefault:":3000"`
	JWTSecret string `env:"JWT_SECRET,required"`

	// Rewards (minor units)
	ReferralBonus int64 `env:"REFERRAL_BONUS" envDefault:"100"`
	SignupBonus   int64 `env:"SIGNUP_BONUS" envDefault:"0"`

	// Claims per user per ClaimRateWindow; 0 disables the limit.
	ClaimRateLimit int `env:"CLAIM_RATE_LIMIT" envDefault:"20"`

	// Telegram bot; disabled when BotToken is empty.
	BotToken           string  `env:"BOT_TOKEN"`
	AdminIDs           []int64 `env:"ADMIN_IDS" envSeparator:","`
	DropPendingUpdates bool    `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`

	// Telegram logging
	LogTelegramChatID    int64 `env:"LOG_TELEGRAM_CHAT_ID"`
	LogTopicError        int   `env:"LOG_TOPIC_ERROR"`
	LogTopicRegistration int   `env:"LOG_TOPIC_REGISTRATION"`
	LogTopicClaim        int   `env:"LOG_TOPIC_CLAIM"`
	LogTopicReferral     int   `env:"LOG_TOPIC_REFERRAL"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for store driver %q", c.StoreDriver)
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	if c.ReferralBonus < 0 || c.SignupBonus < 0 {
		return fmt.Errorf("bonus amounts must not be negative")
	}
	return nil
}

func (c *Config) BotEnabled() bool {
	return c.BotToken != ""
}

func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

func (c *Config) AdminIDsString() string {
	parts := make([]string, len(c.AdminIDs))
	for i, id := range c.AdminIDs {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ",")
}
