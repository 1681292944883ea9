package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-telegram/bot"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	greenqash "github.com/set-night/greenqash"
	"github.com/set-night/greenqash/internal/api"
	"github.com/set-night/greenqash/internal/auth"
	"github.com/set-night/greenqash/internal/cache"
	"github.com/set-night/greenqash/internal/config"
	"github.com/set-night/greenqash/internal/domain"
	"github.com/set-night/greenqash/internal/handler"
	"github.com/set-night/greenqash/internal/middleware"
	"github.com/set-night/greenqash/internal/repository"
	"github.com/set-night/greenqash/internal/repository/memory"
	"github.com/set-night/greenqash/internal/service"
	"github.com/set-night/greenqash/internal/telegram"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// Optional Redis: catalog cache and claim rate limiting
	var (
		catalogCache service.CatalogCache
		limiter      *cache.RateLimiter
		redisClient  *redis.Client
	)
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewClient(ctx, cfg.RedisURL, cfg.StoreTimeout)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()

		catalogCache = cache.NewCatalogCache(redisClient, config.RedisKeyPrefix, cfg.CatalogCacheTTL, cfg.CatalogStaleTTL)
		limiter = cache.NewRateLimiter(redisClient, config.RedisKeyPrefix, cfg.ClaimRateLimit, config.ClaimRateWindow)
	} else {
		slog.Warn("REDIS_URL not set, catalog cache and claim rate limiting disabled")
	}

	// Initialize services
	retry := service.DefaultRetryPolicy()
	catalogService := service.NewCatalogService(store, catalogCache, retry)
	ledgerService := service.NewLedgerService(store, retry)
	earningsService := service.NewEarningsService(store, retry)
	creditService := service.NewCreditService(store, earningsService)
	referralService := service.NewReferralService(store, creditService, cfg.ReferralBonus)
	userService := service.NewUserService(store, referralService, creditService, cfg.SignupBonus)
	claimService := service.NewClaimService(catalogService, ledgerService, earningsService, cfg.StoreTimeout)

	deps := api.Deps{
		Users:     userService,
		Catalog:   catalogService,
		Ledger:    ledgerService,
		Earnings:  earningsService,
		Claims:    claimService,
		Referrals: referralService,
		Verifier:  auth.NewVerifier(cfg.JWTSecret),
		Logger:    logger,
	}
	if limiter != nil {
		deps.Limiter = limiter
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("starting http server", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	if cfg.BotEnabled() {
		b, err := startBot(ctx, cfg, handler.Deps{
			Users:     userService,
			Catalog:   catalogService,
			Ledger:    ledgerService,
			Earnings:  earningsService,
			Claims:    claimService,
			Referrals: referralService,
		}, userService, limiter)
		if err != nil {
			slog.Error("failed to start bot", "error", err)
			os.Exit(1)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Start(ctx)
			slog.Info("bot stopped gracefully")
		}()
	} else {
		slog.Info("BOT_TOKEN not set, telegram bot disabled")
	}

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown", "error", err)
	}

	wg.Wait()
	slog.Info("server stopped gracefully")
}

// openStore returns the configured persistence backend and its closer.
func openStore(ctx context.Context, cfg *config.Config) (service.Store, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		slog.Warn("using in-memory store, data is lost on restart")
		store := memory.New()
		seedDemoTasks(store)
		return store, func() {}, nil
	}

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL, cfg.StoreTimeout)
	if err != nil {
		return nil, nil, err
	}

	// Run migrations
	migrationsFS, err := fs.Sub(greenqash.MigrationsFS, "migrations")
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		pool.Close()
		return nil, nil, err
	}

	return repository.New(pool), pool.Close, nil
}

func startBot(ctx context.Context, cfg *config.Config, deps handler.Deps, users *service.UserService, limiter *cache.RateLimiter) (*bot.Bot, error) {
	var claimLimiter middleware.Limiter
	if limiter != nil {
		claimLimiter = limiter
	}

	// The logger needs the bot and the bot's middlewares need the logger.
	tgLogger := telegram.NewTelegramLogger(nil, cfg)

	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(tgLogger),
			middleware.Logging(),
			middleware.RateLimit(claimLimiter),
			middleware.UserLoader(users, tgLogger),
		),
	}
	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		return nil, err
	}
	*tgLogger = *telegram.NewTelegramLogger(b, cfg)

	if cfg.DropPendingUpdates {
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
			slog.Warn("failed to drop pending updates", "error", err)
		}
	}

	// Get bot info
	me, err := b.GetMe(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("bot info retrieved", "id", me.ID, "username", me.Username, "admins", cfg.AdminIDsString())

	deps.Bot = b
	deps.Cfg = cfg
	deps.TgLogger = tgLogger
	deps.BotUsername = me.Username
	handler.New(deps).Register()

	return b, nil
}

func seedDemoTasks(store *memory.Store) {
	now := time.Now()
	demo := []domain.Task{
		{Title: "Intro to GreenQash", URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", Platform: domain.PlatformYouTube, RewardAmount: 250},
		{Title: "Daily dance challenge", URL: "https://www.tiktok.com/@greenqash", Platform: domain.PlatformTikTok, RewardAmount: 150},
		{Title: "Crypto basics quiz", Platform: domain.PlatformTrivia, RewardAmount: 50},
		{Title: "Read the saving tips", Platform: domain.PlatformText, RewardAmount: 15},
	}
	for i, t := range demo {
		t.ID = uuid.New()
		t.IsActive = true
		t.CreatedAt = now.Add(-time.Duration(i) * time.Minute)
		store.PutTask(t)
	}
}
