package config

import "time"

const (
	// Claim rate limit window
	ClaimRateWindow = time.Minute

	// Store read retries
	ReadRetryInitial  = 100 * time.Millisecond
	ReadRetryMax      = 2 * time.Second
	ReadRetryAttempts = 4

	// Telegram
	MaxTelegramMessageLen = 4096
	SlowUpdateThreshold   = 2 * time.Second

	// Tasks shown per bot page
	TasksPerPage = 5

	// HTTP server
	ReadHeaderTimeout = 10 * time.Second
	ShutdownTimeout   = 15 * time.Second

	// Redis key prefix
	RedisKeyPrefix = "greenqash:"
)
