package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is either a dashboard account (ID is the auth provider's subject) or
// a Telegram account, in which case TelegramID is set.
type User struct {
	ID           uuid.UUID
	TelegramID   *int64
	FirstName    string
	Username     string
	ReferralCode string
	ReferredByID *uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
