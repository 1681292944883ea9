package domain

import (
	"time"

	"github.com/google/uuid"
)

type CompletionStatus string

const (
	// CompletionStatusCompleted marks a ledger entry whose earnings credit
	// has not been confirmed yet.
	CompletionStatusCompleted CompletionStatus = "completed"
	CompletionStatusClaimed   CompletionStatus = "claimed"
)

// CompletionRecord is the ledger entry for one (user, task) pair. At most one
// exists per pair. RewardEarned is copied from the task at claim time.
type CompletionRecord struct {
	UserID       uuid.UUID
	TaskID       uuid.UUID
	Status       CompletionStatus
	RewardEarned int64
	CompletedAt  time.Time
}

// ClaimResult is returned to the UI after a successful claim.
type ClaimResult struct {
	TaskID           uuid.UUID `json:"task_id"`
	Category         Category  `json:"category"`
	RewardAmount     int64     `json:"reward_amount"`
	NewCategoryTotal int64     `json:"new_category_total"`
	NewAllTimeTotal  int64     `json:"new_all_time_total"`
}
