package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category is an earnings bucket. The set is closed.
type Category string

const (
	CategoryYouTube  Category = "youtube"
	CategoryTikTok   Category = "tiktok"
	CategoryTrivia   Category = "trivia"
	CategoryReferral Category = "referral"
	CategoryBonus    Category = "bonus"
)

var Categories = []Category{CategoryYouTube, CategoryTikTok, CategoryTrivia, CategoryReferral, CategoryBonus}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// CategoryOf maps a task platform to the bucket its reward is credited to.
// Text tasks have no dedicated bucket and pay into bonus.
func CategoryOf(p Platform) Category {
	switch p {
	case PlatformYouTube:
		return CategoryYouTube
	case PlatformTikTok:
		return CategoryTikTok
	case PlatformTrivia:
		return CategoryTrivia
	default:
		return CategoryBonus
	}
}

// EarningsAccount holds per-user running totals. AllTimeTotal always equals
// the sum of ByCategory.
type EarningsAccount struct {
	UserID       uuid.UUID
	ByCategory   map[Category]int64
	AllTimeTotal int64
	UpdatedAt    time.Time
}

// NewEarningsAccount returns a zeroed account with every category present.
func NewEarningsAccount(userID uuid.UUID) *EarningsAccount {
	acc := &EarningsAccount{UserID: userID, ByCategory: make(map[Category]int64, len(Categories))}
	for _, c := range Categories {
		acc.ByCategory[c] = 0
	}
	return acc
}

func (a *EarningsAccount) CategorySum() int64 {
	var sum int64
	for _, v := range a.ByCategory {
		sum += v
	}
	return sum
}

// Consistent reports whether the all-time total matches the category sum.
func (a *EarningsAccount) Consistent() bool {
	return a.AllTimeTotal == a.CategorySum()
}

// Clone returns a deep copy safe to hand out to callers.
func (a *EarningsAccount) Clone() *EarningsAccount {
	c := *a
	c.ByCategory = make(map[Category]int64, len(a.ByCategory))
	for k, v := range a.ByCategory {
		c.ByCategory[k] = v
	}
	return &c
}
