package domain

import (
	"time"

	"github.com/google/uuid"
)

type CreditKind string

const (
	CreditKindReferral CreditKind = "referral"
	CreditKindBonus    CreditKind = "bonus"
)

// Credit is a non-task payout. (UserID, Kind, Ref) is unique, so Ref must
// name the event being paid for (e.g. the referee's user ID).
type Credit struct {
	ID        int64
	UserID    uuid.UUID
	Kind      CreditKind
	Ref       string
	Amount    int64
	CreatedAt time.Time
}

func (k CreditKind) Category() Category {
	if k == CreditKindReferral {
		return CategoryReferral
	}
	return CategoryBonus
}
