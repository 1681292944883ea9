package domain

import "errors"

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrTaskInactive       = errors.New("task is not active")
	ErrAlreadyClaimed     = errors.New("reward already claimed")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrReferralInvalid    = errors.New("invalid referral code")
	ErrReferralAlreadySet = errors.New("referrer already set")
	ErrCreditExists       = errors.New("credit already granted")
)

// ErrCreditPending means the ledger entry was written but the earnings credit
// was not. Retrying the claim is safe and yields ErrAlreadyClaimed.
var ErrCreditPending = errors.New("reward recorded, credit pending")
