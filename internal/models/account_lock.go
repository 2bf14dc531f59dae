package models

import "time"

// AccountLock is the active lock on a user account. A user has at most one
// active lock; re-locking replaces it, unlocking clears it.
type AccountLock struct {
	ID        string     `json:"id" db:"id"`
	UserID    string     `json:"user_id" db:"user_id"`
	Reason    string     `json:"reason" db:"reason"`
	LockedBy  string     `json:"locked_by" db:"locked_by"`
	LockedAt  time.Time  `json:"locked_at" db:"locked_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" db:"expires_at"` // nil = indefinite, cleared only by explicit unlock
}

// Expired reports whether the lock has passed its expiry at the given time.
// Indefinite locks never expire.
func (l *AccountLock) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && !now.Before(*l.ExpiresAt)
}
