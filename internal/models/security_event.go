package models

import (
	"time"
)

// Event types for the security event stream
const (
	EventAssetDeleted      = "asset_deleted"
	EventUserDeleted       = "user_deleted"
	EventIncidentReported  = "security_incident_reported"
	EventAccountLocked     = "account_locked"
	EventAccountUnlocked   = "account_unlocked"
	EventLoginFailure      = "login_failure"
	EventRateLimitExceeded = "rate_limit_exceeded"
)

// SecurityEvent is a single append-only entry in the security event stream.
// Events are immutable once written; ordering is insertion order.
type SecurityEvent struct {
	ID        int64     `json:"id" db:"id"`
	EventType string    `json:"event_type" db:"event_type"`
	Payload   Metadata  `json:"payload" db:"payload"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
