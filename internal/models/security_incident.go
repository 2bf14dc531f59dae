package models

import (
	"fmt"
	"time"
)

// IncidentType is the closed set of security incident categories.
type IncidentType string

const (
	IncidentLoginFailure       IncidentType = "LOGIN_FAILURE"
	IncidentBruteForce         IncidentType = "BRUTE_FORCE"
	IncidentRateLimitAbuse     IncidentType = "RATE_LIMIT_ABUSE"
	IncidentUnauthorizedAccess IncidentType = "UNAUTHORIZED_ACCESS"
	IncidentAssetDeleted       IncidentType = "ASSET_DELETED"
	IncidentUserDeleted        IncidentType = "USER_DELETED"
)

// Valid reports whether the type belongs to the closed incident set.
func (t IncidentType) Valid() bool {
	switch t {
	case IncidentLoginFailure, IncidentBruteForce, IncidentRateLimitAbuse,
		IncidentUnauthorizedAccess, IncidentAssetDeleted, IncidentUserDeleted:
		return true
	}
	return false
}

// ParseIncidentType converts a raw string (e.g. a query parameter) into a
// typed incident category.
func ParseIncidentType(s string) (IncidentType, error) {
	t := IncidentType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown incident type %q", ErrBadRequest, s)
	}
	return t, nil
}

// Severity is the ordered incident severity scale.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Rank returns the position on the severity scale (LOW < MEDIUM < HIGH < CRITICAL).
// Unknown severities rank below LOW.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	}
	return 0
}

// Valid reports whether the severity is one of the defined levels.
func (s Severity) Valid() bool {
	return s.Rank() > 0
}

// ParseSeverity converts a raw string into a typed severity level.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(s)
	if !sev.Valid() {
		return "", fmt.Errorf("%w: unknown severity %q", ErrBadRequest, s)
	}
	return sev, nil
}

// SecurityIncident is a durable, severity-classified security record.
// Incidents are never hard-deleted; resolution only flips the resolved flag.
type SecurityIncident struct {
	ID             string       `json:"id" db:"id"`
	Type           IncidentType `json:"type" db:"incident_type"`
	Severity       Severity     `json:"severity" db:"severity"`
	Description    string       `json:"description" db:"description"`
	Metadata       Metadata     `json:"metadata" db:"metadata"`
	RelatedUserIDs []string     `json:"related_user_ids" db:"related_user_ids"`
	Resolved       bool         `json:"resolved" db:"resolved"`
	ResolvedBy     *string      `json:"resolved_by,omitempty" db:"resolved_by"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	ResolvedAt     *time.Time   `json:"resolved_at,omitempty" db:"resolved_at"`
}

// IncidentFilter selects incidents for listing. Nil fields match everything.
type IncidentFilter struct {
	Type      *IncidentType
	Severity  *Severity
	Resolved  *bool
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// IncidentStats aggregates the current incident store state.
type IncidentStats struct {
	TotalIncidents  int64                  `json:"total_incidents"`
	UnresolvedCount int64                  `json:"unresolved_count"`
	CountByType     map[IncidentType]int64 `json:"count_by_type"`
	CountBySeverity map[Severity]int64     `json:"count_by_severity"`
}
