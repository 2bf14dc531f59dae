package models

import (
	"time"
)

// User roles. ADMIN manages the platform, TECHNICIAN executes service jobs,
// CLIENT views the sites and assets belonging to their company.
const (
	RoleAdmin      = "ADMIN"
	RoleTechnician = "TECHNICIAN"
	RoleClient     = "CLIENT"
)

// User account statuses
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
