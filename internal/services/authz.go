package services

import (
	"fmt"

	"github.com/yutthachai69/newjobflow/internal/models"
)

// AuthorizationService holds role and lock-target policy. It is stateless;
// callers pass in the already-authenticated actor.
type AuthorizationService struct{}

func NewAuthorizationService() *AuthorizationService {
	return &AuthorizationService{}
}

// IsAdmin reports whether the actor holds the admin role.
func (s *AuthorizationService) IsAdmin(actor *models.User) bool {
	return actor != nil && actor.Role == models.RoleAdmin
}

// CanManageSecurity reports whether the actor may read and mutate the
// security surface (incidents, events, locks).
func (s *AuthorizationService) CanManageSecurity(actor *models.User) bool {
	return s.IsAdmin(actor)
}

// ValidateLockTarget enforces the lock policy: admins cannot lock themselves
// and cannot lock other admins. The lockout service itself performs no such
// checks, so every manual lock path must pass through here first.
func (s *AuthorizationService) ValidateLockTarget(actor, target *models.User) error {
	if !s.IsAdmin(actor) {
		return models.ErrForbidden
	}

	if actor.ID == target.ID {
		return fmt.Errorf("%w: cannot lock your own account", models.ErrConflict)
	}

	if target.Role == models.RoleAdmin {
		return fmt.Errorf("%w: cannot lock an admin account", models.ErrConflict)
	}

	return nil
}
