package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yutthachai69/newjobflow/internal/models"
)

func TestAuthorizationService_IsAdmin(t *testing.T) {
	svc := NewAuthorizationService()

	admin := NewTestUser("admin1", "admin@example.com", "Admin", models.RoleAdmin)
	tech := NewTestUser("tech1", "tech@example.com", "Tech", models.RoleTechnician)
	client := NewTestUser("client1", "client@example.com", "Client", models.RoleClient)

	assert.True(t, svc.IsAdmin(admin))
	assert.False(t, svc.IsAdmin(tech))
	assert.False(t, svc.IsAdmin(client))
	assert.False(t, svc.IsAdmin(nil))
}

func TestAuthorizationService_CanManageSecurity(t *testing.T) {
	svc := NewAuthorizationService()

	assert.True(t, svc.CanManageSecurity(NewTestUser("admin1", "a@example.com", "A", models.RoleAdmin)))
	assert.False(t, svc.CanManageSecurity(NewTestUser("tech1", "t@example.com", "T", models.RoleTechnician)))
}

func TestAuthorizationService_ValidateLockTarget(t *testing.T) {
	svc := NewAuthorizationService()

	admin := NewTestUser("admin1", "admin@example.com", "Admin", models.RoleAdmin)
	otherAdmin := NewTestUser("admin2", "admin2@example.com", "Admin Two", models.RoleAdmin)
	tech := NewTestUser("tech1", "tech@example.com", "Tech", models.RoleTechnician)

	t.Run("admin can lock non-admin", func(t *testing.T) {
		assert.NoError(t, svc.ValidateLockTarget(admin, tech))
	})

	t.Run("non-admin cannot lock", func(t *testing.T) {
		err := svc.ValidateLockTarget(tech, admin)
		assert.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run("admin cannot lock self", func(t *testing.T) {
		err := svc.ValidateLockTarget(admin, admin)
		assert.ErrorIs(t, err, models.ErrConflict)
	})

	t.Run("admin cannot lock another admin", func(t *testing.T) {
		err := svc.ValidateLockTarget(admin, otherAdmin)
		assert.ErrorIs(t, err, models.ErrConflict)
	})
}
