package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/yutthachai69/newjobflow/internal/auth"
	"github.com/yutthachai69/newjobflow/internal/models"
	"github.com/yutthachai69/newjobflow/internal/services"
)

// MockIncidentService implements IncidentServiceInterface for testing
type MockIncidentService struct {
	ReportFunc  func(ctx context.Context, input services.ReportIncidentInput) (*models.SecurityIncident, error)
	ResolveFunc func(ctx context.Context, id, resolvedBy string) (*models.SecurityIncident, error)
	GetFunc     func(ctx context.Context, id string) (*models.SecurityIncident, error)
	QueryFunc   func(ctx context.Context, filter *models.IncidentFilter) ([]*models.SecurityIncident, int64, error)
	StatsFunc   func(ctx context.Context) (*models.IncidentStats, error)
}

func (m *MockIncidentService) Report(ctx context.Context, input services.ReportIncidentInput) (*models.SecurityIncident, error) {
	if m.ReportFunc != nil {
		return m.ReportFunc(ctx, input)
	}
	return &models.SecurityIncident{ID: "incident-1", Type: input.Type, Severity: input.Severity}, nil
}

func (m *MockIncidentService) Resolve(ctx context.Context, id, resolvedBy string) (*models.SecurityIncident, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, id, resolvedBy)
	}
	return nil, models.ErrNotFound
}

func (m *MockIncidentService) Get(ctx context.Context, id string) (*models.SecurityIncident, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockIncidentService) Query(ctx context.Context, filter *models.IncidentFilter) ([]*models.SecurityIncident, int64, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, filter)
	}
	return []*models.SecurityIncident{}, 0, nil
}

func (m *MockIncidentService) Stats(ctx context.Context) (*models.IncidentStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return &models.IncidentStats{}, nil
}

// MockEventReader implements EventReaderInterface for testing
type MockEventReader struct {
	RecentEventsFunc func(ctx context.Context, limit int) ([]*models.SecurityEvent, error)
}

func (m *MockEventReader) RecentEvents(ctx context.Context, limit int) ([]*models.SecurityEvent, error) {
	if m.RecentEventsFunc != nil {
		return m.RecentEventsFunc(ctx, limit)
	}
	return []*models.SecurityEvent{}, nil
}

// MockUserService implements UserServiceInterface for testing
type MockUserService struct {
	GetFunc    func(ctx context.Context, id string) (*models.User, error)
	ListFunc   func(ctx context.Context, limit, offset int) ([]*models.User, error)
	CreateFunc func(ctx context.Context, input services.CreateUserInput) (*models.User, error)
	DeleteFunc func(ctx context.Context, id, deletedBy string) error
}

func (m *MockUserService) Get(ctx context.Context, id string) (*models.User, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserService) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []*models.User{}, nil
}

func (m *MockUserService) Create(ctx context.Context, input services.CreateUserInput) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, input)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserService) Delete(ctx context.Context, id, deletedBy string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id, deletedBy)
	}
	return nil
}

// MockLockoutService implements LockoutServiceInterface for testing
type MockLockoutService struct {
	LockFunc           func(ctx context.Context, userID, reason, lockedBy string, duration time.Duration) (*models.AccountLock, error)
	LockIndefiniteFunc func(ctx context.Context, userID, reason, lockedBy string) (*models.AccountLock, error)
	UnlockFunc         func(ctx context.Context, userID, unlockedBy string) error
	StatusFunc         func(ctx context.Context, userID string) (bool, *models.AccountLock, error)
}

func (m *MockLockoutService) Lock(ctx context.Context, userID, reason, lockedBy string, duration time.Duration) (*models.AccountLock, error) {
	if m.LockFunc != nil {
		return m.LockFunc(ctx, userID, reason, lockedBy, duration)
	}
	return &models.AccountLock{UserID: userID, Reason: reason, LockedBy: lockedBy}, nil
}

func (m *MockLockoutService) LockIndefinite(ctx context.Context, userID, reason, lockedBy string) (*models.AccountLock, error) {
	if m.LockIndefiniteFunc != nil {
		return m.LockIndefiniteFunc(ctx, userID, reason, lockedBy)
	}
	return &models.AccountLock{UserID: userID, Reason: reason, LockedBy: lockedBy}, nil
}

func (m *MockLockoutService) Unlock(ctx context.Context, userID, unlockedBy string) error {
	if m.UnlockFunc != nil {
		return m.UnlockFunc(ctx, userID, unlockedBy)
	}
	return nil
}

func (m *MockLockoutService) Status(ctx context.Context, userID string) (bool, *models.AccountLock, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx, userID)
	}
	return false, nil, nil
}

// withClaims attaches token claims to a request for handler tests
func withClaims(t *testing.T, req *http.Request, userID, role string) *http.Request {
	t.Helper()
	claims := &models.TokenClaims{Type: "access", UserID: userID, Role: role}
	return req.WithContext(context.WithValue(req.Context(), auth.UserContextKey, claims))
}
