package services

import (
	"context"
	"sync"
	"time"

	"github.com/yutthachai69/newjobflow/internal/models"
)

// NewTestUser creates a user for testing
func NewTestUser(id, email, name, role string) *models.User {
	now := time.Now()
	return &models.User{
		ID:           id,
		Email:        email,
		PasswordHash: "$2a$12$abcdefghijklmnopqrstuv",
		Name:         name,
		Role:         role,
		Status:       models.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc    func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*models.User, error)
	ListFunc       func(ctx context.Context, limit, offset int) ([]*models.User, error)
	CreateFunc     func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateFunc     func(ctx context.Context, user *models.User) (*models.User, error)
	DeleteFunc     func(ctx context.Context, id string) error
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockSecurityEventRepository implements SecurityEventRepository for testing
type MockSecurityEventRepository struct {
	CreateFunc    func(ctx context.Context, event *models.SecurityEvent) (*models.SecurityEvent, error)
	GetRecentFunc func(ctx context.Context, limit int) ([]*models.SecurityEvent, error)
}

func (m *MockSecurityEventRepository) Create(ctx context.Context, event *models.SecurityEvent) (*models.SecurityEvent, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, event)
	}
	return event, nil
}

func (m *MockSecurityEventRepository) GetRecent(ctx context.Context, limit int) ([]*models.SecurityEvent, error) {
	if m.GetRecentFunc != nil {
		return m.GetRecentFunc(ctx, limit)
	}
	return []*models.SecurityEvent{}, nil
}

// RecordingEventLogger captures emitted events for assertions
type RecordingEventLogger struct {
	mu     sync.Mutex
	Events []RecordedEvent
}

// RecordedEvent is a single captured event
type RecordedEvent struct {
	EventType string
	Payload   models.Metadata
}

func (l *RecordingEventLogger) LogEvent(ctx context.Context, eventType string, payload models.Metadata) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Events = append(l.Events, RecordedEvent{EventType: eventType, Payload: payload})
}

// MockAccountLockStore implements AccountLockStore for testing
type MockAccountLockStore struct {
	UpsertFunc      func(ctx context.Context, lock *models.AccountLock) (*models.AccountLock, error)
	GetByUserIDFunc func(ctx context.Context, userID string) (*models.AccountLock, error)
	DeleteFunc      func(ctx context.Context, userID string) error
}

func (m *MockAccountLockStore) Upsert(ctx context.Context, lock *models.AccountLock) (*models.AccountLock, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, lock)
	}
	return lock, nil
}

func (m *MockAccountLockStore) GetByUserID(ctx context.Context, userID string) (*models.AccountLock, error) {
	if m.GetByUserIDFunc != nil {
		return m.GetByUserIDFunc(ctx, userID)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountLockStore) Delete(ctx context.Context, userID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID)
	}
	return nil
}

// MockIncidentRepository implements SecurityIncidentRepository for testing
type MockIncidentRepository struct {
	CreateFunc       func(ctx context.Context, incident *models.SecurityIncident) (*models.SecurityIncident, error)
	GetByIDFunc      func(ctx context.Context, id string) (*models.SecurityIncident, error)
	MarkResolvedFunc func(ctx context.Context, id, resolvedBy string) (*models.SecurityIncident, error)
	QueryFunc        func(ctx context.Context, filter *models.IncidentFilter) ([]*models.SecurityIncident, int64, error)
	GetStatsFunc     func(ctx context.Context) (*models.IncidentStats, error)
}

func (m *MockIncidentRepository) Create(ctx context.Context, incident *models.SecurityIncident) (*models.SecurityIncident, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, incident)
	}
	if incident.ID == "" {
		incident.ID = "incident-1"
	}
	incident.CreatedAt = time.Now()
	return incident, nil
}

func (m *MockIncidentRepository) GetByID(ctx context.Context, id string) (*models.SecurityIncident, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockIncidentRepository) MarkResolved(ctx context.Context, id, resolvedBy string) (*models.SecurityIncident, error) {
	if m.MarkResolvedFunc != nil {
		return m.MarkResolvedFunc(ctx, id, resolvedBy)
	}
	return nil, models.ErrNotFound
}

func (m *MockIncidentRepository) Query(ctx context.Context, filter *models.IncidentFilter) ([]*models.SecurityIncident, int64, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, filter)
	}
	return []*models.SecurityIncident{}, 0, nil
}

func (m *MockIncidentRepository) GetStats(ctx context.Context) (*models.IncidentStats, error) {
	if m.GetStatsFunc != nil {
		return m.GetStatsFunc(ctx)
	}
	return &models.IncidentStats{}, nil
}

// MockAlerter implements IncidentAlerter for testing
type MockAlerter struct {
	SendIncidentAlertFunc func(ctx context.Context, incident *models.SecurityIncident) error
	Sent                  []*models.SecurityIncident
}

func (m *MockAlerter) SendIncidentAlert(ctx context.Context, incident *models.SecurityIncident) error {
	m.Sent = append(m.Sent, incident)
	if m.SendIncidentAlertFunc != nil {
		return m.SendIncidentAlertFunc(ctx, incident)
	}
	return nil
}
