package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yutthachai69/newjobflow/internal/models"
)

func TestSecurityEventService_LogEvent_PersistsEvent(t *testing.T) {
	var created *models.SecurityEvent
	mockRepo := &MockSecurityEventRepository{
		CreateFunc: func(ctx context.Context, event *models.SecurityEvent) (*models.SecurityEvent, error) {
			created = event
			return event, nil
		},
	}

	svc := NewSecurityEventService(mockRepo, slog.Default())

	svc.LogEvent(context.Background(), models.EventAccountLocked, models.Metadata{"user_id": "user123"})

	assert.NotNil(t, created)
	assert.Equal(t, models.EventAccountLocked, created.EventType)
	assert.Equal(t, "user123", created.Payload["user_id"])
}

func TestSecurityEventService_LogEvent_SwallowsPersistenceError(t *testing.T) {
	mockRepo := &MockSecurityEventRepository{
		CreateFunc: func(ctx context.Context, event *models.SecurityEvent) (*models.SecurityEvent, error) {
			return nil, models.ErrInternalServer
		},
	}

	svc := NewSecurityEventService(mockRepo, slog.Default())

	// Must not panic or surface the error
	svc.LogEvent(context.Background(), models.EventUserDeleted, nil)
}

func TestSecurityEventService_LogEvent_NilPayloadBecomesEmpty(t *testing.T) {
	var created *models.SecurityEvent
	mockRepo := &MockSecurityEventRepository{
		CreateFunc: func(ctx context.Context, event *models.SecurityEvent) (*models.SecurityEvent, error) {
			created = event
			return event, nil
		},
	}

	svc := NewSecurityEventService(mockRepo, slog.Default())

	svc.LogEvent(context.Background(), models.EventUserDeleted, nil)

	assert.NotNil(t, created.Payload)
	assert.Empty(t, created.Payload)
}

func TestSecurityEventService_RecentEvents_ClampsLimit(t *testing.T) {
	var gotLimit int
	mockRepo := &MockSecurityEventRepository{
		GetRecentFunc: func(ctx context.Context, limit int) ([]*models.SecurityEvent, error) {
			gotLimit = limit
			return []*models.SecurityEvent{}, nil
		},
	}

	svc := NewSecurityEventService(mockRepo, slog.Default())

	_, err := svc.RecentEvents(context.Background(), 0)
	assert.NoError(t, err)
	assert.Equal(t, 50, gotLimit)

	_, err = svc.RecentEvents(context.Background(), 500)
	assert.NoError(t, err)
	assert.Equal(t, 50, gotLimit)

	_, err = svc.RecentEvents(context.Background(), 25)
	assert.NoError(t, err)
	assert.Equal(t, 25, gotLimit)
}
