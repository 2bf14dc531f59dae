package services

import (
	"context"
	"log/slog"

	"github.com/yutthachai69/newjobflow/internal/models"
)

// SecurityEventRepository defines the persistence surface the event logger needs.
type SecurityEventRepository interface {
	Create(ctx context.Context, event *models.SecurityEvent) (*models.SecurityEvent, error)
	GetRecent(ctx context.Context, limit int) ([]*models.SecurityEvent, error)
}

// SecurityEventLogger is the write side of the event stream. Services that
// only emit events depend on this instead of the full service.
type SecurityEventLogger interface {
	LogEvent(ctx context.Context, eventType string, payload models.Metadata)
}

// SecurityEventService dual-writes security events to the structured log and
// the database. The log write always happens; a failed database write is
// recorded in the log but never surfaced to the caller, so security
// bookkeeping cannot break the operation being recorded.
type SecurityEventService struct {
	repo   SecurityEventRepository
	logger *slog.Logger
}

func NewSecurityEventService(repo SecurityEventRepository, logger *slog.Logger) *SecurityEventService {
	return &SecurityEventService{
		repo:   repo,
		logger: logger,
	}
}

// LogEvent records a security event. Returns nothing: persistence failures
// are swallowed after being logged.
func (s *SecurityEventService) LogEvent(ctx context.Context, eventType string, payload models.Metadata) {
	if payload == nil {
		payload = models.Metadata{}
	}

	s.logger.Info("security event",
		slog.String("event_type", eventType),
		slog.Any("payload", payload),
	)

	event := &models.SecurityEvent{
		EventType: eventType,
		Payload:   payload,
	}

	if _, err := s.repo.Create(ctx, event); err != nil {
		s.logger.Error("failed to persist security event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
	}
}

// RecentEvents returns the newest events for the admin dashboard. Limits
// outside (0, 100] fall back to 50.
func (s *SecurityEventService) RecentEvents(ctx context.Context, limit int) ([]*models.SecurityEvent, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	return s.repo.GetRecent(ctx, limit)
}
