package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yutthachai69/newjobflow/internal/models"
)

// SecurityIncidentRepository defines the persistence surface the incident
// service needs.
type SecurityIncidentRepository interface {
	Create(ctx context.Context, incident *models.SecurityIncident) (*models.SecurityIncident, error)
	GetByID(ctx context.Context, id string) (*models.SecurityIncident, error)
	MarkResolved(ctx context.Context, id, resolvedBy string) (*models.SecurityIncident, error)
	Query(ctx context.Context, filter *models.IncidentFilter) ([]*models.SecurityIncident, int64, error)
	GetStats(ctx context.Context) (*models.IncidentStats, error)
}

// IncidentAlerter notifies operators about serious incidents.
type IncidentAlerter interface {
	SendIncidentAlert(ctx context.Context, incident *models.SecurityIncident) error
}

// ReportIncidentInput carries the fields a caller supplies when reporting.
type ReportIncidentInput struct {
	Type           models.IncidentType
	Severity       models.Severity
	Description    string
	Metadata       models.Metadata
	RelatedUserIDs []string
}

// SecurityIncidentService manages the incident lifecycle: report, resolve,
// query, aggregate.
type SecurityIncidentService struct {
	repo    SecurityIncidentRepository
	events  SecurityEventLogger
	alerter IncidentAlerter
	logger  *slog.Logger
}

// NewSecurityIncidentService creates the service. alerter may be nil, in
// which case no alerts are sent.
func NewSecurityIncidentService(repo SecurityIncidentRepository, events SecurityEventLogger, alerter IncidentAlerter, logger *slog.Logger) *SecurityIncidentService {
	return &SecurityIncidentService{
		repo:    repo,
		events:  events,
		alerter: alerter,
		logger:  logger,
	}
}

// Report records a new incident. HIGH and CRITICAL incidents additionally
// trigger an operator alert; alert failures are logged and swallowed.
func (s *SecurityIncidentService) Report(ctx context.Context, input ReportIncidentInput) (*models.SecurityIncident, error) {
	if !input.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown incident type %q", models.ErrBadRequest, input.Type)
	}
	if !input.Severity.Valid() {
		return nil, fmt.Errorf("%w: unknown severity %q", models.ErrBadRequest, input.Severity)
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", models.ErrBadRequest)
	}

	metadata := input.Metadata
	if metadata == nil {
		metadata = models.Metadata{}
	}
	relatedUserIDs := input.RelatedUserIDs
	if relatedUserIDs == nil {
		relatedUserIDs = []string{}
	}

	incident, err := s.repo.Create(ctx, &models.SecurityIncident{
		Type:           input.Type,
		Severity:       input.Severity,
		Description:    input.Description,
		Metadata:       metadata,
		RelatedUserIDs: relatedUserIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to report incident: %w", err)
	}

	s.events.LogEvent(ctx, models.EventIncidentReported, models.Metadata{
		"incident_id":   incident.ID,
		"incident_type": string(incident.Type),
		"severity":      string(incident.Severity),
	})

	if s.alerter != nil && incident.Severity.Rank() >= models.SeverityHigh.Rank() {
		if err := s.alerter.SendIncidentAlert(ctx, incident); err != nil {
			s.logger.Error("failed to send incident alert",
				slog.String("incident_id", incident.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return incident, nil
}

// Resolve marks an incident as resolved. Resolving an already-resolved
// incident is a no-op that returns the stored record; the original resolver
// and timestamp are preserved.
func (s *SecurityIncidentService) Resolve(ctx context.Context, id, resolvedBy string) (*models.SecurityIncident, error) {
	incident, err := s.repo.MarkResolved(ctx, id, resolvedBy)
	if err == nil {
		return incident, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to resolve incident: %w", err)
	}

	// No unresolved row matched: either the incident does not exist, or it
	// was already resolved. GetByID tells the two apart.
	existing, getErr := s.repo.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}

	return existing, nil
}

// Get returns a single incident by ID.
func (s *SecurityIncidentService) Get(ctx context.Context, id string) (*models.SecurityIncident, error) {
	return s.repo.GetByID(ctx, id)
}

// Query returns a page of incidents matching the filter plus the total match
// count. Limits outside (0, 100] fall back to 50; negative offsets to 0.
func (s *SecurityIncidentService) Query(ctx context.Context, filter *models.IncidentFilter) ([]*models.SecurityIncident, int64, error) {
	if filter == nil {
		filter = &models.IncidentFilter{}
	}

	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, 0, fmt.Errorf("%w: end date precedes start date", models.ErrBadRequest)
	}

	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	return s.repo.Query(ctx, filter)
}

// Stats aggregates incident counts for the admin dashboard.
func (s *SecurityIncidentService) Stats(ctx context.Context) (*models.IncidentStats, error) {
	return s.repo.GetStats(ctx)
}
