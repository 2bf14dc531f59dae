package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yutthachai69/newjobflow/internal/models"
)

func validReport() ReportIncidentInput {
	return ReportIncidentInput{
		Type:        models.IncidentBruteForce,
		Severity:    models.SeverityMedium,
		Description: "repeated login failures from single IP",
	}
}

func TestIncidentService_Report_Success(t *testing.T) {
	events := &RecordingEventLogger{}
	svc := NewSecurityIncidentService(&MockIncidentRepository{}, events, nil, slog.Default())

	incident, err := svc.Report(context.Background(), validReport())

	assert.NoError(t, err)
	assert.Equal(t, models.IncidentBruteForce, incident.Type)
	assert.NotNil(t, incident.Metadata)
	assert.NotNil(t, incident.RelatedUserIDs)
	assert.Len(t, events.Events, 1)
	assert.Equal(t, models.EventIncidentReported, events.Events[0].EventType)
}

func TestIncidentService_Report_InvalidType(t *testing.T) {
	svc := NewSecurityIncidentService(&MockIncidentRepository{}, &RecordingEventLogger{}, nil, slog.Default())

	input := validReport()
	input.Type = "SOMETHING_ELSE"
	_, err := svc.Report(context.Background(), input)

	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestIncidentService_Report_InvalidSeverity(t *testing.T) {
	svc := NewSecurityIncidentService(&MockIncidentRepository{}, &RecordingEventLogger{}, nil, slog.Default())

	input := validReport()
	input.Severity = "EXTREME"
	_, err := svc.Report(context.Background(), input)

	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestIncidentService_Report_BlankDescription(t *testing.T) {
	svc := NewSecurityIncidentService(&MockIncidentRepository{}, &RecordingEventLogger{}, nil, slog.Default())

	input := validReport()
	input.Description = "   "
	_, err := svc.Report(context.Background(), input)

	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestIncidentService_Report_HighSeverityTriggersAlert(t *testing.T) {
	alerter := &MockAlerter{}
	svc := NewSecurityIncidentService(&MockIncidentRepository{}, &RecordingEventLogger{}, alerter, slog.Default())

	input := validReport()
	input.Severity = models.SeverityHigh
	_, err := svc.Report(context.Background(), input)

	assert.NoError(t, err)
	assert.Len(t, alerter.Sent, 1)
}

func TestIncidentService_Report_LowSeverityDoesNotAlert(t *testing.T) {
	alerter := &MockAlerter{}
	svc := NewSecurityIncidentService(&MockIncidentRepository{}, &RecordingEventLogger{}, alerter, slog.Default())

	input := validReport()
	input.Severity = models.SeverityLow
	_, err := svc.Report(context.Background(), input)

	assert.NoError(t, err)
	assert.Empty(t, alerter.Sent)
}

func TestIncidentService_Report_AlertFailureIsSwallowed(t *testing.T) {
	alerter := &MockAlerter{
		SendIncidentAlertFunc: func(ctx context.Context, incident *models.SecurityIncident) error {
			return models.ErrInternalServer
		},
	}
	svc := NewSecurityIncidentService(&MockIncidentRepository{}, &RecordingEventLogger{}, alerter, slog.Default())

	input := validReport()
	input.Severity = models.SeverityCritical
	incident, err := svc.Report(context.Background(), input)

	assert.NoError(t, err)
	assert.NotNil(t, incident)
}

func TestIncidentService_Resolve_Success(t *testing.T) {
	resolvedBy := "admin1"
	repo := &MockIncidentRepository{
		MarkResolvedFunc: func(ctx context.Context, id, by string) (*models.SecurityIncident, error) {
			now := time.Now()
			return &models.SecurityIncident{ID: id, Resolved: true, ResolvedBy: &by, ResolvedAt: &now}, nil
		},
	}
	svc := NewSecurityIncidentService(repo, &RecordingEventLogger{}, nil, slog.Default())

	incident, err := svc.Resolve(context.Background(), "incident-1", resolvedBy)

	assert.NoError(t, err)
	assert.True(t, incident.Resolved)
	assert.Equal(t, resolvedBy, *incident.ResolvedBy)
}

func TestIncidentService_Resolve_AlreadyResolvedIsIdempotent(t *testing.T) {
	original := "admin1"
	resolvedAt := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	repo := &MockIncidentRepository{
		MarkResolvedFunc: func(ctx context.Context, id, by string) (*models.SecurityIncident, error) {
			return nil, models.ErrNotFound
		},
		GetByIDFunc: func(ctx context.Context, id string) (*models.SecurityIncident, error) {
			return &models.SecurityIncident{
				ID: id, Resolved: true, ResolvedBy: &original, ResolvedAt: &resolvedAt,
			}, nil
		},
	}
	svc := NewSecurityIncidentService(repo, &RecordingEventLogger{}, nil, slog.Default())

	incident, err := svc.Resolve(context.Background(), "incident-1", "admin2")

	// Original resolver and timestamp are preserved
	assert.NoError(t, err)
	assert.Equal(t, original, *incident.ResolvedBy)
	assert.Equal(t, resolvedAt, *incident.ResolvedAt)
}

func TestIncidentService_Resolve_MissingIncident(t *testing.T) {
	svc := NewSecurityIncidentService(&MockIncidentRepository{}, &RecordingEventLogger{}, nil, slog.Default())

	_, err := svc.Resolve(context.Background(), "does-not-exist", "admin1")

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestIncidentService_Query_ClampsLimitAndOffset(t *testing.T) {
	var gotFilter *models.IncidentFilter
	repo := &MockIncidentRepository{
		QueryFunc: func(ctx context.Context, filter *models.IncidentFilter) ([]*models.SecurityIncident, int64, error) {
			gotFilter = filter
			return []*models.SecurityIncident{}, 0, nil
		},
	}
	svc := NewSecurityIncidentService(repo, &RecordingEventLogger{}, nil, slog.Default())

	_, _, err := svc.Query(context.Background(), &models.IncidentFilter{Limit: -1, Offset: -5})

	assert.NoError(t, err)
	assert.Equal(t, 50, gotFilter.Limit)
	assert.Equal(t, 0, gotFilter.Offset)
}

func TestIncidentService_Query_RejectsInvertedDateRange(t *testing.T) {
	svc := NewSecurityIncidentService(&MockIncidentRepository{}, &RecordingEventLogger{}, nil, slog.Default())

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-24 * time.Hour)
	_, _, err := svc.Query(context.Background(), &models.IncidentFilter{StartDate: &start, EndDate: &end})

	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestIncidentService_Query_ReturnsTotalBeforePagination(t *testing.T) {
	repo := &MockIncidentRepository{
		QueryFunc: func(ctx context.Context, filter *models.IncidentFilter) ([]*models.SecurityIncident, int64, error) {
			return []*models.SecurityIncident{{ID: "a"}, {ID: "b"}}, 42, nil
		},
	}
	svc := NewSecurityIncidentService(repo, &RecordingEventLogger{}, nil, slog.Default())

	incidents, total, err := svc.Query(context.Background(), &models.IncidentFilter{Limit: 2})

	assert.NoError(t, err)
	assert.Len(t, incidents, 2)
	assert.Equal(t, int64(42), total)
}

func TestIncidentService_Stats(t *testing.T) {
	repo := &MockIncidentRepository{
		GetStatsFunc: func(ctx context.Context) (*models.IncidentStats, error) {
			return &models.IncidentStats{
				TotalIncidents:  10,
				UnresolvedCount: 3,
				CountByType:     map[models.IncidentType]int64{models.IncidentBruteForce: 4},
				CountBySeverity: map[models.Severity]int64{models.SeverityHigh: 2},
			}, nil
		},
	}
	svc := NewSecurityIncidentService(repo, &RecordingEventLogger{}, nil, slog.Default())

	stats, err := svc.Stats(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, int64(10), stats.TotalIncidents)
	assert.Equal(t, int64(3), stats.UnresolvedCount)
	assert.Equal(t, int64(4), stats.CountByType[models.IncidentBruteForce])
}
