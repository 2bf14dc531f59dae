package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yutthachai69/newjobflow/internal/database"
	"github.com/yutthachai69/newjobflow/internal/models"
)

// SecurityIncidentRepository handles security incident persistence.
type SecurityIncidentRepository struct {
	db *database.DB
}

// NewSecurityIncidentRepository creates a new SecurityIncidentRepository
func NewSecurityIncidentRepository(db *database.DB) *SecurityIncidentRepository {
	return &SecurityIncidentRepository{db: db}
}

const incidentColumns = `id, incident_type, severity, description, metadata, related_user_ids, resolved, resolved_by, created_at, resolved_at`

func scanIncidentRow(row rowScanner) (*models.SecurityIncident, error) {
	var incident models.SecurityIncident

	err := row.Scan(
		&incident.ID, &incident.Type, &incident.Severity, &incident.Description,
		&incident.Metadata, &incident.RelatedUserIDs, &incident.Resolved,
		&incident.ResolvedBy, &incident.CreatedAt, &incident.ResolvedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &incident, nil
}

func scanIncidentRows(rows pgx.Rows) ([]*models.SecurityIncident, error) {
	defer rows.Close()

	incidents := make([]*models.SecurityIncident, 0)

	for rows.Next() {
		incident, err := scanIncidentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan security incident: %w", err)
		}
		incidents = append(incidents, incident)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating security incident rows: %w", err)
	}

	return incidents, nil
}

// Create persists a new incident.
func (r *SecurityIncidentRepository) Create(ctx context.Context, incident *models.SecurityIncident) (*models.SecurityIncident, error) {
	if incident.ID == "" {
		incident.ID = uuid.New().String()
	}

	query := `
		INSERT INTO security_incidents (id, incident_type, severity, description, metadata, related_user_ids)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + incidentColumns

	result, err := scanIncidentRow(r.db.Pool.QueryRow(ctx, query,
		incident.ID, incident.Type, incident.Severity, incident.Description,
		incident.Metadata, incident.RelatedUserIDs,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create security incident: %w", err)
	}

	return result, nil
}

// GetByID returns a single incident, or ErrNotFound.
func (r *SecurityIncidentRepository) GetByID(ctx context.Context, id string) (*models.SecurityIncident, error) {
	query := `SELECT ` + incidentColumns + ` FROM security_incidents WHERE id = $1`

	return scanIncidentRow(r.db.Pool.QueryRow(ctx, query, id))
}

// MarkResolved flips an unresolved incident to resolved. Returns ErrNotFound
// when no unresolved row matched; the caller distinguishes a missing incident
// from an already-resolved one.
func (r *SecurityIncidentRepository) MarkResolved(ctx context.Context, id, resolvedBy string) (*models.SecurityIncident, error) {
	query := `
		UPDATE security_incidents
		SET resolved = TRUE, resolved_by = $2, resolved_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND resolved = FALSE
		RETURNING ` + incidentColumns

	return scanIncidentRow(r.db.Pool.QueryRow(ctx, query, id, resolvedBy))
}

// Query returns a page of incidents matching the filter, newest first, along
// with the total count of matches before pagination.
func (r *SecurityIncidentRepository) Query(ctx context.Context, filter *models.IncidentFilter) ([]*models.SecurityIncident, int64, error) {
	where, args := buildIncidentWhere(filter)

	countQuery := `SELECT COUNT(*) FROM security_incidents` + where

	var total int64
	if err := r.db.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count security incidents: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM security_incidents%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		incidentColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query security incidents: %w", err)
	}

	incidents, err := scanIncidentRows(rows)
	if err != nil {
		return nil, 0, err
	}

	return incidents, total, nil
}

func buildIncidentWhere(filter *models.IncidentFilter) (string, []interface{}) {
	conditions := make([]string, 0, 5)
	args := make([]interface{}, 0, 5)

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.Type != nil {
		add("incident_type = $%d", *filter.Type)
	}
	if filter.Severity != nil {
		add("severity = $%d", *filter.Severity)
	}
	if filter.Resolved != nil {
		add("resolved = $%d", *filter.Resolved)
	}
	if filter.StartDate != nil {
		add("created_at >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("created_at <= $%d", *filter.EndDate)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// GetStats aggregates incident counts by type and severity.
func (r *SecurityIncidentRepository) GetStats(ctx context.Context) (*models.IncidentStats, error) {
	stats := &models.IncidentStats{
		CountByType:     make(map[models.IncidentType]int64),
		CountBySeverity: make(map[models.Severity]int64),
	}

	totalsQuery := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE resolved = FALSE)
		FROM security_incidents
	`
	if err := r.db.Pool.QueryRow(ctx, totalsQuery).Scan(&stats.TotalIncidents, &stats.UnresolvedCount); err != nil {
		return nil, fmt.Errorf("failed to get incident totals: %w", err)
	}

	typeQuery := `SELECT incident_type, COUNT(*) FROM security_incidents GROUP BY incident_type`
	rows, err := r.db.Pool.Query(ctx, typeQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to get incident counts by type: %w", err)
	}
	if err := scanCountRows(rows, func(key string, count int64) {
		stats.CountByType[models.IncidentType(key)] = count
	}); err != nil {
		return nil, err
	}

	severityQuery := `SELECT severity, COUNT(*) FROM security_incidents GROUP BY severity`
	rows, err = r.db.Pool.Query(ctx, severityQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to get incident counts by severity: %w", err)
	}
	if err := scanCountRows(rows, func(key string, count int64) {
		stats.CountBySeverity[models.Severity(key)] = count
	}); err != nil {
		return nil, err
	}

	return stats, nil
}

func scanCountRows(rows pgx.Rows, collect func(key string, count int64)) error {
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("failed to scan count row: %w", err)
		}
		collect(key, count)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating count rows: %w", err)
	}
	return nil
}
