package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/yutthachai69/newjobflow/internal/auth"
	"github.com/yutthachai69/newjobflow/internal/models"
	"github.com/yutthachai69/newjobflow/internal/services"
	pkghttp "github.com/yutthachai69/newjobflow/pkg/http"
)

// IncidentServiceInterface defines the interface for incident business logic
type IncidentServiceInterface interface {
	Report(ctx context.Context, input services.ReportIncidentInput) (*models.SecurityIncident, error)
	Resolve(ctx context.Context, id, resolvedBy string) (*models.SecurityIncident, error)
	Get(ctx context.Context, id string) (*models.SecurityIncident, error)
	Query(ctx context.Context, filter *models.IncidentFilter) ([]*models.SecurityIncident, int64, error)
	Stats(ctx context.Context) (*models.IncidentStats, error)
}

// EventReaderInterface exposes the read side of the security event stream
type EventReaderInterface interface {
	RecentEvents(ctx context.Context, limit int) ([]*models.SecurityEvent, error)
}

// SecurityHandler handles the admin security surface: incidents and events
type SecurityHandler struct {
	incidents IncidentServiceInterface
	events    EventReaderInterface
}

// NewSecurityHandler creates a new SecurityHandler
func NewSecurityHandler(incidents IncidentServiceInterface, events EventReaderInterface) *SecurityHandler {
	return &SecurityHandler{
		incidents: incidents,
		events:    events,
	}
}

// ReportIncidentRequest represents the request body for reporting an incident
type ReportIncidentRequest struct {
	Type           string                 `json:"type" validate:"required"`
	Severity       string                 `json:"severity" validate:"required"`
	Description    string                 `json:"description" validate:"required,min=1"`
	Metadata       map[string]interface{} `json:"metadata"`
	RelatedUserIDs []string               `json:"related_user_ids"`
}

// IncidentListResponse represents a page of incidents plus the total match count
type IncidentListResponse struct {
	Incidents []*models.SecurityIncident `json:"incidents"`
	Total     int64                      `json:"total"`
	Limit     int                        `json:"limit"`
	Offset    int                        `json:"offset"`
}

// ReportIncident handles POST /security/incidents
func (h *SecurityHandler) ReportIncident(w http.ResponseWriter, r *http.Request) {
	var req ReportIncidentRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	incidentType, err := models.ParseIncidentType(req.Type)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Unknown incident type")
		return
	}

	severity, err := models.ParseSeverity(req.Severity)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Unknown severity")
		return
	}

	incident, err := h.incidents.Report(r.Context(), services.ReportIncidentInput{
		Type:           incidentType,
		Severity:       severity,
		Description:    req.Description,
		Metadata:       req.Metadata,
		RelatedUserIDs: req.RelatedUserIDs,
	})
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Invalid incident")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, incident)
}

// ListIncidents handles GET /security/incidents with optional filters
func (h *SecurityHandler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	filter, err := parseIncidentFilter(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	incidents, total, err := h.incidents.Query(r.Context(), filter)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Invalid filter")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, IncidentListResponse{
		Incidents: incidents,
		Total:     total,
		Limit:     filter.Limit,
		Offset:    filter.Offset,
	})
}

// GetIncident handles GET /security/incidents/{id}
func (h *SecurityHandler) GetIncident(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		pkghttp.WriteBadRequest(w, "Incident ID is required")
		return
	}

	incident, err := h.incidents.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Incident not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, incident)
}

// ResolveIncident handles POST /security/incidents/{id}/resolve
func (h *SecurityHandler) ResolveIncident(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		pkghttp.WriteBadRequest(w, "Incident ID is required")
		return
	}

	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	incident, err := h.incidents.Resolve(r.Context(), id, claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Incident not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, incident)
}

// IncidentStats handles GET /security/incidents/stats
func (h *SecurityHandler) IncidentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.incidents.Stats(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// RecentEvents handles GET /security/events
func (h *SecurityHandler) RecentEvents(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil {
			pkghttp.WriteBadRequest(w, "Invalid limit")
			return
		}
		limit = parsed
	}

	events, err := h.events.RecentEvents(r.Context(), limit)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

func parseIncidentFilter(r *http.Request) (*models.IncidentFilter, error) {
	filter := &models.IncidentFilter{}
	q := r.URL.Query()

	if v := q.Get("type"); v != "" {
		t, err := models.ParseIncidentType(v)
		if err != nil {
			return nil, errors.New("unknown incident type")
		}
		filter.Type = &t
	}
	if v := q.Get("severity"); v != "" {
		s, err := models.ParseSeverity(v)
		if err != nil {
			return nil, errors.New("unknown severity")
		}
		filter.Severity = &s
	}
	if v := q.Get("resolved"); v != "" {
		resolved, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errors.New("invalid resolved flag")
		}
		filter.Resolved = &resolved
	}
	if v := q.Get("start_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, errors.New("invalid start_date, expected RFC3339")
		}
		filter.StartDate = &t
	}
	if v := q.Get("end_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, errors.New("invalid end_date, expected RFC3339")
		}
		filter.EndDate = &t
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("invalid limit")
		}
		filter.Limit = limit
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("invalid offset")
		}
		filter.Offset = offset
	}

	return filter, nil
}
