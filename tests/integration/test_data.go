package integration

import (
	"fmt"
	"time"

	"github.com/yutthachai69/newjobflow/internal/models"
)

// TestUser generates unique test user credentials using a timestamp.
func TestUser(suffix string) (email, password string) {
	ts := time.Now().UnixNano()
	email = fmt.Sprintf("test-%d-%s@example.com", ts, suffix)
	password = "TestPassword123!"
	return
}

// TestIncident builds a minimal unresolved incident for store tests.
func TestIncident(incidentType models.IncidentType, severity models.Severity) *models.SecurityIncident {
	return &models.SecurityIncident{
		Type:           incidentType,
		Severity:       severity,
		Description:    fmt.Sprintf("test incident %s/%s", incidentType, severity),
		Metadata:       models.Metadata{"source": "integration-test"},
		RelatedUserIDs: []string{},
	}
}
