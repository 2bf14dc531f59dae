package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/yutthachai69/newjobflow/internal/models"
)

// AWSSESAlertService sends incident alert emails using AWS SES
type AWSSESAlertService struct {
	sesClient    *ses.Client
	fromAddress  string
	alertAddress string
	logger       *slog.Logger
}

// NewAWSSESAlertService creates a new AWS SES alert service
func NewAWSSESAlertService(region, fromAddress, alertAddress string, logger *slog.Logger) (*AWSSESAlertService, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESAlertService{
		sesClient:    ses.NewFromConfig(cfg),
		fromAddress:  fromAddress,
		alertAddress: alertAddress,
		logger:       logger,
	}, nil
}

// SendIncidentAlert emails the on-call address about a serious incident
func (s *AWSSESAlertService) SendIncidentAlert(ctx context.Context, incident *models.SecurityIncident) error {
	subject := fmt.Sprintf("[%s] Security incident: %s", incident.Severity, incident.Type)

	var related string
	if len(incident.RelatedUserIDs) > 0 {
		related = strings.Join(incident.RelatedUserIDs, ", ")
	} else {
		related = "none"
	}

	textBody := fmt.Sprintf(`A security incident was reported.

Incident ID: %s
Type:        %s
Severity:    %s
Reported:    %s
Related users: %s

%s

Review it in the admin dashboard and resolve it once handled.
`,
		incident.ID,
		incident.Type,
		incident.Severity,
		incident.CreatedAt.Format(time.RFC3339),
		related,
		incident.Description,
	)

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{s.alertAddress},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send incident alert via SES",
			slog.String("incident_id", incident.ID),
			slog.Any("error", err))
		return fmt.Errorf("failed to send alert: %w", err)
	}

	s.logger.Info("incident alert sent",
		slog.String("incident_id", incident.ID),
		slog.String("message_id", *result.MessageId))

	return nil
}
