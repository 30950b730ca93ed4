package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/mmse-service/internal/events"
	"github.com/SAP-F-2025/mmse-service/internal/models"
	"github.com/SAP-F-2025/mmse-service/internal/scoring"
)

// NotificationEventService turns service outcomes into published events.
type NotificationEventService interface {
	NotifyAssessmentSubmitted(ctx context.Context, assessment *models.MMSEAssessment) error
	NotifyAssessmentShared(ctx context.Context, share *models.SharedAssessment, assessment *models.MMSEAssessment, patientName string) error
	NotifyScoreDiscrepancy(ctx context.Context, patientID string, outcome scoring.ReconciliationOutcome) error
}

type notificationEventService struct {
	eventPublisher events.EventPublisher
	logger         *slog.Logger
}

func NewNotificationEventService(eventPublisher events.EventPublisher, logger *slog.Logger) NotificationEventService {
	return &notificationEventService{
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

func (s *notificationEventService) NotifyAssessmentSubmitted(ctx context.Context, assessment *models.MMSEAssessment) error {
	s.logger.Info("Publishing assessment submitted event", "assessment_id", assessment.ID)

	event := events.NewAssessmentSubmittedEvent(events.AssessmentSubmittedEvent{
		AssessmentID:   assessment.ID,
		PatientID:      assessment.UserID,
		Locale:         assessment.Locale,
		TotalScore:     assessment.TotalScore,
		Interpretation: assessment.Interpretation,
		SubmittedAt:    assessment.AssessmentDate,
	})
	return s.publish(ctx, event)
}

// NotifyAssessmentShared tells the doctor a result is waiting for them.
func (s *notificationEventService) NotifyAssessmentShared(ctx context.Context, share *models.SharedAssessment, assessment *models.MMSEAssessment, patientName string) error {
	s.logger.Info("Publishing assessment shared event",
		"share_id", share.ID,
		"doctor_id", share.DoctorID)

	event := events.NewAssessmentSharedEvent(events.AssessmentSharedEvent{
		ShareID:      share.ID,
		AssessmentID: share.AssessmentID,
		PatientID:    share.PatientID,
		PatientName:  patientName,
		DoctorID:     share.DoctorID,
		Language:     share.Language,
		TotalScore:   assessment.TotalScore,
		SharedAt:     share.SharedAt,
	})
	return s.publish(ctx, event)
}

func (s *notificationEventService) NotifyScoreDiscrepancy(ctx context.Context, patientID string, outcome scoring.ReconciliationOutcome) error {
	var client float64
	if outcome.ClientTotal != nil {
		client = *outcome.ClientTotal
	}

	event := events.NewScoreDiscrepancyEvent(events.ScoreDiscrepancyEvent{
		PatientID:   patientID,
		Locale:      string(outcome.Server.Locale),
		ServerTotal: outcome.Server.TotalScore,
		ClientTotal: client,
		Difference:  outcome.Discrepancy,
	}, outcome.Server.ReferenceTime)
	return s.publish(ctx, event)
}

func (s *notificationEventService) publish(ctx context.Context, event *events.NotificationEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if err := s.eventPublisher.PublishNotificationEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}
