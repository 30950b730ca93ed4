package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of notification events
type EventType string

const (
	EventAssessmentSubmitted EventType = "assessment.submitted"
	EventAssessmentShared    EventType = "assessment.shared"
	EventScoreDiscrepancy    EventType = "score.discrepancy"
)

const (
	eventSource  = "mmse-service"
	eventVersion = "1.0"
)

// NotificationEvent is the envelope of every published event
type NotificationEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type AssessmentSubmittedEvent struct {
	AssessmentID   string    `json:"assessment_id"`
	PatientID      string    `json:"patient_id"`
	Locale         string    `json:"locale"`
	TotalScore     int       `json:"total_score"`
	Interpretation string    `json:"interpretation"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// AssessmentSharedEvent tells a doctor a patient shared a result with them.
type AssessmentSharedEvent struct {
	ShareID      string    `json:"share_id"`
	AssessmentID string    `json:"assessment_id"`
	PatientID    string    `json:"patient_id"`
	PatientName  string    `json:"patient_name,omitempty"`
	DoctorID     string    `json:"doctor_id"`
	Language     string    `json:"language"`
	TotalScore   int       `json:"total_score"`
	SharedAt     time.Time `json:"shared_at"`
}

type ScoreDiscrepancyEvent struct {
	AssessmentID string  `json:"assessment_id,omitempty"`
	PatientID    string  `json:"patient_id"`
	Locale       string  `json:"locale"`
	ServerTotal  int     `json:"server_total"`
	ClientTotal  float64 `json:"client_total"`
	Difference   float64 `json:"difference"`
}

func newEvent(t EventType, at time.Time, data interface{}) *NotificationEvent {
	return &NotificationEvent{
		ID:        generateEventID(),
		Type:      t,
		Timestamp: at,
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

func NewAssessmentSubmittedEvent(data AssessmentSubmittedEvent) *NotificationEvent {
	return newEvent(EventAssessmentSubmitted, data.SubmittedAt, data)
}

func NewAssessmentSharedEvent(data AssessmentSharedEvent) *NotificationEvent {
	e := newEvent(EventAssessmentShared, data.SharedAt, data)
	e.Metadata = map[string]interface{}{"recipient_id": data.DoctorID}
	return e
}

func NewScoreDiscrepancyEvent(data ScoreDiscrepancyEvent, at time.Time) *NotificationEvent {
	return newEvent(EventScoreDiscrepancy, at, data)
}

func generateEventID() string {
	return uuid.NewString()
}
