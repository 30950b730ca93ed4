package services

import (
	"context"
	"io"
	"time"

	"github.com/SAP-F-2025/mmse-service/internal/models"
	"github.com/SAP-F-2025/mmse-service/internal/scoring"
)

// Caller is the authenticated user behind a request, taken from token claims.
type Caller struct {
	ID       string
	FullName string
	Email    string
	Role     models.UserRole
}

// Clock supplies the reference time for scoring.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
func SystemClock() Clock { return systemClock{} }

// ===== SERVICE INTERFACES =====

type AssessmentService interface {
	// Preview scores without storing anything.
	Preview(ctx context.Context, req *models.PreviewRequest) (*PreviewResponse, error)
	Submit(ctx context.Context, req *models.SubmitAssessmentRequest, caller Caller) (*SubmitResponse, error)
	List(ctx context.Context, req *models.AssessmentListRequest, caller Caller) (*AssessmentListResponse, error)
	// Get returns a submission to its owner or to a doctor it was shared with.
	Get(ctx context.Context, id string, caller Caller) (*models.MMSEAssessment, error)
}

type ShareService interface {
	Share(ctx context.Context, req *models.ShareAssessmentRequest, caller Caller) (*models.SharedAssessment, error)
	ListForDoctor(ctx context.Context, req *models.ShareListRequest, caller Caller) (*ShareListResponse, error)
	Get(ctx context.Context, id string, caller Caller) (*ShareDetail, error)
	// ListRecipients returns the shares of one submission to its owner.
	ListRecipients(ctx context.Context, assessmentID string, caller Caller) ([]*models.SharedAssessment, error)
	ListDoctors(ctx context.Context) ([]*models.User, error)
}

// UserService mirrors identity provider accounts into the users table so
// doctors can be found and shared with.
type UserService interface {
	Sync(ctx context.Context, caller Caller) error
}

type ExportService interface {
	// ExportAssessments writes the caller's submissions as an xlsx workbook.
	ExportAssessments(ctx context.Context, caller Caller, w io.Writer) error
}

// ===== RESPONSES =====

type PreviewResponse struct {
	scoring.ScoreRecord
	ObjectFeedback scoring.ObjectFeedback `json:"objectFeedback"`
}

type SubmitResponse struct {
	Message        string                `json:"message"`
	AssessmentID   string                `json:"assessmentId"`
	TotalScore     int                   `json:"totalScore"`
	Interpretation string                `json:"interpretation"`
	SectionScores  scoring.SectionScores `json:"sectionScores"`
}

type AssessmentListResponse struct {
	Assessments []*models.MMSEAssessment `json:"assessments"`
	Pagination  models.Pagination        `json:"pagination"`
}

// SharedResult is one row of a doctor's inbox.
type SharedResult struct {
	ID         string                    `json:"id"`
	SharedAt   time.Time                 `json:"sharedAt"`
	Language   string                    `json:"language"`
	Patient    *models.User              `json:"patient"`
	Assessment *models.AssessmentSummary `json:"assessment"`
}

type ShareListResponse struct {
	Shared     []SharedResult    `json:"shared"`
	Pagination models.Pagination `json:"pagination"`
}

// ShareDetail is a share with the full submission.
type ShareDetail struct {
	ID         string                 `json:"id"`
	SharedAt   time.Time              `json:"sharedAt"`
	Language   string                 `json:"language"`
	Patient    *models.User           `json:"patient"`
	Assessment *models.MMSEAssessment `json:"assessment"`
}

// ===== PAGINATION =====

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}
