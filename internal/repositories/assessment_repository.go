package repositories

import (
	"context"

	"github.com/SAP-F-2025/mmse-service/internal/models"
)

// AssessmentRepository stores scored submissions. There is no update or
// delete: a submission is immutable once written.
type AssessmentRepository interface {
	Create(ctx context.Context, assessment *models.MMSEAssessment) error
	GetByID(ctx context.Context, id string) (*models.MMSEAssessment, error)

	// List returns one page and the total number of matching rows.
	List(ctx context.Context, filters AssessmentFilters) ([]*models.MMSEAssessment, int64, error)
	GetByUser(ctx context.Context, userID string, filters AssessmentFilters) ([]*models.MMSEAssessment, int64, error)

	IsOwner(ctx context.Context, assessmentID, userID string) (bool, error)
}
