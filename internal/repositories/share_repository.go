package repositories

import (
	"context"

	"github.com/SAP-F-2025/mmse-service/internal/models"
)

// ShareRepository stores the (submission, doctor) grants. Create returns an
// error satisfying IsDuplicateError when the pair already exists.
type ShareRepository interface {
	Create(ctx context.Context, share *models.SharedAssessment) error
	GetByID(ctx context.Context, id string) (*models.SharedAssessment, error)
	Exists(ctx context.Context, assessmentID, doctorID string) (bool, error)

	// GetByDoctor lists shares received by a doctor, newest first, with the
	// assessment and patient preloaded.
	GetByDoctor(ctx context.Context, doctorID string, filters ShareFilters) ([]*models.SharedAssessment, int64, error)
	GetByAssessment(ctx context.Context, assessmentID string) ([]*models.SharedAssessment, error)
}
