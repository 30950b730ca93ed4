package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/mmse-service/internal/models"
	"github.com/SAP-F-2025/mmse-service/internal/repositories"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssessmentPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewAssessmentPostgreSQL(db *gorm.DB) repositories.AssessmentRepository {
	return &AssessmentPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// Create inserts a submission, assigning an id when none is set.
func (a *AssessmentPostgreSQL) Create(ctx context.Context, assessment *models.MMSEAssessment) error {
	if assessment.ID == "" {
		assessment.ID = uuid.NewString()
	}
	if err := a.db.WithContext(ctx).Create(assessment).Error; err != nil {
		return fmt.Errorf("failed to create assessment: %w", err)
	}
	return nil
}

// GetByID retrieves a submission by ID
func (a *AssessmentPostgreSQL) GetByID(ctx context.Context, id string) (*models.MMSEAssessment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, gorm.ErrRecordNotFound
	}

	var assessment models.MMSEAssessment
	err := a.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&assessment).Error
	if err != nil {
		return nil, err
	}

	return &assessment, nil
}

// List retrieves submissions with filters and pagination
func (a *AssessmentPostgreSQL) List(ctx context.Context, filters repositories.AssessmentFilters) ([]*models.MMSEAssessment, int64, error) {
	query := a.db.WithContext(ctx).Model(&models.MMSEAssessment{})
	query = a.helpers.ApplyAssessmentFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = a.helpers.ApplyPaginationAndSort(query, assessmentSortColumns, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var assessments []*models.MMSEAssessment
	if err := query.Find(&assessments).Error; err != nil {
		return nil, 0, err
	}

	return assessments, total, nil
}

// GetByUser retrieves the submissions of one user
func (a *AssessmentPostgreSQL) GetByUser(ctx context.Context, userID string, filters repositories.AssessmentFilters) ([]*models.MMSEAssessment, int64, error) {
	filters.UserID = &userID
	return a.List(ctx, filters)
}

func (a *AssessmentPostgreSQL) IsOwner(ctx context.Context, assessmentID, userID string) (bool, error) {
	if _, err := uuid.Parse(assessmentID); err != nil {
		return false, nil
	}
	var count int64
	err := a.db.WithContext(ctx).
		Model(&models.MMSEAssessment{}).
		Where("id = ? AND user_id = ?", assessmentID, userID).
		Count(&count).Error
	return count > 0, err
}
