package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/mmse-service/internal/models"
	"github.com/SAP-F-2025/mmse-service/internal/repositories"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var shareSortColumns = map[string]string{
	"": "shared_at",
}

type SharePostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewSharePostgreSQL(db *gorm.DB) repositories.ShareRepository {
	return &SharePostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// Create inserts a share. The unique index on (assessment_id, doctor_id)
// rejects repeats even when two requests race past the service check.
func (s *SharePostgreSQL) Create(ctx context.Context, share *models.SharedAssessment) error {
	if share.ID == "" {
		share.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(share).Error; err != nil {
		return fmt.Errorf("failed to create share: %w", err)
	}
	return nil
}

func (s *SharePostgreSQL) GetByID(ctx context.Context, id string) (*models.SharedAssessment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, gorm.ErrRecordNotFound
	}

	var share models.SharedAssessment
	err := s.db.WithContext(ctx).
		Preload("Assessment").
		Preload("Patient").
		Preload("Doctor").
		Where("id = ?", id).
		First(&share).Error
	if err != nil {
		return nil, err
	}
	return &share, nil
}

func (s *SharePostgreSQL) Exists(ctx context.Context, assessmentID, doctorID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.SharedAssessment{}).
		Where("assessment_id = ? AND doctor_id = ?", assessmentID, doctorID).
		Count(&count).Error
	return count > 0, err
}

func (s *SharePostgreSQL) GetByDoctor(ctx context.Context, doctorID string, filters repositories.ShareFilters) ([]*models.SharedAssessment, int64, error) {
	filters.DoctorID = &doctorID

	query := s.db.WithContext(ctx).Model(&models.SharedAssessment{})
	query = s.helpers.ApplyShareFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = s.helpers.ApplyPaginationAndSort(query, shareSortColumns, "", filters.SortOrder, filters.Limit, filters.Offset)

	var shares []*models.SharedAssessment
	if err := query.Preload("Assessment").Preload("Patient").Find(&shares).Error; err != nil {
		return nil, 0, err
	}
	return shares, total, nil
}

func (s *SharePostgreSQL) GetByAssessment(ctx context.Context, assessmentID string) ([]*models.SharedAssessment, error) {
	var shares []*models.SharedAssessment
	err := s.db.WithContext(ctx).
		Where("assessment_id = ?", assessmentID).
		Preload("Doctor").
		Order("shared_at DESC").
		Find(&shares).Error
	if err != nil {
		return nil, err
	}
	return shares, nil
}
