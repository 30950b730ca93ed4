package postgres

import (
	"github.com/SAP-F-2025/mmse-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	assessment repositories.AssessmentRepository
	share      repositories.ShareRepository
	user       repositories.UserRepository
}

// NewRepository wires the postgres repositories over one connection.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		assessment: NewAssessmentPostgreSQL(db),
		share:      NewSharePostgreSQL(db),
		user:       NewUserPostgreSQL(db),
	}
}

func (r *repository) Assessment() repositories.AssessmentRepository { return r.assessment }
func (r *repository) Share() repositories.ShareRepository           { return r.share }
func (r *repository) User() repositories.UserRepository             { return r.user }
