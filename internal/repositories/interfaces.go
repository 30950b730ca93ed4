package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type AssessmentFilters struct {
	UserID    *string    `json:"user_id"`
	Locale    *string    `json:"locale"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`    // "assessment_date", "total_score"
	SortOrder string     `json:"sort_order"` // "asc", "desc"
}

type ShareFilters struct {
	DoctorID  *string `json:"doctor_id"`
	PatientID *string `json:"patient_id"`
	Limit     int     `json:"limit"`
	Offset    int     `json:"offset"`
	SortOrder string  `json:"sort_order"`
}

// ===== AGGREGATE =====

// Repository groups the repositories so services can share one dependency.
type Repository interface {
	Assessment() AssessmentRepository
	Share() ShareRepository
	User() UserRepository
}

// ===== ERROR HELPERS =====

// IsNotFoundError reports whether err means the row does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports whether err is a unique constraint violation. The
// database must be opened with TranslateError enabled.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
