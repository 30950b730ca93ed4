package postgres

import (
	"fmt"
	"strings"

	"github.com/SAP-F-2025/mmse-service/internal/repositories"
	"gorm.io/gorm"
)

// SharedHelpers holds query building shared by the repositories.
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

var assessmentSortColumns = map[string]string{
	"":                "assessment_date",
	"assessment_date": "assessment_date",
	"total_score":     "total_score",
	"created_at":      "created_at",
}

// ApplyPaginationAndSort orders by an allow-listed column and applies
// limit/offset. Unknown columns fall back to the default.
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, columns map[string]string, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	column, ok := columns[sortBy]
	if !ok {
		column = columns[""]
	}
	direction := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		direction = "ASC"
	}
	// Tie-break on id so pages are stable.
	query = query.Order(fmt.Sprintf("%s %s", column, direction)).Order("id " + direction)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

// ApplyAssessmentFilters narrows an assessment query.
func (h *SharedHelpers) ApplyAssessmentFilters(query *gorm.DB, filters repositories.AssessmentFilters) *gorm.DB {
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.Locale != nil {
		query = query.Where("locale = ?", *filters.Locale)
	}
	if filters.DateFrom != nil {
		query = query.Where("assessment_date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("assessment_date <= ?", *filters.DateTo)
	}
	return query
}

// ApplyShareFilters narrows a share query.
func (h *SharedHelpers) ApplyShareFilters(query *gorm.DB, filters repositories.ShareFilters) *gorm.DB {
	if filters.DoctorID != nil {
		query = query.Where("doctor_id = ?", *filters.DoctorID)
	}
	if filters.PatientID != nil {
		query = query.Where("patient_id = ?", *filters.PatientID)
	}
	return query
}
