package models

import (
	"time"

	"github.com/SAP-F-2025/mmse-service/internal/scoring"
)

// SubmitAssessmentRequest is the body of a submission. The answer sections
// sit at the top level next to the client's own total and interpretation.
type SubmitAssessmentRequest struct {
	scoring.AnswerPayload

	Locale         string   `json:"locale" validate:"omitempty,mmse_locale"`
	TotalScore     *float64 `json:"totalScore" validate:"required"`
	Interpretation string   `json:"interpretation" validate:"max=100"`
	DrawingImage   string   `json:"drawingImage,omitempty"`
}

// Assertion returns what the client claims it scored.
func (r *SubmitAssessmentRequest) Assertion() scoring.ClientAssertion {
	return scoring.ClientAssertion{
		TotalScore:     r.TotalScore,
		Interpretation: r.Interpretation,
	}
}

// PreviewRequest scores an answer sheet without storing it.
type PreviewRequest struct {
	scoring.AnswerPayload

	Locale string `json:"locale" validate:"omitempty,mmse_locale"`
}

type ShareAssessmentRequest struct {
	AssessmentID string `json:"assessmentId" validate:"required,uuid_id"`
	DoctorID     string `json:"doctorId" validate:"required,max=255"`
}

// AssessmentListRequest carries the list query of a patient.
type AssessmentListRequest struct {
	Page     int        `form:"page" validate:"omitempty,min=1"`
	Limit    int        `form:"limit" validate:"omitempty,min=1,max=100"`
	Locale   string     `form:"locale" validate:"omitempty,mmse_locale"`
	DateFrom *time.Time `form:"dateFrom" time_format:"2006-01-02"`
	DateTo   *time.Time `form:"dateTo" time_format:"2006-01-02"`
}

type ShareListRequest struct {
	Page  int `form:"page" validate:"omitempty,min=1"`
	Limit int `form:"limit" validate:"omitempty,min=1,max=100"`
}

// Pagination describes one page of a list response.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	Total       int64 `json:"total"`
	Limit       int   `json:"limit"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// NewPagination computes page metadata for total rows.
func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  pages,
		Total:       total,
		Limit:       limit,
		HasNextPage: page < pages,
		HasPrevPage: page > 1,
	}
}
