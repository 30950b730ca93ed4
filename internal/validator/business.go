package validator

import (
	"fmt"
	"math"

	"github.com/SAP-F-2025/mmse-service/internal/models"
	"github.com/SAP-F-2025/mmse-service/internal/scoring"
)

// BusinessValidator checks rules that struct tags cannot express.
type BusinessValidator struct{}

func NewBusinessValidator() *BusinessValidator {
	return &BusinessValidator{}
}

// Validate dispatches on the request type. Types without business rules pass.
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	switch req := s.(type) {
	case *models.SubmitAssessmentRequest:
		return bv.ValidateSubmission(req)
	case *models.PreviewRequest:
		return bv.validateSections(&req.AnswerPayload)
	}
	return nil
}

// ValidateSubmission checks that every section is present, the claimed total
// is a score the questionnaire can produce and the claimed interpretation is
// a label of the submission's locale.
func (bv *BusinessValidator) ValidateSubmission(req *models.SubmitAssessmentRequest) ValidationErrors {
	errs := bv.validateSections(&req.AnswerPayload)

	if req.TotalScore == nil {
		errs = append(errs, ValidationError{
			Field:   "totalScore",
			Message: "is required",
			Rule:    "required",
		})
	} else if v := *req.TotalScore; math.IsNaN(v) || v < 0 || v > scoring.MaxTotal {
		errs = append(errs, ValidationError{
			Field:   "totalScore",
			Message: fmt.Sprintf("must be a number between 0 and %d", scoring.MaxTotal),
			Value:   v,
			Rule:    "total_score_range",
		})
	}

	locale, err := scoring.ParseLocale(req.Locale)
	if err != nil {
		errs = append(errs, ValidationError{
			Field:   "locale",
			Message: "must be a supported locale (en, ur)",
			Value:   req.Locale,
			Rule:    "mmse_locale",
		})
		return errs
	}

	if req.Interpretation != "" {
		table, err := scoring.Table(locale)
		if err == nil && !table.ValidLabel(req.Interpretation) {
			errs = append(errs, ValidationError{
				Field:   "interpretation",
				Message: "must be one of the interpretation labels of the selected locale",
				Value:   req.Interpretation,
				Rule:    "interpretation_label",
			})
		}
	}

	return errs
}

func (bv *BusinessValidator) validateSections(p *scoring.AnswerPayload) ValidationErrors {
	var errs ValidationErrors
	missing := func(field string) {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: "section is required",
			Rule:    "section_required",
		})
	}

	if p.Orientation == nil {
		missing("orientation")
	}
	if p.Registration == nil {
		missing("registration")
	}
	if p.Attention == nil {
		missing("attention")
	}
	if p.Recall == nil {
		missing("recall")
	}
	if p.Language == nil {
		missing("language")
	}
	return errs
}
