package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/SAP-F-2025/mmse-service/internal/models"
	"github.com/SAP-F-2025/mmse-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Assessments"

// exportPageSize bounds each read while walking a patient's history.
const exportPageSize = 100

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

var exportHeaders = []string{
	"Assessment ID", "Date", "Locale", "Orientation", "Registration",
	"Attention", "Recall", "Language", "Total", "Interpretation",
}

func (s *exportService) ExportAssessments(ctx context.Context, caller Caller, w io.Writer) error {
	if caller.ID == "" {
		return ErrUnauthorized
	}

	assessments, err := s.collect(ctx, caller.ID)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, header)
	}

	for rowIndex, a := range assessments {
		for colIndex, value := range exportRow(a) {
			cell, _ := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			f.SetCellValue(exportSheet, cell, value)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exported assessments", "user_id", caller.ID, "rows", len(assessments))
	return nil
}

func (s *exportService) collect(ctx context.Context, userID string) ([]*models.MMSEAssessment, error) {
	var all []*models.MMSEAssessment
	for offset := 0; ; offset += exportPageSize {
		page, total, err := s.repo.Assessment().GetByUser(ctx, userID, repositories.AssessmentFilters{
			Limit:     exportPageSize,
			Offset:    offset,
			SortBy:    "assessment_date",
			SortOrder: "desc",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list assessments: %w", err)
		}
		all = append(all, page...)
		if len(page) < exportPageSize || int64(len(all)) >= total {
			return all, nil
		}
	}
}

func exportRow(a *models.MMSEAssessment) []any {
	return []any{
		a.ID,
		a.AssessmentDate.UTC().Format("2006-01-02 15:04"),
		a.Locale,
		a.OrientationScore,
		a.RegistrationScore,
		a.AttentionScore,
		a.RecallScore,
		a.LanguageScore,
		a.TotalScore,
		a.Interpretation,
	}
}
