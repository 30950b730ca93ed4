package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/mmse-service/internal/cache"
	"github.com/SAP-F-2025/mmse-service/internal/metrics"
	"github.com/SAP-F-2025/mmse-service/internal/models"
	"github.com/SAP-F-2025/mmse-service/internal/repositories"
	"github.com/SAP-F-2025/mmse-service/internal/scoring"
	"github.com/SAP-F-2025/mmse-service/internal/storage"
	"github.com/SAP-F-2025/mmse-service/internal/validator"
	"gorm.io/datatypes"
)

type assessmentService struct {
	repo      repositories.Repository
	engine    *scoring.Engine
	validator *validator.Validator
	cache     cache.CacheService
	cacheTTL  time.Duration
	drawings  storage.DrawingStore
	notifier  NotificationEventService
	metrics   *metrics.Metrics
	clock     Clock
	dbTimeout time.Duration
	logger    *slog.Logger
	log       *ServiceLogger
}

func NewAssessmentService(deps Dependencies) AssessmentService {
	deps = deps.withDefaults()
	return newAssessmentService(deps, NewNotificationEventService(deps.Publisher, deps.Logger))
}

func newAssessmentService(deps Dependencies, notifier NotificationEventService) *assessmentService {
	return &assessmentService{
		repo:      deps.Repo,
		engine:    deps.Engine,
		validator: deps.Validator,
		cache:     deps.Cache,
		cacheTTL:  deps.CacheTTL,
		drawings:  deps.Drawings,
		notifier:  notifier,
		metrics:   deps.Metrics,
		clock:     deps.Clock,
		dbTimeout: deps.DBTimeout,
		logger:    deps.Logger,
		log:       NewServiceLogger(deps.Logger, "assessment"),
	}
}

// ===== SCORING =====

func (s *assessmentService) Preview(ctx context.Context, req *models.PreviewRequest) (*PreviewResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	locale, err := scoring.ParseLocale(req.Locale)
	if err != nil {
		return nil, err
	}

	record, err := s.engine.Score(req.AnswerPayload, locale, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to score preview: %w", err)
	}

	return &PreviewResponse{
		ScoreRecord:    record,
		ObjectFeedback: scoring.NamingFeedback(req.Language),
	}, nil
}

// Submit scores the answers against the current time and stores the server
// result. The client's own total only feeds the discrepancy check.
func (s *assessmentService) Submit(ctx context.Context, req *models.SubmitAssessmentRequest, caller Caller) (*SubmitResponse, error) {
	op := s.log.WithOperation(ctx, "submit_assessment", caller.ID)
	resp, err := s.submit(ctx, req, caller)

	resourceID := ""
	if resp != nil {
		resourceID = resp.AssessmentID
	}
	op.LogResult(resourceID, "mmse_assessment", err)
	return resp, err
}

func (s *assessmentService) submit(ctx context.Context, req *models.SubmitAssessmentRequest, caller Caller) (*SubmitResponse, error) {
	if caller.ID == "" {
		return nil, ErrUnauthorized
	}
	if caller.Role != models.RolePatient {
		return nil, NewPermissionError(caller.ID, "", "assessment", "submit", "only patients submit assessments")
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	locale, err := scoring.ParseLocale(req.Locale)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	outcome, err := s.engine.Evaluate(req.AnswerPayload, locale, now, req.Assertion())
	if err != nil {
		return nil, fmt.Errorf("failed to score assessment: %w", err)
	}
	if outcome.Discrepant() {
		s.reportDiscrepancy(ctx, caller.ID, outcome)
	}

	record := outcome.Accepted
	assessment, err := s.buildAssessment(ctx, req, caller.ID, record, now)
	if err != nil {
		return nil, err
	}

	dbCtx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	if err := s.repo.User().Upsert(dbCtx, callerUser(caller)); err != nil {
		s.discardDrawing(ctx, assessment)
		return nil, fmt.Errorf("failed to sync user: %w", err)
	}
	if err := s.repo.Assessment().Create(dbCtx, assessment); err != nil {
		s.discardDrawing(ctx, assessment)
		return nil, fmt.Errorf("failed to save assessment: %w", err)
	}

	s.invalidateUserLists(ctx, caller.ID)
	s.metrics.ObserveSubmission(string(locale), record.TotalScore, record.TotalScore < scoring.Cutoff)

	if err := s.notifier.NotifyAssessmentSubmitted(ctx, assessment); err != nil {
		s.logger.Error("Failed to publish submission event", "assessment_id", assessment.ID, "error", err)
	}

	return &SubmitResponse{
		AssessmentID:   assessment.ID,
		TotalScore:     record.TotalScore,
		Interpretation: record.Interpretation,
		SectionScores:  record.SectionScores,
	}, nil
}

func (s *assessmentService) buildAssessment(ctx context.Context, req *models.SubmitAssessmentRequest, userID string, record scoring.ScoreRecord, now time.Time) (*models.MMSEAssessment, error) {
	answers, err := json.Marshal(req.AnswerPayload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}

	assessment := &models.MMSEAssessment{
		UserID:            userID,
		Locale:            string(record.Locale),
		OrientationScore:  record.SectionScores.Orientation,
		RegistrationScore: record.SectionScores.Registration,
		AttentionScore:    record.SectionScores.Attention,
		RecallScore:       record.SectionScores.Recall,
		LanguageScore:     record.SectionScores.Language,
		TotalScore:        record.TotalScore,
		Interpretation:    record.Interpretation,
		Answers:           datatypes.JSON(answers),
		ReferenceTime:     record.ReferenceTime,
		AssessmentDate:    now.UTC(),
	}

	if req.DrawingImage != "" {
		ref, err := s.drawings.Save(ctx, userID, req.DrawingImage)
		if errors.Is(err, storage.ErrMalformedDataURL) {
			return nil, ValidationErrors{{
				Field:   "drawingImage",
				Message: "must be a base64 data URL",
				Rule:    "data_url",
			}}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to store drawing: %w", err)
		}
		assessment.DrawingRef = &ref
	}
	return assessment, nil
}

// discardDrawing removes an uploaded drawing whose row was never written.
func (s *assessmentService) discardDrawing(ctx context.Context, assessment *models.MMSEAssessment) {
	if assessment.DrawingRef == nil {
		return
	}
	if err := s.drawings.Delete(ctx, *assessment.DrawingRef); err != nil {
		s.logger.Warn("Failed to remove orphaned drawing", "user_id", assessment.UserID, "error", err)
	}
}

// reportDiscrepancy never fails the submission.
func (s *assessmentService) reportDiscrepancy(ctx context.Context, userID string, outcome scoring.ReconciliationOutcome) {
	s.logger.Warn("Score mismatch",
		"user_id", userID,
		"locale", outcome.Server.Locale,
		"client_total", *outcome.ClientTotal,
		"server_total", outcome.Server.TotalScore,
		"warnings", outcome.Warnings)

	s.metrics.ObserveDiscrepancy(string(outcome.Server.Locale))
	if err := s.notifier.NotifyScoreDiscrepancy(ctx, userID, outcome); err != nil {
		s.logger.Error("Failed to publish discrepancy event", "user_id", userID, "error", err)
	}
}

// ===== RETRIEVAL =====

func (s *assessmentService) List(ctx context.Context, req *models.AssessmentListRequest, caller Caller) (*AssessmentListResponse, error) {
	if caller.ID == "" {
		return nil, ErrUnauthorized
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	page, limit := normalizePage(req.Page, req.Limit)
	filters := repositories.AssessmentFilters{
		DateFrom:  req.DateFrom,
		DateTo:    req.DateTo,
		Limit:     limit,
		Offset:    (page - 1) * limit,
		SortBy:    "assessment_date",
		SortOrder: "desc",
	}

	var localeCode string
	if req.Locale != "" {
		locale, err := scoring.ParseLocale(req.Locale)
		if err != nil {
			return nil, err
		}
		localeCode = string(locale)
		filters.Locale = &localeCode
	}

	cacheable := req.DateFrom == nil && req.DateTo == nil
	cacheKey := cache.UserAssessmentsKey(caller.ID, localeCode, page, limit)
	if cacheable {
		var cached AssessmentListResponse
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	dbCtx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	assessments, total, err := s.repo.Assessment().GetByUser(dbCtx, caller.ID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}

	resp := &AssessmentListResponse{
		Assessments: assessments,
		Pagination:  models.NewPagination(page, limit, total),
	}
	if cacheable {
		s.cacheSet(ctx, cacheKey, resp)
	}
	return resp, nil
}

func (s *assessmentService) Get(ctx context.Context, id string, caller Caller) (*models.MMSEAssessment, error) {
	if caller.ID == "" {
		return nil, ErrUnauthorized
	}

	assessment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkReadAccess(ctx, assessment, caller); err != nil {
		return nil, err
	}

	s.log.LogAudit(ctx, AuditEventRead, caller.ID, assessment.ID, "mmse_assessment", map[string]any{
		"owner_id": assessment.UserID,
	})
	return assessment, nil
}

// load reads through the cache. Submissions never change, so a cached copy
// is always current.
func (s *assessmentService) load(ctx context.Context, id string) (*models.MMSEAssessment, error) {
	var cached models.MMSEAssessment
	if err := s.cache.Get(ctx, cache.AssessmentKey(id), &cached); err == nil {
		return &cached, nil
	}

	dbCtx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	assessment, err := s.repo.Assessment().GetByID(dbCtx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	s.cacheSet(ctx, cache.AssessmentKey(id), assessment)
	return assessment, nil
}

func (s *assessmentService) checkReadAccess(ctx context.Context, assessment *models.MMSEAssessment, caller Caller) error {
	if assessment.UserID == caller.ID {
		return nil
	}
	if caller.Role == models.RoleDoctor {
		dbCtx, cancel := context.WithTimeout(ctx, s.dbTimeout)
		defer cancel()

		shared, err := s.repo.Share().Exists(dbCtx, assessment.ID, caller.ID)
		if err != nil {
			return fmt.Errorf("failed to check share: %w", err)
		}
		if shared {
			return nil
		}
	}
	return NewPermissionError(caller.ID, assessment.ID, "assessment", "read", "not the owner and not shared with caller")
}

// ===== HELPERS =====

func (s *assessmentService) cacheSet(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("Failed to cache value", "key", key, "error", err)
	}
}

func (s *assessmentService) invalidateUserLists(ctx context.Context, userID string) {
	if err := s.cache.DeletePattern(ctx, cache.UserAssessmentsPattern(userID)); err != nil {
		s.logger.Warn("Failed to invalidate assessment lists", "user_id", userID, "error", err)
	}
}

// callerUser maps token claims onto the local user mirror.
func callerUser(caller Caller) *models.User {
	name := caller.FullName
	if name == "" {
		name = caller.Email
	}
	if name == "" {
		name = caller.ID
	}
	return &models.User{
		ID:       caller.ID,
		FullName: name,
		Email:    caller.Email,
		Role:     caller.Role,
		IsActive: true,
	}
}
