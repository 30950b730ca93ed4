package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/mmse-service/internal/cache"
	"github.com/SAP-F-2025/mmse-service/internal/metrics"
	"github.com/SAP-F-2025/mmse-service/internal/models"
	"github.com/SAP-F-2025/mmse-service/internal/repositories"
	"github.com/SAP-F-2025/mmse-service/internal/scoring"
	"github.com/SAP-F-2025/mmse-service/internal/validator"
)

type shareService struct {
	repo      repositories.Repository
	validator *validator.Validator
	cache     cache.CacheService
	cacheTTL  time.Duration
	notifier  NotificationEventService
	metrics   *metrics.Metrics
	clock     Clock
	dbTimeout time.Duration
	logger    *slog.Logger
	log       *ServiceLogger
}

func NewShareService(deps Dependencies) ShareService {
	deps = deps.withDefaults()
	return newShareService(deps, NewNotificationEventService(deps.Publisher, deps.Logger))
}

func newShareService(deps Dependencies, notifier NotificationEventService) *shareService {
	return &shareService{
		repo:      deps.Repo,
		validator: deps.Validator,
		cache:     deps.Cache,
		cacheTTL:  deps.CacheTTL,
		notifier:  notifier,
		metrics:   deps.Metrics,
		clock:     deps.Clock,
		dbTimeout: deps.DBTimeout,
		logger:    deps.Logger,
		log:       NewServiceLogger(deps.Logger, "share"),
	}
}

// Share grants a doctor access to one of the caller's submissions. Each
// (submission, doctor) pair can be shared once.
func (s *shareService) Share(ctx context.Context, req *models.ShareAssessmentRequest, caller Caller) (*models.SharedAssessment, error) {
	op := s.log.WithOperation(ctx, "share_assessment", caller.ID)
	share, err := s.share(ctx, req, caller)

	resourceID := ""
	if share != nil {
		resourceID = share.ID
		op.LogAudit(AuditEventShare, share.AssessmentID, "mmse_assessment", map[string]any{
			"doctor_id": share.DoctorID,
		})
	}
	op.LogResult(resourceID, "shared_assessment", err)
	return share, err
}

func (s *shareService) share(ctx context.Context, req *models.ShareAssessmentRequest, caller Caller) (*models.SharedAssessment, error) {
	if caller.ID == "" {
		return nil, ErrUnauthorized
	}
	if caller.Role != models.RolePatient {
		return nil, NewPermissionError(caller.ID, req.AssessmentID, "assessment", "share", "only patients share assessments")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	dbCtx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	owned, err := s.repo.Assessment().IsOwner(dbCtx, req.AssessmentID, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check owner: %w", err)
	}

	assessment, err := s.repo.Assessment().GetByID(dbCtx, req.AssessmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	if !owned {
		return nil, NewPermissionError(caller.ID, assessment.ID, "assessment", "share", "not the owner")
	}

	isDoctor, err := s.repo.User().HasRole(dbCtx, req.DoctorID, models.RoleDoctor)
	if err != nil {
		return nil, fmt.Errorf("failed to check doctor: %w", err)
	}
	if !isDoctor {
		return nil, ErrDoctorNotFound
	}

	exists, err := s.repo.Share().Exists(dbCtx, assessment.ID, req.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing share: %w", err)
	}
	if exists {
		return nil, ErrShareExists
	}

	share := &models.SharedAssessment{
		AssessmentID: assessment.ID,
		DoctorID:     req.DoctorID,
		PatientID:    caller.ID,
		Language:     scoring.Locale(assessment.Locale).DisplayName(),
		SharedAt:     s.clock.Now().UTC(),
	}
	if err := s.repo.Share().Create(dbCtx, share); err != nil {
		// Lost a race with an identical request.
		if repositories.IsDuplicateError(err) {
			return nil, ErrShareExists
		}
		return nil, fmt.Errorf("failed to save share: %w", err)
	}

	s.metrics.ObserveShare()
	if err := s.notifier.NotifyAssessmentShared(ctx, share, assessment, callerUser(caller).FullName); err != nil {
		s.logger.Error("Failed to publish share event", "share_id", share.ID, "error", err)
	}
	return share, nil
}

// ListForDoctor returns the caller's inbox, newest first.
func (s *shareService) ListForDoctor(ctx context.Context, req *models.ShareListRequest, caller Caller) (*ShareListResponse, error) {
	if caller.ID == "" {
		return nil, ErrUnauthorized
	}
	if caller.Role != models.RoleDoctor {
		return nil, NewPermissionError(caller.ID, "", "share", "list", "only doctors receive shares")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	page, limit := normalizePage(req.Page, req.Limit)

	dbCtx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	shares, total, err := s.repo.Share().GetByDoctor(dbCtx, caller.ID, repositories.ShareFilters{
		Limit:     limit,
		Offset:    (page - 1) * limit,
		SortOrder: "desc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}

	results := make([]SharedResult, 0, len(shares))
	for _, share := range shares {
		result := SharedResult{
			ID:       share.ID,
			SharedAt: share.SharedAt,
			Language: share.Language,
			Patient:  share.Patient,
		}
		if share.Assessment != nil {
			summary := share.Assessment.Summary()
			result.Assessment = &summary
		}
		results = append(results, result)
	}

	return &ShareListResponse{
		Shared:     results,
		Pagination: models.NewPagination(page, limit, total),
	}, nil
}

// Get returns a share with its full submission to the doctor it was shared
// with or to the patient who shared it.
func (s *shareService) Get(ctx context.Context, id string, caller Caller) (*ShareDetail, error) {
	if caller.ID == "" {
		return nil, ErrUnauthorized
	}

	dbCtx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	share, err := s.repo.Share().GetByID(dbCtx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrShareNotFound
		}
		return nil, fmt.Errorf("failed to get share: %w", err)
	}
	if share.DoctorID != caller.ID && share.PatientID != caller.ID {
		return nil, NewPermissionError(caller.ID, share.ID, "share", "read", "not a party to the share")
	}

	assessment := share.Assessment
	if assessment == nil {
		assessment, err = s.repo.Assessment().GetByID(dbCtx, share.AssessmentID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrAssessmentNotFound
			}
			return nil, fmt.Errorf("failed to get assessment: %w", err)
		}
	}

	s.log.LogAudit(ctx, AuditEventRead, caller.ID, share.AssessmentID, "mmse_assessment", map[string]any{
		"share_id": share.ID,
	})

	return &ShareDetail{
		ID:         share.ID,
		SharedAt:   share.SharedAt,
		Language:   share.Language,
		Patient:    share.Patient,
		Assessment: assessment,
	}, nil
}

// ListRecipients returns who a submission was shared with, newest first.
// Only the owner may ask.
func (s *shareService) ListRecipients(ctx context.Context, assessmentID string, caller Caller) ([]*models.SharedAssessment, error) {
	if caller.ID == "" {
		return nil, ErrUnauthorized
	}

	dbCtx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	owned, err := s.repo.Assessment().IsOwner(dbCtx, assessmentID, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check owner: %w", err)
	}
	if !owned {
		if _, err := s.repo.Assessment().GetByID(dbCtx, assessmentID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrAssessmentNotFound
			}
			return nil, fmt.Errorf("failed to get assessment: %w", err)
		}
		return nil, NewPermissionError(caller.ID, assessmentID, "assessment", "list_shares", "not the owner")
	}

	shares, err := s.repo.Share().GetByAssessment(dbCtx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipients: %w", err)
	}
	return shares, nil
}

// ListDoctors returns the active doctors a patient can share with.
func (s *shareService) ListDoctors(ctx context.Context) ([]*models.User, error) {
	var cached []*models.User
	if err := s.cache.Get(ctx, cache.DoctorsKey(), &cached); err == nil {
		return cached, nil
	}

	dbCtx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	doctors, err := s.repo.User().GetByRole(dbCtx, models.RoleDoctor, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}

	if err := s.cache.Set(ctx, cache.DoctorsKey(), doctors, s.cacheTTL); err != nil {
		s.logger.Warn("Failed to cache doctors", "error", err)
	}
	return doctors, nil
}
