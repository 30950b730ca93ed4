package services

import (
	"log/slog"
	"time"

	"github.com/SAP-F-2025/mmse-service/internal/cache"
	"github.com/SAP-F-2025/mmse-service/internal/events"
	"github.com/SAP-F-2025/mmse-service/internal/metrics"
	"github.com/SAP-F-2025/mmse-service/internal/repositories"
	"github.com/SAP-F-2025/mmse-service/internal/scoring"
	"github.com/SAP-F-2025/mmse-service/internal/storage"
	"github.com/SAP-F-2025/mmse-service/internal/validator"
)

// Dependencies are the collaborators shared by every service. Only Repo is
// required; the rest fall back to in-process defaults.
type Dependencies struct {
	Repo      repositories.Repository
	Engine    *scoring.Engine
	Validator *validator.Validator
	Cache     cache.CacheService
	CacheTTL  time.Duration
	Drawings  storage.DrawingStore
	Publisher events.EventPublisher
	Metrics   *metrics.Metrics
	Clock     Clock
	DBTimeout time.Duration
	Logger    *slog.Logger
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Engine == nil {
		d.Engine = scoring.NewEngine()
	}
	if d.Validator == nil {
		d.Validator = validator.New()
	}
	if d.Cache == nil {
		d.Cache = cache.NewNoopCache()
	}
	if d.CacheTTL <= 0 {
		d.CacheTTL = 10 * time.Minute
	}
	if d.Drawings == nil {
		d.Drawings = storage.InlineStore{}
	}
	if d.Publisher == nil {
		d.Publisher = events.NewDiscardEventPublisher(d.Logger)
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New(false)
	}
	if d.Clock == nil {
		d.Clock = SystemClock()
	}
	if d.DBTimeout <= 0 {
		d.DBTimeout = 5 * time.Second
	}
	return d
}

// ServiceManager hands out the services to the HTTP layer.
type ServiceManager interface {
	Assessment() AssessmentService
	Share() ShareService
	Export() ExportService
	User() UserService
	Notification() NotificationEventService
}

type serviceManager struct {
	assessment   AssessmentService
	share        ShareService
	export       ExportService
	user         UserService
	notification NotificationEventService
}

func NewServiceManager(deps Dependencies) ServiceManager {
	deps = deps.withDefaults()
	notifier := NewNotificationEventService(deps.Publisher, deps.Logger)

	return &serviceManager{
		assessment:   newAssessmentService(deps, notifier),
		share:        newShareService(deps, notifier),
		export:       NewExportService(deps.Repo, deps.Logger),
		user:         NewUserService(deps),
		notification: notifier,
	}
}

func (m *serviceManager) Assessment() AssessmentService          { return m.assessment }
func (m *serviceManager) Share() ShareService                    { return m.share }
func (m *serviceManager) Export() ExportService                  { return m.export }
func (m *serviceManager) User() UserService                      { return m.user }
func (m *serviceManager) Notification() NotificationEventService { return m.notification }
