package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/mmse-service/internal/i18n"
	"github.com/SAP-F-2025/mmse-service/internal/metrics"
	"github.com/SAP-F-2025/mmse-service/internal/services"
	"github.com/SAP-F-2025/mmse-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	assessmentHandler *AssessmentHandler
	shareHandler      *ShareHandler
	users             services.UserService
	verifier          TokenVerifier
	metrics           *metrics.Metrics
	logger            utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	verifier TokenVerifier,
	m *metrics.Metrics,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		assessmentHandler: NewAssessmentHandler(serviceManager.Assessment(), serviceManager.Export(), logger),
		shareHandler:      NewShareHandler(serviceManager.Share(), logger),
		users:             serviceManager.User(),
		verifier:          verifier,
		metrics:           m,
		logger:            logger,
	}
}

// NewRouter builds the gin engine with the request middleware chain and
// every route registered.
func (hm *HandlerManager) NewRouter() *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		utils.RequestID(),
		utils.LoggerMiddleware(hm.logger),
		utils.ContextLogger(hm.logger),
		i18n.Middleware(),
	)
	if hm.metrics != nil {
		router.Use(hm.metrics.Middleware())
	}

	hm.SetupRoutes(router)
	return router
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)
	if hm.metrics != nil {
		router.GET("/metrics", gin.WrapH(hm.metrics.Handler()))
	}

	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware(hm.verifier, hm.users, hm.logger))
	{
		assessments := v1.Group("/assessments")
		{
			assessments.POST("/preview", hm.assessmentHandler.PreviewAssessment)
			assessments.POST("", hm.assessmentHandler.SubmitAssessment)
			assessments.GET("", hm.assessmentHandler.ListAssessments)
			assessments.GET("/export", hm.assessmentHandler.ExportAssessments)
			assessments.GET("/:id", hm.assessmentHandler.GetAssessment)
			assessments.GET("/:id/shares", hm.shareHandler.ListRecipients)
		}

		shares := v1.Group("/shares")
		{
			shares.POST("", hm.shareHandler.ShareAssessment)
			shares.GET("", hm.shareHandler.ListShared)
			shares.GET("/:id", hm.shareHandler.GetShared)
		}

		v1.GET("/doctors", hm.shareHandler.ListDoctors)
	}
}

// HealthCheck reports liveness
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "mmse-service",
	})
}
