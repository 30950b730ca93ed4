package handlers

import (
	"errors"
	"net/http"

	"github.com/SAP-F-2025/mmse-service/internal/i18n"
	"github.com/SAP-F-2025/mmse-service/internal/services"
	"github.com/SAP-F-2025/mmse-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

// NewBaseHandler creates a new base handler with logging capability
func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// requestLogger prefers the request scoped logger set by ContextLogger.
func (h *BaseHandler) requestLogger(c *gin.Context) utils.Logger {
	if _, ok := c.Get("logger"); ok {
		return utils.GetLoggerFromContext(c)
	}
	return h.logger.With(
		"request_id", utils.GetRequestID(c),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)
}

// LogRequest logs the start of a handler with the caller attached
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := append([]interface{}{"user_id", c.GetString(userIDKey)}, additionalFields...)
	h.requestLogger(c).Info(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := append([]interface{}{"user_id", c.GetString(userIDKey)}, additionalFields...)
	h.requestLogger(c).LogError(err, message, fields...)
}

// LogWarn logs warning messages with context
func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := append([]interface{}{"user_id", c.GetString(userIDKey)}, additionalFields...)
	h.requestLogger(c).Warn(message, fields...)
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, details ...interface{}) {
	errorResp := ErrorResponse{
		Message: message,
	}

	if len(details) > 0 {
		errorResp.Details = details[0]
	}

	if err != nil {
		h.LogError(c, err, message, "status_code", statusCode)
	} else {
		h.LogWarn(c, message, "status_code", statusCode)
	}

	c.AbortWithStatusJSON(statusCode, errorResp)
}

// RespondWithSuccess sends a message with an optional payload
func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Message: message,
		Data:    data,
	})
}

// handleServiceError maps service errors onto HTTP responses. Unknown errors
// are logged and answered without details.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.RespondWithError(c, http.StatusBadRequest, i18n.T(ctx, "ValidationFailed"), nil, validationErrors)
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		h.RespondWithError(c, http.StatusForbidden, i18n.T(ctx, "Forbidden"), nil, map[string]interface{}{
			"resource": permissionError.Resource,
			"action":   permissionError.Action,
		})
		return
	}

	switch {
	case services.IsUnauthorized(err):
		h.RespondWithError(c, http.StatusUnauthorized, i18n.T(ctx, "Unauthorized"), nil)
	case services.IsForbidden(err):
		h.RespondWithError(c, http.StatusForbidden, i18n.T(ctx, "Forbidden"), nil)
	case services.IsValidation(err):
		h.RespondWithError(c, http.StatusBadRequest, i18n.T(ctx, "ValidationFailed"), nil)
	case errors.Is(err, services.ErrShareExists):
		h.RespondWithError(c, http.StatusConflict, i18n.T(ctx, "AlreadyShared"), nil)
	case services.IsConflict(err):
		h.RespondWithError(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, services.ErrAssessmentNotFound):
		h.RespondWithError(c, http.StatusNotFound, i18n.T(ctx, "AssessmentNotFound"), nil)
	case errors.Is(err, services.ErrShareNotFound):
		h.RespondWithError(c, http.StatusNotFound, i18n.T(ctx, "ShareNotFound"), nil)
	case errors.Is(err, services.ErrDoctorNotFound):
		h.RespondWithError(c, http.StatusNotFound, i18n.T(ctx, "DoctorNotFound"), nil)
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, i18n.T(ctx, "ShareNotFound"), nil)
	default:
		h.RespondWithError(c, http.StatusInternalServerError, i18n.T(ctx, "InternalError"), err)
	}
}
