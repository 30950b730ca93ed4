package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/SAP-F-2025/mmse-service/internal/i18n"
	"github.com/SAP-F-2025/mmse-service/internal/models"
	"github.com/SAP-F-2025/mmse-service/internal/services"
	"github.com/SAP-F-2025/mmse-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AssessmentHandler struct {
	BaseHandler
	assessmentService services.AssessmentService
	exportService     services.ExportService
}

func NewAssessmentHandler(
	assessmentService services.AssessmentService,
	exportService services.ExportService,
	logger utils.Logger,
) *AssessmentHandler {
	return &AssessmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		assessmentService: assessmentService,
		exportService:     exportService,
	}
}

// PreviewAssessment scores an answer sheet without storing it
// @Summary Preview score
// @Tags assessments
// @Accept json
// @Produce json
// @Param locale query string false "en or ur"
// @Success 200 {object} services.PreviewResponse
// @Failure 400 {object} ErrorResponse
// @Router /assessments/preview [post]
func (h *AssessmentHandler) PreviewAssessment(c *gin.Context) {
	var req models.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, i18n.T(c.Request.Context(), "InvalidRequestBody"), nil, err.Error())
		return
	}
	if locale := c.Query("locale"); locale != "" {
		req.Locale = locale
	}

	resp, err := h.assessmentService.Preview(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SubmitAssessment scores and stores a patient's answer sheet
// @Summary Submit assessment
// @Description The stored score is always the server's. The client total is only compared against it.
// @Tags assessments
// @Accept json
// @Produce json
// @Param locale query string false "en or ur"
// @Success 201 {object} services.SubmitResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /assessments [post]
func (h *AssessmentHandler) SubmitAssessment(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	var req models.SubmitAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, i18n.T(ctx, "InvalidRequestBody"), nil, err.Error())
		return
	}
	if locale := c.Query("locale"); locale != "" {
		req.Locale = locale
	}

	h.LogRequest(c, "Submitting assessment", "locale", req.Locale)

	resp, err := h.assessmentService.Submit(ctx, &req, caller)
	if err != nil {
		var validationErrors services.ValidationErrors
		if errors.As(err, &validationErrors) {
			h.RespondWithError(c, http.StatusBadRequest, i18n.T(ctx, submissionMessageID(validationErrors)), nil, validationErrors)
			return
		}
		h.handleServiceError(c, err)
		return
	}

	resp.Message = i18n.T(ctx, "AssessmentSaved")
	c.JSON(http.StatusCreated, resp)
}

// submissionMessageID picks the headline for a rejected submission.
func submissionMessageID(errs services.ValidationErrors) string {
	for _, e := range errs {
		if e.Rule == "section_required" {
			return "MissingAssessmentData"
		}
	}
	for _, e := range errs {
		if e.Field == "totalScore" {
			return "InvalidTotalScore"
		}
	}
	return "ValidationFailed"
}

// ListAssessments returns the caller's submissions, newest first
// @Summary List own assessments
// @Tags assessments
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param locale query string false "en or ur"
// @Success 200 {object} services.AssessmentListResponse
// @Router /assessments [get]
func (h *AssessmentHandler) ListAssessments(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}

	var req models.AssessmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, i18n.T(c.Request.Context(), "InvalidRequestBody"), nil, err.Error())
		return
	}

	resp, err := h.assessmentService.List(c.Request.Context(), &req, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     i18n.Tp(c.Request.Context(), "AssessmentsFound", int(resp.Pagination.Total)),
		"assessments": resp.Assessments,
		"pagination":  resp.Pagination,
	})
}

// GetAssessment returns one submission to its owner or a doctor it was shared with
// @Summary Get assessment
// @Tags assessments
// @Produce json
// @Param id path string true "Assessment ID"
// @Success 200 {object} models.MMSEAssessment
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /assessments/{id} [get]
func (h *AssessmentHandler) GetAssessment(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	caller, ok := getCaller(c)
	if !ok {
		return
	}

	assessment, err := h.assessmentService.Get(c.Request.Context(), id, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assessment)
}

// ExportAssessments downloads the caller's submissions as a workbook
// @Summary Export own assessments
// @Tags assessments
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /assessments/export [get]
func (h *AssessmentHandler) ExportAssessments(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.exportService.ExportAssessments(c.Request.Context(), caller, &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="mmse-assessments.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
