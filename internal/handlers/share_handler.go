package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/mmse-service/internal/i18n"
	"github.com/SAP-F-2025/mmse-service/internal/models"
	"github.com/SAP-F-2025/mmse-service/internal/services"
	"github.com/SAP-F-2025/mmse-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ShareHandler struct {
	BaseHandler
	shareService services.ShareService
}

func NewShareHandler(shareService services.ShareService, logger utils.Logger) *ShareHandler {
	return &ShareHandler{
		BaseHandler:  NewBaseHandler(logger),
		shareService: shareService,
	}
}

// ShareAssessment shares one of the caller's submissions with a doctor
// @Summary Share assessment
// @Tags shares
// @Accept json
// @Produce json
// @Param share body models.ShareAssessmentRequest true "Share data"
// @Success 201 {object} SuccessResponse{data=models.SharedAssessment}
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /shares [post]
func (h *ShareHandler) ShareAssessment(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}

	var req models.ShareAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, i18n.T(c.Request.Context(), "InvalidRequestBody"), nil, err.Error())
		return
	}

	h.LogRequest(c, "Sharing assessment", "assessment_id", req.AssessmentID, "doctor_id", req.DoctorID)

	share, err := h.shareService.Share(c.Request.Context(), &req, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, i18n.T(c.Request.Context(), "SharedSuccessfully"), share)
}

// ListShared returns the submissions shared with the calling doctor
// @Summary Doctor inbox
// @Tags shares
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} services.ShareListResponse
// @Router /shares [get]
func (h *ShareHandler) ListShared(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}

	var req models.ShareListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, i18n.T(c.Request.Context(), "InvalidRequestBody"), nil, err.Error())
		return
	}

	resp, err := h.shareService.ListForDoctor(c.Request.Context(), &req, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetShared returns one share with its full submission
// @Summary Get share
// @Tags shares
// @Produce json
// @Param id path string true "Share ID"
// @Success 200 {object} services.ShareDetail
// @Failure 404 {object} ErrorResponse
// @Router /shares/{id} [get]
func (h *ShareHandler) GetShared(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	caller, ok := getCaller(c)
	if !ok {
		return
	}

	detail, err := h.shareService.Get(c.Request.Context(), id, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// ListRecipients returns the doctors one of the caller's submissions was shared with
// @Summary List recipients
// @Tags shares
// @Produce json
// @Param id path string true "Assessment ID"
// @Success 200 {array} models.SharedAssessment
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /assessments/{id}/shares [get]
func (h *ShareHandler) ListRecipients(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	caller, ok := getCaller(c)
	if !ok {
		return
	}

	shares, err := h.shareService.ListRecipients(c.Request.Context(), id, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"shares": shares})
}

// ListDoctors returns the doctors a patient can share with
// @Summary List doctors
// @Tags shares
// @Produce json
// @Success 200 {array} models.User
// @Router /doctors [get]
func (h *ShareHandler) ListDoctors(c *gin.Context) {
	if _, ok := getCaller(c); !ok {
		return
	}

	doctors, err := h.shareService.ListDoctors(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"doctors": doctors})
}
