package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ithaka-ucu/backoffice-api/internal/models"
	"github.com/ithaka-ucu/backoffice-api/internal/service"
	appErrors "github.com/ithaka-ucu/backoffice-api/pkg/errors"
	"github.com/ithaka-ucu/backoffice-api/pkg/response"
)

// SupportHandler wires support services to HTTP routes.
type SupportHandler struct {
	supports *service.SupportService
}

// NewSupportHandler constructs a new SupportHandler.
func NewSupportHandler(supports *service.SupportService) *SupportHandler {
	return &SupportHandler{supports: supports}
}

// List godoc
// @Summary List supports
// @Tags Supports
// @Produce json
// @Param case_id query string false "Filter by case"
// @Param program_id query string false "Filter by program"
// @Param skip query int false "Items to skip"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /supports [get]
func (h *SupportHandler) List(c *gin.Context) {
	filter := models.SupportFilter{
		CaseID:    c.Query("case_id"),
		ProgramID: c.Query("program_id"),
	}
	filter.Skip, filter.Limit = paginationParams(c)

	supports, pagination, err := h.supports.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, supports, pagination)
}

// Get godoc
// @Summary Get support detail
// @Tags Supports
// @Produce json
// @Param id path string true "Support ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /supports/{id} [get]
func (h *SupportHandler) Get(c *gin.Context) {
	support, err := h.supports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, support, nil)
}

// Create godoc
// @Summary Grant support to case
// @Tags Supports
// @Accept json
// @Produce json
// @Param payload body service.CreateSupportRequest true "Support payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /supports [post]
func (h *SupportHandler) Create(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateSupportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid support payload"))
		return
	}
	support, err := h.supports.Create(c.Request.Context(), *user, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, support)
}

// Update godoc
// @Summary Update support
// @Tags Supports
// @Accept json
// @Produce json
// @Param id path string true "Support ID"
// @Param payload body service.UpdateSupportRequest true "Support payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /supports/{id} [put]
func (h *SupportHandler) Update(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.UpdateSupportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid support payload"))
		return
	}
	support, err := h.supports.Update(c.Request.Context(), *user, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, support, nil)
}

// Delete godoc
// @Summary Remove support
// @Tags Supports
// @Param id path string true "Support ID"
// @Success 204
// @Security BearerAuth
// @Router /supports/{id} [delete]
func (h *SupportHandler) Delete(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.supports.Delete(c.Request.Context(), *user, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListRequested godoc
// @Summary List requested supports for a case
// @Tags Requested Supports
// @Produce json
// @Param id path string true "Case ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /cases/{id}/requested-supports [get]
func (h *SupportHandler) ListRequested(c *gin.Context) {
	requests, err := h.supports.ListRequested(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// CreateRequested godoc
// @Summary Record a requested support
// @Tags Requested Supports
// @Accept json
// @Produce json
// @Param payload body service.CreateRequestedSupportRequest true "Requested support payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /requested-supports [post]
func (h *SupportHandler) CreateRequested(c *gin.Context) {
	var req service.CreateRequestedSupportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid requested support payload"))
		return
	}
	rs, err := h.supports.CreateRequested(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rs)
}

// UpdateRequested godoc
// @Summary Correct a requested support category
// @Tags Requested Supports
// @Accept json
// @Produce json
// @Param id path string true "Requested support ID"
// @Param payload body service.UpdateRequestedSupportRequest true "Requested support payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /requested-supports/{id} [put]
func (h *SupportHandler) UpdateRequested(c *gin.Context) {
	var req service.UpdateRequestedSupportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid requested support payload"))
		return
	}
	rs, err := h.supports.UpdateRequested(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rs, nil)
}

// DeleteRequested godoc
// @Summary Remove a requested support
// @Tags Requested Supports
// @Param id path string true "Requested support ID"
// @Success 204
// @Security BearerAuth
// @Router /requested-supports/{id} [delete]
func (h *SupportHandler) DeleteRequested(c *gin.Context) {
	if err := h.supports.DeleteRequested(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
