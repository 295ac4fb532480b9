package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ithaka-ucu/backoffice-api/internal/models"
	"github.com/ithaka-ucu/backoffice-api/internal/service"
	appErrors "github.com/ithaka-ucu/backoffice-api/pkg/errors"
	"github.com/ithaka-ucu/backoffice-api/pkg/response"
)

// CaseHandler wires case services to HTTP routes.
type CaseHandler struct {
	cases *service.CaseService
}

// NewCaseHandler constructs a new CaseHandler.
func NewCaseHandler(cases *service.CaseService) *CaseHandler {
	return &CaseHandler{cases: cases}
}

// List godoc
// @Summary List cases
// @Tags Cases
// @Produce json
// @Param state_id query string false "Filter by state"
// @Param state query string false "Filter by state name"
// @Param case_type query string false "Filter by case type (Application/Project)"
// @Param entrepreneur_id query string false "Filter by entrepreneur"
// @Param skip query int false "Items to skip"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /cases [get]
func (h *CaseHandler) List(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter := models.CaseFilter{
		StateID:        c.Query("state_id"),
		StateName:      c.Query("state"),
		CaseType:       c.Query("case_type"),
		EntrepreneurID: c.Query("entrepreneur_id"),
	}
	filter.Skip, filter.Limit = paginationParams(c)

	summaries, pagination, err := h.cases.List(c.Request.Context(), *user, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries, pagination)
}

// Get godoc
// @Summary Get case detail
// @Tags Cases
// @Produce json
// @Param id path string true "Case ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /cases/{id} [get]
func (h *CaseHandler) Get(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	summary, err := h.cases.Get(c.Request.Context(), *user, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Create godoc
// @Summary Register case
// @Tags Cases
// @Accept json
// @Produce json
// @Param payload body service.CreateCaseRequest true "Case payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /cases [post]
func (h *CaseHandler) Create(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid case payload"))
		return
	}
	created, err := h.cases.Create(c.Request.Context(), *user, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// Update godoc
// @Summary Update case
// @Tags Cases
// @Accept json
// @Produce json
// @Param id path string true "Case ID"
// @Param payload body service.UpdateCaseRequest true "Case payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /cases/{id} [put]
func (h *CaseHandler) Update(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.UpdateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid case payload"))
		return
	}
	updated, err := h.cases.Update(c.Request.Context(), *user, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, nil)
}

// ChangeState godoc
// @Summary Change case state
// @Tags Cases
// @Accept json
// @Produce json
// @Param id path string true "Case ID"
// @Param payload body service.ChangeStateRequest true "Target state"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /cases/{id}/state [put]
func (h *CaseHandler) ChangeState(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.ChangeStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid state change payload"))
		return
	}
	updated, err := h.cases.ChangeState(c.Request.Context(), *user, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, nil)
}

// Delete godoc
// @Summary Delete case
// @Tags Cases
// @Param id path string true "Case ID"
// @Success 204
// @Security BearerAuth
// @Router /cases/{id} [delete]
func (h *CaseHandler) Delete(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.cases.Delete(c.Request.Context(), *user, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
