package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ithaka-ucu/backoffice-api/internal/models"
	"github.com/ithaka-ucu/backoffice-api/internal/service"
	appErrors "github.com/ithaka-ucu/backoffice-api/pkg/errors"
	"github.com/ithaka-ucu/backoffice-api/pkg/response"
)

// StateHandler wires the state catalog service to HTTP routes.
type StateHandler struct {
	states *service.StateService
}

// NewStateHandler constructs a new StateHandler.
func NewStateHandler(states *service.StateService) *StateHandler {
	return &StateHandler{states: states}
}

// List godoc
// @Summary List catalog states
// @Tags States
// @Produce json
// @Param case_type query string false "Filter by case type (Application/Project)"
// @Param skip query int false "Items to skip"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /states [get]
func (h *StateHandler) List(c *gin.Context) {
	filter := models.CaseStateFilter{
		CaseType: c.Query("case_type"),
	}
	filter.Skip, filter.Limit = paginationParams(c)

	states, pagination, err := h.states.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, states, pagination)
}

// Get godoc
// @Summary Get catalog state detail
// @Tags States
// @Produce json
// @Param id path string true "State ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /states/{id} [get]
func (h *StateHandler) Get(c *gin.Context) {
	state, err := h.states.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// Create godoc
// @Summary Add catalog state
// @Tags States
// @Accept json
// @Produce json
// @Param payload body service.CreateStateRequest true "State payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /states [post]
func (h *StateHandler) Create(c *gin.Context) {
	var req service.CreateStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid state payload"))
		return
	}
	state, err := h.states.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, state)
}

// Update godoc
// @Summary Rename catalog state
// @Tags States
// @Accept json
// @Produce json
// @Param id path string true "State ID"
// @Param payload body service.UpdateStateRequest true "State payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /states/{id} [put]
func (h *StateHandler) Update(c *gin.Context) {
	var req service.UpdateStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid state payload"))
		return
	}
	state, err := h.states.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// Delete godoc
// @Summary Delete catalog state
// @Tags States
// @Param id path string true "State ID"
// @Success 204
// @Security BearerAuth
// @Router /states/{id} [delete]
func (h *StateHandler) Delete(c *gin.Context) {
	if err := h.states.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
