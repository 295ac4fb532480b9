package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ithaka-ucu/backoffice-api/internal/models"
	"github.com/ithaka-ucu/backoffice-api/internal/service"
	appErrors "github.com/ithaka-ucu/backoffice-api/pkg/errors"
	"github.com/ithaka-ucu/backoffice-api/pkg/response"
)

// EntrepreneurHandler wires entrepreneur services to HTTP routes.
type EntrepreneurHandler struct {
	entrepreneurs *service.EntrepreneurService
}

// NewEntrepreneurHandler constructs a new EntrepreneurHandler.
func NewEntrepreneurHandler(entrepreneurs *service.EntrepreneurService) *EntrepreneurHandler {
	return &EntrepreneurHandler{entrepreneurs: entrepreneurs}
}

// List godoc
// @Summary List entrepreneurs
// @Tags Entrepreneurs
// @Produce json
// @Param search query string false "Search by name/email"
// @Param skip query int false "Items to skip"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /entrepreneurs [get]
func (h *EntrepreneurHandler) List(c *gin.Context) {
	filter := models.EntrepreneurFilter{
		Search: strings.TrimSpace(c.Query("search")),
	}
	filter.Skip, filter.Limit = paginationParams(c)

	ents, pagination, err := h.entrepreneurs.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ents, pagination)
}

// Get godoc
// @Summary Get entrepreneur detail
// @Tags Entrepreneurs
// @Produce json
// @Param id path string true "Entrepreneur ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /entrepreneurs/{id} [get]
func (h *EntrepreneurHandler) Get(c *gin.Context) {
	ent, err := h.entrepreneurs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ent, nil)
}

// Create godoc
// @Summary Register entrepreneur
// @Tags Entrepreneurs
// @Accept json
// @Produce json
// @Param payload body service.CreateEntrepreneurRequest true "Entrepreneur payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /entrepreneurs [post]
func (h *EntrepreneurHandler) Create(c *gin.Context) {
	var req service.CreateEntrepreneurRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid entrepreneur payload"))
		return
	}
	ent, err := h.entrepreneurs.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, ent)
}

// Update godoc
// @Summary Update entrepreneur
// @Tags Entrepreneurs
// @Accept json
// @Produce json
// @Param id path string true "Entrepreneur ID"
// @Param payload body service.UpdateEntrepreneurRequest true "Entrepreneur payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /entrepreneurs/{id} [put]
func (h *EntrepreneurHandler) Update(c *gin.Context) {
	var req service.UpdateEntrepreneurRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid entrepreneur payload"))
		return
	}
	ent, err := h.entrepreneurs.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ent, nil)
}

// Delete godoc
// @Summary Delete entrepreneur
// @Tags Entrepreneurs
// @Param id path string true "Entrepreneur ID"
// @Success 204
// @Security BearerAuth
// @Router /entrepreneurs/{id} [delete]
func (h *EntrepreneurHandler) Delete(c *gin.Context) {
	if err := h.entrepreneurs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
