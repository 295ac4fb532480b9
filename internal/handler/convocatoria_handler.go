package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ithaka-ucu/backoffice-api/internal/service"
	appErrors "github.com/ithaka-ucu/backoffice-api/pkg/errors"
	"github.com/ithaka-ucu/backoffice-api/pkg/response"
)

// ConvocatoriaHandler wires convocatoria services to HTTP routes.
type ConvocatoriaHandler struct {
	convocatorias *service.ConvocatoriaService
}

// NewConvocatoriaHandler constructs a new ConvocatoriaHandler.
func NewConvocatoriaHandler(convocatorias *service.ConvocatoriaService) *ConvocatoriaHandler {
	return &ConvocatoriaHandler{convocatorias: convocatorias}
}

// List godoc
// @Summary List convocatorias
// @Tags Convocatorias
// @Produce json
// @Param skip query int false "Items to skip"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /convocatorias [get]
func (h *ConvocatoriaHandler) List(c *gin.Context) {
	skip, limit := paginationParams(c)
	convs, pagination, err := h.convocatorias.List(c.Request.Context(), skip, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, convs, pagination)
}

// Get godoc
// @Summary Get convocatoria detail
// @Tags Convocatorias
// @Produce json
// @Param id path string true "Convocatoria ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /convocatorias/{id} [get]
func (h *ConvocatoriaHandler) Get(c *gin.Context) {
	conv, err := h.convocatorias.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conv, nil)
}

// Create godoc
// @Summary Create convocatoria
// @Tags Convocatorias
// @Accept json
// @Produce json
// @Param payload body service.ConvocatoriaRequest true "Convocatoria payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /convocatorias [post]
func (h *ConvocatoriaHandler) Create(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.ConvocatoriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid convocatoria payload"))
		return
	}
	conv, err := h.convocatorias.Create(c.Request.Context(), *user, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, conv)
}

// Update godoc
// @Summary Update convocatoria
// @Tags Convocatorias
// @Accept json
// @Produce json
// @Param id path string true "Convocatoria ID"
// @Param payload body service.ConvocatoriaRequest true "Convocatoria payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /convocatorias/{id} [put]
func (h *ConvocatoriaHandler) Update(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.ConvocatoriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid convocatoria payload"))
		return
	}
	conv, err := h.convocatorias.Update(c.Request.Context(), *user, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conv, nil)
}

// Delete godoc
// @Summary Delete convocatoria
// @Tags Convocatorias
// @Param id path string true "Convocatoria ID"
// @Success 204
// @Security BearerAuth
// @Router /convocatorias/{id} [delete]
func (h *ConvocatoriaHandler) Delete(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.convocatorias.Delete(c.Request.Context(), *user, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
