package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ithaka-ucu/backoffice-api/internal/models"
	"github.com/ithaka-ucu/backoffice-api/internal/service"
	"github.com/ithaka-ucu/backoffice-api/pkg/response"
)

// AuditHandler exposes the read-only audit trail.
type AuditHandler struct {
	audit *service.AuditService
}

// NewAuditHandler constructs a new AuditHandler.
func NewAuditHandler(audit *service.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List godoc
// @Summary List audit records
// @Tags Audit
// @Produce json
// @Param case_id query string false "Filter by case"
// @Param user_id query string false "Filter by actor"
// @Param action query string false "Filter by action substring"
// @Param skip query int false "Items to skip"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /audit [get]
func (h *AuditHandler) List(c *gin.Context) {
	filter := models.AuditFilter{
		CaseID: c.Query("case_id"),
		UserID: c.Query("user_id"),
		Action: strings.TrimSpace(c.Query("action")),
	}
	filter.Skip, filter.Limit = paginationParams(c)

	records, pagination, err := h.audit.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}
