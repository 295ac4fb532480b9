package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ithaka-ucu/backoffice-api/internal/middleware"
	"github.com/ithaka-ucu/backoffice-api/internal/models"
)

func currentUser(c *gin.Context) *models.AuthUser {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.AuthUser)
	if !ok {
		return nil
	}
	return user
}

func paginationParams(c *gin.Context) (int, int) {
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		skip = 0
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}
	return skip, limit
}
