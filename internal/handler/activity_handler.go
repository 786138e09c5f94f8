package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/proavijit/projectpulse-api/internal/service"
	"github.com/proavijit/projectpulse-api/pkg/response"
)

// ActivityHandler exposes the project activity feed.
type ActivityHandler struct {
	activities *service.ActivityService
}

// NewActivityHandler constructs handler.
func NewActivityHandler(activities *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activities: activities}
}

// ByProject godoc
// @Summary Recent activity for a project
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Param projectId path string true "Project ID"
// @Param limit query int false "Max entries (default 50)"
// @Success 200 {object} response.Envelope
// @Router /activities/project/{projectId} [get]
func (h *ActivityHandler) ByProject(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	activities, err := h.activities.ByProject(c.Request.Context(), claimsFromContext(c), c.Param("projectId"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activities, nil)
}
