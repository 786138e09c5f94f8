package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/proavijit/projectpulse-api/internal/models"
	"github.com/proavijit/projectpulse-api/internal/service"
	appErrors "github.com/proavijit/projectpulse-api/pkg/errors"
	"github.com/proavijit/projectpulse-api/pkg/response"
)

// CheckInHandler exposes check-in endpoints.
type CheckInHandler struct {
	checkins *service.CheckInService
}

// NewCheckInHandler constructs handler.
func NewCheckInHandler(checkins *service.CheckInService) *CheckInHandler {
	return &CheckInHandler{checkins: checkins}
}

// Create godoc
// @Summary Submit a weekly check-in
// @Tags CheckIns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateCheckInRequest true "Check-in payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /checkins [post]
func (h *CheckInHandler) Create(c *gin.Context) {
	var req models.CreateCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	checkin, err := h.checkins.Create(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, checkin)
}

// ByProject godoc
// @Summary List check-ins for a project
// @Tags CheckIns
// @Produce json
// @Security BearerAuth
// @Param projectId path string true "Project ID"
// @Success 200 {object} response.Envelope
// @Router /checkins/project/{projectId} [get]
func (h *CheckInHandler) ByProject(c *gin.Context) {
	checkins, err := h.checkins.ByProject(c.Request.Context(), claimsFromContext(c), c.Param("projectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, checkins, nil)
}

// Pending godoc
// @Summary Assigned projects with no check-in this week
// @Tags CheckIns
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /checkins/pending [get]
func (h *CheckInHandler) Pending(c *gin.Context) {
	pending, err := h.checkins.Pending(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pending, nil)
}
