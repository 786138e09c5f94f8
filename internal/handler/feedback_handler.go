package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/proavijit/projectpulse-api/internal/models"
	"github.com/proavijit/projectpulse-api/internal/service"
	appErrors "github.com/proavijit/projectpulse-api/pkg/errors"
	"github.com/proavijit/projectpulse-api/pkg/response"
)

// FeedbackHandler exposes feedback endpoints.
type FeedbackHandler struct {
	feedback *service.FeedbackService
}

// NewFeedbackHandler constructs handler.
func NewFeedbackHandler(feedback *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback}
}

// Create godoc
// @Summary Submit weekly feedback
// @Tags Feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateFeedbackRequest true "Feedback payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /feedback [post]
func (h *FeedbackHandler) Create(c *gin.Context) {
	var req models.CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	feedback, err := h.feedback.Create(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, feedback)
}

// ByProject godoc
// @Summary List feedback for a project
// @Tags Feedback
// @Produce json
// @Security BearerAuth
// @Param projectId path string true "Project ID"
// @Success 200 {object} response.Envelope
// @Router /feedback/project/{projectId} [get]
func (h *FeedbackHandler) ByProject(c *gin.Context) {
	feedback, err := h.feedback.ByProject(c.Request.Context(), claimsFromContext(c), c.Param("projectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, feedback, nil)
}

// Pending godoc
// @Summary Projects with no feedback this week
// @Tags Feedback
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /feedback/pending [get]
func (h *FeedbackHandler) Pending(c *gin.Context) {
	pending, err := h.feedback.Pending(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pending, nil)
}
