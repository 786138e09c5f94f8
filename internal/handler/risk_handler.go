package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/proavijit/projectpulse-api/internal/models"
	"github.com/proavijit/projectpulse-api/internal/service"
	appErrors "github.com/proavijit/projectpulse-api/pkg/errors"
	"github.com/proavijit/projectpulse-api/pkg/response"
)

// RiskHandler exposes risk endpoints.
type RiskHandler struct {
	risks *service.RiskService
}

// NewRiskHandler constructs handler.
func NewRiskHandler(risks *service.RiskService) *RiskHandler {
	return &RiskHandler{risks: risks}
}

// List godoc
// @Summary List all risks
// @Tags Risks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /risks [get]
func (h *RiskHandler) List(c *gin.Context) {
	risks, err := h.risks.List(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, risks, nil)
}

// HighPriority godoc
// @Summary List open high severity risks
// @Tags Risks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /risks/high-priority [get]
func (h *RiskHandler) HighPriority(c *gin.Context) {
	risks, err := h.risks.HighPriority(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, risks, nil)
}

// ByProject godoc
// @Summary List risks for a project
// @Tags Risks
// @Produce json
// @Security BearerAuth
// @Param projectId path string true "Project ID"
// @Success 200 {object} response.Envelope
// @Router /risks/project/{projectId} [get]
func (h *RiskHandler) ByProject(c *gin.Context) {
	risks, err := h.risks.ByProject(c.Request.Context(), claimsFromContext(c), c.Param("projectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, risks, nil)
}

// Create godoc
// @Summary Report a risk
// @Tags Risks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateRiskRequest true "Risk payload"
// @Success 201 {object} response.Envelope
// @Router /risks [post]
func (h *RiskHandler) Create(c *gin.Context) {
	var req models.CreateRiskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	risk, err := h.risks.Create(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, risk)
}

// Update godoc
// @Summary Update or resolve a risk
// @Tags Risks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Risk ID"
// @Param payload body models.UpdateRiskRequest true "Partial risk payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /risks/{id} [put]
func (h *RiskHandler) Update(c *gin.Context) {
	var req models.UpdateRiskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	risk, err := h.risks.Update(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, risk, nil)
}
