package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/proavijit/projectpulse-api/internal/models"
	"github.com/proavijit/projectpulse-api/internal/service"
	"github.com/proavijit/projectpulse-api/pkg/response"
)

// UserHandler exposes the admin user directory.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler constructs handler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List godoc
// @Summary List users
// @Description Returns the user directory without credentials. Admin only.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param role query string false "Filter by role (Admin, Employee, Client)"
// @Success 200 {object} response.Envelope
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	role := models.UserRole(c.Query("role"))
	users, err := h.users.List(c.Request.Context(), claimsFromContext(c), role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, nil)
}
