package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/givegoa/givegoa-api/internal/dto"
	"github.com/givegoa/givegoa-api/internal/models"
	"github.com/givegoa/givegoa-api/pkg/response"
)

type authService interface {
	Login(ctx context.Context, input dto.LoginInput) (*dto.LoginResponse, error)
	Session(user models.User) dto.SessionResponse
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service authService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Login godoc
// @Summary Start a session
// @Description Selects an account from the directory by email and issues an access token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.LoginInput true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid login payload"))
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Me godoc
// @Summary Current session
// @Description Returns the authenticated user and the actions their role may perform
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, h.service.Session(user), nil)
}
