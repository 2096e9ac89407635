package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lyceo/charge-api/internal/service"
	appErrors "github.com/lyceo/charge-api/pkg/errors"
	"github.com/lyceo/charge-api/pkg/response"
)

type authService interface {
	Login(ctx context.Context, req service.LoginRequest) (*service.LoginResponse, error)
}

// AuthHandler exposes login for planning staff.
type AuthHandler struct {
	service authService
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service authService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Login godoc
// @Summary Authenticate a teacher and issue an access token
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}
