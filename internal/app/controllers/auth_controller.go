package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/tarcin/docissuer/internal/app/models/dto"
	"github.com/tarcin/docissuer/internal/middleware"
	"github.com/tarcin/docissuer/internal/pkg/apperrors"
	"github.com/tarcin/docissuer/internal/pkg/logger"
)

// AuthController handles operator login
type AuthController struct {
	authService AuthService
}

// NewAuthController creates a new AuthController
func NewAuthController(authService AuthService) *AuthController {
	return &AuthController{authService: authService}
}

// Login handles POST /auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(c, bindError(err))
		return
	}

	resp, err := ctrl.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if !errors.Is(err, apperrors.ErrInvalidCredentials) {
			logger.Error().Err(err).Str("username", req.Username).Msg("Login failed")
		}
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Login successful"))
}

// bindError keeps validator errors intact for per-field details and turns
// malformed bodies into a validation error.
func bindError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return err
	}
	return apperrors.NewValidationError("Invalid request body", map[string]interface{}{"error": err.Error()})
}
