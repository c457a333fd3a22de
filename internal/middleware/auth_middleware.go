package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tarcin/docissuer/internal/app/models/dto"
	"github.com/tarcin/docissuer/internal/pkg/auth"
)

// Context keys set by RequireAuth
const (
	ContextUsername   = "username"
	ContextAuthMethod = "authMethod"
)

// AuthMiddleware accepts either the configured static API token or a JWT
// issued by the login endpoint.
type AuthMiddleware struct {
	jwtService  *auth.JWTService
	staticToken string
}

// NewAuthMiddleware creates a new AuthMiddleware. An empty staticToken
// disables static token access.
func NewAuthMiddleware(jwtService *auth.JWTService, staticToken string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:  jwtService,
		staticToken: staticToken,
	}
}

// RequireAuth rejects requests without a valid bearer token
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
				WithDetails("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		tokenString, err := auth.ExtractBearerToken(authHeader)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
				WithDetails("Invalid token format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		if auth.MatchStaticToken(m.staticToken, tokenString) {
			c.Set(ContextAuthMethod, "static")
			c.Next()
			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			errorCode := dto.ErrorCodeInvalidToken
			errorDetails := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				errorCode = dto.ErrorCodeExpiredToken
				errorDetails = "Token has expired"
			}

			errorDetail := dto.NewErrorDetail(errorCode, "Authentication failed").WithDetails(errorDetails)
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		c.Set(ContextUsername, claims.Username)
		c.Set(ContextAuthMethod, "jwt")
		c.Next()
	}
}
