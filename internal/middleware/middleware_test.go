package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tarcin/docissuer/internal/app/models/dto"
	"github.com/tarcin/docissuer/internal/pkg/apperrors"
	"github.com/tarcin/docissuer/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWTService() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "middleware-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "docissuer",
	})
}

func protectedRouter(m *AuthMiddleware) *gin.Engine {
	r := gin.New()
	r.GET("/protected", m.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"method":   c.GetString(ContextAuthMethod),
			"username": c.GetString(ContextUsername),
		})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	jwtService := newJWTService()
	token, _, err := jwtService.GenerateAccessToken(uuid.New(), "admin")
	require.NoError(t, err)

	router := protectedRouter(NewAuthMiddleware(jwtService, "static-api-token"))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantMethod string
	}{
		{"missing header", "", http.StatusUnauthorized, ""},
		{"static token", "Bearer static-api-token", http.StatusOK, "static"},
		{"lowercase scheme", "bearer static-api-token", http.StatusOK, "static"},
		{"jwt", "Bearer " + token, http.StatusOK, "jwt"},
		{"wrong token", "Bearer nope", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				var body map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.wantMethod, body["method"])
			}
		})
	}
}

func TestRequireAuthWithoutStaticToken(t *testing.T) {
	router := protectedRouter(NewAuthMiddleware(newJWTService(), ""))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer ")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   dto.ErrorCode
	}{
		{"missing headers", apperrors.NewCustomError(apperrors.ErrMissingHeaders, "Missing required columns: Course").
			WithDetails(map[string]interface{}{"missingHeaders": []string{"Course"}}), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"no data rows", apperrors.ErrNoDataRows, http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"wrapped not found", fmt.Errorf("lookup: %w", apperrors.ErrBatchNotFound), http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"duplicate id", fmt.Errorf("insert: %w", apperrors.ErrCertificateIDExists), http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{"exhausted", fmt.Errorf("allocate: %w", apperrors.ErrSequenceExhausted), http.StatusServiceUnavailable, dto.ErrorCodeSequenceExhausted},
		{"credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{"too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, dto.ErrorCodePayloadTooLarge},
		{"render", apperrors.NewCustomError(fmt.Errorf("%w: boom", apperrors.ErrRenderFailed), "x"), http.StatusInternalServerError, dto.ErrorCodeRenderFailed},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestHandleAPIErrorCarriesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/certificates/bulk", nil)

	HandleAPIError(c, apperrors.NewCustomError(apperrors.ErrMissingHeaders, "Missing required columns: Name, Course").
		WithDetails(map[string]interface{}{"missingHeaders": []string{"Name", "Course"}}))

	var resp struct {
		Error struct {
			Message string `json:"message"`
			Details struct {
				MissingHeaders []string `json:"missingHeaders"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Missing required columns: Name, Course", resp.Error.Message)
	assert.Equal(t, []string{"Name", "Course"}, resp.Error.Details.MissingHeaders)
}
