package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/tarcin/docissuer/internal/app/models/dto"
	"github.com/tarcin/docissuer/internal/pkg/apperrors"
	"github.com/tarcin/docissuer/internal/pkg/auth"
	"github.com/tarcin/docissuer/internal/pkg/logger"
)

// HandleAPIError maps err to a status and the standard error envelope.
// Messages and details of an apperrors.CustomError are passed through.
func HandleAPIError(c *gin.Context, err error) {
	status, detail := classify(err)

	if ce, ok := apperrors.AsCustomError(err); ok {
		if ce.Message != "" && status != http.StatusInternalServerError {
			detail.Message = ce.Message
		}
		if ce.Field != "" {
			detail.WithField(ce.Field)
		}
		if len(ce.Details) > 0 {
			detail.WithDetails(ce.Details)
		}
	}

	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

func classify(err error) (int, *dto.ErrorDetail) {
	var validationErrs validator.ValidationErrors
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.As(err, &validationErrs):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed").
			WithDetails(ValidationDetails(validationErrs))
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge, dto.NewErrorDetail(dto.ErrorCodePayloadTooLarge, "Uploaded file is too large").
			WithDetails(map[string]interface{}{"limitBytes": maxBytesErr.Limit})
	case apperrors.Is(err, apperrors.ErrValidationFailed,
		apperrors.ErrMissingHeaders, apperrors.ErrNoDataRows, apperrors.ErrNoValidRows,
		apperrors.ErrUnsupportedFile, apperrors.ErrInvalidLetterType):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, err.Error())
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeBadRequest, err.Error())
	case errors.Is(err, apperrors.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, dto.NewErrorDetail(dto.ErrorCodePayloadTooLarge, "Uploaded file is too large")
	case apperrors.Is(err, apperrors.ErrResourceNotFound,
		apperrors.ErrCertificateNotFound, apperrors.ErrLetterNotFound, apperrors.ErrBatchNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, notFoundMessage(err))
	case errors.Is(err, apperrors.ErrCertificateIDExists):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Certificate ID already exists").
			WithField("certificateId")
	case apperrors.Is(err, apperrors.ErrResourceAlreadyExists, apperrors.ErrConflict):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeConflict, err.Error())
	case errors.Is(err, apperrors.ErrSequenceExhausted):
		return http.StatusServiceUnavailable, dto.NewErrorDetail(dto.ErrorCodeSequenceExhausted,
			"Could not allocate a certificate number, please retry").WithSeverity(dto.ErrorSeverityCritical)
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid username or password")
	case apperrors.Is(err, apperrors.ErrTokenExpired, auth.ErrExpiredToken):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token has expired")
	case apperrors.Is(err, apperrors.ErrTokenInvalid, auth.ErrInvalidToken, auth.ErrInvalidFormat):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
	case errors.Is(err, apperrors.ErrRenderFailed):
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeRenderFailed, "The document could not be rendered")
	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrCertificateNotFound):
		return "Certificate not found"
	case errors.Is(err, apperrors.ErrLetterNotFound):
		return "Letter not found"
	case errors.Is(err, apperrors.ErrBatchNotFound):
		return "Batch not found"
	}
	return "Resource not found"
}
