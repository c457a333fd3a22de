package controllers

import (
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tarcin/docissuer/internal/app/services"
	"github.com/tarcin/docissuer/internal/middleware"
	"github.com/tarcin/docissuer/internal/pkg/apperrors"
)

// uploadFields are the accepted multipart names of an import file
var uploadFields = []string{"csv", "file"}

// parseUUIDParam reads a UUID path parameter, answering 400 when malformed
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		middleware.HandleAPIError(c, apperrors.NewValidationError("Invalid "+name, map[string]interface{}{
			name: c.Param(name),
		}).WithField(name))
		return uuid.Nil, false
	}
	return id, true
}

// parseUUIDQuery reads an optional UUID query parameter
func parseUUIDQuery(c *gin.Context, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperrors.NewValidationError(name+" must be a UUID", nil).WithField(name)
	}
	return &id, nil
}

// openUpload limits the request body to maxBytes and opens the uploaded file.
// The caller closes the returned file.
func openUpload(c *gin.Context, maxBytes int64) (multipart.File, *multipart.FileHeader, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

	for _, field := range uploadFields {
		fh, err := c.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return nil, nil, err
			}
			return nil, nil, apperrors.NewValidationError("Invalid multipart form",
				map[string]interface{}{"error": err.Error()}).WithField(field)
		}

		f, err := fh.Open()
		if err != nil {
			return nil, nil, err
		}
		return f, fh, nil
	}

	return nil, nil, apperrors.NewValidationError("A csv or xlsx file is required", nil).WithField(uploadFields[0])
}

// sendDocument writes a rendered file as an attachment
func sendDocument(c *gin.Context, doc *services.RenderedDocument) {
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName}))
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}
