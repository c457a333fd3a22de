package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tarcin/docissuer/internal/app/models"
	"github.com/tarcin/docissuer/internal/app/models/dto"
	"github.com/tarcin/docissuer/internal/app/repositories"
	"github.com/tarcin/docissuer/internal/app/services"
	"github.com/tarcin/docissuer/internal/middleware"
	"github.com/tarcin/docissuer/internal/pkg/apperrors"
	"github.com/tarcin/docissuer/internal/pkg/helpers"
)

// LetterController handles letter endpoints
type LetterController struct {
	letters        LetterService
	imports        ImportService
	documents      DocumentService
	maxUploadBytes int64
}

// NewLetterController creates a new LetterController
func NewLetterController(letters LetterService, imports ImportService, documents DocumentService, maxUploadBytes int64) *LetterController {
	return &LetterController{
		letters:        letters,
		imports:        imports,
		documents:      documents,
		maxUploadBytes: maxUploadBytes,
	}
}

// CreateLetter handles POST /letters
func (ctrl *LetterController) CreateLetter(c *gin.Context) {
	var req dto.CreateLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(c, bindError(err))
		return
	}

	letter, err := ctrl.letters.CreateLetter(c.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSuccessResponse(letter, "Letter created"))
}

// BulkCreateLetters handles POST /letters/bulk (multipart: csv|file, letterType)
func (ctrl *LetterController) BulkCreateLetters(c *gin.Context) {
	file, header, err := openUpload(c, ctrl.maxUploadBytes)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	defer file.Close()

	resp, err := ctrl.imports.ImportLetters(c.Request.Context(), services.LetterImport{
		FileName:   header.Filename,
		File:       file,
		LetterType: c.PostForm("letterType"),
	})
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSuccessResponse(resp, "Letters imported"))
}

// ListLetters handles GET /letters
func (ctrl *LetterController) ListLetters(c *gin.Context) {
	batchID, err := parseUUIDQuery(c, "batchId")
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	filter := repositories.LetterFilter{Search: c.Query("search"), BatchID: batchID}
	if raw := c.Query("letterType"); raw != "" {
		kind, ok := models.ParseLetterKind(raw)
		if !ok {
			middleware.HandleAPIError(c, apperrors.NewCustomError(apperrors.ErrInvalidLetterType,
				"letterType must be offer or completion").WithField("letterType"))
			return
		}
		filter.LetterType = kind
	}
	filter.Limit, filter.Offset = helpers.ParseListParams(c)

	resp, err := ctrl.letters.ListLetters(c.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// GetLetter handles GET /letters/:id
func (ctrl *LetterController) GetLetter(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	letter, err := ctrl.letters.GetLetter(c.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(letter, ""))
}

// DownloadLetter handles GET /letters/:id/pdf
func (ctrl *LetterController) DownloadLetter(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := ctrl.documents.LetterPDF(c.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	sendDocument(c, doc)
}
