package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tarcin/docissuer/internal/app/models/dto"
	"github.com/tarcin/docissuer/internal/middleware"
	"github.com/tarcin/docissuer/internal/pkg/helpers"
)

// BatchController handles batch endpoints
type BatchController struct {
	batches   BatchService
	documents DocumentService
}

// NewBatchController creates a new BatchController
func NewBatchController(batches BatchService, documents DocumentService) *BatchController {
	return &BatchController{batches: batches, documents: documents}
}

// ListBatches handles GET /batches
func (ctrl *BatchController) ListBatches(c *gin.Context) {
	limit, offset := helpers.ParseListParams(c)

	resp, err := ctrl.batches.ListBatches(c.Request.Context(), limit, offset)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// GetBatch handles GET /batches/:id
func (ctrl *BatchController) GetBatch(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	batch, err := ctrl.batches.GetBatch(c.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(batch, ""))
}

// ListBatchCertificates handles GET /batches/:id/certificates
func (ctrl *BatchController) ListBatchCertificates(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	certs, err := ctrl.batches.BatchCertificates(c.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(certs, ""))
}

// ListBatchLetters handles GET /batches/:id/letters
func (ctrl *BatchController) ListBatchLetters(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	letters, err := ctrl.batches.BatchLetters(c.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(letters, ""))
}

// DownloadArchive handles GET /batches/:id/archive
func (ctrl *BatchController) DownloadArchive(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := ctrl.documents.BatchArchive(c.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	sendDocument(c, doc)
}

// ExportBatch handles GET /batches/:id/export?format=csv|xlsx
func (ctrl *BatchController) ExportBatch(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := ctrl.documents.BatchExport(c.Request.Context(), id, c.DefaultQuery("format", "csv"))
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	sendDocument(c, doc)
}

// DownloadSource handles GET /batches/:id/source
func (ctrl *BatchController) DownloadSource(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := ctrl.batches.SourceFile(c.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	sendDocument(c, doc)
}
