package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tarcin/docissuer/internal/app/models/dto"
	"github.com/tarcin/docissuer/internal/app/repositories"
	"github.com/tarcin/docissuer/internal/app/services"
	"github.com/tarcin/docissuer/internal/middleware"
	"github.com/tarcin/docissuer/internal/pkg/helpers"
)

// CertificateController handles certificate endpoints
type CertificateController struct {
	certificates   CertificateService
	imports        ImportService
	documents      DocumentService
	maxUploadBytes int64
}

// NewCertificateController creates a new CertificateController
func NewCertificateController(certificates CertificateService, imports ImportService, documents DocumentService, maxUploadBytes int64) *CertificateController {
	return &CertificateController{
		certificates:   certificates,
		imports:        imports,
		documents:      documents,
		maxUploadBytes: maxUploadBytes,
	}
}

// CreateCertificate handles POST /certificates
func (ctrl *CertificateController) CreateCertificate(c *gin.Context) {
	var req dto.CreateCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(c, bindError(err))
		return
	}

	cert, err := ctrl.certificates.CreateCertificate(c.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSuccessResponse(cert, "Certificate created"))
}

// BulkCreateCertificates handles POST /certificates/bulk (multipart: csv|file, year, courseCode)
func (ctrl *CertificateController) BulkCreateCertificates(c *gin.Context) {
	file, header, err := openUpload(c, ctrl.maxUploadBytes)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	defer file.Close()

	resp, err := ctrl.imports.ImportCertificates(c.Request.Context(), services.CertificateImport{
		FileName:   header.Filename,
		File:       file,
		Year:       c.PostForm("year"),
		CourseCode: c.PostForm("courseCode"),
	})
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSuccessResponse(resp, "Certificates imported"))
}

// ListCertificates handles GET /certificates
func (ctrl *CertificateController) ListCertificates(c *gin.Context) {
	batchID, err := parseUUIDQuery(c, "batchId")
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	limit, offset := helpers.ParseListParams(c)
	resp, err := ctrl.certificates.ListCertificates(c.Request.Context(), repositories.CertificateFilter{
		Search:  c.Query("search"),
		BatchID: batchID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// GetCertificate handles GET /certificates/:id
func (ctrl *CertificateController) GetCertificate(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	cert, err := ctrl.certificates.GetCertificate(c.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(cert, ""))
}

// DownloadCertificate handles GET /certificates/:id/pdf
func (ctrl *CertificateController) DownloadCertificate(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := ctrl.documents.CertificatePDF(c.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	sendDocument(c, doc)
}

// VerifyCertificate handles the public GET /verify?id=
func (ctrl *CertificateController) VerifyCertificate(c *gin.Context) {
	resp, err := ctrl.certificates.VerifyCertificate(c.Request.Context(), c.Query("id"))
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Certificate is valid"))
}
