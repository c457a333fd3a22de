package dto

import (
	"github.com/google/uuid"
	"github.com/tarcin/docissuer/internal/app/models"
)

// CreateCertificateRequest is the body of POST /certificates. When
// CertificateID is empty one is allocated for the current year.
type CreateCertificateRequest struct {
	CertificateID string     `json:"certificateId" binding:"omitempty,max=64"`
	RecipientName string     `json:"recipientName" binding:"required,max=200"`
	DOB           string     `json:"dob" binding:"omitempty,birthdate"`
	Course        string     `json:"course" binding:"required,max=200"`
	CourseCode    string     `json:"courseCode" binding:"required,max=32,coursecode"`
	Department    string     `json:"department" binding:"omitempty,max=200"`
	College       string     `json:"college" binding:"omitempty,max=200"`
	Content       string     `json:"content" binding:"omitempty,max=2000"`
	Duration      string     `json:"duration" binding:"omitempty,max=100"`
	BatchID       *uuid.UUID `json:"batchId"`
}

// BulkCertificateResponse is returned by POST /certificates/bulk
type BulkCertificateResponse struct {
	Batch        *models.Batch        `json:"batch"`
	Certificates []models.Certificate `json:"certificates"`
	Count        int                  `json:"count"`
	Skipped      int                  `json:"skipped"`
}

// VerifyResponse is the public view of a certificate
type VerifyResponse struct {
	Valid         bool   `json:"valid"`
	CertificateID string `json:"certificateId"`
	RecipientName string `json:"recipientName"`
	Course        string `json:"course"`
	IssuedOn      string `json:"issuedOn"`
}
