package controllers

import (
	"context"

	"github.com/google/uuid"
	"github.com/tarcin/docissuer/internal/app/models"
	"github.com/tarcin/docissuer/internal/app/models/dto"
	"github.com/tarcin/docissuer/internal/app/repositories"
	"github.com/tarcin/docissuer/internal/app/services"
)

// CertificateService is what the certificate handlers need
type CertificateService interface {
	CreateCertificate(ctx context.Context, req *dto.CreateCertificateRequest) (*models.Certificate, error)
	GetCertificate(ctx context.Context, id uuid.UUID) (*models.Certificate, error)
	VerifyCertificate(ctx context.Context, certificateID string) (*dto.VerifyResponse, error)
	ListCertificates(ctx context.Context, f repositories.CertificateFilter) (dto.ListResponse[models.Certificate], error)
}

// LetterService is what the letter handlers need
type LetterService interface {
	CreateLetter(ctx context.Context, req *dto.CreateLetterRequest) (*models.Letter, error)
	GetLetter(ctx context.Context, id uuid.UUID) (*models.Letter, error)
	ListLetters(ctx context.Context, f repositories.LetterFilter) (dto.ListResponse[models.Letter], error)
}

// ImportService runs bulk uploads
type ImportService interface {
	ImportCertificates(ctx context.Context, in services.CertificateImport) (*dto.BulkCertificateResponse, error)
	ImportLetters(ctx context.Context, in services.LetterImport) (*dto.BulkLetterResponse, error)
}

// BatchService lists batches and their members
type BatchService interface {
	GetBatch(ctx context.Context, id uuid.UUID) (*models.Batch, error)
	ListBatches(ctx context.Context, limit, offset int) (dto.ListResponse[models.Batch], error)
	BatchCertificates(ctx context.Context, id uuid.UUID) ([]models.Certificate, error)
	BatchLetters(ctx context.Context, id uuid.UUID) ([]models.Letter, error)
	SourceFile(ctx context.Context, id uuid.UUID) (*services.RenderedDocument, error)
}

// DocumentService renders downloads
type DocumentService interface {
	CertificatePDF(ctx context.Context, id uuid.UUID) (*services.RenderedDocument, error)
	LetterPDF(ctx context.Context, id uuid.UUID) (*services.RenderedDocument, error)
	BatchArchive(ctx context.Context, batchID uuid.UUID) (*services.RenderedDocument, error)
	BatchExport(ctx context.Context, batchID uuid.UUID, format string) (*services.RenderedDocument, error)
}

// AuthService issues operator tokens
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
}

// StatsService serves dashboard counters
type StatsService interface {
	GetStats(ctx context.Context) (*models.Stats, error)
}

// Pinger reports database health
type Pinger interface {
	Ping(ctx context.Context) error
}
