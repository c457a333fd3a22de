package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/tarcin/docissuer/internal/app/models"
	"github.com/tarcin/docissuer/internal/app/repositories"
)

// CertificateStore is the certificate persistence used by the services
type CertificateStore interface {
	Create(ctx context.Context, c *models.Certificate) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Certificate, error)
	GetByCertificateID(ctx context.Context, certificateID string) (*models.Certificate, error)
	List(ctx context.Context, f repositories.CertificateFilter) ([]models.Certificate, int64, error)
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.Certificate, error)
}

// LetterStore is the letter persistence used by the services
type LetterStore interface {
	Create(ctx context.Context, l *models.Letter) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Letter, error)
	List(ctx context.Context, f repositories.LetterFilter) ([]models.Letter, int64, error)
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.Letter, error)
}

// BatchStore writes a batch together with its documents
type BatchStore interface {
	CreateWithCertificates(ctx context.Context, b *models.Batch, certs []models.Certificate) error
	CreateWithLetters(ctx context.Context, b *models.Batch, letters []models.Letter) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Batch, error)
	List(ctx context.Context, limit, offset int) ([]models.Batch, int64, error)
}

// UserStore is the operator account persistence
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Count(ctx context.Context) (int64, error)
}

// StatsStore aggregates counters and records downloads
type StatsStore interface {
	Stats(ctx context.Context) (*models.Stats, error)
	RecordDownload(ctx context.Context, kind models.DownloadKind, documentID, batchID *uuid.UUID) error
}
