package services

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/tarcin/docissuer/internal/app/models"
	"github.com/tarcin/docissuer/internal/app/models/dto"
	"github.com/tarcin/docissuer/internal/pkg/apperrors"
	"github.com/tarcin/docissuer/internal/pkg/helpers"
	"github.com/tarcin/docissuer/internal/pkg/tabular"
)

// SourceOpener reads stored import files
type SourceOpener interface {
	Open(path string) (io.ReadCloser, error)
}

// BatchService exposes batches and their documents
type BatchService struct {
	batches BatchStore
	certs   CertificateStore
	letters LetterStore
	sources SourceOpener
}

// NewBatchService creates a new BatchService
func NewBatchService(batches BatchStore, certs CertificateStore, letters LetterStore, sources SourceOpener) *BatchService {
	return &BatchService{batches: batches, certs: certs, letters: letters, sources: sources}
}

// GetBatch returns one batch
func (s *BatchService) GetBatch(ctx context.Context, id uuid.UUID) (*models.Batch, error) {
	return s.batches.GetByID(ctx, id)
}

// ListBatches returns one page of batches, newest first
func (s *BatchService) ListBatches(ctx context.Context, limit, offset int) (dto.ListResponse[models.Batch], error) {
	limit, offset = helpers.NormalizeLimitOffset(limit, offset)

	batches, total, err := s.batches.List(ctx, limit, offset)
	if err != nil {
		return dto.ListResponse[models.Batch]{}, fmt.Errorf("error listing batches: %w", err)
	}
	return helpers.NewListResponse(batches, total, limit, offset), nil
}

// BatchCertificates returns the certificates of a batch ordered by certificate ID
func (s *BatchService) BatchCertificates(ctx context.Context, id uuid.UUID) ([]models.Certificate, error) {
	if _, err := s.batches.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.certs.ListByBatch(ctx, id)
}

// BatchLetters returns the letters of a batch, newest first
func (s *BatchService) BatchLetters(ctx context.Context, id uuid.UUID) ([]models.Letter, error) {
	if _, err := s.batches.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.letters.ListByBatch(ctx, id)
}

// SourceFile returns the spreadsheet the batch was imported from
func (s *BatchService) SourceFile(ctx context.Context, id uuid.UUID) (*RenderedDocument, error) {
	batch, err := s.batches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if batch.SourcePath == nil || *batch.SourcePath == "" {
		return nil, apperrors.NewCustomError(apperrors.ErrResourceNotFound, "Batch has no stored source file")
	}

	rc, err := s.sources.Open(*batch.SourcePath)
	if err != nil {
		return nil, apperrors.NewCustomError(fmt.Errorf("%w: %v", apperrors.ErrResourceNotFound, err),
			"Source file is no longer available")
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("error reading batch source: %w", err)
	}

	format, err := tabular.DetectFormat(batch.SourceFileName)
	if err != nil {
		format = tabular.FormatCSV
	}
	return &RenderedDocument{
		FileName:    batch.SourceFileName,
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}
