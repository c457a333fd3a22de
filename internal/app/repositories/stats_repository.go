package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tarcin/docissuer/internal/app/models"
	"github.com/tarcin/docissuer/internal/pkg/logger"
)

// StatsRepository aggregates dashboard counters and records downloads
type StatsRepository struct {
	db *pgxpool.Pool
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: pool}
}

// Stats returns every counter in one round trip
func (r *StatsRepository) Stats(ctx context.Context) (*models.Stats, error) {
	var s models.Stats
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM certificates),
			(SELECT COUNT(*) FROM letters),
			(SELECT COUNT(*) FROM batches),
			(SELECT COUNT(*) FROM document_downloads)`).
		Scan(&s.TotalCertificates, &s.TotalLetters, &s.TotalBatches, &s.TotalDownloads)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing stats query")
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}
	return &s, nil
}

// RecordDownload stores one download event. documentID and batchID may be nil.
func (r *StatsRepository) RecordDownload(ctx context.Context, kind models.DownloadKind, documentID, batchID *uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO document_downloads (document_kind, document_id, batch_id)
		VALUES ($1, $2, $3)`, kind, documentID, batchID)
	if err != nil {
		return fmt.Errorf("failed to record download: %w", err)
	}
	return nil
}
