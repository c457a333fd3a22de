package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tarcin/docissuer/internal/app/models"
	"github.com/tarcin/docissuer/internal/db"
	"github.com/tarcin/docissuer/internal/pkg/apperrors"
	"github.com/tarcin/docissuer/internal/pkg/dberrors"
	"github.com/tarcin/docissuer/internal/pkg/logger"
)

var batchColumns = []string{
	"id", "name", "kind", "source_file_name", "source_path", "total_documents", "created_at",
}

// BatchRepository handles batch database operations. A batch and its
// documents are always written in one transaction.
type BatchRepository struct {
	db           *pgxpool.Pool
	sb           squirrel.StatementBuilderType
	certificates *CertificateRepository
	letters      *LetterRepository
}

// NewBatchRepository creates a new BatchRepository
func NewBatchRepository(pool *pgxpool.Pool, certificates *CertificateRepository, letters *LetterRepository) *BatchRepository {
	return &BatchRepository{
		db:           pool,
		sb:           squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		certificates: certificates,
		letters:      letters,
	}
}

func scanBatch(row pgx.Row) (*models.Batch, error) {
	var b models.Batch
	if err := row.Scan(&b.ID, &b.Name, &b.Kind, &b.SourceFileName, &b.SourcePath, &b.TotalDocuments, &b.CreatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BatchRepository) insertBatch(ctx context.Context, q db.Querier, b *models.Batch) error {
	query, args, err := r.sb.Insert("batches").Columns(batchColumns...).
		Values(b.ID, b.Name, b.Kind, b.SourceFileName, b.SourcePath, b.TotalDocuments, b.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build batch insert: %w", err)
	}
	if _, err := q.Exec(ctx, query, args...); err != nil {
		logger.Error().Err(err).Str("batchId", b.ID.String()).Msg("Error inserting batch")
		return fmt.Errorf("failed to insert batch: %w", err)
	}
	return nil
}

// CreateWithCertificates inserts the batch and its certificates atomically
func (r *BatchRepository) CreateWithCertificates(ctx context.Context, b *models.Batch, certs []models.Certificate) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if err := r.insertBatch(ctx, tx, b); err != nil {
			return err
		}
		return r.certificates.insertCertificates(ctx, tx, certs)
	})
}

// CreateWithLetters inserts the batch and its letters atomically
func (r *BatchRepository) CreateWithLetters(ctx context.Context, b *models.Batch, letters []models.Letter) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if err := r.insertBatch(ctx, tx, b); err != nil {
			return err
		}
		return r.letters.insertLetters(ctx, tx, letters)
	})
}

// GetByID retrieves a batch by ID
func (r *BatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Batch, error) {
	query, args, err := r.sb.Select(batchColumns...).From("batches").Where(uuidEq("id", id)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build batch query: %w", err)
	}

	b, err := scanBatch(r.db.QueryRow(ctx, query, args...))
	if dberrors.IsNoRows(err) {
		return nil, apperrors.ErrBatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}
	return b, nil
}

// List returns a page of batches, newest first
func (r *BatchRepository) List(ctx context.Context, limit, offset int) ([]models.Batch, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM batches").Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error executing count batches query")
		return nil, 0, fmt.Errorf("failed to count batches: %w", err)
	}
	if total == 0 {
		return []models.Batch{}, 0, nil
	}

	query, args, err := r.sb.Select(batchColumns...).From("batches").
		OrderBy("created_at DESC").Limit(uint64(limit)).Offset(uint64(offset)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list batches query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list batches query")
		return nil, 0, fmt.Errorf("failed to list batches: %w", err)
	}
	defer rows.Close()

	batches := make([]models.Batch, 0)
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan batch row: %w", err)
		}
		batches = append(batches, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate batches: %w", err)
	}
	return batches, total, nil
}
