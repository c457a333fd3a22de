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
	"github.com/tarcin/docissuer/internal/pkg/helpers"
	"github.com/tarcin/docissuer/internal/pkg/logger"
)

// insertChunk bounds the rows of one multi-row INSERT so the statement stays
// well under the PostgreSQL bind parameter limit.
const insertChunk = 500

const certificateUniqueConstraint = "certificates_certificate_id_key"

var certificateColumns = []string{
	"id", "certificate_id", "recipient_name", "dob", "course", "course_code",
	"department", "college", "content", "duration", "batch_id", "created_at",
}

// CertificateFilter narrows certificate listings
type CertificateFilter struct {
	Search  string
	BatchID *uuid.UUID
	Limit   int
	Offset  int
}

// CertificateRepository handles certificate database operations
type CertificateRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCertificateRepository creates a new CertificateRepository
func NewCertificateRepository(pool *pgxpool.Pool) *CertificateRepository {
	return &CertificateRepository{
		db: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanCertificate(row pgx.Row) (*models.Certificate, error) {
	var c models.Certificate
	err := row.Scan(
		&c.ID, &c.CertificateID, &c.RecipientName, &c.DOB, &c.Course, &c.CourseCode,
		&c.Department, &c.College, &c.Content, &c.Duration, &c.BatchID, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func certificateValues(c *models.Certificate) []interface{} {
	return []interface{}{
		c.ID, c.CertificateID, c.RecipientName, c.DOB, c.Course, c.CourseCode,
		c.Department, c.College, c.Content, c.Duration, c.BatchID, c.CreatedAt,
	}
}

func mapCertificateInsertError(err error) error {
	if dberrors.IsDuplicateConstraintError(err, certificateUniqueConstraint) {
		return apperrors.ErrCertificateIDExists
	}
	if dberrors.IsForeignKeyError(err) {
		return apperrors.ErrBatchNotFound
	}
	return err
}

// insertCertificates writes certs in chunks on q
func (r *CertificateRepository) insertCertificates(ctx context.Context, q db.Querier, certs []models.Certificate) error {
	for start := 0; start < len(certs); start += insertChunk {
		end := start + insertChunk
		if end > len(certs) {
			end = len(certs)
		}

		ins := r.sb.Insert("certificates").Columns(certificateColumns...)
		for i := start; i < end; i++ {
			ins = ins.Values(certificateValues(&certs[i])...)
		}

		query, args, err := ins.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build certificate insert: %w", err)
		}
		if _, err := q.Exec(ctx, query, args...); err != nil {
			logger.Error().Err(err).Int("rows", end-start).Msg("Error inserting certificates")
			return fmt.Errorf("failed to insert certificates: %w", mapCertificateInsertError(err))
		}
	}
	return nil
}

// Create inserts one certificate
func (r *CertificateRepository) Create(ctx context.Context, c *models.Certificate) error {
	return r.insertCertificates(ctx, r.db, []models.Certificate{*c})
}

func (r *CertificateRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Certificate, error) {
	query, args, err := r.sb.Select(certificateColumns...).From("certificates").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build certificate query: %w", err)
	}

	c, err := scanCertificate(r.db.QueryRow(ctx, query, args...))
	if dberrors.IsNoRows(err) {
		return nil, apperrors.ErrCertificateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get certificate: %w", err)
	}
	return c, nil
}

// GetByID retrieves a certificate by its row ID
func (r *CertificateRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Certificate, error) {
	return r.getOne(ctx, uuidEq("id", id))
}

// GetByCertificateID retrieves a certificate by its public ID
func (r *CertificateRepository) GetByCertificateID(ctx context.Context, certificateID string) (*models.Certificate, error) {
	return r.getOne(ctx, squirrel.Eq{"certificate_id": certificateID})
}

func certificateWhere(f CertificateFilter) squirrel.And {
	where := squirrel.And{}
	if f.BatchID != nil {
		where = append(where, uuidEq("batch_id", *f.BatchID))
	}
	if f.Search != "" {
		pattern := "%" + helpers.EscapeLike(f.Search) + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"recipient_name": pattern},
			squirrel.ILike{"certificate_id": pattern},
			squirrel.ILike{"course": pattern},
			squirrel.ILike{"department": pattern},
			squirrel.ILike{"college": pattern},
		})
	}
	return where
}

// List returns a page of certificates, newest first, with the total match count
func (r *CertificateRepository) List(ctx context.Context, f CertificateFilter) ([]models.Certificate, int64, error) {
	where := certificateWhere(f)

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("certificates").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count certificates query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error executing count certificates query")
		return nil, 0, fmt.Errorf("failed to count certificates: %w", err)
	}
	if total == 0 {
		return []models.Certificate{}, 0, nil
	}

	query, args, err := r.sb.Select(certificateColumns...).From("certificates").Where(where).
		OrderBy("created_at DESC", "certificate_id DESC").
		Limit(uint64(f.Limit)).Offset(uint64(f.Offset)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list certificates query: %w", err)
	}

	certs, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return certs, total, nil
}

// ListByBatch returns every certificate of a batch ordered by certificate ID
func (r *CertificateRepository) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.Certificate, error) {
	query, args, err := r.sb.Select(certificateColumns...).From("certificates").
		Where(uuidEq("batch_id", batchID)).OrderBy("certificate_id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build batch certificates query: %w", err)
	}
	return r.query(ctx, query, args...)
}

func (r *CertificateRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.Certificate, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing certificates query")
		return nil, fmt.Errorf("failed to query certificates: %w", err)
	}
	defer rows.Close()

	certs := make([]models.Certificate, 0)
	for rows.Next() {
		c, err := scanCertificate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan certificate row: %w", err)
		}
		certs = append(certs, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate certificates: %w", err)
	}
	return certs, nil
}
