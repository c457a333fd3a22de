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

var letterColumns = []string{
	"id", "recipient_name", "letter_type", "course_name", "project_title",
	"start_date", "end_date", "completion_date", "position", "duration",
	"intern_id", "department", "letter_date", "batch_id", "created_at",
}

// LetterFilter narrows letter listings
type LetterFilter struct {
	Search     string
	LetterType models.LetterKind
	BatchID    *uuid.UUID
	Limit      int
	Offset     int
}

// LetterRepository handles letter database operations
type LetterRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewLetterRepository creates a new LetterRepository
func NewLetterRepository(pool *pgxpool.Pool) *LetterRepository {
	return &LetterRepository{
		db: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanLetter(row pgx.Row) (*models.Letter, error) {
	var l models.Letter
	err := row.Scan(
		&l.ID, &l.RecipientName, &l.LetterType, &l.CourseName, &l.ProjectTitle,
		&l.StartDate, &l.EndDate, &l.CompletionDate, &l.Position, &l.Duration,
		&l.InternID, &l.Department, &l.LetterDate, &l.BatchID, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func letterValues(l *models.Letter) []interface{} {
	return []interface{}{
		l.ID, l.RecipientName, l.LetterType, l.CourseName, l.ProjectTitle,
		l.StartDate, l.EndDate, l.CompletionDate, l.Position, l.Duration,
		l.InternID, l.Department, l.LetterDate, l.BatchID, l.CreatedAt,
	}
}

func (r *LetterRepository) insertLetters(ctx context.Context, q db.Querier, letters []models.Letter) error {
	for start := 0; start < len(letters); start += insertChunk {
		end := start + insertChunk
		if end > len(letters) {
			end = len(letters)
		}

		ins := r.sb.Insert("letters").Columns(letterColumns...)
		for i := start; i < end; i++ {
			ins = ins.Values(letterValues(&letters[i])...)
		}

		query, args, err := ins.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build letter insert: %w", err)
		}
		if _, err := q.Exec(ctx, query, args...); err != nil {
			logger.Error().Err(err).Int("rows", end-start).Msg("Error inserting letters")
			if dberrors.IsForeignKeyError(err) {
				err = apperrors.ErrBatchNotFound
			}
			return fmt.Errorf("failed to insert letters: %w", err)
		}
	}
	return nil
}

// Create inserts one letter
func (r *LetterRepository) Create(ctx context.Context, l *models.Letter) error {
	return r.insertLetters(ctx, r.db, []models.Letter{*l})
}

// GetByID retrieves a letter by ID
func (r *LetterRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Letter, error) {
	query, args, err := r.sb.Select(letterColumns...).From("letters").Where(uuidEq("id", id)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build letter query: %w", err)
	}

	l, err := scanLetter(r.db.QueryRow(ctx, query, args...))
	if dberrors.IsNoRows(err) {
		return nil, apperrors.ErrLetterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get letter: %w", err)
	}
	return l, nil
}

func letterWhere(f LetterFilter) squirrel.And {
	where := squirrel.And{}
	if f.BatchID != nil {
		where = append(where, uuidEq("batch_id", *f.BatchID))
	}
	if f.LetterType != "" {
		where = append(where, squirrel.Eq{"letter_type": f.LetterType})
	}
	if f.Search != "" {
		pattern := "%" + helpers.EscapeLike(f.Search) + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"recipient_name": pattern},
			squirrel.ILike{"course_name": pattern},
			squirrel.ILike{"project_title": pattern},
			squirrel.ILike{"position": pattern},
			squirrel.ILike{"department": pattern},
		})
	}
	return where
}

// List returns a page of letters, newest first, with the total match count
func (r *LetterRepository) List(ctx context.Context, f LetterFilter) ([]models.Letter, int64, error) {
	where := letterWhere(f)

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("letters").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count letters query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error executing count letters query")
		return nil, 0, fmt.Errorf("failed to count letters: %w", err)
	}
	if total == 0 {
		return []models.Letter{}, 0, nil
	}

	query, args, err := r.sb.Select(letterColumns...).From("letters").Where(where).
		OrderBy("created_at DESC").
		Limit(uint64(f.Limit)).Offset(uint64(f.Offset)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list letters query: %w", err)
	}

	letters, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return letters, total, nil
}

// ListByBatch returns every letter of a batch, newest first
func (r *LetterRepository) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.Letter, error) {
	query, args, err := r.sb.Select(letterColumns...).From("letters").
		Where(uuidEq("batch_id", batchID)).OrderBy("created_at DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build batch letters query: %w", err)
	}
	return r.query(ctx, query, args...)
}

func (r *LetterRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.Letter, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing letters query")
		return nil, fmt.Errorf("failed to query letters: %w", err)
	}
	defer rows.Close()

	letters := make([]models.Letter, 0)
	for rows.Next() {
		l, err := scanLetter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan letter row: %w", err)
		}
		letters = append(letters, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate letters: %w", err)
	}
	return letters, nil
}
