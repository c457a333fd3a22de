package repositories

import (
	"context"
	"fmt"

	"github.com/tarcin/docissuer/internal/app/models"
	"github.com/tarcin/docissuer/internal/db"
	"github.com/tarcin/docissuer/internal/pkg/dberrors"
)

// SequenceRepository persists the per (year, course code) certificate counters.
// Every method is a single statement so row-level atomicity is all the
// allocator depends on.
type SequenceRepository struct {
	db db.Querier
}

// NewSequenceRepository creates a new SequenceRepository
func NewSequenceRepository(q db.Querier) *SequenceRepository {
	return &SequenceRepository{db: q}
}

// Increment adds by to an existing counter and returns the new value.
// found is false when no row exists for the key.
func (r *SequenceRepository) Increment(ctx context.Context, year int, courseCode string, by int) (int, bool, error) {
	var value int
	err := r.db.QueryRow(ctx, `
		UPDATE certificate_sequences
		SET last_sequence = last_sequence + $3, updated_at = NOW()
		WHERE year = $1 AND course_code = $2
		RETURNING last_sequence`, year, courseCode, by).Scan(&value)
	if dberrors.IsNoRows(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to increment sequence %d/%s: %w", year, courseCode, err)
	}
	return value, true, nil
}

// InsertInitial creates the counter at value. inserted is false when a
// concurrent caller created the row first.
func (r *SequenceRepository) InsertInitial(ctx context.Context, year int, courseCode string, value int) (bool, error) {
	var stored int
	err := r.db.QueryRow(ctx, `
		INSERT INTO certificate_sequences (year, course_code, last_sequence)
		VALUES ($1, $2, $3)
		ON CONFLICT (year, course_code) DO NOTHING
		RETURNING last_sequence`, year, courseCode, value).Scan(&stored)
	if dberrors.IsNoRows(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to insert sequence %d/%s: %w", year, courseCode, err)
	}
	return true, nil
}

// Get reads the counter without changing it
func (r *SequenceRepository) Get(ctx context.Context, year int, courseCode string) (int, bool, error) {
	var value int
	err := r.db.QueryRow(ctx, `
		SELECT last_sequence FROM certificate_sequences
		WHERE year = $1 AND course_code = $2`, year, courseCode).Scan(&value)
	if dberrors.IsNoRows(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read sequence %d/%s: %w", year, courseCode, err)
	}
	return value, true, nil
}

// Set raises the counter to value, creating it if needed. It never lowers
// an existing counter.
func (r *SequenceRepository) Set(ctx context.Context, year int, courseCode string, value int) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO certificate_sequences (year, course_code, last_sequence)
		VALUES ($1, $2, $3)
		ON CONFLICT (year, course_code) DO UPDATE
		SET last_sequence = GREATEST(certificate_sequences.last_sequence, EXCLUDED.last_sequence),
		    updated_at = NOW()`, year, courseCode, value)
	if err != nil {
		return fmt.Errorf("failed to commit sequence %d/%s: %w", year, courseCode, err)
	}
	return nil
}

// List returns every counter, newest year first
func (r *SequenceRepository) List(ctx context.Context) ([]models.SequenceCounter, error) {
	rows, err := r.db.Query(ctx, `
		SELECT year, course_code, last_sequence, updated_at
		FROM certificate_sequences
		ORDER BY year DESC, course_code`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sequences: %w", err)
	}
	defer rows.Close()

	var out []models.SequenceCounter
	for rows.Next() {
		var s models.SequenceCounter
		if err := rows.Scan(&s.Year, &s.CourseCode, &s.LastSequence, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sequence row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
