package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/tarcin/docissuer/internal/config"
	"github.com/tarcin/docissuer/internal/pkg/apperrors"
)

// DefaultMaxAttempts bounds one allocation
const DefaultMaxAttempts = 5

// SequenceStore is the persistence the allocator relies on. Each method must
// be a single atomic statement.
type SequenceStore interface {
	// Increment adds by to an existing counter and returns the new value.
	// found is false when the counter does not exist yet.
	Increment(ctx context.Context, year int, courseCode string, by int) (value int, found bool, err error)
	// InsertInitial creates the counter at value unless it already exists.
	InsertInitial(ctx context.Context, year int, courseCode string, value int) (inserted bool, err error)
	// Get reads the counter.
	Get(ctx context.Context, year int, courseCode string) (value int, found bool, err error)
	// Set raises the counter to value, never lowering it.
	Set(ctx context.Context, year int, courseCode string, value int) error
}

// SequenceExhaustedError is returned when no value could be allocated within
// the attempt bound. It matches apperrors.ErrSequenceExhausted.
type SequenceExhaustedError struct {
	Year       int
	CourseCode string
	Attempts   int
}

func (e *SequenceExhaustedError) Error() string {
	return fmt.Sprintf("certificate sequence %d/%s not allocated after %d attempts", e.Year, e.CourseCode, e.Attempts)
}

func (e *SequenceExhaustedError) Unwrap() error {
	return apperrors.ErrSequenceExhausted
}

// AllocatorOptions configures a SequenceAllocator
type AllocatorOptions struct {
	MaxAttempts    int
	ConflictPolicy string
}

// SequenceAllocator issues strictly increasing numbers per (year, course code).
// It holds no locks: uniqueness comes from the store's row atomicity.
type SequenceAllocator struct {
	store       SequenceStore
	logger      zerolog.Logger
	maxAttempts int
	policy      string
}

// NewSequenceAllocator creates a SequenceAllocator. Zero options fall back to
// five attempts and the retry policy.
func NewSequenceAllocator(store SequenceStore, logger zerolog.Logger, opts AllocatorOptions) *SequenceAllocator {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.ConflictPolicy == "" {
		opts.ConflictPolicy = config.ConflictPolicyRetry
	}
	return &SequenceAllocator{
		store:       store,
		logger:      logger.With().Str("component", "sequence_allocator").Logger(),
		maxAttempts: opts.MaxAttempts,
		policy:      opts.ConflictPolicy,
	}
}

// AllocateNext returns the next value for (year, courseCode)
func (a *SequenceAllocator) AllocateNext(ctx context.Context, year int, courseCode string) (int, error) {
	return a.AllocateRange(ctx, year, courseCode, 1)
}

// AllocateRange reserves count consecutive values and returns the first one.
// The whole block is reserved by one statement, so concurrent callers get
// disjoint blocks.
func (a *SequenceAllocator) AllocateRange(ctx context.Context, year int, courseCode string, count int) (int, error) {
	if err := validateKey(year, courseCode); err != nil {
		return 0, err
	}
	if count < 1 {
		return 0, apperrors.NewBadRequestError("allocation count must be positive")
	}

	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		last, found, err := a.store.Increment(ctx, year, courseCode, count)
		if err != nil {
			return 0, fmt.Errorf("increment sequence: %w", err)
		}
		if found {
			return last - count + 1, nil
		}

		inserted, err := a.store.InsertInitial(ctx, year, courseCode, count)
		if err != nil {
			return 0, fmt.Errorf("insert sequence: %w", err)
		}
		if inserted {
			return 1, nil
		}

		// Another caller created the row between our two statements.
		if a.policy == config.ConflictPolicyLegacy {
			stored, found, err := a.store.Get(ctx, year, courseCode)
			if err != nil {
				return 0, fmt.Errorf("read sequence: %w", err)
			}
			if found {
				a.logger.Warn().
					Int("year", year).
					Str("courseCode", courseCode).
					Int("value", stored+1).
					Msg("Sequence insert conflict: returning unpersisted stored+1")
				return stored + 1, nil
			}
		}

		a.logger.Debug().
			Int("year", year).
			Str("courseCode", courseCode).
			Int("attempt", attempt).
			Msg("Sequence insert conflict, retrying")
	}

	a.logger.Error().
		Int("year", year).
		Str("courseCode", courseCode).
		Int("attempts", a.maxAttempts).
		Msg("Sequence allocation exhausted")
	return 0, &SequenceExhaustedError{Year: year, CourseCode: courseCode, Attempts: a.maxAttempts}
}

// CommitSequence records value as issued. The counter never moves backwards.
func (a *SequenceAllocator) CommitSequence(ctx context.Context, year int, courseCode string, value int) error {
	if err := validateKey(year, courseCode); err != nil {
		return err
	}
	if value < 1 {
		return nil
	}
	if err := a.store.Set(ctx, year, courseCode, value); err != nil {
		return fmt.Errorf("commit sequence: %w", err)
	}
	return nil
}

func validateKey(year int, courseCode string) error {
	if year <= 0 {
		return apperrors.NewValidationError("year must be a positive integer", map[string]interface{}{"year": year})
	}
	if courseCode == "" {
		return apperrors.NewValidationError("courseCode is required", nil)
	}
	return nil
}

