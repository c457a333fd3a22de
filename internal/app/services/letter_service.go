package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tarcin/docissuer/internal/app/models"
	"github.com/tarcin/docissuer/internal/app/models/dto"
	"github.com/tarcin/docissuer/internal/app/repositories"
	"github.com/tarcin/docissuer/internal/pkg/apperrors"
	"github.com/tarcin/docissuer/internal/pkg/helpers"
)

// LetterService creates and looks up single letters
type LetterService struct {
	letters LetterStore
	logger  zerolog.Logger
	now     func() time.Time
}

// NewLetterService creates a new LetterService
func NewLetterService(letters LetterStore, logger zerolog.Logger) *LetterService {
	return &LetterService{letters: letters, logger: logger, now: time.Now}
}

// CreateLetter stores one letter
func (s *LetterService) CreateLetter(ctx context.Context, req *dto.CreateLetterRequest) (*models.Letter, error) {
	kind, ok := models.ParseLetterKind(req.LetterType)
	if !ok {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidLetterType, "letterType must be offer or completion").WithField("letterType")
	}

	letter := &models.Letter{
		ID:             uuid.New(),
		RecipientName:  strings.TrimSpace(req.RecipientName),
		LetterType:     kind,
		CourseName:     helpers.NullIfEmpty(req.CourseName),
		ProjectTitle:   helpers.NullIfEmpty(req.ProjectTitle),
		StartDate:      helpers.NullIfEmpty(req.StartDate),
		EndDate:        helpers.NullIfEmpty(req.EndDate),
		CompletionDate: helpers.NullIfEmpty(req.CompletionDate),
		Position:       helpers.NullIfEmpty(req.Position),
		Duration:       helpers.NullIfEmpty(req.Duration),
		InternID:       helpers.NullIfEmpty(req.InternID),
		Department:     helpers.NullIfEmpty(req.Department),
		LetterDate:     helpers.NullIfEmpty(req.LetterDate),
		BatchID:        req.BatchID,
		CreatedAt:      s.now().UTC(),
	}

	if err := s.letters.Create(ctx, letter); err != nil {
		return nil, fmt.Errorf("error creating letter: %w", err)
	}

	s.logger.Info().Str("letterId", letter.ID.String()).Str("letterType", string(kind)).Msg("Letter created")
	return letter, nil
}

// GetLetter returns a letter by ID
func (s *LetterService) GetLetter(ctx context.Context, id uuid.UUID) (*models.Letter, error) {
	return s.letters.GetByID(ctx, id)
}

// ListLetters returns one page of letters
func (s *LetterService) ListLetters(ctx context.Context, f repositories.LetterFilter) (dto.ListResponse[models.Letter], error) {
	f.Limit, f.Offset = helpers.NormalizeLimitOffset(f.Limit, f.Offset)
	f.Search = strings.TrimSpace(f.Search)

	letters, total, err := s.letters.List(ctx, f)
	if err != nil {
		return dto.ListResponse[models.Letter]{}, fmt.Errorf("error listing letters: %w", err)
	}
	return helpers.NewListResponse(letters, total, f.Limit, f.Offset), nil
}
