package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tarcin/docissuer/internal/app/models"
	"github.com/tarcin/docissuer/internal/app/models/dto"
	"github.com/tarcin/docissuer/internal/pkg/apperrors"
	"github.com/tarcin/docissuer/internal/pkg/filestorage"
	"github.com/tarcin/docissuer/internal/pkg/helpers"
	"github.com/tarcin/docissuer/internal/pkg/tabular"
)

// Certificate sheet columns. Required ones are matched case-sensitively.
const (
	columnName       = "Name"
	columnCourse     = "Course"
	columnDepartment = "Department"
	columnCollege    = "College"
	columnDuration   = "Duration"
	columnContent    = "Content"
)

var dobColumns = []string{"DOB", "dob", "DateOfBirth", "dateofbirth"}

// Storage sub paths of uploaded sources
const (
	certificateSourceDir = "imports/certificates"
	letterSourceDir      = "imports/letters"
)

// CertificateImport is one bulk certificate upload
type CertificateImport struct {
	FileName   string
	File       io.Reader
	Year       string
	CourseCode string
}

// LetterImport is one bulk letter upload
type LetterImport struct {
	FileName   string
	File       io.Reader
	LetterType string
}

// ImportService turns uploaded sheets into batches of documents
type ImportService struct {
	batches   BatchStore
	allocator *SequenceAllocator
	storage   filestorage.FileStorage
	prefix    string
	logger    zerolog.Logger
	now       func() time.Time
}

// NewImportService creates a new ImportService
func NewImportService(
	batches BatchStore,
	allocator *SequenceAllocator,
	storage filestorage.FileStorage,
	prefix string,
	logger zerolog.Logger,
) *ImportService {
	return &ImportService{
		batches:   batches,
		allocator: allocator,
		storage:   storage,
		prefix:    prefix,
		logger:    logger.With().Str("component", "import").Logger(),
		now:       time.Now,
	}
}

// ImportCertificates creates one batch and a certificate per row carrying both
// Name and Course. Other rows are skipped.
func (s *ImportService) ImportCertificates(ctx context.Context, in CertificateImport) (*dto.BulkCertificateResponse, error) {
	data, table, err := s.decode(in.FileName, in.File)
	if err != nil {
		return nil, err
	}

	if missing := table.Missing(columnName, columnCourse); len(missing) > 0 {
		return nil, apperrors.NewCustomError(apperrors.ErrMissingHeaders,
			"Missing required columns: "+strings.Join(missing, ", ")).
			WithDetails(map[string]interface{}{"missingHeaders": missing})
	}
	if len(table.Rows) == 0 {
		return nil, apperrors.ErrNoDataRows
	}

	year, courseCode, err := parseCertificateKey(in.Year, in.CourseCode)
	if err != nil {
		return nil, err
	}

	var valid []map[string]string
	for i := range table.Rows {
		rec := table.Record(i)
		if rec[columnName] == "" || rec[columnCourse] == "" {
			continue
		}
		valid = append(valid, rec)
	}
	skipped := len(table.Rows) - len(valid)
	if len(valid) == 0 {
		return nil, apperrors.NewCustomError(apperrors.ErrNoValidRows,
			"No rows with both Name and Course were found").
			WithDetails(map[string]interface{}{"skipped": skipped})
	}

	stored, err := s.storage.Save(bytes.NewReader(data), in.FileName, certificateSourceDir)
	if err != nil {
		return nil, fmt.Errorf("error saving import source: %w", err)
	}

	first, err := s.allocator.AllocateRange(ctx, year, courseCode, len(valid))
	if err != nil {
		s.discard(stored)
		return nil, fmt.Errorf("error allocating certificate sequences: %w", err)
	}

	now := s.now().UTC()
	batch := newBatch(in.FileName, models.BatchCertificate, stored, len(table.Rows), now)

	certs := make([]models.Certificate, 0, len(valid))
	for i, rec := range valid {
		certs = append(certs, models.Certificate{
			ID:            uuid.New(),
			CertificateID: models.FormatCertificateID(s.prefix, year, courseCode, first+i),
			RecipientName: rec[columnName],
			DOB:           s.birthDate(rec),
			Course:        rec[columnCourse],
			CourseCode:    courseCode,
			Department:    helpers.NullIfEmpty(rec[columnDepartment]),
			College:       helpers.NullIfEmpty(rec[columnCollege]),
			Content:       helpers.NullIfEmpty(rec[columnContent]),
			Duration:      helpers.NullIfEmpty(rec[columnDuration]),
			BatchID:       &batch.ID,
			CreatedAt:     now,
		})
	}

	if err := s.batches.CreateWithCertificates(ctx, batch, certs); err != nil {
		s.discard(stored)
		return nil, fmt.Errorf("error saving certificate batch: %w", err)
	}

	last := first + len(certs) - 1
	if err := s.allocator.CommitSequence(ctx, year, courseCode, last); err != nil {
		s.logger.Error().Err(err).
			Int("year", year).
			Str("courseCode", courseCode).
			Int("value", last).
			Msg("Failed to commit certificate sequence after import")
	}

	s.logger.Info().
		Str("batchId", batch.ID.String()).
		Int("rows", len(table.Rows)).
		Int("created", len(certs)).
		Int("skipped", skipped).
		Msg("Certificate batch imported")

	return &dto.BulkCertificateResponse{
		Batch:        batch,
		Certificates: certs,
		Count:        len(certs),
		Skipped:      skipped,
	}, nil
}

// ImportLetters creates one batch and a sparse letter per row with a
// recipient name.
func (s *ImportService) ImportLetters(ctx context.Context, in LetterImport) (*dto.BulkLetterResponse, error) {
	kind, ok := models.ParseLetterKind(in.LetterType)
	if !ok {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidLetterType,
			"letterType must be offer or completion").WithField("letterType")
	}

	data, table, err := s.decode(in.FileName, in.File)
	if err != nil {
		return nil, err
	}
	if len(table.Rows) == 0 {
		return nil, apperrors.ErrNoDataRows
	}

	records := table.SparseRecords(tabular.LetterAliases)
	now := s.now().UTC()

	letters := make([]models.Letter, 0, len(records))
	for _, rec := range records {
		if rec[tabular.FieldRecipientName] == "" {
			continue
		}
		letters = append(letters, sparseLetter(rec, kind, now))
	}
	skipped := len(records) - len(letters)
	if len(letters) == 0 {
		return nil, apperrors.NewCustomError(apperrors.ErrNoValidRows,
			"No rows with a recipient name were found").
			WithDetails(map[string]interface{}{"skipped": skipped})
	}

	stored, err := s.storage.Save(bytes.NewReader(data), in.FileName, letterSourceDir)
	if err != nil {
		return nil, fmt.Errorf("error saving import source: %w", err)
	}

	batch := newBatch(in.FileName, kind.BatchKind(), stored, len(table.Rows), now)
	for i := range letters {
		letters[i].BatchID = &batch.ID
	}

	if err := s.batches.CreateWithLetters(ctx, batch, letters); err != nil {
		s.discard(stored)
		return nil, fmt.Errorf("error saving letter batch: %w", err)
	}

	s.logger.Info().
		Str("batchId", batch.ID.String()).
		Str("letterType", string(kind)).
		Int("created", len(letters)).
		Int("skipped", skipped).
		Msg("Letter batch imported")

	return &dto.BulkLetterResponse{
		Batch:   batch,
		Letters: letters,
		Count:   len(letters),
		Skipped: skipped,
	}, nil
}

func (s *ImportService) decode(fileName string, r io.Reader) ([]byte, *tabular.Table, error) {
	if r == nil {
		return nil, nil, apperrors.NewValidationError("file is required", nil).WithField("csv")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading upload: %w", err)
	}

	table, err := tabular.Decode(fileName, bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, tabular.ErrUnsupportedFormat) {
			return nil, nil, apperrors.NewCustomError(apperrors.ErrUnsupportedFile,
				"Only CSV and XLSX files are supported").WithField("csv")
		}
		return nil, nil, apperrors.NewValidationError("The uploaded file could not be parsed",
			map[string]interface{}{"error": err.Error()}).WithField("csv")
	}
	if len(table.Headers) == 0 {
		return nil, nil, apperrors.ErrNoDataRows
	}
	return data, table, nil
}

func (s *ImportService) birthDate(rec map[string]string) *time.Time {
	for _, col := range dobColumns {
		raw := rec[col]
		if raw == "" {
			continue
		}
		if t, ok := helpers.ParseBirthDate(raw); ok {
			return &t
		}
		s.logger.Warn().Str("column", col).Str("value", raw).Msg("Ignoring unparseable date of birth")
		return nil
	}
	return nil
}

func (s *ImportService) discard(stored *filestorage.StoredFile) {
	if err := s.storage.DeleteFile(stored.Path); err != nil {
		s.logger.Warn().Err(err).Str("path", stored.Path).Msg("Failed to remove import source")
	}
}

func parseCertificateKey(rawYear, rawCode string) (int, string, error) {
	year, err := strconv.Atoi(strings.TrimSpace(rawYear))
	if err != nil || year < 1000 || year > 9999 {
		return 0, "", apperrors.NewValidationError("year must be a four digit integer",
			map[string]interface{}{"year": rawYear}).WithField("year")
	}
	code := strings.TrimSpace(rawCode)
	if code == "" {
		return 0, "", apperrors.NewValidationError("courseCode is required", nil).WithField("courseCode")
	}
	if !models.ValidCourseCode(code) {
		return 0, "", apperrors.NewValidationError("courseCode must not contain '/' or spaces",
			map[string]interface{}{"courseCode": rawCode}).WithField("courseCode")
	}
	return year, code, nil
}

func newBatch(fileName string, kind models.BatchKind, stored *filestorage.StoredFile, total int, now time.Time) *models.Batch {
	base := filepath.Base(fileName)
	return &models.Batch{
		ID:             uuid.New(),
		Name:           strings.TrimSuffix(base, filepath.Ext(base)),
		Kind:           kind,
		SourceFileName: base,
		SourcePath:     &stored.Path,
		TotalDocuments: total,
		CreatedAt:      now,
	}
}

func sparseLetter(rec map[string]string, kind models.LetterKind, now time.Time) models.Letter {
	field := func(name string) *string {
		v, ok := rec[name]
		if !ok {
			return nil
		}
		return &v
	}
	return models.Letter{
		ID:             uuid.New(),
		RecipientName:  rec[tabular.FieldRecipientName],
		LetterType:     kind,
		CourseName:     field(tabular.FieldCourseName),
		ProjectTitle:   field(tabular.FieldProjectTitle),
		StartDate:      field(tabular.FieldStartDate),
		EndDate:        field(tabular.FieldEndDate),
		CompletionDate: field(tabular.FieldCompletionDate),
		Position:       field(tabular.FieldPosition),
		Duration:       field(tabular.FieldDuration),
		InternID:       field(tabular.FieldInternID),
		Department:     field(tabular.FieldDepartment),
		LetterDate:     field(tabular.FieldLetterDate),
		CreatedAt:      now,
	}
}
