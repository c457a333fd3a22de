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

// CertificateService creates and looks up single certificates
type CertificateService struct {
	certs     CertificateStore
	allocator *SequenceAllocator
	prefix    string
	logger    zerolog.Logger
	now       func() time.Time
}

// NewCertificateService creates a new CertificateService
func NewCertificateService(certs CertificateStore, allocator *SequenceAllocator, prefix string, logger zerolog.Logger) *CertificateService {
	return &CertificateService{
		certs:     certs,
		allocator: allocator,
		prefix:    prefix,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateCertificate stores one certificate. Without a supplied ID the next
// sequence of the current year is allocated and committed.
func (s *CertificateService) CreateCertificate(ctx context.Context, req *dto.CreateCertificateRequest) (*models.Certificate, error) {
	code := strings.TrimSpace(req.CourseCode)
	if !models.ValidCourseCode(code) {
		return nil, apperrors.NewValidationError("courseCode must not contain '/' or spaces", nil).WithField("courseCode")
	}

	cert := &models.Certificate{
		ID:            uuid.New(),
		RecipientName: strings.TrimSpace(req.RecipientName),
		Course:        strings.TrimSpace(req.Course),
		CourseCode:    code,
		Department:    helpers.NullIfEmpty(req.Department),
		College:       helpers.NullIfEmpty(req.College),
		Content:       helpers.NullIfEmpty(req.Content),
		Duration:      helpers.NullIfEmpty(req.Duration),
		BatchID:       req.BatchID,
		CreatedAt:     s.now().UTC(),
	}

	if raw := strings.TrimSpace(req.DOB); raw != "" {
		dob, ok := helpers.ParseBirthDate(raw)
		if !ok {
			return nil, apperrors.NewValidationError("dob must be DD-MM-YYYY or YYYY-MM-DD", nil).WithField("dob")
		}
		cert.DOB = &dob
	}

	if id := strings.TrimSpace(req.CertificateID); id != "" {
		cert.CertificateID = id
		if err := s.certs.Create(ctx, cert); err != nil {
			return nil, fmt.Errorf("error creating certificate: %w", err)
		}
		// keep the counter ahead of explicitly numbered certificates
		if parts, err := models.ParseCertificateID(id); err == nil {
			s.commit(ctx, parts.Year, parts.CourseCode, parts.Sequence)
		}
		return cert, nil
	}

	year := s.now().Year()
	seq, err := s.allocator.AllocateNext(ctx, year, code)
	if err != nil {
		return nil, fmt.Errorf("error allocating certificate sequence: %w", err)
	}
	cert.CertificateID = models.FormatCertificateID(s.prefix, year, code, seq)

	if err := s.certs.Create(ctx, cert); err != nil {
		return nil, fmt.Errorf("error creating certificate: %w", err)
	}
	s.commit(ctx, year, code, seq)

	s.logger.Info().Str("certificateId", cert.CertificateID).Msg("Certificate created")
	return cert, nil
}

// commit logs instead of failing: the document is already stored
func (s *CertificateService) commit(ctx context.Context, year int, code string, value int) {
	if err := s.allocator.CommitSequence(ctx, year, code, value); err != nil {
		s.logger.Error().Err(err).
			Int("year", year).
			Str("courseCode", code).
			Int("value", value).
			Msg("Failed to commit certificate sequence")
	}
}

// GetCertificate returns a certificate by row ID
func (s *CertificateService) GetCertificate(ctx context.Context, id uuid.UUID) (*models.Certificate, error) {
	return s.certs.GetByID(ctx, id)
}

// VerifyCertificate looks a certificate up by its public ID
func (s *CertificateService) VerifyCertificate(ctx context.Context, certificateID string) (*dto.VerifyResponse, error) {
	certificateID = strings.TrimSpace(certificateID)
	if certificateID == "" {
		return nil, apperrors.NewValidationError("id is required", nil).WithField("id")
	}

	cert, err := s.certs.GetByCertificateID(ctx, certificateID)
	if err != nil {
		return nil, err
	}

	return &dto.VerifyResponse{
		Valid:         true,
		CertificateID: cert.CertificateID,
		RecipientName: cert.RecipientName,
		Course:        cert.Course,
		IssuedOn:      cert.CreatedAt.Format(helpers.LongDateLayout),
	}, nil
}

// ListCertificates returns one page of certificates
func (s *CertificateService) ListCertificates(ctx context.Context, f repositories.CertificateFilter) (dto.ListResponse[models.Certificate], error) {
	f.Limit, f.Offset = helpers.NormalizeLimitOffset(f.Limit, f.Offset)
	f.Search = strings.TrimSpace(f.Search)

	certs, total, err := s.certs.List(ctx, f)
	if err != nil {
		return dto.ListResponse[models.Certificate]{}, fmt.Errorf("error listing certificates: %w", err)
	}
	return helpers.NewListResponse(certs, total, f.Limit, f.Offset), nil
}
