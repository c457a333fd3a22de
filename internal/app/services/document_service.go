package services

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tarcin/docissuer/internal/app/models"
	"github.com/tarcin/docissuer/internal/pkg/apperrors"
	"github.com/tarcin/docissuer/internal/pkg/helpers"
	"github.com/tarcin/docissuer/internal/pkg/pdfgen"
	"github.com/tarcin/docissuer/internal/pkg/tabular"
)

const pdfContentType = "application/pdf"

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// Renderer produces document PDFs
type Renderer interface {
	Certificate(c *models.Certificate) ([]byte, error)
	Letter(l *models.Letter) ([]byte, error)
}

// RenderedDocument is a file ready to be sent to the client
type RenderedDocument struct {
	FileName    string
	ContentType string
	Data        []byte
}

// DocumentService renders stored records on demand and records each download
type DocumentService struct {
	certs    CertificateStore
	letters  LetterStore
	batches  BatchStore
	stats    StatsStore
	renderer Renderer
	logger   zerolog.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	certs CertificateStore,
	letters LetterStore,
	batches BatchStore,
	stats StatsStore,
	renderer Renderer,
	logger zerolog.Logger,
) *DocumentService {
	return &DocumentService{
		certs:    certs,
		letters:  letters,
		batches:  batches,
		stats:    stats,
		renderer: renderer,
		logger:   logger.With().Str("component", "documents").Logger(),
	}
}

// CertificatePDF renders one certificate
func (s *DocumentService) CertificatePDF(ctx context.Context, id uuid.UUID) (*RenderedDocument, error) {
	cert, err := s.certs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := s.renderer.Certificate(cert)
	if err != nil {
		return nil, s.renderError(err, "certificate", cert.ID)
	}

	s.recordDownload(ctx, models.DownloadCertificate, &cert.ID, cert.BatchID)
	return &RenderedDocument{
		FileName:    pdfgen.CertificateFileName(cert.CertificateID, cert.RecipientName),
		ContentType: pdfContentType,
		Data:        data,
	}, nil
}

// LetterPDF renders one letter
func (s *DocumentService) LetterPDF(ctx context.Context, id uuid.UUID) (*RenderedDocument, error) {
	letter, err := s.letters.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := s.renderer.Letter(letter)
	if err != nil {
		return nil, s.renderError(err, "letter", letter.ID)
	}

	s.recordDownload(ctx, models.DownloadLetter, &letter.ID, letter.BatchID)
	return &RenderedDocument{
		FileName:    pdfgen.LetterFileName(string(letter.LetterType), letter.RecipientName),
		ContentType: pdfContentType,
		Data:        data,
	}, nil
}

// BatchArchive renders every document of a batch into one ZIP
func (s *DocumentService) BatchArchive(ctx context.Context, batchID uuid.UUID) (*RenderedDocument, error) {
	batch, err := s.batches.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}

	var entries []pdfgen.ArchiveEntry
	if batch.Kind.IsLetter() {
		letters, err := s.letters.ListByBatch(ctx, batchID)
		if err != nil {
			return nil, err
		}
		for i := range letters {
			l := &letters[i]
			entries = append(entries, pdfgen.ArchiveEntry{
				Name:   pdfgen.LetterFileName(string(l.LetterType), l.RecipientName),
				Render: func() ([]byte, error) { return s.renderer.Letter(l) },
			})
		}
	} else {
		certs, err := s.certs.ListByBatch(ctx, batchID)
		if err != nil {
			return nil, err
		}
		for i := range certs {
			c := &certs[i]
			entries = append(entries, pdfgen.ArchiveEntry{
				Name:   pdfgen.CertificateFileName(c.CertificateID, c.RecipientName),
				Render: func() ([]byte, error) { return s.renderer.Certificate(c) },
			})
		}
	}

	var buf bytes.Buffer
	if err := pdfgen.WriteArchive(&buf, entries); err != nil {
		return nil, s.renderError(err, "archive", batch.ID)
	}

	s.recordDownload(ctx, models.DownloadArchive, nil, &batch.ID)
	s.logger.Info().Str("batchId", batch.ID.String()).Int("documents", len(entries)).Msg("Batch archive rendered")

	return &RenderedDocument{
		FileName:    safeFileName(batch.Name) + ".zip",
		ContentType: "application/zip",
		Data:        buf.Bytes(),
	}, nil
}

// BatchExport writes the records of a batch as CSV or XLSX
func (s *DocumentService) BatchExport(ctx context.Context, batchID uuid.UUID, format string) (*RenderedDocument, error) {
	f, err := tabular.ParseFormat(strings.ToLower(strings.TrimSpace(format)))
	if err != nil {
		return nil, apperrors.NewValidationError("format must be csv or xlsx",
			map[string]interface{}{"format": format}).WithField("format")
	}

	batch, err := s.batches.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}

	var table *tabular.Table
	if batch.Kind.IsLetter() {
		letters, err := s.letters.ListByBatch(ctx, batchID)
		if err != nil {
			return nil, err
		}
		table = LetterExportTable(letters)
	} else {
		certs, err := s.certs.ListByBatch(ctx, batchID)
		if err != nil {
			return nil, err
		}
		table = CertificateExportTable(certs)
	}

	data, err := tabular.Encode(f, table)
	if err != nil {
		return nil, s.renderError(err, "export", batch.ID)
	}

	s.recordDownload(ctx, models.DownloadExport, nil, &batch.ID)
	return &RenderedDocument{
		FileName:    safeFileName(batch.Name) + "." + string(f),
		ContentType: f.ContentType(),
		Data:        data,
	}, nil
}

func (s *DocumentService) renderError(err error, kind string, id uuid.UUID) error {
	s.logger.Error().Err(err).Str("kind", kind).Str("id", id.String()).Msg("Document rendering failed")
	return apperrors.NewCustomError(fmt.Errorf("%w: %v", apperrors.ErrRenderFailed, err),
		"The document could not be rendered")
}

// recordDownload never fails the download itself
func (s *DocumentService) recordDownload(ctx context.Context, kind models.DownloadKind, documentID, batchID *uuid.UUID) {
	if err := s.stats.RecordDownload(ctx, kind, documentID, batchID); err != nil {
		s.logger.Warn().Err(err).Str("kind", string(kind)).Msg("Failed to record download")
	}
}

func safeFileName(name string) string {
	name = unsafeFileChars.ReplaceAllString(strings.TrimSpace(name), "_")
	if name == "" {
		return "batch"
	}
	return name
}

// CertificateExportTable lays certificates out as export rows
func CertificateExportTable(certs []models.Certificate) *tabular.Table {
	t := &tabular.Table{Headers: []string{
		"certificateId", "recipientName", "dob", "course", "courseCode",
		"department", "college", "duration", "content", "createdAt",
	}}
	v := helpers.StringValue
	for _, c := range certs {
		dob := ""
		if c.DOB != nil {
			dob = c.DOB.Format("2006-01-02")
		}
		t.Rows = append(t.Rows, []string{
			c.CertificateID, c.RecipientName, dob, c.Course, c.CourseCode,
			v(c.Department), v(c.College), v(c.Duration), v(c.Content),
			c.CreatedAt.Format(time.RFC3339),
		})
	}
	return t
}

// LetterExportTable lays letters out as export rows
func LetterExportTable(letters []models.Letter) *tabular.Table {
	t := &tabular.Table{Headers: []string{
		"recipientName", "letterType", "internId", "courseName", "projectTitle",
		"startDate", "endDate", "completionDate", "position", "duration",
		"department", "letterDate", "createdAt",
	}}
	v := helpers.StringValue
	for _, l := range letters {
		t.Rows = append(t.Rows, []string{
			l.RecipientName, string(l.LetterType), v(l.InternID), v(l.CourseName), v(l.ProjectTitle),
			v(l.StartDate), v(l.EndDate), v(l.CompletionDate), v(l.Position), v(l.Duration),
			v(l.Department), v(l.LetterDate), l.CreatedAt.Format(time.RFC3339),
		})
	}
	return t
}
