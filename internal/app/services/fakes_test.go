package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/tarcin/docissuer/internal/app/models"
	"github.com/tarcin/docissuer/internal/app/repositories"
	"github.com/tarcin/docissuer/internal/pkg/apperrors"
)

// memDocuments is an in-memory CertificateStore, LetterStore and BatchStore
type memDocuments struct {
	mu           sync.Mutex
	batches      []models.Batch
	certificates []models.Certificate
	letters      []models.Letter
	failBatch    error
}

func (m *memDocuments) CreateWithCertificates(_ context.Context, b *models.Batch, certs []models.Certificate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failBatch != nil {
		return m.failBatch
	}
	m.batches = append(m.batches, *b)
	m.certificates = append(m.certificates, certs...)
	return nil
}

func (m *memDocuments) CreateWithLetters(_ context.Context, b *models.Batch, letters []models.Letter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failBatch != nil {
		return m.failBatch
	}
	m.batches = append(m.batches, *b)
	m.letters = append(m.letters, letters...)
	return nil
}

func (m *memDocuments) GetByID(_ context.Context, id uuid.UUID) (*models.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.batches {
		if m.batches[i].ID == id {
			b := m.batches[i]
			return &b, nil
		}
	}
	return nil, apperrors.ErrBatchNotFound
}

func (m *memDocuments) List(_ context.Context, limit, offset int) ([]models.Batch, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := int64(len(m.batches))
	if offset >= len(m.batches) {
		return []models.Batch{}, total, nil
	}
	end := offset + limit
	if end > len(m.batches) {
		end = len(m.batches)
	}
	return append([]models.Batch(nil), m.batches[offset:end]...), total, nil
}

// certStore views memDocuments as a CertificateStore
type certStore struct{ *memDocuments }

func (s certStore) Create(_ context.Context, c *models.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.certificates {
		if existing.CertificateID == c.CertificateID {
			return apperrors.ErrCertificateIDExists
		}
	}
	s.certificates = append(s.certificates, *c)
	return nil
}

func (s certStore) GetByID(_ context.Context, id uuid.UUID) (*models.Certificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.certificates {
		if s.certificates[i].ID == id {
			c := s.certificates[i]
			return &c, nil
		}
	}
	return nil, apperrors.ErrCertificateNotFound
}

func (s certStore) GetByCertificateID(_ context.Context, certificateID string) (*models.Certificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.certificates {
		if s.certificates[i].CertificateID == certificateID {
			c := s.certificates[i]
			return &c, nil
		}
	}
	return nil, apperrors.ErrCertificateNotFound
}

func (s certStore) List(_ context.Context, f repositories.CertificateFilter) ([]models.Certificate, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]models.Certificate{}, s.certificates...)
	return out, int64(len(out)), nil
}

func (s certStore) ListByBatch(_ context.Context, batchID uuid.UUID) ([]models.Certificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Certificate{}
	for _, c := range s.certificates {
		if c.BatchID != nil && *c.BatchID == batchID {
			out = append(out, c)
		}
	}
	return out, nil
}

// letterStore views memDocuments as a LetterStore
type letterStore struct{ *memDocuments }

func (s letterStore) Create(_ context.Context, l *models.Letter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.letters = append(s.letters, *l)
	return nil
}

func (s letterStore) GetByID(_ context.Context, id uuid.UUID) (*models.Letter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.letters {
		if s.letters[i].ID == id {
			l := s.letters[i]
			return &l, nil
		}
	}
	return nil, apperrors.ErrLetterNotFound
}

func (s letterStore) List(_ context.Context, f repositories.LetterFilter) ([]models.Letter, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Letter{}
	for _, l := range s.letters {
		if f.LetterType == "" || l.LetterType == f.LetterType {
			out = append(out, l)
		}
	}
	return out, int64(len(out)), nil
}

func (s letterStore) ListByBatch(_ context.Context, batchID uuid.UUID) ([]models.Letter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Letter{}
	for _, l := range s.letters {
		if l.BatchID != nil && *l.BatchID == batchID {
			out = append(out, l)
		}
	}
	return out, nil
}

type download struct {
	kind       models.DownloadKind
	documentID *uuid.UUID
	batchID    *uuid.UUID
}

type memStats struct {
	downloads []download
	err       error
}

func (m *memStats) Stats(context.Context) (*models.Stats, error) {
	return &models.Stats{TotalDownloads: int64(len(m.downloads))}, nil
}

func (m *memStats) RecordDownload(_ context.Context, kind models.DownloadKind, documentID, batchID *uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	m.downloads = append(m.downloads, download{kind: kind, documentID: documentID, batchID: batchID})
	return nil
}

// stubRenderer returns a PDF-looking payload naming the document
type stubRenderer struct {
	err error
}

func (r stubRenderer) Certificate(c *models.Certificate) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF certificate " + c.CertificateID), nil
}

func (r stubRenderer) Letter(l *models.Letter) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF letter " + l.RecipientName), nil
}
