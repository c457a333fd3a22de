package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tarcin/docissuer/internal/app/models"
	"github.com/tarcin/docissuer/internal/pkg/apperrors"
	"github.com/tarcin/docissuer/internal/pkg/filestorage"
)

func TestBatchService_SourceFile(t *testing.T) {
	ctx := context.Background()
	f := newImportFixture(t)
	storage, err := filestorage.NewLocalStorage(f.storage)
	require.NoError(t, err)
	svc := NewBatchService(f.docs, certStore{f.docs}, letterStore{f.docs}, storage)

	const csv = "Name,Course\nAsha,Web Development\n"
	resp, err := f.svc.ImportCertificates(ctx, CertificateImport{
		FileName:   "march-cohort.csv",
		File:       strings.NewReader(csv),
		Year:       "2025",
		CourseCode: "WD",
	})
	require.NoError(t, err)

	doc, err := svc.SourceFile(ctx, resp.Batch.ID)
	require.NoError(t, err)
	assert.Equal(t, "march-cohort.csv", doc.FileName)
	assert.Equal(t, "text/csv; charset=utf-8", doc.ContentType)
	assert.Equal(t, csv, string(doc.Data))
}

func TestBatchService_SourceFileMissing(t *testing.T) {
	ctx := context.Background()
	docs := &memDocuments{}
	storage, err := filestorage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := NewBatchService(docs, certStore{docs}, letterStore{docs}, storage)

	gone := "imports/certificates/gone.csv"
	noSource := models.Batch{ID: uuid.New(), Name: "a", Kind: models.BatchCertificate, SourceFileName: "a.csv"}
	deleted := models.Batch{ID: uuid.New(), Name: "b", Kind: models.BatchCertificate, SourceFileName: "b.csv", SourcePath: &gone}
	docs.batches = append(docs.batches, noSource, deleted)

	_, err = svc.SourceFile(ctx, noSource.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	_, err = svc.SourceFile(ctx, deleted.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	_, err = svc.SourceFile(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrBatchNotFound)
}

func TestBatchService_Members(t *testing.T) {
	ctx := context.Background()
	docs := &memDocuments{}
	svc := NewBatchService(docs, certStore{docs}, letterStore{docs}, nil)

	batch := models.Batch{ID: uuid.New(), Name: "offers", Kind: models.BatchLetterOffer, CreatedAt: time.Now()}
	require.NoError(t, docs.CreateWithLetters(ctx, &batch, []models.Letter{
		{ID: uuid.New(), RecipientName: "Ravi", LetterType: models.LetterOffer, BatchID: &batch.ID},
	}))

	letters, err := svc.BatchLetters(ctx, batch.ID)
	require.NoError(t, err)
	assert.Len(t, letters, 1)

	_, err = svc.BatchCertificates(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrBatchNotFound)

	page, err := svc.ListBatches(ctx, 0, -5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 0, page.Offset)
	assert.Positive(t, page.Limit)
}
