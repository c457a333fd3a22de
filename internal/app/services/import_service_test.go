package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tarcin/docissuer/internal/app/models"
	"github.com/tarcin/docissuer/internal/config"
	"github.com/tarcin/docissuer/internal/pkg/apperrors"
	"github.com/tarcin/docissuer/internal/pkg/filestorage"
)

const certificateSheet = `Name,Course,Department,College,DOB
Asha Rao,Full Stack Web,CSE,RVCE,14-03-2003
Ravi Kumar,Full Stack Web,ECE,BMS,
Meera N,Full Stack Web,,,2002-11-30
John Paul,Full Stack Web,,,31/31/2001
Fatima S,Full Stack Web,ISE,PES,
Nikhil Jain,,ME,SIT,
`

type importFixture struct {
	svc     *ImportService
	docs    *memDocuments
	seq     *memSequenceStore
	storage string
}

func newImportFixture(t *testing.T) *importFixture {
	t.Helper()

	dir := t.TempDir()
	storage, err := filestorage.NewLocalStorage(dir)
	require.NoError(t, err)

	docs := &memDocuments{}
	seq := newMemSequenceStore()
	allocator := NewSequenceAllocator(seq, zerolog.Nop(), AllocatorOptions{ConflictPolicy: config.ConflictPolicyRetry})

	svc := NewImportService(docs, allocator, storage, "TR", zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC) }

	return &importFixture{svc: svc, docs: docs, seq: seq, storage: dir}
}

func (f *importFixture) storedFiles(t *testing.T, sub string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(f.storage, sub))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	return entries
}

func TestImportCertificatesSkipsIncompleteRows(t *testing.T) {
	f := newImportFixture(t)

	resp, err := f.svc.ImportCertificates(context.Background(), CertificateImport{
		FileName:   "june-cohort.csv",
		File:       strings.NewReader(certificateSheet),
		Year:       "2025",
		CourseCode: "FSW",
	})
	require.NoError(t, err)

	assert.Equal(t, 6, resp.Batch.TotalDocuments)
	assert.Equal(t, 5, resp.Count)
	assert.Equal(t, 1, resp.Skipped)
	assert.Equal(t, "june-cohort", resp.Batch.Name)
	assert.Equal(t, "june-cohort.csv", resp.Batch.SourceFileName)
	assert.Equal(t, models.BatchCertificate, resp.Batch.Kind)
	require.NotNil(t, resp.Batch.SourcePath)

	require.Len(t, f.docs.batches, 1)
	require.Len(t, f.docs.certificates, 5)

	for i, c := range f.docs.certificates {
		assert.Equal(t, models.FormatCertificateID("TR", 2025, "FSW", i+1), c.CertificateID)
		require.NotNil(t, c.BatchID)
		assert.Equal(t, resp.Batch.ID, *c.BatchID)
		assert.Equal(t, "FSW", c.CourseCode)
	}
	assert.Equal(t, "TR-2025/FSW/00005", f.docs.certificates[4].CertificateID)

	// DD-MM-YYYY and ISO dates parse, anything else is dropped
	require.NotNil(t, f.docs.certificates[0].DOB)
	assert.Equal(t, "2003-03-14", f.docs.certificates[0].DOB.Format("2006-01-02"))
	require.NotNil(t, f.docs.certificates[2].DOB)
	assert.Equal(t, "2002-11-30", f.docs.certificates[2].DOB.Format("2006-01-02"))
	assert.Nil(t, f.docs.certificates[3].DOB)
	require.NotNil(t, f.docs.certificates[1].Department)
	assert.Equal(t, "ECE", *f.docs.certificates[1].Department)
	assert.Nil(t, f.docs.certificates[2].Department)
	assert.Nil(t, f.docs.certificates[2].College)

	last, found, _ := f.seq.Get(context.Background(), 2025, "FSW")
	require.True(t, found)
	assert.Equal(t, 5, last)

	assert.Len(t, f.storedFiles(t, certificateSourceDir), 1)
}

func TestImportCertificatesContinuesNumbering(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := f.svc.ImportCertificates(ctx, CertificateImport{
			FileName:   "cohort.csv",
			File:       strings.NewReader(certificateSheet),
			Year:       "2025",
			CourseCode: "FSW",
		})
		require.NoError(t, err)
	}

	require.Len(t, f.docs.certificates, 10)
	assert.Equal(t, "TR-2025/FSW/00006", f.docs.certificates[5].CertificateID)
	assert.Equal(t, "TR-2025/FSW/00010", f.docs.certificates[9].CertificateID)
}

func TestImportCertificatesMissingHeaders(t *testing.T) {
	f := newImportFixture(t)

	_, err := f.svc.ImportCertificates(context.Background(), CertificateImport{
		FileName:   "bad.csv",
		File:       strings.NewReader("name,Department\nAsha,CSE\n"),
		Year:       "2025",
		CourseCode: "FSW",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMissingHeaders)

	ce, ok := apperrors.AsCustomError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Name", "Course"}, ce.Details["missingHeaders"])

	assert.Empty(t, f.docs.batches)
	assert.Empty(t, f.storedFiles(t, certificateSourceDir))
}

func TestImportCertificatesRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		sheet   string
		year    string
		code    string
		wantErr error
	}{
		{"header only", "Name,Course\n", "2025", "FSW", apperrors.ErrNoDataRows},
		{"empty file", "", "2025", "FSW", apperrors.ErrNoDataRows},
		{"year not a number", "Name,Course\nA,B\n", "twenty", "FSW", apperrors.ErrValidationFailed},
		{"year too short", "Name,Course\nA,B\n", "25", "FSW", apperrors.ErrValidationFailed},
		{"missing course code", "Name,Course\nA,B\n", "2025", " ", apperrors.ErrValidationFailed},
		{"course code with slash", "Name,Course\nA,B\n", "2025", "F/SW", apperrors.ErrValidationFailed},
		{"no valid rows", "Name,Course\nA,\n,B\n", "2025", "FSW", apperrors.ErrNoValidRows},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newImportFixture(t)

			_, err := f.svc.ImportCertificates(context.Background(), CertificateImport{
				FileName:   "sheet.csv",
				File:       strings.NewReader(tt.sheet),
				Year:       tt.year,
				CourseCode: tt.code,
			})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.docs.batches)

			_, found, _ := f.seq.Get(context.Background(), 2025, "FSW")
			assert.False(t, found, "no sequence is allocated for a rejected import")
		})
	}
}

func TestImportCertificatesRejectsLegacyExcel(t *testing.T) {
	f := newImportFixture(t)

	_, err := f.svc.ImportCertificates(context.Background(), CertificateImport{
		FileName:   "old.xls",
		File:       strings.NewReader("whatever"),
		Year:       "2025",
		CourseCode: "FSW",
	})
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedFile)
}

func TestImportCertificatesRemovesSourceOnFailure(t *testing.T) {
	f := newImportFixture(t)
	f.docs.failBatch = errors.New("tx aborted")

	_, err := f.svc.ImportCertificates(context.Background(), CertificateImport{
		FileName:   "cohort.csv",
		File:       strings.NewReader(certificateSheet),
		Year:       "2025",
		CourseCode: "FSW",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tx aborted")
	assert.Empty(t, f.storedFiles(t, certificateSourceDir))
}

func TestImportCertificatesSequenceExhausted(t *testing.T) {
	f := newImportFixture(t)
	f.svc.allocator = NewSequenceAllocator(&racingStore{}, zerolog.Nop(), AllocatorOptions{MaxAttempts: 2})

	_, err := f.svc.ImportCertificates(context.Background(), CertificateImport{
		FileName:   "cohort.csv",
		File:       strings.NewReader(certificateSheet),
		Year:       "2025",
		CourseCode: "FSW",
	})
	assert.ErrorIs(t, err, apperrors.ErrSequenceExhausted)
	assert.Empty(t, f.docs.certificates)
	assert.Empty(t, f.storedFiles(t, certificateSourceDir))
}

const letterSheet = `Student Name,Name,Course,Project,From,To,Role,Unknown
ignored,Asha Rao,Robotics,Line follower,2025-01-06,2025-03-28,,x
ignored,,Robotics,Arm,2025-01-06,2025-03-28,,x
ignored,Ravi Kumar,Embedded,,06-01-2025,,Firmware Intern,
`

func TestImportLettersBuildsSparseLetters(t *testing.T) {
	f := newImportFixture(t)

	resp, err := f.svc.ImportLetters(context.Background(), LetterImport{
		FileName:   "offers.csv",
		File:       strings.NewReader(letterSheet),
		LetterType: "OFFER",
	})
	require.NoError(t, err)

	assert.Equal(t, models.BatchLetterOffer, resp.Batch.Kind)
	assert.Equal(t, 3, resp.Batch.TotalDocuments)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, 1, resp.Skipped)
	require.Len(t, f.docs.letters, 2)

	asha := f.docs.letters[0]
	assert.Equal(t, "Asha Rao", asha.RecipientName)
	assert.Equal(t, models.LetterOffer, asha.LetterType)
	require.NotNil(t, asha.CourseName)
	assert.Equal(t, "Robotics", *asha.CourseName)
	require.NotNil(t, asha.ProjectTitle)
	assert.Equal(t, "Line follower", *asha.ProjectTitle)
	assert.Nil(t, asha.Position)
	require.NotNil(t, asha.BatchID)
	assert.Equal(t, resp.Batch.ID, *asha.BatchID)

	ravi := f.docs.letters[1]
	assert.Nil(t, ravi.ProjectTitle)
	assert.Nil(t, ravi.EndDate)
	require.NotNil(t, ravi.Position)
	assert.Equal(t, "Firmware Intern", *ravi.Position)
}

func TestImportLettersRejectsBadInput(t *testing.T) {
	tests := []struct {
		name       string
		sheet      string
		letterType string
		wantErr    error
	}{
		{"unknown letter type", letterSheet, "reference", apperrors.ErrInvalidLetterType},
		{"no data rows", "name,course\n", "offer", apperrors.ErrNoDataRows},
		{"no recipient column", "course,project\nRobotics,Arm\n", "completion", apperrors.ErrNoValidRows},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newImportFixture(t)

			_, err := f.svc.ImportLetters(context.Background(), LetterImport{
				FileName:   "letters.csv",
				File:       strings.NewReader(tt.sheet),
				LetterType: tt.letterType,
			})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.docs.batches)
			assert.Empty(t, f.storedFiles(t, letterSourceDir))
		})
	}
}
